package resolver

import "strings"

type InputKind int

const (
	KindBareID InputKind = iota + 1
	KindBareFilename
	KindPageURL
	KindDirectURL
)

func (kind InputKind) String() string {
	switch kind {
	case KindBareID:
		return "bare-id"
	case KindBareFilename:
		return "bare-filename"
	case KindPageURL:
		return "page-url"
	case KindDirectURL:
		return "direct-url"
	default:
		return "unknown"
	}
}

// IsURL reports whether the input was given as a full URL on one of the origin domains.
func (kind InputKind) IsURL() bool {
	return kind == KindPageURL || kind == KindDirectURL
}

type ImageRequest struct {
	Raw       string
	Kind      InputKind
	ID        string
	Extension string
}

// ResolvedTarget always points at the direct-content host, the only one serving raw bytes.
type ResolvedTarget struct {
	URL       string
	ID        string
	Extension string
}

func (target ResolvedTarget) NeedsProbe() bool {
	return target.Extension == ""
}

func (target ResolvedTarget) Filename() string {
	if target.Extension == "" {
		return target.ID
	}

	return target.ID + "." + target.Extension
}

func (target ResolvedTarget) WithExtension(extension string) ResolvedTarget {
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))

	prefix := target.URL[:strings.LastIndex(target.URL, "/")+1]

	target.Extension = extension
	target.URL = prefix + target.Filename()
	return target
}

type Config struct {
	Scheme     string
	DirectHost string
	PageHosts  []string
}

func DefaultConfig() Config {
	return Config{
		Scheme:     "https",
		DirectHost: "i.imgur.com",
		PageHosts:  []string{"imgur.com", "www.imgur.com", "m.imgur.com"},
	}
}

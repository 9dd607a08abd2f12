package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type Resolver struct {
	config Config
}

func NewResolver(config Config) *Resolver {
	config.Scheme = strings.ToLower(config.Scheme)
	config.DirectHost = strings.ToLower(config.DirectHost)
	pageHosts := make([]string, len(config.PageHosts))
	for i, host := range config.PageHosts {
		pageHosts[i] = strings.ToLower(host)
	}
	config.PageHosts = pageHosts

	return &Resolver{config}
}

func (r *Resolver) Resolve(raw string) (ResolvedTarget, error) {
	request, err := r.Parse(raw)
	if err != nil {
		return ResolvedTarget{}, err
	}

	return r.ResolveRequest(request), nil
}

func (r *Resolver) ResolveRequest(request ImageRequest) ResolvedTarget {
	target := ResolvedTarget{
		URL: r.config.Scheme + "://" + r.config.DirectHost + "/" + request.ID,
		ID:  request.ID,
	}

	if request.Extension == "" {
		return target
	}

	return target.WithExtension(request.Extension)
}

// Parse classifies raw input without touching the network.
// Query strings and fragments are dropped before validation.
func (r *Resolver) Parse(raw string) (ImageRequest, error) {
	input := strings.TrimSpace(raw)
	if cut := strings.IndexAny(input, "?#"); cut >= 0 {
		input = input[:cut]
	}

	if input == "" {
		return ImageRequest{}, invalid("empty input")
	}

	if hasForbiddenSequence(input) {
		return ImageRequest{}, invalid("forbidden character sequence")
	}

	if r.looksLikeURL(input) {
		return r.parseURL(raw, input)
	}

	id, extension, err := parseFilename(input, false)
	if err != nil {
		return ImageRequest{}, err
	}

	kind := KindBareID
	if extension != "" {
		kind = KindBareFilename
	}

	return ImageRequest{raw, kind, id, extension}, nil
}

func (r *Resolver) looksLikeURL(input string) bool {
	if strings.Contains(input, "://") {
		return true
	}

	lowered := strings.ToLower(input)
	for _, host := range r.knownHosts() {
		if strings.HasPrefix(lowered, host+"/") {
			return true
		}
	}

	return false
}

func (r *Resolver) parseURL(raw, input string) (ImageRequest, error) {
	if !strings.Contains(input, "://") {
		input = r.config.Scheme + "://" + input
	}

	info, err := url.Parse(input)
	if err != nil {
		return ImageRequest{}, invalid("malformed url")
	}

	if scheme := strings.ToLower(info.Scheme); scheme != "http" && scheme != "https" {
		return ImageRequest{}, invalid("unsupported url scheme")
	}

	if info.User != nil {
		return ImageRequest{}, invalid("credentials in url")
	}

	segments := strings.Split(strings.Trim(info.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return ImageRequest{}, invalid("url has no image path")
	}

	host := strings.ToLower(info.Host)
	switch {
	case host == r.config.DirectHost:
		return r.buildURLRequest(raw, KindDirectURL, segments)

	case r.isPageHost(host):
		if isCollectionPrefix(segments[0]) {
			return ImageRequest{}, ErrUnsupportedResource
		}

		if len(segments) == 1 && isReservedPagePath(segments[0]) {
			return ImageRequest{}, invalid("reserved page path")
		}

		return r.buildURLRequest(raw, KindPageURL, segments)

	default:
		return ImageRequest{}, invalid("host is not an origin domain")
	}
}

func (r *Resolver) buildURLRequest(raw string, kind InputKind, segments []string) (ImageRequest, error) {
	if len(segments) != 1 {
		return ImageRequest{}, invalid("url path must contain exactly one segment")
	}

	id, extension, err := parseFilename(segments[0], kind == KindDirectURL)
	if err != nil {
		return ImageRequest{}, err
	}

	return ImageRequest{raw, kind, id, extension}, nil
}

func (r *Resolver) isPageHost(host string) bool {
	for _, pageHost := range r.config.PageHosts {
		if host == pageHost {
			return true
		}
	}

	return false
}

func (r *Resolver) knownHosts() []string {
	return append([]string{r.config.DirectHost}, r.config.PageHosts...)
}

// Sizing suffixes only exist on the direct-content host, so only
// filenames taken from there are stripped.
func parseFilename(filename string, stripSuffix bool) (id, extension string, err error) {
	match := filenamePattern.FindStringSubmatch(filename)
	if match == nil {
		err = invalid("identifier contains disallowed characters")
		return
	}

	id = match[1]
	if stripSuffix {
		id = stripSizingSuffix(id)
	}

	if match[2] == "" {
		return
	}

	var known bool
	extension, known = NormalizeExtension(match[2])
	if !known {
		err = invalid("unknown file extension")
	}

	return
}

// Imgur serves thumbnails as the 7 character id followed by one size letter.
func stripSizingSuffix(id string) string {
	if len(id) == 8 && strings.ContainsRune(sizingSuffixes, rune(id[7])) {
		return id[:7]
	}

	return id
}

func hasForbiddenSequence(input string) bool {
	if strings.Contains(input, "..") || strings.ContainsAny(input, `%\`) {
		return true
	}

	for _, char := range input {
		if char <= ' ' || char == 0x7f {
			return true
		}
	}

	return false
}

func isCollectionPrefix(segment string) bool {
	switch strings.ToLower(segment) {
	case "a", "gallery", "t", "r", "user":
		return true
	}

	return false
}

// isReservedPagePath reports site pages that share the identifier
// character class but never name an image.
func isReservedPagePath(segment string) bool {
	switch strings.ToLower(segment) {
	case "upload", "search", "signin", "register", "account", "random",
		"hot", "new", "top", "about", "apps", "help", "rules", "privacy",
		"tos", "emoji", "memegen", "vidgif", "removalrequest":
		return true
	}

	return false
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

const sizingSuffixes = "sbtmlh"

var filenamePattern = regexp.MustCompile(`^([A-Za-z0-9]{1,32})(?:\.([A-Za-z0-9]{1,5}))?$`)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedResource = fmt.Errorf("%w: albums and galleries are not supported", ErrInvalidInput)
)

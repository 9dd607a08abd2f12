package relay

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	"github.com/thebartekbanach/imgurproxy/pkg/prober"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

const (
	FallbackContentType = "application/octet-stream"
	ErrorCacheControl   = "no-store"
)

// ProxyResponse is built once per request and never modified afterwards.
type ProxyResponse struct {
	status       int
	contentType  string
	cacheControl string
	body         []byte
}

func (r ProxyResponse) Status() int          { return r.status }
func (r ProxyResponse) ContentType() string  { return r.contentType }
func (r ProxyResponse) CacheControl() string { return r.cacheControl }
func (r ProxyResponse) Body() []byte         { return r.body }
func (r ProxyResponse) Length() int          { return len(r.body) }

type Relay struct {
	cacheControl string
}

// New builds a relay whose successful responses may be cached publicly for maxAge.
// Content under a fixed identifier never changes.
func New(maxAge time.Duration) *Relay {
	return &Relay{
		cacheControl: fmt.Sprintf("public, max-age=%d, immutable", int64(maxAge/time.Second)),
	}
}

func (relay *Relay) FromOutcome(outcome fetcher.FetchOutcome, extension string) ProxyResponse {
	switch outcome.Kind {
	case fetcher.Success:
		return ProxyResponse{
			status:       http.StatusOK,
			contentType:  DetectContentType(outcome.ContentType, extension, outcome.Body),
			cacheControl: relay.cacheControl,
			body:         outcome.Body,
		}

	case fetcher.NotFound:
		return Failure(http.StatusNotFound)

	default:
		return Failure(statusForReason(outcome.Reason))
	}
}

func (relay *Relay) FromError(err error) ProxyResponse {
	var transientErr *prober.TransientError

	switch {
	case errors.Is(err, resolver.ErrInvalidInput):
		return Failure(http.StatusBadRequest)

	case errors.Is(err, prober.ErrNoExtensionFound):
		return Failure(http.StatusNotFound)

	case errors.As(err, &transientErr):
		return Failure(statusForReason(transientErr.Outcome.Reason))

	default:
		return Failure(http.StatusBadGateway)
	}
}

// Failure responses never carry a body.
func Failure(status int) ProxyResponse {
	return ProxyResponse{
		status:       status,
		cacheControl: ErrorCacheControl,
	}
}

func statusForReason(reason fetcher.FailureReason) int {
	if reason == fetcher.ReasonTimeout {
		return http.StatusGatewayTimeout
	}

	return http.StatusBadGateway
}

// DetectContentType prefers the origin header when it names an image or video,
// then the resolved extension, then the bytes themselves.
func DetectContentType(originHeader, extension string, body []byte) string {
	if mediaType, _, err := mime.ParseMediaType(originHeader); err == nil && isMedia(mediaType) {
		return mediaType
	}

	if mediaType, known := resolver.MediaType(extension); known {
		return mediaType
	}

	if len(body) > 0 {
		mediaType, _, err := mime.ParseMediaType(mimetype.Detect(body).String())
		if err == nil && isMedia(mediaType) {
			return mediaType
		}
	}

	return FallbackContentType
}

// SVG can carry script, so it is never relayed under its own type.
func isMedia(mediaType string) bool {
	if mediaType == "image/svg+xml" {
		return false
	}

	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/")
}

package fetcher

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ryanuber/go-glob"
)

// Imgur answers requests for deleted images with a redirect to this placeholder.
const removedPlaceholderPath = "/removed.png"

type redirectPolicy func(req *http.Request, via []*http.Request) error

func newRedirectPolicy(maxRedirects int, allowedHosts []string) redirectPolicy {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return ErrTooManyRedirects
		}

		host := strings.ToLower(req.URL.Hostname())
		if !isAllowedHost(host, allowedHosts) {
			return fmt.Errorf("%w: %s", ErrRedirectNotAllowed, host)
		}

		if req.URL.Path == removedPlaceholderPath {
			return errRemovedPlaceholder
		}

		return nil
	}
}

func isAllowedHost(host string, allowedHosts []string) bool {
	for _, pattern := range allowedHosts {
		if glob.Glob(strings.ToLower(pattern), host) {
			return true
		}
	}

	return false
}

var (
	ErrTooManyRedirects   = errors.New("too many redirects")
	ErrRedirectNotAllowed = errors.New("redirect target not allowed")

	errRemovedPlaceholder = errors.New("origin redirected to removed placeholder")
)

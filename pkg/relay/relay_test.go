package relay

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/franela/goblin"
	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	"github.com/thebartekbanach/imgurproxy/pkg/prober"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52}

func TestRelay(t *testing.T) {
	g := goblin.Goblin(t)

	g.Describe("Relay", func() {
		relay := New(24 * time.Hour)

		g.Describe("FromOutcome", func() {
			g.It("Should relay successful fetch with long-lived cache directive", func() {
				body := bytes.Repeat([]byte{0x1}, 500)
				response := relay.FromOutcome(fetcher.Succeeded(200, body, "image/png"), "png")

				g.Assert(response.Status()).Equal(200)
				g.Assert(response.ContentType()).Equal("image/png")
				g.Assert(response.CacheControl()).Equal("public, max-age=86400, immutable")
				g.Assert(response.Length()).Equal(500)
				g.Assert(response.Body()).Equal(body)
			})

			g.It("Should map not found to empty 404", func() {
				response := relay.FromOutcome(fetcher.Missing(404), "png")

				g.Assert(response.Status()).Equal(404)
				g.Assert(response.Length()).Equal(0)
				g.Assert(response.CacheControl()).Equal(ErrorCacheControl)
			})

			g.It("Should map timeout to 504", func() {
				response := relay.FromOutcome(fetcher.Failed(fetcher.ReasonTimeout, context.DeadlineExceeded), "png")

				g.Assert(response.Status()).Equal(504)
				g.Assert(response.Length()).Equal(0)
			})

			g.It("Should map other transient failures to 502", func() {
				for _, reason := range []fetcher.FailureReason{
					fetcher.ReasonNetwork,
					fetcher.ReasonUnexpectedStatus,
					fetcher.ReasonOversize,
					fetcher.ReasonCanceled,
				} {
					response := relay.FromOutcome(fetcher.Failed(reason, fmt.Errorf("test")), "png")

					g.Assert(response.Status()).Equal(502)
				}
			})
		})

		g.Describe("FromError", func() {
			g.It("Should map invalid input to 400", func() {
				_, err := resolver.NewResolver(resolver.DefaultConfig()).Resolve("../etc/passwd")

				g.Assert(relay.FromError(err).Status()).Equal(400)
			})

			g.It("Should map exhausted candidates to 404", func() {
				g.Assert(relay.FromError(prober.ErrNoExtensionFound).Status()).Equal(404)
			})

			g.It("Should map transient probe failures by reason", func() {
				timeoutErr := &prober.TransientError{Outcome: fetcher.Failed(fetcher.ReasonTimeout, context.DeadlineExceeded)}
				networkErr := &prober.TransientError{Outcome: fetcher.Failed(fetcher.ReasonNetwork, fmt.Errorf("reset"))}

				g.Assert(relay.FromError(timeoutErr).Status()).Equal(504)
				g.Assert(relay.FromError(networkErr).Status()).Equal(502)
			})
		})

		g.Describe("DetectContentType", func() {
			g.It("Should trust image and video origin headers", func() {
				g.Assert(DetectContentType("image/webp", "png", nil)).Equal("image/webp")
				g.Assert(DetectContentType("video/mp4; codecs=avc1", "", nil)).Equal("video/mp4")
			})

			g.It("Should fall back to extension when origin header is generic", func() {
				g.Assert(DetectContentType("application/octet-stream", "gif", nil)).Equal("image/gif")
				g.Assert(DetectContentType("", "jpg", nil)).Equal("image/jpeg")
			})

			g.It("Should sniff content when neither header nor extension help", func() {
				g.Assert(DetectContentType("text/plain", "", pngSignature)).Equal("image/png")
			})

			g.It("Should never relay scriptable svg under its own type", func() {
				svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)

				g.Assert(DetectContentType("image/svg+xml", "", svg)).Equal(FallbackContentType)
				g.Assert(DetectContentType("image/svg+xml; charset=utf-8", "png", svg)).Equal("image/png")
				g.Assert(DetectContentType("", "", svg)).Equal(FallbackContentType)
			})

			g.It("Should default to generic binary type", func() {
				contentType := DetectContentType("", "", []byte("definitely not an image"))

				g.Assert(contentType).Equal(FallbackContentType)
				g.Assert(strings.HasPrefix(contentType, "image/")).IsFalse()
			})
		})
	})
}

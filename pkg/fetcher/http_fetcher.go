package fetcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

type httpRequestFunc func(req *http.Request) (*http.Response, error)

type Config struct {
	Timeout       time.Duration
	Headers       HeaderTemplate
	MaxBodyBytes  int64
	MaxRedirects  int
	RedirectHosts []string
}

func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Second,
		Headers:       DefaultHeaderTemplate(),
		MaxBodyBytes:  50 << 20,
		MaxRedirects:  3,
		RedirectHosts: []string{"imgur.com", "*.imgur.com"},
	}
}

type HTTPFetcher struct {
	config      Config
	makeRequest httpRequestFunc
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(config Config) *HTTPFetcher {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			// Accept-Encoding is part of the browser header set, so bodies are decoded by hand.
			DisableCompression: true,
		},
		CheckRedirect: newRedirectPolicy(config.MaxRedirects, config.RedirectHosts),
	}

	return &HTTPFetcher{config, client.Do}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, target resolver.ResolvedTarget) FetchOutcome {
	return f.do(ctx, http.MethodGet, target)
}

func (f *HTTPFetcher) Head(ctx context.Context, target resolver.ResolvedTarget) FetchOutcome {
	return f.do(ctx, http.MethodHead, target)
}

func (f *HTTPFetcher) do(ctx context.Context, method string, target resolver.ResolvedTarget) FetchOutcome {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target.URL, nil)
	if err != nil {
		return Failed(ReasonNetwork, err)
	}
	f.config.Headers.Apply(req.Header)

	response, err := f.makeRequest(req)
	if err != nil {
		return classifyError(ctx, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound || response.StatusCode == http.StatusGone {
		return Missing(response.StatusCode)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		outcome := Failed(ReasonUnexpectedStatus, fmt.Errorf("%w: %d", ErrUnexpectedStatus, response.StatusCode))
		outcome.StatusCode = response.StatusCode
		return outcome
	}

	contentType := response.Header.Get("Content-Type")
	if method == http.MethodHead {
		outcome := Succeeded(response.StatusCode, nil, contentType)
		outcome.Length = response.ContentLength
		return outcome
	}

	body, err := f.readBody(response)
	if err != nil {
		return classifyError(ctx, err)
	}

	return Succeeded(response.StatusCode, body, contentType)
}

// readBody never returns a partial body: short transfers and oversized bodies are errors.
func (f *HTTPFetcher) readBody(response *http.Response) ([]byte, error) {
	transfer := &countingReader{reader: response.Body}

	decoded, err := decodeBody(response.Header.Get("Content-Encoding"), transfer)
	if err != nil {
		return nil, err
	}
	defer decoded.Close()

	body, err := io.ReadAll(io.LimitReader(decoded, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}

	if int64(len(body)) > f.config.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}

	if response.ContentLength >= 0 && transfer.count != response.ContentLength {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, transfer.count, response.ContentLength)
	}

	return body, nil
}

func decodeBody(encoding string, body io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return io.NopCloser(body), nil
	case "gzip", "x-gzip":
		return gzip.NewReader(body)
	case "deflate":
		return newDeflateReader(body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
}

// newDeflateReader accepts both zlib-wrapped and raw deflate streams,
// servers send either under the same encoding name.
func newDeflateReader(body io.Reader) (io.ReadCloser, error) {
	buffered := bufio.NewReader(body)

	header, err := buffered.Peek(2)
	if err == nil && isZlibHeader(header) {
		return zlib.NewReader(buffered)
	}

	return flate.NewReader(buffered), nil
}

func isZlibHeader(header []byte) bool {
	return header[0]&0x0f == 8 && (uint16(header[0])<<8|uint16(header[1]))%31 == 0
}

func classifyError(ctx context.Context, err error) FetchOutcome {
	switch {
	case errors.Is(err, errRemovedPlaceholder):
		return Missing(http.StatusFound)

	case errors.Is(ctx.Err(), context.Canceled):
		return Failed(ReasonCanceled, err)

	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded), isNetTimeout(err):
		return Failed(ReasonTimeout, err)

	case errors.Is(err, ErrBodyTooLarge):
		return Failed(ReasonOversize, err)

	case errors.Is(err, ErrTooManyRedirects), errors.Is(err, ErrRedirectNotAllowed), errors.Is(err, ErrUnsupportedEncoding):
		return Failed(ReasonUnexpectedStatus, err)

	default:
		return Failed(ReasonNetwork, err)
	}
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type countingReader struct {
	reader io.Reader
	count  int64
}

func (r *countingReader) Read(p []byte) (n int, err error) {
	n, err = r.reader.Read(p)
	r.count += int64(n)
	return
}

var (
	ErrUnexpectedStatus    = errors.New("origin responded with unexpected status")
	ErrShortRead           = errors.New("origin closed connection before full body was read")
	ErrBodyTooLarge        = errors.New("origin response body exceeds size limit")
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
)

package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ryanuber/go-glob"
	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	"github.com/thebartekbanach/imgurproxy/pkg/prober"
	"github.com/thebartekbanach/imgurproxy/pkg/relay"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

type ProxyServiceConfig struct {
	AllowedOrigins []string
}

type proxyService struct {
	config   ProxyServiceConfig
	resolver *resolver.Resolver
	prober   *prober.Prober
	fetcher  fetcher.Fetcher
	relay    *relay.Relay
	logger   *slog.Logger
}

var _ ProxyService = (*proxyService)(nil)

func NewProxyService(
	config ProxyServiceConfig,
	resolver *resolver.Resolver,
	prober *prober.Prober,
	fetcher fetcher.Fetcher,
	relay *relay.Relay,
	logger *slog.Logger,
) ProxyService {
	return &proxyService{
		config:   config,
		resolver: resolver,
		prober:   prober,
		fetcher:  fetcher,
		relay:    relay,
		logger:   logger,
	}
}

func (p *proxyService) Handle(ctx context.Context, route Route, raw, callerOrigin string, responseWriter ProxyResponseWriter) {
	logger := p.logger.With("route", route.String(), "input", raw)

	if !p.isAllowedOrigin(callerOrigin) {
		logger.WarnContext(ctx, "request origin not allowed", "origin", callerOrigin)
		responseWriter.WriteResponse(relay.Failure(http.StatusForbidden))
		return
	}

	target, err := p.resolve(route, raw)
	if err != nil {
		logger.InfoContext(ctx, "rejected input", "error", err)
		responseWriter.WriteResponse(p.relay.FromError(err))
		return
	}

	if target.NeedsProbe() {
		probed, err := p.prober.Probe(ctx, target)
		if err != nil {
			logger.InfoContext(ctx, "extension probe failed", "id", target.ID, "error", err)
			responseWriter.WriteResponse(p.relay.FromError(err))
			return
		}

		logger.DebugContext(ctx, "extension probed", "url", probed.URL)
		target = probed
	}

	outcome := p.fetcher.Fetch(ctx, target)
	response := p.relay.FromOutcome(outcome, target.Extension)

	switch outcome.Kind {
	case fetcher.Success:
		logger.DebugContext(ctx, "fetched", "url", target.URL, "bytes", response.Length(), "content_type", response.ContentType())
	case fetcher.NotFound:
		logger.InfoContext(ctx, "origin has no such image", "url", target.URL, "status", outcome.StatusCode)
	default:
		logger.WarnContext(ctx, "origin fetch failed", "url", target.URL, "reason", outcome.Reason, "error", outcome.Err)
	}

	responseWriter.WriteResponse(response)
}

func (p *proxyService) resolve(route Route, raw string) (resolver.ResolvedTarget, error) {
	request, err := p.resolver.Parse(raw)
	if err != nil {
		return resolver.ResolvedTarget{}, err
	}

	if request.Kind.IsURL() != (route == RouteProxy) {
		return resolver.ResolvedTarget{}, fmt.Errorf("%w: %s input on %s route", ErrRouteMismatch, request.Kind, route)
	}

	return p.resolver.ResolveRequest(request), nil
}

func (p *proxyService) isAllowedOrigin(origin string) bool {
	if len(p.config.AllowedOrigins) == 0 || origin == "" {
		return true
	}

	for _, allowedOrigin := range p.config.AllowedOrigins {
		if glob.Glob(allowedOrigin, origin) {
			return true
		}
	}

	return false
}

var ErrRouteMismatch = fmt.Errorf("%w: input does not match route", resolver.ErrInvalidInput)

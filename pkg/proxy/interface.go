package proxy

import (
	"context"

	"github.com/thebartekbanach/imgurproxy/pkg/relay"
)

//go:generate mockgen -destination=mocks/mock_proxy_response_writer.go -package=mock_proxy . ProxyResponseWriter

type Route int

const (
	// RouteProxy accepts full image or page URLs only.
	RouteProxy Route = iota
	// RouteID accepts a bare id, optionally with an extension.
	RouteID
	// RouteDirect accepts a bare filename, as served under /i/.
	RouteDirect
)

func (route Route) String() string {
	switch route {
	case RouteProxy:
		return "proxy"
	case RouteID:
		return "id"
	case RouteDirect:
		return "direct"
	default:
		return "unknown"
	}
}

type ProxyResponseWriter interface {
	WriteResponse(response relay.ProxyResponse)
}

type ProxyService interface {
	Handle(ctx context.Context, route Route, raw, callerOrigin string, responseWriter ProxyResponseWriter)
}

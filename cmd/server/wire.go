//go:build wireinject
// +build wireinject

package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/thebartekbanach/imgurproxy/pkg/config"
	"github.com/thebartekbanach/imgurproxy/pkg/prober"
	"github.com/thebartekbanach/imgurproxy/pkg/proxy"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

func InitializeRouter(cfg config.Config, logger *slog.Logger) *gin.Engine {
	wire.Build(
		InitializeResolverConfig,
		resolver.NewResolver,

		InitializeFetcherConfig,
		InitializeOriginFetcher,

		InitializeProberConfig,
		prober.NewProber,

		InitializeRelay,

		InitializeProxyConfig,
		proxy.NewProxyService,

		InitializeLandingPage,
		NewRouter,
	)

	return &gin.Engine{}
}

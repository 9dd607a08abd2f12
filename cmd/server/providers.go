package main

import (
	"log"

	"github.com/thebartekbanach/imgurproxy/pkg/coalesce"
	"github.com/thebartekbanach/imgurproxy/pkg/config"
	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	"github.com/thebartekbanach/imgurproxy/pkg/prober"
	"github.com/thebartekbanach/imgurproxy/pkg/proxy"
	"github.com/thebartekbanach/imgurproxy/pkg/relay"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

func InitializeResolverConfig() resolver.Config {
	return resolver.DefaultConfig()
}

func InitializeFetcherConfig(cfg config.Config) fetcher.Config {
	return fetcher.Config{
		Timeout:       cfg.Timeout,
		Headers:       cfg.Headers,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		MaxRedirects:  cfg.MaxRedirects,
		RedirectHosts: cfg.RedirectHosts,
	}
}

func InitializeOriginFetcher(cfg config.Config, fetcherConfig fetcher.Config) fetcher.Fetcher {
	httpFetcher := fetcher.NewHTTPFetcher(fetcherConfig)
	if !cfg.Coalesce {
		return httpFetcher
	}

	return coalesce.NewFetcher(httpFetcher)
}

func InitializeProberConfig(cfg config.Config) prober.Config {
	proberConfig := prober.DefaultConfig()
	proberConfig.Candidates = cfg.Extensions
	proberConfig.Parallel = cfg.ParallelProbe

	return proberConfig
}

func InitializeRelay(cfg config.Config) *relay.Relay {
	return relay.New(cfg.CacheMaxAge)
}

func InitializeProxyConfig(cfg config.Config) proxy.ProxyServiceConfig {
	return proxy.ProxyServiceConfig{
		AllowedOrigins: cfg.AllowedOrigins,
	}
}

func InitializeLandingPage(cfg config.Config) *landingPage {
	page, err := newLandingPage(cfg.BasePath, cfg.Extensions)
	if err != nil {
		log.Panicf("Error ocurred when rendering landing page: %s", err)
	}

	return page
}

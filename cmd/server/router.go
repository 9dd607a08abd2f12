package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/thebartekbanach/imgurproxy/pkg/config"
	"github.com/thebartekbanach/imgurproxy/pkg/proxy"
)

func NewRouter(cfg config.Config, logger *slog.Logger, proxyService proxy.ProxyService, page *landingPage) *gin.Engine {
	if cfg.LogLevel <= slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(accessLogMiddleware(logger))
	engine.Use(corsMiddleware(cfg.AllowedOrigins))

	engine.GET("/", handleLandingRequest(page))
	engine.GET("/health", handleHealthRequest())
	engine.GET("/proxy", handleProxyRequest(proxyService))
	engine.GET("/i/:filename", handleDirectRequest(proxyService))
	engine.GET("/:id", handleIDRequest(proxyService))

	return engine
}

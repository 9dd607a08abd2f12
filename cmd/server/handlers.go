package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thebartekbanach/imgurproxy/pkg/proxy"
	"github.com/thebartekbanach/imgurproxy/pkg/relay"
)

func handleProxyRequest(proxyService proxy.ProxyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL, found := c.GetQuery("url")
		if !found || rawURL == "" {
			writeProxyResponse(c, relay.Failure(http.StatusBadRequest))
			return
		}

		proxyService.Handle(c.Request.Context(), proxy.RouteProxy, rawURL, c.GetHeader("Origin"), &proxyResponseWriter{c})
	}
}

func handleDirectRequest(proxyService proxy.ProxyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxyService.Handle(c.Request.Context(), proxy.RouteDirect, c.Param("filename"), c.GetHeader("Origin"), &proxyResponseWriter{c})
	}
}

func handleIDRequest(proxyService proxy.ProxyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxyService.Handle(c.Request.Context(), proxy.RouteID, c.Param("id"), c.GetHeader("Origin"), &proxyResponseWriter{c})
	}
}

func handleHealthRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleLandingRequest(page *landingPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "text/html; charset=utf-8", page.html)
	}
}

package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thebartekbanach/imgurproxy/pkg/proxy"
	"github.com/thebartekbanach/imgurproxy/pkg/relay"
)

type proxyResponseWriter struct {
	c *gin.Context
}

var _ proxy.ProxyResponseWriter = (*proxyResponseWriter)(nil)

func (w *proxyResponseWriter) WriteResponse(response relay.ProxyResponse) {
	writeProxyResponse(w.c, response)
}

func writeProxyResponse(c *gin.Context, response relay.ProxyResponse) {
	c.Header("Cache-Control", response.CacheControl())
	c.Header("Content-Length", strconv.Itoa(response.Length()))

	if response.ContentType() == "" {
		c.Status(response.Status())
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(response.Status(), response.ContentType(), response.Body())
}

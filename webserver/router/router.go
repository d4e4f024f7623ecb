package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deltachat-bot/deltachat-loginbot/webserver/controller"
)

type Options struct {
	RequestLogging bool
	StaticDir      string
}

// New assembles the HTTP surface around the given controller.
func New(c *controller.Controller, opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if opts.RequestLogging {
		engine.Use(gin.Logger())
	}
	engine.GET("/authorize", c.Authorize)
	engine.POST("/token", c.Token)
	engine.POST("/webhook", c.Webhook)
	engine.GET("/requestQr", c.RequestQr)
	engine.GET("/requestQrSvg", c.RequestQrSvg)
	engine.HEAD("/requestQrSvg", c.RequestQrSvgCheck)
	engine.GET("/checkStatus", c.CheckStatus)
	// Everything else is the login page and its assets.
	engine.NoRoute(func(ctx *gin.Context) {
		ctx.FileFromFS(ctx.Request.URL.Path, http.Dir(opts.StaticDir))
	})
	return engine
}

func Run(c *controller.Controller, address string, opts Options) error {
	return New(c, opts).Run(address)
}

package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Webhook is a liveness stub for platform callbacks.
func (c *Controller) Webhook(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
}

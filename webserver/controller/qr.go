package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
)

const platformCallTimeout = 20 * time.Second

// RequestQr starts (or resumes) the session's verification channel and
// returns its invite link. This is the first call the login page makes.
func (c *Controller) RequestQr(ctx *gin.Context) {
	handle, err := c.session(ctx, true)
	if err != nil {
		log.Warn("/requestQr: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), platformCallTimeout)
	defer cancel()
	link, err := c.Verifier.StartVerification(reqCtx, handle)
	if err != nil {
		log.Warn("/requestQr session %v: %v", handle, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"link": link})
}

// RequestQrSvg renders the invite of the session's channel as a scannable
// SVG. /requestQr must have been called first.
func (c *Controller) RequestQrSvg(ctx *gin.Context) {
	handle, err := c.session(ctx, false)
	if err != nil {
		ctx.Data(http.StatusBadRequest, "text/plain", nil)
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), platformCallTimeout)
	defer cancel()
	svg, err := c.Verifier.InviteSVG(reqCtx, handle)
	if err != nil {
		if errors.Is(err, model.NotReadyErr) || errors.Is(err, model.SessionExpiredErr) {
			ctx.Data(http.StatusBadRequest, "text/plain", nil)
			return
		}
		log.Warn("/requestQrSvg session %v: %v", handle, err)
		ctx.Data(http.StatusInternalServerError, "text/plain", nil)
		return
	}
	ctx.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

// RequestQrSvgCheck is the cheap HEAD readiness probe for the SVG.
func (c *Controller) RequestQrSvgCheck(ctx *gin.Context) {
	handle, err := c.session(ctx, false)
	if err == nil && c.Verifier.HasChannel(handle) {
		ctx.Status(http.StatusOK)
		return
	}
	ctx.Status(http.StatusBadRequest)
}

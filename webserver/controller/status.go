package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
	"github.com/deltachat-bot/deltachat-loginbot/service"
)

// CheckStatus is polled by the login page until the user's join is observed.
func (c *Controller) CheckStatus(ctx *gin.Context) {
	handle, err := c.session(ctx, false)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "you need to start the login process first, via /requestQr"})
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), platformCallTimeout)
	defer cancel()
	status, err := c.Verifier.PollMembership(reqCtx, handle)
	switch {
	case err == nil:
	case errors.Is(err, model.NotReadyErr), errors.Is(err, model.SessionExpiredErr):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "you need to start the login process first, via /requestQr"})
		return
	default:
		// Invariant violations land here as well: already logged with
		// context by the verifier, the caller only sees a server error.
		log.Warn("/checkStatus session %v: %v", handle, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if status == service.PollSuccess {
		ctx.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"waiting": true})
}

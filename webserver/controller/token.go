package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
)

// Token exchanges an authorization code for an identity assertion. The
// relying party authenticates with HTTP Basic auth; the code may arrive in
// the query string or the form body.
func (c *Controller) Token(ctx *gin.Context) {
	code := ctx.Query("code")
	if code == "" {
		code = ctx.PostForm("code")
	}
	if code == "" {
		log.Info("/token returned 400 because there was no 'code' in the request")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no code in form data nor string queries"})
		return
	}
	clientID, clientSecret, ok := ctx.Request.BasicAuth()
	if !ok {
		log.Info("/token returned 401 because there is no basic auth header")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect client secret"})
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), platformCallTimeout)
	defer cancel()
	assertion, err := c.Exchanger.Exchange(reqCtx, clientID, clientSecret, code)
	switch {
	case err == nil:
	case errors.Is(err, model.ClientMismatchErr):
		log.Info("/token returned 401 because client credentials were inconsistent")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect client secret"})
		return
	case errors.Is(err, model.InvalidGrantErr):
		log.Info("/token returned 400 because the code was absent or consumed")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid grant"})
		return
	default:
		log.Warn("/token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	ctx.JSON(http.StatusOK, assertion)
}

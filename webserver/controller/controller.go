package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/service"
)

// SessionCookie carries the opaque session handle. The handle is the only
// thing that ever leaves the process; all session state stays in the store.
const SessionCookie = "loginbot_session"

// Controller binds the HTTP surface to the orchestrator services. It owns the
// cookie -> session handle mapping so everything below it stays
// transport-agnostic.
type Controller struct {
	Sessions  *service.SessionStore
	Verifier  *service.Verifier
	Issuer    *service.CodeIssuer
	Exchanger *service.TokenExchanger

	ClientID    string
	RedirectURI string
	StaticDir   string
}

// session resolves the request's session handle. With create set, a missing
// or expired session is replaced by a fresh one and the cookie renewed.
func (c *Controller) session(ctx *gin.Context, create bool) (string, error) {
	handle, err := ctx.Cookie(SessionCookie)
	if err == nil {
		if _, err := c.Sessions.Get(handle); err == nil {
			return handle, nil
		}
	}
	if !create {
		return "", model.SessionExpiredErr
	}
	handle, err = c.Sessions.Create()
	if err != nil {
		return "", err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, handle, int(model.SessionExpire.Seconds()), "/", "", false, true)
	return handle, nil
}

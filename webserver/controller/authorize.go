package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
)

// Authorize is the relying party's entry point. A session with a bound
// identity is redirected straight back with a fresh (or reissued) code;
// anyone else gets the login page.
func (c *Controller) Authorize(ctx *gin.Context) {
	var query struct {
		ClientID    string `form:"client_id"`
		RedirectURI string `form:"redirect_uri"`
		State       string `form:"state"`
	}
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	if query.ClientID != c.ClientID {
		log.Info("/authorize invalid client_id: %v", query.ClientID)
		ctx.Status(http.StatusBadRequest)
		return
	}
	if query.RedirectURI != c.RedirectURI {
		log.Info("/authorize invalid redirect_uri: %v", query.RedirectURI)
		ctx.Status(http.StatusBadRequest)
		return
	}
	handle, err := c.session(ctx, true)
	if err != nil {
		log.Warn("/authorize: %v", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	code, err := c.Issuer.IssueCode(handle)
	if err != nil {
		if errors.Is(err, model.NotVerifiedErr) || errors.Is(err, model.SessionExpiredErr) {
			log.Info("/authorize session %v: showing login screen", handle)
			ctx.File(filepath.Join(c.StaticDir, "login.html"))
			return
		}
		log.Warn("/authorize session %v: %v", handle, err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	log.Info("/authorize session %v: redirecting back with code", handle)
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%v?state=%v&code=%v",
		query.RedirectURI, url.QueryEscape(query.State), code))
}

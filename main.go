package main

import (
	"fmt"
	"path/filepath"

	"github.com/deltachat-bot/deltachat-loginbot/bot"
	_ "github.com/deltachat-bot/deltachat-loginbot/bot/command_handler"
	"github.com/deltachat-bot/deltachat-loginbot/config"
	"github.com/deltachat-bot/deltachat-loginbot/db"
	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
	"github.com/deltachat-bot/deltachat-loginbot/platform/deltachat"
	"github.com/deltachat-bot/deltachat-loginbot/service"
	"github.com/deltachat-bot/deltachat-loginbot/webserver/controller"
	"github.com/deltachat-bot/deltachat-loginbot/webserver/router"
)

func main() {
	conf := config.GetConfig()
	defer db.CloseDB()

	pl, err := deltachat.New(deltachat.Options{
		AccountsDir: filepath.Join(conf.Config, "accounts"),
		Addr:        conf.Email,
		MailPw:      conf.Password,
	})
	if err != nil {
		log.Fatal("platform: %v", err)
	}
	defer pl.Close()

	sessions := service.NewSessionStore()
	verifier := &service.Verifier{
		Sessions:       sessions,
		Platform:       pl,
		DisposalNotice: conf.DisposalNotice,
	}
	issuer := &service.CodeIssuer{
		Sessions: sessions,
		DB:       db.DB(),
	}
	exchanger := &service.TokenExchanger{
		DB:           db.DB(),
		Platform:     pl,
		ClientID:     conf.OauthClientID,
		ClientSecret: conf.OauthClientSecret,
	}

	if conf.BotToken != "" {
		b, err := bot.New(conf.BotToken, conf.OperatorChat, issuer, nil)
		if err != nil {
			log.Fatal("Bot: %v", err)
		}
		exchanger.Announce = func(identity model.Identity) {
			b.Announce(fmt.Sprintf("%v <%v> logged in", identity.Name, identity.Addr))
		}
		go b.Start()
	}

	GoBackgrounds(sessions)

	ctrl := &controller.Controller{
		Sessions:    sessions,
		Verifier:    verifier,
		Issuer:      issuer,
		Exchanger:   exchanger,
		ClientID:    conf.OauthClientID,
		RedirectURI: conf.OauthRedirectURI,
		StaticDir:   conf.StaticDir,
	}
	if err := router.Run(ctrl, conf.Address, router.Options{
		RequestLogging: conf.RequestLogging,
		StaticDir:      conf.StaticDir,
	}); err != nil {
		log.Fatal("%v", err)
	}
}

package config

import (
	log2 "log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/stevenroose/gonfig"

	"github.com/deltachat-bot/deltachat-loginbot/common"
	"github.com/deltachat-bot/deltachat-loginbot/db"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
)

type Params struct {
	Address string `id:"address" short:"a" default:"0.0.0.0:8080" desc:"Listening address"`
	Config  string `id:"config" short:"c" default:"$HOME/.config/loginbot" desc:"Loginbot state directory (chat account and code store)"`

	Email    string `id:"email" desc:"Address of the chat account acting as the login bot"`
	Password string `id:"password" desc:"Password of the chat account"`

	OauthClientID     string `id:"oauth-client-id" desc:"client_id the relying party authenticates with"`
	OauthClientSecret string `id:"oauth-client-secret" desc:"client_secret the relying party authenticates with"`
	OauthRedirectURI  string `id:"oauth-redirect-uri" desc:"The only redirect_uri /authorize accepts"`

	StaticDir      string `id:"static-dir" default:"./static" desc:"Directory with the login page and assets"`
	RequestLogging bool   `id:"request-logging" desc:"Log every inbound HTTP request"`
	DisposalNotice bool   `id:"disposal-notice" default:"true" desc:"Tell users they can delete the verification chat after joining"`

	BotToken     string `id:"bot-token" desc:"Optional Telegram token for the operator bot"`
	OperatorChat int64  `id:"operator-chat" desc:"Telegram chat id that receives login announcements"`

	LogLevel            string `id:"log-level" default:"info" desc:"Optional values: trace, debug, info, warn or error"`
	LogFile             string `id:"log-file" desc:"The path of log file"`
	LogMaxDays          int64  `id:"log-max-days" default:"3" desc:"Maximum number of days to keep log files"`
	LogDisableColor     bool   `id:"log-disable-color"`
	LogDisableTimestamp bool   `id:"log-disable-timestamp"`
}

var params Params

func initFunc() {
	err := gonfig.Load(&params, gonfig.Conf{
		FileDisable:       true,
		FlagIgnoreUnknown: false,
		EnvPrefix:         "LOGINBOT_",
	})
	if err != nil {
		if err.Error() != "unexpected word while parsing flags: '-test.v'" {
			log2.Fatal(err)
		}
	}
	// replace all dots of the filename with underlines
	params.Config = filepath.Join(
		filepath.Dir(params.Config),
		strings.ReplaceAll(filepath.Base(params.Config), ".", "_"),
	)
	params.Config, err = common.HomeExpand(params.Config)
	if err != nil {
		log2.Fatal(err)
	}
	params.LogFile, err = common.HomeExpand(params.LogFile)
	if err != nil {
		log2.Fatal(err)
	}
	if strings.Contains(params.Config, "$HOME") {
		if h, err := os.UserHomeDir(); err == nil {
			params.Config = strings.ReplaceAll(params.Config, "$HOME", h)
		}
	}
	if err := os.MkdirAll(params.Config, 0700); err != nil {
		log2.Fatal(err)
	}
	logWay := "console"
	if params.LogFile != "" {
		logWay = "file"
	}
	log.InitLog(logWay, params.LogFile, params.LogLevel, params.LogMaxDays, params.LogDisableColor, params.LogDisableTimestamp)
	db.InitDB(params.Config)
}

var once sync.Once

func GetConfig() *Params {
	once.Do(initFunc)
	return &params
}

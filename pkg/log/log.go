package log

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/v2rayA/beego/v2/logs"
)

var log *logs.BeeLogger

func init() {
	log = logs.NewLogger(200)
	_ = log.SetLogger("console")
}

// InitLog redirects logging to the console or a rotated file and applies the
// given level. logWay should be "console" or "file".
func InitLog(logWay string, logFile string, logLevel string, maxDays int64, disableColor bool, disableTimestamp bool) {
	log = logs.NewLogger(200)
	var adapter string
	var params map[string]interface{}
	if logWay == "file" {
		adapter = "file"
		params = map[string]interface{}{
			"filename":  logFile,
			"maxdays":   maxDays,
			"timestamp": !disableTimestamp,
		}
	} else {
		adapter = "console"
		params = map[string]interface{}{
			"color":     !disableColor,
			"timestamp": !disableTimestamp,
		}
	}
	b, _ := json.Marshal(params)
	if err := log.SetLogger(adapter, string(b)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	SetLogLevel(logLevel)
}

func SetLogLevel(logLevel string) {
	switch strings.ToLower(logLevel) {
	case "trace":
		log.SetLevel(logs.LevelTrace)
	case "debug":
		log.SetLevel(logs.LevelDebug)
	case "info":
		log.SetLevel(logs.LevelInformational)
	case "warn", "warning":
		log.SetLevel(logs.LevelWarning)
	case "error":
		log.SetLevel(logs.LevelError)
	default:
		log.SetLevel(logs.LevelInformational)
	}
}

func Trace(format string, v ...interface{}) {
	log.Trace(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	log.Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Error(format, v...)
}

func Fatal(format string, v ...interface{}) {
	log.Critical(format, v...)
	os.Exit(1)
}

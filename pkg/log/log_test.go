package log

import (
	"path/filepath"
	"testing"
)

// Exercises both sink configurations so a broken logger dependency or adapter
// config surfaces here rather than at process start.
func TestInitLog(t *testing.T) {
	InitLog("console", "", "debug", 0, true, true)
	Trace("trace %v", 1)
	Debug("debug %v", 1)
	Info("info %v", 1)
	Warn("warn %v", 1)
	Error("error %v", 1)

	InitLog("file", filepath.Join(t.TempDir(), "loginbot.log"), "warn", 1, false, false)
	Warn("warn %v", 2)

	// unknown levels fall back to info rather than failing
	SetLogLevel("nonsense")
	Info("info %v", 2)
}

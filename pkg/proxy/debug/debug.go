package debug

import (
	"log/slog"
	"os"
	"strconv"
)

const (
	ShowSetupKey   = "DEBUG_SHOW_SETUP"
	VerboseLogsKey = "DEBUG_VERBOSE_LOGS"
)

// IsShowSetup reports whether the resolved setup should be logged at startup.
func IsShowSetup() bool {
	return isSet(ShowSetupKey)
}

func IsVerboseLogs() bool {
	return isSet(VerboseLogsKey)
}

func LogLevel() slog.Level {
	if IsVerboseLogs() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func isSet(key string) bool {
	enabled, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && enabled
}

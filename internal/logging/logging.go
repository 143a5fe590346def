package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// SetLevel maps a level string from the CLI flag onto logrus.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		Log.SetLevel(logrus.FatalLevel)
	default:
		Log.Fatalf("unknown log level: %s", level)
	}
}

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before Init so configuration loading can report problems.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init applies the configured level. Unknown levels fall back to info.
func Init(level string) {
	if level == "" {
		level = "info"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		Log.WithField("level", level).Warn("unknown log level, using info")
		logLevel = logrus.InfoLevel
	}
	Log.SetLevel(logLevel)
}

// Component tags every entry with the emitting subsystem.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

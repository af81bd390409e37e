package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is an alias so callers don't import logrus for structured entries.
type Fields = logrus.Fields

var base = logrus.New()

func init() {
	base.SetOutput(os.Stdout)
	Configure(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
}

// Configure switches formatter and level. Production logs are JSON.
func Configure(environment, level string) {
	if environment == "production" {
		base.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch strings.ToLower(level) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		if environment == "development" {
			base.SetLevel(logrus.DebugLevel)
		} else {
			base.SetLevel(logrus.InfoLevel)
		}
	}
}

// Logger exposes the underlying logrus instance, e.g. for tests that need to swap output.
func Logger() *logrus.Logger {
	return base
}

func Info(format string, v ...interface{}) {
	base.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	base.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	base.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	base.Warnf(format, v...)
}

func Fatal(format string, v ...interface{}) {
	base.Fatalf(format, v...)
}

func WithFields(fields Fields) *logrus.Entry {
	return base.WithFields(fields)
}

func WithComponent(name string) *logrus.Entry {
	return base.WithField("component", name)
}

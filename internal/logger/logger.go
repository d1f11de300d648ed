package logger

import (
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Get returns the process-wide logger.
func Get() *logrus.Logger {
	return log
}

// SetLevel parses level ("debug", "info", ...). Unknown values keep info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, falling back to info")
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}

package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New creates the job-wide logger. Output is plain text on stderr so the
// generated artifacts on stdout stay clean; DOCSNAP_LOG_LEVEL or the
// verbose flag bump the level.
func New(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	log.SetLevel(levelFromEnv(verbose))
	return log
}

// Component scopes a logger to one pipeline component.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

func levelFromEnv(verbose bool) logrus.Level {
	if raw := strings.TrimSpace(os.Getenv("DOCSNAP_LOG_LEVEL")); raw != "" {
		if lvl, err := logrus.ParseLevel(raw); err == nil {
			return lvl
		}
	}
	if verbose {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

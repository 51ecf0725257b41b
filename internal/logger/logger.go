// Package logger configures the module-wide structured logger.
//
// Level and format come from the environment (LOG_LEVEL, LOG_FORMAT) so
// embedding applications control verbosity without an API surface.
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger instance.
var Log = logrus.New()

var initOnce sync.Once

// Init applies LOG_LEVEL and LOG_FORMAT from the environment. It runs
// once; later calls are no-ops. LOG_LEVEL accepts the logrus level names
// (debug, info, warn, error); LOG_FORMAT=json switches to JSON output.
func Init() {
	initOnce.Do(func() {
		level := logrus.InfoLevel
		if raw := os.Getenv("LOG_LEVEL"); raw != "" {
			if parsed, err := logrus.ParseLevel(strings.ToLower(raw)); err == nil {
				level = parsed
			}
		}
		Log.SetLevel(level)

		if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
			Log.SetFormatter(&logrus.JSONFormatter{})
		} else {
			Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}
		Log.SetOutput(os.Stdout)
	})
}

// WithSession returns a logger scoped to one parse session.
func WithSession(id, demo string) *logrus.Entry {
	Init()
	return Log.WithFields(logrus.Fields{
		"session": id,
		"demo":    demo,
	})
}

// Package flog is the logging surface the load-balancing core logs through:
// leveled, structured, no file or remote sinks.
package flog

import "github.com/sirupsen/logrus"

// Fields is a structured logging payload.
type Fields map[string]any

func (f Fields) toLogrus() logrus.Fields {
	return logrus.Fields(f)
}

var base = logrus.New()

func init() {
	base.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts the package-wide log level. Callers embedding flb in a
// larger framework typically wire this to their own configuration.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

func Debug(msg string, fields Fields) {
	base.WithFields(fields.toLogrus()).Debug(msg)
}

func Warn(msg string, fields Fields) {
	base.WithFields(fields.toLogrus()).Warn(msg)
}

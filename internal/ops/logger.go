// Package ops provides a thin logrus wrapper so that writers, the reader,
// and the benchmark driver can each attach a fixed set of structured fields
// (run tag, writer mode, round id) once, rather than repeating them at
// every log.WithFields call site.
package ops

import (
	log "github.com/sirupsen/logrus"
)

// Logger emits structured log events with a baseline set of fields already
// attached.
type Logger struct {
	fields log.Fields
}

// NewLogger returns a Logger rooted at the package-level logrus logger.
func NewLogger(fields log.Fields) Logger {
	return Logger{fields: fields}
}

// With returns a Logger that additionally carries the given fields.
func (l Logger) With(fields log.Fields) Logger {
	var merged = make(log.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return Logger{fields: merged}
}

func (l Logger) entry() *log.Entry {
	return log.WithFields(l.fields)
}

// Debug logs at debug level.
func (l Logger) Debug(msg string) { l.entry().Debug(msg) }

// Info logs at info level.
func (l Logger) Info(msg string) { l.entry().Info(msg) }

// Warn logs at warn level.
func (l Logger) Warn(msg string) { l.entry().Warn(msg) }

// Error logs at error level.
func (l Logger) Error(msg string) { l.entry().Error(msg) }

// Package log defines the logging contract the scheduler and reactor
// write against, backed by logrus.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the subset of logrus's surface the rest of the module uses.
// Any *logrus.Logger or *logrus.Entry satisfies it, so embedders can hand
// in their own configured instance.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

// NewDefaultLogger returns a logrus logger at info level with full
// timestamps, the configuration used when an embedder does not supply
// a Logger of its own.
func NewDefaultLogger() Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// NewLogger builds a logger writing to w at the named level. An
// unparseable level falls back to info rather than failing, so a bad
// config value degrades to noisier output instead of no output.
func NewLogger(w io.Writer, level string) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

package ui

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	Debug bool
	log   *logrus.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})

	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Debug: debug, log: l}
}

// With returns an entry carrying one structured field, e.g. the chapter URL.
func (l *Logger) With(key string, value any) *logrus.Entry {
	return l.log.WithField(key, value)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}

// Package logging sets up the logrus file logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New truncates path and returns a logger writing to it. Every entry carries
// a run_id field so lines from one invocation can be grouped. An empty path
// discards all output.
func New(path, level string) (*logrus.Entry, io.Closer, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		lvl = parsed
	}

	var out io.WriteCloser = nopCloser{io.Discard}
	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("error removing old log file: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening log file: %w", err)
		}
		out = f
	}

	return NewWithWriter(out, lvl), out, nil
}

// NewWithWriter returns a logger writing text entries to w.
func NewWithWriter(w io.Writer, level logrus.Level) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05,000",
	})
	return logger.WithField("run_id", uuid.NewString())
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Entry {
	return NewWithWriter(io.Discard, logrus.PanicLevel)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

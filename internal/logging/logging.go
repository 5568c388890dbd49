// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Logger is a logrus logger together with the log file it appends to, if
// any.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New returns a logger at the given level writing to w and, when file is
// set, appending to file as well. An unknown level falls back to info.
// Call Close to release the file.
func New(level, file string, w io.Writer) (*Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if w == nil {
		w = os.Stderr
	}
	l := &Logger{Logger: log}
	writers := []io.Writer{w}
	if file != "" {
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating log directory: %w", err)
			}
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}
	log.SetOutput(io.MultiWriter(writers...))

	return l, nil
}

// FileOnly stops writing to the terminal stream. Lines go to the log file,
// or nowhere when there is none.
func (l *Logger) FileOnly() {
	if l.file == nil {
		l.SetOutput(io.Discard)
		return
	}
	l.SetOutput(l.file)
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}

// Package logging builds the application logger on top of logrus.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds logger configuration.
type Config struct {
	// Level is a logrus level name. Unknown names fall back to info.
	Level string

	// Format is "json" or "text".
	Format string

	// FilePath, when set, receives a copy of every line.
	FilePath string
}

// AppLogger is a logrus logger that may own a log file.
type AppLogger struct {
	*logrus.Logger
	file *os.File
}

// New creates a logger writing to out and, if configured, to a file.
func New(config Config, out io.Writer) (*AppLogger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	appLogger := &AppLogger{Logger: logger}

	if config.FilePath != "" {
		if err := appLogger.setupFileOutput(out, config.FilePath); err != nil {
			return nil, fmt.Errorf("failed to setup file output: %w", err)
		}
	}

	return appLogger, nil
}

// setupFileOutput tees log output into the file at filePath.
func (al *AppLogger) setupFileOutput(out io.Writer, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	al.file = file
	al.Logger.SetOutput(io.MultiWriter(out, file))
	return nil
}

// Close closes the log file, if any.
func (al *AppLogger) Close() error {
	if al.file != nil {
		return al.file.Close()
	}
	return nil
}

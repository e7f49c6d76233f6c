package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logsDir           = "logs"
	DefaultLogFile    = "logs/moderator.log"
	fileBufferSize    = 32 * 1024
	consoleBufferSize = 1024
)

type Options struct {
	Level string
	// File must live under logs/. Empty means DefaultLogFile.
	File         string
	FileDisabled bool
}

// NewLogger builds the JSON logger. The returned func flushes and closes the async writers.
func NewLogger(opts Options) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(parseLevel(opts.Level))

	if opts.FileDisabled {
		logger.SetOutput(os.Stdout)
		return logger, func() {}, nil
	}

	logFile := opts.File
	if logFile == "" {
		logFile = DefaultLogFile
	}
	logFile = filepath.Clean(logFile)
	if !strings.HasPrefix(logFile, logsDir+string(filepath.Separator)) {
		return nil, nil, fmt.Errorf("invalid log file path %q: must be in logs directory", logFile)
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(fileWriter)

	consoleHook := NewAsyncConsoleHook(consoleBufferSize)
	logger.AddHook(consoleHook)

	return logger, func() {
		consoleHook.Close()
		fileWriter.Close()
	}, nil
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

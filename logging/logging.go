package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"repodoc/config"
)

// InitLogger initializes the logger based on the loaded configuration.
func InitLogger() {
	cfg := config.Default().Logging
	if config.AppConfig != nil {
		cfg = config.AppConfig.Logging
	}
	Configure(logrus.StandardLogger(), cfg)
}

// Configure applies level, format and output to logger. The menu writes to
// stdout, so an empty output falls back to stderr.
func Configure(logger *logrus.Logger, cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logger.Warnf("Failed to open log file '%s', using 'stderr' instead. Error: %v", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}
	logger.SetOutput(output)

	logger.Debug("Logger initialized")
}

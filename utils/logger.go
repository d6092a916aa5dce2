package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

const serviceName = "auction-settlement"

// entry carries the fields attached to every log line
var entry = log.WithField("service", serviceName)

func init() {
	// JSON to stdout at info level until Configure is called
	log.SetFormatter(jsonFormatter())
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func jsonFormatter() log.Formatter {
	return &log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"}
}

// Configure sets the global level and output format ("json" or "text").
// On error the previous settings are kept.
func Configure(level, format string) error {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return err
	}

	var formatter log.Formatter
	switch strings.ToLower(format) {
	case "", "json":
		formatter = jsonFormatter()
	case "text":
		formatter = &log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02T15:04:05Z07:00"}
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.SetLevel(parsed)
	log.SetFormatter(formatter)
	return nil
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Debug logs a message at debug level with optional fields
func Debug(message string, fields map[string]any) {
	entry.WithFields(fields).Debug(message)
}

// Info logs a message at info level with optional fields
func Info(message string, fields map[string]any) {
	entry.WithFields(fields).Info(message)
}

// Warn logs a message at warning level with optional fields
func Warn(message string, fields map[string]any) {
	entry.WithFields(fields).Warn(message)
}

// Error logs a message at error level with optional fields
func Error(message string, fields map[string]any) {
	entry.WithFields(fields).Error(message)
}

// Fatal logs a message at fatal level and exits the application
func Fatal(message string, fields map[string]any) {
	entry.WithFields(fields).Fatal(message)
}

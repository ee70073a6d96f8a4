package config

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

func parseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(level)
}

// ConfigureLogging applies the logging section to the standard logrus logger
func ConfigureLogging(l Logging, out io.Writer) error {
	level, err := parseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}
	log.SetLevel(level)

	switch strings.ToLower(l.Format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown logging format %q", l.Format)
	}

	if out != nil {
		log.SetOutput(out)
	}
	return nil
}

// Package logging builds the zerolog loggers used by the CLI and examples
// and masks secrets before they reach a log line.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaskValue replaces secrets too short to partially reveal.
const DefaultMaskValue = "***"

// visiblePrefix is how many leading characters of a secret stay readable.
const visiblePrefix = 4

// New creates a logger at the given level writing to w (os.Stderr when nil).
// An unknown level falls back to info. If pretty is true, output is
// formatted for humans.
func New(level string, pretty bool, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var l zerolog.Logger
	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(w).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || zLevel == zerolog.NoLevel {
		zLevel = zerolog.InfoLevel
	}
	return l.Level(zLevel)
}

// MaskSecret keeps the first few characters of an API key and hides the rest.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= visiblePrefix*2 {
		return DefaultMaskValue
	}
	return secret[:visiblePrefix] + DefaultMaskValue
}

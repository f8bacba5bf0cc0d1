// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = log.InfoLevel

// ParseLevel parses a level name, falling back to DefaultLevel for empty or
// unknown names.
func ParseLevel(name string) log.Level {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultLevel
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return DefaultLevel
	}
	return lvl
}

// Setup installs the prefixed text formatter, directs output to w (stdout
// when nil) and sets the level.
func Setup(w io.Writer, level log.Level) {
	if w == nil {
		w = os.Stdout
	}
	log.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	})
	log.SetOutput(w)
	log.SetLevel(level)
}

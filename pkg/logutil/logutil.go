package logutil

import (
	"fmt"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
)

// Configure sets the global CLI log level. Store packages log through
// log/slog independently; this only governs what reaches stderr.
func Configure(levelRaw string) error {
	levelRaw = strings.TrimSpace(levelRaw)
	if levelRaw == "" {
		levelRaw = "info"
	}
	level, err := log.ParseLevel(levelRaw)
	if err != nil {
		return fmt.Errorf("invalid loglevel %q", levelRaw)
	}
	log.SetLevel(level)
	log.SetTimeFormat(time.Kitchen)
	log.SetReportTimestamp(true)
	return nil
}

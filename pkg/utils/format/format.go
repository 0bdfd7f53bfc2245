// Package format renders sizes and durations for API responses.
package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes returns a human-readable byte size (e.g. "1.5 MB").
func Bytes(b int64) string {
	if b < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(b))
}

// ParseBytes parses a human-entered size ("500MB", "1.5 GiB") into bytes.
func ParseBytes(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// Duration converts seconds to "M:SS" or "H:MM:SS" display format.
func Duration(seconds float64) string {
	if seconds < 0 {
		return "0:00"
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// JobDuration formats a time.Duration as a human-readable string
// (e.g. "3.2 seconds", "1.5 minutes", "2.0 hours").
func JobDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1f seconds", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1f minutes", d.Minutes())
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}

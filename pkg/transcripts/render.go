package transcripts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Format selects how a transcript is rendered for delivery.
type Format string

const (
	FormatClean       Format = "clean"
	FormatTimestamped Format = "timestamped"
	FormatStructured  Format = "structured"
)

// ParseFormat validates a user-supplied format name. Empty input means clean.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatClean:
		return FormatClean, nil
	case FormatTimestamped:
		return FormatTimestamped, nil
	case FormatStructured:
		return FormatStructured, nil
	default:
		return "", fmt.Errorf("transcripts: unknown format %q", s)
	}
}

// Ext returns the file extension for the rendered form.
func (f Format) Ext() string {
	if f == FormatStructured {
		return "json"
	}
	return "txt"
}

// Document carries a parsed transcript together with its provenance, and is
// what the structured rendering serializes.
type Document struct {
	VideoID      string    `json:"video_id"`
	VideoTitle   string    `json:"video_title,omitempty"`
	LanguageCode string    `json:"language_code"`
	LanguageName string    `json:"language_name,omitempty"`
	Generated    bool      `json:"auto_generated"`
	FetchedAt    time.Time `json:"fetched_at"`
	Entries      []Entry   `json:"entries"`
}

// Render produces the transcript in the requested form.
func (d *Document) Render(f Format) ([]byte, error) {
	switch f {
	case FormatClean:
		return []byte(RenderClean(d.Entries)), nil
	case FormatTimestamped:
		return []byte(RenderTimestamped(d.Entries)), nil
	case FormatStructured:
		return json.MarshalIndent(d, "", "  ")
	default:
		return nil, fmt.Errorf("transcripts: unknown format %q", f)
	}
}

// RenderClean joins all entry text into plain paragraph text.
func RenderClean(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Text)
	}
	return strings.Join(parts, " ")
}

// RenderTimestamped emits one "[MM:SS] text" line per entry. Offsets at an
// hour or beyond use the HH:MM:SS form.
func RenderTimestamped(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString("[")
		sb.WriteString(formatOffset(e.Start))
		sb.WriteString("] ")
		sb.WriteString(e.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatOffset(d time.Duration) string {
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// LanguageName resolves a BCP 47 code to its English display name. Unknown
// codes are returned unchanged.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// Stats summarizes a transcript for preview responses.
type Stats struct {
	EntryCount int           `json:"entry_count"`
	WordCount  int           `json:"word_count"`
	CharCount  int           `json:"char_count"`
	Duration   time.Duration `json:"-"`
}

// Summarize computes transcript statistics. Duration is the end offset of the
// last entry.
func Summarize(entries []Entry) Stats {
	var st Stats
	st.EntryCount = len(entries)
	for _, e := range entries {
		st.WordCount += len(strings.Fields(e.Text))
		st.CharCount += utf8.RuneCountInString(e.Text)
	}
	if n := len(entries); n > 0 {
		last := entries[n-1]
		st.Duration = last.Start + last.Duration
	}
	return st
}

// Preview returns the first n entries rendered as clean text, and whether the
// transcript was truncated.
func Preview(entries []Entry, n int) (text string, truncated bool) {
	if n <= 0 || n >= len(entries) {
		return RenderClean(entries), false
	}
	return RenderClean(entries[:n]), true
}

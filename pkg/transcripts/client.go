// Package transcripts fetches caption tracks over HTTP and renders them as
// text or structured documents. Track URLs come from yt-dlp metadata; the
// json3 timedtext form is expected.
package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoTranscript reports that the source has no transcript to offer:
// captions disabled, track removed, or an empty track body. This condition is
// permanent; callers must not retry it.
var ErrNoTranscript = errors.New("no transcript available for this video")

// Entry is one timed caption line.
type Entry struct {
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
	Text     string        `json:"text"`
}

type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchTrack downloads and parses a json3 caption track.
func (c *Client) FetchTrack(ctx context.Context, trackURL string) ([]Entry, error) {
	trackURL = strings.TrimSpace(trackURL)
	if trackURL == "" {
		return nil, fmt.Errorf("transcripts: track url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, ErrNoTranscript
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
		return nil, fmt.Errorf("transcripts: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}

	return ParseJSON3(body)
}

// json3 timedtext layout: a flat list of events, each with a start offset,
// duration, and text segments.
type json3Doc struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs    int64      `json:"tStartMs"`
	DurationMs int64      `json:"dDurationMs"`
	Segs       []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// ParseJSON3 decodes a json3 timedtext body into entries. Events without
// text (window-positioning markers and the like) are dropped. An entirely
// empty track maps to ErrNoTranscript.
func ParseJSON3(body []byte) ([]Entry, error) {
	var doc json3Doc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("transcripts: parse json3: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Events))
	for _, ev := range doc.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := normalizeText(sb.String())
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Start:    time.Duration(ev.StartMs) * time.Millisecond,
			Duration: time.Duration(ev.DurationMs) * time.Millisecond,
			Text:     text,
		})
	}

	if len(entries) == 0 {
		return nil, ErrNoTranscript
	}
	return entries, nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

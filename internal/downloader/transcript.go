package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"thirdcoast.systems/fetchtube/internal/retry"
	"thirdcoast.systems/fetchtube/internal/selection"
	"thirdcoast.systems/fetchtube/internal/videoid"
	"thirdcoast.systems/fetchtube/pkg/transcripts"
	"thirdcoast.systems/fetchtube/pkg/utils/filename"
)

// TranscriptRequest asks for a caption track download.
type TranscriptRequest struct {
	URL      string
	Language string // preferred language; empty means resolver default
	Format   transcripts.Format
	UserDir  string
}

// TranscriptResult describes a fetched transcript.
type TranscriptResult struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name,omitempty"`
	Generated    bool   `json:"auto_generated"`
	EntryCount   int    `json:"entry_count"`
	WordCount    int    `json:"word_count"`
	FilePath     string `json:"file_path"`
}

// ListTranscriptTracks probes the URL and returns its caption tracks. The
// resolver's default pick is flagged so clients can preselect it.
func (s *Service) ListTranscriptTracks(ctx context.Context, client MediaClient, url string, preferredLanguage string) ([]selection.TranscriptTrack, error) {
	_, canonicalURL, err := videoid.Normalize(url)
	if err != nil {
		return nil, err
	}

	info, err := client.GetInfo(ctx, canonicalURL, "--no-playlist")
	if err != nil {
		return nil, fmt.Errorf("probe metadata: %w", err)
	}

	tracks := tracksFromInfo(info)
	if chosen := selection.SelectDefaultTranscript(tracks, preferredLanguage); chosen != nil {
		for i := range tracks {
			if tracks[i].LanguageCode == chosen.LanguageCode && tracks[i].IsGenerated == chosen.IsGenerated {
				tracks[i].IsDefault = true
				break
			}
		}
	}
	return tracks, nil
}

// FetchTranscript resolves the transcript track for the video, downloads it,
// and renders it into the requested form under the user's transcript
// directory. Missing transcripts are a permanent condition.
func (s *Service) FetchTranscript(ctx context.Context, client MediaClient, req TranscriptRequest) (*TranscriptResult, error) {
	_, canonicalURL, err := videoid.Normalize(req.URL)
	if err != nil {
		return nil, err
	}

	info, err := client.GetInfo(ctx, canonicalURL, "--no-playlist")
	if err != nil {
		return nil, fmt.Errorf("probe metadata: %w", err)
	}

	chosen := selection.SelectDefaultTranscript(tracksFromInfo(info), req.Language)
	if chosen == nil {
		return nil, retry.Permanent(transcripts.ErrNoTranscript)
	}

	track, generated, ok := info.TrackFor(chosen.LanguageCode)
	if !ok {
		return nil, retry.Permanent(transcripts.ErrNoTranscript)
	}

	var entries []transcripts.Entry
	err = retry.Do(ctx, s.cfg.MaxRetries, s.cfg.RetryDelay(), func(ctx context.Context) error {
		got, err := s.captions.FetchTrack(ctx, track.URL)
		if err != nil {
			if errors.Is(err, transcripts.ErrNoTranscript) {
				return retry.Permanent(err)
			}
			return err
		}
		entries = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc := &transcripts.Document{
		VideoID:      info.ID,
		VideoTitle:   info.Title,
		LanguageCode: chosen.LanguageCode,
		LanguageName: transcripts.LanguageName(chosen.LanguageCode),
		Generated:    generated,
		FetchedAt:    time.Now().UTC(),
		Entries:      entries,
	}

	rendered, err := doc.Render(req.Format)
	if err != nil {
		return nil, err
	}

	destDir, err := s.ensureDir(req.UserDir, "transcript")
	if err != nil {
		return nil, err
	}

	base := filename.Sanitize(fmt.Sprintf("%s [%s]", info.Title, info.ID), 0)
	path := filepath.Join(destDir, fmt.Sprintf("%s.%s.%s", base, chosen.LanguageCode, req.Format.Ext()))
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}

	stats := transcripts.Summarize(entries)
	return &TranscriptResult{
		VideoID:      info.ID,
		Title:        info.Title,
		LanguageCode: chosen.LanguageCode,
		LanguageName: doc.LanguageName,
		Generated:    generated,
		EntryCount:   stats.EntryCount,
		WordCount:    stats.WordCount,
		FilePath:     path,
	}, nil
}

// PreviewTranscript fetches and renders the first entries of the resolved
// track without writing anything to disk.
func (s *Service) PreviewTranscript(ctx context.Context, client MediaClient, url string, language string, limit int) (string, *selection.TranscriptTrack, error) {
	_, canonicalURL, err := videoid.Normalize(url)
	if err != nil {
		return "", nil, err
	}

	info, err := client.GetInfo(ctx, canonicalURL, "--no-playlist")
	if err != nil {
		return "", nil, fmt.Errorf("probe metadata: %w", err)
	}

	chosen := selection.SelectDefaultTranscript(tracksFromInfo(info), language)
	if chosen == nil {
		return "", nil, transcripts.ErrNoTranscript
	}

	track, _, ok := info.TrackFor(chosen.LanguageCode)
	if !ok {
		return "", nil, transcripts.ErrNoTranscript
	}

	entries, err := s.captions.FetchTrack(ctx, track.URL)
	if err != nil {
		return "", nil, err
	}

	text, _ := transcripts.Preview(entries, limit)
	return text, chosen, nil
}

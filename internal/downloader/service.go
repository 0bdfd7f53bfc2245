// Package downloader orchestrates media retrieval: it probes metadata,
// ranks the available streams, and drives retried downloads into per-user
// directories.
package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"thirdcoast.systems/fetchtube/internal/config"
	"thirdcoast.systems/fetchtube/internal/retry"
	"thirdcoast.systems/fetchtube/internal/selection"
	"thirdcoast.systems/fetchtube/internal/videoid"
	"thirdcoast.systems/fetchtube/pkg/transcripts"
	"thirdcoast.systems/fetchtube/pkg/utils/format"
	"thirdcoast.systems/fetchtube/pkg/ytdlp"
)

type Service struct {
	cfg      *config.Config
	captions *transcripts.Client
	log      *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		captions: transcripts.NewClient(),
		log:      log,
	}
}

// MediaClient is the slice of the yt-dlp client the service drives.
type MediaClient interface {
	GetInfo(ctx context.Context, url string, extraArgs ...string) (*ytdlp.Info, error)
	DownloadFormat(ctx context.Context, url string, formatID string, destDir string, extraArgs ...string) (string, error)
}

// NewClient builds a yt-dlp client for one job. Each job gets its own client
// so cookie jars never leak between users.
func (s *Service) NewClient(cookies string) *ytdlp.Client {
	client := ytdlp.New()
	client.Path = s.cfg.YtdlpPath
	client.EnableCookieJar = true
	client.Cookies = cookies
	return client
}

// Overrides are per-request preference tweaks layered over the configured
// defaults.
type Overrides struct {
	PreferredQuality string
	PreferredFormats []string
}

// Preferences resolves the effective selection preferences for a media kind.
func (s *Service) Preferences(kind selection.MediaKind, ov Overrides) selection.Preferences {
	prefs := selection.Preferences{
		MaxFallbackAttempts: s.cfg.MaxFallbackAttempts,
	}
	switch kind {
	case selection.KindVideo:
		prefs.PreferredQuality = s.cfg.VideoPreferredQuality
		prefs.PreferredFormats = s.cfg.VideoPreferredFormats
	default:
		prefs.PreferredQuality = s.cfg.AudioPreferredQuality
		prefs.PreferredFormats = s.cfg.AudioPreferredFormats
	}
	if ov.PreferredQuality != "" {
		prefs.PreferredQuality = ov.PreferredQuality
	}
	if len(ov.PreferredFormats) > 0 {
		prefs.PreferredFormats = ov.PreferredFormats
	}
	return prefs
}

// MediaRequest asks for an audio or video download.
type MediaRequest struct {
	URL       string
	Kind      selection.MediaKind
	UserDir   string
	Overrides Overrides
}

// MediaResult describes a finished download.
type MediaResult struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Uploader     string `json:"uploader,omitempty"`
	Duration     string `json:"duration,omitempty"`
	FilePath     string `json:"file_path"`
	FormatID     string `json:"format_id"`
	Attempts     int    `json:"attempts"`
	Size         string `json:"size,omitempty"`
	MetadataPath string `json:"-"`
}

// Download probes the URL, ranks the matching streams, and walks the ranked
// list until one download succeeds. Each candidate gets the configured retry
// budget before the next one is tried.
func (s *Service) Download(ctx context.Context, client MediaClient, req MediaRequest) (*MediaResult, error) {
	_, canonicalURL, err := videoid.Normalize(req.URL)
	if err != nil {
		return nil, err
	}

	info, err := client.GetInfo(ctx, canonicalURL, "--no-playlist")
	if err != nil {
		return nil, fmt.Errorf("probe metadata: %w", err)
	}

	destDir, err := s.ensureDir(req.UserDir, string(req.Kind))
	if err != nil {
		return nil, err
	}

	prefs := s.Preferences(req.Kind, req.Overrides)
	candidates := candidatesFromInfo(info)

	attempt := func(ctx context.Context, c selection.StreamCandidate) (string, error) {
		extraArgs := s.conversionArgs(req.Kind, c, prefs)

		var path string
		err := retry.Do(ctx, s.cfg.MaxRetries, s.cfg.RetryDelay(), func(ctx context.Context) error {
			p, err := client.DownloadFormat(ctx, canonicalURL, c.FormatID, destDir, extraArgs...)
			if err != nil {
				return classifyDownloadError(err)
			}
			path = p
			return nil
		})
		return path, err
	}

	outcome := selection.SelectAndDownload(ctx, candidates, req.Kind, prefs, attempt, s.log)
	if !outcome.Success {
		return nil, outcome.Err
	}

	result := &MediaResult{
		VideoID:  info.ID,
		Title:    info.Title,
		Uploader: info.Uploader,
		Duration: format.Duration(info.Duration),
		FilePath: outcome.FilePath,
		FormatID: outcome.FormatID,
		Attempts: outcome.Attempts,
	}
	if st, err := os.Stat(outcome.FilePath); err == nil {
		result.Size = format.Bytes(st.Size())
	}

	if metaPath, err := s.writeMetadata(outcome.FilePath, result); err != nil {
		s.log.Warn("failed to write metadata artifact", "path", outcome.FilePath, "error", err)
	} else {
		result.MetadataPath = metaPath
	}

	return result, nil
}

// conversionArgs returns postprocessor args when the picked stream needs
// converting. Only mp3 requires extraction; native container formats are
// kept as delivered.
func (s *Service) conversionArgs(kind selection.MediaKind, c selection.StreamCandidate, prefs selection.Preferences) []string {
	if kind != selection.KindAudio || len(prefs.PreferredFormats) == 0 {
		return nil
	}
	want := strings.ToLower(prefs.PreferredFormats[0])
	if want == "mp3" && !strings.EqualFold(c.Ext, "mp3") {
		return ytdlp.ExtractAudioArgs("mp3", "")
	}
	return nil
}

func (s *Service) ensureDir(userDir string, kind string) (string, error) {
	if strings.TrimSpace(userDir) == "" {
		return "", fmt.Errorf("downloader: user directory is required")
	}
	dir := filepath.Join(s.cfg.DownloadRoot, userDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	return dir, nil
}

// writeMetadata drops a small sidecar JSON next to the artifact.
func (s *Service) writeMetadata(filePath string, result *MediaResult) (string, error) {
	metaPath := strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".info.json"

	payload := struct {
		*MediaResult
		FetchedAt time.Time `json:"fetched_at"`
	}{result, time.Now().UTC()}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return "", err
	}
	return metaPath, nil
}

// Errors yt-dlp reports for conditions that affect the whole video, where no
// amount of retrying or candidate fallback will help. Format-level failures
// like "Requested format is not available" are deliberately absent: the next
// ranked format ID may well exist.
var permanentErrorMarkers = []string{
	"Video unavailable",
	"Private video",
	"This video is not available",
	"Sign in to confirm your age",
	"This video has been removed",
	"account associated with this video has been terminated",
}

// classifyDownloadError marks unrecoverable yt-dlp failures as permanent so
// neither the retry loop nor the candidate fallback wastes attempts on them.
// Format-level failures stay retryable at the selector level: the next ranked
// candidate may well work.
func classifyDownloadError(err error) error {
	var execErr *ytdlp.ExecError
	if !errors.As(err, &execErr) {
		return err
	}
	combined := execErr.Stderr + "\n" + execErr.Stdout
	for _, marker := range permanentErrorMarkers {
		if strings.Contains(combined, marker) {
			return retry.Permanent(err)
		}
	}
	return err
}

// Package selection picks the best media stream or transcript track from the
// candidates yt-dlp reports for a video, with ranked fallback when a chosen
// candidate fails to download.
package selection

import (
	"time"
)

// MediaKind describes which class of stream a caller wants.
type MediaKind string

const (
	// KindAudio matches audio-only streams (audio codec, no video codec).
	KindAudio MediaKind = "audio"
	// KindVideo matches video-only streams (video codec, no audio codec).
	KindVideo MediaKind = "video"
	// KindCombined matches muxed streams carrying both.
	KindCombined MediaKind = "combined"
)

// StreamCandidate is one selectable encoded stream as reported by the
// metadata extraction step. It is never mutated by this package.
type StreamCandidate struct {
	FormatID       string
	Ext            string
	HasAudio       bool
	HasVideo       bool
	Height         int    // vertical resolution; 0 for audio-only streams
	QualityNote    string // free-text quality label, e.g. "medium", "720p"
	Filesize       int64  // exact size in bytes; 0 if unknown
	FilesizeApprox int64  // approximate size in bytes; 0 if unknown
	Language       string
}

// MatchesKind reports whether the candidate's codec flags fit the kind.
func (c StreamCandidate) MatchesKind(kind MediaKind) bool {
	switch kind {
	case KindAudio:
		return c.HasAudio && !c.HasVideo
	case KindVideo:
		return c.HasVideo && !c.HasAudio
	case KindCombined:
		return c.HasAudio && c.HasVideo
	default:
		return false
	}
}

// BestFilesize returns the exact size if known, the approximate size
// otherwise. ok is false when neither is available.
func (c StreamCandidate) BestFilesize() (bytes int64, ok bool) {
	if c.Filesize > 0 {
		return c.Filesize, true
	}
	if c.FilesizeApprox > 0 {
		return c.FilesizeApprox, true
	}
	return 0, false
}

// Preferences steers scoring and fallback. Supplied per call; zero fields
// fall back to the documented defaults via Normalize.
type Preferences struct {
	// PreferredQuality is a coarse tier for audio ("high", "medium", "low")
	// or a resolution label for video ("480p", "720p", "1080p").
	PreferredQuality string

	// PreferredFormats is an ordered list of container extensions; earlier
	// entries score higher.
	PreferredFormats []string

	// MaxFallbackAttempts bounds how many ranked candidates are attempted.
	MaxFallbackAttempts int
}

const (
	// DefaultMaxFallbackAttempts bounds the ranked fallback search.
	DefaultMaxFallbackAttempts = 3
	// DefaultMaxRetries is the per-candidate retry budget.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the initial backoff delay between retries.
	DefaultRetryDelay = 2 * time.Second
)

// DefaultAudioPreferences returns the documented audio defaults.
func DefaultAudioPreferences() Preferences {
	return Preferences{
		PreferredQuality:    "medium",
		PreferredFormats:    []string{"mp3", "m4a", "webm"},
		MaxFallbackAttempts: DefaultMaxFallbackAttempts,
	}
}

// DefaultVideoPreferences returns the documented video defaults.
func DefaultVideoPreferences() Preferences {
	return Preferences{
		PreferredQuality:    "720p",
		PreferredFormats:    []string{"mp4", "webm", "mkv"},
		MaxFallbackAttempts: DefaultMaxFallbackAttempts,
	}
}

// Normalize fills zero fields with the defaults for the given kind.
func (p Preferences) Normalize(kind MediaKind) Preferences {
	def := DefaultVideoPreferences()
	if kind == KindAudio {
		def = DefaultAudioPreferences()
	}
	if p.PreferredQuality == "" {
		p.PreferredQuality = def.PreferredQuality
	}
	if len(p.PreferredFormats) == 0 {
		p.PreferredFormats = def.PreferredFormats
	}
	if p.MaxFallbackAttempts <= 0 {
		p.MaxFallbackAttempts = def.MaxFallbackAttempts
	}
	return p
}

// ScoredCandidate pairs a candidate with its component scores. Instances are
// transient; they exist only while a selection is in flight.
type ScoredCandidate struct {
	Candidate    StreamCandidate
	QualityScore int
	FormatScore  int
	SizeScore    int
	Total        int
}

// DownloadOutcome is the result of attempting to realize a selection.
type DownloadOutcome struct {
	Success  bool
	FilePath string
	FormatID string
	Attempts int // candidates attempted, not per-candidate retries
	Err      error
}

// TranscriptTrack is one available transcript as reported by the source.
type TranscriptTrack struct {
	LanguageCode   string
	LanguageName   string
	IsGenerated    bool
	IsTranslatable bool
	IsDefault      bool
}

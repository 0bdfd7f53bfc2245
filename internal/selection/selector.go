package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"thirdcoast.systems/fetchtube/internal/retry"
)

// ErrNoCandidate is returned when no stream of the requested kind exists.
var ErrNoCandidate = errors.New("no suitable stream candidate")

// ExhaustedError reports that every attempted candidate failed.
type ExhaustedError struct {
	Kind    MediaKind
	Tried   int
	LastErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d fallback candidates failed for %s download: %v", e.Tried, e.Kind, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// AttemptFn tries to realize one candidate, returning the resulting file
// path. Implementations typically wrap the external download call with
// retry.Do so transient failures are retried before the selector moves on to
// the next candidate.
type AttemptFn func(ctx context.Context, c StreamCandidate) (string, error)

// SelectAndDownload filters candidates to the requested kind, ranks them, and
// attempts the top-ranked ones in order until one succeeds or the fallback
// budget runs out. The input slice is never modified.
//
// A nil logger falls back to slog.Default.
func SelectAndDownload(ctx context.Context, candidates []StreamCandidate, kind MediaKind, prefs Preferences, attempt AttemptFn, log *slog.Logger) DownloadOutcome {
	if log == nil {
		log = slog.Default()
	}
	prefs = prefs.Normalize(kind)

	filtered := make([]StreamCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.MatchesKind(kind) {
			filtered = append(filtered, c)
		}
	}
	log.Debug("filtered stream candidates", "kind", kind, "total", len(candidates), "matching", len(filtered))

	if len(filtered) == 0 {
		return DownloadOutcome{Err: fmt.Errorf("%w: no %s streams among %d formats", ErrNoCandidate, kind, len(candidates))}
	}

	ranked := Rank(filtered, prefs, kind == KindAudio)
	for _, sc := range ranked {
		log.Debug("scored candidate",
			"format_id", sc.Candidate.FormatID,
			"ext", sc.Candidate.Ext,
			"quality", sc.QualityScore,
			"format", sc.FormatScore,
			"size", sc.SizeScore,
			"total", sc.Total)
	}

	attempts := prefs.MaxFallbackAttempts
	if attempts > len(ranked) {
		attempts = len(ranked)
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		c := ranked[i].Candidate
		log.Info("attempting candidate", "kind", kind, "attempt", i+1, "of", attempts, "format_id", c.FormatID, "score", ranked[i].Total)

		path, err := attempt(ctx, c)
		if err == nil {
			return DownloadOutcome{Success: true, FilePath: path, FormatID: c.FormatID, Attempts: i + 1}
		}
		if retry.IsPermanent(err) {
			// The source says this will never work; trying more candidates is pointless.
			return DownloadOutcome{FormatID: c.FormatID, Attempts: i + 1, Err: err}
		}

		log.Warn("candidate failed, falling back", "kind", kind, "format_id", c.FormatID, "error", err)
		lastErr = err
	}

	return DownloadOutcome{
		Attempts: attempts,
		Err:      &ExhaustedError{Kind: kind, Tried: attempts, LastErr: lastErr},
	}
}

package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/fetchtube/internal/retry"
)

func audioCandidate(id, ext, note string, sizeMB int64) StreamCandidate {
	return StreamCandidate{
		FormatID:    id,
		Ext:         ext,
		HasAudio:    true,
		QualityNote: note,
		Filesize:    sizeMB * 1024 * 1024,
	}
}

func TestSelectAndDownload_EmptyFilteredListNeverAttempts(t *testing.T) {
	videoOnly := StreamCandidate{FormatID: "137", Ext: "mp4", HasVideo: true, Height: 1080}

	called := 0
	out := SelectAndDownload(context.Background(), []StreamCandidate{videoOnly}, KindAudio, Preferences{}, func(ctx context.Context, c StreamCandidate) (string, error) {
		called++
		return "", nil
	}, nil)

	require.Zero(t, called)
	require.False(t, out.Success)
	require.ErrorIs(t, out.Err, ErrNoCandidate)
}

func TestSelectAndDownload_FirstSuccessStops(t *testing.T) {
	candidates := []StreamCandidate{
		audioCandidate("140", "m4a", "medium", 4),
		audioCandidate("251", "webm", "medium", 4),
	}

	var tried []string
	out := SelectAndDownload(context.Background(), candidates, KindAudio, DefaultAudioPreferences(), func(ctx context.Context, c StreamCandidate) (string, error) {
		tried = append(tried, c.FormatID)
		return "/tmp/" + c.FormatID + ".m4a", nil
	}, nil)

	require.True(t, out.Success)
	require.Equal(t, 1, out.Attempts)
	require.Equal(t, []string{"140"}, tried)
	require.Equal(t, "140", out.FormatID)
	require.Equal(t, "/tmp/140.m4a", out.FilePath)
}

func TestSelectAndDownload_FallsBackAcrossCandidates(t *testing.T) {
	candidates := []StreamCandidate{
		audioCandidate("140", "m4a", "medium", 4),
		audioCandidate("251", "webm", "medium", 4),
		audioCandidate("250", "webm", "low", 2),
	}

	var tried []string
	out := SelectAndDownload(context.Background(), candidates, KindAudio, DefaultAudioPreferences(), func(ctx context.Context, c StreamCandidate) (string, error) {
		tried = append(tried, c.FormatID)
		if c.FormatID == "140" {
			return "", errors.New("HTTP 403")
		}
		return "/tmp/out." + c.Ext, nil
	}, nil)

	require.True(t, out.Success)
	require.Equal(t, 2, out.Attempts)
	require.Equal(t, []string{"140", "251"}, tried)
	require.Equal(t, "251", out.FormatID)
}

func TestSelectAndDownload_AttemptBudget(t *testing.T) {
	// Five distinct audio candidates, budget of two: exactly the top two
	// ranked candidates are attempted, in score order.
	candidates := []StreamCandidate{
		audioCandidate("1", "webm", "low", 2),
		audioCandidate("2", "mp3", "medium", 3),
		audioCandidate("3", "m4a", "medium", 5),
		audioCandidate("4", "opus", "high", 4),
		audioCandidate("5", "webm", "high", 8),
	}
	prefs := Preferences{
		PreferredQuality:    "medium",
		PreferredFormats:    []string{"mp3", "m4a"},
		MaxFallbackAttempts: 2,
	}

	var tried []string
	out := SelectAndDownload(context.Background(), candidates, KindAudio, prefs, func(ctx context.Context, c StreamCandidate) (string, error) {
		tried = append(tried, c.FormatID)
		return "", errors.New("unavailable")
	}, nil)

	// mp3/medium ranks first (100,100), m4a/medium second (100,90).
	require.Equal(t, []string{"2", "3"}, tried)
	require.False(t, out.Success)

	var ex *ExhaustedError
	require.ErrorAs(t, out.Err, &ex)
	require.Equal(t, 2, ex.Tried)
}

func TestSelectAndDownload_BudgetClampedToCandidateCount(t *testing.T) {
	candidates := []StreamCandidate{audioCandidate("140", "m4a", "medium", 4)}
	prefs := DefaultAudioPreferences()
	prefs.MaxFallbackAttempts = 10

	called := 0
	out := SelectAndDownload(context.Background(), candidates, KindAudio, prefs, func(ctx context.Context, c StreamCandidate) (string, error) {
		called++
		return "", errors.New("nope")
	}, nil)

	require.Equal(t, 1, called)
	require.False(t, out.Success)
}

func TestSelectAndDownload_PermanentErrorStopsFallback(t *testing.T) {
	candidates := []StreamCandidate{
		audioCandidate("140", "m4a", "medium", 4),
		audioCandidate("251", "webm", "medium", 4),
	}

	called := 0
	permanent := retry.Permanent(errors.New("account terminated"))
	out := SelectAndDownload(context.Background(), candidates, KindAudio, DefaultAudioPreferences(), func(ctx context.Context, c StreamCandidate) (string, error) {
		called++
		return "", permanent
	}, nil)

	require.Equal(t, 1, called)
	require.False(t, out.Success)
	require.True(t, retry.IsPermanent(out.Err))
}

func TestSelectAndDownload_KindFiltering(t *testing.T) {
	candidates := []StreamCandidate{
		{FormatID: "audio", Ext: "m4a", HasAudio: true},
		{FormatID: "video", Ext: "mp4", HasVideo: true, Height: 720},
		{FormatID: "muxed", Ext: "mp4", HasAudio: true, HasVideo: true, Height: 720},
	}

	for kind, want := range map[MediaKind]string{
		KindAudio:    "audio",
		KindVideo:    "video",
		KindCombined: "muxed",
	} {
		out := SelectAndDownload(context.Background(), candidates, kind, Preferences{}, func(ctx context.Context, c StreamCandidate) (string, error) {
			return c.FormatID, nil
		}, nil)
		require.True(t, out.Success, "kind %s", kind)
		require.Equal(t, want, out.FormatID, "kind %s", kind)
	}
}

package downloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/fetchtube/internal/retry"
	"thirdcoast.systems/fetchtube/pkg/transcripts"
	"thirdcoast.systems/fetchtube/pkg/ytdlp"
)

const captionJSON3 = `{"events": [
	{"tStartMs": 0, "dDurationMs": 1000, "segs": [{"utf8": "hello"}]},
	{"tStartMs": 1000, "dDurationMs": 1000, "segs": [{"utf8": "world"}]}
]}`

func captionServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(captionJSON3))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func transcriptInfo(trackURL string) *ytdlp.Info {
	return &ytdlp.Info{
		ID:    "ggLajT7aMMk",
		Title: "Talk",
		Subtitles: map[string][]ytdlp.CaptionTrack{
			"es": {{Ext: "json3", URL: trackURL, Name: "Spanish"}},
		},
		AutomaticCaptions: map[string][]ytdlp.CaptionTrack{
			"en": {{Ext: "json3", URL: trackURL, Name: "English (auto-generated)"}},
		},
	}
}

func TestFetchTranscript_PreferredLanguageWins(t *testing.T) {
	srv := captionServer(t)
	svc := New(testConfig(t), nil)
	client := &fakeClient{info: transcriptInfo(srv.URL)}

	// "en" exists only as an auto-generated track, but an exact language match
	// outranks the manual Spanish track.
	result, err := svc.FetchTranscript(context.Background(), client, TranscriptRequest{
		URL:      testURL,
		Language: "en",
		Format:   transcripts.FormatClean,
		UserDir:  "alice",
	})
	require.NoError(t, err)
	require.Equal(t, "en", result.LanguageCode)
	require.True(t, result.Generated)
	require.Equal(t, 2, result.EntryCount)
	require.Equal(t, 2, result.WordCount)

	raw, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(raw))
}

func TestFetchTranscript_FallsBackToManualTrack(t *testing.T) {
	srv := captionServer(t)
	svc := New(testConfig(t), nil)
	client := &fakeClient{info: transcriptInfo(srv.URL)}

	// No French track: the first manual track wins over auto-generated English.
	result, err := svc.FetchTranscript(context.Background(), client, TranscriptRequest{
		URL:      testURL,
		Language: "fr",
		Format:   transcripts.FormatTimestamped,
		UserDir:  "alice",
	})
	require.NoError(t, err)
	require.Equal(t, "es", result.LanguageCode)
	require.False(t, result.Generated)

	raw, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	require.Equal(t, "[00:00] hello\n[00:01] world\n", string(raw))
}

func TestFetchTranscript_NoTracksIsPermanent(t *testing.T) {
	svc := New(testConfig(t), nil)
	client := &fakeClient{info: &ytdlp.Info{ID: "ggLajT7aMMk", Title: "Talk"}}

	_, err := svc.FetchTranscript(context.Background(), client, TranscriptRequest{
		URL:     testURL,
		Format:  transcripts.FormatClean,
		UserDir: "alice",
	})
	require.Error(t, err)
	require.True(t, retry.IsPermanent(err))
	require.ErrorIs(t, errors.Unwrap(err), transcripts.ErrNoTranscript)
}

func TestListTranscriptTracks_FlagsDefault(t *testing.T) {
	srv := captionServer(t)
	svc := New(testConfig(t), nil)
	client := &fakeClient{info: transcriptInfo(srv.URL)}

	tracks, err := svc.ListTranscriptTracks(context.Background(), client, testURL, "")
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	// Manual tracks sort first; with no preference the first manual track is
	// the default.
	require.Equal(t, "es", tracks[0].LanguageCode)
	require.False(t, tracks[0].IsGenerated)
	require.True(t, tracks[0].IsDefault)
	require.False(t, tracks[1].IsDefault)
}

func TestPreviewTranscript(t *testing.T) {
	srv := captionServer(t)
	svc := New(testConfig(t), nil)
	client := &fakeClient{info: transcriptInfo(srv.URL)}

	text, track, err := svc.PreviewTranscript(context.Background(), client, testURL, "en", 1)
	require.NoError(t, err)
	require.Equal(t, "hello", text)
	require.Equal(t, "en", track.LanguageCode)
}

package ytdlp

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGetInfo_ParsesJSON(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte(`{"id":"abc","title":"hello","webpage_url":"https://example.com","duration":12}`), nil, nil
	}

	info, err := c.GetInfo(context.Background(), "https://example.com/watch?v=abc")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if info.ID != "abc" {
		t.Fatalf("expected id=abc, got %q", info.ID)
	}
	if info.Title != "hello" {
		t.Fatalf("expected title=hello, got %q", info.Title)
	}
	if len(info.Raw) == 0 {
		t.Fatalf("expected Raw to be set")
	}
}

func TestGetInfo_ParsesFormatsAndCaptions(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte(`{
			"id": "abc",
			"formats": [
				{"format_id":"140","ext":"m4a","acodec":"mp4a.40.2","vcodec":"none","format_note":"medium","filesize":3984756,"language":"en"},
				{"format_id":"137","ext":"mp4","acodec":"none","vcodec":"avc1","height":1080,"filesize_approx":52000000}
			],
			"subtitles": {"es": [{"ext":"json3","url":"https://example.com/es.json3","name":"Spanish"}]},
			"automatic_captions": {"en": [
				{"ext":"vtt","url":"https://example.com/en.vtt","name":"English"},
				{"ext":"json3","url":"https://example.com/en.json3","name":"English"}
			]}
		}`), nil, nil
	}

	info, err := c.GetInfo(context.Background(), "https://example.com/watch?v=abc")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(info.Formats) != 2 {
		t.Fatalf("expected 2 formats, got %d", len(info.Formats))
	}

	audio := info.Formats[0]
	if !audio.HasAudio() || audio.HasVideo() {
		t.Fatalf("format 140 should be audio-only: %+v", audio)
	}
	video := info.Formats[1]
	if video.HasAudio() || !video.HasVideo() {
		t.Fatalf("format 137 should be video-only: %+v", video)
	}
	if video.Height != 1080 {
		t.Fatalf("expected height 1080, got %d", video.Height)
	}

	track, generated, ok := info.TrackFor("en")
	if !ok || !generated {
		t.Fatalf("expected generated en track, got ok=%v generated=%v", ok, generated)
	}
	if track.Ext != "json3" {
		t.Fatalf("expected json3 rendition preferred, got %q", track.Ext)
	}

	track, generated, ok = info.TrackFor("es")
	if !ok || generated {
		t.Fatalf("expected manual es track, got ok=%v generated=%v", ok, generated)
	}

	if _, _, ok = info.TrackFor("fr"); ok {
		t.Fatalf("expected no fr track")
	}
}

func TestGetInfo_WrapsExecError(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte("out"), []byte("err"), errors.New("boom")
	}

	_, err := c.GetInfo(context.Background(), "https://example.com")
	if err == nil {
		t.Fatalf("expected error")
	}
	var ee *ExecError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExecError, got %T", err)
	}
	if ee.Stderr != "err" {
		t.Fatalf("expected stderr=err, got %q", ee.Stderr)
	}
}

func TestDownloadFormat_ReturnsPrintedPath(t *testing.T) {
	c := New()
	var gotArgs []string
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotArgs = args
		return []byte("[download] 100%\n/data/alice/audio/Talk [abc].m4a\n"), nil, nil
	}

	path, err := c.DownloadFormat(context.Background(), "https://example.com/watch?v=abc", "140", "/data/alice/audio")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if path != "/data/alice/audio/Talk [abc].m4a" {
		t.Fatalf("unexpected path %q", path)
	}

	joined := ""
	for _, a := range gotArgs {
		joined += a + " "
	}
	for _, want := range []string{"-f 140 ", "--no-playlist ", "after_move:filepath "} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected args to contain %q, got %q", want, joined)
		}
	}
}

func TestDownloadFormat_EmptyOutputIsError(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte("\n\n"), nil, nil
	}

	_, err := c.DownloadFormat(context.Background(), "https://example.com", "140", "/tmp")
	if err == nil {
		t.Fatalf("expected error for missing output path")
	}
}

func TestVersion_TrimsOutput(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte("2025.01.01\n"), nil, nil
	}

	v, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if v != "2025.01.01" {
		t.Fatalf("expected version to be trimmed, got %q", v)
	}
}

package transcripts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{Start: 0, Duration: 2 * time.Second, Text: "first line"},
		{Start: 65 * time.Second, Duration: 3 * time.Second, Text: "second line"},
		{Start: 3725 * time.Second, Duration: time.Second, Text: "way later"},
	}
}

func TestRenderClean(t *testing.T) {
	got := RenderClean(sampleEntries())
	require.Equal(t, "first line second line way later", got)
}

func TestRenderTimestamped(t *testing.T) {
	got := RenderTimestamped(sampleEntries())
	require.Equal(t, "[00:00] first line\n[01:05] second line\n[1:02:05] way later\n", got)
}

func TestRenderStructured(t *testing.T) {
	doc := &Document{
		VideoID:      "abc123",
		LanguageCode: "en",
		LanguageName: "English",
		Generated:    true,
		Entries:      sampleEntries(),
	}

	raw, err := doc.Render(FormatStructured)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "abc123", decoded["video_id"])
	require.Equal(t, true, decoded["auto_generated"])
	require.Len(t, decoded["entries"], 3)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatClean, f)

	f, err = ParseFormat(" Timestamped ")
	require.NoError(t, err)
	require.Equal(t, FormatTimestamped, f)

	_, err = ParseFormat("yaml")
	require.Error(t, err)

	require.Equal(t, "json", FormatStructured.Ext())
	require.Equal(t, "txt", FormatClean.Ext())
}

func TestLanguageName(t *testing.T) {
	require.Equal(t, "English", LanguageName("en"))
	require.Equal(t, "Spanish", LanguageName("es"))
	// Unparseable codes pass through untouched.
	require.Equal(t, "not a code!", LanguageName("not a code!"))
}

func TestSummarize(t *testing.T) {
	st := Summarize(sampleEntries())
	require.Equal(t, 3, st.EntryCount)
	require.Equal(t, 6, st.WordCount)
	require.Equal(t, 3726*time.Second, st.Duration)

	require.Equal(t, Stats{}, Summarize(nil))
}

func TestPreview(t *testing.T) {
	text, truncated := Preview(sampleEntries(), 2)
	require.True(t, truncated)
	require.Equal(t, "first line second line", text)

	text, truncated = Preview(sampleEntries(), 10)
	require.False(t, truncated)
	require.Equal(t, "first line second line way later", text)
}

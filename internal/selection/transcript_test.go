package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectDefaultTranscript_EmptyReturnsNil(t *testing.T) {
	require.Nil(t, SelectDefaultTranscript(nil, ""))
	require.Nil(t, SelectDefaultTranscript([]TranscriptTrack{}, "en"))
}

func TestSelectDefaultTranscript_ExplicitDefaultWins(t *testing.T) {
	tracks := []TranscriptTrack{
		{LanguageCode: "en", IsGenerated: false},
		{LanguageCode: "de", IsGenerated: false, IsDefault: true},
	}
	got := SelectDefaultTranscript(tracks, "en")
	require.NotNil(t, got)
	require.Equal(t, "de", got.LanguageCode)
}

func TestSelectDefaultTranscript_PreferredLanguageBeatsManual(t *testing.T) {
	tracks := []TranscriptTrack{
		{LanguageCode: "es", IsGenerated: false},
		{LanguageCode: "en", IsGenerated: true},
	}
	got := SelectDefaultTranscript(tracks, "en")
	require.NotNil(t, got)
	require.Equal(t, "en", got.LanguageCode)
	require.True(t, got.IsGenerated)
}

func TestSelectDefaultTranscript_FallsThroughToManual(t *testing.T) {
	tracks := []TranscriptTrack{
		{LanguageCode: "es", IsGenerated: false},
		{LanguageCode: "en", IsGenerated: true},
	}
	// No "fr" track exists, so the first manual track wins.
	got := SelectDefaultTranscript(tracks, "fr")
	require.NotNil(t, got)
	require.Equal(t, "es", got.LanguageCode)
	require.False(t, got.IsGenerated)
}

func TestSelectDefaultTranscript_EnglishAutoGenerated(t *testing.T) {
	tracks := []TranscriptTrack{
		{LanguageCode: "ja", IsGenerated: true},
		{LanguageCode: "en-US", IsGenerated: true},
	}
	got := SelectDefaultTranscript(tracks, "")
	require.NotNil(t, got)
	require.Equal(t, "en-US", got.LanguageCode)
}

func TestSelectDefaultTranscript_FirstAutoGeneratedAsLastResort(t *testing.T) {
	tracks := []TranscriptTrack{
		{LanguageCode: "ja", IsGenerated: true},
		{LanguageCode: "ko", IsGenerated: true},
	}
	got := SelectDefaultTranscript(tracks, "")
	require.NotNil(t, got)
	require.Equal(t, "ja", got.LanguageCode)
}

package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQualityScore_AudioTiers(t *testing.T) {
	cases := []struct {
		note      string
		preferred string
		want      int
	}{
		{"high", "high", 100},
		{"medium", "high", 80},
		{"low", "high", 60},
		{"medium", "medium", 100},
		{"high", "medium", 90},
		{"low", "medium", 70},
		{"low", "low", 100},
		{"medium", "low", 80},
		{"high", "low", 60},
		{"ultralow, DRC", "high", 60}, // substring match: "ultralow" contains "low"
	}
	for _, tc := range cases {
		c := StreamCandidate{QualityNote: tc.note}
		require.Equal(t, tc.want, QualityScore(c, tc.preferred, true), "note=%q preferred=%q", tc.note, tc.preferred)
	}
}

func TestQualityScore_AudioUnrecognizedTierIsNeutral(t *testing.T) {
	c := StreamCandidate{QualityNote: "opus 48k"}
	require.Equal(t, 50, QualityScore(c, "medium", true))
	require.Equal(t, 50, QualityScore(c, "", true))
}

func TestQualityScore_VideoTables(t *testing.T) {
	cases := []struct {
		height    int
		preferred string
		want      int
	}{
		{720, "720p", 100},
		{480, "720p", 90},
		{1080, "720p", 85},
		{360, "720p", 70},
		{1080, "1080p", 100},
		{720, "1080p", 90},
		{480, "1080p", 80},
		{480, "480p", 100},
		{360, "480p", 90},
		{720, "480p", 80},
	}
	for _, tc := range cases {
		c := StreamCandidate{Height: tc.height}
		require.Equal(t, tc.want, QualityScore(c, tc.preferred, false), "height=%d preferred=%q", tc.height, tc.preferred)
	}
}

func TestQualityScore_VideoDistanceFallback(t *testing.T) {
	// Heights outside the hand-tuned tables degrade with distance from 720p.
	require.Equal(t, 49, QualityScore(StreamCandidate{Height: 540}, "720p", false))
	require.Equal(t, 46, QualityScore(StreamCandidate{Height: 240}, "720p", false))
	// Far-off resolutions floor at 10.
	require.Equal(t, 10, QualityScore(StreamCandidate{Height: 8640}, "720p", false))
	// Unknown preferred labels use the distance formula for every height.
	require.Equal(t, 50, QualityScore(StreamCandidate{Height: 720}, "2160p", false))
}

func TestFormatScore_PositionInPreferenceList(t *testing.T) {
	prefs := []string{"mp3", "m4a", "webm"}
	for i, ext := range prefs {
		c := StreamCandidate{Ext: ext}
		require.Equal(t, 100-10*i, FormatScore(c, prefs))
	}
	require.Equal(t, 10, FormatScore(StreamCandidate{Ext: "flac"}, prefs))
	require.Equal(t, 100, FormatScore(StreamCandidate{Ext: "MP3"}, prefs)) // case-insensitive
}

func TestSizeScore_UnknownSizeScoresMax(t *testing.T) {
	c := StreamCandidate{}
	require.Equal(t, 100, SizeScore(c, true))
	require.Equal(t, 100, SizeScore(c, false))
}

func TestSizeScore_KnownSizes(t *testing.T) {
	mb := int64(1024 * 1024)

	require.Equal(t, 70, SizeScore(StreamCandidate{Filesize: 30 * mb}, true))
	// Video divides the MB penalty by ten.
	require.Equal(t, 97, SizeScore(StreamCandidate{Filesize: 30 * mb}, false))
	// Large files floor at zero rather than going negative.
	require.Equal(t, 0, SizeScore(StreamCandidate{Filesize: 500 * mb}, true))
	// Approximate size is used when the exact size is missing.
	require.Equal(t, 80, SizeScore(StreamCandidate{FilesizeApprox: 20 * mb}, true))
	// Exact size wins over approximate.
	require.Equal(t, 90, SizeScore(StreamCandidate{Filesize: 10 * mb, FilesizeApprox: 90 * mb}, true))
}

func TestScore_WeightedTotal(t *testing.T) {
	c := StreamCandidate{
		FormatID:    "251",
		Ext:         "webm",
		HasAudio:    true,
		QualityNote: "medium",
		Filesize:    5 * 1024 * 1024,
	}
	prefs := DefaultAudioPreferences()

	sc := Score(c, prefs, true)
	require.Equal(t, 100, sc.QualityScore)
	require.Equal(t, 80, sc.FormatScore)
	require.Equal(t, 95, sc.SizeScore)
	require.Equal(t, 3*100+2*80+1*95, sc.Total)
}

func TestScore_Deterministic(t *testing.T) {
	c := StreamCandidate{FormatID: "140", Ext: "m4a", HasAudio: true, QualityNote: "medium", Filesize: 3 << 20}
	prefs := DefaultAudioPreferences()
	first := Score(c, prefs, true)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Score(c, prefs, true))
	}
}

func TestRank_StableOnTies(t *testing.T) {
	// Identical candidates must keep their input order.
	a := StreamCandidate{FormatID: "a", Ext: "m4a", HasAudio: true, QualityNote: "medium"}
	b := StreamCandidate{FormatID: "b", Ext: "m4a", HasAudio: true, QualityNote: "medium"}
	c := StreamCandidate{FormatID: "c", Ext: "mp3", HasAudio: true, QualityNote: "medium"}

	ranked := Rank([]StreamCandidate{a, b, c}, DefaultAudioPreferences(), true)
	require.Equal(t, "c", ranked[0].Candidate.FormatID) // mp3 is the first format preference
	require.Equal(t, "a", ranked[1].Candidate.FormatID)
	require.Equal(t, "b", ranked[2].Candidate.FormatID)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []StreamCandidate{
		{FormatID: "x", Ext: "webm", HasAudio: true},
		{FormatID: "y", Ext: "mp3", HasAudio: true},
	}
	_ = Rank(in, DefaultAudioPreferences(), true)
	require.Equal(t, "x", in[0].FormatID)
	require.Equal(t, "y", in[1].FormatID)
}

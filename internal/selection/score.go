package selection

import (
	"sort"
	"strings"
)

// Fixed scoring weights. Quality dominates, then container, then size.
const (
	weightQuality = 3
	weightFormat  = 2
	weightSize    = 1
)

const (
	neutralQualityScore = 50
	minVideoQuality     = 10
	unlistedFormatScore = 10
)

// QualityScore rates how well the candidate's quality matches the preferred
// tier. Audio uses the free-text quality note; video uses vertical resolution.
// Higher is better.
func QualityScore(c StreamCandidate, preferredQuality string, isAudio bool) int {
	if isAudio {
		return audioQualityScore(c.QualityNote, preferredQuality)
	}
	return videoQualityScore(c.Height, preferredQuality)
}

func audioQualityScore(note string, preferred string) int {
	note = strings.ToLower(note)
	tier := func(t string) bool { return strings.Contains(note, t) }

	switch preferred {
	case "high":
		switch {
		case tier("high"):
			return 100
		case tier("medium"):
			return 80
		case tier("low"):
			return 60
		}
	case "medium":
		switch {
		case tier("medium"):
			return 100
		case tier("high"):
			return 90
		case tier("low"):
			return 70
		}
	case "low":
		switch {
		case tier("low"):
			return 100
		case tier("medium"):
			return 80
		case tier("high"):
			return 60
		}
	}
	return neutralQualityScore
}

func videoQualityScore(height int, preferred string) int {
	switch preferred {
	case "720p":
		switch height {
		case 720:
			return 100
		case 480:
			return 90
		case 1080:
			return 85
		case 360:
			return 70
		}
	case "1080p":
		switch height {
		case 1080:
			return 100
		case 720:
			return 90
		case 480:
			return 80
		}
	case "480p":
		switch height {
		case 480:
			return 100
		case 360:
			return 90
		case 720:
			return 80
		}
	}

	// Resolutions outside the hand-tuned tables degrade with distance from 720p.
	dist := height - 720
	if dist < 0 {
		dist = -dist
	}
	if s := neutralQualityScore - dist/100; s > minVideoQuality {
		return s
	}
	return minVideoQuality
}

// FormatScore rates the candidate's container extension against the ordered
// preference list: 100 for the first preference, 90 for the second, and so
// on. Extensions absent from the list score a fixed low value.
func FormatScore(c StreamCandidate, preferredFormats []string) int {
	ext := strings.ToLower(c.Ext)
	for i, pref := range preferredFormats {
		if ext == strings.ToLower(pref) {
			return 100 - 10*i
		}
	}
	return unlistedFormatScore
}

// SizeScore prefers smaller files. Unknown sizes score maximally so that
// streams without size metadata are not penalized. Video tolerates roughly
// ten times larger files than audio before the penalty kicks in.
func SizeScore(c StreamCandidate, isAudio bool) int {
	size, ok := c.BestFilesize()
	if !ok {
		return 100
	}
	mb := int(size / (1024 * 1024))
	penalty := mb
	if !isAudio {
		penalty = mb / 10
	}
	if s := 100 - penalty; s > 0 {
		return s
	}
	return 0
}

// Score computes all component scores for one candidate. It is a pure
// function of (candidate, preferences): no side effects, identical output for
// identical input.
func Score(c StreamCandidate, prefs Preferences, isAudio bool) ScoredCandidate {
	quality := QualityScore(c, prefs.PreferredQuality, isAudio)
	format := FormatScore(c, prefs.PreferredFormats)
	size := SizeScore(c, isAudio)

	return ScoredCandidate{
		Candidate:    c,
		QualityScore: quality,
		FormatScore:  format,
		SizeScore:    size,
		Total:        weightQuality*quality + weightFormat*format + weightSize*size,
	}
}

// Rank scores every candidate and returns them ordered by descending total
// score. The sort is stable: candidates with equal totals keep their input
// order. The input slice is not modified.
func Rank(candidates []StreamCandidate, prefs Preferences, isAudio bool) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, Score(c, prefs, isAudio))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Total > scored[j].Total
	})
	return scored
}

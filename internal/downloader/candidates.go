package downloader

import (
	"sort"

	"thirdcoast.systems/fetchtube/internal/selection"
	"thirdcoast.systems/fetchtube/pkg/ytdlp"
)

// candidatesFromInfo converts yt-dlp's format list into stream candidates.
func candidatesFromInfo(info *ytdlp.Info) []selection.StreamCandidate {
	out := make([]selection.StreamCandidate, 0, len(info.Formats))
	for _, f := range info.Formats {
		out = append(out, selection.StreamCandidate{
			FormatID:       f.FormatID,
			Ext:            f.Ext,
			HasAudio:       f.HasAudio(),
			HasVideo:       f.HasVideo(),
			Height:         f.Height,
			QualityNote:    f.FormatNote,
			Filesize:       f.Filesize,
			FilesizeApprox: int64(f.FilesizeApprox),
			Language:       f.Language,
		})
	}
	return out
}

// tracksFromInfo flattens the caption maps into transcript tracks. Manual
// subtitles come first so ordering-based fallbacks prefer them.
func tracksFromInfo(info *ytdlp.Info) []selection.TranscriptTrack {
	var tracks []selection.TranscriptTrack
	for lang, renditions := range info.Subtitles {
		if len(renditions) == 0 {
			continue
		}
		tracks = append(tracks, selection.TranscriptTrack{
			LanguageCode: lang,
			LanguageName: renditions[0].Name,
			IsGenerated:  false,
		})
	}
	for lang, renditions := range info.AutomaticCaptions {
		if len(renditions) == 0 {
			continue
		}
		// Manual tracks shadow auto-generated ones for the same language.
		if _, dup := info.Subtitles[lang]; dup {
			continue
		}
		tracks = append(tracks, selection.TranscriptTrack{
			LanguageCode: lang,
			LanguageName: renditions[0].Name,
			IsGenerated:  true,
		})
	}
	// Manual tracks ahead of auto-generated, each group ordered by language
	// code so results are stable across map iteration.
	sort.Slice(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if a.IsGenerated != b.IsGenerated {
			return !a.IsGenerated
		}
		return a.LanguageCode < b.LanguageCode
	})
	return tracks
}

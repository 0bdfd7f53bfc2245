package selection

// englishAutoCodes are the auto-generated English variants accepted at
// priority 4 of the default-transcript chain.
var englishAutoCodes = map[string]struct{}{
	"en":    {},
	"en-US": {},
	"en-GB": {},
}

// SelectDefaultTranscript picks the track to use when the caller expressed no
// explicit choice. The priority chain, first match wins:
//
//  1. a track the source itself flags as default
//  2. an exact match on preferredLanguage, if given
//  3. the first manually-created track, in input order
//  4. an auto-generated English track (en, en-US, en-GB)
//  5. the first auto-generated track, in input order
//
// Returns nil when tracks is empty; callers treat that as "no transcript
// available", not an error.
func SelectDefaultTranscript(tracks []TranscriptTrack, preferredLanguage string) *TranscriptTrack {
	if len(tracks) == 0 {
		return nil
	}

	for i := range tracks {
		if tracks[i].IsDefault {
			return &tracks[i]
		}
	}

	if preferredLanguage != "" {
		for i := range tracks {
			if tracks[i].LanguageCode == preferredLanguage {
				return &tracks[i]
			}
		}
	}

	for i := range tracks {
		if !tracks[i].IsGenerated {
			return &tracks[i]
		}
	}

	for i := range tracks {
		if !tracks[i].IsGenerated {
			continue
		}
		if _, ok := englishAutoCodes[tracks[i].LanguageCode]; ok {
			return &tracks[i]
		}
	}

	for i := range tracks {
		if tracks[i].IsGenerated {
			return &tracks[i]
		}
	}

	return nil
}

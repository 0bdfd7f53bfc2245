package ytdlp

import "encoding/json"

// Info models the fields of yt-dlp's JSON output this service consumes.
// The full JSON is preserved in Raw.
type Info struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	WebpageURL  string  `json:"webpage_url"`
	Extractor   string  `json:"extractor"`
	Uploader    string  `json:"uploader"`
	Duration    float64 `json:"duration"`
	UploadDate  string  `json:"upload_date"`
	ViewCount   int64   `json:"view_count"`
	Description string  `json:"description"`

	Formats []Format `json:"formats"`

	// Subtitles are manually-created caption tracks, keyed by language code.
	Subtitles map[string][]CaptionTrack `json:"subtitles"`

	// AutomaticCaptions are machine-generated tracks, keyed by language code.
	AutomaticCaptions map[string][]CaptionTrack `json:"automatic_captions"`

	Raw json.RawMessage `json:"-"`
}

// Format is one entry of the formats list.
type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	ACodec         string  `json:"acodec"`
	VCodec         string  `json:"vcodec"`
	Height         int     `json:"height"`
	FormatNote     string  `json:"format_note"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
	Language       string  `json:"language"`
	TBR            float64 `json:"tbr"`
}

// HasAudio reports whether the format carries an audio stream. yt-dlp uses
// the literal string "none" for absent codecs; a missing field counts as
// present, matching how its own format selectors treat it.
func (f Format) HasAudio() bool { return f.ACodec != "none" }

// HasVideo reports whether the format carries a video stream.
func (f Format) HasVideo() bool { return f.VCodec != "none" }

// CaptionTrack is one downloadable rendition of a subtitle/caption track.
type CaptionTrack struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// TrackFor returns the json3 rendition of the caption track for lang,
// preferring manual subtitles over automatic captions. generated reports
// which map the track came from.
func (i *Info) TrackFor(lang string) (track CaptionTrack, generated bool, ok bool) {
	if t, found := pickRendition(i.Subtitles[lang]); found {
		return t, false, true
	}
	if t, found := pickRendition(i.AutomaticCaptions[lang]); found {
		return t, true, true
	}
	return CaptionTrack{}, false, false
}

// pickRendition prefers the json3 rendition; falls back to the first entry.
func pickRendition(tracks []CaptionTrack) (CaptionTrack, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, false
	}
	for _, t := range tracks {
		if t.Ext == "json3" {
			return t, true
		}
	}
	return tracks[0], true
}

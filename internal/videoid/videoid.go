// Package videoid validates user-submitted YouTube URLs, extracts the video
// ID, and produces the canonical watch URL used for storage.
package videoid

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNotYouTube reports that a URL does not point at a YouTube video.
var ErrNotYouTube = errors.New("not a youtube url or video id not found")

// youtubeHosts are the host spellings accepted as YouTube. Anything else is
// rejected rather than guessed at.
var youtubeHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
	"youtu.be":                 true,
}

// ExtractVideoID extracts the YouTube video ID from a URL. Accepted shapes:
// watch?v=, youtu.be shortlinks, /embed/, /v/, /shorts/ and /live/ paths.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty url")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		// Best effort: treat as https.
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return "", err
		}
	}

	host := normalizeHost(u.Host)
	if !youtubeHosts[host] {
		return "", ErrNotYouTube
	}

	if host == "youtu.be" {
		if id := firstPathSegment(u.Path); isValidID(id) {
			return id, nil
		}
		return "", ErrNotYouTube
	}

	if q := u.Query().Get("v"); isValidID(q) {
		return q, nil
	}
	for _, prefix := range []string{"/embed/", "/v/", "/shorts/", "/live/"} {
		if strings.HasPrefix(u.Path, prefix) {
			if id := firstPathSegment(strings.TrimPrefix(u.Path, prefix)); isValidID(id) {
				return id, nil
			}
		}
	}

	return "", ErrNotYouTube
}

// CanonicalWatchURL returns the stable https://youtube.com/watch?v={id} form.
func CanonicalWatchURL(videoID string) string {
	return "https://youtube.com/watch?v=" + url.QueryEscape(videoID)
}

// Normalize validates rawURL as a YouTube video URL and returns its video ID
// together with the canonical watch URL. Timestamps, playlist context and
// tracking parameters are dropped.
func Normalize(rawURL string) (videoID string, canonicalURL string, err error) {
	id, err := ExtractVideoID(rawURL)
	if err != nil {
		return "", "", err
	}
	return id, CanonicalWatchURL(id), nil
}

// isValidID checks the conventional 11-character YouTube ID alphabet. IDs of
// other lengths exist in the wild for non-video resources, so the length check
// doubles as a path/ID disambiguator.
func isValidID(id string) bool {
	if len(id) != 11 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func normalizeHost(hostport string) string {
	h := strings.TrimSpace(strings.ToLower(hostport))
	if h == "" {
		return ""
	}
	// url.URL.Host may include port.
	if strings.Contains(h, ":") {
		if parsed, err := url.Parse("//" + h); err == nil && parsed.Hostname() != "" {
			h = parsed.Hostname()
		}
	}
	return strings.TrimSuffix(h, ".")
}

func firstPathSegment(p string) string {
	p = strings.TrimPrefix(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	seg, _, _ := strings.Cut(p, "/")
	return strings.TrimSpace(seg)
}

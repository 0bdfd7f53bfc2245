package ytdlp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DownloadFormat downloads exactly one format of the media into destDir and
// returns the final path of the produced file.
//
// The output template is "<destDir>/<title> [<id>].<ext>"; the final path is
// read back from yt-dlp itself (--print after_move:filepath) so postprocessor
// renames are reflected.
func (c *Client) DownloadFormat(ctx context.Context, url string, formatID string, destDir string, extraArgs ...string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("ytdlp: url is required")
	}
	if strings.TrimSpace(formatID) == "" {
		return "", fmt.Errorf("ytdlp: formatID is required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", fmt.Errorf("ytdlp: destDir is required")
	}

	tmpl := filepath.Join(destDir, "%(title)s [%(id)s].%(ext)s")

	args := []string{
		"-f", formatID,
		"-o", tmpl,
		"--no-playlist",
		"--no-colors",
		"--restrict-filenames",
		"--no-simulate",
		"--print", "after_move:filepath",
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	path := lastNonEmptyLine(string(stdout))
	if path == "" {
		return "", fmt.Errorf("ytdlp: download produced no output path")
	}
	return path, nil
}

// ExtractAudioArgs returns the extra args that convert the downloaded stream
// to the given audio codec (e.g. "mp3") at the given quality.
func ExtractAudioArgs(codec string, quality string) []string {
	args := []string{"-x", "--audio-format", codec}
	if quality != "" {
		args = append(args, "--audio-quality", quality)
	}
	return args
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

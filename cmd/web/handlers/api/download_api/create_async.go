package download_api

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/internal/videoid"
)

type createAsyncRequest struct {
	URL                string   `json:"url"`
	Kind               string   `json:"kind"`
	Quality            string   `json:"quality,omitempty"`
	Formats            []string `json:"formats,omitempty"`
	TranscriptLanguage string   `json:"transcript_language,omitempty"`
	TranscriptFormat   string   `json:"transcript_format,omitempty"`
}

func jobKind(raw string) (db.JobKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "audio":
		return db.JobKindAudio, true
	case "video":
		return db.JobKindVideo, true
	case "transcript":
		return db.JobKindTranscript, true
	default:
		return "", false
	}
}

// HandleCreateAsync enqueues a download job and returns immediately. The
// worker processes fetch queued jobs in submission order.
func HandleCreateAsync(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		var req createAsyncRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid request body")
		}

		kind, ok := jobKind(req.Kind)
		if !ok {
			return common.ErrBadRequest("kind must be \"audio\", \"video\" or \"transcript\"")
		}
		vid, canonicalURL, err := videoid.Normalize(req.URL)
		if err != nil {
			return common.ErrUnprocessable("not a valid YouTube video URL")
		}

		ctx := c.Request().Context()
		job, err := dbc.EnqueueDownloadJob(ctx, &db.EnqueueDownloadJobParams{
			UserID:    userID,
			VideoID:   vid,
			SourceURL: canonicalURL,
			Kind:      kind,
			Options: db.JobOptions{
				PreferredQuality:   req.Quality,
				PreferredFormats:   req.Formats,
				TranscriptLanguage: req.TranscriptLanguage,
				TranscriptFormat:   req.TranscriptFormat,
			},
		})
		if err != nil {
			slog.Error("failed to enqueue download job", "video_id", vid, "error", err)
			return common.ErrInternal("failed to enqueue job")
		}

		jobID := db.UUIDString(job.ID)
		return c.JSON(202, map[string]any{
			"job":        jobResponse(job),
			"status_url": "/api/downloads/" + jobID,
			"result_url": "/api/downloads/" + jobID + "/result",
		})
	}
}

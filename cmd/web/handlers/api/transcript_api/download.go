package transcript_api

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/internal/downloader"
	"thirdcoast.systems/fetchtube/internal/videoid"
	"thirdcoast.systems/fetchtube/pkg/encryption"
	"thirdcoast.systems/fetchtube/pkg/transcripts"
	"thirdcoast.systems/fetchtube/pkg/utils/filename"
)

type downloadRequest struct {
	URL      string `json:"url"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format,omitempty"`
}

// HandleDownload fetches a transcript inline and returns its details.
func HandleDownload(sm *webauth.SessionManager, dbc *db.DatabaseConnection, encMgr *encryption.Manager, svc *downloader.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		var req downloadRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid request body")
		}
		if _, _, err := videoid.Normalize(req.URL); err != nil {
			return common.ErrUnprocessable("not a valid YouTube video URL")
		}
		format, err := transcripts.ParseFormat(req.Format)
		if err != nil {
			return common.ErrBadRequest(err.Error())
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)

		user, err := q.GetUserByID(ctx, userID)
		if err != nil {
			return common.ErrInternal("failed to load account")
		}

		client := svc.NewClient(downloader.CookiesForUser(ctx, q, encMgr, userID))
		result, err := svc.FetchTranscript(ctx, client, downloader.TranscriptRequest{
			URL:      req.URL,
			Language: req.Language,
			Format:   format,
			UserDir:  filename.ForUser(user.Email),
		})
		if err != nil {
			if errors.Is(err, transcripts.ErrNoTranscript) {
				return common.ErrNotFound("no transcript is available for this video")
			}
			slog.Error("transcript download failed", "url", req.URL, "error", err)
			return echo.NewHTTPError(502, "transcript download failed: "+err.Error())
		}

		return c.JSON(200, result)
	}
}

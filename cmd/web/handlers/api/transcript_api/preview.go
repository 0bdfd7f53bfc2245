package transcript_api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/internal/downloader"
	"thirdcoast.systems/fetchtube/internal/videoid"
	"thirdcoast.systems/fetchtube/pkg/encryption"
	"thirdcoast.systems/fetchtube/pkg/transcripts"
)

const defaultPreviewEntries = 10

// HandlePreview returns the opening lines of the resolved transcript track
// without saving anything.
func HandlePreview(sm *webauth.SessionManager, dbc *db.DatabaseConnection, encMgr *encryption.Manager, svc *downloader.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		url := c.QueryParam("url")
		if _, _, err := videoid.Normalize(url); err != nil {
			return common.ErrUnprocessable("not a valid YouTube video URL")
		}

		limit := defaultPreviewEntries
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return common.ErrBadRequest("limit must be a positive integer")
			}
			limit = n
		}

		ctx := c.Request().Context()
		client := svc.NewClient(downloader.CookiesForUser(ctx, dbc.Queries(ctx), encMgr, userID))

		text, track, err := svc.PreviewTranscript(ctx, client, url, c.QueryParam("language"), limit)
		if err != nil {
			if errors.Is(err, transcripts.ErrNoTranscript) {
				return common.ErrNotFound("no transcript is available for this video")
			}
			return echo.NewHTTPError(502, "transcript preview failed: "+err.Error())
		}

		return c.JSON(200, map[string]any{
			"language_code":  track.LanguageCode,
			"language_name":  transcripts.LanguageName(track.LanguageCode),
			"auto_generated": track.IsGenerated,
			"preview":        text,
			"word_count":     len(strings.Fields(text)),
		})
	}
}

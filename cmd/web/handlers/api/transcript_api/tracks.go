// Package transcript_api exposes caption discovery, preview, and download
// over JSON.
package transcript_api

import (
	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/internal/downloader"
	"thirdcoast.systems/fetchtube/internal/videoid"
	"thirdcoast.systems/fetchtube/pkg/encryption"
	"thirdcoast.systems/fetchtube/pkg/transcripts"
)

type trackView struct {
	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name,omitempty"`
	IsGenerated  bool   `json:"auto_generated"`
	IsDefault    bool   `json:"is_default"`
}

// HandleTracks lists the caption tracks available for a video.
func HandleTracks(sm *webauth.SessionManager, dbc *db.DatabaseConnection, encMgr *encryption.Manager, svc *downloader.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		url := c.QueryParam("url")
		if _, _, err := videoid.Normalize(url); err != nil {
			return common.ErrUnprocessable("not a valid YouTube video URL")
		}

		ctx := c.Request().Context()
		client := svc.NewClient(downloader.CookiesForUser(ctx, dbc.Queries(ctx), encMgr, userID))

		tracks, err := svc.ListTranscriptTracks(ctx, client, url, c.QueryParam("language"))
		if err != nil {
			return echo.NewHTTPError(502, "failed to probe video: "+err.Error())
		}

		views := make([]trackView, 0, len(tracks))
		for _, t := range tracks {
			views = append(views, trackView{
				LanguageCode: t.LanguageCode,
				LanguageName: transcripts.LanguageName(t.LanguageCode),
				IsGenerated:  t.IsGenerated,
				IsDefault:    t.IsDefault,
			})
		}
		return c.JSON(200, map[string]any{"tracks": views})
	}
}

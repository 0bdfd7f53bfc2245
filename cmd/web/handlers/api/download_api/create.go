// Package download_api exposes the download queue over JSON: submitting
// jobs (inline or queued), polling status, fetching results, and cancelling.
package download_api

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/internal/downloader"
	"thirdcoast.systems/fetchtube/internal/selection"
	"thirdcoast.systems/fetchtube/internal/videoid"
	"thirdcoast.systems/fetchtube/pkg/encryption"
	"thirdcoast.systems/fetchtube/pkg/utils/filename"
)

type createRequest struct {
	URL     string   `json:"url"`
	Kind    string   `json:"kind"`
	Quality string   `json:"quality,omitempty"`
	Formats []string `json:"formats,omitempty"`
}

func (r *createRequest) mediaKind() (selection.MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(r.Kind)) {
	case "", "audio":
		return selection.KindAudio, nil
	case "video":
		return selection.KindVideo, nil
	default:
		return "", errors.New("kind must be \"audio\" or \"video\"")
	}
}

// HandleCreate runs a download inline and returns the finished artifact's
// details. Large videos can take a while; the async variant exists for those.
func HandleCreate(sm *webauth.SessionManager, dbc *db.DatabaseConnection, encMgr *encryption.Manager, svc *downloader.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		var req createRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid request body")
		}

		kind, err := req.mediaKind()
		if err != nil {
			return common.ErrBadRequest(err.Error())
		}
		if _, _, err := videoid.Normalize(req.URL); err != nil {
			return common.ErrUnprocessable("not a valid YouTube video URL")
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)

		user, err := q.GetUserByID(ctx, userID)
		if err != nil {
			return common.ErrInternal("failed to load account")
		}

		client := svc.NewClient(downloader.CookiesForUser(ctx, q, encMgr, userID))
		result, err := svc.Download(ctx, client, downloader.MediaRequest{
			URL:     req.URL,
			Kind:    kind,
			UserDir: filename.ForUser(user.Email),
			Overrides: downloader.Overrides{
				PreferredQuality: req.Quality,
				PreferredFormats: req.Formats,
			},
		})
		if err != nil {
			if errors.Is(err, selection.ErrNoCandidate) {
				return common.ErrUnprocessable(err.Error())
			}
			slog.Error("inline download failed", "url", req.URL, "error", err)
			return echo.NewHTTPError(502, "download failed: "+err.Error())
		}

		// Metadata travels in headers; the body is the artifact itself.
		h := c.Response().Header()
		h.Set("X-Video-Id", result.VideoID)
		h.Set("X-Format-Id", result.FormatID)
		h.Set("X-Download-Attempts", strconv.Itoa(result.Attempts))
		return c.Attachment(result.FilePath, filepath.Base(result.FilePath))
	}
}

// Package settings holds per-account configuration endpoints. Currently
// that is the cookie jar: an uploaded cookies.txt stored encrypted and
// passed to yt-dlp so downloads can use the user's YouTube session.
package settings

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/pkg/encryption"
	"thirdcoast.systems/fetchtube/pkg/utils/format"
)

// Netscape cookie files from real browsers run tens of kilobytes; anything
// near the megabyte mark is not a cookie file.
const maxCookieFileSize = 1 << 20

// HandleCookiesUpload stores the request body as the user's cookies.txt.
func HandleCookiesUpload(sm *webauth.SessionManager, dbc *db.DatabaseConnection, encMgr *encryption.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCookieFileSize+1))
		if err != nil {
			return common.ErrBadRequest("failed to read request body")
		}
		if len(body) > maxCookieFileSize {
			return echo.NewHTTPError(413, "cookie file too large")
		}
		cookies := strings.TrimSpace(string(body))
		if cookies == "" {
			return common.ErrBadRequest("cookie file is empty")
		}

		encrypted, err := encMgr.EncryptString(cookies)
		if err != nil {
			slog.Error("failed to encrypt cookie jar", "error", err)
			return common.ErrInternal("failed to store cookies")
		}

		ctx := c.Request().Context()
		if err := dbc.Queries(ctx).UpsertCookieJar(ctx, userID, encrypted); err != nil {
			slog.Error("failed to store cookie jar", "error", err)
			return common.ErrInternal("failed to store cookies")
		}

		return c.JSON(200, map[string]any{
			"stored": true,
			"size":   format.Bytes(int64(len(body))),
		})
	}
}

// HandleCookiesStatus reports whether a jar exists and when it was updated.
// The cookie contents never leave the server.
func HandleCookiesStatus(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		jar, err := dbc.Queries(ctx).GetCookieJar(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(200, map[string]any{"stored": false})
			}
			return common.ErrInternal("failed to load cookie jar")
		}

		return c.JSON(200, map[string]any{
			"stored":     true,
			"updated_at": jar.UpdatedAt.Time,
		})
	}
}

// HandleCookiesDelete removes the user's cookie jar.
func HandleCookiesDelete(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		if err := dbc.Queries(ctx).DeleteCookieJar(ctx, userID); err != nil {
			return common.ErrInternal("failed to delete cookie jar")
		}
		return c.NoContent(204)
	}
}

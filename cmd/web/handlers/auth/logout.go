package auth

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
)

func HandleLogout(sm *webauth.SessionManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := sm.ClearSession(c.Response().Writer, c.Request()); err != nil {
			slog.Warn("failed to clear session", "error", err)
		}
		return c.NoContent(204)
	}
}

package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/pkg/utils/passwords"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func HandleLogin(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid request body")
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" {
			return common.ErrBadRequest("email and password are required")
		}

		user, err := dbc.Queries(c.Request().Context()).GetUserByEmail(c.Request().Context(), req.Email)
		if err != nil {
			// Same response as a wrong password so accounts can't be probed.
			return common.ErrUnauthorized()
		}

		matches, err := user.Password.ComparePasswordAndHash(passwords.PasswordInput{Password: req.Password})
		if err != nil || !matches {
			return common.ErrUnauthorized()
		}

		if !user.Enabled {
			return echo.NewHTTPError(403, "account is disabled")
		}

		accessLevel := webauth.AccessUser
		if user.Role == db.UserRoleAdmin {
			accessLevel = webauth.AccessAdmin
		}

		if err := sm.SaveSession(c.Response().Writer, c.Request(), db.UUIDString(user.ID), user.UserName, accessLevel); err != nil {
			slog.Error("failed to save session", "error", err)
			return common.ErrInternal("failed to start session")
		}

		return c.JSON(200, map[string]any{
			"id":       db.UUIDString(user.ID),
			"username": user.UserName,
		})
	}
}

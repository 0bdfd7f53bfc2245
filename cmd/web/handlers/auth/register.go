package auth

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=512"`
}

func HandleRegister(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	validate := validator.New()

	return func(c echo.Context) error {
		var req registerRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("invalid request body")
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if err := validate.Struct(req); err != nil {
			return common.ErrUnprocessable(err.Error())
		}

		user, err := dbc.Queries(c.Request().Context()).NewUser(c.Request().Context(), db.NewUserParams{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return common.ErrConflict("an account with this email already exists")
			}
			slog.Error("failed to create user", "error", err)
			return common.ErrInternal("failed to create account")
		}

		if err := sm.SaveSession(c.Response().Writer, c.Request(), db.UUIDString(user.ID), user.UserName, webauth.AccessUser); err != nil {
			slog.Error("failed to save session", "error", err)
			return common.ErrInternal("failed to start session")
		}

		return c.JSON(201, map[string]any{
			"id":       db.UUIDString(user.ID),
			"username": user.UserName,
			"email":    user.Email,
		})
	}
}

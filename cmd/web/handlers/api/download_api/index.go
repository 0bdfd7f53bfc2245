package download_api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
)

// HandleIndex lists the authenticated user's jobs, newest first.
func HandleIndex(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}

		var limit int32
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 32)
			if err != nil || n < 1 {
				return common.ErrBadRequest("limit must be a positive integer")
			}
			limit = int32(n)
		}

		ctx := c.Request().Context()
		jobs, err := dbc.Queries(ctx).ListDownloadJobsByUser(ctx, userID, limit)
		if err != nil {
			return common.ErrInternal("failed to list jobs")
		}

		views := make([]jobView, 0, len(jobs))
		for _, job := range jobs {
			views = append(views, jobResponse(job))
		}
		return c.JSON(200, map[string]any{"jobs": views})
	}
}

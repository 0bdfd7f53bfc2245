package download_api

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
)

// HandleCancel cancels a queued or processing job. A job that already
// finished cannot be cancelled and yields a conflict.
func HandleCancel(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := common.RequireSessionUser(c, sm)
		if err != nil {
			return err
		}
		jobID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)

		job, err := q.CancelDownloadJob(ctx, jobID, userID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return common.ErrInternal("failed to cancel job")
			}
			// Distinguish "no such job" from "already finished".
			if _, lookupErr := q.GetDownloadJob(ctx, jobID, userID); lookupErr != nil {
				return common.ErrNotFound("job not found")
			}
			return common.ErrConflict("job already finished")
		}

		return c.JSON(200, jobResponse(job))
	}
}

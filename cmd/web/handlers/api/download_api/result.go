package download_api

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
)

// HandleResult streams a finished job's file back as an attachment.
func HandleResult(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
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
		job, err := dbc.Queries(ctx).GetDownloadJob(ctx, jobID, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.ErrNotFound("job not found")
			}
			return common.ErrInternal("failed to load job")
		}

		if job.Status != db.JobStatusSucceeded || job.OutputPath == nil {
			return common.ErrConflict("job has no result yet")
		}
		if _, err := os.Stat(*job.OutputPath); err != nil {
			return common.ErrNotFound("result file is no longer available")
		}

		return c.Attachment(*job.OutputPath, filepath.Base(*job.OutputPath))
	}
}

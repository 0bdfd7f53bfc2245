package download_api

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/common"
	"thirdcoast.systems/fetchtube/internal/db"
)

type jobView struct {
	ID         string        `json:"id"`
	VideoID    string        `json:"video_id"`
	SourceURL  string        `json:"source_url"`
	Kind       db.JobKind    `json:"kind"`
	Options    db.JobOptions `json:"options"`
	Status     db.JobStatus  `json:"status"`
	Attempts   int32         `json:"attempts"`
	OutputPath *string       `json:"output_path,omitempty"`
	FormatID   *string       `json:"format_id,omitempty"`
	LastError  *string       `json:"last_error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

func jobResponse(job *db.DownloadJob) jobView {
	return jobView{
		ID:         db.UUIDString(job.ID),
		VideoID:    job.VideoID,
		SourceURL:  job.SourceURL,
		Kind:       job.Kind,
		Options:    job.Options,
		Status:     job.Status,
		Attempts:   job.Attempts,
		OutputPath: job.OutputPath,
		FormatID:   job.FormatID,
		LastError:  job.LastError,
		CreatedAt:  job.CreatedAt.Time,
		StartedAt:  db.NilTimePtr(job.StartedAt),
		FinishedAt: db.NilTimePtr(job.FinishedAt),
	}
}

// HandleStatus reports a single job's current state.
func HandleStatus(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
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

		return c.JSON(200, jobResponse(job))
	}
}

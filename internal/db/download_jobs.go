package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const downloadJobColumns = `id, user_id, video_id, source_url, kind, options, status,
	attempts, output_path, format_id, last_error, created_at, started_at, finished_at`

// EnqueueDownloadJobParams describes a new queued job.
type EnqueueDownloadJobParams struct {
	UserID    pgtype.UUID
	VideoID   string
	SourceURL string
	Kind      JobKind
	Options   JobOptions
}

// EnqueueDownloadJob inserts a queued job and notifies listening workers.
func (q *Queries) EnqueueDownloadJob(ctx context.Context, params *EnqueueDownloadJobParams) (*DownloadJob, error) {
	jobID := pgtype.UUID{Bytes: uuid.New(), Valid: true}

	row := q.db.QueryRow(ctx, `
		INSERT INTO download_jobs (id, user_id, video_id, source_url, kind, options)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+downloadJobColumns,
		jobID, params.UserID, params.VideoID, params.SourceURL, params.Kind, params.Options)

	job, err := scanDownloadJob(row)
	if err != nil {
		return nil, err
	}

	if _, err := q.db.Exec(ctx, `SELECT pg_notify('download_jobs', $1)`, UUIDString(job.ID)); err != nil {
		return nil, err
	}
	return job, nil
}

// EnqueueDownloadJob wraps the insert and its worker notification in one
// transaction, so a wake-up can never fire for a job that failed to insert.
func (db *DatabaseConnection) EnqueueDownloadJob(ctx context.Context, params *EnqueueDownloadJobParams) (*DownloadJob, error) {
	q, tx, err := db.NewWithTX(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	job, err := q.EnqueueDownloadJob(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return job, nil
}

// DequeueDownloadJob claims the oldest queued job. Returns pgx.ErrNoRows when
// the queue is empty. SKIP LOCKED keeps concurrent workers from fighting over
// the same row.
func (q *Queries) DequeueDownloadJob(ctx context.Context) (*DownloadJob, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE download_jobs SET status = 'processing', started_at = now(), attempts = attempts + 1
		WHERE id = (
			SELECT id FROM download_jobs
			WHERE status = 'queued'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING ` + downloadJobColumns)
	return scanDownloadJob(row)
}

// MarkDownloadJobSucceededParams records where the finished artifact landed.
type MarkDownloadJobSucceededParams struct {
	ID         pgtype.UUID
	OutputPath *string
	FormatID   *string
	Attempts   int32
}

func (q *Queries) MarkDownloadJobSucceeded(ctx context.Context, params *MarkDownloadJobSucceededParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE download_jobs
		SET status = 'succeeded', output_path = $2, format_id = $3,
		    attempts = GREATEST(attempts, $4), last_error = NULL, finished_at = now()
		WHERE id = $1`,
		params.ID, params.OutputPath, params.FormatID, params.Attempts)
	return err
}

// MarkDownloadJobFailedParams records a terminal failure.
type MarkDownloadJobFailedParams struct {
	ID        pgtype.UUID
	LastError *string
}

func (q *Queries) MarkDownloadJobFailed(ctx context.Context, params *MarkDownloadJobFailedParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE download_jobs
		SET status = 'failed', last_error = $2, finished_at = now()
		WHERE id = $1`,
		params.ID, params.LastError)
	return err
}

// GetDownloadJob fetches a job scoped to its owner. Jobs of other users are
// indistinguishable from missing ones.
func (q *Queries) GetDownloadJob(ctx context.Context, id pgtype.UUID, userID pgtype.UUID) (*DownloadJob, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+downloadJobColumns+` FROM download_jobs WHERE id = $1 AND user_id = $2`,
		id, userID)
	return scanDownloadJob(row)
}

// ListDownloadJobsByUser returns the user's jobs, newest first.
func (q *Queries) ListDownloadJobsByUser(ctx context.Context, userID pgtype.UUID, limit int32) ([]*DownloadJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.db.Query(ctx, `
		SELECT `+downloadJobColumns+` FROM download_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*DownloadJob
	for rows.Next() {
		job, err := scanDownloadJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CancelDownloadJob cancels a queued or processing job owned by userID.
// Returns pgx.ErrNoRows if nothing was cancellable.
func (q *Queries) CancelDownloadJob(ctx context.Context, id pgtype.UUID, userID pgtype.UUID) (*DownloadJob, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE download_jobs
		SET status = 'cancelled', finished_at = now()
		WHERE id = $1 AND user_id = $2 AND status IN ('queued', 'processing')
		RETURNING `+downloadJobColumns,
		id, userID)
	return scanDownloadJob(row)
}

// RecoverStuckDownloadJobs requeues jobs left in "processing" by a crashed
// worker instance.
func (q *Queries) RecoverStuckDownloadJobs(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `
		UPDATE download_jobs
		SET status = 'queued', started_at = NULL
		WHERE status = 'processing'`)
	return err
}

// ListenDownloadJobs subscribes the connection to enqueue notifications.
func (q *Queries) ListenDownloadJobs(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `LISTEN download_jobs`)
	return err
}

func scanDownloadJob(row pgx.Row) (*DownloadJob, error) {
	var j DownloadJob
	err := row.Scan(
		&j.ID, &j.UserID, &j.VideoID, &j.SourceURL, &j.Kind, &j.Options, &j.Status,
		&j.Attempts, &j.OutputPath, &j.FormatID, &j.LastError,
		&j.CreatedAt, &j.StartedAt, &j.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

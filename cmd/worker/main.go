package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"thirdcoast.systems/fetchtube/internal/application"
	"thirdcoast.systems/fetchtube/internal/config"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/internal/downloader"
	"thirdcoast.systems/fetchtube/internal/selection"
	"thirdcoast.systems/fetchtube/pkg/encryption"
	"thirdcoast.systems/fetchtube/pkg/transcripts"
	"thirdcoast.systems/fetchtube/pkg/utils/filename"
	"thirdcoast.systems/fetchtube/pkg/ytdlp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting download worker service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(conf.DownloadRoot, 0o755); err != nil {
		slog.Error("failed to create download root", "dir", conf.DownloadRoot, "error", err)
		os.Exit(1)
	}

	updateClient := ytdlp.New()
	updateClient.Path = conf.YtdlpPath
	ytdlpUpdateCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if err := updateClient.Update(ytdlpUpdateCtx); err != nil {
		slog.Warn("failed to update yt-dlp", "error", err)
	} else {
		slog.Info("yt-dlp updated successfully")
	}
	cancel()

	pool, err := application.OpenDBPoolWithRetry(ctx, *conf)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	encMgr, err := application.InitEncryptionManager()
	if err != nil {
		slog.Error("failed to initialize encryption manager", "error", err)
		os.Exit(1)
	}

	dbc, err := db.NewDatabaseConnection(ctx, pool)
	if err != nil {
		slog.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer dbc.Close()

	// Requeue jobs orphaned in "processing" by a previous instance.
	if err := dbc.Queries(ctx).RecoverStuckDownloadJobs(ctx); err != nil {
		slog.Error("failed to recover stuck download jobs", "error", err)
	}

	svc := downloader.New(conf, slog.Default())

	wake := make(chan struct{}, 1)
	go listenAndSignal(ctx, conf.DatabaseDSN, wake)

	slog.Info("Download workers started", "workers", conf.DownloadWorkers)
	for range conf.DownloadWorkers {
		go downloadWorker(ctx, dbc, svc, encMgr, wake)
	}

	<-ctx.Done()
	slog.Info("Download worker service stopping")
}

func downloadWorker(ctx context.Context, dbc *db.DatabaseConnection, svc *downloader.Service, encMgr *encryption.Manager, wake <-chan struct{}) {
	q := dbc.Queries(ctx)
	for {
		if ctx.Err() != nil {
			return
		}

		// Drain as many jobs as we can
		for {
			job, err := q.DequeueDownloadJob(ctx)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					break
				}
				slog.Error("failed to dequeue download job", "error", err)
				time.Sleep(2 * time.Second)
				break
			}

			if err := processDownloadJob(ctx, q, svc, encMgr, job); err != nil {
				jobID := db.UUIDString(job.ID)

				var execErr *ytdlp.ExecError
				if errors.As(err, &execErr) {
					slog.Error("download job failed",
						"job_id", jobID,
						"error", err,
						"exit_code", execErr.ExitCode,
						"stderr", execErr.Stderr)
				} else {
					slog.Error("download job failed", "job_id", jobID, "error", err)
				}

				errMsg := err.Error()
				_ = q.MarkDownloadJobFailed(ctx, &db.MarkDownloadJobFailedParams{ID: job.ID, LastError: &errMsg})
				continue
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-wake:
			// new job notification
		case <-time.After(5 * time.Second):
			// periodic poll
		}
	}
}

func processDownloadJob(ctx context.Context, q *db.Queries, svc *downloader.Service, encMgr *encryption.Manager, job *db.DownloadJob) error {
	jobID := db.UUIDString(job.ID)
	slog.Info("Processing download job", "job_id", jobID, "kind", job.Kind, "video_id", job.VideoID)

	user, err := q.GetUserByID(ctx, job.UserID)
	if err != nil {
		return err
	}
	userDir := filename.ForUser(user.Email)

	// Fresh client per job so cookie jars never cross users.
	client := svc.NewClient(downloader.CookiesForUser(ctx, q, encMgr, job.UserID))
	defer func() {
		persistUpdatedCookies(q, encMgr, job.UserID, client.UpdatedCookies)
	}()

	var outputPath string
	var formatID *string
	attempts := job.Attempts

	switch job.Kind {
	case db.JobKindTranscript:
		fmtChoice, err := transcripts.ParseFormat(job.Options.TranscriptFormat)
		if err != nil {
			fmtChoice = transcripts.FormatClean
		}
		result, err := svc.FetchTranscript(ctx, client, downloader.TranscriptRequest{
			URL:      job.SourceURL,
			Language: job.Options.TranscriptLanguage,
			Format:   fmtChoice,
			UserDir:  userDir,
		})
		if err != nil {
			return err
		}
		outputPath = result.FilePath

	default:
		kind := selection.KindAudio
		if job.Kind == db.JobKindVideo {
			kind = selection.KindVideo
		}
		result, err := svc.Download(ctx, client, downloader.MediaRequest{
			URL:     job.SourceURL,
			Kind:    kind,
			UserDir: userDir,
			Overrides: downloader.Overrides{
				PreferredQuality: job.Options.PreferredQuality,
				PreferredFormats: job.Options.PreferredFormats,
			},
		})
		if err != nil {
			return err
		}
		outputPath = result.FilePath
		formatID = &result.FormatID
		if int32(result.Attempts) > attempts {
			attempts = int32(result.Attempts)
		}
	}

	return q.MarkDownloadJobSucceeded(ctx, &db.MarkDownloadJobSucceededParams{
		ID:         job.ID,
		OutputPath: &outputPath,
		FormatID:   formatID,
		Attempts:   attempts,
	})
}

// persistUpdatedCookies writes back the cookie jar yt-dlp produced, so
// rotated session cookies survive into the next job.
func persistUpdatedCookies(q *db.Queries, encMgr *encryption.Manager, userID pgtype.UUID, cookies string) {
	cookies = strings.TrimSpace(cookies)
	if cookies == "" {
		return
	}

	persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	encrypted, err := encMgr.EncryptString(cookies)
	if err != nil {
		slog.Error("failed to encrypt updated cookies", "user_id", db.UUIDString(userID), "error", err)
		return
	}
	if err := q.UpsertCookieJar(persistCtx, userID, encrypted); err != nil {
		slog.Error("failed to persist updated cookies", "user_id", db.UUIDString(userID), "error", err)
		return
	}
	slog.Info("persisted updated cookies", "user_id", db.UUIDString(userID), "bytes", len(cookies))
}

func listenAndSignal(ctx context.Context, dsn string, signalCh chan<- struct{}) {
	for {
		if ctx.Err() != nil {
			return
		}

		// Parse using pgxpool so pool_* DSN params are consumed client-side
		// (otherwise they get forwarded to Postgres as startup params and cause FATAL).
		poolConf, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			slog.Error("listen parse config failed", "error", err)
			time.Sleep(2 * time.Second)
			continue
		}

		conn, err := pgx.ConnectConfig(ctx, poolConf.ConnConfig)
		if err != nil {
			slog.Error("listen connect failed", "error", err)
			time.Sleep(2 * time.Second)
			continue
		}

		if err := db.New(conn).ListenDownloadJobs(ctx); err != nil {
			slog.Error("LISTEN failed", "error", err)
			_ = conn.Close(ctx)
			time.Sleep(2 * time.Second)
			continue
		}

		for {
			if ctx.Err() != nil {
				_ = conn.Close(ctx)
				return
			}

			if err := conn.PgConn().WaitForNotification(ctx); err != nil {
				slog.Error("wait for notification failed", "error", err)
				_ = conn.Close(ctx)
				break
			}

			select {
			case signalCh <- struct{}{}:
			default:
			}
		}
	}
}

package downloader

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/pkg/encryption"
)

// CookiesForUser loads and decrypts the user's cookie jar. A missing or
// undecryptable jar degrades to anonymous access rather than failing the job.
func CookiesForUser(ctx context.Context, q *db.Queries, encMgr *encryption.Manager, userID pgtype.UUID) string {
	jar, err := q.GetCookieJar(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("failed to load cookie jar", "user_id", db.UUIDString(userID), "error", err)
		}
		return ""
	}

	cookies, err := encMgr.DecryptString(jar.Cookies)
	if err != nil {
		slog.Error("failed to decrypt cookie jar", "user_id", db.UUIDString(userID), "error", err)
		return ""
	}
	return cookies
}

package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"thirdcoast.systems/fetchtube/pkg/encryption"
)

// UpsertCookieJar stores a user's encrypted cookies.txt, replacing any
// previous jar.
func (q *Queries) UpsertCookieJar(ctx context.Context, userID pgtype.UUID, cookies encryption.EncryptedString) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO cookie_jars (user_id, cookies, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET cookies = EXCLUDED.cookies, updated_at = now()`,
		userID, cookies)
	return err
}

// GetCookieJar returns the user's jar. Returns pgx.ErrNoRows when the user
// never uploaded cookies.
func (q *Queries) GetCookieJar(ctx context.Context, userID pgtype.UUID) (*CookieJar, error) {
	row := q.db.QueryRow(ctx, `
		SELECT user_id, cookies, updated_at FROM cookie_jars WHERE user_id = $1`, userID)

	var jar CookieJar
	if err := row.Scan(&jar.UserID, &jar.Cookies, &jar.UpdatedAt); err != nil {
		return nil, err
	}
	return &jar, nil
}

// DeleteCookieJar removes the user's jar.
func (q *Queries) DeleteCookieJar(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM cookie_jars WHERE user_id = $1`, userID)
	return err
}

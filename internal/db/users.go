package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"thirdcoast.systems/fetchtube/pkg/utils/passwords"
)

const userColumns = `id, email, user_name, password, role, enabled, created_at`

// NewUserParams contains the parameters for creating a new user
type NewUserParams struct {
	Username string
	Email    string
	Password string // plaintext password
	Role     string
}

// NewUser creates a new user with a hashed password
func (q *Queries) NewUser(ctx context.Context, params NewUserParams) (*User, error) {
	hashedPassword, err := passwords.NewPassword(passwords.PasswordInput{
		Password: params.Password,
	})
	if err != nil {
		return nil, err
	}

	userID := uuid.New()
	pgUUID := pgtype.UUID{Bytes: userID, Valid: true}

	role := UserRole(params.Role)
	if params.Role == "" {
		role = UserRoleUser
	}

	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, user_name, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		pgUUID, params.Email, params.Username, hashedPassword, role)

	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (*User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.UserName, &u.Password, &u.Role, &u.Enabled, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

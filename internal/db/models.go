package db

import (
	"github.com/jackc/pgx/v5/pgtype"

	"thirdcoast.systems/fetchtube/pkg/encryption"
	"thirdcoast.systems/fetchtube/pkg/utils/passwords"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID        pgtype.UUID
	Email     string
	UserName  string
	Password  passwords.Password
	Role      UserRole
	Enabled   bool
	CreatedAt pgtype.Timestamptz
}

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

type JobKind string

const (
	JobKindAudio      JobKind = "audio"
	JobKindVideo      JobKind = "video"
	JobKindTranscript JobKind = "transcript"
)

// JobOptions is the per-job override payload, stored as jsonb. Zero values
// mean "use the configured defaults".
type JobOptions struct {
	PreferredQuality   string   `json:"preferred_quality,omitempty"`
	PreferredFormats   []string `json:"preferred_formats,omitempty"`
	TranscriptLanguage string   `json:"transcript_language,omitempty"`
	TranscriptFormat   string   `json:"transcript_format,omitempty"`
}

type DownloadJob struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	VideoID    string
	SourceURL  string
	Kind       JobKind
	Options    JobOptions
	Status     JobStatus
	Attempts   int32
	OutputPath *string
	FormatID   *string
	LastError  *string
	CreatedAt  pgtype.Timestamptz
	StartedAt  pgtype.Timestamptz
	FinishedAt pgtype.Timestamptz
}

// CookieJar is a user's uploaded cookies.txt, encrypted at rest.
type CookieJar struct {
	UserID    pgtype.UUID
	Cookies   encryption.EncryptedString
	UpdatedAt pgtype.Timestamptz
}

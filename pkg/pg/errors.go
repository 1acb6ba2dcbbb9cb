package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToConnect     = errors.New("failed to open postgres connection")
	ErrFailedToParseConfig = errors.New("failed to parse postgres config")
	ErrHealthcheckFailed   = errors.New("postgres healthcheck failed")
)

// IsNotFound detects pgx.ErrNoRows for consistent "not found" handling.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKey detects unique constraint violations (SQLSTATE 23505),
// which signal a replayed insert of an already-stored row.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("record not found")
	ErrDuplicate             = errors.New("duplicate record")
	ErrNoPrimaryKey          = errors.New("model has no primary key")
	ErrSoftDeleteUnsupported = errors.New("model does not support soft delete")
)

const pgUniqueViolation = "23505"

// translate maps driver and gorm errors onto the package sentinels while
// keeping the original error in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(ErrNotFound, err)
	}
	if IsDuplicate(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// IsDuplicate reports whether err is a unique constraint violation on
// Postgres or SQLite.
func IsDuplicate(err error) bool {
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "unique constraint failed")
}

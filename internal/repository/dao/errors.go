package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrNoActiveEvent  = errors.New("no active event")
	ErrEventConflict  = errors.New("event was modified concurrently")
	ErrTeamNotFound   = errors.New("team not found")
	ErrTeamNameExists = errors.New("team name already exists")
	ErrOrderNotFound  = errors.New("order not found")
)

// isUniqueViolation reports whether err is a unique constraint failure on
// the named index. Postgres errors are matched by code and constraint name,
// sqlite errors arrive translated as gorm.ErrDuplicatedKey.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation &&
			(constraint == "" || strings.Contains(pgErr.Message, constraint) || pgErr.ConstraintName == constraint)
	}

	return errors.Is(err, gorm.ErrDuplicatedKey)
}

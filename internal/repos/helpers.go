package repos

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// uniqueViolation is the postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

func dbOr(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// isDuplicateKey reports whether err is a unique/primary key violation, on
// either the postgres destination or the sqlite staging store.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// insertIfAbsent inserts value, skipping rows that already exist. The insert
// carries ON CONFLICT DO NOTHING so a duplicate never raises an error inside
// a postgres transaction, which would abort it (25P02) and doom every later
// statement on the same tx. isDuplicateKey stays as a fallback for conflicts
// the clause cannot suppress, such as deferred constraints reported at
// commit. Returns true when the row already existed.
func insertIfAbsent(dbc *gorm.DB, value any) (bool, error) {
	res := dbc.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error == nil {
		return res.RowsAffected == 0, nil
	}
	if isDuplicateKey(res.Error) {
		return true, nil
	}
	return false, res.Error
}

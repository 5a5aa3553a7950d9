package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/patch"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to Postgres through the pgx driver.
func Open(ctx context.Context, url string, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", url)
	if err != nil {
		return nil, goerr.Wrap(err, "connect database")
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	return db, nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// assignments collects the SET clause of a partial UPDATE.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, v any) {
	a.cols = append(a.cols, col)
	a.args = append(a.args, v)
}

func setPtr[T any](a *assignments, col string, v *T) {
	if v != nil {
		a.set(col, *v)
	}
}

func setField[T any](a *assignments, col string, f patch.Field[T]) {
	switch f.State() {
	case patch.StateSet:
		a.set(col, f.Value())
	case patch.StateNull:
		a.set(col, nil)
	case patch.StateAbsent:
	}
}

func (a *assignments) empty() bool {
	return len(a.cols) == 0
}

// update renders "UPDATE table SET ... WHERE where RETURNING returning" with
// dollar placeholders. updated_at is always refreshed.
func (a *assignments) update(table, where, returning string, whereArgs ...any) (string, []any) {
	sets := make([]string, 0, len(a.cols)+1)
	for _, col := range a.cols {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "updated_at = NOW()")

	q := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE " + where
	if returning != "" {
		q += " RETURNING " + returning
	}
	args := append(append([]any{}, a.args...), whereArgs...)
	return sqlx.Rebind(sqlx.DOLLAR, q), args
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/domain"
)

const tokenColumns = `id, user_id, used, created_at, expire_at`

// TokenRepository stores single-use tokens in one table.
type TokenRepository struct {
	db       *sqlx.DB
	table    string
	resource apierr.Resource
}

// NewConfirmationTokenRepository stores account confirmation tokens.
func NewConfirmationTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db, table: "user_confirmation_tokens", resource: apierr.ResourceUserConfirmationToken}
}

// NewPasswordResetTokenRepository stores password reset tokens.
func NewPasswordResetTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db, table: "password_reset_tokens", resource: apierr.ResourcePasswordResetToken}
}

func (r *TokenRepository) Insert(ctx context.Context, userID uuid.UUID, expireAt time.Time) (*domain.Token, error) {
	var t domain.Token
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO `+r.table+` (user_id, expire_at) VALUES ($1, $2) RETURNING `+tokenColumns,
		userID, expireAt,
	).StructScan(&t)
	if err != nil {
		return nil, goerr.Wrap(err, "insert token", goerr.V("table", r.table), goerr.V("user_id", userID))
	}
	return &t, nil
}

func (r *TokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Token, error) {
	var t domain.Token
	err := r.db.GetContext(ctx, &t, `SELECT `+tokenColumns+` FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(r.resource)
		}
		return nil, goerr.Wrap(err, "find token", goerr.V("table", r.table), goerr.V("id", id))
	}
	return &t, nil
}

// MarkUsed consumes a token. A token already used is reported as not found.
func (r *TokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE `+r.table+` SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return goerr.Wrap(err, "mark token used", goerr.V("table", r.table), goerr.V("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "mark token used", goerr.V("table", r.table), goerr.V("id", id))
	}
	if n == 0 {
		return apierr.ResourceNotFound(r.resource)
	}
	return nil
}

// DeleteExpired removes tokens whose expiry has passed and returns how many were removed.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE expire_at < NOW()`)
	if err != nil {
		return 0, goerr.Wrap(err, "delete expired tokens", goerr.V("table", r.table))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "delete expired tokens", goerr.V("table", r.table))
	}
	return n, nil
}

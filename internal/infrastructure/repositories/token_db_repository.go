package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
	"github.com/sima-oba/auth-service/internal/core/ports"
	"github.com/sima-oba/auth-service/internal/infrastructure/db"
)

// TokenDBRepository implements the token store on Postgres. Tokens are never
// deleted here; the expire_at index exists so retention can be handled out of
// band.
type TokenDBRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

var _ ports.TokenStore = (*TokenDBRepository)(nil)

// NewTokenDBRepository creates a new token repository
func NewTokenDBRepository(database *db.Database, logger *logrus.Logger) *TokenDBRepository {
	return &TokenDBRepository{db: database, logger: logger}
}

func (r *TokenDBRepository) FindByHash(ctx context.Context, hash string) (*token.Token, error) {
	var t token.Token
	query := `
		SELECT id, user_id, action, created_at, expire_at, access_at
		FROM activation_tokens
		WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &t, query, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to get activation token")
		}
		return nil, err
	}

	return &t, nil
}

func (r *TokenDBRepository) Insert(ctx context.Context, t *token.Token) error {
	query := `
		INSERT INTO activation_tokens (id, user_id, action, created_at, expire_at, access_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.DB.ExecContext(ctx, query,
		t.ID, t.UserID, t.Action, t.CreatedAt, t.ExpireAt, t.AccessedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": t.UserID, "action": t.Action}).WithError(err).Error("db: failed to insert activation token")
		}
		return err
	}

	return nil
}

// Update persists consumption. The WHERE clause only matches unconsumed rows,
// so a second concurrent consumption of the same token loses and surfaces as
// "Token is no longer valid".
func (r *TokenDBRepository) Update(ctx context.Context, t *token.Token) error {
	query := `
		UPDATE activation_tokens
		SET access_at = $2
		WHERE id = $1 AND access_at IS NULL`

	result, err := r.db.DB.ExecContext(ctx, query, t.ID, t.AccessedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to update activation token")
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperror.Authorization("Token is no longer valid")
	}

	return nil
}

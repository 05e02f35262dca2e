package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/ports"
	"github.com/sima-oba/auth-service/internal/infrastructure/db"
)

const pgUniqueViolation = "23505"

// IdentityRepository implements the identity directory on Postgres.
type IdentityRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

var _ ports.IdentityDirectory = (*IdentityRepository)(nil)

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(database *db.Database, logger *logrus.Logger) ports.IdentityDirectory {
	return &IdentityRepository{
		db:     database,
		logger: logger,
	}
}

// identityRow maps the identities table; array columns need pq types, so the
// domain struct is not scanned directly.
type identityRow struct {
	ID              uuid.UUID      `db:"id"`
	Doc             string         `db:"doc"`
	Username        string         `db:"username"`
	Email           string         `db:"email"`
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	Enabled         bool           `db:"enabled"`
	EmailVerified   bool           `db:"email_verified"`
	Defaulting      sql.NullString `db:"defaulting"`
	Groups          pq.StringArray `db:"groups"`
	RequiredActions pq.StringArray `db:"required_actions"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r identityRow) toDomain() *identity.Identity {
	ident := &identity.Identity{
		ID:              r.ID,
		Doc:             r.Doc,
		Username:        r.Username,
		Email:           r.Email,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Enabled:         r.Enabled,
		EmailVerified:   r.EmailVerified,
		Groups:          []string(r.Groups),
		RequiredActions: []string(r.RequiredActions),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Defaulting.Valid {
		ident.Defaulting = &r.Defaulting.String
	}
	return ident
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

const identityColumns = `id, doc, username, email, first_name, last_name, enabled,
	       email_verified, defaulting, groups, required_actions, created_at, updated_at`

// FindByID retrieves an identity by its directory-assigned id
func (r *IdentityRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	var row identityRow
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.KindUserNotFound, fmt.Sprintf("User %s was not found", id))
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"id": id}).WithError(err).Error("db: failed to get identity by id")
		}
		return nil, apperror.Unexpected(err)
	}

	return row.toDomain(), nil
}

// FindByUsername retrieves an identity by username (the doc for owner and
// public accounts)
func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	var row identityRow
	query := `SELECT ` + identityColumns + ` FROM identities WHERE username = $1`

	err := r.db.DB.GetContext(ctx, &row, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.UserNotFound(username)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": username}).WithError(err).Error("db: failed to get identity by username")
		}
		return nil, apperror.Unexpected(err)
	}

	return row.toDomain(), nil
}

func (r *IdentityRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM identities WHERE username = $1)`

	if err := r.db.DB.GetContext(ctx, &exists, query, username); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": username}).WithError(err).Error("db: failed to check identity existence")
		}
		return false, apperror.Unexpected(err)
	}

	return exists, nil
}

// Create persists a new identity and returns its id. The transient password
// is hashed with bcrypt before it touches the table.
func (r *IdentityRepository) Create(ctx context.Context, ident *identity.Identity) (uuid.UUID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(ident.Password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, apperror.Unexpected(fmt.Errorf("failed to hash password: %w", err))
	}

	id := uuid.New()
	now := time.Now().UTC()
	query := `
		INSERT INTO identities (id, doc, username, email, first_name, last_name, enabled,
			email_verified, defaulting, groups, required_actions, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`

	_, err = r.db.DB.ExecContext(ctx, query,
		id, ident.Doc, ident.Username, ident.Email, ident.FirstName, ident.LastName,
		ident.Enabled, ident.EmailVerified, nullString(ident.Defaulting),
		pq.StringArray(ident.Groups), pq.StringArray(ident.RequiredActions),
		string(hash), now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return uuid.Nil, apperror.Conflict(fmt.Sprintf("User with doc %s already exists", ident.Doc))
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"doc": ident.Doc}).WithError(err).Error("db: failed to create identity")
		}
		return uuid.Nil, apperror.Unexpected(err)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"id": id, "doc": ident.Doc}).Info("db: identity created")
	}

	return id, nil
}

func (r *IdentityRepository) Update(ctx context.Context, ident *identity.Identity) error {
	query := `
		UPDATE identities
		SET doc = $2, username = $3, email = $4, first_name = $5, last_name = $6,
			enabled = $7, email_verified = $8, defaulting = $9, groups = $10,
			required_actions = $11, updated_at = $12
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query,
		ident.ID, ident.Doc, ident.Username, ident.Email, ident.FirstName, ident.LastName,
		ident.Enabled, ident.EmailVerified, nullString(ident.Defaulting),
		pq.StringArray(ident.Groups), pq.StringArray(ident.RequiredActions),
		time.Now().UTC())
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"id": ident.ID}).WithError(err).Error("db: failed to update identity")
		}
		return apperror.Unexpected(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Unexpected(err)
	}
	if rowsAffected == 0 {
		return apperror.New(apperror.KindUserNotFound, fmt.Sprintf("User %s was not found", ident.ID))
	}

	return nil
}

func (r *IdentityRepository) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Unexpected(fmt.Errorf("failed to hash password: %w", err))
	}

	query := `UPDATE identities SET password_hash = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id, string(hash), time.Now().UTC())
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"id": id}).WithError(err).Error("db: failed to set password")
		}
		return apperror.Unexpected(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Unexpected(err)
	}
	if rowsAffected == 0 {
		return apperror.New(apperror.KindUserNotFound, fmt.Sprintf("User %s was not found", id))
	}

	return nil
}

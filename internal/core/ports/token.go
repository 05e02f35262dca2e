package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
)

// TokenStore persists activation tokens keyed by the hash of their secret.
// Tokens are never deleted by this service.
type TokenStore interface {
	// FindByHash returns (nil, nil) when no token with that hash exists.
	FindByHash(ctx context.Context, hash string) (*token.Token, error)
	Insert(ctx context.Context, t *token.Token) error
	Update(ctx context.Context, t *token.Token) error
}

// TokenLifecycle issues and redeems single-use, time-boxed, action-scoped
// secrets.
type TokenLifecycle interface {
	// Issue persists a new token and returns the raw secret. The hash is
	// never returned to callers.
	Issue(ctx context.Context, userID uuid.UUID, action token.Action, ttl time.Duration) (string, error)
	// Redeem validates the secret against expectedAction and returns the
	// token unconsumed. The caller must invoke MarkConsumed after completing
	// the associated side effects.
	Redeem(ctx context.Context, secret string, expectedAction token.Action) (*token.Token, error)
	MarkConsumed(ctx context.Context, t *token.Token) error
}

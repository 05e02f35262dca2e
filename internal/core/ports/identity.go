package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
)

// IdentityDirectory is the external user/group/role store. It is the system
// of record for identities and is never cached by this service.
//
// Lookups fail with a USER_NOT_FOUND kind when the target does not exist;
// Create fails with a CONFLICT kind on a duplicate doc/username.
type IdentityDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error)
	FindByUsername(ctx context.Context, username string) (*identity.Identity, error)
	Exists(ctx context.Context, username string) (bool, error)
	// Create persists a new identity and returns the directory-assigned id.
	Create(ctx context.Context, ident *identity.Identity) (uuid.UUID, error)
	Update(ctx context.Context, ident *identity.Identity) error
	SetPassword(ctx context.Context, id uuid.UUID, password string) error
}

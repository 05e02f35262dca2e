package ports

import (
	"context"

	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/owner"
)

// AccountService covers token flows for already-existing, possibly-enabled
// identities.
type AccountService interface {
	RequestVerifyEmail(ctx context.Context, username string) error
	VerifyEmail(ctx context.Context, secret string) (*identity.Identity, error)
	RequestResetPassword(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, password, secret string) error
}

// RegistrationService drives the requested -> activation-token-issued ->
// activated state machine for owner and public accounts.
type RegistrationService interface {
	RequestOwnerActivation(ctx context.Context, doc string) (*identity.Identity, error)
	ActivateOwner(ctx context.Context, secret, password string) (*identity.Identity, error)
	RegisterPublicUser(ctx context.Context, reg *identity.PublicRegistration) (*identity.Identity, error)
	ActivatePublicUser(ctx context.Context, secret string) (*identity.Identity, error)
}

// OwnerImporter reconciles inbound owner records into the identity
// directory. ImportOwner must be idempotent per doc: events are delivered at
// least once.
type OwnerImporter interface {
	ImportOwner(ctx context.Context, evt *owner.Event) error
}

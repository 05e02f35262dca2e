package ports

import (
	"context"

	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/owner"
)

// Notifier dispatches account notifications carrying a raw token secret.
// Implementations fail with an UNEXPECTED kind on transport failure; callers
// do not retry.
type Notifier interface {
	SendOwnerEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error
	SendEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error
	SendResetPassword(ctx context.Context, ident *identity.Identity, secret string) error
}

// OwnerPublisher emits owner records onto the NEW_OWNER channel, where the
// import reconciler (this service's consumer or another instance) picks them
// up.
type OwnerPublisher interface {
	PublishNewOwner(ctx context.Context, evt *owner.Event) error
}

package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/owner"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

// placeholderPasswordLength sizes the random credential given to imported
// accounts. It is never used to authenticate: the account stays disabled
// until the seed token is redeemed.
const placeholderPasswordLength = 20

// OwnerImportService reconciles inbound owner records into the identity
// directory. Idempotency is find-or-create keyed on doc, matching
// at-least-once delivery: replays of an unchanged event converge on the same
// identity state.
type OwnerImportService struct {
	directory ports.IdentityDirectory
	tokens    ports.TokenLifecycle
	notifier  ports.Notifier
	logger    *logrus.Logger
}

func NewOwnerImportService(directory ports.IdentityDirectory, tokens ports.TokenLifecycle, notifier ports.Notifier, logger *logrus.Logger) ports.OwnerImporter {
	return &OwnerImportService{
		directory: directory,
		tokens:    tokens,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *OwnerImportService) ImportOwner(ctx context.Context, evt *owner.Event) error {
	ident, err := findByDoc(ctx, s.directory, evt.Doc)
	if err != nil {
		return err
	}

	if ident == nil {
		return s.registerOwner(ctx, evt)
	}
	return s.updateOwner(ctx, evt, ident)
}

func (s *OwnerImportService) registerOwner(ctx context.Context, evt *owner.Event) error {
	placeholder, err := token.GenerateSecret(placeholderPasswordLength)
	if err != nil {
		return apperror.Unexpected(err)
	}

	first, last := identity.SplitFullName(evt.Name)
	ident := &identity.Identity{
		Doc:             evt.Doc,
		Username:        evt.Doc,
		Email:           evt.Email,
		FirstName:       first,
		LastName:        last,
		Enabled:         false,
		EmailVerified:   false,
		Defaulting:      evt.Defaulting,
		Groups:          []string{identity.GroupProducer},
		RequiredActions: []string{identity.RequiredUpdatePassword},
		Password:        placeholder,
	}

	id, err := s.directory.Create(ctx, ident)
	if err != nil {
		return err
	}
	ident.ID = id

	// The 365-day reset-password token doubles as the owner's initial
	// activation path.
	secret, err := s.tokens.Issue(ctx, id, token.ActionUpdatePassword, token.ImportedPasswordTTL)
	if err != nil {
		return err
	}

	if err := s.notifier.SendResetPassword(ctx, ident, secret); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": id, "doc": evt.Doc}).Debug("owner imported with pending password")
	}
	return nil
}

// updateOwner touches only the documented mutable profile fields. Enablement
// and verification state stay as they are and no token is reissued.
func (s *OwnerImportService) updateOwner(ctx context.Context, evt *owner.Event, ident *identity.Identity) error {
	first, last := identity.SplitFullName(evt.Name)
	ident.Doc = evt.Doc
	ident.FirstName = first
	ident.LastName = last
	ident.Email = evt.Email
	ident.Defaulting = evt.Defaulting

	if err := s.directory.Update(ctx, ident); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": ident.ID, "doc": ident.Doc}).Debug("owner updated")
	}
	return nil
}

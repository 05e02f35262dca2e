package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

// RegistrationService implements owner and public self-registration plus the
// activation flows completing them.
type RegistrationService struct {
	directory ports.IdentityDirectory
	tokens    ports.TokenLifecycle
	notifier  ports.Notifier
	logger    *logrus.Logger
}

func NewRegistrationService(directory ports.IdentityDirectory, tokens ports.TokenLifecycle, notifier ports.Notifier, logger *logrus.Logger) ports.RegistrationService {
	return &RegistrationService{
		directory: directory,
		tokens:    tokens,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *RegistrationService) RequestOwnerActivation(ctx context.Context, doc string) (*identity.Identity, error) {
	ident, err := findByDoc(ctx, s.directory, doc)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, apperror.UserNotFound(doc)
	}

	if !ident.HasRequiredAction(identity.RequiredVerifyEmail) {
		return nil, apperror.AlreadyActive(doc)
	}

	secret, err := s.tokens.Issue(ctx, ident.ID, token.ActionOwnerRegistration, token.OwnerRegistrationTTL)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendOwnerEmailVerification(ctx, ident, secret); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithField("doc", doc).Debug("owner activation requested")
	}
	return ident, nil
}

func (s *RegistrationService) ActivateOwner(ctx context.Context, secret, password string) (*identity.Identity, error) {
	t, err := s.tokens.Redeem(ctx, secret, token.ActionOwnerRegistration)
	if err != nil {
		return nil, err
	}

	ident, err := s.loadTokenIdentity(ctx, t.UserID)
	if err != nil {
		return nil, err
	}

	ident.Enabled = true
	ident.EmailVerified = true
	ident.RemoveRequiredAction(identity.RequiredVerifyEmail)
	ident.RemoveRequiredAction(identity.RequiredUpdatePassword)

	if err := s.directory.Update(ctx, ident); err != nil {
		return nil, err
	}

	if err := s.directory.SetPassword(ctx, ident.ID, password); err != nil {
		return nil, err
	}

	if err := s.tokens.MarkConsumed(ctx, t); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": ident.ID, "doc": ident.Doc}).Debug("owner activated")
	}
	return ident, nil
}

func (s *RegistrationService) RegisterPublicUser(ctx context.Context, reg *identity.PublicRegistration) (*identity.Identity, error) {
	exists, err := s.directory.Exists(ctx, reg.Doc)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.AlreadyActive(reg.Doc)
	}

	first, last := identity.SplitFullName(reg.FullName)
	ident := &identity.Identity{
		Doc:             reg.Doc,
		Username:        reg.Doc,
		Email:           reg.Email,
		FirstName:       first,
		LastName:        last,
		Enabled:         false,
		EmailVerified:   false,
		Groups:          []string{identity.GroupPublic},
		RequiredActions: []string{identity.RequiredVerifyEmail},
		Password:        reg.Password,
	}

	id, err := s.directory.Create(ctx, ident)
	if err != nil {
		return nil, err
	}
	ident.ID = id

	secret, err := s.tokens.Issue(ctx, id, token.ActionUserRegistration, token.UserRegistrationTTL)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendEmailVerification(ctx, ident, secret); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": ident.ID, "doc": ident.Doc}).Debug("public user registered")
	}
	return ident, nil
}

// ActivatePublicUser enables the account created at registration. The
// password is not touched here: it was supplied when the user registered.
func (s *RegistrationService) ActivatePublicUser(ctx context.Context, secret string) (*identity.Identity, error) {
	t, err := s.tokens.Redeem(ctx, secret, token.ActionUserRegistration)
	if err != nil {
		return nil, err
	}

	ident, err := s.loadTokenIdentity(ctx, t.UserID)
	if err != nil {
		return nil, err
	}

	ident.Enabled = true
	ident.EmailVerified = true
	ident.RemoveRequiredAction(identity.RequiredVerifyEmail)

	if err := s.directory.Update(ctx, ident); err != nil {
		return nil, err
	}

	if err := s.tokens.MarkConsumed(ctx, t); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": ident.ID, "doc": ident.Doc}).Debug("public user activated")
	}
	return ident, nil
}

func (s *RegistrationService) loadTokenIdentity(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	ident, err := s.directory.FindByID(ctx, id)
	if err != nil {
		if apperror.IsKind(err, apperror.KindUserNotFound) {
			return nil, apperror.Userf("User no longer exists")
		}
		return nil, err
	}
	return ident, nil
}

// findByDoc treats the directory's not-found kind as absence.
func findByDoc(ctx context.Context, directory ports.IdentityDirectory, doc string) (*identity.Identity, error) {
	ident, err := directory.FindByUsername(ctx, doc)
	if err != nil {
		if apperror.IsKind(err, apperror.KindUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ident, nil
}

package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

// AccountService implements the email-verification and password-reset flows
// for existing accounts.
type AccountService struct {
	directory ports.IdentityDirectory
	tokens    ports.TokenLifecycle
	notifier  ports.Notifier
	logger    *logrus.Logger
}

func NewAccountService(directory ports.IdentityDirectory, tokens ports.TokenLifecycle, notifier ports.Notifier, logger *logrus.Logger) ports.AccountService {
	return &AccountService{
		directory: directory,
		tokens:    tokens,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *AccountService) RequestVerifyEmail(ctx context.Context, username string) error {
	ident, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if ident.EmailVerified && !ident.HasRequiredAction(identity.RequiredVerifyEmail) {
		return apperror.Userf("User %s has already been verified", ident.Username)
	}

	secret, err := s.tokens.Issue(ctx, ident.ID, token.ActionVerifyEmail, token.VerifyEmailTTL)
	if err != nil {
		return err
	}

	if err := s.notifier.SendEmailVerification(ctx, ident, secret); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.WithField("username", username).Debug("email verification sent")
	}
	return nil
}

func (s *AccountService) VerifyEmail(ctx context.Context, secret string) (*identity.Identity, error) {
	t, err := s.tokens.Redeem(ctx, secret, token.ActionVerifyEmail)
	if err != nil {
		return nil, err
	}

	ident, err := s.directory.FindByID(ctx, t.UserID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindUserNotFound) {
			return nil, apperror.Userf("User no longer exists")
		}
		return nil, err
	}

	ident.EmailVerified = true
	ident.RemoveRequiredAction(identity.RequiredVerifyEmail)

	if err := s.directory.Update(ctx, ident); err != nil {
		return nil, err
	}

	if err := s.tokens.MarkConsumed(ctx, t); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithField("username", ident.Username).Debug("email verified")
	}
	return ident, nil
}

func (s *AccountService) RequestResetPassword(ctx context.Context, username string) error {
	ident, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	secret, err := s.tokens.Issue(ctx, ident.ID, token.ActionUpdatePassword, token.PasswordResetTTL)
	if err != nil {
		return err
	}

	if err := s.notifier.SendResetPassword(ctx, ident, secret); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.WithField("username", username).Debug("reset password sent")
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, password, secret string) error {
	t, err := s.tokens.Redeem(ctx, secret, token.ActionUpdatePassword)
	if err != nil {
		return err
	}

	if err := s.directory.SetPassword(ctx, t.UserID, password); err != nil {
		return err
	}

	if err := s.tokens.MarkConsumed(ctx, t); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.WithField("user_id", t.UserID).Debug("password redefined")
	}
	return nil
}

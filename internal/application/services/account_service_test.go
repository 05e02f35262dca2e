package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sima-oba/auth-service/internal/application/services"
	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
)

func TestRequestVerifyEmail_AlreadyVerified(t *testing.T) {
	directory := &directoryMock{
		findByUsernameFn: func(ctx context.Context, username string) (*identity.Identity, error) {
			return &identity.Identity{
				ID:            uuid.New(),
				Username:      username,
				EmailVerified: true,
			}, nil
		},
	}
	notifier := &notifierMock{}
	tokens := services.NewTokenService(newMemoryTokenStore(), nil)
	svc := services.NewAccountService(directory, tokens, notifier, nil)

	err := svc.RequestVerifyEmail(context.Background(), "12345678900")
	require.True(t, apperror.IsKind(err, apperror.KindUser))
	require.EqualError(t, err, "User 12345678900 has already been verified")
	require.Empty(t, notifier.verifications)
}

func TestRequestVerifyEmail_UnknownUser(t *testing.T) {
	tokens := services.NewTokenService(newMemoryTokenStore(), nil)
	svc := services.NewAccountService(&directoryMock{}, tokens, &notifierMock{}, nil)

	err := svc.RequestVerifyEmail(context.Background(), "nobody")
	require.True(t, apperror.IsKind(err, apperror.KindUserNotFound))
}

func TestVerifyEmail(t *testing.T) {
	userID := uuid.New()
	ident := &identity.Identity{
		ID:              userID,
		Username:        "12345678900",
		RequiredActions: []string{identity.RequiredVerifyEmail},
	}

	var updated *identity.Identity
	directory := &directoryMock{
		findByUsernameFn: func(ctx context.Context, username string) (*identity.Identity, error) {
			return ident, nil
		},
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
			require.Equal(t, userID, id)
			return ident, nil
		},
		updateFn: func(ctx context.Context, i *identity.Identity) error {
			updated = i
			return nil
		},
	}
	notifier := &notifierMock{}
	store := newMemoryTokenStore()
	tokens := services.NewTokenService(store, nil)
	svc := services.NewAccountService(directory, tokens, notifier, nil)

	require.NoError(t, svc.RequestVerifyEmail(context.Background(), "12345678900"))
	require.Len(t, notifier.verifications, 1)
	secret := notifier.verifications[0]

	got, err := svc.VerifyEmail(context.Background(), secret)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)
	require.False(t, got.HasRequiredAction(identity.RequiredVerifyEmail))
	require.NotNil(t, updated)

	// single use
	_, err = svc.VerifyEmail(context.Background(), secret)
	require.EqualError(t, err, "Token is no longer valid")
}

func TestVerifyEmail_UserDeletedAfterIssue(t *testing.T) {
	store := newMemoryTokenStore()
	tokens := services.NewTokenService(store, nil)
	secret, err := tokens.Issue(context.Background(), uuid.New(), token.ActionVerifyEmail, 30*time.Minute)
	require.NoError(t, err)

	svc := services.NewAccountService(&directoryMock{}, tokens, &notifierMock{}, nil)

	_, err = svc.VerifyEmail(context.Background(), secret)
	require.True(t, apperror.IsKind(err, apperror.KindUser))
	require.EqualError(t, err, "User no longer exists")
}

func TestResetPassword(t *testing.T) {
	userID := uuid.New()
	directory := &directoryMock{
		findByUsernameFn: func(ctx context.Context, username string) (*identity.Identity, error) {
			return &identity.Identity{ID: userID, Username: username, EmailVerified: true}, nil
		},
	}

	var setPasswords []string
	directory.setPasswordFn = func(ctx context.Context, id uuid.UUID, password string) error {
		require.Equal(t, userID, id)
		setPasswords = append(setPasswords, password)
		return nil
	}

	notifier := &notifierMock{}
	tokens := services.NewTokenService(newMemoryTokenStore(), nil)
	svc := services.NewAccountService(directory, tokens, notifier, nil)

	// reset requests are allowed for verified accounts too
	require.NoError(t, svc.RequestResetPassword(context.Background(), "12345678900"))
	require.Len(t, notifier.resetPasswords, 1)

	secret := notifier.resetPasswords[0]
	require.NoError(t, svc.ResetPassword(context.Background(), "n3w-Passw0rd", secret))
	require.Equal(t, []string{"n3w-Passw0rd"}, setPasswords)

	err := svc.ResetPassword(context.Background(), "an0ther-Pass", secret)
	require.EqualError(t, err, "Token is no longer valid")
	require.Len(t, setPasswords, 1)
}

func TestResetPassword_VerifyTokenRejected(t *testing.T) {
	tokens := services.NewTokenService(newMemoryTokenStore(), nil)
	secret, err := tokens.Issue(context.Background(), uuid.New(), token.ActionVerifyEmail, 30*time.Minute)
	require.NoError(t, err)

	svc := services.NewAccountService(&directoryMock{}, tokens, &notifierMock{}, nil)

	err = svc.ResetPassword(context.Background(), "n3w-Passw0rd", secret)
	require.EqualError(t, err, "Illegal action requested for this token")
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sima-oba/auth-service/internal/application/services"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/owner"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
)

func TestImportOwner_NewOwner(t *testing.T) {
	var created *identity.Identity
	userID := uuid.New()
	directory := &directoryMock{
		createFn: func(ctx context.Context, ident *identity.Identity) (uuid.UUID, error) {
			created = ident
			return userID, nil
		},
	}
	notifier := &notifierMock{}
	store := newMemoryTokenStore()
	tokens := services.NewTokenService(store, nil)
	svc := services.NewOwnerImportService(directory, tokens, notifier, nil)

	defaulting := "2026-01-15"
	err := svc.ImportOwner(context.Background(), &owner.Event{
		ID:         "ext-1",
		Doc:        "98765432100",
		Name:       "José dos Santos",
		Email:      "jose@farm.example",
		Phone:      "+5571988880000",
		Defaulting: &defaulting,
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	require.Equal(t, "98765432100", created.Doc)
	require.Equal(t, "98765432100", created.Username)
	require.Equal(t, "José", created.FirstName)
	require.Equal(t, "dos Santos", created.LastName)
	require.False(t, created.Enabled)
	require.False(t, created.EmailVerified)
	require.Equal(t, []string{identity.GroupProducer}, created.Groups)
	require.Equal(t, []string{identity.RequiredUpdatePassword}, created.RequiredActions)
	require.NotEmpty(t, created.Password)
	require.Equal(t, &defaulting, created.Defaulting)

	// imported owners get a long-lived password seed token
	require.Len(t, notifier.resetPasswords, 1)
	tok, err := store.FindByHash(context.Background(), token.HashSecret(notifier.resetPasswords[0]))
	require.NoError(t, err)
	require.NotNil(t, tok)
	require.Equal(t, token.ActionUpdatePassword, tok.Action)
	require.WithinDuration(t, tok.CreatedAt.Add(365*24*time.Hour), tok.ExpireAt, time.Second)
}

func TestImportOwner_ExistingOwner(t *testing.T) {
	userID := uuid.New()
	existing := &identity.Identity{
		ID:              userID,
		Doc:             "98765432100",
		Username:        "98765432100",
		Email:           "old@farm.example",
		FirstName:       "José",
		LastName:        "Santos",
		Enabled:         true,
		EmailVerified:   true,
		Groups:          []string{identity.GroupProducer},
		RequiredActions: []string{},
	}

	var updated *identity.Identity
	directory := &directoryMock{
		findByUsernameFn: func(ctx context.Context, username string) (*identity.Identity, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, ident *identity.Identity) error {
			updated = ident
			return nil
		},
	}
	notifier := &notifierMock{}
	store := newMemoryTokenStore()
	tokens := services.NewTokenService(store, nil)
	svc := services.NewOwnerImportService(directory, tokens, notifier, nil)

	defaulting := "2026-02-01"
	err := svc.ImportOwner(context.Background(), &owner.Event{
		ID:         "ext-1",
		Doc:        "98765432100",
		Name:       "José Carlos dos Santos",
		Email:      "new@farm.example",
		Defaulting: &defaulting,
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	require.Equal(t, "José", updated.FirstName)
	require.Equal(t, "Carlos dos Santos", updated.LastName)
	require.Equal(t, "new@farm.example", updated.Email)
	require.Equal(t, &defaulting, updated.Defaulting)

	// replay must not re-seed credentials or disable the account
	require.True(t, updated.Enabled)
	require.True(t, updated.EmailVerified)
	require.Empty(t, notifier.resetPasswords)
}

func TestImportOwner_ReplayConverges(t *testing.T) {
	var createdCount int
	byDoc := map[string]*identity.Identity{}
	userID := uuid.New()
	directory := &directoryMock{
		findByUsernameFn: func(ctx context.Context, username string) (*identity.Identity, error) {
			if ident, ok := byDoc[username]; ok {
				return ident, nil
			}
			return nil, nil
		},
		createFn: func(ctx context.Context, ident *identity.Identity) (uuid.UUID, error) {
			createdCount++
			ident.ID = userID
			byDoc[ident.Doc] = ident
			return userID, nil
		},
	}
	notifier := &notifierMock{}
	tokens := services.NewTokenService(newMemoryTokenStore(), nil)
	svc := services.NewOwnerImportService(directory, tokens, notifier, nil)

	evt := &owner.Event{
		ID:    "ext-1",
		Doc:   "98765432100",
		Name:  "José dos Santos",
		Email: "jose@farm.example",
	}

	require.NoError(t, svc.ImportOwner(context.Background(), evt))
	require.NoError(t, svc.ImportOwner(context.Background(), evt))

	require.Equal(t, 1, createdCount)
	require.Len(t, notifier.resetPasswords, 1)
}

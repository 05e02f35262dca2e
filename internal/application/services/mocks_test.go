package services_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
)

// directoryMock is a function-field mock for ports.IdentityDirectory.
type directoryMock struct {
	findByIDFn       func(ctx context.Context, id uuid.UUID) (*identity.Identity, error)
	findByUsernameFn func(ctx context.Context, username string) (*identity.Identity, error)
	existsFn         func(ctx context.Context, username string) (bool, error)
	createFn         func(ctx context.Context, ident *identity.Identity) (uuid.UUID, error)
	updateFn         func(ctx context.Context, ident *identity.Identity) error
	setPasswordFn    func(ctx context.Context, id uuid.UUID, password string) error
}

func (m *directoryMock) FindByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.New(apperror.KindUserNotFound, "User was not found")
}

func (m *directoryMock) FindByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, apperror.UserNotFound(username)
}

func (m *directoryMock) Exists(ctx context.Context, username string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, username)
	}
	return false, nil
}

func (m *directoryMock) Create(ctx context.Context, ident *identity.Identity) (uuid.UUID, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ident)
	}
	return uuid.New(), nil
}

func (m *directoryMock) Update(ctx context.Context, ident *identity.Identity) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, ident)
	}
	return nil
}

func (m *directoryMock) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	if m.setPasswordFn != nil {
		return m.setPasswordFn(ctx, id, password)
	}
	return nil
}

// notifierMock records the notifications that would have been dispatched.
type notifierMock struct {
	ownerVerifications []string
	verifications      []string
	resetPasswords     []string
	sendErr            error
}

func (m *notifierMock) SendOwnerEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.ownerVerifications = append(m.ownerVerifications, secret)
	return nil
}

func (m *notifierMock) SendEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.verifications = append(m.verifications, secret)
	return nil
}

func (m *notifierMock) SendResetPassword(ctx context.Context, ident *identity.Identity, secret string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.resetPasswords = append(m.resetPasswords, secret)
	return nil
}

// memoryTokenStore is an in-memory ports.TokenStore mirroring the SQL
// adapter's contract, including the conditional consumption update.
type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]token.Token
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]token.Token)}
}

func (s *memoryTokenStore) FindByHash(ctx context.Context, hash string) (*token.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[hash]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *memoryTokenStore) Insert(ctx context.Context, t *token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.ID] = *t
	return nil
}

func (s *memoryTokenStore) Update(ctx context.Context, t *token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tokens[t.ID]
	if !ok || existing.AccessedAt != nil {
		return apperror.Authorization("Token is no longer valid")
	}
	s.tokens[t.ID] = *t
	return nil
}

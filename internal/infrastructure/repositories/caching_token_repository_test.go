package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sima-oba/auth-service/internal/core/domain/token"
	"github.com/sima-oba/auth-service/internal/infrastructure/repositories"
)

type cacheEntry struct {
	value []byte
	ttl   time.Duration
}

type cacheMock struct {
	entries map[string]cacheEntry
	getErr  error
}

func newCacheMock() *cacheMock {
	return &cacheMock{entries: make(map[string]cacheEntry)}
}

func (c *cacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *cacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

func (c *cacheMock) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

type tokenStoreMock struct {
	tokens    map[string]*token.Token
	findCalls int
}

func newTokenStoreMock() *tokenStoreMock {
	return &tokenStoreMock{tokens: make(map[string]*token.Token)}
}

func (s *tokenStoreMock) FindByHash(ctx context.Context, hash string) (*token.Token, error) {
	s.findCalls++
	return s.tokens[hash], nil
}

func (s *tokenStoreMock) Insert(ctx context.Context, t *token.Token) error {
	s.tokens[t.ID] = t
	return nil
}

func (s *tokenStoreMock) Update(ctx context.Context, t *token.Token) error {
	s.tokens[t.ID] = t
	return nil
}

func sampleToken(ttl time.Duration) *token.Token {
	now := time.Now().UTC()
	return &token.Token{
		ID:        token.HashSecret("sample"),
		UserID:    uuid.New(),
		Action:    token.ActionVerifyEmail,
		CreatedAt: now,
		ExpireAt:  now.Add(ttl),
	}
}

func TestCachingTokenRepository_ReadThrough(t *testing.T) {
	store := newTokenStoreMock()
	cache := newCacheMock()
	repo := repositories.NewCachingTokenRepository(store, cache, 30*time.Minute, nil)

	tok := sampleToken(time.Hour)
	require.NoError(t, store.Insert(context.Background(), tok))
	store.findCalls = 0

	got, err := repo.FindByHash(context.Background(), tok.ID)
	require.NoError(t, err)
	require.Equal(t, tok.ID, got.ID)
	require.Equal(t, 1, store.findCalls)

	// second read is served from cache
	got, err = repo.FindByHash(context.Background(), tok.ID)
	require.NoError(t, err)
	require.Equal(t, tok.ID, got.ID)
	require.Equal(t, 1, store.findCalls)
}

func TestCachingTokenRepository_MissIsNotCached(t *testing.T) {
	store := newTokenStoreMock()
	repo := repositories.NewCachingTokenRepository(store, newCacheMock(), 30*time.Minute, nil)

	got, err := repo.FindByHash(context.Background(), token.HashSecret("missing"))
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = repo.FindByHash(context.Background(), token.HashSecret("missing"))
	require.NoError(t, err)
	require.Equal(t, 2, store.findCalls)
}

func TestCachingTokenRepository_CacheFailureFallsBack(t *testing.T) {
	store := newTokenStoreMock()
	cache := newCacheMock()
	cache.getErr = errors.New("connection refused")
	repo := repositories.NewCachingTokenRepository(store, cache, 30*time.Minute, nil)

	tok := sampleToken(time.Hour)
	require.NoError(t, store.Insert(context.Background(), tok))

	got, err := repo.FindByHash(context.Background(), tok.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCachingTokenRepository_UpdateInvalidates(t *testing.T) {
	store := newTokenStoreMock()
	cache := newCacheMock()
	repo := repositories.NewCachingTokenRepository(store, cache, 30*time.Minute, nil)

	tok := sampleToken(time.Hour)
	require.NoError(t, repo.Insert(context.Background(), tok))
	require.Len(t, cache.entries, 1)

	now := time.Now().UTC()
	tok.AccessedAt = &now
	require.NoError(t, repo.Update(context.Background(), tok))
	require.Empty(t, cache.entries)

	// next read sees the consumed state from the store
	got, err := repo.FindByHash(context.Background(), tok.ID)
	require.NoError(t, err)
	require.True(t, got.IsConsumed())
}

func TestCachingTokenRepository_TTLCappedByExpiry(t *testing.T) {
	store := newTokenStoreMock()
	cache := newCacheMock()
	repo := repositories.NewCachingTokenRepository(store, cache, 30*time.Minute, nil)

	tok := sampleToken(time.Minute)
	require.NoError(t, repo.Insert(context.Background(), tok))

	entry, ok := cache.entries["activation_token:"+tok.ID]
	require.True(t, ok)
	require.LessOrEqual(t, entry.ttl, time.Minute)

	// already-expired tokens are not cached at all
	expired := sampleToken(-time.Minute)
	expired.ID = token.HashSecret("expired")
	require.NoError(t, repo.Insert(context.Background(), expired))
	_, ok = cache.entries["activation_token:"+expired.ID]
	require.False(t, ok)
}

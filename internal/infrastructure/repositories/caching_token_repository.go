package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/token"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

const tokenCachePrefix = "activation_token" //nolint:gosec // key prefix, not a credential

// CachingTokenRepository decorates a TokenStore with a read-through cache.
// Cache failures degrade to the underlying store; entries never outlive the
// token's own expiry.
type CachingTokenRepository struct {
	base   ports.TokenStore
	cache  ports.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

var _ ports.TokenStore = (*CachingTokenRepository)(nil)

func NewCachingTokenRepository(base ports.TokenStore, cache ports.Cache, ttl time.Duration, logger *logrus.Logger) *CachingTokenRepository {
	return &CachingTokenRepository{base: base, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachingTokenRepository) key(hash string) string {
	return tokenCachePrefix + ":" + hash
}

func (r *CachingTokenRepository) FindByHash(ctx context.Context, hash string) (*token.Token, error) {
	if b, ok, err := r.cache.Get(ctx, r.key(hash)); err == nil && ok {
		var t token.Token
		if err := json.Unmarshal(b, &t); err == nil {
			return &t, nil
		}
	} else if err != nil && r.logger != nil {
		r.logger.WithError(err).Warn("cache: token lookup failed, falling back to store")
	}

	t, err := r.base.FindByHash(ctx, hash)
	if err != nil || t == nil {
		return t, err
	}

	r.store(ctx, t)
	return t, nil
}

func (r *CachingTokenRepository) Insert(ctx context.Context, t *token.Token) error {
	if err := r.base.Insert(ctx, t); err != nil {
		return err
	}
	r.store(ctx, t)
	return nil
}

// Update invalidates rather than rewrites: the consumed state must come from
// the store on the next read.
func (r *CachingTokenRepository) Update(ctx context.Context, t *token.Token) error {
	if err := r.base.Update(ctx, t); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, r.key(t.ID)); err != nil && r.logger != nil {
		r.logger.WithError(err).Warn("cache: failed to invalidate token entry")
	}
	return nil
}

func (r *CachingTokenRepository) store(ctx context.Context, t *token.Token) {
	ttl := r.ttl
	if until := time.Until(t.ExpireAt); until < ttl {
		ttl = until
	}
	if ttl <= 0 {
		return
	}

	b, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.key(t.ID), b, ttl); err != nil && r.logger != nil {
		r.logger.WithError(err).Warn("cache: failed to store token entry")
	}
}

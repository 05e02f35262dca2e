package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/token"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

var tokensIssued = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "The total number of activation tokens issued by action",
	},
	[]string{"action"},
)

func init() {
	prometheus.MustRegister(tokensIssued)
}

// TokenService owns creation and mutation of activation tokens.
type TokenService struct {
	store  ports.TokenStore
	logger *logrus.Logger
}

func NewTokenService(store ports.TokenStore, logger *logrus.Logger) ports.TokenLifecycle {
	return &TokenService{store: store, logger: logger}
}

func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, action token.Action, ttl time.Duration) (string, error) {
	secret, t, err := token.New(userID, action, ttl)
	if err != nil {
		return "", apperror.Unexpected(err)
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return "", apperror.Unexpected(err)
	}

	tokensIssued.WithLabelValues(string(action)).Inc()
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"action":  action,
		}).Debug("activation token issued")
	}

	return secret, nil
}

// Redeem returns the token unconsumed; the caller invokes MarkConsumed after
// completing the associated side effects, so a failure in between leaves the
// token usable for a retry. Two concurrent redemptions of the same secret can
// therefore both pass the consumption check before either persists; the SQL
// store narrows this window with a conditional update on consumption.
func (s *TokenService) Redeem(ctx context.Context, secret string, expectedAction token.Action) (*token.Token, error) {
	t, err := s.store.FindByHash(ctx, token.HashSecret(secret))
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	if t == nil {
		return nil, apperror.Authorization("Invalid token")
	}

	if t.IsConsumed() || t.IsExpired(time.Now().UTC()) {
		return nil, apperror.Authorization("Token is no longer valid")
	}

	if t.Action != expectedAction {
		return nil, apperror.Authorization("Illegal action requested for this token")
	}

	return t, nil
}

func (s *TokenService) MarkConsumed(ctx context.Context, t *token.Token) error {
	now := time.Now().UTC()
	t.AccessedAt = &now

	if err := s.store.Update(ctx, t); err != nil {
		if apperror.IsKind(err, apperror.KindAuthorization) {
			return err
		}
		return apperror.Unexpected(err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"token_id": t.ID,
			"action":   t.Action,
		}).Debug("activation token consumed")
	}

	return nil
}

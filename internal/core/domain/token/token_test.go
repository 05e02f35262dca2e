package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sima-oba/auth-service/internal/core/domain/token"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func TestNew(t *testing.T) {
	userID := uuid.New()
	secret, tok, err := token.New(userID, token.ActionVerifyEmail, token.VerifyEmailTTL)
	require.NoError(t, err)

	require.Len(t, secret, token.SecretLength)
	for _, c := range secret {
		require.True(t, strings.ContainsRune(alphabet, c), "unexpected character %q in secret", c)
	}

	require.Equal(t, token.HashSecret(secret), tok.ID)
	require.Equal(t, userID, tok.UserID)
	require.Equal(t, token.ActionVerifyEmail, tok.Action)
	require.Nil(t, tok.AccessedAt)
	require.WithinDuration(t, tok.CreatedAt.Add(30*time.Minute), tok.ExpireAt, time.Second)
}

func TestNewSecretsAreUnique(t *testing.T) {
	s1, _, err := token.New(uuid.New(), token.ActionVerifyEmail, time.Minute)
	require.NoError(t, err)
	s2, _, err := token.New(uuid.New(), token.ActionVerifyEmail, time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)
}

func TestHashSecretIsStable(t *testing.T) {
	require.Equal(t, token.HashSecret("secret"), token.HashSecret("secret"))
	require.NotEqual(t, token.HashSecret("secret"), token.HashSecret("secret2"))
	// hex-encoded SHA-512
	require.Len(t, token.HashSecret("secret"), 128)
}

func TestIsExpired(t *testing.T) {
	now := time.Now().UTC()
	tok := &token.Token{ExpireAt: now.Add(time.Hour)}
	require.False(t, tok.IsExpired(now))
	require.False(t, tok.IsExpired(now.Add(time.Hour)))
	require.True(t, tok.IsExpired(now.Add(time.Hour+time.Second)))
}

func TestIsConsumed(t *testing.T) {
	tok := &token.Token{}
	require.False(t, tok.IsConsumed())

	now := time.Now().UTC()
	tok.AccessedAt = &now
	require.True(t, tok.IsConsumed())
}

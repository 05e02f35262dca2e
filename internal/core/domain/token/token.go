package token

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Action tags which workflow a token authorizes. A token issued for one
// action can never be redeemed for another.
type Action string

const (
	ActionVerifyEmail       Action = "VERIFY_EMAIL"
	ActionUpdatePassword    Action = "UPDATE_PASSWORD"
	ActionOwnerRegistration Action = "OWNER_REGISTRATION"
	ActionUserRegistration  Action = "USER_REGISTRATION"
)

// TTL policy. UPDATE_PASSWORD appears twice: the short TTL covers
// self-service resets, the long one the seed token issued when an owner
// record is imported and the account has never been activated.
const (
	VerifyEmailTTL       = 30 * time.Minute
	PasswordResetTTL     = 30 * time.Minute
	OwnerRegistrationTTL = time.Hour
	UserRegistrationTTL  = time.Hour
	ImportedPasswordTTL  = 365 * 24 * time.Hour
)

// SecretLength is the number of characters drawn for a token secret.
const SecretLength = 255

// secretAlphabet spans upper/lower-case ASCII letters, digits and
// punctuation (94 symbols).
const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Token is the persisted form of an issued secret. ID is the SHA-512 hex
// digest of the secret; the secret itself is never stored.
type Token struct {
	ID         string     `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Action     Action     `json:"action" db:"action"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpireAt   time.Time  `json:"expire_at" db:"expire_at"`
	AccessedAt *time.Time `json:"accessed_at" db:"access_at"`
}

// New generates a fresh secret and the token record to persist alongside it.
// The secret is returned to the caller exactly once.
func New(userID uuid.UUID, action Action, ttl time.Duration) (string, *Token, error) {
	secret, err := GenerateSecret(SecretLength)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	t := &Token{
		ID:        HashSecret(secret),
		UserID:    userID,
		Action:    action,
		CreatedAt: now,
		ExpireAt:  now.Add(ttl),
	}

	return secret, t, nil
}

// GenerateSecret draws length characters uniformly from the secret alphabet
// using crypto/rand.
func GenerateSecret(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(secretAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}

	return string(buf), nil
}

// HashSecret returns the hex-encoded SHA-512 digest of secret. The digest is
// the token's stable identifier in the store.
func HashSecret(secret string) string {
	sum := sha512.Sum512([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// IsConsumed reports whether the token has already been redeemed.
func (t *Token) IsConsumed() bool {
	return t.AccessedAt != nil
}

// IsExpired reports whether the token's time bound has passed at now.
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpireAt)
}

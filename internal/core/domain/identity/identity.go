package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Required actions are pending onboarding steps attached to an identity.
// They mirror the tags the identity directory understands.
const (
	RequiredVerifyEmail    = "VERIFY_EMAIL"
	RequiredUpdatePassword = "UPDATE_PASSWORD"
)

// Identity groups assigned by the registration flows.
const (
	GroupProducer = "producer"
	GroupPublic   = "public"
)

// Identity is the subset of the directory's user record managed by this
// service. Doc is the external tax/identity number and doubles as the
// username for owner and public accounts.
type Identity struct {
	ID              uuid.UUID `json:"id"`
	Doc             string    `json:"doc"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Enabled         bool      `json:"enabled"`
	EmailVerified   bool      `json:"email_verified"`
	Defaulting      *string   `json:"defaulting"`
	Groups          []string  `json:"groups"`
	RequiredActions []string  `json:"required_actions"`
	// Password is only meaningful on create; the directory hashes it and it
	// is never read back.
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRequiredAction reports whether action is still pending.
func (i *Identity) HasRequiredAction(action string) bool {
	for _, a := range i.RequiredActions {
		if a == action {
			return true
		}
	}
	return false
}

// RemoveRequiredAction clears action from the pending set if present.
func (i *Identity) RemoveRequiredAction(action string) {
	kept := i.RequiredActions[:0]
	for _, a := range i.RequiredActions {
		if a != action {
			kept = append(kept, a)
		}
	}
	i.RequiredActions = kept
}

// PublicRegistration is the already-validated input for public
// self-registration.
type PublicRegistration struct {
	Doc      string `json:"doc"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// SplitFullName splits a full name on the first space into first and last
// name. A single word yields an empty last name.
func SplitFullName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

package email_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sima-oba/auth-service/internal/infrastructure/email"
)

func TestActivationLink(t *testing.T) {
	link := email.ActivationLink("https://app.example.com/activate", "raw-secret")
	require.Equal(t, "https://app.example.com/activate/"+base64.URLEncoding.EncodeToString([]byte("raw-secret")), link)

	// the encoded segment must survive a URL path: urlsafe alphabet only
	encoded := link[len("https://app.example.com/activate/"):]
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Equal(t, "raw-secret", string(decoded))
}

package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotificationPayloadShape(t *testing.T) {
	payload, err := json.Marshal(notification{
		Email: emailMessage{
			TemplateID: templateResetPassword,
			Subject:    subjectResetPassword,
			Recipient:  []string{"jose@farm.example"},
			Content: emailContent{
				FirstName: "José",
				Link:      "https://app.example.com/reset/c2VjcmV0",
			},
		},
	})
	require.NoError(t, err)

	require.JSONEq(t, `{
		"email": {
			"template_id": "RESET_PASSWORD",
			"subject": "[SIMA] - Redefinição de senha",
			"recipient": ["jose@farm.example"],
			"content": {
				"first_name": "José",
				"link": "https://app.example.com/reset/c2VjcmV0"
			}
		}
	}`, string(payload))
}

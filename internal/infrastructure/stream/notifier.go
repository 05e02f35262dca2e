package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/ports"
	"github.com/sima-oba/auth-service/internal/infrastructure/email"
)

const (
	templateEmailVerification = "EMAIL_VERIFICATION"
	templateResetPassword     = "RESET_PASSWORD"

	subjectEmailVerification = "[SIMA] - Verificação de e-mail"
	subjectResetPassword     = "[SIMA] - Redefinição de senha"
)

// notification is the payload published to the notification stream. A
// downstream delivery service renders and sends the actual message.
type notification struct {
	Email emailMessage `json:"email"`
}

type emailMessage struct {
	TemplateID string       `json:"template_id"`
	Subject    string       `json:"subject"`
	Recipient  []string     `json:"recipient"`
	Content    emailContent `json:"content"`
}

type emailContent struct {
	FirstName string `json:"first_name"`
	Link      string `json:"link"`
}

// NotifierConfig holds the stream notifier configuration.
type NotifierConfig struct {
	Stream string
	// Per-action link bases; the urlsafe-base64 secret is appended.
	URLEmailVerification      string
	URLOwnerEmailVerification string
	URLResetPassword          string
}

// Notifier publishes account notifications to a Redis stream instead of
// sending them directly. Used when another service owns message delivery.
type Notifier struct {
	config *NotifierConfig
	client *redis.Client
	logger *logrus.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier that publishes to the notification stream.
func NewNotifier(config *NotifierConfig, client *redis.Client, logger *logrus.Logger) *Notifier {
	return &Notifier{
		config: config,
		client: client,
		logger: logger,
	}
}

func (n *Notifier) publish(ctx context.Context, templateID, subject string, ident *identity.Identity, link string) error {
	payload, err := json.Marshal(notification{
		Email: emailMessage{
			TemplateID: templateID,
			Subject:    subject,
			Recipient:  []string{ident.Email},
			Content: emailContent{
				FirstName: ident.FirstName,
				Link:      link,
			},
		},
	})
	if err != nil {
		return apperror.Unexpected(fmt.Errorf("failed to encode notification: %w", err))
	}

	key := fmt.Sprintf("%s:%d", ident.ID, time.Now().UnixMilli())

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.config.Stream,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return apperror.Unexpected(fmt.Errorf("failed to publish notification: %w", err))
	}

	if n.logger != nil {
		n.logger.WithFields(logrus.Fields{
			"stream":      n.config.Stream,
			"template_id": templateID,
			"to":          ident.Email,
		}).Info("notification published")
	}

	return nil
}

func (n *Notifier) SendOwnerEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error {
	link := email.ActivationLink(n.config.URLOwnerEmailVerification, secret)
	return n.publish(ctx, templateEmailVerification, subjectEmailVerification, ident, link)
}

func (n *Notifier) SendEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error {
	link := email.ActivationLink(n.config.URLEmailVerification, secret)
	return n.publish(ctx, templateEmailVerification, subjectEmailVerification, ident, link)
}

func (n *Notifier) SendResetPassword(ctx context.Context, ident *identity.Identity, secret string) error {
	link := email.ActivationLink(n.config.URLResetPassword, secret)
	return n.publish(ctx, templateResetPassword, subjectResetPassword, ident, link)
}

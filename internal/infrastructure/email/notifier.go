package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

const (
	subjectEmailVerification = "[SIMA] - Verificação de e-mail"
	subjectResetPassword     = "[SIMA] - Redefinição de senha"
)

// Config holds the SendGrid notifier configuration.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Per-action link bases; the urlsafe-base64 secret is appended.
	URLEmailVerification      string
	URLOwnerEmailVerification string
	URLResetPassword          string
}

// Notifier sends account notifications through SendGrid.
type Notifier struct {
	config    *Config
	logger    *logrus.Logger
	client    *sendgrid.Client
	templates map[string]*template.Template
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates a new SendGrid notifier instance
func NewNotifier(config *Config, logger *logrus.Logger) (ports.Notifier, error) {
	client := sendgrid.NewSendClient(config.APIKey)

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &Notifier{
		config:    config,
		logger:    logger,
		client:    client,
		templates: templates,
	}, nil
}

// loadTemplates loads all email templates from the templates directory
func loadTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	templateDir := "templates/email"

	templateFiles := []string{
		"verification.html",
		"owner_verification.html",
		"reset_password.html",
	}

	for _, file := range templateFiles {
		name := file[:len(file)-len(filepath.Ext(file))]

		tmpl, err := template.ParseFiles(filepath.Join(templateDir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}

		templates[name] = tmpl
	}

	return templates, nil
}

// linkData holds data for the notification templates
type linkData struct {
	FirstName string
	Link      string
}

// ActivationLink builds the link carried by a notification: the per-action
// base URL with the urlsafe-base64 secret appended.
func ActivationLink(base, secret string) string {
	return base + "/" + base64.URLEncoding.EncodeToString([]byte(secret))
}

func (n *Notifier) send(ctx context.Context, templateName, subject string, ident *identity.Identity, link string) error {
	tmpl, exists := n.templates[templateName]
	if !exists {
		return apperror.Unexpected(fmt.Errorf("template %s not found", templateName))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, linkData{FirstName: ident.FirstName, Link: link}); err != nil {
		return apperror.Unexpected(fmt.Errorf("failed to execute template %s: %w", templateName, err))
	}

	from := mail.NewEmail(n.config.FromName, n.config.FromEmail)
	recipient := mail.NewEmail("", ident.Email)
	message := mail.NewSingleEmail(from, subject, recipient, "", buf.String())

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		if n.logger != nil {
			n.logger.WithFields(logrus.Fields{
				"to":      ident.Email,
				"subject": subject,
			}).WithError(err).Error("failed to send email")
		}
		return apperror.Unexpected(fmt.Errorf("failed to send email: %w", err))
	}

	if n.logger != nil {
		n.logger.WithFields(logrus.Fields{
			"to":          ident.Email,
			"subject":     subject,
			"status_code": response.StatusCode,
		}).Info("email sent")
	}

	return nil
}

func (n *Notifier) SendOwnerEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error {
	link := ActivationLink(n.config.URLOwnerEmailVerification, secret)
	return n.send(ctx, "owner_verification", subjectEmailVerification, ident, link)
}

func (n *Notifier) SendEmailVerification(ctx context.Context, ident *identity.Identity, secret string) error {
	link := ActivationLink(n.config.URLEmailVerification, secret)
	return n.send(ctx, "verification", subjectEmailVerification, ident, link)
}

func (n *Notifier) SendResetPassword(ctx context.Context, ident *identity.Identity, secret string) error {
	link := ActivationLink(n.config.URLResetPassword, secret)
	return n.send(ctx, "reset_password", subjectResetPassword, ident, link)
}

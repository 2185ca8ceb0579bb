// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Email represents an email message
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// EmailService delivers transactional mail (verification codes, order mail)
type EmailService struct {
	config *config.Config
	logger *logrus.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	return &EmailService{
		config: cfg,
		logger: logger,
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Email.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "log":
		// Development provider: log instead of delivering
		s.logger.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
		}).Info("Email delivery skipped (log provider)")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

// SendVerificationOTP sends the email verification code to a new user
func (s *EmailService) SendVerificationOTP(ctx context.Context, userEmail, userName, otp string) error {
	email := &Email{
		To:      []string{userEmail},
		Subject: fmt.Sprintf("%s - verify your email", s.config.Email.FromName),
		Body: fmt.Sprintf("Hi %s,\r\n\r\nYour verification code is %s. It expires in %s.\r\n",
			userName, otp, s.config.Security.OTPExpiry),
	}
	return s.SendEmail(ctx, email)
}

func (s *EmailService) sendSMTPEmail(email *Email) error {
	if s.config.Email.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUser, s.config.Email.SMTPPass, s.config.Email.SMTPHost)

	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(email.Body)

	serverAddr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(serverAddr, auth, s.config.Email.FromEmail, email.To, msg.Bytes())
}

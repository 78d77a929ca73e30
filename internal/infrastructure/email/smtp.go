package email

import (
	"context"
	"fmt"
	"html"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"bookstore-api/internal/config"
	"bookstore-api/internal/logger"
)

// SMTPSender delivers account emails through an SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	subject := "Your password reset token (valid for 10 min)"
	text := fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and "+
		"passwordConfirm to: %s.\nIf you didn't forget your password, please ignore this email!", resetURL)
	htmlBody := renderResetHTML(resetURL)

	return s.send(ctx, to, subject, text, htmlBody)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if timeout := s.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, textBody)
	m.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	c, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client init failed: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		logger.FromContext(ctx).Error("SMTP send failed",
			zap.String("event", "email_send_failed"),
			zap.String("host", s.cfg.Host),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("smtp send failed: %w", err)
	}

	logger.FromContext(ctx).Info("Email sent",
		zap.String("event", "email_sent"),
		zap.String("subject", subject),
	)
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func renderResetHTML(link string) string {
	escLink := html.EscapeString(link)

	return `<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <h2>Reset your password</h2>
    <p>Submit a PATCH request with your new password and passwordConfirm to the link below. It is valid for 10 minutes.</p>
    <p><a href="` + escLink + `">` + escLink + `</a></p>
    <p style="color:#555; font-size:12px;">If you didn't forget your password, please ignore this email!</p>
  </body>
</html>`
}

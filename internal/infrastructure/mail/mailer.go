package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrNoRecipients is returned when a message has no recipient
var ErrNoRecipients = errors.New("mail: message has no recipients")

// Message is an outgoing email with a plain-text body and an optional
// HTML alternative
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// dialer is the part of gomail.Dialer the SMTP mailer uses
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	from   string
	dialer dialer
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTP mailer from the email config
func NewSMTPMailer(cfg config.EmailConfig, logger *zap.Logger) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	// port 465 is implicit TLS; 587 upgrades with STARTTLS
	d.SSL = cfg.Port == 465
	return &SMTPMailer{from: cfg.From, dialer: d, logger: logger}
}

// Send builds and delivers the message. The SMTP exchange is not
// cancellable; ctx is checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send mail %q: %w", msg.Subject, err)
	}
	m.logger.Info("mail sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func buildMessage(from string, msg Message) (*gomail.Message, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	return gm, nil
}

// LogMailer records messages in the log instead of sending them.
// It is used when email delivery is disabled.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a logging mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and succeeds
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m.logger.Info("mail delivery disabled, message logged",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("text_bytes", len(msg.Text)),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

// New returns the SMTP mailer when email is enabled, otherwise the log mailer
func New(cfg config.EmailConfig, logger *zap.Logger) Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg, logger)
	}
	return NewLogMailer(logger)
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)

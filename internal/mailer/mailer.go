// Package mailer submits the forecast email over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/kjstillabower/weather-emailer/internal/observability"
)

// ErrSend wraps any failure to build or deliver a message.
var ErrSend = errors.New("send email")

const runIDHeader mail.Header = "X-Run-ID"

// Message is one email. HTML is optional.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
	RunID   string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP submission settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	AuthType string // plain, login or cram-md5
	Timeout  time.Duration

	// TLSConfig overrides the default verification settings. Nil verifies
	// the server certificate against Host.
	TLSConfig *tls.Config
}

type SMTPMailer struct {
	client *mail.Client
}

// NewSMTPMailer builds a client that requires STARTTLS, or implicit TLS on port 465.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", ErrSend)
	}
	auth, err := parseAuthType(cfg.AuthType)
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(auth),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.TLSConfig != nil {
		opts = append(opts, mail.WithTLSConfig(cfg.TLSConfig))
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create SMTP client: %v", ErrSend, err)
	}
	return &SMTPMailer{client: client}, nil
}

// Send opens one connection, authenticates and delivers msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	built, err := buildMessage(msg)
	if err != nil {
		observability.EmailsSentTotal.WithLabelValues("failed").Inc()
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, built); err != nil {
		observability.EmailsSentTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	observability.EmailsSentTotal.WithLabelValues("sent").Inc()
	return nil
}

// DryRunMailer writes the full RFC 5322 message to W instead of sending it.
type DryRunMailer struct {
	W io.Writer
}

func (d *DryRunMailer) Send(_ context.Context, msg Message) error {
	built, err := buildMessage(msg)
	if err != nil {
		return err
	}
	if _, err := built.WriteTo(d.W); err != nil {
		return fmt.Errorf("%w: write dry run: %v", ErrSend, err)
	}
	observability.EmailsSentTotal.WithLabelValues("dry_run").Inc()
	return nil
}

func buildMessage(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrSend)
	}

	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("%w: from %q: %v", ErrSend, msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("%w: to %v: %v", ErrSend, msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	if msg.RunID != "" {
		m.SetGenHeader(runIDHeader, msg.RunID)
	}
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func parseAuthType(s string) (mail.SMTPAuthType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return mail.SMTPAuthPlain, nil
	case "login":
		return mail.SMTPAuthLogin, nil
	case "cram-md5":
		return mail.SMTPAuthCramMD5, nil
	default:
		return "", fmt.Errorf("%w: unsupported SMTP auth type %q", ErrSend, s)
	}
}

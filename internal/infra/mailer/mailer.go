package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"certgen/internal/config"
	"certgen/internal/domain"
)

//go:embed templates
var templatesFS embed.FS

const pdfContentType gomail.ContentType = "application/pdf"

// Message is one certificate delivery.
type Message struct {
	To             string
	RecipientName  string
	AttachmentName string
	Attachment     []byte
}

// Sender delivers a certificate by email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an authenticated SMTP server.
type SMTPSender struct {
	cfg  config.MailConfig
	body *template.Template
}

func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	body, err := template.ParseFS(templatesFS, "templates/certificate.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse mail template: %w", err)
	}
	return &SMTPSender{cfg: cfg, body: body}, nil
}

// Send builds the message and delivers it. The whole exchange is bounded by
// the configured mail timeout.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := s.newClient()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMailTransport, err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMailTransport, err)
	}
	return nil
}

func (s *SMTPSender) newClient() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
	}
	if s.cfg.SSL {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts,
			gomail.WithTimeout(s.cfg.Timeout),
			gomail.WithDialContextFunc(s.dialWithDeadline),
		)
	}
	return gomail.NewClient(s.cfg.Host, opts...)
}

// dialWithDeadline opens the SMTP connection and puts a deadline on it, so
// the greeting, STARTTLS, AUTH and DATA exchanges are bounded too, not just
// the dial. A custom dialer replaces go-mail's own, so implicit TLS is
// handled here.
func (s *SMTPSender) dialWithDeadline(ctx context.Context, network, address string) (net.Conn, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.cfg.Timeout)
	}

	netDialer := &net.Dialer{Deadline: deadline}
	var (
		conn net.Conn
		err  error
	)
	if s.cfg.SSL {
		tlsDialer := &tls.Dialer{
			NetDialer: netDialer,
			Config:    &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12},
		}
		conn, err = tlsDialer.DialContext(ctx, network, address)
	} else {
		conn, err = netDialer.DialContext(ctx, network, address)
	}
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (s *SMTPSender) buildMessage(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("%w: sender address: %v", domain.ErrMailTransport, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: recipient address: %v", domain.ErrInvalidField, err)
	}
	m.Subject(s.cfg.Subject)

	data := struct{ Name string }{Name: msg.RecipientName}
	if err := m.SetBodyHTMLTemplate(s.body, data); err != nil {
		return nil, fmt.Errorf("%w: body: %v", domain.ErrMailTransport, err)
	}
	if err := m.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment),
		gomail.WithFileContentType(pdfContentType)); err != nil {
		return nil, fmt.Errorf("%w: attachment: %v", domain.ErrMailTransport, err)
	}
	return m, nil
}

package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"ecotrack/internal/domain/service"
	"ecotrack/pkg/logger"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer renders HTML templates and delivers them over SMTP.
type SMTPMailer struct {
	addr      string
	auth      smtp.Auth
	from      string
	templates map[service.MailTemplate]*template.Template
	send      sendFunc
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr:      net.JoinHostPort(host, fmt.Sprint(port)),
		auth:      auth,
		from:      from,
		templates: parseTemplates(),
		send:      smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, mail service.Mail) error {
	body, err := render(m.templates, mail)
	if err != nil {
		return err
	}
	msg := buildMessage(m.from, mail.To, mail.Subject, body)

	done := make(chan error, 1)
	go func() {
		done <- m.send(m.addr, m.auth, m.from, []string{mail.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", mail.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func render(templates map[service.MailTemplate]*template.Template, mail service.Mail) (string, error) {
	t, ok := templates[mail.Template]
	if !ok {
		return "", fmt.Errorf("unknown mail template %q", mail.Template)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", mail.Data); err != nil {
		return "", fmt.Errorf("render %s: %w", mail.Template, err)
	}
	return buf.String(), nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// LogMailer renders mail and writes it to the log. Used when SMTP is not
// configured.
type LogMailer struct {
	templates map[service.MailTemplate]*template.Template
}

func NewLogMailer() *LogMailer {
	return &LogMailer{templates: parseTemplates()}
}

func (m *LogMailer) Send(ctx context.Context, mail service.Mail) error {
	if _, err := render(m.templates, mail); err != nil {
		return err
	}
	logger.WithComponent("mailer").WithFields(logger.Fields{
		"to":       mail.To,
		"template": mail.Template,
	}).Info("SMTP not configured, mail not sent: " + mail.Subject)
	return nil
}

package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"text/template"
)

// Config holds SMTP settings.
type Config struct {
	Enable bool
	Host   string
	Port   int
	User   string
	Pass   string
	From   string
}

// Message is a single email to send.
type Message struct {
	To      []string
	Subject string
	Text    string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender renders notification templates and delivers them over SMTP.
type Sender struct {
	cfg     Config
	product string
	send    sendFunc
}

// New returns a sender. product is the service title used in subjects and bodies.
func New(cfg Config, product string) *Sender {
	return &Sender{cfg: cfg, product: product, send: smtp.SendMail}
}

// Send dispatches an email. A disabled sender silently drops it.
func (s *Sender) Send(msg Message) error {
	if !s.cfg.Enable {
		return nil
	}
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, port)

	from := s.from()

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	body.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	body.WriteString("\r\n")
	body.WriteString(msg.Text)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	return s.send(addr, auth, from, msg.To, body.Bytes())
}

func (s *Sender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

// Notify renders the named template for one recipient and sends it.
func (s *Sender) Notify(ctx context.Context, to string, name string, data map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tpl, ok := templates[name]
	if !ok {
		return fmt.Errorf("unknown mail template %q", name)
	}

	vars := map[string]string{"Product": s.product}
	for k, v := range data {
		vars[k] = v
	}

	subject, err := render(tpl.subject, vars)
	if err != nil {
		return fmt.Errorf("render subject: %w", err)
	}
	text, err := render(tpl.body, vars)
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	return s.Send(Message{To: []string{to}, Subject: subject, Text: text})
}

func render(tpl string, data map[string]string) (string, error) {
	t, err := template.New("").Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

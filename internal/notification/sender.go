package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"sort"
	"strings"
)

// Message is a template-addressed outbound notification. Template names
// are stable identifiers for the external sender; rendering mechanics are
// out of scope here.
type Message struct {
	Template  string
	Recipient string
	Subject   string
	Data      map[string]any
}

// Sender delivers a message. Implementations are external collaborators;
// delivery is best-effort by contract.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type smtpSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("MIME-version: 1.0;\nContent-Type: text/plain; charset=\"UTF-8\";\n\n")
	fmt.Fprintf(&b, "[%s]\n", msg.Template)

	keys := make([]string, 0, len(msg.Data))
	for k := range msg.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, msg.Data[k])
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.Recipient}, []byte(b.String())); err != nil {
		return fmt.Errorf("notification: failed to send mail to %s: %w", msg.Recipient, err)
	}
	return nil
}

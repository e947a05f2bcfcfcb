// Package mailer delivers access codes to registered players. Sending
// is best-effort: failures are logged and never surfaced to the
// registration caller.
package mailer

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"
)

type Recipient struct {
	Email string
	Code  string
}

type Mailer interface {
	// Notify emails each recipient their personal access code.
	Notify(recipients []Recipient, teamName string)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewSMTP(host string, port int, user, pass, from string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		logger: logger,
	}
}

func (m *SMTPMailer) Notify(recipients []Recipient, teamName string) {
	for _, r := range recipients {
		if !strings.Contains(r.Email, "@") {
			continue
		}

		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", r.Email)
		msg.SetHeader("Subject", fmt.Sprintf("ACCESS CODE: %s", teamName))
		msg.SetBody("text/html", codeBody(teamName, r.Code))

		if err := m.dialer.DialAndSend(msg); err != nil {
			m.logger.Error("sending access code failed", "email", r.Email, "error", err)
			continue
		}
		m.logger.Info("access code sent", "email", r.Email)
	}
}

func codeBody(teamName, code string) string {
	return fmt.Sprintf(`<div style="font-family:monospace">
<h2>Mission Briefing</h2>
<p>Your squad <strong>%s</strong> has been registered for the operation.</p>
<p>Your unique access code:</p>
<p style="font-size:32px;letter-spacing:5px"><strong>%s</strong></p>
<p>Do not share this code with other squad members.</p>
</div>`, teamName, code)
}

// Nop is used when no SMTP host is configured.
type Nop struct{}

func (Nop) Notify([]Recipient, string) {}

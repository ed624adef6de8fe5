// SPDX-License-Identifier: MIT
package email

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/steelhall/steelhall/internal/models"
)

// Sender delivers one plain-text message.
type Sender interface {
	SendEmail(to, subject, body string) error
}

// Config holds SMTP settings, loaded from the smtp.* config keys.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type EmailService struct {
	cfg Config
}

func NewEmailService(cfg Config) (*EmailService, error) {
	if cfg.Host == "" || cfg.Port == "" || cfg.From == "" {
		return nil, fmt.Errorf("missing SMTP configuration")
	}
	return &EmailService{cfg: cfg}, nil
}

func (es *EmailService) SendEmail(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", es.cfg.Host, es.cfg.Port)
	tlsconfig := &tls.Config{ServerName: es.cfg.Host}

	var client *smtp.Client
	var err error

	if es.cfg.Port == "465" {
		// Implicit TLS
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("failed to dial SMTP: %w", err)
		}
		defer conn.Close()

		client, err = smtp.NewClient(conn, es.cfg.Host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
	} else {
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to dial SMTP: %w", err)
		}
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(tlsconfig); err != nil {
				client.Close()
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}
	defer client.Close()

	if es.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", es.cfg.Username, es.cfg.Password, es.cfg.Host)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(es.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if _, err := w.Write(buildMessage(es.cfg.From, to, subject, body, time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	// Some servers answer QUIT with a non-standard reply after accepting the message
	if err := client.Quit(); err != nil {
		slog.Debug("SMTP QUIT returned non-standard response", "error", err)
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}

func buildMessage(from, to, subject, body string, date time.Time) []byte {
	// Header injection guard
	subject = strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// LeadNotification renders the mail sent to sales for a contact form submission.
func LeadNotification(company string, c models.Contact) (subject, body string) {
	subject = fmt.Sprintf("New lead from %s", c.Name)
	if c.Company != "" {
		subject += " (" + c.Company + ")"
	}

	body = fmt.Sprintf(`A new enquiry arrived through the %s website.

Name:    %s
Email:   %s
Phone:   %s
Company: %s

%s

The lead has been added to the contacts list in the admin.`,
		company, c.Name, c.Email, orDash(c.Phone), orDash(c.Company), c.Message)
	return subject, body
}

// SendLeadNotification mails sales about a new lead.
func SendLeadNotification(s Sender, to, company string, c models.Contact) error {
	subject, body := LeadNotification(company, c)
	return s.SendEmail(to, subject, body)
}

// SendNewUserWelcome tells a new admin where to log in.
func SendNewUserWelcome(s Sender, to, loginURL string) error {
	body := fmt.Sprintf(`Hello,

An admin account for the Steelhall back office has been created for you.

Log in here:
%s

Ask the person who created the account for your initial password.`, loginURL)
	return s.SendEmail(to, "Your Steelhall admin account", body)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

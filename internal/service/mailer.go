// Package service holds the outbound side effects of the CRM: the new-lead
// mail with its RabbitMQ hand-off, and task reminders.
package service

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/config"
	"github.com/iliyamo/septic-crm/internal/model"
)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends notification mail over SMTP.  When no SMTP host is
// configured it writes the would-be message to the log instead, so a
// development setup works without a mail server.
type Mailer struct {
	SMTP    config.SMTPConfig
	Company config.CompanyConfig
	CRMURL  string
	Log     *zap.Logger

	send sendFunc
	now  func() time.Time
}

func NewMailer(cfg config.Config, log *zap.Logger) *Mailer {
	return &Mailer{SMTP: cfg.SMTP, Company: cfg.Company, CRMURL: cfg.CRMURL, Log: log,
		send: smtp.SendMail, now: time.Now}
}

// NotifyNewLead tells the office that a lead arrived through the website.
func (m *Mailer) NotifyNewLead(ctx context.Context, lead model.Lead) error {
	subject := "New Lead: " + lead.Name
	return m.deliver(ctx, m.Company.Email, subject, NewLeadText(lead, m.CRMURL))
}

// NewLeadText is the plain-text body of the new-lead mail.  Empty contact
// fields are left out.
func NewLeadText(lead model.Lead, crmURL string) string {
	lines := []string{
		"A new lead has been submitted via the website.",
		"",
		"Name: " + lead.Name,
	}
	if lead.Email != nil && *lead.Email != "" {
		lines = append(lines, "Email: "+*lead.Email)
	}
	if lead.Phone != nil && *lead.Phone != "" {
		lines = append(lines, "Phone: "+*lead.Phone)
	}
	lines = append(lines, "", fmt.Sprintf("View in CRM: %s/leads/%s", strings.TrimRight(crmURL, "/"), lead.ID))
	return strings.Join(lines, "\n")
}

// NotifyTaskDue reminds the assignee at to that activity a is coming due.
func (m *Mailer) NotifyTaskDue(ctx context.Context, to string, a model.Activity) error {
	return m.deliver(ctx, to, "Task Reminder: "+a.Title, TaskReminderText(a, m.CRMURL))
}

// TaskReminderText is the plain-text body of a task reminder.
func TaskReminderText(a model.Activity, crmURL string) string {
	due := "not set"
	if a.DueDate != nil {
		due = a.DueDate.UTC().Format("Mon Jan 2 2006 15:04 MST")
	}
	lines := []string{
		"You have a task due soon.",
		"",
		"Task: " + a.Title,
		"Due: " + due,
	}
	if a.Lead != nil {
		lines = append(lines, "Lead: "+a.Lead.Name)
	}
	lines = append(lines, "", "View in CRM: "+strings.TrimRight(crmURL, "/")+"/activities")
	return strings.Join(lines, "\n")
}

// from is SMTP_FROM, or "Company" <noreply@company-domain>.
func (m *Mailer) from() string {
	if m.SMTP.From != "" {
		return m.SMTP.From
	}
	domain := "localhost"
	if _, d, ok := strings.Cut(m.Company.Email, "@"); ok && d != "" {
		domain = d
	}
	return fmt.Sprintf("%q <noreply@%s>", m.Company.Name, domain)
}

func (m *Mailer) deliver(ctx context.Context, to, subject, body string) error {
	if m.SMTP.Host == "" {
		m.Log.Info("email not sent: SMTP not configured",
			zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.SMTP.User != "" {
		auth = smtp.PlainAuth("", m.SMTP.User, m.SMTP.Pass, m.SMTP.Host)
	}
	from := m.from()
	msg := buildMessage(from, to, subject, body, m.now())
	addr := net.JoinHostPort(m.SMTP.Host, m.SMTP.Port)

	// smtp.SendMail takes no context; abandon the wait when ctx ends.
	done := make(chan error, 1)
	go func() { done <- m.send(addr, auth, envelopeAddr(from), []string{to}, msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		m.Log.Info("email sent", zap.String("to", to), zap.String("subject", subject))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// envelopeAddr extracts the bare address from `"Name" <addr>`.
func envelopeAddr(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

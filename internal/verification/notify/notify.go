// Package notify delivers manual review notifications by email.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmlTemplate "html/template"
	"log/slog"
	"strings"
	textTemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"

	"surebet/internal/verification/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const defaultTimeout = 10 * time.Second

var templateFuncs = map[string]any{
	"join": strings.Join,
}

// MailClient is the subset of *mail.Client used here.
type MailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Config addresses the outgoing mail.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	ReviewInbox string
}

// Mailer implements the review notifier over SMTP.
type Mailer struct {
	client      MailClient
	from        string
	reviewInbox string
}

// NewMailer dials nothing until the first message is sent.
func NewMailer(cfg Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithTimeout(defaultTimeout),
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return NewMailerWithClient(client, cfg.From, cfg.ReviewInbox), nil
}

func NewMailerWithClient(client MailClient, from, reviewInbox string) *Mailer {
	return &Mailer{client: client, from: from, reviewInbox: reviewInbox}
}

type reviewRequestedData struct {
	AttemptID   string
	ApplicantID string
	Country     string
	EvaluatedAt string
	Reasons     []string
	Signals     []string
}

// ReviewRequested tells the compliance inbox an attempt awaits review. The
// mail carries the user-safe reasons and machine signals only.
func (m *Mailer) ReviewRequested(ctx context.Context, a *models.Attempt) error {
	if m.reviewInbox == "" {
		return nil
	}
	signals := make([]string, len(a.Decision.Signals))
	for i, s := range a.Decision.Signals {
		signals[i] = string(s)
	}
	return m.send(ctx, m.reviewInbox, "review_requested.tmpl", reviewRequestedData{
		AttemptID:   a.ID.String(),
		ApplicantID: a.ApplicantID.String(),
		Country:     a.Claim.Country,
		EvaluatedAt: a.EvaluatedAt.UTC().Format(time.RFC1123),
		Reasons:     a.Decision.Reasons,
		Signals:     signals,
	})
}

type reviewResolvedData struct {
	FirstName string
	Approved  bool
}

// ReviewResolved tells the applicant the outcome of their review.
func (m *Mailer) ReviewResolved(ctx context.Context, a *models.Attempt) error {
	if a.Resolution == nil || a.Email == "" {
		return nil
	}
	return m.send(ctx, a.Email, "review_resolved.tmpl", reviewResolvedData{
		FirstName: firstName(a.Claim.FullName),
		Approved:  a.Resolution.Outcome == models.ResolutionApproved,
	})
}

func (m *Mailer) send(ctx context.Context, recipient, pattern string, data any) error {
	msg := mail.NewMsg()
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}

	path := "templates/" + pattern
	ts, err := textTemplate.New("").Funcs(templateFuncs).ParseFS(templateFS, path)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	subject := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(subject, "subject", data); err != nil {
		return fmt.Errorf("render subject: %w", err)
	}
	msg.Subject(subject.String())

	plainBody := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	msg.SetBodyString(mail.TypeTextPlain, plainBody.String())

	if ts.Lookup("htmlBody") != nil {
		hts, err := htmlTemplate.New("").Funcs(templateFuncs).ParseFS(templateFS, path)
		if err != nil {
			return fmt.Errorf("parse html template: %w", err)
		}
		htmlBody := new(bytes.Buffer)
		if err := hts.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
			return fmt.Errorf("render html body: %w", err)
		}
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody.String())
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return "there"
}

// LogNotifier records notifications in the log when no SMTP server is
// configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) ReviewRequested(ctx context.Context, a *models.Attempt) error {
	n.Logger.InfoContext(ctx, "attempt awaiting review",
		"attempt_id", a.ID,
		"signals", a.Decision.Signals,
	)
	return nil
}

func (n LogNotifier) ReviewResolved(ctx context.Context, a *models.Attempt) error {
	outcome := ""
	if a.Resolution != nil {
		outcome = string(a.Resolution.Outcome)
	}
	n.Logger.InfoContext(ctx, "review resolved",
		"attempt_id", a.ID,
		"outcome", outcome,
	)
	return nil
}

// Package verification runs KYC attempts: it collects evidence from the
// providers, asks the policy engine for a decision, records the attempt and
// drives the manual review workflow.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
	"surebet/internal/verification/metrics"
	"surebet/internal/verification/models"
	"surebet/internal/verification/ports"
	dErrors "surebet/pkg/domain-errors"
	"surebet/pkg/platform/audit"
	"surebet/pkg/platform/sentinel"
	"surebet/pkg/requestcontext"
)

const (
	MaxFaceScans = 5

	notifyTimeout      = 30 * time.Second
	defaultReviewLimit = 100
)

var tracer = otel.Tracer("surebet/verification")

// Service orchestrates verification attempts and their review.
type Service struct {
	store     Store
	extractor ports.IDExtractor
	faces     ports.FaceComparer
	ages      ports.AgeEstimator

	logger          *slog.Logger
	auditPublisher  ports.AuditPort
	notifier        ports.Notifier
	metrics         *metrics.Metrics
	evidenceTimeout time.Duration

	notifications sync.WaitGroup
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPort) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDExtractor enables reading the ID document back. Without it the
// engine skips the name and date of birth comparison.
func WithIDExtractor(e ports.IDExtractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

// WithEvidenceTimeout bounds the whole evidence gathering phase.
func WithEvidenceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.evidenceTimeout = d
		}
	}
}

// New constructs a Service. The face and age providers are mandatory.
func New(store Store, faces ports.FaceComparer, ages ports.AgeEstimator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("attempt store is required")
	}
	if faces == nil {
		return nil, errors.New("face comparer is required")
	}
	if ages == nil {
		return nil, errors.New("age estimator is required")
	}
	s := &Service{
		store:           store,
		faces:           faces,
		ages:            ages,
		logger:          slog.Default(),
		evidenceTimeout: defaultEvidenceTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify runs one attempt to completion. A provider failure yields the
// system error decision; cancellation of ctx abandons the attempt and
// nothing is recorded.
func (s *Service) Verify(ctx context.Context, sub models.Submission) (*models.Attempt, error) {
	ctx, span := tracer.Start(ctx, "verification.Verify")
	defer span.End()
	start := time.Now()

	if err := validateImages(sub); err != nil {
		return nil, err
	}

	bundle, err := s.gatherEvidence(ctx, sub)
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.InfoContext(ctx, "verification abandoned",
			"request_id", requestcontext.RequestID(ctx),
			"applicant_id", sub.ApplicantID,
		)
		return nil, ctxErr
	}

	var d decision.Decision
	if err != nil {
		d = s.systemError(ctx, sub, err)
	} else {
		d = decision.Evaluate(sub.Claim, bundle)
	}

	attempt := &models.Attempt{
		ID:          uuid.New(),
		ApplicantID: sub.ApplicantID,
		Email:       sub.Email,
		Claim:       sub.Claim,
		Decision:    d,
		EvaluatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, attempt); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification attempt")
	}

	signals := signalNames(d.Signals)
	span.SetAttributes(
		attribute.String("kyc.status", string(d.Status)),
		attribute.StringSlice("kyc.signals", signals),
	)
	s.metrics.IncrementOutcome(string(d.Status), signals)
	s.metrics.ObserveVerifyLatency(time.Since(start))

	s.logAudit(ctx, audit.Event{
		Action:        string(audit.EventKYCDecisionMade),
		Subject:       sub.ApplicantID.String(),
		Decision:      string(d.Status),
		Reason:        strings.Join(signals, ","),
		SubjectIDHash: identityHash(sub.Claim),
		Country:       sub.Claim.Country,
	})
	s.logger.InfoContext(ctx, "verification decided",
		"request_id", requestcontext.RequestID(ctx),
		"attempt_id", attempt.ID,
		"status", d.Status,
		"signals", signals,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if d.Status == decision.StatusReview {
		s.notify(ctx, attempt, ports.Notifier.ReviewRequested)
	}
	return attempt, nil
}

func (s *Service) systemError(ctx context.Context, sub models.Submission, err error) decision.Decision {
	kind := "unknown"
	var ee *evidenceError
	if errors.As(err, &ee) {
		kind = string(ee.kind)
	}
	category := providers.GetCategory(err)
	s.metrics.IncrementProviderError(kind, string(category))
	s.logger.WarnContext(ctx, "evidence provider failed",
		"request_id", requestcontext.RequestID(ctx),
		"applicant_id", sub.ApplicantID,
		"kind", kind,
		"category", category,
		"retryable", providers.IsRetryable(err),
		"error", err,
	)
	return decision.SystemError()
}

// Get returns one attempt.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Attempt, error) {
	attempt, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "attempt not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attempt")
	}
	return attempt, nil
}

// PendingReviews lists unresolved review attempts, oldest first.
func (s *Service) PendingReviews(ctx context.Context, limit int) ([]*models.Attempt, error) {
	if limit <= 0 || limit > defaultReviewLimit {
		limit = defaultReviewLimit
	}
	attempts, err := s.store.ListPendingReviews(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending reviews")
	}
	return attempts, nil
}

// ResolveRequest is a reviewer verdict on a review attempt.
type ResolveRequest struct {
	Outcome  models.ResolutionOutcome
	Reviewer string
	Note     string
}

// Resolve settles a review attempt. The original decision is kept as issued.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, req ResolveRequest) (*models.Attempt, error) {
	if !req.Outcome.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "outcome must be approved or rejected")
	}
	req.Reviewer = strings.TrimSpace(req.Reviewer)
	if req.Reviewer == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reviewer is required")
	}

	attempt, err := s.store.Resolve(ctx, id, models.Resolution{
		Outcome:    req.Outcome,
		Reviewer:   req.Reviewer,
		Note:       strings.TrimSpace(req.Note),
		ResolvedAt: requestcontext.Now(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "attempt not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeInvalidState, "attempt is not awaiting review")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve attempt")
	}

	s.metrics.IncrementResolution(string(req.Outcome))
	s.logAudit(ctx, audit.Event{
		Action:        string(audit.EventKYCReviewResolved),
		Subject:       attempt.ApplicantID.String(),
		Decision:      string(req.Outcome),
		ActorID:       req.Reviewer,
		SubjectIDHash: identityHash(attempt.Claim),
	})
	s.notify(ctx, attempt, ports.Notifier.ReviewResolved)
	return attempt, nil
}

// Stats counts attempts per status.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load stats")
	}
	return stats, nil
}

// Close waits for in-flight notifications.
func (s *Service) Close() {
	s.notifications.Wait()
}

// notify sends a notification off the request path. Failures are logged
// and never change the attempt.
func (s *Service) notify(ctx context.Context, attempt *models.Attempt, send func(ports.Notifier, context.Context, *models.Attempt) error) {
	if s.notifier == nil {
		return
	}
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := send(s.notifier, ctx, attempt); err != nil {
			s.logger.WarnContext(ctx, "review notification failed",
				"attempt_id", attempt.ID,
				"error", err,
			)
		}
	}()
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func validateImages(sub models.Submission) error {
	if sub.IDImage.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "id document image is required")
	}
	if len(sub.FaceScans) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one face scan is required")
	}
	if len(sub.FaceScans) > MaxFaceScans {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d face scans are allowed", MaxFaceScans))
	}
	for _, img := range sub.FaceScans {
		if img.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "face scan image is empty")
		}
	}
	return nil
}

func identityHash(c decision.IdentityClaim) string {
	return audit.HashSubject(c.FullName, c.DateOfBirth.Format(decision.DateLayout), c.Country)
}

func signalNames(signals []decision.Signal) []string {
	out := make([]string, len(signals))
	for i, sig := range signals {
		out[i] = string(sig)
	}
	return out
}

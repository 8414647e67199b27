package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"surebet/internal/evidence/providers"
	"surebet/internal/verification/models"
	dErrors "surebet/pkg/domain-errors"
	"surebet/pkg/platform/audit"
	"surebet/pkg/platform/sentinel"
	"surebet/pkg/requestcontext"
)

const (
	DefaultMinimumAge = 18
	MaxFaceScans      = 5
)

// Verifier runs the verification once the applicant acknowledges.
type Verifier interface {
	Verify(ctx context.Context, sub models.Submission) (*models.Attempt, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Wizard enforces the step order of a draft and hands the completed draft to
// the verifier.
type Wizard struct {
	drafts         *DraftStore
	verifier       Verifier
	logger         *slog.Logger
	auditPublisher AuditPublisher
	minimumAge     int
}

type Option func(*Wizard)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(w *Wizard) {
		w.auditPublisher = p
	}
}

func WithMinimumAge(age int) Option {
	return func(w *Wizard) {
		if age >= DefaultMinimumAge {
			w.minimumAge = age
		}
	}
}

func New(drafts *DraftStore, verifier Verifier, opts ...Option) (*Wizard, error) {
	if drafts == nil {
		return nil, errors.New("draft store is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	w := &Wizard{
		drafts:     drafts,
		verifier:   verifier,
		logger:     slog.Default(),
		minimumAge: DefaultMinimumAge,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// MinimumAge is the youngest accepted applicant age.
func (w *Wizard) MinimumAge() int {
	return w.minimumAge
}

// Start opens a new draft at the personal information step.
func (w *Wizard) Start(ctx context.Context) *Draft {
	now := requestcontext.Now(ctx)
	d := &Draft{
		ID:          uuid.New(),
		ApplicantID: uuid.New(),
		Step:        StepPersonalInfo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.drafts.Create(d)
	return d.clone()
}

func (w *Wizard) Get(_ context.Context, id uuid.UUID) (*Draft, error) {
	d, err := w.drafts.Get(id)
	if err != nil {
		return nil, draftError(err)
	}
	return d, nil
}

func (w *Wizard) SubmitPersonalInfo(ctx context.Context, id uuid.UUID, info PersonalInfo) (*Draft, error) {
	now := requestcontext.Now(ctx)
	claim, err := ParsePersonalInfo(info, now, w.minimumAge)
	if err != nil {
		return nil, err
	}
	info.Normalize()
	return w.advance(ctx, id, StepPersonalInfo, StepIDUpload, func(d *Draft) {
		d.PersonalInfo = &info
		d.Claim = claim
	})
}

func (w *Wizard) SubmitIDDocument(ctx context.Context, id uuid.UUID, img providers.Image) (*Draft, error) {
	if img.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "id document image is required")
	}
	return w.advance(ctx, id, StepIDUpload, StepFaceScan, func(d *Draft) {
		d.IDImage = img
	})
}

func (w *Wizard) SubmitFaceScans(ctx context.Context, id uuid.UUID, scans []providers.Image) (*Draft, error) {
	if len(scans) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one face scan is required")
	}
	if len(scans) > MaxFaceScans {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d face scans are allowed", MaxFaceScans))
	}
	for _, img := range scans {
		if img.IsZero() {
			return nil, dErrors.New(dErrors.CodeValidation, "face scan image is empty")
		}
	}
	return w.advance(ctx, id, StepFaceScan, StepAcknowledgment, func(d *Draft) {
		d.FaceScans = append([]providers.Image(nil), scans...)
	})
}

// Back returns the draft to the previous step. Data already entered is kept
// so the applicant can resubmit it.
func (w *Wizard) Back(ctx context.Context, id uuid.UUID) (*Draft, error) {
	d, err := w.drafts.Update(id, func(d *Draft) error {
		prev, ok := previous[d.Step]
		if !ok {
			return dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("cannot go back from %s", d.Step))
		}
		d.Step = prev
		d.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
	if err != nil {
		return nil, draftError(err)
	}
	return d, nil
}

// Acknowledge accepts the terms and runs the verification. The draft and its
// images are discarded before the providers are called.
func (w *Wizard) Acknowledge(ctx context.Context, id uuid.UUID) (*models.Attempt, error) {
	d, err := w.drafts.Take(id, func(d *Draft) error {
		return expectStep(d, StepAcknowledgment)
	})
	if err != nil {
		return nil, draftError(err)
	}
	d.Step = StepProcessing

	attempt, err := w.verifier.Verify(ctx, models.Submission{
		ApplicantID: d.ApplicantID,
		Email:       d.PersonalInfo.Email,
		Phone:       d.PersonalInfo.Phone,
		Claim:       d.Claim,
		IDImage:     d.IDImage,
		FaceScans:   d.FaceScans,
	})
	if err != nil {
		if ctx.Err() != nil {
			w.abandoned(ctx, d, "cancelled")
		}
		return nil, err
	}
	return attempt, nil
}

// Decline discards the draft without verifying.
func (w *Wizard) Decline(ctx context.Context, id uuid.UUID) error {
	d, err := w.drafts.Take(id, nil)
	if err != nil {
		return draftError(err)
	}
	w.abandoned(ctx, d, "declined")
	return nil
}

func (w *Wizard) advance(ctx context.Context, id uuid.UUID, at, next Step, apply func(*Draft)) (*Draft, error) {
	d, err := w.drafts.Update(id, func(d *Draft) error {
		if err := expectStep(d, at); err != nil {
			return err
		}
		apply(d)
		d.Step = next
		d.UpdatedAt = requestcontext.Now(ctx)
		return nil
	})
	if err != nil {
		return nil, draftError(err)
	}
	return d, nil
}

func (w *Wizard) abandoned(ctx context.Context, d *Draft, reason string) {
	w.logger.InfoContext(ctx, "kyc draft abandoned",
		"request_id", requestcontext.RequestID(ctx),
		"draft_id", d.ID,
		"step", d.Step,
		"reason", reason,
	)
	if w.auditPublisher == nil {
		return
	}
	err := w.auditPublisher.Emit(context.WithoutCancel(ctx), audit.Event{
		Action:   string(audit.EventKYCDraftAbandoned),
		Subject:  d.ApplicantID.String(),
		Decision: string(d.Step),
		Reason:   reason,
		IP:       requestcontext.ClientIP(ctx),
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
	}
}

func expectStep(d *Draft, want Step) error {
	if d.Step != want {
		return dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("draft is at step %s, expected %s", d.Step, want))
	}
	return nil
}

func draftError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "draft not found or expired")
	}
	return err
}

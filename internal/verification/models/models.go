// Package models holds the verification attempt records shared by the
// service, its stores and its HTTP handler.
package models

import (
	"time"

	"github.com/google/uuid"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
)

// Submission is everything the wizard collected for one attempt.
type Submission struct {
	ApplicantID uuid.UUID
	Email       string
	Phone       string
	Claim       decision.IdentityClaim
	IDImage     providers.Image
	FaceScans   []providers.Image
}

// Attempt is one persisted verification run. Decision is never modified
// after the attempt is saved; manual review outcomes live in Resolution.
type Attempt struct {
	ID          uuid.UUID
	ApplicantID uuid.UUID
	Email       string
	Claim       decision.IdentityClaim
	Decision    decision.Decision
	EvaluatedAt time.Time
	Resolution  *Resolution
}

// AwaitingReview reports whether the attempt still needs a reviewer.
func (a *Attempt) AwaitingReview() bool {
	return a.Decision.Status == decision.StatusReview && a.Resolution == nil
}

// ResolutionOutcome is the verdict of a human reviewer.
type ResolutionOutcome string

const (
	ResolutionApproved ResolutionOutcome = "approved"
	ResolutionRejected ResolutionOutcome = "rejected"
)

func (o ResolutionOutcome) Valid() bool {
	return o == ResolutionApproved || o == ResolutionRejected
}

// Resolution records how a review attempt was settled.
type Resolution struct {
	Outcome    ResolutionOutcome
	Reviewer   string
	Note       string
	ResolvedAt time.Time
}

// Stats counts attempts per decision status.
type Stats struct {
	Total          int
	ByStatus       map[decision.Status]int
	PendingReviews int
	SystemErrors   int
}

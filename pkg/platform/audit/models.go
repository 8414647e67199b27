package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// verification decisions and their manual resolution.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring, such as
	// geo denials and session revocation.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the stable identifier the event is about (applicant or
	// session subject). Never raw PII.
	Subject string
	Action  string
	// Decision is the outcome of the action, e.g. a verification status.
	Decision string
	// Reason carries machine codes only, never user-facing text.
	Reason    string
	RequestID string
	// ActorID tracks who performed the action when different from Subject,
	// e.g. the reviewer resolving an attempt.
	ActorID string
	// SubjectIDHash is a SHA-256 hash of the applicant's declared identity,
	// kept for traceability without storing the name or DOB.
	SubjectIDHash string
	IP            string
	Country       string
}

type AuditEvent string

const (
	// Verification events
	EventKYCDecisionMade   AuditEvent = "kyc_decision_made"
	EventKYCReviewResolved AuditEvent = "kyc_review_resolved"
	EventKYCDraftAbandoned AuditEvent = "kyc_draft_abandoned"

	// Session events
	EventSessionCreated AuditEvent = "session_created"
	EventSessionRevoked AuditEvent = "session_revoked"

	// Access gate events
	EventAccessDenied AuditEvent = "access_denied"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventKYCDecisionMade:   CategoryCompliance,
	EventKYCReviewResolved: CategoryCompliance,

	EventSessionRevoked: CategorySecurity,
	EventAccessDenied:   CategorySecurity,

	EventSessionCreated:    CategoryOperations,
	EventKYCDraftAbandoned: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can be queried back.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// HashSubject derives a stable, non-reversible identifier from identity
// parts. Parts are case folded and trimmed before hashing.
func HashSubject(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
	}
	return hex.EncodeToString(h.Sum(nil))
}

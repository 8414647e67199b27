package decision

import (
	"fmt"
	"time"
)

// Status is the outcome of one verification attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusReview  Status = "review"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusReview:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a status string as stored or sent over the wire.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown decision status %q", v)
	}
	return s, nil
}

// Signal is a machine-readable code for one finding of the policy engine.
// Signals are kept for audit and metrics; they are never shown to users.
type Signal string

const (
	SignalNameMismatch Signal = "name_mismatch"
	SignalDOBMismatch  Signal = "dob_mismatch"
	SignalFaceReview   Signal = "face_review"
	SignalAgeReview    Signal = "age_review"
	SignalFaceMismatch Signal = "face_mismatch"
	SignalSystemError  Signal = "system_error"
)

// Blocking reports whether the signal forces failure on its own.
func (s Signal) Blocking() bool {
	return s == SignalFaceMismatch || s == SignalSystemError
}

// IdentityClaim is what the applicant declared in the first wizard step.
type IdentityClaim struct {
	FullName    string
	DateOfBirth time.Time // calendar date, UTC midnight
	Address     string
	Country     string // ISO 3166-1 alpha-2, optionally with "-<subdivision>"
}

// ExtractedIdentity is what OCR read off the ID document. DateOfBirth is the
// raw string as printed; the engine parses it.
type ExtractedIdentity struct {
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	Gender      string `json:"gender"`
}

// FacialMatch is the face-to-ID comparison verdict.
type FacialMatch struct {
	MatchConfidence float64 `json:"matchConfidence"`
	IsMatch         bool    `json:"isMatch"`
	ReviewRequired  bool    `json:"reviewRequired"`
}

// AgeEstimate is the age-from-face verdict against the declared DOB.
type AgeEstimate struct {
	EstimatedAge   int  `json:"estimatedAge"`
	AgeMatchesID   bool `json:"ageMatchesId"`
	ReviewRequired bool `json:"reviewRequired"`
}

// EvidenceBundle aggregates the provider verdicts of one attempt.
// ExtractedIdentity is nil when OCR is not part of the attempt. FacialMatch and
// AgeEstimate are mandatory: a nil value is treated as missing evidence.
type EvidenceBundle struct {
	ExtractedIdentity *ExtractedIdentity
	FacialMatch       *FacialMatch
	AgeEstimate       *AgeEstimate
}

// Decision is the terminal output of Evaluate.
type Decision struct {
	Status  Status
	Reasons []string
	Signals []Signal
}

// HasSignal reports whether the decision was driven by sig.
func (d Decision) HasSignal(sig Signal) bool {
	for _, s := range d.Signals {
		if s == sig {
			return true
		}
	}
	return false
}

// IsSystemError reports whether the decision is the fail-closed outcome of
// missing or failed evidence rather than a policy verdict.
func (d Decision) IsSystemError() bool {
	return d.HasSignal(SignalSystemError)
}

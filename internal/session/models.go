package session

import (
	"time"

	"github.com/google/uuid"
)

// Subject is who a session is issued to: a verified applicant.
type Subject struct {
	ID    string
	Email string
}

// Session is the server-side record behind a session cookie. A token is only
// honoured while its record exists.
type Session struct {
	ID        uuid.UUID `json:"id"`
	SubjectID string    `json:"subject_id"`
	Email     string    `json:"email"`
	Device    string    `json:"device,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Issued pairs a new session with its signed token.
type Issued struct {
	Token   string
	Session *Session
}

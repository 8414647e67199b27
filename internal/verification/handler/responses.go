package handler

import (
	"time"

	"surebet/internal/decision"
	"surebet/internal/verification/models"
	"surebet/internal/verification/wizard"
)

// AttemptResponse is what the applicant sees. Reasons are rendered verbatim.
type AttemptResponse struct {
	AttemptID   string              `json:"attempt_id"`
	Status      string              `json:"status"`
	Reasons     []string            `json:"reasons"`
	RedirectTo  string              `json:"redirect_to,omitempty"`
	EvaluatedAt time.Time           `json:"evaluated_at"`
	Resolution  *ResolutionResponse `json:"resolution,omitempty"`
}

type ResolutionResponse struct {
	Outcome    string    `json:"outcome"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func toAttemptResponse(a *models.Attempt) *AttemptResponse {
	resp := &AttemptResponse{
		AttemptID:   a.ID.String(),
		Status:      string(a.Decision.Status),
		Reasons:     append([]string{}, a.Decision.Reasons...),
		EvaluatedAt: a.EvaluatedAt,
	}
	if a.Resolution != nil {
		resp.Resolution = &ResolutionResponse{
			Outcome:    string(a.Resolution.Outcome),
			ResolvedAt: a.Resolution.ResolvedAt,
		}
	}
	return resp
}

// ReviewResponse is the admin view of an attempt, including machine signals.
type ReviewResponse struct {
	AttemptID   string    `json:"attempt_id"`
	ApplicantID string    `json:"applicant_id"`
	Country     string    `json:"country"`
	Status      string    `json:"status"`
	Reasons     []string  `json:"reasons"`
	Signals     []string  `json:"signals"`
	EvaluatedAt time.Time `json:"evaluated_at"`

	Resolution *AdminResolutionResponse `json:"resolution,omitempty"`
}

type AdminResolutionResponse struct {
	Outcome    string    `json:"outcome"`
	Reviewer   string    `json:"reviewer"`
	Note       string    `json:"note,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func toReviewResponse(a *models.Attempt) ReviewResponse {
	signals := make([]string, len(a.Decision.Signals))
	for i, s := range a.Decision.Signals {
		signals[i] = string(s)
	}
	resp := ReviewResponse{
		AttemptID:   a.ID.String(),
		ApplicantID: a.ApplicantID.String(),
		Country:     a.Claim.Country,
		Status:      string(a.Decision.Status),
		Reasons:     append([]string{}, a.Decision.Reasons...),
		Signals:     signals,
		EvaluatedAt: a.EvaluatedAt,
	}
	if r := a.Resolution; r != nil {
		resp.Resolution = &AdminResolutionResponse{
			Outcome:    string(r.Outcome),
			Reviewer:   r.Reviewer,
			Note:       r.Note,
			ResolvedAt: r.ResolvedAt,
		}
	}
	return resp
}

type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
	Count   int              `json:"count"`
}

type StatsResponse struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	PendingReviews int            `json:"pending_reviews"`
	SystemErrors   int            `json:"system_errors"`
}

func toStatsResponse(s models.Stats) StatsResponse {
	byStatus := map[string]int{
		string(decision.StatusSuccess): 0,
		string(decision.StatusFailure): 0,
		string(decision.StatusReview):  0,
	}
	for status, n := range s.ByStatus {
		byStatus[string(status)] = n
	}
	return StatsResponse{
		Total:          s.Total,
		ByStatus:       byStatus,
		PendingReviews: s.PendingReviews,
		SystemErrors:   s.SystemErrors,
	}
}

// DraftResponse describes where a wizard draft stands. Images are never
// echoed back.
type DraftResponse struct {
	DraftID   string    `json:"draft_id"`
	Step      string    `json:"step"`
	Completed []string  `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDraftResponse(d *wizard.Draft) DraftResponse {
	completed := []string{}
	for _, s := range d.Completed() {
		completed = append(completed, string(s))
	}
	return DraftResponse{
		DraftID:   d.ID.String(),
		Step:      string(d.Step),
		Completed: completed,
		UpdatedAt: d.UpdatedAt,
	}
}

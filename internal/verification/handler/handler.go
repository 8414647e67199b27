package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
	"surebet/internal/verification"
	"surebet/internal/verification/models"
	"surebet/internal/verification/wizard"
	dErrors "surebet/pkg/domain-errors"
	"surebet/pkg/platform/httputil"
	"surebet/pkg/requestcontext"
)

// DashboardPath is where a verified applicant lands.
const DashboardPath = "/dashboard"

// Service defines the verification operations the handler needs.
type Service interface {
	Verify(ctx context.Context, sub models.Submission) (*models.Attempt, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Attempt, error)
	PendingReviews(ctx context.Context, limit int) ([]*models.Attempt, error)
	Resolve(ctx context.Context, id uuid.UUID, req verification.ResolveRequest) (*models.Attempt, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// Wizard defines the draft operations the handler needs.
type Wizard interface {
	Start(ctx context.Context) *wizard.Draft
	Get(ctx context.Context, id uuid.UUID) (*wizard.Draft, error)
	SubmitPersonalInfo(ctx context.Context, id uuid.UUID, info wizard.PersonalInfo) (*wizard.Draft, error)
	SubmitIDDocument(ctx context.Context, id uuid.UUID, img providers.Image) (*wizard.Draft, error)
	SubmitFaceScans(ctx context.Context, id uuid.UUID, scans []providers.Image) (*wizard.Draft, error)
	Back(ctx context.Context, id uuid.UUID) (*wizard.Draft, error)
	Acknowledge(ctx context.Context, id uuid.UUID) (*models.Attempt, error)
	Decline(ctx context.Context, id uuid.UUID) error
	MinimumAge() int
}

// SessionIssuer signs the applicant in after a successful verification.
type SessionIssuer interface {
	Issue(w http.ResponseWriter, r *http.Request, subjectID, email string) error
}

// Handler wires the KYC endpoints to the verification service and wizard.
type Handler struct {
	service  Service
	wizard   Wizard
	sessions SessionIssuer
	logger   *slog.Logger

	// submitLimits wrap the endpoints that start an evidence run.
	submitLimits []func(http.Handler) http.Handler
}

func New(service Service, wizard Wizard, sessions SessionIssuer, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		wizard:   wizard,
		sessions: sessions,
		logger:   logger,
	}
}

// LimitSubmissions installs middleware (rate limiting) in front of the
// endpoints that call the evidence providers.
func (h *Handler) LimitSubmissions(mw ...func(http.Handler) http.Handler) {
	h.submitLimits = append(h.submitLimits, mw...)
}

// Register mounts the applicant-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.With(h.submitLimits...).Post("/api/kyc/verify", h.HandleVerify)
	r.Get("/api/kyc/attempts/{id}", h.HandleGetAttempt)

	r.Route("/api/kyc/drafts", func(r chi.Router) {
		r.Post("/", h.HandleStartDraft)
		r.Get("/{id}", h.HandleGetDraft)
		r.Delete("/{id}", h.HandleDeclineDraft)
		r.Put("/{id}/personal-info", h.HandlePersonalInfo)
		r.Put("/{id}/id-document", h.HandleIDDocument)
		r.Put("/{id}/face-scans", h.HandleFaceScans)
		r.Post("/{id}/back", h.HandleBack)
		r.With(h.submitLimits...).Post("/{id}/acknowledge", h.HandleAcknowledge)
	})
}

// RegisterAdmin mounts the review endpoints. Callers guard r with the admin
// token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/api/admin/kyc/reviews", h.HandleListReviews)
	r.Post("/api/admin/kyc/attempts/{id}/resolve", h.HandleResolve)
	r.Get("/api/admin/kyc/stats", h.HandleStats)
}

// HandleVerify handles POST /api/kyc/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepareWithLimit[VerifyRequest](w, r, h.logger, ctx, requestID, MaxImagePayloadBytes)
	if !ok {
		return
	}
	claim, err := wizard.ParsePersonalInfo(req.PersonalInfo, requestcontext.Now(ctx), h.wizard.MinimumAge())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.PersonalInfo.Normalize()

	attempt, err := h.service.Verify(ctx, models.Submission{
		ApplicantID: uuid.New(),
		Email:       req.PersonalInfo.Email,
		Phone:       req.PersonalInfo.Phone,
		Claim:       claim,
		IDImage:     req.IDImage(),
		FaceScans:   req.FaceImages(),
	})
	if err != nil {
		h.writeVerifyError(w, r, err)
		return
	}
	h.writeAttempt(w, r, attempt)
}

// HandleGetAttempt handles GET /api/kyc/attempts/{id}.
func (h *Handler) HandleGetAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "attempt")
	if !ok {
		return
	}
	attempt, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAttemptResponse(attempt))
}

// HandleStartDraft handles POST /api/kyc/drafts.
func (h *Handler) HandleStartDraft(w http.ResponseWriter, r *http.Request) {
	d := h.wizard.Start(r.Context())
	httputil.WriteJSON(w, http.StatusCreated, toDraftResponse(d))
}

// HandleGetDraft handles GET /api/kyc/drafts/{id}.
func (h *Handler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "draft")
	if !ok {
		return
	}
	d, err := h.wizard.Get(r.Context(), id)
	h.writeDraft(w, d, err)
}

// HandleDeclineDraft handles DELETE /api/kyc/drafts/{id}.
func (h *Handler) HandleDeclineDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "draft")
	if !ok {
		return
	}
	if err := h.wizard.Decline(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePersonalInfo handles PUT /api/kyc/drafts/{id}/personal-info.
func (h *Handler) HandlePersonalInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r, "draft")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PersonalInfoRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	d, err := h.wizard.SubmitPersonalInfo(ctx, id, req.PersonalInfo)
	h.writeDraft(w, d, err)
}

// HandleIDDocument handles PUT /api/kyc/drafts/{id}/id-document.
func (h *Handler) HandleIDDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r, "draft")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepareWithLimit[IDDocumentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx), MaxImagePayloadBytes)
	if !ok {
		return
	}
	d, err := h.wizard.SubmitIDDocument(ctx, id, req.parsed)
	h.writeDraft(w, d, err)
}

// HandleFaceScans handles PUT /api/kyc/drafts/{id}/face-scans.
func (h *Handler) HandleFaceScans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r, "draft")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepareWithLimit[FaceScansRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx), MaxImagePayloadBytes)
	if !ok {
		return
	}
	d, err := h.wizard.SubmitFaceScans(ctx, id, req.parsed)
	h.writeDraft(w, d, err)
}

// HandleBack handles POST /api/kyc/drafts/{id}/back.
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "draft")
	if !ok {
		return
	}
	d, err := h.wizard.Back(r.Context(), id)
	h.writeDraft(w, d, err)
}

// HandleAcknowledge handles POST /api/kyc/drafts/{id}/acknowledge.
func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "draft")
	if !ok {
		return
	}
	attempt, err := h.wizard.Acknowledge(r.Context(), id)
	if err != nil {
		h.writeVerifyError(w, r, err)
		return
	}
	h.writeAttempt(w, r, attempt)
}

// HandleListReviews handles GET /api/admin/kyc/reviews.
func (h *Handler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	attempts, err := h.service.PendingReviews(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ReviewListResponse{Reviews: make([]ReviewResponse, 0, len(attempts))}
	for _, a := range attempts {
		resp.Reviews = append(resp.Reviews, toReviewResponse(a))
	}
	resp.Count = len(resp.Reviews)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleResolve handles POST /api/admin/kyc/attempts/{id}/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, ok := h.pathID(w, r, "attempt")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	attempt, err := h.service.Resolve(ctx, id, verification.ResolveRequest{
		Outcome:  models.ResolutionOutcome(req.Outcome),
		Reviewer: req.Reviewer,
		Note:     req.Note,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "kyc review resolved",
		"request_id", requestID,
		"attempt_id", attempt.ID,
		"outcome", req.Outcome,
	)
	httputil.WriteJSON(w, http.StatusOK, toReviewResponse(attempt))
}

// HandleStats handles GET /api/admin/kyc/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatsResponse(stats))
}

// writeAttempt renders a fresh decision. Only a success signs the applicant
// in; review and failure never create a session.
func (h *Handler) writeAttempt(w http.ResponseWriter, r *http.Request, attempt *models.Attempt) {
	resp := toAttemptResponse(attempt)
	if attempt.Decision.Status == decision.StatusSuccess && h.sessions != nil {
		if err := h.sessions.Issue(w, r, attempt.ApplicantID.String(), attempt.Email); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to establish session after verification",
				"request_id", requestcontext.RequestID(r.Context()),
				"attempt_id", attempt.ID,
				"error", err,
			)
		} else {
			resp.RedirectTo = DashboardPath
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if ctx.Err() != nil {
		// The client is gone; nothing was recorded.
		return
	}
	h.logger.ErrorContext(ctx, "verification failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) writeDraft(w http.ResponseWriter, d *wizard.Draft, err error) {
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(d))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+what+" id"))
		return uuid.Nil, false
	}
	return id, true
}

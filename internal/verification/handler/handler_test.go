package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler.go -package=mocks Service,Wizard,SessionIssuer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"surebet/internal/decision"
	"surebet/internal/verification"
	"surebet/internal/verification/handler/mocks"
	"surebet/internal/verification/models"
	"surebet/internal/verification/wizard"
	dErrors "surebet/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	service  *mocks.MockService
	wizard   *mocks.MockWizard
	sessions *mocks.MockSessionIssuer
	router   chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.wizard = mocks.NewMockWizard(s.ctrl)
	s.sessions = mocks.NewMockSessionIssuer(s.ctrl)

	h := New(s.service, s.wizard, s.sessions, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterAdmin(s.router)
}

var pngURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

func validInfo() wizard.PersonalInfo {
	return wizard.PersonalInfo{
		FullName:    "Jane Doe",
		DateOfBirth: "1990-04-12",
		Address:     "1 Main Street, Springfield",
		Email:       "jane@example.com",
		Country:     "GB",
	}
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](s *HandlerSuite, rec *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func attemptWith(d decision.Decision) *models.Attempt {
	return &models.Attempt{
		ID:          uuid.New(),
		ApplicantID: uuid.New(),
		Email:       "jane@example.com",
		Claim:       decision.IdentityClaim{FullName: "Jane Doe", Country: "GB"},
		Decision:    d,
		EvaluatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestVerify() {
	req := VerifyRequest{PersonalInfo: validInfo(), IDDocument: pngURI, FaceScans: []string{pngURI, pngURI}}

	s.Run("success signs the applicant in and redirects", func() {
		attempt := attemptWith(decision.Decision{Status: decision.StatusSuccess, Reasons: []string{}})
		s.wizard.EXPECT().MinimumAge().Return(18)
		s.service.EXPECT().Verify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, sub models.Submission) (*models.Attempt, error) {
				s.Equal("Jane Doe", sub.Claim.FullName)
				s.Equal("jane@example.com", sub.Email)
				s.Len(sub.FaceScans, 2)
				s.NotEqual(uuid.Nil, sub.ApplicantID)
				return attempt, nil
			})
		s.sessions.EXPECT().Issue(gomock.Any(), gomock.Any(), attempt.ApplicantID.String(), "jane@example.com").Return(nil)

		rec := s.do(http.MethodPost, "/api/kyc/verify", req)
		s.Equal(http.StatusOK, rec.Code)
		resp := decodeBody[AttemptResponse](s, rec)
		s.Equal("success", resp.Status)
		s.Equal(DashboardPath, resp.RedirectTo)
		s.NotNil(resp.Reasons)
		s.Empty(resp.Reasons)
	})

	s.Run("review never creates a session", func() {
		attempt := attemptWith(decision.Decision{
			Status:  decision.StatusReview,
			Reasons: []string{decision.Reason(decision.SignalNameMismatch)},
		})
		s.wizard.EXPECT().MinimumAge().Return(18)
		s.service.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(attempt, nil)

		rec := s.do(http.MethodPost, "/api/kyc/verify", req)
		s.Equal(http.StatusOK, rec.Code)
		resp := decodeBody[AttemptResponse](s, rec)
		s.Equal("review", resp.Status)
		s.Empty(resp.RedirectTo)
		s.Equal(attempt.Decision.Reasons, resp.Reasons)
	})

	s.Run("session failure still returns the decision", func() {
		attempt := attemptWith(decision.Decision{Status: decision.StatusSuccess, Reasons: []string{}})
		s.wizard.EXPECT().MinimumAge().Return(18)
		s.service.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(attempt, nil)
		s.sessions.EXPECT().Issue(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		rec := s.do(http.MethodPost, "/api/kyc/verify", req)
		s.Equal(http.StatusOK, rec.Code)
		resp := decodeBody[AttemptResponse](s, rec)
		s.Equal("success", resp.Status)
		s.Empty(resp.RedirectTo)
	})

	s.Run("underage applicant is rejected before verification", func() {
		young := req
		young.PersonalInfo.DateOfBirth = time.Now().AddDate(-16, 0, 0).Format("2006-01-02")
		s.wizard.EXPECT().MinimumAge().Return(18)

		rec := s.do(http.MethodPost, "/api/kyc/verify", young)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "at least 18")
	})

	s.Run("missing face scans", func() {
		bad := req
		bad.FaceScans = nil
		rec := s.do(http.MethodPost, "/api/kyc/verify", bad)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "face scan")
	})

	s.Run("unsupported image type", func() {
		bad := req
		bad.IDDocument = "data:image/gif;base64,R0lGOD"
		rec := s.do(http.MethodPost, "/api/kyc/verify", bad)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "JPEG, PNG or WebP")
	})

	s.Run("unknown fields are rejected", func() {
		rec := s.do(http.MethodPost, "/api/kyc/verify", map[string]any{"surprise": true})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("internal errors do not leak", func() {
		s.wizard.EXPECT().MinimumAge().Return(18)
		s.service.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to save attempt"))

		rec := s.do(http.MethodPost, "/api/kyc/verify", req)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "connection refused")
	})
}

func (s *HandlerSuite) TestGetAttempt() {
	s.Run("found", func() {
		attempt := attemptWith(decision.Decision{Status: decision.StatusFailure, Reasons: []string{"Face does not match the ID photo."}})
		s.service.EXPECT().Get(gomock.Any(), attempt.ID).Return(attempt, nil)

		rec := s.do(http.MethodGet, "/api/kyc/attempts/"+attempt.ID.String(), nil)
		s.Equal(http.StatusOK, rec.Code)
		resp := decodeBody[AttemptResponse](s, rec)
		s.Equal(attempt.ID.String(), resp.AttemptID)
		s.Equal("failure", resp.Status)
	})

	s.Run("bad id", func() {
		rec := s.do(http.MethodGet, "/api/kyc/attempts/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("not found", func() {
		s.service.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeNotFound, "attempt not found"))
		rec := s.do(http.MethodGet, "/api/kyc/attempts/"+uuid.NewString(), nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestDraftFlow() {
	id := uuid.New()
	draft := &wizard.Draft{ID: id, Step: wizard.StepPersonalInfo, UpdatedAt: time.Now()}

	s.Run("start", func() {
		s.wizard.EXPECT().Start(gomock.Any()).Return(draft)
		rec := s.do(http.MethodPost, "/api/kyc/drafts", nil)
		s.Equal(http.StatusCreated, rec.Code)
		resp := decodeBody[DraftResponse](s, rec)
		s.Equal(id.String(), resp.DraftID)
		s.Equal(string(wizard.StepPersonalInfo), resp.Step)
		s.NotNil(resp.Completed)
	})

	s.Run("personal info", func() {
		next := &wizard.Draft{ID: id, Step: wizard.StepIDUpload}
		s.wizard.EXPECT().SubmitPersonalInfo(gomock.Any(), id, validInfo()).Return(next, nil)
		rec := s.do(http.MethodPut, "/api/kyc/drafts/"+id.String()+"/personal-info", validInfo())
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(string(wizard.StepIDUpload), decodeBody[DraftResponse](s, rec).Step)
	})

	s.Run("id document", func() {
		next := &wizard.Draft{ID: id, Step: wizard.StepFaceScan}
		s.wizard.EXPECT().SubmitIDDocument(gomock.Any(), id, gomock.Any()).Return(next, nil)
		rec := s.do(http.MethodPut, "/api/kyc/drafts/"+id.String()+"/id-document", IDDocumentRequest{Image: pngURI})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("face scans out of order", func() {
		s.wizard.EXPECT().SubmitFaceScans(gomock.Any(), id, gomock.Len(1)).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "draft is at step personal_info"))
		rec := s.do(http.MethodPut, "/api/kyc/drafts/"+id.String()+"/face-scans", FaceScansRequest{Images: []string{pngURI}})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("back", func() {
		s.wizard.EXPECT().Back(gomock.Any(), id).Return(draft, nil)
		rec := s.do(http.MethodPost, "/api/kyc/drafts/"+id.String()+"/back", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("expired draft", func() {
		s.wizard.EXPECT().Get(gomock.Any(), id).Return(nil, dErrors.New(dErrors.CodeNotFound, "draft not found or expired"))
		rec := s.do(http.MethodGet, "/api/kyc/drafts/"+id.String(), nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("acknowledge success", func() {
		attempt := attemptWith(decision.Decision{Status: decision.StatusSuccess, Reasons: []string{}})
		s.wizard.EXPECT().Acknowledge(gomock.Any(), id).Return(attempt, nil)
		s.sessions.EXPECT().Issue(gomock.Any(), gomock.Any(), attempt.ApplicantID.String(), attempt.Email).Return(nil)

		rec := s.do(http.MethodPost, "/api/kyc/drafts/"+id.String()+"/acknowledge", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(DashboardPath, decodeBody[AttemptResponse](s, rec).RedirectTo)
	})

	s.Run("decline", func() {
		s.wizard.EXPECT().Decline(gomock.Any(), id).Return(nil)
		rec := s.do(http.MethodDelete, "/api/kyc/drafts/"+id.String(), nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})
}

func (s *HandlerSuite) TestAdmin() {
	s.Run("list reviews", func() {
		a := attemptWith(decision.Decision{
			Status:  decision.StatusReview,
			Reasons: []string{decision.Reason(decision.SignalAgeReview)},
			Signals: []decision.Signal{decision.SignalAgeReview},
		})
		s.service.EXPECT().PendingReviews(gomock.Any(), 10).Return([]*models.Attempt{a}, nil)

		rec := s.do(http.MethodGet, "/api/admin/kyc/reviews?limit=10", nil)
		s.Equal(http.StatusOK, rec.Code)
		resp := decodeBody[ReviewListResponse](s, rec)
		s.Equal(1, resp.Count)
		s.Equal([]string{string(decision.SignalAgeReview)}, resp.Reviews[0].Signals)
		s.Equal("GB", resp.Reviews[0].Country)
	})

	s.Run("bad limit", func() {
		rec := s.do(http.MethodGet, "/api/admin/kyc/reviews?limit=-3", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("resolve", func() {
		a := attemptWith(decision.Decision{Status: decision.StatusReview, Reasons: []string{"x"}})
		a.Resolution = &models.Resolution{Outcome: models.ResolutionApproved, Reviewer: "ops@surebet", ResolvedAt: time.Now()}
		s.service.EXPECT().Resolve(gomock.Any(), a.ID, verification.ResolveRequest{
			Outcome:  models.ResolutionApproved,
			Reviewer: "ops@surebet",
			Note:     "passport re-checked",
		}).Return(a, nil)

		rec := s.do(http.MethodPost, "/api/admin/kyc/attempts/"+a.ID.String()+"/resolve",
			ResolveRequest{Outcome: " Approved ", Reviewer: "ops@surebet", Note: "passport re-checked"})
		s.Equal(http.StatusOK, rec.Code)
		resp := decodeBody[ReviewResponse](s, rec)
		s.Require().NotNil(resp.Resolution)
		s.Equal("approved", resp.Resolution.Outcome)
	})

	s.Run("resolve rejects unknown outcome", func() {
		rec := s.do(http.MethodPost, "/api/admin/kyc/attempts/"+uuid.NewString()+"/resolve",
			ResolveRequest{Outcome: "maybe", Reviewer: "ops"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("resolve twice conflicts", func() {
		s.service.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "attempt is not awaiting review"))
		rec := s.do(http.MethodPost, "/api/admin/kyc/attempts/"+uuid.NewString()+"/resolve",
			ResolveRequest{Outcome: "rejected", Reviewer: "ops", Note: strings.Repeat("n", 20)})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("stats", func() {
		s.service.EXPECT().Stats(gomock.Any()).Return(models.Stats{
			Total:    3,
			ByStatus: map[decision.Status]int{decision.StatusReview: 2, decision.StatusFailure: 1},
		}, nil)
		rec := s.do(http.MethodGet, "/api/admin/kyc/stats", nil)
		s.Equal(http.StatusOK, rec.Code)
		resp := decodeBody[StatsResponse](s, rec)
		s.Equal(3, resp.Total)
		s.Equal(0, resp.ByStatus["success"])
		s.Equal(2, resp.ByStatus["review"])
	})
}

func (s *HandlerSuite) TestSubmissionLimitsWrapOnlyEvidenceRuns() {
	h := New(s.service, s.wizard, s.sessions, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.LimitSubmissions(func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	})
	s.router = chi.NewRouter()
	h.Register(s.router)

	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, "/api/kyc/verify", nil).Code)
	id := uuid.New()
	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, "/api/kyc/drafts/"+id.String()+"/acknowledge", nil).Code)

	s.wizard.EXPECT().Start(gomock.Any()).Return(&wizard.Draft{ID: id, Step: wizard.StepPersonalInfo})
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/kyc/drafts", nil).Code)
}

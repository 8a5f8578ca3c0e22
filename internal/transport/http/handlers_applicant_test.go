package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ppdb/internal/applicant/models"
	"ppdb/internal/transport/http/mocks"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	"ppdb/pkg/requestcontext"
	"ppdb/pkg/testutil"
)

//go:generate mockgen -source=handlers_applicant.go -destination=mocks/applicant-mocks.go -package=mocks ApplicantService
type ApplicantHandlerSuite struct {
	suite.Suite
	applicantID id.ApplicantID
	actor       requestcontext.ActorInfo
}

func TestApplicantHandlerSuite(t *testing.T) {
	suite.Run(t, new(ApplicantHandlerSuite))
}

func (s *ApplicantHandlerSuite) SetupSuite() {
	s.applicantID = id.NewApplicantID()
	s.actor = requestcontext.ActorInfo{
		IdentityID:  id.NewIdentityID(),
		ApplicantID: s.applicantID,
		Username:    "3175064509081234",
		Role:        id.RolePeserta,
	}
}

func (s *ApplicantHandlerSuite) TestHandler_GetAggregate() {
	s.T().Run("returns the full aggregate - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().GetAggregate(gomock.Any(), s.applicantID).Return(&models.Aggregate{
			Profile: &models.Profile{
				ApplicantID:      s.applicantID,
				RegistrationCode: "REG-2026-G1-000007",
				Status:           models.StatusDraft,
			},
			Scores:    &models.Scores{ApplicantID: s.applicantID},
			Documents: &models.Documents{ApplicantID: s.applicantID},
		}, nil)

		status, body := s.do(t, router, http.MethodGet, "/applicants/me", "", s.actor)

		assert.Equal(t, http.StatusOK, status)
		profile, ok := body["profile"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "REG-2026-G1-000007", profile["registration_code"])
	})

	s.T().Run("token without applicant - 401", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().GetAggregate(gomock.Any(), gomock.Any()).Times(0)
		broken := requestcontext.ActorInfo{IdentityID: id.NewIdentityID(), Username: "panitia", Role: id.RolePeserta}
		req := httptest.NewRequest(http.MethodGet, "/applicants/me", nil)
		req = req.WithContext(requestcontext.WithActor(context.Background(), broken))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	s.T().Run("aggregate missing - 404", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().GetAggregate(gomock.Any(), s.applicantID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "applicant not found"))

		status, body := s.do(t, router, http.MethodGet, "/applicants/me", "", s.actor)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, string(dErrors.CodeNotFound), body["error"])
	})
}

func (s *ApplicantHandlerSuite) TestHandler_UpdateProfile() {
	s.T().Run("merges the patch - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		nama := "Siti Rahma"
		mockService.EXPECT().UpdateProfile(gomock.Any(), s.applicantID, models.ProfilePatch{Nama: &nama}).
			Return(&models.Profile{ApplicantID: s.applicantID, Nama: nama, Status: models.StatusDraft}, nil)

		status, body := s.do(t, router, http.MethodPatch, "/applicants/me/profile", `{"nama":"Siti Rahma"}`, s.actor)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, nama, body["nama"])
	})

	s.T().Run("record locked after submission - 409", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().UpdateProfile(gomock.Any(), s.applicantID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotEditable, "record is not editable in status SUBMITTED"))

		status, body := s.do(t, router, http.MethodPatch, "/applicants/me/profile", `{"nama":"X"}`, s.actor)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, string(dErrors.CodeNotEditable), body["error"])
	})

	s.T().Run("invalid json body - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().UpdateProfile(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.do(t, router, http.MethodPatch, "/applicants/me/profile", "{oops", s.actor)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeBadRequest), body["error"])
	})
}

func (s *ApplicantHandlerSuite) TestHandler_UpdateScores() {
	s.T().Run("merges the patch - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		pilihan1 := "SMAN 1 Jakarta"
		mockService.EXPECT().UpdateScores(gomock.Any(), s.applicantID, models.ScoresPatch{Pilihan1: &pilihan1}).
			Return(&models.Scores{ApplicantID: s.applicantID, Pilihan1: pilihan1}, nil)

		status, body := s.do(t, router, http.MethodPatch, "/applicants/me/scores", `{"pilihan1":"SMAN 1 Jakarta"}`, s.actor)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, pilihan1, body["pilihan1"])
	})

	s.T().Run("out of range score - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().UpdateScores(gomock.Any(), s.applicantID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "score 120 out of range 0..100"))

		status, body := s.do(t, router, http.MethodPatch, "/applicants/me/scores", `{"jalur":"ZONASI"}`, s.actor)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeValidation), body["error"])
	})
}

func (s *ApplicantHandlerSuite) TestHandler_UpdateDocuments() {
	s.T().Run("stores slot references - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().UpdateDocuments(gomock.Any(), s.applicantID, models.DocumentsPatch{"kk": "files/kk.pdf"}).
			Return(&models.Documents{
				ApplicantID: s.applicantID,
				Slots:       map[string]string{"kk": "files/kk.pdf"},
			}, nil)

		status, body := s.do(t, router, http.MethodPatch, "/applicants/me/documents", `{"kk":"files/kk.pdf"}`, s.actor)

		assert.Equal(t, http.StatusOK, status)
		slots, ok := body["slots"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "files/kk.pdf", slots["kk"])
	})

	s.T().Run("unknown slot - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().UpdateDocuments(gomock.Any(), s.applicantID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, `unknown document slot "ktp"`))

		status, body := s.do(t, router, http.MethodPatch, "/applicants/me/documents", `{"ktp":"x"}`, s.actor)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeValidation), body["error"])
	})
}

func (s *ApplicantHandlerSuite) TestHandler_Submit() {
	s.T().Run("moves the draft to SUBMITTED - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Submit(gomock.Any()).
			Return(&models.Profile{ApplicantID: s.applicantID, Status: models.StatusSubmitted, Version: 2}, nil)

		status, body := s.do(t, router, http.MethodPost, "/applicants/me/submit", "", s.actor)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, string(models.StatusSubmitted), body["status"])
	})

	s.T().Run("incomplete form - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Submit(gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "missing mandatory documents: kk"))

		status, body := s.do(t, router, http.MethodPost, "/applicants/me/submit", "", s.actor)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeValidation), body["error"])
		assert.Contains(t, body["message"], "kk")
	})

	s.T().Run("concurrent transition lost the race - 409", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Submit(gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "status changed concurrently, reload and retry"))

		status, body := s.do(t, router, http.MethodPost, "/applicants/me/submit", "", s.actor)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, string(dErrors.CodeConflict), body["error"])
	})
}

func (s *ApplicantHandlerSuite) newHandler(t *testing.T) (*mocks.MockApplicantService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	mockService := mocks.NewMockApplicantService(ctrl)
	handler := NewApplicantHandler(mockService, logger)
	router := chi.NewRouter()
	handler.Register(router)
	return mockService, router
}

func (s *ApplicantHandlerSuite) do(t *testing.T, router *chi.Mux, method, target, body string, actor requestcontext.ActorInfo) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithPeserta(req, actor.ApplicantID, actor.Username)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	raw, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return rr.Code, parsed
}

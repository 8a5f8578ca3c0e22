package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ppdb/internal/applicant/models"
	applicantservice "ppdb/internal/applicant/service"
	identitymodels "ppdb/internal/identity/models"
	identityservice "ppdb/internal/identity/service"
	"ppdb/internal/transport/http/mocks"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth-mocks.go -package=mocks RegistrationService,AuthService
type AuthHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *AuthHandlerSuite) TestHandler_Register() {
	validRequest := registerRequest{
		NIK:      "3175064509081234",
		Nama:     "Siti Rahma",
		Email:    "siti@example.com",
		Password: "rahasia-sekali",
	}

	s.T().Run("applicant created - 201", func(t *testing.T) {
		mockReg, _, router := s.newHandler(t)
		applicantID := id.NewApplicantID()
		mockReg.EXPECT().Register(gomock.Any(), applicantservice.RegisterInput{
			NIK:      validRequest.NIK,
			Nama:     validRequest.Nama,
			Email:    validRequest.Email,
			Password: validRequest.Password,
		}).Return(&applicantservice.RegisterResult{
			Profile: &models.Profile{
				ApplicantID:      applicantID,
				RegistrationCode: "REG-2026-G1-000001",
				NIK:              validRequest.NIK,
				Nama:             validRequest.Nama,
				Status:           models.StatusDraft,
			},
			Identity: &identitymodels.Identity{
				Username: validRequest.NIK,
				Role:     id.RolePeserta,
			},
		}, nil)

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/register", s.mustMarshal(t, validRequest))

		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "REG-2026-G1-000001", body["registration_code"])
		assert.Equal(t, applicantID.String(), body["applicant_id"])
		assert.Equal(t, validRequest.NIK, body["username"])
		assert.Equal(t, "DRAFT", body["status"])
	})

	s.T().Run("invalid json body - 400", func(t *testing.T) {
		mockReg, _, router := s.newHandler(t)
		mockReg.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/register", "{not-json")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeBadRequest), body["error"])
	})

	s.T().Run("validation error from service - 400", func(t *testing.T) {
		mockReg, _, router := s.newHandler(t)
		mockReg.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "nik must be a 16 digit number"))

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/register", s.mustMarshal(t, validRequest))

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeValidation), body["error"])
		assert.Equal(t, "nik must be a 16 digit number", body["message"])
	})

	s.T().Run("duplicate nik - 409", func(t *testing.T) {
		mockReg, _, router := s.newHandler(t)
		mockReg.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "nik is already registered"))

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/register", s.mustMarshal(t, validRequest))

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, string(dErrors.CodeConflict), body["error"])
	})

	s.T().Run("store failure hides detail - 500", func(t *testing.T) {
		mockReg, _, router := s.newHandler(t)
		mockReg.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("pq: connection refused"))

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/register", s.mustMarshal(t, validRequest))

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, string(dErrors.CodeInternal), body["error"])
		assert.Equal(t, "internal error", body["message"])
	})
}

func (s *AuthHandlerSuite) TestHandler_Login() {
	validRequest := loginRequest{Username: "3175064509081234", Password: "rahasia-sekali"}

	s.T().Run("applicant login returns token and applicant id - 200", func(t *testing.T) {
		_, mockAuth, router := s.newHandler(t)
		applicantID := id.NewApplicantID()
		mockAuth.EXPECT().Authenticate(gomock.Any(), validRequest.Username, validRequest.Password).
			Return(&identityservice.LoginResult{
				Token: "signed.jwt.token",
				Identity: &identitymodels.Identity{
					Username:    validRequest.Username,
					Role:        id.RolePeserta,
					ApplicantID: applicantID,
					CreatedAt:   time.Now(),
				},
			}, nil)

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/login", s.mustMarshal(t, validRequest))

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "signed.jwt.token", body["token"])
		assert.Equal(t, string(id.RolePeserta), body["role"])
		assert.Equal(t, applicantID.String(), body["applicant_id"])
	})

	s.T().Run("staff login omits applicant id - 200", func(t *testing.T) {
		_, mockAuth, router := s.newHandler(t)
		mockAuth.EXPECT().Authenticate(gomock.Any(), "panitia", "staff-password").
			Return(&identityservice.LoginResult{
				Token:    "signed.jwt.token",
				Identity: &identitymodels.Identity{Username: "panitia", Role: id.RoleAdmin},
			}, nil)

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/login",
			s.mustMarshal(t, loginRequest{Username: "panitia", Password: "staff-password"}))

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, string(id.RoleAdmin), body["role"])
		_, present := body["applicant_id"]
		assert.False(t, present)
	})

	s.T().Run("bad credentials - 401", func(t *testing.T) {
		_, mockAuth, router := s.newHandler(t)
		mockAuth.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/login", s.mustMarshal(t, validRequest))

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, string(dErrors.CodeUnauthorized), body["error"])
	})

	s.T().Run("locked account - 403", func(t *testing.T) {
		_, mockAuth, router := s.newHandler(t)
		mockAuth.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "too many failed attempts, try again later"))

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/login", s.mustMarshal(t, validRequest))

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, string(dErrors.CodeForbidden), body["error"])
	})

	s.T().Run("invalid json body - 400", func(t *testing.T) {
		_, mockAuth, router := s.newHandler(t)
		mockAuth.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doJSON(t, router, http.MethodPost, "/auth/login", "{")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeBadRequest), body["error"])
	})
}

func (s *AuthHandlerSuite) newHandler(t *testing.T) (*mocks.MockRegistrationService, *mocks.MockAuthService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	mockReg := mocks.NewMockRegistrationService(ctrl)
	mockAuth := mocks.NewMockAuthService(ctrl)
	handler := NewAuthHandler(mockReg, mockAuth, logger)
	router := chi.NewRouter()
	handler.Register(router)
	return mockReg, mockAuth, router
}

func (s *AuthHandlerSuite) doJSON(t *testing.T, router *chi.Mux, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	raw, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return rr.Code, parsed
}

func (s *AuthHandlerSuite) mustMarshal(t *testing.T, v any) string {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return string(body)
}

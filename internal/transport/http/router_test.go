package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ppdb/internal/applicant/models"
	"ppdb/internal/jwttoken"
	"ppdb/internal/transport/http/mocks"
	id "ppdb/pkg/domain"
)

// RouterSuite drives requests through the full middleware chain, including
// the real JWT guards, with mocked services behind the handlers.
type RouterSuite struct {
	suite.Suite
	tokens *jwttoken.Service
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	s.tokens = jwttoken.NewService("router-test-signing-key", "ppdb", time.Hour)
}

func (s *RouterSuite) TestRouter() {
	s.T().Run("healthz is public", func(t *testing.T) {
		router, _, _ := s.newRouter(t, nil)

		rr := s.do(t, router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	s.T().Run("healthz reports unready dependencies", func(t *testing.T) {
		router, _, _ := s.newRouter(t, func(ctx context.Context) error {
			return errors.New("database down")
		})

		rr := s.do(t, router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	s.T().Run("metrics endpoint is mounted", func(t *testing.T) {
		router, _, _ := s.newRouter(t, nil)

		rr := s.do(t, router, http.MethodGet, "/metrics", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	s.T().Run("applicant route rejects missing token", func(t *testing.T) {
		router, _, _ := s.newRouter(t, nil)

		rr := s.do(t, router, http.MethodGet, "/applicants/me", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	s.T().Run("applicant route rejects garbage token", func(t *testing.T) {
		router, _, _ := s.newRouter(t, nil)

		rr := s.do(t, router, http.MethodGet, "/applicants/me", "Bearer not.a.token")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	s.T().Run("admin token cannot reach applicant routes", func(t *testing.T) {
		router, _, _ := s.newRouter(t, nil)
		token := s.adminToken(t)

		rr := s.do(t, router, http.MethodGet, "/applicants/me", "Bearer "+token)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	s.T().Run("applicant token cannot reach admin routes", func(t *testing.T) {
		router, _, _ := s.newRouter(t, nil)
		token, _ := s.applicantToken(t)

		rr := s.do(t, router, http.MethodGet, "/admin/applicants", "Bearer "+token)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	s.T().Run("applicant token reaches its own aggregate", func(t *testing.T) {
		router, applicants, _ := s.newRouter(t, nil)
		token, applicantID := s.applicantToken(t)
		applicants.EXPECT().GetAggregate(gomock.Any(), applicantID).Return(&models.Aggregate{
			Profile: &models.Profile{ApplicantID: applicantID, Status: models.StatusDraft},
		}, nil)

		rr := s.do(t, router, http.MethodGet, "/applicants/me", "Bearer "+token)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, rr.Header().Get("Content-Type"), "application/json")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	s.T().Run("admin token reaches the review surface", func(t *testing.T) {
		router, _, admins := s.newRouter(t, nil)
		token := s.adminToken(t)
		admins.EXPECT().CountByStatus(gomock.Any()).Return(map[models.Status]int{}, nil)

		rr := s.do(t, router, http.MethodGet, "/admin/applicants/counts", "Bearer "+token)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	s.T().Run("upstream request id is echoed back", func(t *testing.T) {
		router, _, _ := s.newRouter(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "req-from-proxy")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, "req-from-proxy", rr.Header().Get("X-Request-ID"))
	})
}

func (s *RouterSuite) newRouter(t *testing.T, readiness func(ctx context.Context) error) (http.Handler, *mocks.MockApplicantService, *mocks.MockAdminService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	mockReg := mocks.NewMockRegistrationService(ctrl)
	mockAuth := mocks.NewMockAuthService(ctrl)
	mockApplicants := mocks.NewMockApplicantService(ctrl)
	mockAdmins := mocks.NewMockAdminService(ctrl)

	router := NewRouter(Deps{
		Logger:         logger,
		Tokens:         s.tokens,
		Auth:           NewAuthHandler(mockReg, mockAuth, logger),
		Applicant:      NewApplicantHandler(mockApplicants, logger),
		Admin:          NewAdminHandler(mockAdmins, logger),
		RequestTimeout: 5 * time.Second,
		Readiness:      readiness,
	})
	return router, mockApplicants, mockAdmins
}

func (s *RouterSuite) applicantToken(t *testing.T) (string, id.ApplicantID) {
	t.Helper()
	applicantID := id.NewApplicantID()
	token, err := s.tokens.Generate(id.NewIdentityID(), id.RolePeserta, "3175064509081234", applicantID, time.Now())
	require.NoError(t, err)
	return token, applicantID
}

func (s *RouterSuite) adminToken(t *testing.T) string {
	t.Helper()
	token, err := s.tokens.Generate(id.NewIdentityID(), id.RoleAdmin, "panitia", id.ApplicantID{}, time.Now())
	require.NoError(t, err)
	return token
}

func (s *RouterSuite) do(t *testing.T, router http.Handler, method, target, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

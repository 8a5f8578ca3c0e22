package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	applicant "ppdb/internal/applicant/models"
	identity "ppdb/internal/identity/models"
	"ppdb/internal/identity/store/lockout"
	"ppdb/internal/jwttoken"
	"ppdb/internal/storage"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	audit "ppdb/pkg/platform/audit"
	auditmemory "ppdb/pkg/platform/audit/store/memory"
	"ppdb/pkg/requestcontext"
	"ppdb/pkg/secrets"
)

type AuthSuite struct {
	suite.Suite
	mem      *storage.Memory
	lockouts *lockout.InMemory
	sink     *auditmemory.Store
	svc      *Service
	ctx      context.Context
	now      time.Time
}

func (s *AuthSuite) SetupTest() {
	s.mem = storage.NewMemory(applicant.Settings{Year: "2026", Wave: "G1"})
	s.lockouts = lockout.NewInMemory()
	s.sink = auditmemory.New()
	s.now = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	tokens := jwttoken.NewService("test-key", "ppdb", 12*time.Hour)
	s.svc = New(s.mem.Identities(), s.lockouts, tokens,
		WithAudit(audit.NewPublisher(s.sink)),
	)
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) seedApplicant(nik, password string) *identity.Identity {
	hash, err := secrets.Hash(password)
	s.Require().NoError(err)
	ident, err := identity.NewApplicantIdentity(id.NewIdentityID(), id.NewApplicantID(), nik, hash, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.mem.Identities().CreateIfUsernameAvailable(s.ctx, ident))
	return ident
}

func (s *AuthSuite) TestAuthenticate() {
	ident := s.seedApplicant("3201012345678901", "rahasia123")

	s.Run("issues a token for valid credentials", func() {
		result, err := s.svc.Authenticate(s.ctx, "3201012345678901", "rahasia123")
		s.Require().NoError(err)
		s.NotEmpty(result.Token)
		s.Equal(ident.ID, result.Identity.ID)
	})

	s.Run("rejects a wrong password", func() {
		_, err := s.svc.Authenticate(s.ctx, "3201012345678901", "salah")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects an unknown username with the same error", func() {
		_, err := s.svc.Authenticate(s.ctx, "0000000000000000", "rahasia123")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects empty credentials", func() {
		_, err := s.svc.Authenticate(s.ctx, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AuthSuite) TestLockoutAfterRepeatedFailures() {
	s.seedApplicant("3201015555555555", "rahasia123")

	for i := 0; i < 5; i++ {
		_, err := s.svc.Authenticate(s.ctx, "3201015555555555", "salah")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}

	// The fifth failure trips the lock; even correct credentials are refused.
	_, err := s.svc.Authenticate(s.ctx, "3201015555555555", "rahasia123")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	var lockedEvents int
	for _, e := range s.sink.Events() {
		if e.Action == audit.ActionAccountLocked {
			lockedEvents++
		}
	}
	s.Equal(1, lockedEvents)
}

func (s *AuthSuite) TestSuccessResetsFailureCount() {
	s.seedApplicant("3201016666666666", "rahasia123")

	for i := 0; i < 4; i++ {
		_, err := s.svc.Authenticate(s.ctx, "3201016666666666", "salah")
		s.Require().Error(err)
	}
	_, err := s.svc.Authenticate(s.ctx, "3201016666666666", "rahasia123")
	s.Require().NoError(err)

	// The counter restarted, so four more failures stay below the limit.
	for i := 0; i < 4; i++ {
		_, err := s.svc.Authenticate(s.ctx, "3201016666666666", "salah")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
	_, err = s.svc.Authenticate(s.ctx, "3201016666666666", "rahasia123")
	s.NoError(err)
}

func (s *AuthSuite) TestInactiveAccountRejected() {
	hash, err := secrets.Hash("rahasia123")
	s.Require().NoError(err)
	ident, err := identity.NewAdminIdentity(id.NewIdentityID(), "panitia", hash, s.now)
	s.Require().NoError(err)
	ident.AccountStatus = identity.AccountInactive
	s.Require().NoError(s.mem.Identities().CreateIfUsernameAvailable(s.ctx, ident))

	_, err = s.svc.Authenticate(s.ctx, "panitia", "rahasia123")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthSuite) TestAuditRecordsDevice() {
	s.seedApplicant("3201017777777777", "rahasia123")
	ctx := requestcontext.WithUserAgent(s.ctx, "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	_, err := s.svc.Authenticate(ctx, "3201017777777777", "rahasia123")
	s.Require().NoError(err)

	events := s.sink.Events()
	s.Require().NotEmpty(events)
	last := events[len(events)-1]
	s.Equal(audit.ActionLoginSucceeded, last.Action)
	s.Contains(last.UserAgent, "Chrome")
}

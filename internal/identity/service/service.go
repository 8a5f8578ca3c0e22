// Package service implements authentication for the admissions portal.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mssola/useragent"

	identity "ppdb/internal/identity/models"
	"ppdb/internal/identity/store/lockout"
	"ppdb/internal/jwttoken"
	"ppdb/internal/storage"
	dErrors "ppdb/pkg/domain-errors"
	audit "ppdb/pkg/platform/audit"
	"ppdb/pkg/platform/sentinel"
	"ppdb/pkg/requestcontext"
	"ppdb/pkg/secrets"
)

const (
	defaultMaxAttempts   = 5
	defaultFailureWindow = 15 * time.Minute
	defaultLockDuration  = 15 * time.Minute
)

// Service authenticates principals and enforces the login lockout policy.
type Service struct {
	identities storage.IdentityStore
	lockouts   lockout.Store
	tokens     *jwttoken.Service
	audit      *audit.Publisher
	logger     *slog.Logger

	maxAttempts   int
	failureWindow time.Duration
	lockDuration  time.Duration
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAudit(publisher *audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithLockoutPolicy overrides the failure threshold and windows.
func WithLockoutPolicy(maxAttempts int, failureWindow, lockDuration time.Duration) Option {
	return func(s *Service) {
		s.maxAttempts = maxAttempts
		s.failureWindow = failureWindow
		s.lockDuration = lockDuration
	}
}

func New(identities storage.IdentityStore, lockouts lockout.Store, tokens *jwttoken.Service, opts ...Option) *Service {
	s := &Service{
		identities:    identities,
		lockouts:      lockouts,
		tokens:        tokens,
		logger:        slog.Default(),
		maxAttempts:   defaultMaxAttempts,
		failureWindow: defaultFailureWindow,
		lockDuration:  defaultLockDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is what a successful authentication hands back to transport.
type LoginResult struct {
	Token    string
	Identity *identity.Identity
}

// Authenticate verifies the credentials and issues an access token.
//
// Failures are deliberately indistinguishable: unknown username, inactive
// account and wrong password all return the same unauthorized error, and all
// count toward the lockout threshold.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username and password are required")
	}

	locked, err := s.lockouts.IsLocked(ctx, username)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check lockout")
	}
	if locked {
		return nil, dErrors.New(dErrors.CodeForbidden, "too many failed attempts, try again later")
	}

	ident, err := s.identities.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.failLogin(ctx, username)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find identity")
	}

	if !ident.Active() {
		return nil, s.failLogin(ctx, username)
	}
	if err := secrets.Compare(ident.PasswordHash, password); err != nil {
		return nil, s.failLogin(ctx, username)
	}

	if err := s.lockouts.Clear(ctx, username); err != nil {
		// A stale counter only shortens the runway for future failures.
		s.logger.Warn("clear lockout failed", "username", username, "error", err)
	}

	now := requestcontext.Now(ctx)
	token, err := s.tokens.Generate(ident.ID, ident.Role, ident.Username, ident.ApplicantID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generate token")
	}

	if s.audit != nil {
		s.audit.Queue(ctx, audit.Event{
			Action:      audit.ActionLoginSucceeded,
			ApplicantID: ident.ApplicantID,
			Actor:       ident.Username,
			UserAgent:   describeDevice(requestcontext.UserAgent(ctx)),
		})
	}
	return &LoginResult{Token: token, Identity: ident}, nil
}

// failLogin counts the failure, applies the lock at the threshold and returns
// the uniform unauthorized error.
func (s *Service) failLogin(ctx context.Context, username string) error {
	count, err := s.lockouts.RecordFailure(ctx, username, s.failureWindow)
	if err != nil {
		s.logger.Error("record login failure", "username", username, "error", err)
	}
	if s.audit != nil {
		s.audit.Queue(ctx, audit.Event{
			Action:    audit.ActionLoginFailed,
			Actor:     username,
			UserAgent: describeDevice(requestcontext.UserAgent(ctx)),
		})
	}
	if err == nil && count >= s.maxAttempts {
		if err := s.lockouts.Lock(ctx, username, s.lockDuration); err != nil {
			s.logger.Error("apply login lock", "username", username, "error", err)
		} else if s.audit != nil {
			s.audit.Queue(ctx, audit.Event{
				Action: audit.ActionAccountLocked,
				Actor:  username,
			})
		}
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// describeDevice turns a raw User-Agent header into a short human-readable
// label for the security audit trail.
func describeDevice(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	parts := []string{}
	if name != "" {
		parts = append(parts, name)
	}
	if version != "" {
		parts = append(parts, version)
	}
	if os := ua.OS(); os != "" {
		parts = append(parts, "on", os)
	}
	if len(parts) == 0 {
		return raw
	}
	return strings.Join(parts, " ")
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ppdb/internal/applicant/models"
	identity "ppdb/internal/identity/models"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	audit "ppdb/pkg/platform/audit"
	"ppdb/pkg/platform/sentinel"
	"ppdb/pkg/requestcontext"
	"ppdb/pkg/secrets"
)

const minPasswordLength = 8

// RegisterInput is the self-registration request. The NIK doubles as the
// login username.
type RegisterInput struct {
	NIK      string
	Nama     string
	Email    string
	Password string
}

// RegisterResult returns the created aggregate root and login principal.
type RegisterResult struct {
	Profile  *models.Profile
	Identity *identity.Identity
}

// Register creates the whole applicant aggregate in one transaction: the
// serial is allocated, the three sub-records and the login identity are
// created, and the compliance audit entry is written. If any step fails
// nothing survives, including the serial increment.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	ctx, span := s.tracer.Start(ctx, "applicant.register")
	defer span.End()
	start := time.Now()

	in.NIK = strings.TrimSpace(in.NIK)
	in.Nama = strings.TrimSpace(in.Nama)
	in.Email = strings.TrimSpace(in.Email)

	if !models.ValidNIK(in.NIK) {
		return nil, dErrors.New(dErrors.CodeValidation, "nik must be a 16 digit number")
	}
	if in.Nama == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "nama is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, dErrors.Newf(dErrors.CodeValidation, "password must be at least %d characters", minPasswordLength)
	}

	// Hash outside the transaction; bcrypt is far too slow to hold row locks.
	hash, err := secrets.Hash(in.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	var result RegisterResult
	err = s.stores.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		serial, settings, err := s.stores.Settings.NextSerial(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "allocate registration serial")
		}
		code := settings.Code(serial)

		applicantID := id.NewApplicantID()
		profile, err := models.NewProfile(applicantID, code, in.NIK, in.Nama, in.Email, now)
		if err != nil {
			return err
		}
		if err := s.stores.Profiles.Create(txCtx, profile); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "nik is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "create profile")
		}
		if err := s.stores.Scores.Create(txCtx, models.NewScores(applicantID, now)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "create scores")
		}
		if err := s.stores.Documents.Create(txCtx, models.NewDocuments(applicantID, now)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "create documents")
		}

		ident, err := identity.NewApplicantIdentity(id.NewIdentityID(), applicantID, in.NIK, hash, now)
		if err != nil {
			return err
		}
		if err := s.stores.Identities.CreateIfUsernameAvailable(txCtx, ident); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "nik is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "create identity")
		}

		if s.audit != nil {
			err := s.audit.Emit(txCtx, audit.Event{
				Action:      audit.ActionApplicantRegistered,
				ApplicantID: applicantID,
				Actor:       in.NIK,
			})
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "audit registration")
			}
		}

		result = RegisterResult{Profile: profile, Identity: ident}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("registration_code", result.Profile.RegistrationCode))
	if s.metrics != nil {
		s.metrics.IncrementRegistered()
		s.metrics.ObserveRegister(start)
	}
	s.logger.Info("applicant registered",
		"applicant_id", result.Profile.ApplicantID.String(),
		"registration_code", result.Profile.RegistrationCode,
	)
	return &result, nil
}

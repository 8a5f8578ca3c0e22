package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ppdb/internal/applicant/models"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	audit "ppdb/pkg/platform/audit"
	"ppdb/pkg/platform/sentinel"
	"ppdb/pkg/requestcontext"
)

// TransitionInput asks the engine to move an aggregate to a new status.
// Catatan is the reviewer note; it is mandatory when the target is PERBAIKAN
// so the applicant always knows what to fix.
type TransitionInput struct {
	ApplicantID id.ApplicantID
	To          models.Status
	Catatan     string
}

// ApplyTransition is the single writer of Status. Inside one transaction it
// re-reads the profile, checks the transition table against the acting role,
// moves all three sub-records, appends the history entry and writes the
// compliance audit event. The version CAS on the profile row rejects the
// loser of any concurrent attempt.
func (s *Service) ApplyTransition(ctx context.Context, in TransitionInput) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "applicant.transition")
	defer span.End()
	start := time.Now()

	actor := requestcontext.Actor(ctx)
	if !actor.Role.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !in.To.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", in.To)
	}
	in.Catatan = strings.TrimSpace(in.Catatan)
	if in.To == models.StatusPerbaikan && in.Catatan == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "catatan is required when requesting perbaikan")
	}
	if actor.Role == id.RolePeserta && actor.ApplicantID != in.ApplicantID {
		return nil, dErrors.New(dErrors.CodeForbidden, "applicants may only submit their own registration")
	}

	var (
		updated    *models.Profile
		fromStatus models.Status
	)
	err := s.stores.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		profile, err := s.stores.Profiles.FindByID(txCtx, in.ApplicantID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "applicant not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "load profile")
		}

		fromStatus = profile.Status
		if !profile.Status.CanTransitionTo(in.To, actor.Role) {
			return dErrors.Newf(dErrors.CodeIllegalTransition,
				"cannot move from %s to %s", profile.Status, in.To)
		}

		// Submissions pass the completeness gate before any write happens.
		if in.To == models.StatusSubmitted {
			if err := s.validateForSubmit(txCtx, in.ApplicantID); err != nil {
				return err
			}
		}

		err = s.stores.Profiles.UpdateStatusVersioned(txCtx, in.ApplicantID, in.To, profile.Version, now)
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				if s.metrics != nil {
					s.metrics.IncrementConflict()
				}
				return dErrors.New(dErrors.CodeConflict, "status changed concurrently, reload and retry")
			}
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "applicant not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "update profile status")
		}
		if err := s.stores.Scores.SetStatus(txCtx, in.ApplicantID, in.To, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "mirror status to scores")
		}
		if err := s.stores.Documents.SetStatus(txCtx, in.ApplicantID, in.To, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "mirror status to documents")
		}

		entry := models.NewHistoryEntry(in.ApplicantID, profile.Status, in.To, actor.Username, in.Catatan, now)
		if err := s.stores.History.Append(txCtx, entry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "append history")
		}

		if s.audit != nil {
			err := s.audit.Emit(txCtx, audit.Event{
				Action:      audit.ActionStatusChanged,
				ApplicantID: in.ApplicantID,
				Actor:       actor.Username,
				FromStatus:  string(profile.Status),
				ToStatus:    string(in.To),
				Catatan:     in.Catatan,
			})
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "audit status change")
			}
		}

		after := *profile
		after.Status = in.To
		after.Version = profile.Version + 1
		after.UpdatedAt = now
		updated = &after
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("from_status", string(fromStatus)),
		attribute.String("to_status", string(in.To)),
	)
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(in.To))
		s.metrics.ObserveTransition(start)
	}
	s.logger.Info("status transition applied",
		"applicant_id", in.ApplicantID.String(),
		"to_status", string(in.To),
		"actor", actor.Username,
	)
	return updated, nil
}

// Submit moves the acting applicant's own aggregate to SUBMITTED. It is the
// applicant-facing wrapper around the engine.
func (s *Service) Submit(ctx context.Context) (*models.Profile, error) {
	actor := requestcontext.Actor(ctx)
	if actor.Role != id.RolePeserta || actor.ApplicantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only applicants can submit a registration")
	}
	return s.ApplyTransition(ctx, TransitionInput{
		ApplicantID: actor.ApplicantID,
		To:          models.StatusSubmitted,
	})
}

// validateForSubmit enforces the completeness gate: a first program choice,
// distinct choices, and every mandatory document slot filled.
func (s *Service) validateForSubmit(ctx context.Context, applicantID id.ApplicantID) error {
	scores, err := s.stores.Scores.FindByID(ctx, applicantID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load scores")
	}
	if scores.Pilihan1 == "" {
		return dErrors.New(dErrors.CodeValidation, "pilihan1 is required before submitting")
	}
	if err := scores.ValidateChoices(); err != nil {
		return err
	}

	documents, err := s.stores.Documents.FindByID(ctx, applicantID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load documents")
	}
	if missing := documents.MissingMandatory(); len(missing) > 0 {
		return dErrors.Newf(dErrors.CodeValidation,
			"missing mandatory documents: %s", strings.Join(missing, ", "))
	}
	return nil
}

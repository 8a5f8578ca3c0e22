package service

import (
	"context"
	"errors"

	"ppdb/internal/applicant/models"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	audit "ppdb/pkg/platform/audit"
	"ppdb/pkg/platform/sentinel"
	"ppdb/pkg/requestcontext"
)

// requireOwnership rejects applicants touching aggregates other than their
// own. Staff pass unconditionally.
func requireOwnership(ctx context.Context, applicantID id.ApplicantID) error {
	actor := requestcontext.Actor(ctx)
	switch actor.Role {
	case id.RoleAdmin:
		return nil
	case id.RolePeserta:
		if actor.ApplicantID == applicantID {
			return nil
		}
		return dErrors.New(dErrors.CodeForbidden, "applicants may only access their own registration")
	default:
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
}

// UpdateProfile merges the patch into the profile. Only DRAFT and PERBAIKAN
// records are editable; anything else fails with not_editable and no write
// happens.
func (s *Service) UpdateProfile(ctx context.Context, applicantID id.ApplicantID, patch models.ProfilePatch) (*models.Profile, error) {
	if err := requireOwnership(ctx, applicantID); err != nil {
		return nil, err
	}

	profile, err := s.stores.Profiles.FindByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "applicant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load profile")
	}
	if err := profile.CanEdit(); err != nil {
		return nil, err
	}

	profile.Apply(patch, requestcontext.Now(ctx))
	if err := s.stores.Profiles.Update(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update profile")
	}

	s.queueUpdateEvent(ctx, audit.ActionProfileUpdated, applicantID)
	return profile, nil
}

// UpdateScores merges the patch into the scores record under the same
// editability rule.
func (s *Service) UpdateScores(ctx context.Context, applicantID id.ApplicantID, patch models.ScoresPatch) (*models.Scores, error) {
	if err := requireOwnership(ctx, applicantID); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	scores, err := s.stores.Scores.FindByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "applicant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load scores")
	}
	if !scores.Status.Editable() {
		return nil, dErrors.Newf(dErrors.CodeNotEditable, "scores are locked in status %s", scores.Status)
	}

	scores.Apply(patch, requestcontext.Now(ctx))
	if err := s.stores.Scores.Update(ctx, scores); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update scores")
	}

	s.queueUpdateEvent(ctx, audit.ActionScoresUpdated, applicantID)
	return scores, nil
}

// UpdateDocuments merges slot references into the documents record under the
// same editability rule.
func (s *Service) UpdateDocuments(ctx context.Context, applicantID id.ApplicantID, patch models.DocumentsPatch) (*models.Documents, error) {
	if err := requireOwnership(ctx, applicantID); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	documents, err := s.stores.Documents.FindByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "applicant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load documents")
	}
	if !documents.Status.Editable() {
		return nil, dErrors.Newf(dErrors.CodeNotEditable, "documents are locked in status %s", documents.Status)
	}

	documents.Apply(patch, requestcontext.Now(ctx))
	if err := s.stores.Documents.Update(ctx, documents); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update documents")
	}

	s.queueUpdateEvent(ctx, audit.ActionDocumentsUpdated, applicantID)
	return documents, nil
}

func (s *Service) queueUpdateEvent(ctx context.Context, action audit.Action, applicantID id.ApplicantID) {
	if s.audit == nil {
		return
	}
	s.audit.Queue(ctx, audit.Event{
		Action:      action,
		ApplicantID: applicantID,
		Actor:       requestcontext.Actor(ctx).Username,
	})
}

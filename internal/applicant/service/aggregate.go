package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"ppdb/internal/applicant/models"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	"ppdb/pkg/platform/sentinel"
)

// GetAggregate assembles the composite view of one applicant. The four reads
// are independent, so they run in parallel with shared cancellation.
func (s *Service) GetAggregate(ctx context.Context, applicantID id.ApplicantID) (*models.Aggregate, error) {
	if err := requireOwnership(ctx, applicantID); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	agg := &models.Aggregate{}

	g.Go(func() error {
		profile, err := s.stores.Profiles.FindByID(gctx, applicantID)
		if err != nil {
			return err
		}
		agg.Profile = profile
		return nil
	})
	g.Go(func() error {
		scores, err := s.stores.Scores.FindByID(gctx, applicantID)
		if err != nil {
			return err
		}
		agg.Scores = scores
		return nil
	})
	g.Go(func() error {
		documents, err := s.stores.Documents.FindByID(gctx, applicantID)
		if err != nil {
			return err
		}
		agg.Documents = documents
		return nil
	})
	g.Go(func() error {
		history, err := s.stores.History.ListByApplicant(gctx, applicantID)
		if err != nil {
			return err
		}
		agg.History = history
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "applicant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load applicant aggregate")
	}
	return agg, nil
}

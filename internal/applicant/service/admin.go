package service

import (
	"context"

	"ppdb/internal/applicant/models"
	dErrors "ppdb/pkg/domain-errors"
)

// ListProfiles returns profiles for the admin dashboard, optionally filtered
// by status. Authorization is the transport layer's job; the service only
// validates the filter.
func (s *Service) ListProfiles(ctx context.Context, filter *models.Status) ([]*models.Profile, error) {
	if filter != nil && !filter.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", *filter)
	}
	profiles, err := s.stores.Profiles.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list profiles")
	}
	return profiles, nil
}

// CountByStatus returns the per-status totals shown on the dashboard.
func (s *Service) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	counts, err := s.stores.Profiles.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count profiles")
	}
	return counts, nil
}

// Package storage defines the persistence ports of the admissions portal and
// ships two implementations: an in-memory bundle for unit tests and local
// runs, and a PostgreSQL set for production.
//
// Stores are pure I/O. They report infrastructure facts through
// pkg/platform/sentinel errors (not found, key taken, lost CAS race) and leave
// every domain decision to the services.
package storage

import (
	"context"
	"time"

	applicant "ppdb/internal/applicant/models"
	identity "ppdb/internal/identity/models"
	id "ppdb/pkg/domain"
)

// IdentityStore persists login principals.
type IdentityStore interface {
	// CreateIfUsernameAvailable inserts the identity, returning
	// sentinel.ErrAlreadyUsed when the username is taken.
	CreateIfUsernameAvailable(ctx context.Context, ident *identity.Identity) error
	FindByUsername(ctx context.Context, username string) (*identity.Identity, error)
	FindByID(ctx context.Context, identityID id.IdentityID) (*identity.Identity, error)
}

// ProfileStore persists the personal sub-record. The profile row carries the
// authoritative Status and the Version counter backing the transition CAS.
type ProfileStore interface {
	// Create inserts the profile, returning sentinel.ErrAlreadyUsed when the
	// NIK or registration code is taken.
	Create(ctx context.Context, p *applicant.Profile) error
	FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Profile, error)
	// Update rewrites the editable fields. Status and Version move only
	// through UpdateStatusVersioned.
	Update(ctx context.Context, p *applicant.Profile) error
	// UpdateStatusVersioned moves the profile to the target status iff the
	// stored version still equals expectedVersion, bumping the version by
	// one. Returns sentinel.ErrConflict when a concurrent transition won the
	// race and sentinel.ErrNotFound when the profile does not exist.
	UpdateStatusVersioned(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, expectedVersion int, now time.Time) error
	// List returns profiles ordered by registration code, optionally
	// filtered to one status.
	List(ctx context.Context, filter *applicant.Status) ([]*applicant.Profile, error)
	CountByStatus(ctx context.Context) (map[applicant.Status]int, error)
}

// ScoresStore persists the program-choice and report-card sub-record.
type ScoresStore interface {
	Create(ctx context.Context, s *applicant.Scores) error
	FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Scores, error)
	Update(ctx context.Context, s *applicant.Scores) error
	// SetStatus mirrors a status change onto the scores row.
	SetStatus(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error
}

// DocumentsStore persists the uploaded-files sub-record.
type DocumentsStore interface {
	Create(ctx context.Context, d *applicant.Documents) error
	FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Documents, error)
	Update(ctx context.Context, d *applicant.Documents) error
	// SetStatus mirrors a status change onto the documents row.
	SetStatus(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error
}

// HistoryStore persists the append-only status ledger.
type HistoryStore interface {
	Append(ctx context.Context, entry *applicant.HistoryEntry) error
	// ListByApplicant returns the ledger newest-first.
	ListByApplicant(ctx context.Context, applicantID id.ApplicantID) ([]*applicant.HistoryEntry, error)
}

// SettingsStore persists the admission-period settings and allocates
// registration serials.
type SettingsStore interface {
	Get(ctx context.Context) (applicant.Settings, error)
	// NextSerial atomically increments the running serial and returns the
	// allocated value together with the settings used to format the code.
	// Two concurrent calls never observe the same serial.
	NextSerial(ctx context.Context) (int, applicant.Settings, error)
}

// TxRunner executes fn atomically. Store calls made with the callback's
// context join the same transaction; if fn returns an error nothing it wrote
// survives.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

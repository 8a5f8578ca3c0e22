package storage

import (
	"context"
	"time"

	applicant "ppdb/internal/applicant/models"
	identity "ppdb/internal/identity/models"
	id "ppdb/pkg/domain"
)

// The bundle keeps one method set with unambiguous names; these thin views
// adapt it to the per-concern store interfaces so services stay wired against
// ports, not the bundle.

func (m *Memory) Identities() IdentityStore { return memoryIdentities{m} }
func (m *Memory) Profiles() ProfileStore    { return memoryProfiles{m} }
func (m *Memory) Scores() ScoresStore       { return memoryScores{m} }
func (m *Memory) Documents() DocumentsStore { return memoryDocuments{m} }
func (m *Memory) History() HistoryStore     { return memoryHistory{m} }
func (m *Memory) Settings() SettingsStore   { return memorySettings{m} }

type memoryIdentities struct{ m *Memory }

func (v memoryIdentities) CreateIfUsernameAvailable(ctx context.Context, ident *identity.Identity) error {
	return v.m.CreateIfUsernameAvailable(ctx, ident)
}

func (v memoryIdentities) FindByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	return v.m.FindByUsername(ctx, username)
}

func (v memoryIdentities) FindByID(ctx context.Context, identityID id.IdentityID) (*identity.Identity, error) {
	return v.m.FindByID(ctx, identityID)
}

type memoryProfiles struct{ m *Memory }

func (v memoryProfiles) Create(ctx context.Context, p *applicant.Profile) error {
	return v.m.CreateProfile(ctx, p)
}

func (v memoryProfiles) FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Profile, error) {
	return v.m.FindProfile(ctx, applicantID)
}

func (v memoryProfiles) Update(ctx context.Context, p *applicant.Profile) error {
	return v.m.UpdateProfile(ctx, p)
}

func (v memoryProfiles) UpdateStatusVersioned(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, expectedVersion int, now time.Time) error {
	return v.m.UpdateProfileStatusVersioned(ctx, applicantID, to, expectedVersion, now)
}

func (v memoryProfiles) List(ctx context.Context, filter *applicant.Status) ([]*applicant.Profile, error) {
	return v.m.ListProfiles(ctx, filter)
}

func (v memoryProfiles) CountByStatus(ctx context.Context) (map[applicant.Status]int, error) {
	return v.m.CountProfilesByStatus(ctx)
}

type memoryScores struct{ m *Memory }

func (v memoryScores) Create(ctx context.Context, s *applicant.Scores) error {
	return v.m.CreateScores(ctx, s)
}

func (v memoryScores) FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Scores, error) {
	return v.m.FindScores(ctx, applicantID)
}

func (v memoryScores) Update(ctx context.Context, s *applicant.Scores) error {
	return v.m.UpdateScores(ctx, s)
}

func (v memoryScores) SetStatus(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error {
	return v.m.SetScoresStatus(ctx, applicantID, to, now)
}

type memoryDocuments struct{ m *Memory }

func (v memoryDocuments) Create(ctx context.Context, d *applicant.Documents) error {
	return v.m.CreateDocuments(ctx, d)
}

func (v memoryDocuments) FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Documents, error) {
	return v.m.FindDocuments(ctx, applicantID)
}

func (v memoryDocuments) Update(ctx context.Context, d *applicant.Documents) error {
	return v.m.UpdateDocuments(ctx, d)
}

func (v memoryDocuments) SetStatus(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error {
	return v.m.SetDocumentsStatus(ctx, applicantID, to, now)
}

type memoryHistory struct{ m *Memory }

func (v memoryHistory) Append(ctx context.Context, entry *applicant.HistoryEntry) error {
	return v.m.AppendHistory(ctx, entry)
}

func (v memoryHistory) ListByApplicant(ctx context.Context, applicantID id.ApplicantID) ([]*applicant.HistoryEntry, error) {
	return v.m.ListHistory(ctx, applicantID)
}

type memorySettings struct{ m *Memory }

func (v memorySettings) Get(ctx context.Context) (applicant.Settings, error) {
	return v.m.GetSettings(ctx)
}

func (v memorySettings) NextSerial(ctx context.Context) (int, applicant.Settings, error) {
	return v.m.NextSerial(ctx)
}

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	applicant "ppdb/internal/applicant/models"
	identity "ppdb/internal/identity/models"
	id "ppdb/pkg/domain"
	"ppdb/pkg/platform/sentinel"
)

// Memory is the in-memory store bundle. All records live behind one mutex so
// RunInTx can snapshot and restore the whole state, which gives the same
// all-or-nothing semantics the PostgreSQL stores get from a transaction.
// It intentionally favors clarity over performance.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	identitiesByID       map[id.IdentityID]*identity.Identity
	identitiesByUsername map[string]id.IdentityID

	profiles map[id.ApplicantID]*applicant.Profile
	niks     map[string]id.ApplicantID
	codes    map[string]id.ApplicantID

	scores    map[id.ApplicantID]*applicant.Scores
	documents map[id.ApplicantID]*applicant.Documents
	history   map[id.ApplicantID][]*applicant.HistoryEntry

	settings applicant.Settings
}

// NewMemory constructs an empty bundle seeded with the given admission-period
// settings.
func NewMemory(settings applicant.Settings) *Memory {
	return &Memory{
		identitiesByID:       make(map[id.IdentityID]*identity.Identity),
		identitiesByUsername: make(map[string]id.IdentityID),
		profiles:             make(map[id.ApplicantID]*applicant.Profile),
		niks:                 make(map[string]id.ApplicantID),
		codes:                make(map[string]id.ApplicantID),
		scores:               make(map[id.ApplicantID]*applicant.Scores),
		documents:            make(map[id.ApplicantID]*applicant.Documents),
		history:              make(map[id.ApplicantID][]*applicant.HistoryEntry),
		settings:             settings,
	}
}

// Clone helpers. Stores hand out copies so callers can never mutate shared
// state behind the mutex.

func cloneIdentity(i *identity.Identity) *identity.Identity {
	c := *i
	return &c
}

func cloneProfile(p *applicant.Profile) *applicant.Profile {
	c := *p
	return &c
}

func cloneScores(s *applicant.Scores) *applicant.Scores {
	c := *s
	return &c
}

func cloneDocuments(d *applicant.Documents) *applicant.Documents {
	c := *d
	c.Slots = make(map[string]string, len(d.Slots))
	for k, v := range d.Slots {
		c.Slots[k] = v
	}
	return &c
}

func cloneEntry(e *applicant.HistoryEntry) *applicant.HistoryEntry {
	c := *e
	return &c
}

// IdentityStore

func (m *Memory) CreateIfUsernameAvailable(_ context.Context, ident *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.identitiesByUsername[ident.Username]; taken {
		return sentinel.ErrAlreadyUsed
	}
	m.identitiesByID[ident.ID] = cloneIdentity(ident)
	m.identitiesByUsername[ident.Username] = ident.ID
	return nil
}

func (m *Memory) FindByUsername(_ context.Context, username string) (*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	identityID, ok := m.identitiesByUsername[username]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneIdentity(m.identitiesByID[identityID]), nil
}

func (m *Memory) FindByID(_ context.Context, identityID id.IdentityID) (*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ident, ok := m.identitiesByID[identityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneIdentity(ident), nil
}

// ProfileStore

func (m *Memory) CreateProfile(_ context.Context, p *applicant.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.niks[p.NIK]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := m.codes[p.RegistrationCode]; taken {
		return sentinel.ErrAlreadyUsed
	}
	m.profiles[p.ApplicantID] = cloneProfile(p)
	m.niks[p.NIK] = p.ApplicantID
	m.codes[p.RegistrationCode] = p.ApplicantID
	return nil
}

func (m *Memory) FindProfile(_ context.Context, applicantID id.ApplicantID) (*applicant.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[applicantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (m *Memory) UpdateProfile(_ context.Context, p *applicant.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.profiles[p.ApplicantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := cloneProfile(p)
	// Status, version and the code never move through a plain update.
	updated.Status = stored.Status
	updated.Version = stored.Version
	updated.RegistrationCode = stored.RegistrationCode
	updated.NIK = stored.NIK
	m.profiles[p.ApplicantID] = updated
	return nil
}

func (m *Memory) UpdateProfileStatusVersioned(_ context.Context, applicantID id.ApplicantID, to applicant.Status, expectedVersion int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[applicantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if p.Version != expectedVersion {
		return sentinel.ErrConflict
	}
	p.Status = to
	p.Version++
	p.UpdatedAt = now
	return nil
}

func (m *Memory) ListProfiles(_ context.Context, filter *applicant.Status) ([]*applicant.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*applicant.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		if filter != nil && p.Status != *filter {
			continue
		}
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegistrationCode < out[j].RegistrationCode
	})
	return out, nil
}

func (m *Memory) CountProfilesByStatus(_ context.Context) (map[applicant.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[applicant.Status]int)
	for _, p := range m.profiles {
		counts[p.Status]++
	}
	return counts, nil
}

// ScoresStore

func (m *Memory) CreateScores(_ context.Context, s *applicant.Scores) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.scores[s.ApplicantID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	m.scores[s.ApplicantID] = cloneScores(s)
	return nil
}

func (m *Memory) FindScores(_ context.Context, applicantID id.ApplicantID) (*applicant.Scores, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[applicantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneScores(s), nil
}

func (m *Memory) UpdateScores(_ context.Context, s *applicant.Scores) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.scores[s.ApplicantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := cloneScores(s)
	updated.Status = stored.Status
	m.scores[s.ApplicantID] = updated
	return nil
}

func (m *Memory) SetScoresStatus(_ context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[applicantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}

// DocumentsStore

func (m *Memory) CreateDocuments(_ context.Context, d *applicant.Documents) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.documents[d.ApplicantID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	m.documents[d.ApplicantID] = cloneDocuments(d)
	return nil
}

func (m *Memory) FindDocuments(_ context.Context, applicantID id.ApplicantID) (*applicant.Documents, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[applicantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDocuments(d), nil
}

func (m *Memory) UpdateDocuments(_ context.Context, d *applicant.Documents) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.documents[d.ApplicantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := cloneDocuments(d)
	updated.Status = stored.Status
	m.documents[d.ApplicantID] = updated
	return nil
}

func (m *Memory) SetDocumentsStatus(_ context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[applicantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.Status = to
	d.UpdatedAt = now
	return nil
}

// HistoryStore

func (m *Memory) AppendHistory(_ context.Context, entry *applicant.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[entry.ApplicantID] = append(m.history[entry.ApplicantID], cloneEntry(entry))
	return nil
}

func (m *Memory) ListHistory(_ context.Context, applicantID id.ApplicantID) ([]*applicant.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.history[applicantID]
	// Entries are appended chronologically; the ledger reads newest-first.
	out := make([]*applicant.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, cloneEntry(entries[i]))
	}
	return out, nil
}

// SettingsStore

func (m *Memory) GetSettings(_ context.Context) (applicant.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *Memory) NextSerial(_ context.Context) (int, applicant.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.LastSerial++
	return m.settings.LastSerial, m.settings, nil
}

// TxRunner

// snapshot is a deep copy of the whole bundle, cheap enough at portal scale.
type memorySnapshot struct {
	identitiesByID       map[id.IdentityID]*identity.Identity
	identitiesByUsername map[string]id.IdentityID
	profiles             map[id.ApplicantID]*applicant.Profile
	niks                 map[string]id.ApplicantID
	codes                map[string]id.ApplicantID
	scores               map[id.ApplicantID]*applicant.Scores
	documents            map[id.ApplicantID]*applicant.Documents
	history              map[id.ApplicantID][]*applicant.HistoryEntry
	settings             applicant.Settings
}

func (m *Memory) snapshot() *memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := &memorySnapshot{
		identitiesByID:       make(map[id.IdentityID]*identity.Identity, len(m.identitiesByID)),
		identitiesByUsername: make(map[string]id.IdentityID, len(m.identitiesByUsername)),
		profiles:             make(map[id.ApplicantID]*applicant.Profile, len(m.profiles)),
		niks:                 make(map[string]id.ApplicantID, len(m.niks)),
		codes:                make(map[string]id.ApplicantID, len(m.codes)),
		scores:               make(map[id.ApplicantID]*applicant.Scores, len(m.scores)),
		documents:            make(map[id.ApplicantID]*applicant.Documents, len(m.documents)),
		history:              make(map[id.ApplicantID][]*applicant.HistoryEntry, len(m.history)),
		settings:             m.settings,
	}
	for k, v := range m.identitiesByID {
		s.identitiesByID[k] = cloneIdentity(v)
	}
	for k, v := range m.identitiesByUsername {
		s.identitiesByUsername[k] = v
	}
	for k, v := range m.profiles {
		s.profiles[k] = cloneProfile(v)
	}
	for k, v := range m.niks {
		s.niks[k] = v
	}
	for k, v := range m.codes {
		s.codes[k] = v
	}
	for k, v := range m.scores {
		s.scores[k] = cloneScores(v)
	}
	for k, v := range m.documents {
		s.documents[k] = cloneDocuments(v)
	}
	for k, v := range m.history {
		entries := make([]*applicant.HistoryEntry, len(v))
		for i, e := range v {
			entries[i] = cloneEntry(e)
		}
		s.history[k] = entries
	}
	return s
}

func (m *Memory) restore(s *memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identitiesByID = s.identitiesByID
	m.identitiesByUsername = s.identitiesByUsername
	m.profiles = s.profiles
	m.niks = s.niks
	m.codes = s.codes
	m.scores = s.scores
	m.documents = s.documents
	m.history = s.history
	m.settings = s.settings
}

// RunInTx serializes transactions and rolls the bundle back to its pre-fn
// state when fn fails. Individual store calls inside fn lock the bundle mutex
// as usual.
func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := m.snapshot()
	if err := fn(ctx); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

//go:build integration

package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	applicant "ppdb/internal/applicant/models"
	identity "ppdb/internal/identity/models"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	"ppdb/pkg/platform/sentinel"
	"ppdb/pkg/testutil/containers"
)

// PostgresStoreSuite runs the same store semantics the memory suite covers
// against a real database: unique violations, the version CAS, the serial
// row lock and transactional rollback.
type PostgresStoreSuite struct {
	suite.Suite
	pg  *containers.PostgresContainer
	ctx context.Context
	now time.Time

	identities *PostgresIdentities
	profiles   *PostgresProfiles
	scores     *PostgresScores
	documents  *PostgresDocuments
	history    *PostgresHistory
	settings   *PostgresSettings
	tx         *PostgresTxRunner
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	s.pg = containers.NewPostgresContainer(s.T())

	db := s.pg.DB
	s.identities = NewPostgresIdentities(db)
	s.profiles = NewPostgresProfiles(db)
	s.scores = NewPostgresScores(db)
	s.documents = NewPostgresDocuments(db)
	s.history = NewPostgresHistory(db)
	s.settings = NewPostgresSettings(db)
	s.tx = NewPostgresTxRunner(db)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(s.ctx)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) createApplicant(nik, code string) id.ApplicantID {
	applicantID := id.NewApplicantID()
	profile, err := applicant.NewProfile(applicantID, code, nik, "Siti Rahma", "siti@example.com", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.profiles.Create(s.ctx, profile))
	s.Require().NoError(s.scores.Create(s.ctx, applicant.NewScores(applicantID, s.now)))
	s.Require().NoError(s.documents.Create(s.ctx, applicant.NewDocuments(applicantID, s.now)))
	return applicantID
}

func (s *PostgresStoreSuite) TestIdentityUniqueness() {
	applicantID := s.createApplicant("3175064509081234", "REG-2026-G1-000001")
	ident, err := identity.NewApplicantIdentity(id.NewIdentityID(), applicantID, "3175064509081234", "hash", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.identities.CreateIfUsernameAvailable(s.ctx, ident))

	s.Run("same username is rejected", func() {
		other, err := identity.NewApplicantIdentity(id.NewIdentityID(), id.NewApplicantID(), "3175064509081234", "hash", s.now)
		s.Require().NoError(err)
		err = s.identities.CreateIfUsernameAvailable(s.ctx, other)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("round trips by username and id", func() {
		byName, err := s.identities.FindByUsername(s.ctx, "3175064509081234")
		s.Require().NoError(err)
		s.Equal(ident.ID, byName.ID)
		s.Equal(applicantID, byName.ApplicantID)

		byID, err := s.identities.FindByID(s.ctx, ident.ID)
		s.Require().NoError(err)
		s.Equal("3175064509081234", byID.Username)
	})
}

func (s *PostgresStoreSuite) TestProfileUniqueness() {
	s.createApplicant("3175064509081234", "REG-2026-G1-000001")

	s.Run("duplicate nik", func() {
		p, err := applicant.NewProfile(id.NewApplicantID(), "REG-2026-G1-000002", "3175064509081234", "Lain", "", s.now)
		s.Require().NoError(err)
		s.ErrorIs(s.profiles.Create(s.ctx, p), sentinel.ErrAlreadyUsed)
	})

	s.Run("duplicate registration code", func() {
		p, err := applicant.NewProfile(id.NewApplicantID(), "REG-2026-G1-000001", "3175064509085678", "Lain", "", s.now)
		s.Require().NoError(err)
		s.ErrorIs(s.profiles.Create(s.ctx, p), sentinel.ErrAlreadyUsed)
	})
}

func (s *PostgresStoreSuite) TestStatusCAS() {
	applicantID := s.createApplicant("3175064509081234", "REG-2026-G1-000001")

	s.Run("matching version moves and bumps", func() {
		err := s.profiles.UpdateStatusVersioned(s.ctx, applicantID, applicant.StatusSubmitted, 1, s.now)
		s.Require().NoError(err)

		p, err := s.profiles.FindByID(s.ctx, applicantID)
		s.Require().NoError(err)
		s.Equal(applicant.StatusSubmitted, p.Status)
		s.Equal(2, p.Version)
	})

	s.Run("stale version is a conflict", func() {
		err := s.profiles.UpdateStatusVersioned(s.ctx, applicantID, applicant.StatusPerbaikan, 1, s.now)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown applicant is not found", func() {
		err := s.profiles.UpdateStatusVersioned(s.ctx, id.NewApplicantID(), applicant.StatusSubmitted, 1, s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestScoresJSONRoundTrip() {
	applicantID := s.createApplicant("3175064509081234", "REG-2026-G1-000001")

	sc, err := s.scores.FindByID(s.ctx, applicantID)
	s.Require().NoError(err)
	sc.Pilihan1 = "SMAN 1 Jakarta"
	sc.Semesters[0] = applicant.SemesterScores{IPA: 88, IPS: 79, MTK: 91, BIndo: 85, BIng: 80}
	sc.Semesters[4] = applicant.SemesterScores{IPA: 90, IPS: 82, MTK: 95, BIndo: 87, BIng: 84}
	s.Require().NoError(s.scores.Update(s.ctx, sc))

	got, err := s.scores.FindByID(s.ctx, applicantID)
	s.Require().NoError(err)
	s.Equal(sc.Semesters, got.Semesters)
	s.Equal("SMAN 1 Jakarta", got.Pilihan1)
}

func (s *PostgresStoreSuite) TestDocumentsJSONRoundTrip() {
	applicantID := s.createApplicant("3175064509081234", "REG-2026-G1-000001")

	d, err := s.documents.FindByID(s.ctx, applicantID)
	s.Require().NoError(err)
	d.Slots[applicant.SlotKK] = "files/kk.pdf"
	d.Slots[applicant.SlotRapot1] = "files/rapot1.pdf"
	s.Require().NoError(s.documents.Update(s.ctx, d))

	got, err := s.documents.FindByID(s.ctx, applicantID)
	s.Require().NoError(err)
	s.Equal("files/kk.pdf", got.Slots[applicant.SlotKK])
	s.Equal("files/rapot1.pdf", got.Slots[applicant.SlotRapot1])
	s.Equal("", got.Slots[applicant.SlotRapot2])
}

func (s *PostgresStoreSuite) TestHistoryOrder() {
	applicantID := s.createApplicant("3175064509081234", "REG-2026-G1-000001")

	// Same timestamp on purpose: entries written in one transaction share the
	// request clock, and seq must break the tie.
	first := applicant.NewHistoryEntry(applicantID, applicant.StatusDraft, applicant.StatusSubmitted, "3175064509081234", "", s.now)
	second := applicant.NewHistoryEntry(applicantID, applicant.StatusSubmitted, applicant.StatusPerbaikan, "panitia", "foto kk tidak terbaca", s.now)
	s.Require().NoError(s.history.Append(s.ctx, first))
	s.Require().NoError(s.history.Append(s.ctx, second))

	entries, err := s.history.ListByApplicant(s.ctx, applicantID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(applicant.StatusPerbaikan, entries[0].ToStatus)
	s.Equal(applicant.StatusSubmitted, entries[1].ToStatus)
	s.Equal("foto kk tidak terbaca", entries[0].Catatan)
}

func (s *PostgresStoreSuite) TestConcurrentSerials() {
	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		serials = make(map[int]bool)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serial, _, err := s.settings.NextSerial(s.ctx)
			s.NoError(err)
			mu.Lock()
			serials[serial] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(serials, n)
	for i := 1; i <= n; i++ {
		s.True(serials[i], "serial %d missing", i)
	}
}

func (s *PostgresStoreSuite) TestRunInTxRollback() {
	boom := errors.New("boom")
	err := s.tx.RunInTx(s.ctx, func(ctx context.Context) error {
		serial, settings, err := s.settings.NextSerial(ctx)
		if err != nil {
			return err
		}
		profile, err := applicant.NewProfile(id.NewApplicantID(), settings.Code(serial), "3175064509081234", "Siti", "", s.now)
		if err != nil {
			return err
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	settings, err := s.settings.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, settings.LastSerial, "serial increment must roll back")

	profiles, err := s.profiles.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(profiles)
}

func (s *PostgresStoreSuite) TestRunInTxCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, _, err := s.settings.NextSerial(ctx)
		return err
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

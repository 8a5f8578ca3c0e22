package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	applicant "ppdb/internal/applicant/models"
	identity "ppdb/internal/identity/models"
	id "ppdb/pkg/domain"
	"ppdb/pkg/platform/sentinel"
	txcontext "ppdb/pkg/platform/tx"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx. Stores resolve it per call
// so the same store value works inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type pgBase struct {
	db *sql.DB
}

func (b pgBase) execer(ctx context.Context) dbtx {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return b.db
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// PostgresIdentities persists login principals.
type PostgresIdentities struct{ pgBase }

func NewPostgresIdentities(db *sql.DB) *PostgresIdentities {
	return &PostgresIdentities{pgBase{db: db}}
}

func (s *PostgresIdentities) CreateIfUsernameAvailable(ctx context.Context, ident *identity.Identity) error {
	query := `
		INSERT INTO identities (id, role, username, applicant_id, password_hash, account_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var applicantID any
	if !ident.ApplicantID.IsNil() {
		applicantID = uuid.UUID(ident.ApplicantID)
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(ident.ID),
		string(ident.Role),
		ident.Username,
		applicantID,
		ident.PasswordHash,
		string(ident.AccountStatus),
		ident.CreatedAt,
		ident.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func scanIdentity(row *sql.Row) (*identity.Identity, error) {
	var (
		ident       identity.Identity
		identityID  uuid.UUID
		role        string
		applicantID uuid.NullUUID
		status      string
	)
	err := row.Scan(&identityID, &role, &ident.Username, &applicantID, &ident.PasswordHash, &status, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ident.ID = id.IdentityID(identityID)
	ident.Role = id.Role(role)
	ident.AccountStatus = identity.AccountStatus(status)
	if applicantID.Valid {
		ident.ApplicantID = id.ApplicantID(applicantID.UUID)
	}
	return &ident, nil
}

const identityColumns = `id, role, username, applicant_id, password_hash, account_status, created_at, updated_at`

func (s *PostgresIdentities) FindByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE username = $1`
	ident, err := scanIdentity(s.execer(ctx).QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity by username: %w", err)
	}
	return ident, nil
}

func (s *PostgresIdentities) FindByID(ctx context.Context, identityID id.IdentityID) (*identity.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	ident, err := scanIdentity(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(identityID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity by id: %w", err)
	}
	return ident, nil
}

// PostgresProfiles persists the personal sub-record.
type PostgresProfiles struct{ pgBase }

func NewPostgresProfiles(db *sql.DB) *PostgresProfiles {
	return &PostgresProfiles{pgBase{db: db}}
}

const profileColumns = `applicant_id, registration_code, nik, nisn, nama, jenis_kelamin,
	tempat_lahir, tanggal_lahir, email, no_hp, alamat, sekolah_asal,
	nama_ayah, tahun_lahir_ayah, nik_ayah, pekerjaan_ayah, penghasilan_ayah,
	nama_ibu, tahun_lahir_ibu, nik_ibu, pekerjaan_ibu, penghasilan_ibu,
	status, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*applicant.Profile, error) {
	var (
		p           applicant.Profile
		applicantID uuid.UUID
		status      string
	)
	err := row.Scan(
		&applicantID, &p.RegistrationCode, &p.NIK, &p.NISN, &p.Nama, &p.JenisKelamin,
		&p.TempatLahir, &p.TanggalLahir, &p.Email, &p.NoHP, &p.Alamat, &p.SekolahAsal,
		&p.NamaAyah, &p.TahunLahirAyah, &p.NIKAyah, &p.PekerjaanAyah, &p.PenghasilanAyah,
		&p.NamaIbu, &p.TahunLahirIbu, &p.NIKIbu, &p.PekerjaanIbu, &p.PenghasilanIbu,
		&status, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ApplicantID = id.ApplicantID(applicantID)
	p.Status = applicant.Status(status)
	return &p, nil
}

func (s *PostgresProfiles) Create(ctx context.Context, p *applicant.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ApplicantID), p.RegistrationCode, p.NIK, p.NISN, p.Nama, p.JenisKelamin,
		p.TempatLahir, p.TanggalLahir, p.Email, p.NoHP, p.Alamat, p.SekolahAsal,
		p.NamaAyah, p.TahunLahirAyah, p.NIKAyah, p.PekerjaanAyah, p.PenghasilanAyah,
		p.NamaIbu, p.TahunLahirIbu, p.NIKIbu, p.PekerjaanIbu, p.PenghasilanIbu,
		string(p.Status), p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresProfiles) FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE applicant_id = $1`
	p, err := scanProfile(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(applicantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

// Update rewrites the editable fields only. Status, version, NIK and the
// registration code are deliberately absent from the SET list.
func (s *PostgresProfiles) Update(ctx context.Context, p *applicant.Profile) error {
	query := `
		UPDATE profiles SET
			nisn = $2, nama = $3, jenis_kelamin = $4, tempat_lahir = $5,
			tanggal_lahir = $6, email = $7, no_hp = $8, alamat = $9, sekolah_asal = $10,
			nama_ayah = $11, tahun_lahir_ayah = $12, nik_ayah = $13, pekerjaan_ayah = $14,
			penghasilan_ayah = $15, nama_ibu = $16, tahun_lahir_ibu = $17, nik_ibu = $18,
			pekerjaan_ibu = $19, penghasilan_ibu = $20, updated_at = $21
		WHERE applicant_id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ApplicantID),
		p.NISN, p.Nama, p.JenisKelamin, p.TempatLahir,
		p.TanggalLahir, p.Email, p.NoHP, p.Alamat, p.SekolahAsal,
		p.NamaAyah, p.TahunLahirAyah, p.NIKAyah, p.PekerjaanAyah,
		p.PenghasilanAyah, p.NamaIbu, p.TahunLahirIbu, p.NIKIbu,
		p.PekerjaanIbu, p.PenghasilanIbu, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(result, "update profile")
}

func (s *PostgresProfiles) UpdateStatusVersioned(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, expectedVersion int, now time.Time) error {
	query := `
		UPDATE profiles
		SET status = $3, version = version + 1, updated_at = $4
		WHERE applicant_id = $1 AND version = $2
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(applicantID), expectedVersion, string(to), now,
	)
	if err != nil {
		return fmt.Errorf("update profile status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile status: rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}
	// Zero rows means either a lost CAS race or a missing profile.
	var exists bool
	err = s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE applicant_id = $1)`,
		uuid.UUID(applicantID),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("update profile status: existence check: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func (s *PostgresProfiles) List(ctx context.Context, filter *applicant.Status) ([]*applicant.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	args := []any{}
	if filter != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*filter))
	}
	query += ` ORDER BY registration_code`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*applicant.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("list profiles: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresProfiles) CountByStatus(ctx context.Context) (map[applicant.Status]int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT status, COUNT(*) FROM profiles GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}
	defer rows.Close()

	counts := make(map[applicant.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("count profiles: scan: %w", err)
		}
		counts[applicant.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}
	return counts, nil
}

// PostgresScores persists the program-choice and report-card sub-record. The
// semester grid is stored as JSONB; it is always read and written whole.
type PostgresScores struct{ pgBase }

func NewPostgresScores(db *sql.DB) *PostgresScores {
	return &PostgresScores{pgBase{db: db}}
}

func (s *PostgresScores) Create(ctx context.Context, sc *applicant.Scores) error {
	semesters, err := json.Marshal(sc.Semesters)
	if err != nil {
		return fmt.Errorf("marshal semesters: %w", err)
	}
	query := `
		INSERT INTO scores (applicant_id, jalur, pilihan1, pilihan2, semesters, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(sc.ApplicantID), string(sc.Jalur), sc.Pilihan1, sc.Pilihan2,
		semesters, string(sc.Status), sc.CreatedAt, sc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert scores: %w", err)
	}
	return nil
}

func (s *PostgresScores) FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Scores, error) {
	query := `
		SELECT applicant_id, jalur, pilihan1, pilihan2, semesters, status, created_at, updated_at
		FROM scores WHERE applicant_id = $1
	`
	var (
		sc        applicant.Scores
		rowID     uuid.UUID
		jalur     string
		semesters []byte
		status    string
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(applicantID)).Scan(
		&rowID, &jalur, &sc.Pilihan1, &sc.Pilihan2, &semesters, &status, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find scores: %w", err)
	}
	if err := json.Unmarshal(semesters, &sc.Semesters); err != nil {
		return nil, fmt.Errorf("unmarshal semesters: %w", err)
	}
	sc.ApplicantID = id.ApplicantID(rowID)
	sc.Jalur = applicant.Jalur(jalur)
	sc.Status = applicant.Status(status)
	return &sc, nil
}

func (s *PostgresScores) Update(ctx context.Context, sc *applicant.Scores) error {
	semesters, err := json.Marshal(sc.Semesters)
	if err != nil {
		return fmt.Errorf("marshal semesters: %w", err)
	}
	query := `
		UPDATE scores
		SET jalur = $2, pilihan1 = $3, pilihan2 = $4, semesters = $5, updated_at = $6
		WHERE applicant_id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(sc.ApplicantID), string(sc.Jalur), sc.Pilihan1, sc.Pilihan2, semesters, sc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update scores: %w", err)
	}
	return requireRow(result, "update scores")
}

func (s *PostgresScores) SetStatus(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE scores SET status = $2, updated_at = $3 WHERE applicant_id = $1`,
		uuid.UUID(applicantID), string(to), now,
	)
	if err != nil {
		return fmt.Errorf("set scores status: %w", err)
	}
	return requireRow(result, "set scores status")
}

// PostgresDocuments persists the uploaded-files sub-record. Slots are a flat
// JSONB object keyed by slot name.
type PostgresDocuments struct{ pgBase }

func NewPostgresDocuments(db *sql.DB) *PostgresDocuments {
	return &PostgresDocuments{pgBase{db: db}}
}

func (s *PostgresDocuments) Create(ctx context.Context, d *applicant.Documents) error {
	slots, err := json.Marshal(d.Slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}
	query := `
		INSERT INTO documents (applicant_id, slots, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(d.ApplicantID), slots, string(d.Status), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert documents: %w", err)
	}
	return nil
}

func (s *PostgresDocuments) FindByID(ctx context.Context, applicantID id.ApplicantID) (*applicant.Documents, error) {
	query := `
		SELECT applicant_id, slots, status, created_at, updated_at
		FROM documents WHERE applicant_id = $1
	`
	var (
		d      applicant.Documents
		rowID  uuid.UUID
		slots  []byte
		status string
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(applicantID)).Scan(
		&rowID, &slots, &status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find documents: %w", err)
	}
	if err := json.Unmarshal(slots, &d.Slots); err != nil {
		return nil, fmt.Errorf("unmarshal slots: %w", err)
	}
	d.ApplicantID = id.ApplicantID(rowID)
	d.Status = applicant.Status(status)
	return &d, nil
}

func (s *PostgresDocuments) Update(ctx context.Context, d *applicant.Documents) error {
	slots, err := json.Marshal(d.Slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}
	result, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE documents SET slots = $2, updated_at = $3 WHERE applicant_id = $1`,
		uuid.UUID(d.ApplicantID), slots, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update documents: %w", err)
	}
	return requireRow(result, "update documents")
}

func (s *PostgresDocuments) SetStatus(ctx context.Context, applicantID id.ApplicantID, to applicant.Status, now time.Time) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE documents SET status = $2, updated_at = $3 WHERE applicant_id = $1`,
		uuid.UUID(applicantID), string(to), now,
	)
	if err != nil {
		return fmt.Errorf("set documents status: %w", err)
	}
	return requireRow(result, "set documents status")
}

// PostgresHistory persists the append-only status ledger.
type PostgresHistory struct{ pgBase }

func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{pgBase{db: db}}
}

func (s *PostgresHistory) Append(ctx context.Context, entry *applicant.HistoryEntry) error {
	query := `
		INSERT INTO status_history (id, applicant_id, from_status, to_status, actor, catatan, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID, uuid.UUID(entry.ApplicantID),
		string(entry.FromStatus), string(entry.ToStatus),
		entry.Actor, entry.Catatan, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *PostgresHistory) ListByApplicant(ctx context.Context, applicantID id.ApplicantID) ([]*applicant.HistoryEntry, error) {
	query := `
		SELECT id, applicant_id, from_status, to_status, actor, catatan, ts
		FROM status_history
		WHERE applicant_id = $1
		ORDER BY ts DESC, seq DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(applicantID))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []*applicant.HistoryEntry
	for rows.Next() {
		var (
			e     applicant.HistoryEntry
			rowID uuid.UUID
			from  string
			to    string
		)
		if err := rows.Scan(&e.ID, &rowID, &from, &to, &e.Actor, &e.Catatan, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("list history: scan: %w", err)
		}
		e.ApplicantID = id.ApplicantID(rowID)
		e.FromStatus = applicant.Status(from)
		e.ToStatus = applicant.Status(to)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

// PostgresSettings persists the single admission-period row.
type PostgresSettings struct{ pgBase }

func NewPostgresSettings(db *sql.DB) *PostgresSettings {
	return &PostgresSettings{pgBase{db: db}}
}

func (s *PostgresSettings) Get(ctx context.Context) (applicant.Settings, error) {
	var settings applicant.Settings
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT last_serial, year, wave FROM settings WHERE id = 1`,
	).Scan(&settings.LastSerial, &settings.Year, &settings.Wave)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return applicant.Settings{}, sentinel.ErrNotFound
		}
		return applicant.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// NextSerial relies on the row lock the UPDATE takes: concurrent callers
// serialize on the settings row and each sees a distinct serial.
func (s *PostgresSettings) NextSerial(ctx context.Context) (int, applicant.Settings, error) {
	var settings applicant.Settings
	err := s.execer(ctx).QueryRowContext(ctx,
		`UPDATE settings SET last_serial = last_serial + 1 WHERE id = 1
		 RETURNING last_serial, year, wave`,
	).Scan(&settings.LastSerial, &settings.Year, &settings.Wave)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, applicant.Settings{}, sentinel.ErrNotFound
		}
		return 0, applicant.Settings{}, fmt.Errorf("next serial: %w", err)
	}
	return settings.LastSerial, settings, nil
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

package models

import (
	"regexp"
	"time"

	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
)

// Profile is the personal/family sub-record of an applicant aggregate.
//
// Invariants:
//   - RegistrationCode is unique and immutable once assigned
//   - Status always equals the Status on the sibling Scores and Documents
//     records (enforced by the transition engine's transaction)
//   - Version increases by one on every status change; it backs the
//     compare-and-swap that rejects concurrent transitions
type Profile struct {
	ApplicantID      id.ApplicantID `json:"applicant_id"`
	RegistrationCode string         `json:"registration_code"`
	NIK              string         `json:"nik"`
	NISN             string         `json:"nisn"`
	Nama             string         `json:"nama"`
	JenisKelamin     string         `json:"jenis_kelamin"`
	TempatLahir      string         `json:"tempat_lahir"`
	TanggalLahir     string         `json:"tanggal_lahir"`
	Email            string         `json:"email"`
	NoHP             string         `json:"no_hp"`
	Alamat           string         `json:"alamat"`
	SekolahAsal      string         `json:"sekolah_asal"`

	NamaAyah        string `json:"nama_ayah"`
	TahunLahirAyah  string `json:"tahun_lahir_ayah"`
	NIKAyah         string `json:"nik_ayah"`
	PekerjaanAyah   string `json:"pekerjaan_ayah"`
	PenghasilanAyah string `json:"penghasilan_ayah"`

	NamaIbu        string `json:"nama_ibu"`
	TahunLahirIbu  string `json:"tahun_lahir_ibu"`
	NIKIbu         string `json:"nik_ibu"`
	PekerjaanIbu   string `json:"pekerjaan_ibu"`
	PenghasilanIbu string `json:"penghasilan_ibu"`

	Status    Status    `json:"status"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var nikPattern = regexp.MustCompile(`^[0-9]{16}$`)

// ValidNIK reports whether s looks like a national identity number.
func ValidNIK(s string) bool {
	return nikPattern.MatchString(s)
}

// NewProfile constructs the initial DRAFT profile created at registration.
func NewProfile(applicantID id.ApplicantID, code, nik, nama, email string, now time.Time) (*Profile, error) {
	if !ValidNIK(nik) {
		return nil, dErrors.New(dErrors.CodeValidation, "nik must be a 16 digit number")
	}
	if nama == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "nama is required")
	}
	if code == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration code is required")
	}
	return &Profile{
		ApplicantID:      applicantID,
		RegistrationCode: code,
		NIK:              nik,
		Nama:             nama,
		Email:            email,
		JenisKelamin:     "L",
		Status:           StatusDraft,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CanEdit returns nil when the applicant may mutate this record.
func (p *Profile) CanEdit() error {
	if !p.Status.Editable() {
		return dErrors.Newf(dErrors.CodeNotEditable, "profile is locked in status %s", p.Status)
	}
	return nil
}

// ProfilePatch carries the applicant-writable profile fields for a partial
// update. Nil means "leave unchanged". Status, Version, and the registration
// code are deliberately absent: those move only through the engine.
type ProfilePatch struct {
	NISN         *string `json:"nisn"`
	Nama         *string `json:"nama"`
	JenisKelamin *string `json:"jenis_kelamin"`
	TempatLahir  *string `json:"tempat_lahir"`
	TanggalLahir *string `json:"tanggal_lahir"`
	Email        *string `json:"email"`
	NoHP         *string `json:"no_hp"`
	Alamat       *string `json:"alamat"`
	SekolahAsal  *string `json:"sekolah_asal"`

	NamaAyah        *string `json:"nama_ayah"`
	TahunLahirAyah  *string `json:"tahun_lahir_ayah"`
	NIKAyah         *string `json:"nik_ayah"`
	PekerjaanAyah   *string `json:"pekerjaan_ayah"`
	PenghasilanAyah *string `json:"penghasilan_ayah"`

	NamaIbu        *string `json:"nama_ibu"`
	TahunLahirIbu  *string `json:"tahun_lahir_ibu"`
	NIKIbu         *string `json:"nik_ibu"`
	PekerjaanIbu   *string `json:"pekerjaan_ibu"`
	PenghasilanIbu *string `json:"penghasilan_ibu"`
}

// Apply merges the patch into the profile. UpdatedAt is the caller's clock so
// a whole update shares one timestamp.
func (p *Profile) Apply(patch ProfilePatch, now time.Time) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.NISN, patch.NISN)
	set(&p.Nama, patch.Nama)
	set(&p.JenisKelamin, patch.JenisKelamin)
	set(&p.TempatLahir, patch.TempatLahir)
	set(&p.TanggalLahir, patch.TanggalLahir)
	set(&p.Email, patch.Email)
	set(&p.NoHP, patch.NoHP)
	set(&p.Alamat, patch.Alamat)
	set(&p.SekolahAsal, patch.SekolahAsal)
	set(&p.NamaAyah, patch.NamaAyah)
	set(&p.TahunLahirAyah, patch.TahunLahirAyah)
	set(&p.NIKAyah, patch.NIKAyah)
	set(&p.PekerjaanAyah, patch.PekerjaanAyah)
	set(&p.PenghasilanAyah, patch.PenghasilanAyah)
	set(&p.NamaIbu, patch.NamaIbu)
	set(&p.TahunLahirIbu, patch.TahunLahirIbu)
	set(&p.NIKIbu, patch.NIKIbu)
	set(&p.PekerjaanIbu, patch.PekerjaanIbu)
	set(&p.PenghasilanIbu, patch.PenghasilanIbu)
	p.UpdatedAt = now
}

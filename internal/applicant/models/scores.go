package models

import (
	"time"

	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
)

// Jalur is the admission track chosen by the applicant.
type Jalur string

const (
	JalurZonasi   Jalur = "ZONASI"
	JalurPrestasi Jalur = "PRESTASI"
	JalurAfirmasi Jalur = "AFIRMASI"
)

func (j Jalur) Valid() bool {
	return j == JalurZonasi || j == JalurPrestasi || j == JalurAfirmasi
}

// Semesters covered by the report-card grid.
const SemesterCount = 5

// SemesterScores holds the five subject scores for one term, each 0..100.
type SemesterScores struct {
	IPA   int `json:"ipa"`
	IPS   int `json:"ips"`
	MTK   int `json:"mtk"`
	BIndo int `json:"bindo"`
	BIng  int `json:"bing"`
}

func (s SemesterScores) validate() error {
	for _, v := range []int{s.IPA, s.IPS, s.MTK, s.BIndo, s.BIng} {
		if v < 0 || v > 100 {
			return dErrors.Newf(dErrors.CodeValidation, "score %d out of range 0..100", v)
		}
	}
	return nil
}

// Scores is the program-choice and report-card sub-record of an applicant
// aggregate. Status mirrors Profile.Status.
type Scores struct {
	ApplicantID id.ApplicantID                `json:"applicant_id"`
	Jalur       Jalur                         `json:"jalur"`
	Pilihan1    string                        `json:"pilihan1"`
	Pilihan2    string                        `json:"pilihan2"`
	Semesters   [SemesterCount]SemesterScores `json:"semesters"`
	Status      Status                        `json:"status"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// NewScores constructs the empty DRAFT scores record created at registration.
func NewScores(applicantID id.ApplicantID, now time.Time) *Scores {
	return &Scores{
		ApplicantID: applicantID,
		Jalur:       JalurZonasi,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ValidateChoices enforces the program-choice rule: the first and second
// choice must differ when both are set.
func (s *Scores) ValidateChoices() error {
	if s.Pilihan1 != "" && s.Pilihan1 == s.Pilihan2 {
		return dErrors.New(dErrors.CodeValidation, "pilihan1 and pilihan2 must differ")
	}
	return nil
}

// ScoresPatch carries the applicant-writable score fields for a partial
// update. Nil means "leave unchanged".
type ScoresPatch struct {
	Jalur     *Jalur                         `json:"jalur"`
	Pilihan1  *string                        `json:"pilihan1"`
	Pilihan2  *string                        `json:"pilihan2"`
	Semesters *[SemesterCount]SemesterScores `json:"semesters"`
}

// Validate rejects out-of-range scores and unknown tracks before anything is
// merged.
func (p ScoresPatch) Validate() error {
	if p.Jalur != nil && !p.Jalur.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown jalur %q", *p.Jalur)
	}
	if p.Semesters != nil {
		for _, sem := range p.Semesters {
			if err := sem.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply merges the patch into the record.
func (s *Scores) Apply(patch ScoresPatch, now time.Time) {
	if patch.Jalur != nil {
		s.Jalur = *patch.Jalur
	}
	if patch.Pilihan1 != nil {
		s.Pilihan1 = *patch.Pilihan1
	}
	if patch.Pilihan2 != nil {
		s.Pilihan2 = *patch.Pilihan2
	}
	if patch.Semesters != nil {
		s.Semesters = *patch.Semesters
	}
	s.UpdatedAt = now
}

package models

import (
	"time"

	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
)

// Document slot names. Slots are uniform: every slot holds an opaque
// reference string (URI or filename) supplied by the upload collaborator,
// or "" when empty. The kk slot is a regular mandatory slot like the five
// report cards, not a special case.
const (
	SlotRapot1    = "rapot1"
	SlotRapot2    = "rapot2"
	SlotRapot3    = "rapot3"
	SlotRapot4    = "rapot4"
	SlotRapot5    = "rapot5"
	SlotKK        = "kk"
	SlotPrestasi1 = "prestasi1"
	SlotPrestasi2 = "prestasi2"
	SlotAfirmasi  = "afirmasi"
)

// MandatorySlots must be filled before final submission.
var MandatorySlots = []string{
	SlotRapot1, SlotRapot2, SlotRapot3, SlotRapot4, SlotRapot5, SlotKK,
}

// OptionalSlots may stay empty.
var OptionalSlots = []string{SlotPrestasi1, SlotPrestasi2, SlotAfirmasi}

var knownSlots = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, s := range MandatorySlots {
		m[s] = struct{}{}
	}
	for _, s := range OptionalSlots {
		m[s] = struct{}{}
	}
	return m
}()

// KnownSlot reports whether name is one of the defined document slots.
func KnownSlot(name string) bool {
	_, ok := knownSlots[name]
	return ok
}

// Documents is the uploaded-files sub-record of an applicant aggregate.
// Status mirrors Profile.Status.
type Documents struct {
	ApplicantID id.ApplicantID    `json:"applicant_id"`
	Slots       map[string]string `json:"slots"`
	Status      Status            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewDocuments constructs the empty DRAFT documents record created at
// registration, with every known slot present and empty.
func NewDocuments(applicantID id.ApplicantID, now time.Time) *Documents {
	slots := make(map[string]string, len(knownSlots))
	for name := range knownSlots {
		slots[name] = ""
	}
	return &Documents{
		ApplicantID: applicantID,
		Slots:       slots,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MissingMandatory lists the mandatory slots that are still empty, in the
// canonical slot order.
func (d *Documents) MissingMandatory() []string {
	var missing []string
	for _, name := range MandatorySlots {
		if d.Slots[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// DocumentsPatch maps slot names to new reference strings. Unknown slot
// names are rejected rather than silently stored.
type DocumentsPatch map[string]string

func (p DocumentsPatch) Validate() error {
	for name := range p {
		if !KnownSlot(name) {
			return dErrors.Newf(dErrors.CodeValidation, "unknown document slot %q", name)
		}
	}
	return nil
}

// Apply merges the patch into the record.
func (d *Documents) Apply(patch DocumentsPatch, now time.Time) {
	if d.Slots == nil {
		d.Slots = make(map[string]string, len(knownSlots))
	}
	for name, ref := range patch {
		d.Slots[name] = ref
	}
	d.UpdatedAt = now
}

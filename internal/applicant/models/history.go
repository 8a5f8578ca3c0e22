package models

import (
	"time"

	"github.com/google/uuid"

	id "ppdb/pkg/domain"
)

// HistoryEntry records one status change. Entries are immutable and
// append-only; the ledger is displayed newest-first.
type HistoryEntry struct {
	ID          uuid.UUID      `json:"id"`
	ApplicantID id.ApplicantID `json:"applicant_id"`
	FromStatus  Status         `json:"from_status"`
	ToStatus    Status         `json:"to_status"`
	Actor       string         `json:"actor"`
	Catatan     string         `json:"catatan,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewHistoryEntry captures a transition performed by actor at now.
func NewHistoryEntry(applicantID id.ApplicantID, from, to Status, actor, catatan string, now time.Time) *HistoryEntry {
	return &HistoryEntry{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		FromStatus:  from,
		ToStatus:    to,
		Actor:       actor,
		Catatan:     catatan,
		Timestamp:   now,
	}
}

// Aggregate is the read-only composite view assembled for presentation.
type Aggregate struct {
	Profile   *Profile        `json:"profile"`
	Scores    *Scores         `json:"scores"`
	Documents *Documents      `json:"documents"`
	History   []*HistoryEntry `json:"history"`
}

package models

import (
	id "ppdb/pkg/domain"
)

// Status is the review state shared by the three sub-records of an applicant
// aggregate. The transition engine is the only writer; everything else treats
// it as read-only.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusPerbaikan Status = "PERBAIKAN"
	StatusDiterima  Status = "DITERIMA"
	StatusDitolak   Status = "DITOLAK"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusPerbaikan, StatusDiterima, StatusDitolak:
		return true
	}
	return false
}

// Editable reports whether the applicant may mutate their own sub-records in
// this state.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusPerbaikan
}

// Terminal reports whether the state has no outgoing transitions. DITERIMA
// and DITOLAK are final decisions; reopening them is not modeled.
func (s Status) Terminal() bool {
	return s == StatusDiterima || s == StatusDitolak
}

// legalTransitions is the full state machine: from-status -> to-status ->
// role allowed to trigger it. Absence means the transition is illegal for
// everyone. Applicants submit and resubmit; staff review submissions.
var legalTransitions = map[Status]map[Status]id.Role{
	StatusDraft: {
		StatusSubmitted: id.RolePeserta,
	},
	StatusSubmitted: {
		StatusPerbaikan: id.RoleAdmin,
		StatusDiterima:  id.RoleAdmin,
		StatusDitolak:   id.RoleAdmin,
	},
	StatusPerbaikan: {
		StatusSubmitted: id.RolePeserta,
	},
}

// CanTransitionTo reports whether role may move a record from s to next.
func (s Status) CanTransitionTo(next Status, role id.Role) bool {
	allowed, ok := legalTransitions[s]
	if !ok {
		return false
	}
	return allowed[next] == role
}

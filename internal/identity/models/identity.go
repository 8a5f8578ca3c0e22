package models

import (
	"time"

	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
)

// AccountStatus gates login without deleting the record.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// Identity is one login principal. Applicants log in with their NIK; staff
// with a plain username. ApplicantID is set iff Role is PESERTA, and exactly
// one identity exists per applicant.
type Identity struct {
	ID            id.IdentityID  `json:"id"`
	Role          id.Role        `json:"role"`
	Username      string         `json:"username"`
	ApplicantID   id.ApplicantID `json:"applicant_id,omitempty"`
	PasswordHash  string         `json:"-"`
	AccountStatus AccountStatus  `json:"account_status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (i *Identity) Active() bool {
	return i.AccountStatus == AccountActive
}

// NewApplicantIdentity links a fresh login principal to an applicant
// aggregate. The username is the applicant's NIK.
func NewApplicantIdentity(identityID id.IdentityID, applicantID id.ApplicantID, nik, passwordHash string, now time.Time) (*Identity, error) {
	if nik == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if applicantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant identity requires an applicant id")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &Identity{
		ID:            identityID,
		Role:          id.RolePeserta,
		Username:      nik,
		ApplicantID:   applicantID,
		PasswordHash:  passwordHash,
		AccountStatus: AccountActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewAdminIdentity creates a staff principal with no applicant link.
func NewAdminIdentity(identityID id.IdentityID, username, passwordHash string, now time.Time) (*Identity, error) {
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &Identity{
		ID:            identityID,
		Role:          id.RoleAdmin,
		Username:      username,
		PasswordHash:  passwordHash,
		AccountStatus: AccountActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

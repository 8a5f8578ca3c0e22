// Package domain holds the identifier and role types shared across the
// admissions portal. They live in their own package so stores, services and
// transport can all agree on them without import cycles.
package domain

import "github.com/google/uuid"

// IdentityID identifies a login principal.
type IdentityID uuid.UUID

// NewIdentityID generates a fresh random identity ID.
func NewIdentityID() IdentityID {
	return IdentityID(uuid.New())
}

func (i IdentityID) String() string {
	return uuid.UUID(i).String()
}

func (i IdentityID) IsNil() bool {
	return uuid.UUID(i) == uuid.Nil
}

// ParseIdentityID parses s as an identity ID.
func ParseIdentityID(s string) (IdentityID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return IdentityID{}, err
	}
	return IdentityID(u), nil
}

// ApplicantID identifies one applicant aggregate: the profile, scores,
// documents and history records all hang off it.
type ApplicantID uuid.UUID

// NewApplicantID generates a fresh random applicant ID.
func NewApplicantID() ApplicantID {
	return ApplicantID(uuid.New())
}

func (a ApplicantID) String() string {
	return uuid.UUID(a).String()
}

func (a ApplicantID) IsNil() bool {
	return uuid.UUID(a) == uuid.Nil
}

// ParseApplicantID parses s as an applicant ID.
func ParseApplicantID(s string) (ApplicantID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ApplicantID{}, err
	}
	return ApplicantID(u), nil
}

package testutil

import (
	"net/http"

	id "ppdb/pkg/domain"
	"ppdb/pkg/requestcontext"
)

// WithPeserta stamps the request with an applicant principal, simulating what
// the auth middleware does for a valid applicant token.
func WithPeserta(req *http.Request, applicantID id.ApplicantID, username string) *http.Request {
	actor := requestcontext.ActorInfo{
		IdentityID:  id.NewIdentityID(),
		ApplicantID: applicantID,
		Username:    username,
		Role:        id.RolePeserta,
	}
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithAdmin stamps the request with a staff principal.
func WithAdmin(req *http.Request, username string) *http.Request {
	actor := requestcontext.ActorInfo{
		IdentityID: id.NewIdentityID(),
		Username:   username,
		Role:       id.RoleAdmin,
	}
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

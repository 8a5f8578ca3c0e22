package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ppdb/internal/applicant/models"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
	"ppdb/pkg/requestcontext"
)

// ApplicantService is the self-service surface for a logged-in applicant.
type ApplicantService interface {
	GetAggregate(ctx context.Context, applicantID id.ApplicantID) (*models.Aggregate, error)
	UpdateProfile(ctx context.Context, applicantID id.ApplicantID, patch models.ProfilePatch) (*models.Profile, error)
	UpdateScores(ctx context.Context, applicantID id.ApplicantID, patch models.ScoresPatch) (*models.Scores, error)
	UpdateDocuments(ctx context.Context, applicantID id.ApplicantID, patch models.DocumentsPatch) (*models.Documents, error)
	Submit(ctx context.Context) (*models.Profile, error)
}

type ApplicantHandler struct {
	applicants ApplicantService
	logger     *slog.Logger
}

func NewApplicantHandler(applicants ApplicantService, logger *slog.Logger) *ApplicantHandler {
	return &ApplicantHandler{applicants: applicants, logger: logger}
}

// Register mounts the applicant self-service routes. Mount behind RequireAuth
// and RequireRole(PESERTA); handlers read the applicant ID from the token,
// never from the URL.
func (h *ApplicantHandler) Register(r chi.Router) {
	r.Get("/applicants/me", h.handleGet)
	r.Patch("/applicants/me/profile", h.handleUpdateProfile)
	r.Patch("/applicants/me/scores", h.handleUpdateScores)
	r.Patch("/applicants/me/documents", h.handleUpdateDocuments)
	r.Post("/applicants/me/submit", h.handleSubmit)
}

func ownApplicantID(ctx context.Context) (id.ApplicantID, error) {
	applicantID := requestcontext.Actor(ctx).ApplicantID
	if applicantID.IsNil() {
		return id.ApplicantID{}, dErrors.New(dErrors.CodeUnauthorized, "token carries no applicant")
	}
	return applicantID, nil
}

func (h *ApplicantHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	applicantID, err := ownApplicantID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	agg, err := h.applicants.GetAggregate(r.Context(), applicantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *ApplicantHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	applicantID, err := ownApplicantID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var patch models.ProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.applicants.UpdateProfile(r.Context(), applicantID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ApplicantHandler) handleUpdateScores(w http.ResponseWriter, r *http.Request) {
	applicantID, err := ownApplicantID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var patch models.ScoresPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	scores, err := h.applicants.UpdateScores(r.Context(), applicantID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (h *ApplicantHandler) handleUpdateDocuments(w http.ResponseWriter, r *http.Request) {
	applicantID, err := ownApplicantID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var patch models.DocumentsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	documents, err := h.applicants.UpdateDocuments(r.Context(), applicantID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documents)
}

func (h *ApplicantHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	profile, err := h.applicants.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ppdb/internal/applicant/models"
	applicantservice "ppdb/internal/applicant/service"
	id "ppdb/pkg/domain"
	dErrors "ppdb/pkg/domain-errors"
)

// AdminService is the review surface for admission staff.
type AdminService interface {
	ListProfiles(ctx context.Context, filter *models.Status) ([]*models.Profile, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
	GetAggregate(ctx context.Context, applicantID id.ApplicantID) (*models.Aggregate, error)
	ApplyTransition(ctx context.Context, in applicantservice.TransitionInput) (*models.Profile, error)
}

type AdminHandler struct {
	applicants AdminService
	logger     *slog.Logger
}

func NewAdminHandler(applicants AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{applicants: applicants, logger: logger}
}

// Register mounts the staff routes. Mount behind RequireAuth and
// RequireRole(ADMIN).
func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/admin/applicants", h.handleList)
	r.Get("/admin/applicants/counts", h.handleCounts)
	r.Get("/admin/applicants/{applicantID}", h.handleGet)
	r.Post("/admin/applicants/{applicantID}/status", h.handleTransition)
}

func (h *AdminHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var filter *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(strings.ToUpper(raw))
		filter = &status
	}

	profiles, err := h.applicants.ListProfiles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applicants": profiles})
}

func (h *AdminHandler) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.applicants.CountByStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func (h *AdminHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	applicantID, err := pathApplicantID(r)
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

type transitionRequest struct {
	To      string `json:"to"`
	Catatan string `json:"catatan"`
}

func (h *AdminHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	applicantID, err := pathApplicantID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.applicants.ApplyTransition(r.Context(), applicantservice.TransitionInput{
		ApplicantID: applicantID,
		To:          models.Status(strings.ToUpper(strings.TrimSpace(req.To))),
		Catatan:     req.Catatan,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func pathApplicantID(r *http.Request) (id.ApplicantID, error) {
	applicantID, err := id.ParseApplicantID(chi.URLParam(r, "applicantID"))
	if err != nil {
		return id.ApplicantID{}, dErrors.New(dErrors.CodeBadRequest, "invalid applicant id")
	}
	return applicantID, nil
}

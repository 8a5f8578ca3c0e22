package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	applicantservice "ppdb/internal/applicant/service"
	identityservice "ppdb/internal/identity/service"
)

// RegistrationService creates the applicant aggregate and its login identity.
type RegistrationService interface {
	Register(ctx context.Context, in applicantservice.RegisterInput) (*applicantservice.RegisterResult, error)
}

// AuthService exchanges credentials for an access token.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*identityservice.LoginResult, error)
}

type AuthHandler struct {
	registrations RegistrationService
	auth          AuthService
	logger        *slog.Logger
}

func NewAuthHandler(registrations RegistrationService, auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{registrations: registrations, auth: auth, logger: logger}
}

// Register mounts the public routes. No auth middleware applies here.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

type registerRequest struct {
	NIK      string `json:"nik"`
	Nama     string `json:"nama"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ApplicantID      string `json:"applicant_id"`
	RegistrationCode string `json:"registration_code"`
	Username         string `json:"username"`
	Status           string `json:"status"`
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.registrations.Register(r.Context(), applicantservice.RegisterInput{
		NIK:      req.NIK,
		Nama:     req.Nama,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		ApplicantID:      res.Profile.ApplicantID.String(),
		RegistrationCode: res.Profile.RegistrationCode,
		Username:         res.Identity.Username,
		Status:           string(res.Profile.Status),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	Username    string `json:"username"`
	ApplicantID string `json:"applicant_id,omitempty"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := loginResponse{
		Token:    res.Token,
		Role:     string(res.Identity.Role),
		Username: res.Identity.Username,
	}
	if !res.Identity.ApplicantID.IsNil() {
		resp.ApplicantID = res.Identity.ApplicantID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

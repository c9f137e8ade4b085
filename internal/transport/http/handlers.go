package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"rollcall/internal/participant"
	"rollcall/pkg/platform/sentinel"
)

//go:generate mockgen -source=router.go -destination=mocks/service_mocks.go -package=mocks RegistrationService

type registerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := validateRegisterRequest(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input")
		return
	}

	created, err := h.service.Register(r.Context(), participant.Participant{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Email:       req.Email,
		Institution: req.Institution,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if len(participants) == 0 {
		writeErrorCode(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input")
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = normalizeEmail(req.Email)
	if !govalidator.IsEmail(req.Email) || strings.TrimSpace(req.Code) == "" {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input")
		return
	}

	verified, err := h.service.Confirm(r.Context(), req.Email, strings.TrimSpace(req.Code))
	if err != nil {
		writeError(w, err)
		return
	}
	if !verified {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"verified": false,
			"error":    "invalid_code",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verified": true})
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = normalizeEmail(req.Email)
	if !govalidator.IsEmail(req.Email) {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input")
		return
	}

	if err := h.service.Resend(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "verification code sent"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Health(r.Context()); err != nil {
		writeErrorCode(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// normalizeEmail canonicalizes an address so records, codes, and lookups all
// key on the same string regardless of how the caller cased it.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateRegisterRequest(req *registerRequest) error {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if !govalidator.StringLength(req.Email, "3", "255") || !govalidator.IsEmail(req.Email) {
		return errors.New("invalid email")
	}
	if !govalidator.StringLength(req.FirstName, "1", "100") {
		return errors.New("invalid first_name")
	}
	if !govalidator.StringLength(req.LastName, "1", "100") {
		return errors.New("invalid last_name")
	}
	if len(req.Phone) > 32 {
		return errors.New("invalid phone")
	}
	if len(req.Institution) > 200 {
		return errors.New("invalid institution")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeError centralizes sentinel error translation so every handler returns
// the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "not_found")
	case errors.Is(err, sentinel.ErrConflict):
		writeErrorCode(w, http.StatusConflict, "conflict")
	case errors.Is(err, sentinel.ErrInvalidState):
		writeErrorCode(w, http.StatusBadRequest, "invalid_state")
	case errors.Is(err, sentinel.ErrThrottled):
		writeErrorCode(w, http.StatusTooManyRequests, "throttled")
	case errors.Is(err, sentinel.ErrUnavailable):
		writeErrorCode(w, http.StatusServiceUnavailable, "unavailable")
	default:
		writeErrorCode(w, http.StatusInternalServerError, "internal")
	}
}

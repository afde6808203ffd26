package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"vinylapi/internal/auth"
)

// AuthHandler serves admin login and the access-gate check.
type AuthHandler struct {
	gate *auth.Gate
}

func NewAuthHandler(gate *auth.Gate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// @Summary Admin login
// @Description Exchange email and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", nil)
		return
	}
	if details := ValidateStruct(req); details != nil {
		JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid login payload", details)
		return
	}

	token, err := h.gate.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrNotAllowed):
		JSONError(w, http.StatusForbidden, "NOT_ALLOWED", "Email does not have admin access", nil)
		return
	case err != nil:
		JSONError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect", nil)
		return
	}

	JSONSuccess(w, map[string]string{
		"token": token,
		"email": req.Email,
	}, nil)
}

// @Summary Access-gate check
// @Description Confirms the bearer token's email still has admin access
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /admin/access [get]
func (h *AuthHandler) Access(w http.ResponseWriter, r *http.Request) {
	// AuthMiddleware already verified the token and the allowlist.
	JSONSuccess(w, map[string]any{
		"allowed": true,
		"email":   EmailFrom(r),
	}, nil)
}

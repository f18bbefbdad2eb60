package http

import (
	"net/http"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, domain.NewValidationError("email and password are required"))
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

type bulkCreateUsersRequest struct {
	Emails []string        `json:"emails"`
	Role   domain.UserRole `json:"role"`
}

func (h *AuthHandler) BulkCreateUsers(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateUsersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Role == "" {
		req.Role = domain.UserRoleMember
	}

	claims := claimsFrom(r.Context())
	created, err := h.auth.BulkCreateUsers(r.Context(), claims.UserID, req.Emails, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": created, "count": len(created)})
}

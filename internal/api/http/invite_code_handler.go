package http

import (
	"net/http"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/service"
)

type InviteCodeHandler struct {
	codes service.InviteCodeService
}

func NewInviteCodeHandler(codes service.InviteCodeService) *InviteCodeHandler {
	return &InviteCodeHandler{codes: codes}
}

type createCodeRequest struct {
	Code      string     `json:"code"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *InviteCodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	code, err := h.codes.Create(r.Context(), claims.UserID, req.Code, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, code)
}

type importCodesRequest struct {
	Codes          []string   `json:"codes"`
	ExpiresAt      *time.Time `json:"expires_at"`
	WithQueryToken bool       `json:"with_query_token"`
	TokenExpiresAt *time.Time `json:"token_expires_at"`
}

func (h *InviteCodeHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importCodesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	created, token, err := h.codes.Import(r.Context(), claims.UserID, req.Codes, req.ExpiresAt, req.WithQueryToken, req.TokenExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"codes": created, "count": len(created)}
	if token != "" {
		resp["query_token"] = token
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *InviteCodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	code, err := h.codes.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

func (h *InviteCodeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	codes, total, err := h.codes.List(r.Context(), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"codes":     codes,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

type markUsedRequest struct {
	Used bool `json:"used"`
}

func (h *InviteCodeHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req markUsedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	code, err := h.codes.MarkUsed(r.Context(), id, claims.UserID, req.Used)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

func (h *InviteCodeHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	if err := h.codes.Invalidate(r.Context(), id, claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invalidated": true})
}

func (h *InviteCodeHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	if err := h.codes.SoftDelete(r.Context(), id, claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

type bulkDeleteRequest struct {
	IDs []int32 `json:"ids"`
}

func (h *InviteCodeHandler) BulkSoftDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	deleted, err := h.codes.BulkSoftDelete(r.Context(), req.IDs, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

type issueRequest struct {
	Email  string `json:"email"`
	UserID int32  `json:"user_id"`
}

func (h *InviteCodeHandler) Issue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req issueRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	switch {
	case req.UserID > 0:
		err = h.codes.IssueToUser(r.Context(), id, claims.UserID, req.UserID)
	case req.Email != "":
		err = h.codes.IssueToEmail(r.Context(), id, claims.UserID, req.Email)
	default:
		err = domain.NewValidationError("either email or user_id is required")
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issued": true})
}

type batchCheckRequest struct {
	Codes       []string          `json:"codes"`
	CodeMapping map[string]string `json:"code_mapping"`
}

func (h *InviteCodeHandler) BatchCheck(w http.ResponseWriter, r *http.Request) {
	var req batchCheckRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	results, err := h.codes.BatchCheck(r.Context(), req.Codes, req.CodeMapping)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "total": len(results)})
}

package http

import (
	"net/http"
	"strconv"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/service"

	"github.com/gorilla/mux"
)

type PreApplicationHandler struct {
	apps   service.PreApplicationService
	review service.ReviewService
}

func NewPreApplicationHandler(apps service.PreApplicationService, review service.ReviewService) *PreApplicationHandler {
	return &PreApplicationHandler{apps: apps, review: review}
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("invalid id %q", raw)
	}
	return int32(id), nil
}

func pageParams(r *http.Request) (int32, int32) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32)
	if page < 1 {
		page = 1
	}
	size, _ := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32)
	if size < 1 || size > 100 {
		size = 20
	}
	return int32(page), int32(size)
}

type submitRequest struct {
	Email          string `json:"email"`
	Essay          string `json:"essay"`
	Source         string `json:"source"`
	RequestedGroup string `json:"requested_group"`
}

func (h *PreApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	app, err := h.apps.Submit(r.Context(), claims.UserID, req.Email, req.Essay, req.Source, req.RequestedGroup)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

type resubmitRequest struct {
	Essay string `json:"essay"`
}

func (h *PreApplicationHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req resubmitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	app, err := h.apps.Resubmit(r.Context(), id, claims.UserID, req.Essay)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *PreApplicationHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	app, err := h.apps.GetOwn(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *PreApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	app, versions, err := h.apps.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"application": app, "versions": versions})
}

func (h *PreApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.PreApplicationStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.PreApplicationStatusPending
	}
	page, size := pageParams(r)

	apps, total, err := h.apps.ListByStatus(r.Context(), status, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        total,
		"page":         page,
		"page_size":    size,
	})
}

type decideRequest struct {
	Decision domain.ReviewDecision `json:"decision"`
	Guidance string                `json:"guidance"`
}

func (h *PreApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req decideRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	app, err := h.review.Decide(r.Context(), id, claims.UserID, req.Decision, req.Guidance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type archiveRequest struct {
	IDs []int32 `json:"ids"`
}

func (h *PreApplicationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	archived, err := h.apps.Archive(r.Context(), req.IDs, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived": archived})
}

func (h *PreApplicationHandler) MarkCodeSent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	if err := h.apps.MarkCodeSent(r.Context(), id, claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code_sent": true})
}

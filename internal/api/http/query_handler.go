package http

import (
	"net/http"

	"gatehouse-backend/internal/service"

	"github.com/gorilla/mux"
)

// QueryHandler serves the anonymous status lookup endpoint. No auth; the
// query token itself is the credential.
type QueryHandler struct {
	query service.QueryService
}

func NewQueryHandler(query service.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

func (h *QueryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	result, err := h.query.Resolve(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

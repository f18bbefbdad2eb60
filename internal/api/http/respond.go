package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
)

// errorResponse is the wire shape of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidationError, domain.CodeInvalidToken:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeInvalidState, domain.CodeResubmitLimitExceeded, domain.CodeNoCodeAvailable,
		domain.CodeAlreadyUsed, domain.CodeAlreadyDeleted, domain.CodeAlreadyExpired:
		return http.StatusConflict
	case domain.CodeTokenExpired:
		return http.StatusGone
	case domain.CodeGatewayError:
		return http.StatusBadGateway
	case domain.CodeNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, statusForCode(appErr.Code), errorResponse{Code: string(appErr.Code), Message: appErr.Message})
		return
	}
	logger.Error("Unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Message: "internal server error"})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("malformed request body")
	}
	return nil
}

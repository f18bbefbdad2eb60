package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatehouse-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"Invalid state", domain.ErrInvalidState, http.StatusConflict, "INVALID_STATE"},
		{"Resubmit limit", domain.ErrResubmitLimitExceeded, http.StatusConflict, "RESUBMIT_LIMIT_EXCEEDED"},
		{"No code available", domain.ErrNoCodeAvailable, http.StatusConflict, "NO_CODE_AVAILABLE"},
		{"Token expired", domain.ErrTokenExpired, http.StatusGone, "TOKEN_EXPIRED"},
		{"Invalid token", domain.ErrInvalidToken, http.StatusBadRequest, "INVALID_TOKEN"},
		{"Validation", domain.NewValidationError("bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"Gateway", domain.WrapGatewayError(errors.New("down")), http.StatusBadGateway, "GATEWAY_ERROR"},
		{"Not configured", domain.ErrNotConfigured, http.StatusServiceUnavailable, "NOT_CONFIGURED"},
		{"Unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"Forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body errorResponse
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused at 10.0.0.3"))

	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

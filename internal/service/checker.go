package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/settings"
)

// CheckerVerdict is one entry of the external validator's response.
type CheckerVerdict struct {
	InviteCode string `json:"invite_code"`
	Valid      *bool  `json:"valid"`
	Message    string `json:"message"`
}

// CheckerClient talks to the external invite code validator.
type CheckerClient interface {
	Check(ctx context.Context, codes []string) ([]CheckerVerdict, error)
}

type checkerClient struct {
	httpClient *http.Client
	settings   settings.Provider
}

// NewCheckerClient builds a validator client. The endpoint URL and API key
// are mutable site settings read on every call. The HTTP client's timeout is
// the only backoff policy; non-response is a hard failure and retries are the
// caller's responsibility.
func NewCheckerClient(httpClient *http.Client, settingsProvider settings.Provider) CheckerClient {
	return &checkerClient{httpClient: httpClient, settings: settingsProvider}
}

type checkerRequest struct {
	InviteCodes []string `json:"invite_codes"`
}

type checkerResponse struct {
	Success bool             `json:"success"`
	Total   int              `json:"total"`
	Results []CheckerVerdict `json:"results"`
}

func (c *checkerClient) Check(ctx context.Context, codes []string) ([]CheckerVerdict, error) {
	cfg, err := c.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}
	if cfg.CheckerURL == "" || cfg.CheckerAPIKey == "" {
		return nil, domain.ErrNotConfigured
	}

	body, err := json.Marshal(checkerRequest{InviteCodes: codes})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.CheckerURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", cfg.CheckerAPIKey)

	logger.ExternalServiceCall("checker", "batch_check", "count", len(codes))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("checker", "batch_check", err)
		return nil, domain.WrapGatewayError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("validator returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("checker", "batch_check", err)
		return nil, domain.WrapGatewayError(err)
	}

	var parsed checkerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.ExternalServiceResult("checker", "batch_check", err)
		return nil, domain.WrapGatewayError(err)
	}
	logger.ExternalServiceResult("checker", "batch_check", nil, "total", parsed.Total)
	return parsed.Results, nil
}

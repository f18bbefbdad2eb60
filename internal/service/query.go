package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/repository"
)

const minQueryTokenLength = 4

type queryService struct {
	tokenRepo repository.QueryTokenRepository
	codeRepo  repository.InviteCodeRepository
	appRepo   repository.PreApplicationRepository
}

func NewQueryService(
	tokenRepo repository.QueryTokenRepository,
	codeRepo repository.InviteCodeRepository,
	appRepo repository.PreApplicationRepository,
) QueryService {
	return &queryService{
		tokenRepo: tokenRepo,
		codeRepo:  codeRepo,
		appRepo:   appRepo,
	}
}

func (s *queryService) Resolve(ctx context.Context, token string) (*QueryResult, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if len(token) < minQueryTokenLength {
		// Cheap guard against enumeration noise: no storage read happens.
		return nil, domain.ErrInvalidToken
	}

	now := time.Now()

	// Batch tokens take precedence over application query tokens.
	batch, err := s.tokenRepo.GetByToken(ctx, token)
	if err == nil {
		if batch.ExpiresAt != nil && !batch.ExpiresAt.After(now) {
			// Permanently gone, distinct from NotFound.
			return nil, domain.ErrTokenExpired
		}
		codes, err := s.codeRepo.ListByBatchToken(ctx, batch.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to list batch codes: %w", err)
		}
		// Only a lookup that actually returned the listing counts as the
		// first successful one.
		if err := s.tokenRepo.MarkQueried(ctx, batch.ID, now); err != nil {
			return nil, fmt.Errorf("failed to mark token queried: %w", err)
		}
		view := &BatchCodesView{Codes: make([]BatchCodeView, 0, len(codes))}
		for _, c := range codes {
			view.Codes = append(view.Codes, BatchCodeView{Code: c.Code, ExpiresAt: c.ExpiresAt})
		}
		return &QueryResult{Batch: view}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	app, err := s.appRepo.GetByQueryToken(ctx, token)
	if err != nil {
		return nil, err
	}

	view := &ApplicationStatusView{
		Status:      app.Status,
		Guidance:    app.Guidance,
		SubmittedAt: app.CreatedAt,
		ReviewedAt:  app.ReviewedAt,
	}
	if app.Status == domain.PreApplicationStatusApproved && app.InviteCodeID != nil {
		code, err := s.codeRepo.GetByID(ctx, *app.InviteCodeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assigned code: %w", err)
		}
		view.Code = &code.Code
		view.CodeExpiresAt = code.ExpiresAt
	}
	return &QueryResult{Application: view}, nil
}

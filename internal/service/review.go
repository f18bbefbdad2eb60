package service

import (
	"context"
	"encoding/json"
	"fmt"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/repository"
)

type reviewService struct {
	appRepo  repository.PreApplicationRepository
	userRepo repository.UserRepository
	audit    AuditService
	notifier Notifier
}

func NewReviewService(
	appRepo repository.PreApplicationRepository,
	userRepo repository.UserRepository,
	audit AuditService,
	notifier Notifier,
) ReviewService {
	return &reviewService{
		appRepo:  appRepo,
		userRepo: userRepo,
		audit:    audit,
		notifier: notifier,
	}
}

func (s *reviewService) Decide(ctx context.Context, applicationID, reviewerID int32, decision domain.ReviewDecision, guidance string) (*domain.PreApplication, error) {
	if decision != domain.ReviewDecisionApprove && decision != domain.ReviewDecisionReject {
		return nil, domain.NewValidationError("unknown decision %q", decision)
	}

	reviewer, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviewer: %w", err)
	}
	if !reviewer.CanReview() {
		return nil, domain.ErrForbidden
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.PreApplicationStatusPending {
		// A decision is made once per submission cycle; re-deciding
		// requires a resubmission first.
		return nil, domain.ErrInvalidState
	}
	before, _ := json.Marshal(app)

	var (
		updated *domain.PreApplication
		code    *domain.InviteCode
	)
	switch decision {
	case domain.ReviewDecisionApprove:
		// Claiming the code and flipping the status happen in one
		// transaction; on ErrNoCodeAvailable the application stays PENDING.
		updated, code, err = s.appRepo.Approve(ctx, applicationID, reviewerID, guidance)
	case domain.ReviewDecisionReject:
		updated, err = s.appRepo.Reject(ctx, applicationID, reviewerID, guidance)
	}
	if err != nil {
		return nil, err
	}

	after, _ := json.Marshal(updated)
	meta := map[string]any{"decision": decision}
	if code != nil {
		meta["invite_code_id"] = code.ID
	}
	metaJSON, _ := json.Marshal(meta)
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionDecide,
		EntityType: "pre_application",
		EntityID:   applicationID,
		ActorID:    &reviewerID,
		Before:     before,
		After:      after,
		Metadata:   metaJSON,
	})

	s.notifier.NotifyDecision(ctx, updated, reviewer, code)
	return updated, nil
}

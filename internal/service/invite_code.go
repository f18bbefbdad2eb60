package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/repository"
)

const (
	maxImportBatch = 100
	maxDeleteBatch = 100
	maxCheckBatch  = 5
)

type inviteCodeService struct {
	codeRepo  repository.InviteCodeRepository
	tokenRepo repository.QueryTokenRepository
	audit     AuditService
	checker   CheckerClient
}

func NewInviteCodeService(
	codeRepo repository.InviteCodeRepository,
	tokenRepo repository.QueryTokenRepository,
	audit AuditService,
	checker CheckerClient,
) InviteCodeService {
	return &inviteCodeService{
		codeRepo:  codeRepo,
		tokenRepo: tokenRepo,
		audit:     audit,
		checker:   checker,
	}
}

func (s *inviteCodeService) Create(ctx context.Context, actorID int32, code string, expiresAt *time.Time) (*domain.InviteCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewValidationError("code must not be empty")
	}

	ic := &domain.InviteCode{Code: code, ExpiresAt: expiresAt}
	if err := s.codeRepo.Create(ctx, ic); err != nil {
		return nil, fmt.Errorf("failed to create invite code: %w", err)
	}

	after, _ := json.Marshal(ic)
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeCreate,
		EntityType: "invite_code",
		EntityID:   ic.ID,
		ActorID:    &actorID,
		After:      after,
	})
	return ic, nil
}

func (s *inviteCodeService) Import(ctx context.Context, actorID int32, codes []string, expiresAt *time.Time, withQueryToken bool, tokenExpiresAt *time.Time) ([]domain.InviteCode, string, error) {
	if len(codes) == 0 {
		return nil, "", domain.NewValidationError("no codes given")
	}
	if len(codes) > maxImportBatch {
		return nil, "", domain.NewValidationError("at most %d codes per import, got %d", maxImportBatch, len(codes))
	}

	seen := make(map[string]struct{}, len(codes))
	cleaned := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, "", domain.NewValidationError("empty code in import batch")
		}
		if _, dup := seen[c]; dup {
			return nil, "", domain.NewValidationError("duplicate code %q in import batch", c)
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}

	var (
		batchTokenID *int32
		batchToken   string
	)
	if withQueryToken {
		token := &domain.InviteCodeQueryToken{
			Token:     newQueryToken(),
			ExpiresAt: tokenExpiresAt,
		}
		if err := s.tokenRepo.Create(ctx, token); err != nil {
			return nil, "", fmt.Errorf("failed to create batch query token: %w", err)
		}
		batchTokenID = &token.ID
		batchToken = token.Token
	}

	created, err := s.codeRepo.BulkCreate(ctx, cleaned, expiresAt, batchTokenID)
	if err != nil {
		return nil, "", err
	}

	ids := make([]int32, len(created))
	for i, c := range created {
		ids[i] = c.ID
	}
	metaJSON, _ := json.Marshal(map[string]any{"count": len(created), "ids": ids})
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeImport,
		EntityType: "invite_code",
		EntityID:   0,
		ActorID:    &actorID,
		Metadata:   metaJSON,
	})
	return created, batchToken, nil
}

func (s *inviteCodeService) MarkUsed(ctx context.Context, codeID, actorID int32, used bool) (*domain.InviteCode, error) {
	code, err := s.codeRepo.GetByID(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if used == (code.UsedAt != nil) {
		// Repeat calls must not rewrite when or by whom the code was used.
		return code, nil
	}
	before, _ := json.Marshal(code)

	var (
		usedAt *time.Time
		usedBy *int32
	)
	if used {
		now := time.Now()
		usedAt = &now
		usedBy = &actorID
	}
	if err := s.codeRepo.SetUsed(ctx, codeID, usedBy, usedAt); err != nil {
		return nil, err
	}

	code.UsedAt = usedAt
	code.UsedByID = usedBy
	after, _ := json.Marshal(code)
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeMarkUsed,
		EntityType: "invite_code",
		EntityID:   codeID,
		ActorID:    &actorID,
		Before:     before,
		After:      after,
	})
	return code, nil
}

func (s *inviteCodeService) Invalidate(ctx context.Context, codeID, actorID int32) error {
	code, err := s.codeRepo.GetByID(ctx, codeID)
	if err != nil {
		return err
	}
	before, _ := json.Marshal(code)

	now := time.Now()
	affected, err := s.codeRepo.Invalidate(ctx, codeID, now)
	if err != nil {
		return err
	}
	if affected == 0 {
		// An already-used code cannot be retroactively invalidated.
		return domain.ErrAlreadyUsed
	}

	code.ExpiresAt = &now
	after, _ := json.Marshal(code)
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeInvalidate,
		EntityType: "invite_code",
		EntityID:   codeID,
		ActorID:    &actorID,
		Before:     before,
		After:      after,
	})
	return nil
}

func (s *inviteCodeService) SoftDelete(ctx context.Context, codeID, actorID int32) error {
	code, err := s.codeRepo.GetByID(ctx, codeID)
	if err != nil {
		return err
	}
	before, _ := json.Marshal(code)

	now := time.Now()
	affected, err := s.codeRepo.SoftDelete(ctx, codeID, now)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAlreadyDeleted
	}

	code.DeletedAt = &now
	after, _ := json.Marshal(code)
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeDelete,
		EntityType: "invite_code",
		EntityID:   codeID,
		ActorID:    &actorID,
		Before:     before,
		After:      after,
	})
	return nil
}

func (s *inviteCodeService) BulkSoftDelete(ctx context.Context, codeIDs []int32, actorID int32) (int32, error) {
	if len(codeIDs) == 0 {
		return 0, domain.NewValidationError("no code ids given")
	}
	if len(codeIDs) > maxDeleteBatch {
		return 0, domain.NewValidationError("at most %d codes per batch, got %d", maxDeleteBatch, len(codeIDs))
	}

	now := time.Now()
	var deleted int32
	for _, id := range codeIDs {
		affected, err := s.codeRepo.SoftDelete(ctx, id, now)
		if err != nil {
			logger.Warn("Failed to soft-delete invite code", "id", id, "error", err)
			continue
		}
		if affected == 0 {
			// Already deleted: skipped, not an error.
			continue
		}
		deleted++
		s.audit.Record(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionCodeDelete,
			EntityType: "invite_code",
			EntityID:   id,
			ActorID:    &actorID,
		})
	}
	return deleted, nil
}

func (s *inviteCodeService) IssueToEmail(ctx context.Context, codeID, actorID int32, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("email must not be empty")
	}

	affected, err := s.codeRepo.IssueToEmail(ctx, codeID, email, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidState
	}

	metaJSON, _ := json.Marshal(map[string]any{"issued_to_email": email})
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeIssue,
		EntityType: "invite_code",
		EntityID:   codeID,
		ActorID:    &actorID,
		Metadata:   metaJSON,
	})
	return nil
}

func (s *inviteCodeService) IssueToUser(ctx context.Context, codeID, actorID, userID int32) error {
	affected, err := s.codeRepo.IssueToUser(ctx, codeID, userID, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidState
	}

	metaJSON, _ := json.Marshal(map[string]any{"issued_to_user_id": userID})
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeIssue,
		EntityType: "invite_code",
		EntityID:   codeID,
		ActorID:    &actorID,
		Metadata:   metaJSON,
	})
	return nil
}

func (s *inviteCodeService) Get(ctx context.Context, codeID int32) (*domain.InviteCode, error) {
	return s.codeRepo.GetByID(ctx, codeID)
}

func (s *inviteCodeService) List(ctx context.Context, page, pageSize int32) ([]domain.InviteCode, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.codeRepo.List(ctx, page, pageSize)
}

func (s *inviteCodeService) BatchCheck(ctx context.Context, codes []string, codeMapping map[string]string) ([]domain.CheckResult, error) {
	if len(codes) == 0 {
		return nil, domain.NewValidationError("no codes given")
	}
	if len(codes) > maxCheckBatch {
		// Enforced before any external call is made.
		return nil, domain.NewValidationError("at most %d codes per check, got %d", maxCheckBatch, len(codes))
	}

	verdicts, err := s.checker.Check(ctx, codes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	results := make([]domain.CheckResult, 0, len(verdicts))
	for _, v := range verdicts {
		stored := v.InviteCode
		if mapped, ok := codeMapping[v.InviteCode]; ok {
			stored = mapped
		}
		// Update-by-code is deliberately non-unique: duplicate code strings
		// all receive the verdict.
		updated, err := s.codeRepo.UpdateCheckResult(ctx, stored, v.Valid, v.Message, now)
		if err != nil {
			logger.Warn("Failed to store check result", "code", stored, "error", err)
			continue
		}
		results = append(results, domain.CheckResult{
			Code:    stored,
			Valid:   v.Valid,
			Message: v.Message,
			Updated: updated,
		})
	}
	return results, nil
}

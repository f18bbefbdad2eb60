package service

import (
	"context"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/repository"
	"gatehouse-backend/internal/settings"
)

type auditService struct {
	repo     repository.AuditRepository
	settings settings.Provider
}

func NewAuditService(repo repository.AuditRepository, settingsProvider settings.Provider) AuditService {
	return &auditService{repo: repo, settings: settingsProvider}
}

// Record writes an audit entry. Writes are silently dropped when auditing is
// disabled and merely logged on failure. Correctness of the calling operation
// never depends on the audit trail.
func (s *auditService) Record(ctx context.Context, entry *domain.AuditEntry) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		logger.Warn("Audit skipped: settings unavailable", "action", entry.Action, "error", err)
		return
	}
	if !cfg.AuditEnabled {
		return
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("Failed to write audit entry", "action", entry.Action,
			"entity_type", entry.EntityType, "entity_id", entry.EntityID, "error", err)
	}
}

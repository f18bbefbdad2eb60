package postgres

import (
	"context"
	"database/sql"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query := `INSERT INTO audit_logs (action, entity_type, entity_id, actor_id, before, after, metadata, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		entry.Action, entry.EntityType, entry.EntityID, entry.ActorID,
		nullableJSON(entry.Before), nullableJSON(entry.After), nullableJSON(entry.Metadata), time.Now(),
	).Scan(&entry.ID)
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

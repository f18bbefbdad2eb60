package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/repository"

	"github.com/lib/pq"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get reads the single mutable settings row. A missing row yields defaults so
// a fresh database behaves sensibly before staff first save settings.
func (r *settingsRepository) Get(ctx context.Context) (*domain.SiteSettings, error) {
	s := &domain.SiteSettings{}
	var domains pq.StringArray
	query := `SELECT id, max_resubmit_count, allowed_email_domains, checker_url, checker_api_key, audit_enabled, updated_at
	          FROM site_settings WHERE id = 1`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ID, &s.MaxResubmitCount, &domains, &s.CheckerURL, &s.CheckerAPIKey, &s.AuditEnabled, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SiteSettings{
			ID:               1,
			MaxResubmitCount: domain.DefaultMaxResubmitCount,
			AuditEnabled:     true,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	s.AllowedEmailDomains = domains
	return s, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *domain.SiteSettings) error {
	query := `INSERT INTO site_settings (id, max_resubmit_count, allowed_email_domains, checker_url, checker_api_key, audit_enabled, updated_at)
	          VALUES (1, $1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO UPDATE SET
	            max_resubmit_count = EXCLUDED.max_resubmit_count,
	            allowed_email_domains = EXCLUDED.allowed_email_domains,
	            checker_url = EXCLUDED.checker_url,
	            checker_api_key = EXCLUDED.checker_api_key,
	            audit_enabled = EXCLUDED.audit_enabled,
	            updated_at = EXCLUDED.updated_at`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		settings.MaxResubmitCount, pq.Array(settings.AllowedEmailDomains),
		settings.CheckerURL, settings.CheckerAPIKey, settings.AuditEnabled, now)
	if err == nil {
		settings.ID = 1
		settings.UpdatedAt = now
	}
	return err
}

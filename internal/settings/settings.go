// Package settings exposes the mutable site settings record to the rest of
// the application. Components read through Provider.Get on each use so staff
// changes take effect without a redeploy.
package settings

import (
	"context"
	"sync"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/repository"
)

type Provider interface {
	Get(ctx context.Context) (*domain.SiteSettings, error)
}

type dbProvider struct {
	repo repository.SettingsRepository
	ttl  time.Duration

	mu       sync.Mutex
	cached   *domain.SiteSettings
	cachedAt time.Time
}

// NewProvider wraps the settings repository with a short-lived cache. A ttl
// of zero disables caching entirely.
func NewProvider(repo repository.SettingsRepository, ttl time.Duration) Provider {
	return &dbProvider{repo: repo, ttl: ttl}
}

func (p *dbProvider) Get(ctx context.Context) (*domain.SiteSettings, error) {
	p.mu.Lock()
	if p.cached != nil && p.ttl > 0 && time.Since(p.cachedAt) < p.ttl {
		s := p.cached
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	s, err := p.repo.Get(ctx)
	if err != nil {
		// Serve the stale copy rather than failing the request outright.
		p.mu.Lock()
		stale := p.cached
		p.mu.Unlock()
		if stale != nil {
			logger.Warn("Serving stale site settings", "error", err)
			return stale, nil
		}
		return nil, err
	}

	p.mu.Lock()
	p.cached = s
	p.cachedAt = time.Now()
	p.mu.Unlock()
	return s, nil
}

// Static returns a provider that always yields the given settings. Used in
// tests and tools that must not touch the database.
func Static(s *domain.SiteSettings) Provider {
	return staticProvider{s: s}
}

type staticProvider struct {
	s *domain.SiteSettings
}

func (p staticProvider) Get(context.Context) (*domain.SiteSettings, error) {
	return p.s, nil
}

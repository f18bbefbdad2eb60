package service

import (
	"context"
	"errors"
	"testing"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/settings"

	"github.com/stretchr/testify/mock"
)

func TestAuditService_Record(t *testing.T) {
	ctx := context.Background()
	entry := &domain.AuditEntry{Action: domain.AuditActionSubmit, EntityType: "pre_application", EntityID: 1}

	t.Run("Disabled drops silently", func(t *testing.T) {
		repo := new(MockAuditRepo)
		svc := NewAuditService(repo, settings.Static(&domain.SiteSettings{AuditEnabled: false}))

		svc.Record(ctx, entry)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Enabled writes", func(t *testing.T) {
		repo := new(MockAuditRepo)
		svc := NewAuditService(repo, settings.Static(&domain.SiteSettings{AuditEnabled: true}))

		repo.On("Create", ctx, entry).Return(nil).Once()
		svc.Record(ctx, entry)
		repo.AssertExpectations(t)
	})

	t.Run("Write failure is swallowed", func(t *testing.T) {
		repo := new(MockAuditRepo)
		svc := NewAuditService(repo, settings.Static(&domain.SiteSettings{AuditEnabled: true}))

		repo.On("Create", ctx, entry).Return(errors.New("db down")).Once()
		svc.Record(ctx, entry)
	})
}

package service

import (
	"context"
	"errors"
	"testing"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func openSettings() settings.Provider {
	return settings.Static(&domain.SiteSettings{
		MaxResubmitCount: 2,
		AuditEnabled:     true,
	})
}

func TestPreApplicationService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		audit := &recordingAudit{}
		svc := NewPreApplicationService(appRepo, openSettings(), audit)

		appRepo.On("GetActiveByUser", ctx, int32(7)).Return(nil, nil).Once()
		appRepo.On("Create", ctx, mock.MatchedBy(func(a *domain.PreApplication) bool {
			return a.UserID == 7 &&
				a.Email == "new@example.org" &&
				a.Status == domain.PreApplicationStatusPending &&
				a.ResubmitCount == 0 &&
				len(a.QueryToken) == 32
		})).Return(nil).Once()

		app, err := svc.Submit(ctx, 7, "  New@Example.org ", "my essay", "friend", "general")
		assert.NoError(t, err)
		assert.Equal(t, domain.PreApplicationStatusPending, app.Status)
		assert.Len(t, audit.entries, 1)
		assert.Equal(t, domain.AuditActionSubmit, audit.entries[0].Action)
		appRepo.AssertExpectations(t)
	})

	t.Run("Domain not allowed", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		cfg := settings.Static(&domain.SiteSettings{AllowedEmailDomains: []string{"example.org"}})
		svc := NewPreApplicationService(appRepo, cfg, &recordingAudit{})

		_, err := svc.Submit(ctx, 7, "user@other.net", "essay", "", "")
		var appErr *domain.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeValidationError, appErr.Code)
		appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Active application blocks a new one", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		svc := NewPreApplicationService(appRepo, openSettings(), &recordingAudit{})

		active := &domain.PreApplication{ID: 3, UserID: 7, Status: domain.PreApplicationStatusApproved}
		appRepo.On("GetActiveByUser", ctx, int32(7)).Return(active, nil).Once()

		_, err := svc.Submit(ctx, 7, "user@example.org", "essay", "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Empty essay", func(t *testing.T) {
		svc := NewPreApplicationService(new(MockPreApplicationRepo), openSettings(), &recordingAudit{})
		_, err := svc.Submit(ctx, 7, "user@example.org", "   ", "", "")
		var appErr *domain.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeValidationError, appErr.Code)
	})
}

func TestPreApplicationService_Resubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success passes settings bound to repository", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		audit := &recordingAudit{}
		svc := NewPreApplicationService(appRepo, openSettings(), audit)

		current := &domain.PreApplication{ID: 5, UserID: 7, Status: domain.PreApplicationStatusRejected, ResubmitCount: 1}
		updated := &domain.PreApplication{ID: 5, UserID: 7, Status: domain.PreApplicationStatusPending, ResubmitCount: 2}
		appRepo.On("GetByID", ctx, int32(5)).Return(current, nil).Once()
		appRepo.On("Resubmit", ctx, int32(5), "revised essay", int32(2)).Return(updated, nil).Once()

		got, err := svc.Resubmit(ctx, 5, 7, "revised essay")
		assert.NoError(t, err)
		assert.Equal(t, int32(2), got.ResubmitCount)
		assert.Len(t, audit.entries, 1)
		assert.Equal(t, domain.AuditActionResubmit, audit.entries[0].Action)
		appRepo.AssertExpectations(t)
	})

	t.Run("Not owner", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		svc := NewPreApplicationService(appRepo, openSettings(), &recordingAudit{})

		current := &domain.PreApplication{ID: 5, UserID: 7, Status: domain.PreApplicationStatusRejected}
		appRepo.On("GetByID", ctx, int32(5)).Return(current, nil).Once()

		_, err := svc.Resubmit(ctx, 5, 99, "essay")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		appRepo.AssertNotCalled(t, "Resubmit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Approved application cannot be resubmitted", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		svc := NewPreApplicationService(appRepo, openSettings(), &recordingAudit{})

		current := &domain.PreApplication{ID: 5, UserID: 7, Status: domain.PreApplicationStatusApproved}
		appRepo.On("GetByID", ctx, int32(5)).Return(current, nil).Once()

		_, err := svc.Resubmit(ctx, 5, 7, "essay")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Limit reached", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		svc := NewPreApplicationService(appRepo, openSettings(), &recordingAudit{})

		current := &domain.PreApplication{ID: 5, UserID: 7, Status: domain.PreApplicationStatusRejected, ResubmitCount: 2}
		appRepo.On("GetByID", ctx, int32(5)).Return(current, nil).Once()

		_, err := svc.Resubmit(ctx, 5, 7, "essay")
		assert.ErrorIs(t, err, domain.ErrResubmitLimitExceeded)
		appRepo.AssertNotCalled(t, "Resubmit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPreApplicationService_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("Best effort continues after a failure", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		audit := &recordingAudit{}
		svc := NewPreApplicationService(appRepo, openSettings(), audit)

		appRepo.On("Archive", ctx, int32(1)).Return(domain.PreApplicationStatusRejected, nil).Once()
		appRepo.On("Archive", ctx, int32(2)).Return(domain.PreApplicationStatus(""), errors.New("boom")).Once()
		appRepo.On("Archive", ctx, int32(3)).Return(domain.PreApplicationStatusPending, nil).Once()

		archived, err := svc.Archive(ctx, []int32{1, 2, 3}, 9)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), archived)
		assert.Len(t, audit.entries, 2)
		appRepo.AssertExpectations(t)
	})

	t.Run("Batch bound", func(t *testing.T) {
		svc := NewPreApplicationService(new(MockPreApplicationRepo), openSettings(), &recordingAudit{})
		ids := make([]int32, 101)
		_, err := svc.Archive(ctx, ids, 9)
		var appErr *domain.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeValidationError, appErr.Code)
	})
}

func TestPreApplicationService_MarkCodeSent(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires approved status", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		svc := NewPreApplicationService(appRepo, openSettings(), &recordingAudit{})

		app := &domain.PreApplication{ID: 4, Status: domain.PreApplicationStatusPending}
		appRepo.On("GetByID", ctx, int32(4)).Return(app, nil).Once()

		err := svc.MarkCodeSent(ctx, 4, 9)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		appRepo.AssertNotCalled(t, "MarkCodeSent", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		appRepo := new(MockPreApplicationRepo)
		audit := &recordingAudit{}
		svc := NewPreApplicationService(appRepo, openSettings(), audit)

		app := &domain.PreApplication{ID: 4, Status: domain.PreApplicationStatusApproved}
		appRepo.On("GetByID", ctx, int32(4)).Return(app, nil).Once()
		appRepo.On("MarkCodeSent", ctx, int32(4)).Return(nil).Once()

		err := svc.MarkCodeSent(ctx, 4, 9)
		assert.NoError(t, err)
		assert.Len(t, audit.entries, 1)
		appRepo.AssertExpectations(t)
	})
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/repository"
	"gatehouse-backend/internal/settings"

	"github.com/google/uuid"
)

const maxArchiveBatch = 100

type preApplicationService struct {
	appRepo  repository.PreApplicationRepository
	settings settings.Provider
	audit    AuditService
}

func NewPreApplicationService(
	appRepo repository.PreApplicationRepository,
	settingsProvider settings.Provider,
	audit AuditService,
) PreApplicationService {
	return &preApplicationService{
		appRepo:  appRepo,
		settings: settingsProvider,
		audit:    audit,
	}
}

// newQueryToken produces an unguessable uppercase token for anonymous status
// lookup. Stable across resubmissions.
func newQueryToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}

func (s *preApplicationService) Submit(ctx context.Context, userID int32, email, essay, source, group string) (*domain.PreApplication, error) {
	email = normalizeEmail(email)
	if email == "" || emailDomain(email) == "" {
		return nil, domain.NewValidationError("register email is malformed")
	}
	if strings.TrimSpace(essay) == "" {
		return nil, domain.NewValidationError("essay must not be empty")
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}
	if !cfg.EmailDomainAllowed(emailDomain(email)) {
		return nil, domain.NewValidationError("email domain %q is not accepted", emailDomain(email))
	}

	// One active application per user: a PENDING or APPROVED application
	// blocks a new submission.
	active, err := s.appRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing applications: %w", err)
	}
	if active != nil {
		return nil, &domain.AppError{Code: domain.CodeInvalidState, Message: "an active application already exists"}
	}

	app := &domain.PreApplication{
		UserID:         userID,
		Email:          email,
		Essay:          essay,
		Source:         source,
		RequestedGroup: group,
		Status:         domain.PreApplicationStatusPending,
		QueryToken:     newQueryToken(),
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create pre-application: %w", err)
	}

	after, _ := json.Marshal(app)
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionSubmit,
		EntityType: "pre_application",
		EntityID:   app.ID,
		ActorID:    &userID,
		After:      after,
	})
	return app, nil
}

func (s *preApplicationService) Resubmit(ctx context.Context, applicationID, actorID int32, essay string) (*domain.PreApplication, error) {
	if strings.TrimSpace(essay) == "" {
		return nil, domain.NewValidationError("essay must not be empty")
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	if !app.Resubmittable() {
		return nil, domain.ErrInvalidState
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}
	maxResubmit := cfg.MaxResubmitCount
	if maxResubmit <= 0 {
		maxResubmit = domain.DefaultMaxResubmitCount
	}
	if app.ResubmitCount >= maxResubmit {
		return nil, domain.ErrResubmitLimitExceeded
	}

	before, _ := json.Marshal(app)

	// State and counter are re-verified under a row lock inside the
	// transaction; the pre-checks above only give callers an early answer.
	updated, err := s.appRepo.Resubmit(ctx, applicationID, essay, maxResubmit)
	if err != nil {
		return nil, err
	}

	after, _ := json.Marshal(updated)
	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionResubmit,
		EntityType: "pre_application",
		EntityID:   applicationID,
		ActorID:    &actorID,
		Before:     before,
		After:      after,
	})
	return updated, nil
}

func (s *preApplicationService) Archive(ctx context.Context, applicationIDs []int32, actorID int32) (int32, error) {
	if len(applicationIDs) == 0 {
		return 0, domain.NewValidationError("no application ids given")
	}
	if len(applicationIDs) > maxArchiveBatch {
		return 0, domain.NewValidationError("at most %d applications per batch, got %d", maxArchiveBatch, len(applicationIDs))
	}

	var archived int32
	for _, id := range applicationIDs {
		before, err := s.appRepo.Archive(ctx, id)
		if err != nil {
			// Best-effort batch: log and continue with the remaining ids.
			logger.Warn("Failed to archive pre-application", "id", id, "error", err)
			continue
		}
		archived++

		beforeJSON, _ := json.Marshal(map[string]any{"status": before})
		afterJSON, _ := json.Marshal(map[string]any{"status": domain.PreApplicationStatusArchived})
		s.audit.Record(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionArchive,
			EntityType: "pre_application",
			EntityID:   id,
			ActorID:    &actorID,
			Before:     beforeJSON,
			After:      afterJSON,
		})
	}
	return archived, nil
}

func (s *preApplicationService) Get(ctx context.Context, id int32) (*domain.PreApplication, []domain.PreApplicationVersion, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	versions, err := s.appRepo.ListVersions(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return app, versions, nil
}

func (s *preApplicationService) GetOwn(ctx context.Context, userID int32) (*domain.PreApplication, error) {
	return s.appRepo.GetLatestByUser(ctx, userID)
}

func (s *preApplicationService) ListByStatus(ctx context.Context, status domain.PreApplicationStatus, page, pageSize int32) ([]domain.PreApplication, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.appRepo.ListByStatus(ctx, status, page, pageSize)
}

func (s *preApplicationService) MarkCodeSent(ctx context.Context, id, actorID int32) error {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if app.Status != domain.PreApplicationStatusApproved {
		return domain.ErrInvalidState
	}

	if err := s.appRepo.MarkCodeSent(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditActionCodeSent,
		EntityType: "pre_application",
		EntityID:   id,
		ActorID:    &actorID,
	})
	return nil
}

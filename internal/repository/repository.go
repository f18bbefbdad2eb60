package repository

import (
	"context"
	"time"

	"gatehouse-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type PreApplicationRepository interface {
	Create(ctx context.Context, app *domain.PreApplication) error
	GetByID(ctx context.Context, id int32) (*domain.PreApplication, error)
	GetByQueryToken(ctx context.Context, token string) (*domain.PreApplication, error)
	// GetActiveByUser returns the user's PENDING or APPROVED application, or
	// nil when none exists.
	GetActiveByUser(ctx context.Context, userID int32) (*domain.PreApplication, error)
	GetLatestByUser(ctx context.Context, userID int32) (*domain.PreApplication, error)
	ListByStatus(ctx context.Context, status domain.PreApplicationStatus, page, pageSize int32) ([]domain.PreApplication, int32, error)
	ListVersions(ctx context.Context, appID int32) ([]domain.PreApplicationVersion, error)

	// Resubmit atomically snapshots the live record into a new version and
	// resets it to PENDING with the new essay. State and counter are
	// re-verified under a row lock; maxResubmit bounds the counter.
	Resubmit(ctx context.Context, id int32, essay string, maxResubmit int32) (*domain.PreApplication, error)

	// Reject transitions a PENDING application to REJECTED inside one
	// transaction, snapshotting the prior state first.
	Reject(ctx context.Context, id, reviewerID int32, guidance string) (*domain.PreApplication, error)

	// Approve transitions a PENDING application to APPROVED and atomically
	// claims one available invite code for it. Returns the claimed code.
	// Fails with domain.ErrNoCodeAvailable when the pool is exhausted, in
	// which case nothing is committed.
	Approve(ctx context.Context, id, reviewerID int32, guidance string) (*domain.PreApplication, *domain.InviteCode, error)

	// Archive transitions a single application to ARCHIVED from any status
	// and returns its prior status.
	Archive(ctx context.Context, id int32) (domain.PreApplicationStatus, error)

	// MarkCodeSent records staff confirmation of out-of-band code delivery.
	// Idempotent: the timestamp is set only on the first call.
	MarkCodeSent(ctx context.Context, id int32) error
}

type InviteCodeRepository interface {
	Create(ctx context.Context, code *domain.InviteCode) error
	BulkCreate(ctx context.Context, codes []string, expiresAt *time.Time, batchTokenID *int32) ([]domain.InviteCode, error)
	GetByID(ctx context.Context, id int32) (*domain.InviteCode, error)
	List(ctx context.Context, page, pageSize int32) ([]domain.InviteCode, int32, error)

	// SetUsed toggles used_at/used_by_id. Unmarking clears both fields.
	SetUsed(ctx context.Context, id int32, usedByID *int32, usedAt *time.Time) error

	// Invalidate sets expires_at = now only while the code is unused.
	// Returns rows affected; zero means the code was already used.
	Invalidate(ctx context.Context, id int32, now time.Time) (int64, error)

	// SoftDelete sets deleted_at = now only when not already set. Returns
	// rows affected; zero means already deleted.
	SoftDelete(ctx context.Context, id int32, now time.Time) (int64, error)

	// IssueToEmail / IssueToUser bind an available code to a direct
	// recipient. Conditional on full availability; zero rows affected means
	// the code is no longer available.
	IssueToEmail(ctx context.Context, id int32, email string, now time.Time) (int64, error)
	IssueToUser(ctx context.Context, id int32, userID int32, now time.Time) (int64, error)

	// UpdateCheckResult writes an external validator verdict by code string.
	// Deliberately non-unique: duplicate code strings are all updated.
	UpdateCheckResult(ctx context.Context, code string, valid *bool, message string, checkedAt time.Time) (int64, error)

	// ListStaleChecked returns codes whose validator verdict is missing or
	// older than the cutoff, oldest first.
	ListStaleChecked(ctx context.Context, cutoff time.Time, limit int32) ([]domain.InviteCode, error)

	// ListByBatchToken returns only codes still presentable to an anonymous
	// querier: unused, undeleted and unexpired.
	ListByBatchToken(ctx context.Context, batchTokenID int32, now time.Time) ([]domain.InviteCode, error)
}

type QueryTokenRepository interface {
	Create(ctx context.Context, token *domain.InviteCodeQueryToken) error
	GetByToken(ctx context.Context, token string) (*domain.InviteCodeQueryToken, error)
	// MarkQueried sets queried_at once; later calls are no-ops.
	MarkQueried(ctx context.Context, id int32, at time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.SiteSettings, error)
	Update(ctx context.Context, settings *domain.SiteSettings) error
}

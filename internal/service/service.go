package service

import (
	"context"
	"time"

	"gatehouse-backend/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// BulkCreateUsers creates up to 100 accounts with generated passwords.
	// Best-effort: a failure on one email does not stop the rest. Returns
	// the created users paired with their one-time plaintext passwords.
	BulkCreateUsers(ctx context.Context, actorID int32, emails []string, role domain.UserRole) ([]CreatedUser, error)
}

// CreatedUser pairs a new account with its generated one-time password.
type CreatedUser struct {
	User     *domain.User `json:"user"`
	Password string       `json:"password"`
}

type PreApplicationService interface {
	Submit(ctx context.Context, userID int32, email, essay, source, group string) (*domain.PreApplication, error)
	Resubmit(ctx context.Context, applicationID, actorID int32, essay string) (*domain.PreApplication, error)
	// Archive transitions each id individually; a failure on one id does not
	// roll back the others. Returns the number archived.
	Archive(ctx context.Context, applicationIDs []int32, actorID int32) (int32, error)
	Get(ctx context.Context, id int32) (*domain.PreApplication, []domain.PreApplicationVersion, error)
	GetOwn(ctx context.Context, userID int32) (*domain.PreApplication, error)
	ListByStatus(ctx context.Context, status domain.PreApplicationStatus, page, pageSize int32) ([]domain.PreApplication, int32, error)
	MarkCodeSent(ctx context.Context, id, actorID int32) error
}

type ReviewService interface {
	// Decide executes the central state transition. On APPROVE one available
	// invite code is claimed atomically with the status change; on exhaustion
	// the application stays PENDING and ErrNoCodeAvailable is returned.
	Decide(ctx context.Context, applicationID, reviewerID int32, decision domain.ReviewDecision, guidance string) (*domain.PreApplication, error)
}

type InviteCodeService interface {
	Create(ctx context.Context, actorID int32, code string, expiresAt *time.Time) (*domain.InviteCode, error)
	// Import creates up to 100 codes in one batch. When withQueryToken is
	// set, a batch-level query token covering the new codes is returned.
	Import(ctx context.Context, actorID int32, codes []string, expiresAt *time.Time, withQueryToken bool, tokenExpiresAt *time.Time) ([]domain.InviteCode, string, error)
	MarkUsed(ctx context.Context, codeID, actorID int32, used bool) (*domain.InviteCode, error)
	Invalidate(ctx context.Context, codeID, actorID int32) error
	SoftDelete(ctx context.Context, codeID, actorID int32) error
	// BulkSoftDelete deletes up to 100 codes, skipping already-deleted ones.
	// Returns the count actually affected.
	BulkSoftDelete(ctx context.Context, codeIDs []int32, actorID int32) (int32, error)
	IssueToEmail(ctx context.Context, codeID, actorID int32, email string) error
	IssueToUser(ctx context.Context, codeID, actorID, userID int32) error
	Get(ctx context.Context, codeID int32) (*domain.InviteCode, error)
	List(ctx context.Context, page, pageSize int32) ([]domain.InviteCode, int32, error)
	// BatchCheck forwards 1..5 codes to the external validator and reconciles
	// the verdicts into storage. codeMapping translates displayed code
	// variants back to the stored strings.
	BatchCheck(ctx context.Context, codes []string, codeMapping map[string]string) ([]domain.CheckResult, error)
}

// QueryResult is the resolver's union response: exactly one of Application or
// Batch is set.
type QueryResult struct {
	Application *ApplicationStatusView `json:"application,omitempty"`
	Batch       *BatchCodesView        `json:"batch,omitempty"`
}

// ApplicationStatusView exposes only the fields an anonymous querier may see.
type ApplicationStatusView struct {
	Status        domain.PreApplicationStatus `json:"status"`
	Guidance      *string                     `json:"guidance,omitempty"`
	Code          *string                     `json:"code,omitempty"`
	CodeExpiresAt *time.Time                  `json:"code_expires_at,omitempty"`
	SubmittedAt   time.Time                   `json:"submitted_at"`
	ReviewedAt    *time.Time                  `json:"reviewed_at,omitempty"`
}

// BatchCodesView lists only unused, unexpired codes from a bulk issuance.
type BatchCodesView struct {
	Codes []BatchCodeView `json:"codes"`
}

type BatchCodeView struct {
	Code      string     `json:"code"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type QueryService interface {
	// Resolve looks a token up case-insensitively against batch tokens first,
	// then application query tokens. Tokens shorter than 4 characters are
	// rejected before any storage read.
	Resolve(ctx context.Context, token string) (*QueryResult, error)
}

// AuditService records mutating operations. Writes are best-effort and gated
// by the audit-enabled site setting; callers must not depend on them.
type AuditService interface {
	Record(ctx context.Context, entry *domain.AuditEntry)
}

// Notifier composes and delivers decision notifications. Composition is
// deterministic; delivery is best-effort.
type Notifier interface {
	NotifyDecision(ctx context.Context, app *domain.PreApplication, reviewer *domain.User, code *domain.InviteCode)
}

// EmailSender is the outbound mail collaborator boundary.
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

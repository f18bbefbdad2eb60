package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/repository"
)

type preApplicationRepository struct {
	db *sql.DB
}

func NewPreApplicationRepository(db *sql.DB) repository.PreApplicationRepository {
	return &preApplicationRepository{db: db}
}

const preApplicationColumns = `id, user_id, email, essay, source, requested_group, guidance, status,
	resubmit_count, query_token, invite_code_id, reviewed_by_id, reviewed_at,
	code_sent, code_sent_at, created_at, updated_at`

func scanPreApplication(row interface{ Scan(...any) error }) (*domain.PreApplication, error) {
	app := &domain.PreApplication{}
	err := row.Scan(&app.ID, &app.UserID, &app.Email, &app.Essay, &app.Source, &app.RequestedGroup,
		&app.Guidance, &app.Status, &app.ResubmitCount, &app.QueryToken, &app.InviteCodeID,
		&app.ReviewedByID, &app.ReviewedAt, &app.CodeSent, &app.CodeSentAt, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *preApplicationRepository) Create(ctx context.Context, app *domain.PreApplication) error {
	query := `INSERT INTO pre_applications (user_id, email, essay, source, requested_group, status, resubmit_count, query_token, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $8) RETURNING id, created_at, updated_at`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		app.UserID, app.Email, app.Essay, app.Source, app.RequestedGroup, app.Status, app.QueryToken, now,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
}

func (r *preApplicationRepository) GetByID(ctx context.Context, id int32) (*domain.PreApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM pre_applications WHERE id = $1`, preApplicationColumns)
	app, err := scanPreApplication(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("pre-application", id)
	}
	return app, err
}

func (r *preApplicationRepository) GetByQueryToken(ctx context.Context, token string) (*domain.PreApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM pre_applications WHERE query_token = $1`, preApplicationColumns)
	app, err := scanPreApplication(r.db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return app, err
}

func (r *preApplicationRepository) GetActiveByUser(ctx context.Context, userID int32) (*domain.PreApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM pre_applications
	          WHERE user_id = $1 AND status IN ('PENDING', 'APPROVED')
	          ORDER BY id DESC LIMIT 1`, preApplicationColumns)
	app, err := scanPreApplication(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return app, err
}

func (r *preApplicationRepository) GetLatestByUser(ctx context.Context, userID int32) (*domain.PreApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM pre_applications WHERE user_id = $1 ORDER BY id DESC LIMIT 1`, preApplicationColumns)
	app, err := scanPreApplication(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return app, err
}

func (r *preApplicationRepository) ListByStatus(ctx context.Context, status domain.PreApplicationStatus, page, pageSize int32) ([]domain.PreApplication, int32, error) {
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM pre_applications WHERE status = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`, preApplicationColumns)
	rows, err := r.db.QueryContext(ctx, query, status, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []domain.PreApplication
	for rows.Next() {
		app, err := scanPreApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int32
	countQuery := `SELECT count(*) FROM pre_applications WHERE status = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *preApplicationRepository) ListVersions(ctx context.Context, appID int32) ([]domain.PreApplicationVersion, error) {
	query := `SELECT id, pre_application_id, version, essay, guidance, status, reviewed_by_id, created_at
	          FROM pre_application_versions WHERE pre_application_id = $1 ORDER BY version DESC`
	rows, err := r.db.QueryContext(ctx, query, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []domain.PreApplicationVersion
	for rows.Next() {
		var v domain.PreApplicationVersion
		if err := rows.Scan(&v.ID, &v.PreApplicationID, &v.Version, &v.Essay, &v.Guidance, &v.Status, &v.ReviewedByID, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// snapshotVersion copies the live record into a new version row with the next
// monotonic version number. Must run inside the caller's transaction while the
// application row is locked.
func snapshotVersion(ctx context.Context, tx *sql.Tx, appID int32, now time.Time) error {
	query := `INSERT INTO pre_application_versions (pre_application_id, version, essay, guidance, status, reviewed_by_id, created_at)
	          SELECT id,
	                 COALESCE((SELECT MAX(version) FROM pre_application_versions WHERE pre_application_id = $1), 0) + 1,
	                 essay, guidance, status, reviewed_by_id, $2
	          FROM pre_applications WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, appID, now)
	return err
}

// lockForTransition loads the application under FOR UPDATE so concurrent
// resubmissions and review decisions on the same row serialize.
func lockForTransition(ctx context.Context, tx *sql.Tx, id int32) (*domain.PreApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM pre_applications WHERE id = $1 FOR UPDATE`, preApplicationColumns)
	app, err := scanPreApplication(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("pre-application", id)
	}
	return app, err
}

func (r *preApplicationRepository) Resubmit(ctx context.Context, id int32, essay string, maxResubmit int32) (*domain.PreApplication, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	app, err := lockForTransition(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !app.Resubmittable() {
		return nil, domain.ErrInvalidState
	}
	if app.ResubmitCount >= maxResubmit {
		return nil, domain.ErrResubmitLimitExceeded
	}

	now := time.Now()
	if err := snapshotVersion(ctx, tx, id, now); err != nil {
		return nil, fmt.Errorf("failed to snapshot version: %w", err)
	}

	update := `UPDATE pre_applications
	           SET essay = $1, status = 'PENDING', guidance = NULL, reviewed_at = NULL, reviewed_by_id = NULL,
	               resubmit_count = resubmit_count + 1, updated_at = $2
	           WHERE id = $3`
	if _, err := tx.ExecContext(ctx, update, essay, now, id); err != nil {
		return nil, fmt.Errorf("failed to update pre-application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	app.Essay = essay
	app.Status = domain.PreApplicationStatusPending
	app.Guidance = nil
	app.ReviewedAt = nil
	app.ReviewedByID = nil
	app.ResubmitCount++
	app.UpdatedAt = now
	return app, nil
}

func (r *preApplicationRepository) Reject(ctx context.Context, id, reviewerID int32, guidance string) (*domain.PreApplication, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	app, err := lockForTransition(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.PreApplicationStatusPending {
		return nil, domain.ErrInvalidState
	}

	now := time.Now()
	if err := snapshotVersion(ctx, tx, id, now); err != nil {
		return nil, fmt.Errorf("failed to snapshot version: %w", err)
	}

	update := `UPDATE pre_applications
	           SET status = 'REJECTED', guidance = $1, reviewed_at = $2, reviewed_by_id = $3, updated_at = $2
	           WHERE id = $4`
	if _, err := tx.ExecContext(ctx, update, guidance, now, reviewerID, id); err != nil {
		return nil, fmt.Errorf("failed to update pre-application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	app.Status = domain.PreApplicationStatusRejected
	app.Guidance = &guidance
	app.ReviewedAt = &now
	app.ReviewedByID = &reviewerID
	app.UpdatedAt = now
	return app, nil
}

// claimQuery selects one available code and locks it. SKIP LOCKED makes
// concurrent approvals pick distinct rows instead of blocking; the soonest
// expiring code is consumed first, never-expiring codes last.
const claimQuery = `SELECT ic.id, ic.code, ic.expires_at FROM invite_codes ic
	WHERE ic.used_at IS NULL
	  AND ic.deleted_at IS NULL
	  AND (ic.expires_at IS NULL OR ic.expires_at > $1)
	  AND ic.issued_to_email IS NULL
	  AND ic.issued_to_user_id IS NULL
	  AND NOT EXISTS (SELECT 1 FROM pre_applications pa WHERE pa.invite_code_id = ic.id)
	ORDER BY ic.expires_at ASC NULLS LAST, ic.id ASC
	LIMIT 1
	FOR UPDATE OF ic SKIP LOCKED`

func (r *preApplicationRepository) Approve(ctx context.Context, id, reviewerID int32, guidance string) (*domain.PreApplication, *domain.InviteCode, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	app, err := lockForTransition(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if app.Status != domain.PreApplicationStatusPending {
		return nil, nil, domain.ErrInvalidState
	}

	now := time.Now()
	code := &domain.InviteCode{}
	err = tx.QueryRowContext(ctx, claimQuery, now).Scan(&code.ID, &code.Code, &code.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrNoCodeAvailable
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim invite code: %w", err)
	}

	if err := snapshotVersion(ctx, tx, id, now); err != nil {
		return nil, nil, fmt.Errorf("failed to snapshot version: %w", err)
	}

	update := `UPDATE pre_applications
	           SET status = 'APPROVED', guidance = $1, reviewed_at = $2, reviewed_by_id = $3, invite_code_id = $4, updated_at = $2
	           WHERE id = $5`
	if _, err := tx.ExecContext(ctx, update, guidance, now, reviewerID, code.ID, id); err != nil {
		return nil, nil, fmt.Errorf("failed to update pre-application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	app.Status = domain.PreApplicationStatusApproved
	app.Guidance = &guidance
	app.ReviewedAt = &now
	app.ReviewedByID = &reviewerID
	app.InviteCodeID = &code.ID
	app.UpdatedAt = now
	code.AssignedToApplicationID = &app.ID
	return app, code, nil
}

func (r *preApplicationRepository) Archive(ctx context.Context, id int32) (domain.PreApplicationStatus, error) {
	var before domain.PreApplicationStatus
	query := `UPDATE pre_applications pa SET status = 'ARCHIVED', updated_at = $1
	          FROM (SELECT id, status FROM pre_applications WHERE id = $2 FOR UPDATE) prev
	          WHERE pa.id = prev.id
	          RETURNING prev.status`
	err := r.db.QueryRowContext(ctx, query, time.Now(), id).Scan(&before)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NewNotFoundError("pre-application", id)
	}
	return before, err
}

func (r *preApplicationRepository) MarkCodeSent(ctx context.Context, id int32) error {
	query := `UPDATE pre_applications SET code_sent = TRUE, code_sent_at = COALESCE(code_sent_at, $1), updated_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NewNotFoundError("pre-application", id)
	}
	return nil
}

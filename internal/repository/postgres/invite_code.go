package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/repository"

	"github.com/lib/pq"
)

type inviteCodeRepository struct {
	db *sql.DB
}

func NewInviteCodeRepository(db *sql.DB) repository.InviteCodeRepository {
	return &inviteCodeRepository{db: db}
}

const inviteCodeColumns = `ic.id, ic.code, ic.used_at, ic.used_by_id, ic.expires_at, ic.deleted_at,
	ic.issued_to_email, ic.issued_to_user_id, ic.batch_token_id,
	ic.check_valid, ic.check_message, ic.checked_at, ic.created_at`

func scanInviteCode(row interface{ Scan(...any) error }, withAssignment bool) (*domain.InviteCode, error) {
	c := &domain.InviteCode{}
	dest := []any{&c.ID, &c.Code, &c.UsedAt, &c.UsedByID, &c.ExpiresAt, &c.DeletedAt,
		&c.IssuedToEmail, &c.IssuedToUserID, &c.BatchTokenID,
		&c.CheckValid, &c.CheckMessage, &c.CheckedAt, &c.CreatedAt}
	if withAssignment {
		dest = append(dest, &c.AssignedToApplicationID)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *inviteCodeRepository) Create(ctx context.Context, code *domain.InviteCode) error {
	query := `INSERT INTO invite_codes (code, expires_at, issued_to_email, issued_to_user_id, batch_token_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		code.Code, code.ExpiresAt, code.IssuedToEmail, code.IssuedToUserID, code.BatchTokenID, time.Now(),
	).Scan(&code.ID, &code.CreatedAt)
}

func (r *inviteCodeRepository) BulkCreate(ctx context.Context, codes []string, expiresAt *time.Time, batchTokenID *int32) ([]domain.InviteCode, error) {
	query := `INSERT INTO invite_codes (code, expires_at, batch_token_id, created_at)
	          SELECT unnest($1::text[]), $2, $3, $4
	          RETURNING id, code, created_at`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(codes), expiresAt, batchTokenID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert invite codes: %w", err)
	}
	defer rows.Close()

	var created []domain.InviteCode
	for rows.Next() {
		c := domain.InviteCode{ExpiresAt: expiresAt, BatchTokenID: batchTokenID}
		if err := rows.Scan(&c.ID, &c.Code, &c.CreatedAt); err != nil {
			return nil, err
		}
		created = append(created, c)
	}
	return created, rows.Err()
}

func (r *inviteCodeRepository) GetByID(ctx context.Context, id int32) (*domain.InviteCode, error) {
	query := fmt.Sprintf(`SELECT %s, pa.id FROM invite_codes ic
	          LEFT JOIN pre_applications pa ON pa.invite_code_id = ic.id
	          WHERE ic.id = $1`, inviteCodeColumns)
	code, err := scanInviteCode(r.db.QueryRowContext(ctx, query, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("invite code", id)
	}
	return code, err
}

func (r *inviteCodeRepository) List(ctx context.Context, page, pageSize int32) ([]domain.InviteCode, int32, error) {
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s, pa.id FROM invite_codes ic
	          LEFT JOIN pre_applications pa ON pa.invite_code_id = ic.id
	          ORDER BY ic.expires_at ASC NULLS LAST, ic.id ASC
	          LIMIT $1 OFFSET $2`, inviteCodeColumns)
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var codes []domain.InviteCode
	for rows.Next() {
		c, err := scanInviteCode(rows, true)
		if err != nil {
			return nil, 0, err
		}
		codes = append(codes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM invite_codes`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

func (r *inviteCodeRepository) SetUsed(ctx context.Context, id int32, usedByID *int32, usedAt *time.Time) error {
	query := `UPDATE invite_codes SET used_at = $1, used_by_id = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, usedAt, usedByID, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NewNotFoundError("invite code", id)
	}
	return nil
}

func (r *inviteCodeRepository) Invalidate(ctx context.Context, id int32, now time.Time) (int64, error) {
	query := `UPDATE invite_codes SET expires_at = $1 WHERE id = $2 AND used_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *inviteCodeRepository) SoftDelete(ctx context.Context, id int32, now time.Time) (int64, error) {
	query := `UPDATE invite_codes SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// availabilityPredicate guards the direct-issue paths with the same invariant
// the claim query uses.
const availabilityPredicate = `used_at IS NULL AND deleted_at IS NULL
	AND (expires_at IS NULL OR expires_at > $3)
	AND issued_to_email IS NULL AND issued_to_user_id IS NULL
	AND NOT EXISTS (SELECT 1 FROM pre_applications pa WHERE pa.invite_code_id = invite_codes.id)`

func (r *inviteCodeRepository) IssueToEmail(ctx context.Context, id int32, email string, now time.Time) (int64, error) {
	query := fmt.Sprintf(`UPDATE invite_codes SET issued_to_email = $1 WHERE id = $2 AND %s`, availabilityPredicate)
	res, err := r.db.ExecContext(ctx, query, email, id, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *inviteCodeRepository) IssueToUser(ctx context.Context, id int32, userID int32, now time.Time) (int64, error) {
	query := fmt.Sprintf(`UPDATE invite_codes SET issued_to_user_id = $1 WHERE id = $2 AND %s`, availabilityPredicate)
	res, err := r.db.ExecContext(ctx, query, userID, id, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *inviteCodeRepository) UpdateCheckResult(ctx context.Context, code string, valid *bool, message string, checkedAt time.Time) (int64, error) {
	query := `UPDATE invite_codes SET check_valid = $1, check_message = $2, checked_at = $3 WHERE code = $4`
	res, err := r.db.ExecContext(ctx, query, valid, message, checkedAt, code)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *inviteCodeRepository) ListStaleChecked(ctx context.Context, cutoff time.Time, limit int32) ([]domain.InviteCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM invite_codes ic
	          WHERE ic.deleted_at IS NULL AND (ic.checked_at IS NULL OR ic.checked_at < $1)
	          ORDER BY ic.checked_at ASC NULLS FIRST, ic.id ASC
	          LIMIT $2`, inviteCodeColumns)
	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []domain.InviteCode
	for rows.Next() {
		c, err := scanInviteCode(rows, false)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *c)
	}
	return codes, rows.Err()
}

func (r *inviteCodeRepository) ListByBatchToken(ctx context.Context, batchTokenID int32, now time.Time) ([]domain.InviteCode, error) {
	// Consumed and expired codes are omitted entirely so an anonymous
	// querier learns nothing about issuance volume.
	query := fmt.Sprintf(`SELECT %s FROM invite_codes ic
	          WHERE ic.batch_token_id = $1
	            AND ic.used_at IS NULL AND ic.deleted_at IS NULL
	            AND (ic.expires_at IS NULL OR ic.expires_at > $2)
	          ORDER BY ic.id ASC`, inviteCodeColumns)
	rows, err := r.db.QueryContext(ctx, query, batchTokenID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []domain.InviteCode
	for rows.Next() {
		c, err := scanInviteCode(rows, false)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *c)
	}
	return codes, rows.Err()
}

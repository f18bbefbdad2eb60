package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/repository"
)

type queryTokenRepository struct {
	db *sql.DB
}

func NewQueryTokenRepository(db *sql.DB) repository.QueryTokenRepository {
	return &queryTokenRepository{db: db}
}

func (r *queryTokenRepository) Create(ctx context.Context, token *domain.InviteCodeQueryToken) error {
	query := `INSERT INTO invite_code_query_tokens (token, expires_at, created_at)
	          VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, token.Token, token.ExpiresAt, time.Now()).Scan(&token.ID, &token.CreatedAt)
}

func (r *queryTokenRepository) GetByToken(ctx context.Context, token string) (*domain.InviteCodeQueryToken, error) {
	t := &domain.InviteCodeQueryToken{}
	query := `SELECT id, token, expires_at, queried_at, created_at FROM invite_code_query_tokens WHERE token = $1`
	err := r.db.QueryRowContext(ctx, query, token).Scan(&t.ID, &t.Token, &t.ExpiresAt, &t.QueriedAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *queryTokenRepository) MarkQueried(ctx context.Context, id int32, at time.Time) error {
	// Set-once: the first successful lookup wins, later ones change nothing.
	query := `UPDATE invite_code_query_tokens SET queried_at = $1 WHERE id = $2 AND queried_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

package postgres

import (
	"context"
	"testing"
	"time"

	"gatehouse-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestQueryTokenRepository_GetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewQueryTokenRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT id, token, expires_at, queried_at, created_at FROM invite_code_query_tokens").
			WithArgs("ABCD1234").
			WillReturnRows(sqlmock.NewRows([]string{"id", "token", "expires_at", "queried_at", "created_at"}).
				AddRow(11, "ABCD1234", nil, nil, now))

		tok, err := repo.GetByToken(ctx, "ABCD1234")
		assert.NoError(t, err)
		assert.Equal(t, int32(11), tok.ID)
		assert.Nil(t, tok.QueriedAt)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, token, expires_at, queried_at, created_at FROM invite_code_query_tokens").
			WithArgs("NOPE1234").
			WillReturnRows(sqlmock.NewRows([]string{"id", "token", "expires_at", "queried_at", "created_at"}))

		_, err := repo.GetByToken(ctx, "NOPE1234")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestQueryTokenRepository_MarkQueried(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewQueryTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	// The guard keeps the first queried_at; a second call affects zero rows
	// and still succeeds.
	mock.ExpectExec("UPDATE invite_code_query_tokens SET queried_at = (.+) AND queried_at IS NULL").
		WithArgs(now, int32(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE invite_code_query_tokens SET queried_at = (.+) AND queried_at IS NULL").
		WithArgs(now, int32(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.MarkQueried(ctx, 11, now))
	assert.NoError(t, repo.MarkQueried(ctx, 11, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"testing"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func testTokenManager() security.TokenManager {
	return security.NewTokenManager("0123456789abcdef0123456789abcdef", 60)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	user := &domain.User{ID: 1, Email: "staff@example.org", PasswordHash: string(hash), Role: domain.UserRoleReviewer}

	t.Run("Success", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := NewAuthService(userRepo, testTokenManager(), &recordingAudit{})

		userRepo.On("GetByEmail", ctx, "staff@example.org").Return(user, nil).Once()

		token, got, err := svc.Login(ctx, " Staff@Example.org ", "correct-horse")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, int32(1), got.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := NewAuthService(userRepo, testTokenManager(), &recordingAudit{})

		userRepo.On("GetByEmail", ctx, "staff@example.org").Return(user, nil).Once()

		_, _, err := svc.Login(ctx, "staff@example.org", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := NewAuthService(userRepo, testTokenManager(), &recordingAudit{})

		userRepo.On("GetByEmail", ctx, "nobody@example.org").Return(nil, domain.ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "nobody@example.org", "anything")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_BulkCreateUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("Batch bound", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepo), testTokenManager(), &recordingAudit{})
		emails := make([]string, 101)
		for i := range emails {
			emails[i] = "u@example.org"
		}
		_, err := svc.BulkCreateUsers(ctx, 1, emails, domain.UserRoleMember)
		var appErr *domain.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeValidationError, appErr.Code)
	})

	t.Run("Unknown role", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepo), testTokenManager(), &recordingAudit{})
		_, err := svc.BulkCreateUsers(ctx, 1, []string{"u@example.org"}, domain.UserRole("SUPERUSER"))
		var appErr *domain.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeValidationError, appErr.Code)
	})

	t.Run("Best effort skips failures", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		audit := &recordingAudit{}
		svc := NewAuthService(userRepo, testTokenManager(), audit)

		userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ok@example.org" && u.Role == domain.UserRoleMember
		})).Return(nil).Once()
		userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "dup@example.org"
		})).Return(assert.AnError).Once()

		created, err := svc.BulkCreateUsers(ctx, 1, []string{"ok@example.org", "dup@example.org", "not-an-email"}, domain.UserRoleMember)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
		assert.Equal(t, "ok@example.org", created[0].User.Email)
		assert.NotEmpty(t, created[0].Password)
		assert.Len(t, audit.entries, 1)
		userRepo.AssertExpectations(t)
	})
}

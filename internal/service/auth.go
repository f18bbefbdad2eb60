package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/repository"
	"gatehouse-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = &domain.AppError{Code: domain.CodeUnauthorized, Message: "invalid email or password"}

const maxUserBatch = 100

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	audit    AuditService
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, audit AuditService) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, audit: audit}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) BulkCreateUsers(ctx context.Context, actorID int32, emails []string, role domain.UserRole) ([]CreatedUser, error) {
	if len(emails) == 0 {
		return nil, domain.NewValidationError("no emails given")
	}
	if len(emails) > maxUserBatch {
		return nil, domain.NewValidationError("at most %d emails per batch, got %d", maxUserBatch, len(emails))
	}
	switch role {
	case domain.UserRoleMember, domain.UserRoleReviewer, domain.UserRoleAdmin:
	default:
		return nil, domain.NewValidationError("unknown role %q", role)
	}

	var created []CreatedUser
	for _, email := range emails {
		email = normalizeEmail(email)
		if email == "" || !strings.Contains(email, "@") {
			logger.Warn("Skipping malformed email in user batch", "email", email)
			continue
		}

		password, err := generatePassword()
		if err != nil {
			return created, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return created, err
		}

		user := &domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         email[:strings.Index(email, "@")],
			Role:         role,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			// Best-effort batch: duplicates and constraint failures skip.
			logger.Warn("Failed to create user in batch", "email", email, "error", err)
			continue
		}
		created = append(created, CreatedUser{User: user, Password: password})

		afterJSON, _ := json.Marshal(map[string]any{"email": email, "role": role})
		s.audit.Record(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionUserCreate,
			EntityType: "user",
			EntityID:   user.ID,
			ActorID:    &actorID,
			After:      afterJSON,
		})
	}
	if len(created) == 0 {
		return nil, errors.New("no users created")
	}
	return created, nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

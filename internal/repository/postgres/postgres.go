package postgres

import (
	"database/sql"

	"gatehouse-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.PreApplicationRepository
	repository.InviteCodeRepository
	repository.QueryTokenRepository
	repository.NotificationRepository
	repository.AuditRepository
	repository.SettingsRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                       db,
		UserRepository:           NewUserRepository(db),
		PreApplicationRepository: NewPreApplicationRepository(db),
		InviteCodeRepository:     NewInviteCodeRepository(db),
		QueryTokenRepository:     NewQueryTokenRepository(db),
		NotificationRepository:   NewNotificationRepository(db),
		AuditRepository:          NewAuditRepository(db),
		SettingsRepository:       NewSettingsRepository(db),
	}
}

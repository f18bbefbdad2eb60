package service

import (
	"context"
	"time"

	"gatehouse-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockPreApplicationRepo struct {
	mock.Mock
}

func (m *MockPreApplicationRepo) Create(ctx context.Context, app *domain.PreApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockPreApplicationRepo) GetByID(ctx context.Context, id int32) (*domain.PreApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreApplication), args.Error(1)
}

func (m *MockPreApplicationRepo) GetByQueryToken(ctx context.Context, token string) (*domain.PreApplication, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreApplication), args.Error(1)
}

func (m *MockPreApplicationRepo) GetActiveByUser(ctx context.Context, userID int32) (*domain.PreApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreApplication), args.Error(1)
}

func (m *MockPreApplicationRepo) GetLatestByUser(ctx context.Context, userID int32) (*domain.PreApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreApplication), args.Error(1)
}

func (m *MockPreApplicationRepo) ListByStatus(ctx context.Context, status domain.PreApplicationStatus, page, pageSize int32) ([]domain.PreApplication, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	var apps []domain.PreApplication
	if args.Get(0) != nil {
		apps = args.Get(0).([]domain.PreApplication)
	}
	return apps, args.Get(1).(int32), args.Error(2)
}

func (m *MockPreApplicationRepo) ListVersions(ctx context.Context, appID int32) ([]domain.PreApplicationVersion, error) {
	args := m.Called(ctx, appID)
	var versions []domain.PreApplicationVersion
	if args.Get(0) != nil {
		versions = args.Get(0).([]domain.PreApplicationVersion)
	}
	return versions, args.Error(1)
}

func (m *MockPreApplicationRepo) Resubmit(ctx context.Context, id int32, essay string, maxResubmit int32) (*domain.PreApplication, error) {
	args := m.Called(ctx, id, essay, maxResubmit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreApplication), args.Error(1)
}

func (m *MockPreApplicationRepo) Reject(ctx context.Context, id, reviewerID int32, guidance string) (*domain.PreApplication, error) {
	args := m.Called(ctx, id, reviewerID, guidance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreApplication), args.Error(1)
}

func (m *MockPreApplicationRepo) Approve(ctx context.Context, id, reviewerID int32, guidance string) (*domain.PreApplication, *domain.InviteCode, error) {
	args := m.Called(ctx, id, reviewerID, guidance)
	var (
		app  *domain.PreApplication
		code *domain.InviteCode
	)
	if args.Get(0) != nil {
		app = args.Get(0).(*domain.PreApplication)
	}
	if args.Get(1) != nil {
		code = args.Get(1).(*domain.InviteCode)
	}
	return app, code, args.Error(2)
}

func (m *MockPreApplicationRepo) Archive(ctx context.Context, id int32) (domain.PreApplicationStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.PreApplicationStatus), args.Error(1)
}

func (m *MockPreApplicationRepo) MarkCodeSent(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

type MockInviteCodeRepo struct {
	mock.Mock
}

func (m *MockInviteCodeRepo) Create(ctx context.Context, code *domain.InviteCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockInviteCodeRepo) BulkCreate(ctx context.Context, codes []string, expiresAt *time.Time, batchTokenID *int32) ([]domain.InviteCode, error) {
	args := m.Called(ctx, codes, expiresAt, batchTokenID)
	var created []domain.InviteCode
	if args.Get(0) != nil {
		created = args.Get(0).([]domain.InviteCode)
	}
	return created, args.Error(1)
}

func (m *MockInviteCodeRepo) GetByID(ctx context.Context, id int32) (*domain.InviteCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteCode), args.Error(1)
}

func (m *MockInviteCodeRepo) List(ctx context.Context, page, pageSize int32) ([]domain.InviteCode, int32, error) {
	args := m.Called(ctx, page, pageSize)
	var codes []domain.InviteCode
	if args.Get(0) != nil {
		codes = args.Get(0).([]domain.InviteCode)
	}
	return codes, args.Get(1).(int32), args.Error(2)
}

func (m *MockInviteCodeRepo) SetUsed(ctx context.Context, id int32, usedByID *int32, usedAt *time.Time) error {
	return m.Called(ctx, id, usedByID, usedAt).Error(0)
}

func (m *MockInviteCodeRepo) Invalidate(ctx context.Context, id int32, now time.Time) (int64, error) {
	args := m.Called(ctx, id, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteCodeRepo) SoftDelete(ctx context.Context, id int32, now time.Time) (int64, error) {
	args := m.Called(ctx, id, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteCodeRepo) IssueToEmail(ctx context.Context, id int32, email string, now time.Time) (int64, error) {
	args := m.Called(ctx, id, email, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteCodeRepo) IssueToUser(ctx context.Context, id int32, userID int32, now time.Time) (int64, error) {
	args := m.Called(ctx, id, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteCodeRepo) UpdateCheckResult(ctx context.Context, code string, valid *bool, message string, checkedAt time.Time) (int64, error) {
	args := m.Called(ctx, code, valid, message, checkedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteCodeRepo) ListStaleChecked(ctx context.Context, cutoff time.Time, limit int32) ([]domain.InviteCode, error) {
	args := m.Called(ctx, cutoff, limit)
	var codes []domain.InviteCode
	if args.Get(0) != nil {
		codes = args.Get(0).([]domain.InviteCode)
	}
	return codes, args.Error(1)
}

func (m *MockInviteCodeRepo) ListByBatchToken(ctx context.Context, batchTokenID int32, now time.Time) ([]domain.InviteCode, error) {
	args := m.Called(ctx, batchTokenID, now)
	var codes []domain.InviteCode
	if args.Get(0) != nil {
		codes = args.Get(0).([]domain.InviteCode)
	}
	return codes, args.Error(1)
}

type MockQueryTokenRepo struct {
	mock.Mock
}

func (m *MockQueryTokenRepo) Create(ctx context.Context, token *domain.InviteCodeQueryToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockQueryTokenRepo) GetByToken(ctx context.Context, token string) (*domain.InviteCodeQueryToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteCodeQueryToken), args.Error(1)
}

func (m *MockQueryTokenRepo) MarkQueried(ctx context.Context, id int32, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	var notes []domain.Notification
	if args.Get(0) != nil {
		notes = args.Get(0).([]domain.Notification)
	}
	return notes, args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) Check(ctx context.Context, codes []string) ([]CheckerVerdict, error) {
	args := m.Called(ctx, codes)
	var verdicts []CheckerVerdict
	if args.Get(0) != nil {
		verdicts = args.Get(0).([]CheckerVerdict)
	}
	return verdicts, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDecision(ctx context.Context, app *domain.PreApplication, reviewer *domain.User, code *domain.InviteCode) {
	m.Called(ctx, app, reviewer, code)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, toEmail, subject, body string) error {
	return m.Called(ctx, toEmail, subject, body).Error(0)
}

// recordingAudit captures audit entries without a settings dependency.
type recordingAudit struct {
	entries []*domain.AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, entry *domain.AuditEntry) {
	a.entries = append(a.entries, entry)
}

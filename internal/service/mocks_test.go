package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/datewindow"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service/line"
)

// MockActivityRepository for testing
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, a domain.NewActivity) (*domain.Activity, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByRange(ctx context.Context, start, end string) ([]domain.Activity, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) ListAll(ctx context.Context) ([]domain.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) DeleteBefore(ctx context.Context, cutoff string) ([]domain.Activity, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

// MockGroupRepository for testing
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Upsert(ctx context.Context, groupID, groupName string) (*domain.ReminderGroup, error) {
	args := m.Called(ctx, groupID, groupName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReminderGroup), args.Error(1)
}

func (m *MockGroupRepository) Deactivate(ctx context.Context, groupID string) error {
	return m.Called(ctx, groupID).Error(0)
}

func (m *MockGroupRepository) Rename(ctx context.Context, groupID, groupName string) error {
	return m.Called(ctx, groupID, groupName).Error(0)
}

func (m *MockGroupRepository) ListActive(ctx context.Context) ([]domain.ReminderGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReminderGroup), args.Error(1)
}

// MockMessenger records outbound LINE calls
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Push(ctx context.Context, to, text string, mode line.Mode) error {
	return m.Called(ctx, to, text, mode).Error(0)
}

func (m *MockMessenger) Reply(ctx context.Context, replyToken, text string) error {
	return m.Called(ctx, replyToken, text).Error(0)
}

func (m *MockMessenger) Broadcast(ctx context.Context, text string, mode line.Mode) error {
	return m.Called(ctx, text, mode).Error(0)
}

func (m *MockMessenger) Respond(ctx context.Context, replyToken, userID, text string) error {
	return m.Called(ctx, replyToken, userID, text).Error(0)
}

func (m *MockMessenger) GroupSummary(ctx context.Context, groupID string) (*line.GroupSummary, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*line.GroupSummary), args.Error(1)
}

// MockActivityService for testing consumers of ActivityService
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Create(ctx context.Context, in domain.NewActivity) (*domain.Activity, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) Delete(ctx context.Context, id int64) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) QueryByMonth(ctx context.Context, month time.Month, year int) ([]domain.Activity, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockActivityService) QueryByRange(ctx context.Context, w datewindow.Window) ([]domain.Activity, error) {
	args := m.Called(ctx, w.StartDate(), w.EndDate())
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockActivityService) QueryAll(ctx context.Context) ([]domain.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockActivityService) CleanupBefore(ctx context.Context, cutoff string) (*domain.CleanupResult, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CleanupResult), args.Error(1)
}

// MockGroupService for testing consumers of GroupService
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) Register(ctx context.Context, groupID string) (*domain.ReminderGroup, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReminderGroup), args.Error(1)
}

func (m *MockGroupService) Leave(ctx context.Context, groupID string) error {
	return m.Called(ctx, groupID).Error(0)
}

func (m *MockGroupService) Rename(ctx context.Context, groupID, groupName string) error {
	return m.Called(ctx, groupID, groupName).Error(0)
}

func (m *MockGroupService) ListActive(ctx context.Context) ([]domain.ReminderGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReminderGroup), args.Error(1)
}

// staticAuth authorizes a fixed set of users
type staticAuth map[string]bool

func (a staticAuth) IsAuthorized(userID string) bool { return a[userID] }

func (a staticAuth) ValidateAdminToken(context.Context, string) (*domain.AdminClaims, error) {
	return nil, nil
}

// taipei is the fixed zone used across service tests
var taipei = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}()

// fixedClock returns a clock stuck at the given Taipei wall time
func fixedClock(year int, month time.Month, day, hour int) func() time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, taipei)
	return func() time.Time { return t }
}

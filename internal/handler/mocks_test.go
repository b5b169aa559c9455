package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/command"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/datewindow"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
)

type MockActivityService struct{ mock.Mock }

func (m *MockActivityService) Create(ctx context.Context, in domain.NewActivity) (*domain.Activity, error) {
	args := m.Called(ctx, in)
	activity, _ := args.Get(0).(*domain.Activity)
	return activity, args.Error(1)
}

func (m *MockActivityService) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	activity, _ := args.Get(0).(*domain.Activity)
	return activity, args.Error(1)
}

func (m *MockActivityService) Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error) {
	args := m.Called(ctx, id, patch)
	activity, _ := args.Get(0).(*domain.Activity)
	return activity, args.Error(1)
}

func (m *MockActivityService) Delete(ctx context.Context, id int64) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	activity, _ := args.Get(0).(*domain.Activity)
	return activity, args.Error(1)
}

func (m *MockActivityService) QueryByMonth(ctx context.Context, month time.Month, year int) ([]domain.Activity, error) {
	args := m.Called(ctx, month, year)
	activities, _ := args.Get(0).([]domain.Activity)
	return activities, args.Error(1)
}

func (m *MockActivityService) QueryByRange(ctx context.Context, w datewindow.Window) ([]domain.Activity, error) {
	args := m.Called(ctx, w.StartDate(), w.EndDate())
	activities, _ := args.Get(0).([]domain.Activity)
	return activities, args.Error(1)
}

func (m *MockActivityService) QueryAll(ctx context.Context) ([]domain.Activity, error) {
	args := m.Called(ctx)
	activities, _ := args.Get(0).([]domain.Activity)
	return activities, args.Error(1)
}

func (m *MockActivityService) CleanupBefore(ctx context.Context, cutoff string) (*domain.CleanupResult, error) {
	args := m.Called(ctx, cutoff)
	result, _ := args.Get(0).(*domain.CleanupResult)
	return result, args.Error(1)
}

type MockReminderService struct{ mock.Mock }

func (m *MockReminderService) Monthly(ctx context.Context) (*domain.ReminderResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*domain.ReminderResult)
	return result, args.Error(1)
}

func (m *MockReminderService) Weekly(ctx context.Context, scope domain.WeekScope) (*domain.ReminderResult, error) {
	args := m.Called(ctx, scope)
	result, _ := args.Get(0).(*domain.ReminderResult)
	return result, args.Error(1)
}

func (m *MockReminderService) Daily(ctx context.Context) (*domain.ReminderResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*domain.ReminderResult)
	return result, args.Error(1)
}

func (m *MockReminderService) Cleanup(ctx context.Context) (*domain.CleanupResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*domain.CleanupResult)
	return result, args.Error(1)
}

func (m *MockReminderService) SendToGroups(ctx context.Context, message string) ([]domain.GroupResult, error) {
	args := m.Called(ctx, message)
	results, _ := args.Get(0).([]domain.GroupResult)
	return results, args.Error(1)
}

type MockGroupService struct{ mock.Mock }

func (m *MockGroupService) Register(ctx context.Context, groupID string) (*domain.ReminderGroup, error) {
	args := m.Called(ctx, groupID)
	group, _ := args.Get(0).(*domain.ReminderGroup)
	return group, args.Error(1)
}

func (m *MockGroupService) Leave(ctx context.Context, groupID string) error {
	return m.Called(ctx, groupID).Error(0)
}

func (m *MockGroupService) Rename(ctx context.Context, groupID, groupName string) error {
	return m.Called(ctx, groupID, groupName).Error(0)
}

func (m *MockGroupService) ListActive(ctx context.Context) ([]domain.ReminderGroup, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]domain.ReminderGroup)
	return groups, args.Error(1)
}

type MockCommandService struct{ mock.Mock }

func (m *MockCommandService) Parse(text string, authorized bool) command.Command {
	return m.Called(text, authorized).Get(0).(command.Command)
}

func (m *MockCommandService) Execute(ctx context.Context, cmd command.Command) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

type MockEventService struct{ mock.Mock }

func (m *MockEventService) HandleEvents(ctx context.Context, events []webhook.EventInterface) int {
	return m.Called(ctx, events).Int(0)
}

func (m *MockEventService) HandleEvent(ctx context.Context, event webhook.EventInterface) error {
	return m.Called(ctx, event).Error(0)
}

// envelope decodes a success body, keeping data raw for the caller
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

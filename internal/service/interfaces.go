package service

import (
	"context"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/command"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/datewindow"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service/line"
)

// Messenger is the outbound side of the LINE Messaging API
type Messenger interface {
	Push(ctx context.Context, to, text string, mode line.Mode) error
	Reply(ctx context.Context, replyToken, text string) error
	Broadcast(ctx context.Context, text string, mode line.Mode) error

	// Respond replies with the token, falling back to a push to userID
	Respond(ctx context.Context, replyToken, userID, text string) error

	GroupSummary(ctx context.Context, groupID string) (*line.GroupSummary, error)
}

// ActivityService validates and stores calendar activities
type ActivityService interface {
	Create(ctx context.Context, in domain.NewActivity) (*domain.Activity, error)
	Get(ctx context.Context, id int64) (*domain.Activity, error)
	Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error)

	// Delete resolves the activity first so callers can echo it back
	Delete(ctx context.Context, id int64) (*domain.Activity, error)

	QueryByMonth(ctx context.Context, month time.Month, year int) ([]domain.Activity, error)
	QueryByRange(ctx context.Context, w datewindow.Window) ([]domain.Activity, error)
	QueryAll(ctx context.Context) ([]domain.Activity, error)

	// CleanupBefore purges activities dated strictly before cutoff (YYYY-MM-DD)
	CleanupBefore(ctx context.Context, cutoff string) (*domain.CleanupResult, error)
}

// GroupService manages the registry of groups that receive reminders
type GroupService interface {
	// Register records a group the bot joined, looking up its name
	Register(ctx context.Context, groupID string) (*domain.ReminderGroup, error)
	Leave(ctx context.Context, groupID string) error
	Rename(ctx context.Context, groupID, groupName string) error
	ListActive(ctx context.Context) ([]domain.ReminderGroup, error)
}

// ReminderService runs scheduled reminder triggers
type ReminderService interface {
	Monthly(ctx context.Context) (*domain.ReminderResult, error)
	Weekly(ctx context.Context, scope domain.WeekScope) (*domain.ReminderResult, error)
	Daily(ctx context.Context) (*domain.ReminderResult, error)
	Cleanup(ctx context.Context) (*domain.CleanupResult, error)

	// SendToGroups pushes message to every active group in order
	SendToGroups(ctx context.Context, message string) ([]domain.GroupResult, error)
}

// CommandService turns parsed chat commands into reply text
type CommandService interface {
	Parse(text string, authorized bool) command.Command

	// Execute runs cmd. Failures are *errors.AppError values whose
	// messages are fit to show in chat.
	Execute(ctx context.Context, cmd command.Command) (string, error)
}

// EventService handles inbound webhook events
type EventService interface {
	// HandleEvents processes events in order; one failure never stops the rest
	HandleEvents(ctx context.Context, events []webhook.EventInterface) int
	HandleEvent(ctx context.Context, event webhook.EventInterface) error
}

// AuthService decides who may change the calendar
type AuthService interface {
	// IsAuthorized reports whether a LINE user may run mutating commands
	IsAuthorized(userID string) bool

	// ValidateAdminToken verifies an HS256 bearer token for the admin API
	ValidateAdminToken(ctx context.Context, token string) (*domain.AdminClaims, error)
}

// ActivityCache caches activity listings between writes
type ActivityCache interface {
	Range(ctx context.Context, start, end string, load func(context.Context) ([]domain.Activity, error)) ([]domain.Activity, error)
	All(ctx context.Context, load func(context.Context) ([]domain.Activity, error)) ([]domain.Activity, error)
	Invalidate(ctx context.Context)
}

// EventDeduplicator detects webhook redeliveries
type EventDeduplicator interface {
	// FirstDelivery reports whether eventID has not been seen before
	FirstDelivery(ctx context.Context, eventID string) bool
}

// Services aggregates all service interfaces
type Services struct {
	Activity ActivityService
	Group    GroupService
	Reminder ReminderService
	Command  CommandService
	Event    EventService
	Auth     AuthService
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/format"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

type memoryDedup map[string]bool

func (d memoryDedup) FirstDelivery(_ context.Context, id string) bool {
	if d[id] {
		return false
	}
	d[id] = true
	return true
}

type eventFixture struct {
	activities *MockActivityService
	groups     *MockGroupService
	messenger  *MockMessenger
	svc        EventService
}

func newEventFixture(dedup EventDeduplicator) *eventFixture {
	f := &eventFixture{
		activities: new(MockActivityService),
		groups:     new(MockGroupService),
		messenger:  new(MockMessenger),
	}
	commands := NewCommandService(f.activities, taipei, fixedClock(2025, time.January, 15, 10), logger.NewNop())
	f.svc = NewEventService(commands, f.groups, staticAuth{"Uadmin": true}, f.messenger, dedup, logger.NewNop())
	return f
}

func textEvent(id, userID, text string) webhook.MessageEvent {
	return webhook.MessageEvent{
		WebhookEventId: id,
		ReplyToken:     "reply-" + id,
		Source:         webhook.GroupSource{UserId: userID, GroupId: "G1"},
		Message:        webhook.TextMessageContent{Id: "m-" + id, Text: text},
	}
}

func TestEventService_UnknownTextIsSilent(t *testing.T) {
	f := newEventFixture(nil)

	failed := f.svc.HandleEvents(context.Background(), []webhook.EventInterface{textEvent("e1", "Uanyone", "大家早安")})

	assert.Equal(t, 0, failed)
	assert.Empty(t, f.messenger.Calls)
}

func TestEventService_NonTextMessageIgnored(t *testing.T) {
	f := newEventFixture(nil)
	ev := textEvent("e1", "Uanyone", "")
	ev.Message = webhook.StickerMessageContent{Id: "m-e1"}

	require.NoError(t, f.svc.HandleEvent(context.Background(), ev))
	assert.Empty(t, f.messenger.Calls)
}

func TestEventService_CommandReplies(t *testing.T) {
	f := newEventFixture(nil)
	f.messenger.On("Respond", mock.Anything, "reply-e1", "Uanyone", format.Help(false)).Return(nil)

	require.NoError(t, f.svc.HandleEvent(context.Background(), textEvent("e1", "Uanyone", "幫助")))
	f.messenger.AssertExpectations(t)
}

func TestEventService_ForbiddenReplyForNonAdmin(t *testing.T) {
	f := newEventFixture(nil)
	f.messenger.On("Respond", mock.Anything, "reply-e1", "Uguest", format.Forbidden("create")).Return(nil)

	require.NoError(t, f.svc.HandleEvent(context.Background(), textEvent("e1", "Uguest", "新增 2025-02-01 禱告會")))
	f.messenger.AssertExpectations(t)
	f.activities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventService_FailureDoesNotStopBatch(t *testing.T) {
	f := newEventFixture(nil)
	f.messenger.On("Respond", mock.Anything, "reply-e1", mock.Anything, mock.Anything).Return(assert.AnError)
	f.messenger.On("Respond", mock.Anything, "reply-e2", mock.Anything, mock.Anything).Return(nil)

	failed := f.svc.HandleEvents(context.Background(), []webhook.EventInterface{
		textEvent("e1", "Uanyone", "help"),
		textEvent("e2", "Uanyone", "help"),
	})

	assert.Equal(t, 1, failed)
	f.messenger.AssertNumberOfCalls(t, "Respond", 2)
}

func TestEventService_PanicIsContained(t *testing.T) {
	f := newEventFixture(nil)
	f.messenger.On("Respond", mock.Anything, "reply-e1", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("boom") }).Return(nil)
	f.messenger.On("Respond", mock.Anything, "reply-e2", mock.Anything, mock.Anything).Return(nil)

	failed := f.svc.HandleEvents(context.Background(), []webhook.EventInterface{
		textEvent("e1", "Uanyone", "help"),
		textEvent("e2", "Uanyone", "help"),
	})

	assert.Equal(t, 1, failed)
}

func TestEventService_RedeliveryIsSkipped(t *testing.T) {
	f := newEventFixture(memoryDedup{})
	f.messenger.On("Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ev := textEvent("e1", "Uanyone", "help")
	failed := f.svc.HandleEvents(context.Background(), []webhook.EventInterface{ev, ev})

	assert.Equal(t, 0, failed)
	f.messenger.AssertNumberOfCalls(t, "Respond", 1)
}

func TestEventService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	group := webhook.GroupSource{GroupId: "G7"}

	t.Run("follow", func(t *testing.T) {
		f := newEventFixture(nil)
		f.messenger.On("Respond", mock.Anything, "tok", "U1", format.Welcome).Return(nil)

		err := f.svc.HandleEvent(ctx, webhook.FollowEvent{ReplyToken: "tok", Source: webhook.UserSource{UserId: "U1"}})

		require.NoError(t, err)
		f.messenger.AssertExpectations(t)
	})

	t.Run("join registers and greets", func(t *testing.T) {
		f := newEventFixture(nil)
		f.groups.On("Register", mock.Anything, "G7").Return(&domain.ReminderGroup{GroupID: "G7", IsActive: true}, nil)
		f.messenger.On("Reply", mock.Anything, "tok", format.GroupWelcome).Return(nil)

		err := f.svc.HandleEvent(ctx, webhook.JoinEvent{ReplyToken: "tok", Source: group})

		require.NoError(t, err)
		f.groups.AssertExpectations(t)
		f.messenger.AssertExpectations(t)
	})

	t.Run("leave deactivates", func(t *testing.T) {
		f := newEventFixture(nil)
		f.groups.On("Leave", mock.Anything, "G7").Return(nil)

		require.NoError(t, f.svc.HandleEvent(ctx, webhook.LeaveEvent{Source: group}))
		f.groups.AssertExpectations(t)
	})

	t.Run("other events ignored", func(t *testing.T) {
		f := newEventFixture(nil)
		require.NoError(t, f.svc.HandleEvent(ctx, webhook.MemberJoinedEvent{Source: group}))
		assert.Empty(t, f.messenger.Calls)
	})
}

func TestSourceIDs(t *testing.T) {
	tests := []struct {
		name       string
		source     webhook.SourceInterface
		wantUser   string
		wantTarget string
	}{
		{"user", webhook.UserSource{UserId: "U1"}, "U1", "U1"},
		{"group", webhook.GroupSource{UserId: "U1", GroupId: "C1"}, "U1", "C1"},
		{"room", webhook.RoomSource{UserId: "U1", RoomId: "R1"}, "U1", "R1"},
		{"missing", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, target := sourceIDs(tt.source)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

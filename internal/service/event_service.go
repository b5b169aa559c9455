package service

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/command"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/format"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

type eventService struct {
	commands  CommandService
	groups    GroupService
	auth      AuthService
	messenger Messenger
	dedup     EventDeduplicator
	logger    *logger.Logger
}

// NewEventService creates the webhook event handler. dedup may be nil.
func NewEventService(commands CommandService, groups GroupService, auth AuthService, messenger Messenger, dedup EventDeduplicator, log *logger.Logger) EventService {
	return &eventService{
		commands:  commands,
		groups:    groups,
		auth:      auth,
		messenger: messenger,
		dedup:     dedup,
		logger:    log.Named("webhook"),
	}
}

// HandleEvents returns the number of events that failed
func (s *eventService) HandleEvents(ctx context.Context, events []webhook.EventInterface) int {
	failed := 0
	for _, ev := range events {
		if err := s.safeHandle(ctx, ev); err != nil {
			failed++
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"event_type": fmt.Sprintf("%T", ev),
				"event_id":   eventID(ev),
			}).Error("Failed to handle webhook event")
		}
	}
	return failed
}

func (s *eventService) safeHandle(ctx context.Context, ev webhook.EventInterface) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError("Webhook event handler panicked", fmt.Errorf("%v", r))
		}
	}()
	return s.HandleEvent(ctx, ev)
}

func (s *eventService) HandleEvent(ctx context.Context, ev webhook.EventInterface) error {
	if id := eventID(ev); s.dedup != nil && !s.dedup.FirstDelivery(ctx, id) {
		s.logger.WithField("event_id", id).Info("Skipping redelivered event")
		return nil
	}

	switch e := ev.(type) {
	case webhook.MessageEvent:
		return s.handleMessage(ctx, e)
	case webhook.FollowEvent:
		userID, _ := sourceIDs(e.Source)
		return s.messenger.Respond(ctx, e.ReplyToken, userID, format.Welcome)
	case webhook.UnfollowEvent:
		userID, _ := sourceIDs(e.Source)
		s.logger.WithField("user_id", userID).Info("User unfollowed the bot")
		return nil
	case webhook.JoinEvent:
		_, target := sourceIDs(e.Source)
		if _, err := s.groups.Register(ctx, target); err != nil {
			return err
		}
		return s.messenger.Reply(ctx, e.ReplyToken, format.GroupWelcome)
	case webhook.LeaveEvent:
		_, target := sourceIDs(e.Source)
		return s.groups.Leave(ctx, target)
	}

	s.logger.WithField("event_type", fmt.Sprintf("%T", ev)).Debug("Ignoring event")
	return nil
}

func (s *eventService) handleMessage(ctx context.Context, ev webhook.MessageEvent) error {
	text, ok := ev.Message.(webhook.TextMessageContent)
	if !ok {
		return nil
	}

	userID, _ := sourceIDs(ev.Source)
	cmd := s.commands.Parse(text.Text, s.auth.IsAuthorized(userID))
	if _, ok := cmd.(command.Unknown); ok {
		// Unrecognized chatter in groups gets no reply
		return nil
	}

	reply, err := s.commands.Execute(ctx, cmd)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"command": fmt.Sprintf("%T", cmd),
			"user_id": userID,
		}).Info("Command failed")
		reply = ReplyForError(err)
	}

	return s.messenger.Respond(ctx, ev.ReplyToken, userID, reply)
}

// sourceIDs returns the sending user and the conversation a push should go to
func sourceIDs(src webhook.SourceInterface) (userID, targetID string) {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId, s.UserId
	case webhook.GroupSource:
		return s.UserId, s.GroupId
	case webhook.RoomSource:
		return s.UserId, s.RoomId
	}
	return "", ""
}

// eventID returns the webhook event id used for redelivery checks
func eventID(ev webhook.EventInterface) string {
	switch e := ev.(type) {
	case webhook.MessageEvent:
		return e.WebhookEventId
	case webhook.FollowEvent:
		return e.WebhookEventId
	case webhook.UnfollowEvent:
		return e.WebhookEventId
	case webhook.JoinEvent:
		return e.WebhookEventId
	case webhook.LeaveEvent:
		return e.WebhookEventId
	}
	return ""
}

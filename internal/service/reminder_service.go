package service

import (
	"context"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/datewindow"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/format"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service/line"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// ReminderConfig tunes the reminder engine
type ReminderConfig struct {
	Location       *time.Location
	GroupSendDelay time.Duration
	RetentionDays  int
	Now            func() time.Time
}

type reminderService struct {
	activities ActivityService
	groups     GroupService
	messenger  Messenger
	cfg        ReminderConfig
	logger     *logger.Logger
}

// NewReminderService creates the reminder engine
func NewReminderService(activities ActivityService, groups GroupService, messenger Messenger, cfg ReminderConfig, log *logger.Logger) ReminderService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &reminderService{
		activities: activities,
		groups:     groups,
		messenger:  messenger,
		cfg:        cfg,
		logger:     log.Named("reminder"),
	}
}

func (s *reminderService) Monthly(ctx context.Context) (*domain.ReminderResult, error) {
	w := datewindow.ThisMonth(s.cfg.Now(), s.cfg.Location)
	return s.run(ctx, domain.ReminderMonthly, w, format.HeaderMonthly, format.TitleThisMonth)
}

func (s *reminderService) Weekly(ctx context.Context, scope domain.WeekScope) (*domain.ReminderResult, error) {
	now := s.cfg.Now()
	switch scope {
	case "", domain.WeekNext:
		return s.run(ctx, domain.ReminderWeekly, datewindow.NextWeek(now, s.cfg.Location), format.HeaderWeekly, format.TitleNextWeek)
	case domain.WeekThis:
		return s.run(ctx, domain.ReminderWeekly, datewindow.ThisWeek(now, s.cfg.Location), format.HeaderWeeklyThis, format.TitleThisWeek)
	}
	return nil, errors.NewValidationError("Invalid week scope", map[string]interface{}{"scope": string(scope)})
}

func (s *reminderService) Daily(ctx context.Context) (*domain.ReminderResult, error) {
	w := datewindow.Tomorrow(s.cfg.Now(), s.cfg.Location)
	return s.run(ctx, domain.ReminderDaily, w, format.HeaderDaily, "明天的活動")
}

func (s *reminderService) Cleanup(ctx context.Context) (*domain.CleanupResult, error) {
	cutoff := datewindow.DaysAgo(s.cfg.Now(), s.cfg.RetentionDays, s.cfg.Location)
	return s.activities.CleanupBefore(ctx, cutoff)
}

// run executes ComputeWindow -> Fetch -> Format -> Broadcast -> FanOut
func (s *reminderService) run(ctx context.Context, kind domain.ReminderType, w datewindow.Window, header, emptyTitle string) (*domain.ReminderResult, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"type":         string(kind),
		"window_start": w.StartDate(),
		"window_end":   w.EndDate(),
	})

	activities, err := s.activities.QueryByRange(ctx, w)
	if err != nil {
		log.WithError(err).Error("Failed to fetch activities for reminder")
		return nil, err
	}

	result := &domain.ReminderResult{
		Type:            kind,
		ActivitiesCount: len(activities),
		WindowStart:     w.StartDate(),
		WindowEnd:       w.EndDate(),
		GroupResults:    []domain.GroupResult{},
	}

	if len(activities) == 0 {
		result.Success = true
		result.NoActivities = true
		result.Message = format.Empty(emptyTitle)
		log.Info("No activities in reminder window, nothing sent")
		return result, nil
	}

	result.Message = format.Reminder(header, activities)

	broadcast := &domain.DispatchResult{Success: true}
	if err := s.messenger.Broadcast(ctx, result.Message, line.ModeBackground); err != nil {
		if !errors.IsType(err, errors.ErrorTypeQuotaExhausted) {
			log.WithError(err).Error("Reminder broadcast failed")
			return nil, err
		}
		log.WithError(err).Warn("Broadcast quota exhausted, continuing with groups")
		broadcast = &domain.DispatchResult{Success: false, Error: domain.GroupErrorQuota}
	}
	result.BroadcastResult = broadcast

	groups, err := s.SendToGroups(ctx, result.Message)
	if err != nil {
		return nil, err
	}
	result.GroupResults = groups

	result.Success = broadcast.Success
	for _, g := range groups {
		if !g.Success {
			result.Success = false
			break
		}
	}

	log.WithFields(map[string]interface{}{
		"activities": len(activities),
		"groups":     len(groups),
		"success":    result.Success,
	}).Info("Reminder dispatched")
	return result, nil
}

func (s *reminderService) SendToGroups(ctx context.Context, message string) ([]domain.GroupResult, error) {
	groups, err := s.groups.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.GroupResult, 0, len(groups))
	for i, g := range groups {
		if i > 0 {
			if err := wait(ctx, s.cfg.GroupSendDelay); err != nil {
				return nil, err
			}
		}

		err := s.messenger.Push(ctx, g.GroupID, message, line.ModeBackground)
		if err == nil {
			results = append(results, domain.GroupResult{Success: true, GroupID: g.GroupID, GroupName: g.GroupName})
			continue
		}

		if errors.IsType(err, errors.ErrorTypeQuotaExhausted) {
			s.logger.WithField("group_id", g.GroupID).Warn("Message quota exhausted, skipping remaining groups")
			for _, rest := range groups[i:] {
				results = append(results, domain.GroupResult{
					GroupID:   rest.GroupID,
					GroupName: rest.GroupName,
					Error:     domain.GroupErrorQuota,
				})
			}
			return results, nil
		}

		s.logger.WithError(err).WithField("group_id", g.GroupID).Error("Failed to send reminder to group")
		results = append(results, domain.GroupResult{GroupID: g.GroupID, GroupName: g.GroupName, Error: err.Error()})
	}
	return results, nil
}

// wait pauses for d unless ctx ends first
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

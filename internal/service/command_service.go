package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/command"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/datewindow"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/format"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

type commandService struct {
	parser     *command.Parser
	activities ActivityService
	loc        *time.Location
	now        func() time.Time
	logger     *logger.Logger
}

// NewCommandService creates the chat command executor
func NewCommandService(activities ActivityService, loc *time.Location, now func() time.Time, log *logger.Logger) CommandService {
	if now == nil {
		now = time.Now
	}
	return &commandService{
		parser:     command.NewParser(loc, now),
		activities: activities,
		loc:        loc,
		now:        now,
		logger:     log.Named("command"),
	}
}

func (s *commandService) Parse(text string, authorized bool) command.Command {
	return s.parser.Parse(text, authorized)
}

func (s *commandService) Execute(ctx context.Context, cmd command.Command) (string, error) {
	now := s.now()

	switch c := cmd.(type) {
	case command.ViewAll:
		return s.list(ctx, format.TitleAll, s.activities.QueryAll, func(a []domain.Activity) string {
			return format.List(a, format.TitleAll)
		})
	case command.ViewByID:
		return s.list(ctx, format.TitleAll, s.activities.QueryAll, format.IDList)
	case command.ViewThisMonth:
		return s.window(ctx, format.TitleThisMonth, datewindow.ThisMonth(now, s.loc))
	case command.ViewNextMonth:
		return s.window(ctx, format.TitleNextMonth, datewindow.NextMonth(now, s.loc))
	case command.ViewThisWeek:
		return s.window(ctx, format.TitleThisWeek, datewindow.ThisWeek(now, s.loc))
	case command.ViewNextWeek:
		return s.window(ctx, format.TitleNextWeek, datewindow.NextWeek(now, s.loc))
	case command.ViewSpecificMonth:
		title := format.MonthTitle(c.Month, c.Year)
		load := func(ctx context.Context) ([]domain.Activity, error) {
			return s.activities.QueryByMonth(ctx, c.Month, c.Year)
		}
		return s.list(ctx, title, load, func(a []domain.Activity) string {
			return format.List(a, title)
		})

	case command.Create:
		a, err := s.activities.Create(ctx, c.NewActivity())
		if err != nil {
			return "", chatError(err)
		}
		return format.Confirmation("新增", *a), nil
	case command.Update:
		a, err := s.activities.Update(ctx, c.ID, c.Patch())
		if err != nil {
			return "", chatError(err)
		}
		return format.Confirmation("更新", *a), nil
	case command.Delete:
		a, err := s.activities.Delete(ctx, c.ID)
		if err != nil {
			return "", chatError(err)
		}
		return format.Confirmation("刪除", *a), nil

	case command.Help:
		return format.Help(c.Admin), nil
	case command.Malformed:
		return "", errors.NewValidationError(c.Hint, map[string]interface{}{"action": string(c.Action)})
	case command.Forbidden:
		return "", errors.NewAuthorizationError(format.Forbidden(string(c.Action)))
	case command.Unknown:
		return "", errors.NewUnknownCommandError(c.Text)
	}
	return "", errors.NewInternalError(format.GenericFailure, fmt.Errorf("unhandled command %T", cmd))
}

func (s *commandService) window(ctx context.Context, title string, w datewindow.Window) (string, error) {
	load := func(ctx context.Context) ([]domain.Activity, error) {
		return s.activities.QueryByRange(ctx, w)
	}
	return s.list(ctx, title, load, func(a []domain.Activity) string {
		return format.List(a, title)
	})
}

func (s *commandService) list(ctx context.Context, title string, load func(context.Context) ([]domain.Activity, error), render func([]domain.Activity) string) (string, error) {
	activities, err := load(ctx)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeValidation) {
			return "", err
		}
		s.logger.WithError(err).WithField("title", title).Error("Failed to load activities for chat")
		return "", errors.NewInternalError(format.FetchFailure(title), err)
	}
	return render(activities), nil
}

// chatError keeps user-facing failures and hides the rest behind a
// generic apology
func chatError(err error) error {
	appErr := errors.FromError(err)
	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeNotFound, errors.ErrorTypeConflict, errors.ErrorTypeAuthorization:
		return appErr
	}
	return errors.NewInternalError(format.GenericFailure, err)
}

// ReplyForError renders a command failure as chat text
func ReplyForError(err error) string {
	if appErr, ok := errors.As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return format.GenericFailure
}

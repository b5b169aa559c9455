package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/datewindow"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/repository"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// Validation messages shown to chat users and API clients
const (
	msgInvalidName   = "活動名稱不可為空，且不得超過255字。\nName is required and must be at most 255 characters."
	msgInvalidDate   = "日期格式錯誤。請使用 YYYY-MM-DD，例如：2025-01-15\nInvalid date, use YYYY-MM-DD."
	msgPastDate      = "日期不可早於今天。\nThe date cannot be in the past."
	msgInvalidStart  = "開始時間格式錯誤。請使用 HH:MM\nInvalid start time, use HH:MM."
	msgInvalidEnd    = "結束時間格式錯誤。請使用 HH:MM\nInvalid end time, use HH:MM."
	msgTimeOrder     = "開始時間必須早於結束時間。\nThe start time must be before the end time."
	msgEmptyPatch    = "請至少提供一個要更新的欄位。\nAt least one of name, date, start_time or end_time is required."
	msgDuplicate     = "此日期和活動名稱已存在，請使用不同的組合。\nAn activity with this name already exists on that date."
	msgNotFound      = "找不到指定的活動。\nActivity not found."
	msgInvalidMonth  = "月份必須介於 1 到 12。\nMonth must be between 1 and 12."
	msgInvalidCutoff = "清除日期格式錯誤。\nInvalid cutoff date."
)

type activityService struct {
	repo   repository.ActivityRepository
	cache  ActivityCache
	loc    *time.Location
	now    func() time.Time
	logger *logger.Logger
}

// NewActivityService creates the activity service. cache may be nil.
func NewActivityService(repo repository.ActivityRepository, cache ActivityCache, loc *time.Location, now func() time.Time, log *logger.Logger) ActivityService {
	if now == nil {
		now = time.Now
	}
	return &activityService{
		repo:   repo,
		cache:  cache,
		loc:    loc,
		now:    now,
		logger: log.Named("activity"),
	}
}

// fields collects field level validation failures
type fields struct {
	messages []string
	details  map[string]interface{}
}

func (f *fields) add(field, message string) {
	if f.details == nil {
		f.details = map[string]interface{}{}
	}
	f.messages = append(f.messages, message)
	f.details[field] = message
}

func (f *fields) err() error {
	if len(f.messages) == 0 {
		return nil
	}
	return errors.NewValidationError(strings.Join(f.messages, "\n"), f.details)
}

func (s *activityService) today() string {
	return datewindow.Today(s.now(), s.loc).StartDate()
}

func (s *activityService) checkDate(f *fields, date string) {
	switch {
	case !domain.IsValidDate(date):
		f.add("date", msgInvalidDate)
	case date < s.today():
		f.add("date", msgPastDate)
	}
}

// normalizeTimes validates and zero-pads the time fields in place. An empty
// value means "no time".
func normalizeTimes(f *fields, start, end *string) {
	if start != nil && *start != "" {
		if domain.IsValidTime(*start) {
			*start = domain.NormalizeTime(*start)
		} else {
			f.add("start_time", msgInvalidStart)
		}
	}
	if end != nil && *end != "" {
		if domain.IsValidEndTime(*end) {
			*end = domain.NormalizeTime(*end)
		} else {
			f.add("end_time", msgInvalidEnd)
		}
	}
}

func checkOrder(f *fields, start, end *string) {
	if start == nil || end == nil || *start == "" || *end == "" {
		return
	}
	if !domain.TimeBefore(*start, *end) {
		f.add("time", msgTimeOrder)
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// storeError maps repository sentinels onto the error taxonomy
func (s *activityService) storeError(op string, err error) error {
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError(msgNotFound)
	case stderrors.Is(err, repository.ErrConflict):
		return errors.NewConflictError(msgDuplicate, err)
	}
	s.logger.WithError(err).WithField("op", op).Error("Activity store failure")
	return errors.NewInternalError("Failed to "+op+" activity", err)
}

func (s *activityService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *activityService) Create(ctx context.Context, in domain.NewActivity) (*domain.Activity, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.StartTime = copyString(in.StartTime)
	in.EndTime = copyString(in.EndTime)

	var f fields
	if !domain.IsValidName(in.Name) {
		f.add("name", msgInvalidName)
	}
	s.checkDate(&f, in.Date)
	normalizeTimes(&f, in.StartTime, in.EndTime)
	checkOrder(&f, in.StartTime, in.EndTime)
	if err := f.err(); err != nil {
		return nil, err
	}

	// Empty times are stored as NULL
	in.StartTime = domain.StringPtr(deref(in.StartTime))
	in.EndTime = domain.StringPtr(deref(in.EndTime))

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, s.storeError("create", err)
	}
	s.invalidate(ctx)

	s.logger.WithFields(map[string]interface{}{
		"activity_id": created.ID,
		"date":        created.Date,
	}).Info("Activity created")
	return created, nil
}

func (s *activityService) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	if id <= 0 {
		return nil, errors.NewValidationError("ID 必須是正整數。\nThe id must be a positive number.", nil)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}
	return a, nil
}

func (s *activityService) Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error) {
	if patch.IsEmpty() {
		return nil, errors.NewValidationError(msgEmptyPatch, nil)
	}

	patch.Name = copyString(patch.Name)
	patch.StartTime = copyString(patch.StartTime)
	patch.EndTime = copyString(patch.EndTime)

	var f fields
	if patch.Name != nil {
		*patch.Name = strings.TrimSpace(*patch.Name)
		if !domain.IsValidName(*patch.Name) {
			f.add("name", msgInvalidName)
		}
	}
	if patch.Date != nil {
		s.checkDate(&f, *patch.Date)
	}
	normalizeTimes(&f, patch.StartTime, patch.EndTime)
	if err := f.err(); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Order is checked against the stored value of whichever side is unchanged
	start, end := existing.StartTime, existing.EndTime
	if patch.StartTime != nil {
		start = patch.StartTime
	}
	if patch.EndTime != nil {
		end = patch.EndTime
	}
	checkOrder(&f, start, end)
	if err := f.err(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.storeError("update", err)
	}
	s.invalidate(ctx)

	s.logger.WithField("activity_id", id).Info("Activity updated")
	return updated, nil
}

func (s *activityService) Delete(ctx context.Context, id int64) (*domain.Activity, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, s.storeError("delete", err)
	}
	s.invalidate(ctx)

	s.logger.WithField("activity_id", id).Info("Activity deleted")
	return existing, nil
}

func (s *activityService) QueryByMonth(ctx context.Context, month time.Month, year int) ([]domain.Activity, error) {
	if month < time.January || month > time.December {
		return nil, errors.NewValidationError(msgInvalidMonth, map[string]interface{}{"month": int(month)})
	}
	return s.QueryByRange(ctx, datewindow.Month(month, year, s.loc))
}

func (s *activityService) QueryByRange(ctx context.Context, w datewindow.Window) ([]domain.Activity, error) {
	start, end := w.StartDate(), w.EndDate()
	load := func(ctx context.Context) ([]domain.Activity, error) {
		return s.repo.ListByRange(ctx, start, end)
	}

	var (
		activities []domain.Activity
		err        error
	)
	if s.cache != nil {
		activities, err = s.cache.Range(ctx, start, end, load)
	} else {
		activities, err = load(ctx)
	}
	if err != nil {
		return nil, s.storeError("query", err)
	}
	return activities, nil
}

func (s *activityService) QueryAll(ctx context.Context) ([]domain.Activity, error) {
	var (
		activities []domain.Activity
		err        error
	)
	if s.cache != nil {
		activities, err = s.cache.All(ctx, s.repo.ListAll)
	} else {
		activities, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, s.storeError("query", err)
	}
	return activities, nil
}

func (s *activityService) CleanupBefore(ctx context.Context, cutoff string) (*domain.CleanupResult, error) {
	if !domain.IsValidDate(cutoff) {
		return nil, errors.NewValidationError(msgInvalidCutoff, map[string]interface{}{"cutoff": cutoff})
	}

	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return nil, s.storeError("clean up", err)
	}
	if len(deleted) > 0 {
		s.invalidate(ctx)
	}

	s.logger.WithFields(map[string]interface{}{
		"cutoff":  cutoff,
		"deleted": len(deleted),
	}).Info("Old activities cleaned up")

	return &domain.CleanupResult{
		DeletedCount:      len(deleted),
		CutoffDate:        cutoff,
		DeletedActivities: deleted,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

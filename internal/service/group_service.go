package service

import (
	"context"
	stderrors "errors"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/repository"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

type groupService struct {
	repo      repository.GroupRepository
	messenger Messenger
	logger    *logger.Logger
}

// NewGroupService creates the group registry service
func NewGroupService(repo repository.GroupRepository, messenger Messenger, log *logger.Logger) GroupService {
	return &groupService{
		repo:      repo,
		messenger: messenger,
		logger:    log.Named("group"),
	}
}

func (s *groupService) Register(ctx context.Context, groupID string) (*domain.ReminderGroup, error) {
	if groupID == "" {
		return nil, errors.NewValidationError("Group id is required", nil)
	}

	// The name is cosmetic; registration goes ahead without it
	var name string
	if s.messenger != nil {
		if summary, err := s.messenger.GroupSummary(ctx, groupID); err == nil {
			name = summary.GroupName
		} else {
			s.logger.WithError(err).WithField("group_id", groupID).Warn("Could not fetch group summary")
		}
	}

	g, err := s.repo.Upsert(ctx, groupID, name)
	if err != nil {
		s.logger.WithError(err).WithField("group_id", groupID).Error("Failed to register group")
		return nil, errors.NewInternalError("Failed to register group", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"group_id":   g.GroupID,
		"group_name": g.GroupName,
	}).Info("Group registered for reminders")
	return g, nil
}

func (s *groupService) Leave(ctx context.Context, groupID string) error {
	err := s.repo.Deactivate(ctx, groupID)
	if stderrors.Is(err, repository.ErrNotFound) {
		s.logger.WithField("group_id", groupID).Info("Left an unregistered group")
		return nil
	}
	if err != nil {
		s.logger.WithError(err).WithField("group_id", groupID).Error("Failed to deactivate group")
		return errors.NewInternalError("Failed to deactivate group", err)
	}

	s.logger.WithField("group_id", groupID).Info("Group deactivated")
	return nil
}

func (s *groupService) Rename(ctx context.Context, groupID, groupName string) error {
	err := s.repo.Rename(ctx, groupID, groupName)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFoundError("Group not found")
	}
	if err != nil {
		return errors.NewInternalError("Failed to rename group", err)
	}
	return nil
}

func (s *groupService) ListActive(ctx context.Context) ([]domain.ReminderGroup, error) {
	groups, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list groups", err)
	}
	return groups, nil
}

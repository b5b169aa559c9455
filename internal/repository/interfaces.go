package repository

import (
	"context"
	"errors"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
)

// Sentinel errors returned by every repository implementation
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// ActivityRepository defines the interface for activity data operations
type ActivityRepository interface {
	// Create inserts an activity; ErrConflict when name and date already exist
	Create(ctx context.Context, activity domain.NewActivity) (*domain.Activity, error)

	// GetByID retrieves an activity; ErrNotFound when missing
	GetByID(ctx context.Context, id int64) (*domain.Activity, error)

	// Update applies the non-nil fields of patch and refreshes updated_at
	Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error)

	// Delete removes an activity; ErrNotFound when missing
	Delete(ctx context.Context, id int64) error

	// ListByRange returns activities with start <= date <= end (YYYY-MM-DD)
	ListByRange(ctx context.Context, start, end string) ([]domain.Activity, error)

	// ListAll returns every activity
	ListAll(ctx context.Context) ([]domain.Activity, error)

	// DeleteBefore removes activities dated strictly before cutoff and returns them
	DeleteBefore(ctx context.Context, cutoff string) ([]domain.Activity, error)
}

// GroupRepository defines the interface for reminder group registry operations
type GroupRepository interface {
	// Upsert registers a group, reactivating it if it left before
	Upsert(ctx context.Context, groupID, groupName string) (*domain.ReminderGroup, error)

	// Deactivate marks a group inactive; ErrNotFound when unknown
	Deactivate(ctx context.Context, groupID string) error

	// Rename updates the display name; ErrNotFound when unknown
	Rename(ctx context.Context, groupID, groupName string) error

	// ListActive returns active groups in registration order
	ListActive(ctx context.Context) ([]domain.ReminderGroup, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Activity ActivityRepository
	Group    GroupRepository
}

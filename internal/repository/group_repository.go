package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/database"
)

const groupColumns = `group_id, group_name, is_active, created_at, updated_at`

// groupRepository handles the reminder group registry with PostgreSQL
type groupRepository struct {
	db *database.PostgresDB
}

// NewGroupRepository creates a new PostgreSQL group repository
func NewGroupRepository(db *database.PostgresDB) GroupRepository {
	return &groupRepository{db: db}
}

func scanGroup(row pgx.Row) (*domain.ReminderGroup, error) {
	g := &domain.ReminderGroup{}
	if err := row.Scan(&g.GroupID, &g.GroupName, &g.IsActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return g, nil
}

// Upsert registers a group or reactivates a known one. An empty name keeps
// the stored name.
func (r *groupRepository) Upsert(ctx context.Context, groupID, groupName string) (*domain.ReminderGroup, error) {
	query := `
		INSERT INTO reminder_groups (group_id, group_name, is_active)
		VALUES ($1, $2, true)
		ON CONFLICT (group_id) DO UPDATE SET
			group_name = COALESCE(NULLIF(EXCLUDED.group_name, ''), reminder_groups.group_name),
			is_active = true
		RETURNING ` + groupColumns

	g, err := scanGroup(r.db.Pool.QueryRow(ctx, query, groupID, groupName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert group %s: %w", groupID, translatePgError(err))
	}
	return g, nil
}

// Deactivate marks a group as no longer receiving reminders
func (r *groupRepository) Deactivate(ctx context.Context, groupID string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE reminder_groups SET is_active = false WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to deactivate group %s: %w", groupID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to deactivate group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// Rename updates the stored display name
func (r *groupRepository) Rename(ctx context.Context, groupID, groupName string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE reminder_groups SET group_name = $2 WHERE group_id = $1`, groupID, groupName)
	if err != nil {
		return fmt.Errorf("failed to rename group %s: %w", groupID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to rename group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// ListActive returns active groups oldest first
func (r *groupRepository) ListActive(ctx context.Context) ([]domain.ReminderGroup, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+groupColumns+` FROM reminder_groups
		WHERE is_active = true ORDER BY created_at ASC, group_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := make([]domain.ReminderGroup, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

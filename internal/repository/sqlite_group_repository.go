package repository

import (
	"context"
	"fmt"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/database"
)

type sqliteGroupRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteGroupRepository creates a group repository backed by SQLite
func NewSQLiteGroupRepository(db *database.SQLiteDB) GroupRepository {
	return &sqliteGroupRepository{db: db}
}

func scanSQLiteGroup(row scanner) (*domain.ReminderGroup, error) {
	var (
		g                domain.ReminderGroup
		created, updated string
	)
	if err := row.Scan(&g.GroupID, &g.GroupName, &g.IsActive, &created, &updated); err != nil {
		return nil, err
	}
	g.CreatedAt = parseSQLiteTime(created)
	g.UpdatedAt = parseSQLiteTime(updated)
	return &g, nil
}

func (r *sqliteGroupRepository) Upsert(ctx context.Context, groupID, groupName string) (*domain.ReminderGroup, error) {
	query := `
		INSERT INTO reminder_groups (group_id, group_name, is_active)
		VALUES (?, ?, 1)
		ON CONFLICT (group_id) DO UPDATE SET
			group_name = COALESCE(NULLIF(excluded.group_name, ''), reminder_groups.group_name),
			is_active = 1,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		RETURNING ` + groupColumns

	g, err := scanSQLiteGroup(r.db.DB.QueryRowContext(ctx, query, groupID, groupName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert group %s: %w", groupID, translateSQLiteError(err))
	}
	return g, nil
}

func (r *sqliteGroupRepository) exec(ctx context.Context, op, groupID, query string, args ...interface{}) error {
	res, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s group %s: %w", op, groupID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s group %s: %w", op, groupID, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s group %s: %w", op, groupID, ErrNotFound)
	}
	return nil
}

func (r *sqliteGroupRepository) Deactivate(ctx context.Context, groupID string) error {
	return r.exec(ctx, "deactivate", groupID, `UPDATE reminder_groups
		SET is_active = 0, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE group_id = ?`, groupID)
}

func (r *sqliteGroupRepository) Rename(ctx context.Context, groupID, groupName string) error {
	return r.exec(ctx, "rename", groupID, `UPDATE reminder_groups
		SET group_name = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE group_id = ?`, groupName, groupID)
}

func (r *sqliteGroupRepository) ListActive(ctx context.Context) ([]domain.ReminderGroup, error) {
	rows, err := r.db.DB.QueryContext(ctx, `SELECT `+groupColumns+` FROM reminder_groups
		WHERE is_active = 1 ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := make([]domain.ReminderGroup, 0)
	for rows.Next() {
		g, err := scanSQLiteGroup(rows)
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

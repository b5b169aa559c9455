package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/database"
)

const sqliteActivityColumns = `id, name, date, start_time, end_time, created_at, updated_at`

const sqliteActivityOrder = `ORDER BY date ASC, start_time IS NOT NULL, start_time ASC, id ASC`

// sqliteTimestamp is the layout written by the schema defaults
const sqliteTimestamp = "2006-01-02T15:04:05Z"

type sqliteActivityRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteActivityRepository creates an activity repository backed by SQLite
func NewSQLiteActivityRepository(db *database.SQLiteDB) ActivityRepository {
	return &sqliteActivityRepository{db: db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteActivity(row scanner) (*domain.Activity, error) {
	var (
		a                domain.Activity
		start, end       sql.NullString
		created, updated string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Date, &start, &end, &created, &updated); err != nil {
		return nil, err
	}
	if start.Valid {
		a.StartTime = &start.String
	}
	if end.Valid {
		a.EndTime = &end.String
	}
	a.CreatedAt = parseSQLiteTime(created)
	a.UpdatedAt = parseSQLiteTime(updated)
	return &a, nil
}

func parseSQLiteTime(s string) time.Time {
	t, err := time.Parse(sqliteTimestamp, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// translateSQLiteError maps driver errors onto the repository sentinels
func translateSQLiteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrConflict, sqliteErr.Error())
		}
	}
	return err
}

func (r *sqliteActivityRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Activity, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		a, err := scanSQLiteActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}

func (r *sqliteActivityRepository) Create(ctx context.Context, activity domain.NewActivity) (*domain.Activity, error) {
	query := `INSERT INTO activities (name, date, start_time, end_time) VALUES (?, ?, ?, ?)
		RETURNING ` + sqliteActivityColumns

	created, err := scanSQLiteActivity(r.db.DB.QueryRowContext(ctx, query,
		activity.Name, activity.Date, nullable(activity.StartTime), nullable(activity.EndTime)))
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", translateSQLiteError(err))
	}
	return created, nil
}

func (r *sqliteActivityRepository) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	query := `SELECT ` + sqliteActivityColumns + ` FROM activities WHERE id = ?`

	a, err := scanSQLiteActivity(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get activity %d: %w", id, translateSQLiteError(err))
	}
	return a, nil
}

func (r *sqliteActivityRepository) Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error) {
	sets, args := patchAssignments(patch, func(string, int) string { return "?" })
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, `updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`)
	args = append(args, id)
	query := `UPDATE activities SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + sqliteActivityColumns

	a, err := scanSQLiteActivity(r.db.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update activity %d: %w", id, translateSQLiteError(err))
	}
	return a, nil
}

func (r *sqliteActivityRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.DB.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete activity %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to delete activity %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteActivityRepository) ListByRange(ctx context.Context, start, end string) ([]domain.Activity, error) {
	return r.query(ctx, `SELECT `+sqliteActivityColumns+` FROM activities
		WHERE date BETWEEN ? AND ? `+sqliteActivityOrder, start, end)
}

func (r *sqliteActivityRepository) ListAll(ctx context.Context) ([]domain.Activity, error) {
	return r.query(ctx, `SELECT `+sqliteActivityColumns+` FROM activities `+sqliteActivityOrder)
}

func (r *sqliteActivityRepository) DeleteBefore(ctx context.Context, cutoff string) ([]domain.Activity, error) {
	return r.query(ctx, `DELETE FROM activities WHERE date < ? RETURNING `+sqliteActivityColumns, cutoff)
}

func nullable(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

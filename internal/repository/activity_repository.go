package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/database"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

// activityColumns reads dates and times back as text so no time zone
// conversion is applied to calendar values
const activityColumns = `id, name, date::text, start_time::text, end_time::text, created_at, updated_at`

const activityOrder = `ORDER BY date ASC, start_time ASC NULLS FIRST, id ASC`

// activityRepository handles activity operations with PostgreSQL
type activityRepository struct {
	db *database.PostgresDB
}

// NewActivityRepository creates a new PostgreSQL activity repository
func NewActivityRepository(db *database.PostgresDB) ActivityRepository {
	return &activityRepository{db: db}
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	a := &domain.Activity{}
	err := row.Scan(&a.ID, &a.Name, &a.Date, &a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectActivities(rows pgx.Rows) ([]domain.Activity, error) {
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
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

// translatePgError maps driver errors onto the repository sentinels
func translatePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// Create inserts a new activity
func (r *activityRepository) Create(ctx context.Context, activity domain.NewActivity) (*domain.Activity, error) {
	query := `
		INSERT INTO activities (name, date, start_time, end_time)
		VALUES ($1, $2::text::date, $3::text::time, $4::text::time)
		RETURNING ` + activityColumns

	created, err := scanActivity(r.db.Pool.QueryRow(ctx, query,
		activity.Name,
		activity.Date,
		activity.StartTime,
		activity.EndTime,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", translatePgError(err))
	}
	return created, nil
}

// GetByID retrieves an activity by id
func (r *activityRepository) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	a, err := scanActivity(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get activity %d: %w", id, translatePgError(err))
	}
	return a, nil
}

// Update applies a partial update
func (r *activityRepository) Update(ctx context.Context, id int64, patch domain.ActivityPatch) (*domain.Activity, error) {
	sets, args := patchAssignments(patch, pgPlaceholder)
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE activities SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), activityColumns)

	a, err := scanActivity(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update activity %d: %w", id, translatePgError(err))
	}
	return a, nil
}

// Delete removes an activity by id
func (r *activityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete activity %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListByRange returns activities between two dates inclusive
func (r *activityRepository) ListByRange(ctx context.Context, start, end string) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE date BETWEEN $1::text::date AND $2::text::date ` + activityOrder

	rows, err := r.db.Pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	return collectActivities(rows)
}

// ListAll returns every activity
func (r *activityRepository) ListAll(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+activityColumns+` FROM activities `+activityOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	return collectActivities(rows)
}

// DeleteBefore removes activities older than cutoff
func (r *activityRepository) DeleteBefore(ctx context.Context, cutoff string) ([]domain.Activity, error) {
	query := `DELETE FROM activities WHERE date < $1::text::date RETURNING ` + activityColumns

	rows, err := r.db.Pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete old activities: %w", err)
	}
	return collectActivities(rows)
}

// pgPlaceholder casts text parameters to the column's calendar type
func pgPlaceholder(column string, n int) string {
	p := fmt.Sprintf("$%d", n)
	switch column {
	case "date":
		return p + "::text::date"
	case "start_time", "end_time":
		return p + "::text::time"
	}
	return p
}

// patchAssignments builds "column = <placeholder>" clauses for the non-nil
// fields of patch. placeholder receives the 1-based argument position.
// An empty string clears the column.
func patchAssignments(patch domain.ActivityPatch, placeholder func(column string, n int) string) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		var arg interface{} = *value
		if *value == "" {
			arg = nil
		}
		args = append(args, arg)
		sets = append(sets, column+" = "+placeholder(column, len(args)))
	}

	add("name", patch.Name)
	add("date", patch.Date)
	add("start_time", patch.StartTime)
	add("end_time", patch.EndTime)
	return sets, args
}

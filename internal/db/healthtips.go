package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// CreateHealthTip creates a new health tip
func (db *DB) CreateHealthTip(ctx context.Context, tip *HealthTip) error {
	query := `
		INSERT INTO health_tips (title, content, tags, relevant_week, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		tip.Title, tip.Content, pq.Array(tip.Tags), tip.RelevantWeek, tip.CreatedBy,
	).Scan(&tip.ID, &tip.CreatedAt)
}

// GetHealthTipByID retrieves a health tip by ID
func (db *DB) GetHealthTipByID(ctx context.Context, id string) (*HealthTip, error) {
	query := `
		SELECT id, title, content, tags, relevant_week, created_by, created_at
		FROM health_tips
		WHERE id = $1
	`

	tip := &HealthTip{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&tip.ID, &tip.Title, &tip.Content, pq.Array(&tip.Tags),
		&tip.RelevantWeek, &tip.CreatedBy, &tip.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health tip: %w", err)
	}

	return tip, nil
}

// ListRecentHealthTips retrieves the N most recently created tips
func (db *DB) ListRecentHealthTips(ctx context.Context, limit int) ([]HealthTip, error) {
	query := `
		SELECT id, title, content, tags, relevant_week, created_by, created_at
		FROM health_tips
		ORDER BY created_at DESC
		LIMIT $1
	`
	return db.queryHealthTips(ctx, query, limit)
}

// ListHealthTipsByWeek retrieves all tips pinned to an exact gestational week,
// newest first
func (db *DB) ListHealthTipsByWeek(ctx context.Context, week int) ([]HealthTip, error) {
	query := `
		SELECT id, title, content, tags, relevant_week, created_by, created_at
		FROM health_tips
		WHERE relevant_week = $1
		ORDER BY created_at DESC
	`
	return db.queryHealthTips(ctx, query, week)
}

// ListHealthTipsByWeeks retrieves tips for a set of gestational weeks, ordered by
// week descending then creation time descending
func (db *DB) ListHealthTipsByWeeks(ctx context.Context, weeks []int) ([]HealthTip, error) {
	query := `
		SELECT id, title, content, tags, relevant_week, created_by, created_at
		FROM health_tips
		WHERE relevant_week = ANY($1)
		ORDER BY relevant_week DESC, created_at DESC
	`
	return db.queryHealthTips(ctx, query, pq.Array(weeks))
}

func (db *DB) queryHealthTips(ctx context.Context, query string, args ...interface{}) ([]HealthTip, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list health tips: %w", err)
	}
	defer rows.Close()

	tips := make([]HealthTip, 0)
	for rows.Next() {
		var tip HealthTip
		if err := rows.Scan(&tip.ID, &tip.Title, &tip.Content, pq.Array(&tip.Tags),
			&tip.RelevantWeek, &tip.CreatedBy, &tip.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan health tip: %w", err)
		}
		tips = append(tips, tip)
	}

	return tips, nil
}

// HasHealthTipForWeekOn reports whether a tip pinned to the given week was already
// created during the calendar day containing the given moment. This is the dedup
// check for the daily generation run: the key is (week, day), shared across patients.
func (db *DB) HasHealthTipForWeekOn(ctx context.Context, week int, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM health_tips
			WHERE relevant_week = $1 AND created_at >= $2 AND created_at < $3
		)
	`

	var exists bool
	if err := db.QueryRowContext(ctx, query, week, dayStart, dayEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing tip: %w", err)
	}

	return exists, nil
}

// UpdateHealthTip updates a health tip's fields
func (db *DB) UpdateHealthTip(ctx context.Context, tip *HealthTip) error {
	query := `
		UPDATE health_tips
		SET title = $1, content = $2, tags = $3, relevant_week = $4
		WHERE id = $5
	`

	result, err := db.ExecContext(ctx, query,
		tip.Title, tip.Content, pq.Array(tip.Tags), tip.RelevantWeek, tip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update health tip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteHealthTip deletes a health tip
func (db *DB) DeleteHealthTip(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM health_tips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete health tip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

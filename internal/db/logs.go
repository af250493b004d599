package db

import (
	"context"
	"fmt"
)

// CreateLogEntry persists an activity log record
func (db *DB) CreateLogEntry(ctx context.Context, entry *LogEntry) error {
	query := `
		INSERT INTO activity_logs (actor_id, actor_role, action, resource, resource_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		entry.ActorID, entry.ActorRole, entry.Action, entry.Resource, entry.ResourceID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListLogEntries retrieves the N most recent activity log records
func (db *DB) ListLogEntries(ctx context.Context, limit int) ([]LogEntry, error) {
	query := `
		SELECT id, actor_id, actor_role, action, resource, resource_id, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	entries := make([]LogEntry, 0, limit)
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Action,
			&e.Resource, &e.ResourceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

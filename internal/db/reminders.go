package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateReminder creates a new reminder
func (db *DB) CreateReminder(ctx context.Context, reminder *Reminder) error {
	query := `
		INSERT INTO reminders (patient_id, hospital_id, type, message, scheduled_time, sent, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		reminder.PatientID, reminder.HospitalID, reminder.Type, reminder.Message,
		reminder.ScheduledTime, reminder.Sent, reminder.CreatedBy,
	).Scan(&reminder.ID, &reminder.CreatedAt)
}

// GetReminderByID retrieves a reminder by ID
func (db *DB) GetReminderByID(ctx context.Context, id string) (*Reminder, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, message, scheduled_time, sent, sent_at, created_by, created_at
		FROM reminders
		WHERE id = $1
	`

	reminder := &Reminder{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&reminder.ID, &reminder.PatientID, &reminder.HospitalID, &reminder.Type,
		&reminder.Message, &reminder.ScheduledTime, &reminder.Sent, &reminder.SentAt,
		&reminder.CreatedBy, &reminder.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return reminder, nil
}

// ListRemindersByHospital retrieves all reminders for a hospital
func (db *DB) ListRemindersByHospital(ctx context.Context, hospitalID string) ([]Reminder, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, message, scheduled_time, sent, sent_at, created_by, created_at
		FROM reminders
		WHERE hospital_id = $1
		ORDER BY scheduled_time DESC
	`
	return db.queryReminders(ctx, query, hospitalID)
}

// ListRemindersByPatient retrieves all reminders for a patient
func (db *DB) ListRemindersByPatient(ctx context.Context, patientID string) ([]Reminder, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, message, scheduled_time, sent, sent_at, created_by, created_at
		FROM reminders
		WHERE patient_id = $1
		ORDER BY scheduled_time DESC
	`
	return db.queryReminders(ctx, query, patientID)
}

func (db *DB) queryReminders(ctx context.Context, query string, args ...interface{}) ([]Reminder, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	reminders := make([]Reminder, 0)
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.PatientID, &r.HospitalID, &r.Type, &r.Message,
			&r.ScheduledTime, &r.Sent, &r.SentAt, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}

	return reminders, nil
}

// GetDueReminders retrieves unsent reminders whose scheduled time has passed,
// joined with the patient name and phone number needed for delivery.
func (db *DB) GetDueReminders(ctx context.Context, now time.Time) ([]DueReminder, error) {
	query := `
		SELECT r.id, r.patient_id, r.hospital_id, r.type, r.message, r.scheduled_time,
			r.sent, r.sent_at, r.created_by, r.created_at,
			p.full_name, p.phone_number
		FROM reminders r
		JOIN patients p ON p.id = r.patient_id
		WHERE r.scheduled_time <= $1 AND r.sent = FALSE
		ORDER BY r.scheduled_time
	`

	rows, err := db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due reminders: %w", err)
	}
	defer rows.Close()

	due := make([]DueReminder, 0)
	for rows.Next() {
		var d DueReminder
		if err := rows.Scan(&d.ID, &d.PatientID, &d.HospitalID, &d.Type, &d.Message,
			&d.ScheduledTime, &d.Sent, &d.SentAt, &d.CreatedBy, &d.CreatedAt,
			&d.PatientName, &d.PatientPhone); err != nil {
			return nil, fmt.Errorf("failed to scan due reminder: %w", err)
		}
		due = append(due, d)
	}

	return due, nil
}

// MarkReminderSent flips a reminder's sent flag and records when it was delivered.
// The update is conditional on sent = FALSE so a reminder can only transition once;
// a second attempt reports ErrNotFound.
func (db *DB) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `
		UPDATE reminders
		SET sent = TRUE, sent_at = $1
		WHERE id = $2 AND sent = FALSE
	`

	result, err := db.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
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

// UpdateReminder updates a reminder's editable fields
func (db *DB) UpdateReminder(ctx context.Context, reminder *Reminder) error {
	query := `
		UPDATE reminders
		SET type = $1, message = $2, scheduled_time = $3
		WHERE id = $4
	`

	result, err := db.ExecContext(ctx, query,
		reminder.Type, reminder.Message, reminder.ScheduledTime, reminder.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
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

// DeleteReminder deletes a reminder
func (db *DB) DeleteReminder(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
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

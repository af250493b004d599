package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateAppointment creates a new appointment
func (db *DB) CreateAppointment(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (patient_id, hospital_id, type, status, scheduled_at, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		appt.PatientID, appt.HospitalID, appt.Type, appt.Status,
		appt.ScheduledAt, appt.Notes, appt.CreatedBy,
	).Scan(&appt.ID, &appt.CreatedAt)
}

// GetAppointmentByID retrieves an appointment by ID
func (db *DB) GetAppointmentByID(ctx context.Context, id string) (*Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, status, scheduled_at, notes, created_by, created_at
		FROM appointments
		WHERE id = $1
	`

	appt := &Appointment{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&appt.ID, &appt.PatientID, &appt.HospitalID, &appt.Type, &appt.Status,
		&appt.ScheduledAt, &appt.Notes, &appt.CreatedBy, &appt.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return appt, nil
}

// ListAppointmentsByHospital retrieves all appointments for a hospital
func (db *DB) ListAppointmentsByHospital(ctx context.Context, hospitalID string) ([]Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, status, scheduled_at, notes, created_by, created_at
		FROM appointments
		WHERE hospital_id = $1
		ORDER BY scheduled_at DESC
	`
	return db.queryAppointments(ctx, query, hospitalID)
}

// ListAppointmentsByPatient retrieves all appointments for a patient
func (db *DB) ListAppointmentsByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, status, scheduled_at, notes, created_by, created_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY scheduled_at DESC
	`
	return db.queryAppointments(ctx, query, patientID)
}

func (db *DB) queryAppointments(ctx context.Context, query string, args ...interface{}) ([]Appointment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	appts := make([]Appointment, 0)
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.HospitalID, &a.Type, &a.Status,
			&a.ScheduledAt, &a.Notes, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appts = append(appts, a)
	}

	return appts, nil
}

// UpdateAppointment updates an appointment's editable fields
func (db *DB) UpdateAppointment(ctx context.Context, appt *Appointment) error {
	query := `
		UPDATE appointments
		SET type = $1, status = $2, scheduled_at = $3, notes = $4
		WHERE id = $5
	`

	result, err := db.ExecContext(ctx, query,
		appt.Type, appt.Status, appt.ScheduledAt, appt.Notes, appt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
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

// DeleteAppointment deletes an appointment
func (db *DB) DeleteAppointment(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
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

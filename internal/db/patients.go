package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/themobileprof/mhaas-be/internal/pregnancy"
)

// CreatePatient creates a new patient record. The estimated due date is always derived
// from the LMP here; a caller-supplied EDD is ignored so the two can never drift apart.
func (db *DB) CreatePatient(ctx context.Context, patient *Patient) error {
	edd, err := pregnancy.ComputeEDD(patient.LMP)
	if err != nil {
		return err
	}
	patient.EDD = &edd

	query := `
		INSERT INTO patients (user_id, hospital_id, registered_by, full_name, phone_number,
			date_of_birth, marital_status, lmp, edd, gravida, parity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		patient.UserID, patient.HospitalID, patient.RegisteredBy, patient.FullName,
		patient.PhoneNumber, patient.DateOfBirth, patient.MaritalStatus,
		patient.LMP, patient.EDD, patient.Gravida, patient.Parity,
	).Scan(&patient.ID, &patient.CreatedAt)
}

// GetPatientByID retrieves a patient by ID
func (db *DB) GetPatientByID(ctx context.Context, id string) (*Patient, error) {
	query := `
		SELECT id, user_id, hospital_id, registered_by, full_name, phone_number,
			date_of_birth, marital_status, lmp, edd, gravida, parity, created_at
		FROM patients
		WHERE id = $1
	`
	return db.scanPatient(db.QueryRowContext(ctx, query, id))
}

// GetPatientByUserID retrieves the patient record owned by a user account
func (db *DB) GetPatientByUserID(ctx context.Context, userID string) (*Patient, error) {
	query := `
		SELECT id, user_id, hospital_id, registered_by, full_name, phone_number,
			date_of_birth, marital_status, lmp, edd, gravida, parity, created_at
		FROM patients
		WHERE user_id = $1
	`
	return db.scanPatient(db.QueryRowContext(ctx, query, userID))
}

func (db *DB) scanPatient(row *sql.Row) (*Patient, error) {
	patient := &Patient{}
	err := row.Scan(
		&patient.ID, &patient.UserID, &patient.HospitalID, &patient.RegisteredBy,
		&patient.FullName, &patient.PhoneNumber, &patient.DateOfBirth, &patient.MaritalStatus,
		&patient.LMP, &patient.EDD, &patient.Gravida, &patient.Parity, &patient.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return patient, nil
}

// ListPatientsByHospital retrieves all patients registered at a hospital
func (db *DB) ListPatientsByHospital(ctx context.Context, hospitalID string) ([]Patient, error) {
	query := `
		SELECT id, user_id, hospital_id, registered_by, full_name, phone_number,
			date_of_birth, marital_status, lmp, edd, gravida, parity, created_at
		FROM patients
		WHERE hospital_id = $1
		ORDER BY full_name
	`
	return db.queryPatients(ctx, query, hospitalID)
}

// ListPatientsWithEDD retrieves every patient with a known estimated due date,
// across all hospitals. Used by the daily tip generation run.
func (db *DB) ListPatientsWithEDD(ctx context.Context) ([]Patient, error) {
	query := `
		SELECT id, user_id, hospital_id, registered_by, full_name, phone_number,
			date_of_birth, marital_status, lmp, edd, gravida, parity, created_at
		FROM patients
		WHERE edd IS NOT NULL
		ORDER BY created_at
	`
	return db.queryPatients(ctx, query)
}

func (db *DB) queryPatients(ctx context.Context, query string, args ...interface{}) ([]Patient, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	patients := make([]Patient, 0)
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.HospitalID, &p.RegisteredBy,
			&p.FullName, &p.PhoneNumber, &p.DateOfBirth, &p.MaritalStatus,
			&p.LMP, &p.EDD, &p.Gravida, &p.Parity, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}

	return patients, nil
}

// UpdatePatientLMP updates a patient's last menstrual period and recomputes the
// estimated due date from it. The EDD cannot be set independently.
func (db *DB) UpdatePatientLMP(ctx context.Context, id string, lmp time.Time) (*Patient, error) {
	edd, err := pregnancy.ComputeEDD(lmp)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE patients
		SET lmp = $1, edd = $2
		WHERE id = $3
		RETURNING id, user_id, hospital_id, registered_by, full_name, phone_number,
			date_of_birth, marital_status, lmp, edd, gravida, parity, created_at
	`
	return db.scanPatient(db.QueryRowContext(ctx, query, lmp, edd, id))
}

// DeletePatient deletes a patient record
func (db *DB) DeletePatient(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
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

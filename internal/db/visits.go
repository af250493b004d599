package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateVisit creates a new visit record
func (db *DB) CreateVisit(ctx context.Context, visit *Visit) error {
	query := `
		INSERT INTO visits (patient_id, hospital_id, type, notes, visit_date, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		visit.PatientID, visit.HospitalID, visit.Type, visit.Notes,
		visit.VisitDate, visit.RecordedBy,
	).Scan(&visit.ID, &visit.CreatedAt)
}

// GetVisitByID retrieves a visit by ID
func (db *DB) GetVisitByID(ctx context.Context, id string) (*Visit, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, notes, visit_date, recorded_by, created_at
		FROM visits
		WHERE id = $1
	`

	visit := &Visit{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.Type,
		&visit.Notes, &visit.VisitDate, &visit.RecordedBy, &visit.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	return visit, nil
}

// ListVisitsByPatient retrieves all visits for a patient, newest first
func (db *DB) ListVisitsByPatient(ctx context.Context, patientID string) ([]Visit, error) {
	query := `
		SELECT id, patient_id, hospital_id, type, notes, visit_date, recorded_by, created_at
		FROM visits
		WHERE patient_id = $1
		ORDER BY visit_date DESC
	`

	rows, err := db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	visits := make([]Visit, 0)
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.PatientID, &v.HospitalID, &v.Type,
			&v.Notes, &v.VisitDate, &v.RecordedBy, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}

	return visits, nil
}

// DeleteVisit deletes a visit record
func (db *DB) DeleteVisit(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
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

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateHospital creates a new hospital
func (db *DB) CreateHospital(ctx context.Context, hospital *Hospital) error {
	query := `
		INSERT INTO hospitals (name, code, address, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return db.QueryRowContext(ctx, query,
		hospital.Name, hospital.Code, hospital.Address, hospital.Phone,
	).Scan(&hospital.ID, &hospital.CreatedAt)
}

// GetHospitalByID retrieves a hospital by ID
func (db *DB) GetHospitalByID(ctx context.Context, id string) (*Hospital, error) {
	query := `
		SELECT id, name, code, address, phone, created_at
		FROM hospitals
		WHERE id = $1
	`

	hospital := &Hospital{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&hospital.ID, &hospital.Name, &hospital.Code,
		&hospital.Address, &hospital.Phone, &hospital.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}

	return hospital, nil
}

// ListHospitals retrieves all hospitals
func (db *DB) ListHospitals(ctx context.Context) ([]Hospital, error) {
	query := `
		SELECT id, name, code, address, phone, created_at
		FROM hospitals
		ORDER BY name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	defer rows.Close()

	hospitals := make([]Hospital, 0)
	for rows.Next() {
		var h Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Code, &h.Address, &h.Phone, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}

	return hospitals, nil
}

// UpdateHospital updates a hospital's details
func (db *DB) UpdateHospital(ctx context.Context, hospital *Hospital) error {
	query := `
		UPDATE hospitals
		SET name = $1, code = $2, address = $3, phone = $4
		WHERE id = $5
	`

	result, err := db.ExecContext(ctx, query,
		hospital.Name, hospital.Code, hospital.Address, hospital.Phone, hospital.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
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

// DeleteHospital deletes a hospital
func (db *DB) DeleteHospital(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM hospitals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hospital: %w", err)
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

package db

import (
	"context"
	"fmt"
	"time"
)

// DashboardStats holds the summary counts shown on the role dashboards
type DashboardStats struct {
	Patients          int `json:"patients"`
	AppointmentsToday int `json:"appointments_today"`
	UnsentReminders   int `json:"unsent_reminders"`
	HealthTips        int `json:"health_tips"`
}

// GetDashboardStats computes the dashboard counts. A nil hospitalID scopes the
// counts to the whole system (super admin view); otherwise to one hospital.
func (db *DB) GetDashboardStats(ctx context.Context, hospitalID *string, now time.Time) (*DashboardStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE $1::uuid IS NULL OR hospital_id = $1),
			(SELECT COUNT(*) FROM appointments
				WHERE ($1::uuid IS NULL OR hospital_id = $1)
				AND scheduled_at >= $2 AND scheduled_at < $3),
			(SELECT COUNT(*) FROM reminders
				WHERE ($1::uuid IS NULL OR hospital_id = $1) AND sent = FALSE),
			(SELECT COUNT(*) FROM health_tips)
	`

	stats := &DashboardStats{}
	err := db.QueryRowContext(ctx, query, hospitalID, dayStart, dayEnd).Scan(
		&stats.Patients, &stats.AppointmentsToday, &stats.UnsentReminders, &stats.HealthTips,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	return stats, nil
}

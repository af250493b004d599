package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMarkReminderSent(t *testing.T) {
	sentAt := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "unsent reminder transitions",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`UPDATE reminders`).
					WithArgs(sentAt, "r1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already sent reminder reports not found",
			setupMock: func(m sqlmock.Sqlmock) {
				// sent = FALSE in the WHERE clause means a second attempt matches no rows
				m.ExpectExec(`UPDATE reminders`).
					WithArgs(sentAt, "r1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setupMock(mock)

			err := db.MarkReminderSent(context.Background(), "r1", sentAt)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MarkReminderSent error = %v, want %v", err, tt.wantErr)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestGetDueReminders(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	scheduled := now.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "hospital_id", "type", "message", "scheduled_time",
		"sent", "sent_at", "created_by", "created_at",
		"full_name", "phone_number",
	}).AddRow("r1", "p1", "h1", ReminderAppointment, "Antenatal checkup tomorrow",
		scheduled, false, nil, "staff-1", now.Add(-24*time.Hour),
		"Amina Yusuf", "+2348011111111")

	mock.ExpectQuery(`JOIN patients p ON p.id = r.patient_id`).
		WithArgs(now).
		WillReturnRows(rows)

	due, err := db.GetDueReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("GetDueReminders returned error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("got %d due reminders, want 1", len(due))
	}

	d := due[0]
	if d.ID != "r1" || d.PatientName != "Amina Yusuf" || d.PatientPhone != "+2348011111111" {
		t.Errorf("unexpected due reminder: %+v", d)
	}
	if d.Sent {
		t.Error("due reminder must be unsent")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetDueReminders_Empty(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery(`JOIN patients p ON p.id = r.patient_id`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "patient_id", "hospital_id", "type", "message", "scheduled_time",
			"sent", "sent_at", "created_by", "created_at", "full_name", "phone_number",
		}))

	due, err := db.GetDueReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("GetDueReminders returned error: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("got %d due reminders, want 0", len(due))
	}
}

func TestCreateReminder(t *testing.T) {
	db, mock := newMockDB(t)

	reminder := &Reminder{
		PatientID:     "p1",
		HospitalID:    "h1",
		Type:          ReminderMedication,
		Message:       "Take your iron supplement",
		ScheduledTime: time.Date(2024, time.June, 2, 9, 0, 0, 0, time.UTC),
		CreatedBy:     "staff-1",
	}

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("r1", time.Now())
	mock.ExpectQuery(`INSERT INTO reminders`).
		WithArgs(reminder.PatientID, reminder.HospitalID, reminder.Type, reminder.Message,
			reminder.ScheduledTime, false, reminder.CreatedBy).
		WillReturnRows(rows)

	if err := db.CreateReminder(context.Background(), reminder); err != nil {
		t.Fatalf("CreateReminder returned error: %v", err)
	}
	if reminder.ID != "r1" {
		t.Errorf("ID = %q, want r1", reminder.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

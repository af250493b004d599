package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
	"github.com/themobileprof/mhaas-be/internal/notify"
)

type fakeReminderStore struct {
	due     []db.DueReminder
	dueErr  error
	markErr map[string]error
	marked  []string
}

func (f *fakeReminderStore) GetDueReminders(ctx context.Context, now time.Time) ([]db.DueReminder, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	// Reminders already marked sent stay out of later batches.
	out := make([]db.DueReminder, 0, len(f.due))
	for _, d := range f.due {
		if !f.isMarked(d.ID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) isMarked(id string) bool {
	for _, m := range f.marked {
		if m == id {
			return true
		}
	}
	return false
}

func (f *fakeReminderStore) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	if err := f.markErr[id]; err != nil {
		return err
	}
	f.marked = append(f.marked, id)
	return nil
}

type fakeNotifier struct {
	failFor map[string]string
	sends   []string
}

func (f *fakeNotifier) SendSMS(ctx context.Context, to, message string) notify.Result {
	f.sends = append(f.sends, to)
	if msg, ok := f.failFor[to]; ok {
		return notify.Result{Success: false, Message: "Failed to send SMS", Error: msg}
	}
	return notify.Result{Success: true, Message: "SMS sent successfully"}
}

type fakeAuditStore struct {
	entries []db.LogEntry
}

func (f *fakeAuditStore) CreateLogEntry(ctx context.Context, entry *db.LogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func dueReminder(id, phone, name string) db.DueReminder {
	return db.DueReminder{
		Reminder: db.Reminder{
			ID:            id,
			PatientID:     "p-" + id,
			Type:          db.ReminderAppointment,
			Message:       "Antenatal checkup tomorrow",
			ScheduledTime: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC),
			CreatedBy:     "staff-1",
		},
		PatientName:  name,
		PatientPhone: phone,
	}
}

func newTestScheduler(store *fakeReminderStore, notifier *fakeNotifier, auditStore *fakeAuditStore) *ReminderScheduler {
	s := NewReminderScheduler(store, notifier, audit.NewLogger(auditStore, nil), time.Minute)
	s.now = func() time.Time { return time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestReminderScheduler_RunOnce_SendsAndMarks(t *testing.T) {
	store := &fakeReminderStore{
		due: []db.DueReminder{
			dueReminder("r1", "+2348011111111", "Amina Yusuf"),
			dueReminder("r2", "+2348022222222", "Grace Okafor"),
		},
	}
	notifier := &fakeNotifier{}
	auditStore := &fakeAuditStore{}

	s := newTestScheduler(store, notifier, auditStore)

	sent, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(store.marked) != 2 {
		t.Errorf("marked %d reminders, want 2", len(store.marked))
	}
	if len(auditStore.entries) != 2 {
		t.Errorf("logged %d activities, want 2", len(auditStore.entries))
	}
}

func TestReminderScheduler_RunOnce_SecondRunSendsNothing(t *testing.T) {
	store := &fakeReminderStore{
		due: []db.DueReminder{dueReminder("r1", "+2348011111111", "Amina Yusuf")},
	}
	notifier := &fakeNotifier{}

	s := newTestScheduler(store, notifier, &fakeAuditStore{})

	if sent, _ := s.RunOnce(context.Background()); sent != 1 {
		t.Fatalf("first run sent = %d, want 1", sent)
	}
	if sent, _ := s.RunOnce(context.Background()); sent != 0 {
		t.Errorf("second run sent = %d, want 0", sent)
	}
	if len(notifier.sends) != 1 {
		t.Errorf("notifier called %d times, want 1", len(notifier.sends))
	}
}

func TestReminderScheduler_RunOnce_SkipsMissingPhone(t *testing.T) {
	store := &fakeReminderStore{
		due: []db.DueReminder{
			dueReminder("r1", "", "Amina Yusuf"),
			dueReminder("r2", "+2348022222222", "Grace Okafor"),
		},
	}
	notifier := &fakeNotifier{}

	s := newTestScheduler(store, notifier, &fakeAuditStore{})

	sent, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	// The phoneless reminder stays unsent so it can go out once a number is on file.
	if store.isMarked("r1") {
		t.Error("reminder without phone must not be marked sent")
	}
	if len(notifier.sends) != 1 {
		t.Errorf("notifier called %d times, want 1", len(notifier.sends))
	}
}

func TestReminderScheduler_RunOnce_FailedSendLeftForRetry(t *testing.T) {
	store := &fakeReminderStore{
		due: []db.DueReminder{dueReminder("r1", "+2348011111111", "Amina Yusuf")},
	}
	notifier := &fakeNotifier{failFor: map[string]string{"+2348011111111": "provider timeout"}}
	auditStore := &fakeAuditStore{}

	s := newTestScheduler(store, notifier, auditStore)

	sent, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
	if store.isMarked("r1") {
		t.Error("failed send must leave the reminder unsent")
	}

	// The provider recovers; the next pass delivers it.
	notifier.failFor = nil
	if sent, _ := s.RunOnce(context.Background()); sent != 1 {
		t.Errorf("retry run sent = %d, want 1", sent)
	}
}

func TestReminderScheduler_RunOnce_MarkFailureStillCountsAsUndelivered(t *testing.T) {
	// The SMS went out but the sent-flag write failed. At-least-once delivery means
	// the reminder is retried next pass rather than silently lost.
	store := &fakeReminderStore{
		due:     []db.DueReminder{dueReminder("r1", "+2348011111111", "Amina Yusuf")},
		markErr: map[string]error{"r1": errors.New("write failed")},
	}
	notifier := &fakeNotifier{}

	s := newTestScheduler(store, notifier, &fakeAuditStore{})

	sent, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
	if len(notifier.sends) != 1 {
		t.Errorf("notifier called %d times, want 1", len(notifier.sends))
	}
}

func TestReminderScheduler_RunOnce_BatchErrorAuditLogged(t *testing.T) {
	store := &fakeReminderStore{dueErr: errors.New("connection refused")}
	auditStore := &fakeAuditStore{}

	s := newTestScheduler(store, &fakeNotifier{}, auditStore)

	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error when due query fails")
	}

	if len(auditStore.entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(auditStore.entries))
	}
	entry := auditStore.entries[0]
	if entry.ActorID != audit.SystemActorID || entry.ActorRole != audit.SystemRole {
		t.Errorf("entry attributed to %s/%s, want system actor", entry.ActorID, entry.ActorRole)
	}
	if entry.Resource != "SystemError" {
		t.Errorf("entry resource = %q, want SystemError", entry.Resource)
	}
}

func TestReminderScheduler_StartStop(t *testing.T) {
	store := &fakeReminderStore{}
	s := NewReminderScheduler(store, &fakeNotifier{}, audit.NewLogger(&fakeAuditStore{}, nil), time.Hour)

	s.Start()
	s.Stop() // must not hang or panic
}

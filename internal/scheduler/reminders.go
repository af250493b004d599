package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
	"github.com/themobileprof/mhaas-be/internal/notify"
)

// DefaultReminderInterval is how often the reminder check runs.
const DefaultReminderInterval = 14 * time.Minute

// ReminderStore is the persistence surface the reminder scheduler needs.
type ReminderStore interface {
	GetDueReminders(ctx context.Context, now time.Time) ([]db.DueReminder, error)
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error
}

// SMSNotifier delivers reminder messages.
type SMSNotifier interface {
	SendSMS(ctx context.Context, to, message string) notify.Result
}

// ReminderScheduler periodically finds due, unsent reminders and dispatches them.
// Delivery is at-least-once: a reminder is only marked sent after a successful
// send, so a send that succeeds just before a failed write can be delivered again
// on the next pass. A single instance is assumed; two instances could both claim
// the same reminder since there is no cross-process lock.
type ReminderScheduler struct {
	store    ReminderStore
	notifier SMSNotifier
	audit    *audit.Logger
	interval time.Duration
	now      func() time.Time

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewReminderScheduler creates a reminder scheduler. A non-positive interval
// falls back to DefaultReminderInterval.
func NewReminderScheduler(store ReminderStore, notifier SMSNotifier, auditLogger *audit.Logger, interval time.Duration) *ReminderScheduler {
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	return &ReminderScheduler{
		store:    store,
		notifier: notifier,
		audit:    auditLogger,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic check in a background goroutine.
func (s *ReminderScheduler) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		log.Printf("[reminders] scheduler started, checking every %s", s.interval)

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop halts the scheduler and waits for the loop to exit. An in-flight run
// finishes first.
func (s *ReminderScheduler) Stop() {
	close(s.stop)
	<-s.done
}

// tick runs one pass, skipping the tick entirely if the previous one is still
// running so a slow pass cannot overlap the next.
func (s *ReminderScheduler) tick() {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("[reminders] previous check still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	if _, err := s.RunOnce(context.Background()); err != nil {
		log.Printf("[reminders] check failed: %v", err)
	}
}

// RunOnce performs a single reminder check and returns how many reminders were
// delivered. A panic or batch error is captured and audit-logged with the system
// actor; the scheduler itself never crashes the process.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (sent int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reminder check panicked: %v", r)
			s.audit.LogSystem(ctx, fmt.Sprintf("Failed to send reminders: %v", r), "SystemError", nil)
		}
	}()

	log.Printf("[reminders] running scheduled reminder check")

	due, err := s.store.GetDueReminders(ctx, s.now())
	if err != nil {
		s.audit.LogSystem(ctx, fmt.Sprintf("Failed to send reminders: %v", err), "SystemError", nil)
		return 0, err
	}

	for _, reminder := range due {
		if reminder.PatientPhone == "" {
			// No contact channel: leave unsent so it can go out once a phone is on file.
			log.Printf("[reminders] reminder %s has no patient phone, skipping", reminder.ID)
			continue
		}

		message := fmt.Sprintf("MHAAS Reminder for %s: %s", reminder.PatientName, reminder.Message)
		result := s.notifier.SendSMS(ctx, reminder.PatientPhone, message)

		if !result.Success {
			// Left unsent; the next tick retries it.
			s.audit.LogActivity(ctx, reminder.CreatedBy, audit.SystemRole,
				fmt.Sprintf("Failed to deliver reminder to %s: %s", reminder.PatientName, result.Error),
				"Reminder", &reminder.ID)
			continue
		}

		if err := s.store.MarkReminderSent(ctx, reminder.ID, s.now()); err != nil {
			// The SMS went out but the flag write failed: the reminder will be sent
			// again next tick. Accepted at-least-once behavior.
			log.Printf("[reminders] failed to mark reminder %s sent: %v", reminder.ID, err)
			continue
		}

		sent++
		s.audit.LogActivity(ctx, reminder.CreatedBy, audit.SystemRole,
			fmt.Sprintf("Sent reminder to %s", reminder.PatientName),
			"Reminder", &reminder.ID)
	}

	return sent, nil
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/tips"
)

// DefaultTipHour is the local hour of day the daily tip generation runs at.
const DefaultTipHour = 6

// TipScheduler triggers the daily health tip generation run.
type TipScheduler struct {
	generator *tips.Generator
	audit     *audit.Logger
	hour      int
	now       func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewTipScheduler creates a tip scheduler that fires once a day at the given
// local hour. An out-of-range hour falls back to DefaultTipHour.
func NewTipScheduler(generator *tips.Generator, auditLogger *audit.Logger, hour int) *TipScheduler {
	if hour < 0 || hour > 23 {
		hour = DefaultTipHour
	}
	return &TipScheduler{
		generator: generator,
		audit:     auditLogger,
		hour:      hour,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the daily trigger in a background goroutine.
func (s *TipScheduler) Start() {
	go func() {
		defer close(s.done)

		log.Printf("[tipgen] scheduler started, runs daily at %02d:00", s.hour)

		for {
			timer := time.NewTimer(s.untilNextRun())
			select {
			case <-s.stop:
				timer.Stop()
				return
			case <-timer.C:
				s.RunOnce(context.Background())
			}
		}
	}()
}

// Stop halts the scheduler and waits for the loop to exit.
func (s *TipScheduler) Stop() {
	close(s.stop)
	<-s.done
}

// untilNextRun returns the wait until the next daily firing time.
func (s *TipScheduler) untilNextRun() time.Duration {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunOnce performs a single generation run. Failures are audit-logged with the
// system actor and never crash the host process.
func (s *TipScheduler) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[tipgen] run panicked: %v", r)
			s.audit.LogSystem(ctx, fmt.Sprintf("Failed to generate tips: %v", r), "SystemError", nil)
		}
	}()

	log.Printf("[tipgen] starting daily health tip generation")

	if _, err := s.generator.GenerateDailyTips(ctx); err != nil {
		log.Printf("[tipgen] run failed: %v", err)
		s.audit.LogSystem(ctx, fmt.Sprintf("Failed to generate tips: %v", err), "SystemError", nil)
	}
}

package tips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/themobileprof/mhaas-be/internal/db"
	"github.com/themobileprof/mhaas-be/internal/pregnancy"
)

// ErrWeekOutOfRange is returned when a requested gestational week is outside [1, 42].
var ErrWeekOutOfRange = errors.New("gestational week must be between 1 and 42")

// fallbackTipCount is how many recent tips are returned when a patient has no
// known due date to personalize against.
const fallbackTipCount = 5

// Store is the persistence surface the tip service reads from.
type Store interface {
	GetPatientByUserID(ctx context.Context, userID string) (*db.Patient, error)
	ListRecentHealthTips(ctx context.Context, limit int) ([]db.HealthTip, error)
	ListHealthTipsByWeek(ctx context.Context, week int) ([]db.HealthTip, error)
	ListHealthTipsByWeeks(ctx context.Context, weeks []int) ([]db.HealthTip, error)
}

// Service answers personalized health tip queries.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a tip service
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// GetPersonalizedTips returns the tips relevant to the user's current gestational
// week (the week itself plus one week either side). A user with no patient record
// or no due date gets the newest tips as a generic fallback.
func (s *Service) GetPersonalizedTips(ctx context.Context, userID string) ([]db.HealthTip, error) {
	patient, err := s.store.GetPatientByUserID(ctx, userID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}

	if patient == nil || patient.EDD == nil {
		return s.store.ListRecentHealthTips(ctx, fallbackTipCount)
	}

	week := pregnancy.ComputeGestationalWeek(*patient.EDD, s.now())
	return s.store.ListHealthTipsByWeeks(ctx, []int{week - 1, week, week + 1})
}

// GetTipsByWeek returns every tip pinned to the exact gestational week.
func (s *Service) GetTipsByWeek(ctx context.Context, week int) ([]db.HealthTip, error) {
	if week < pregnancy.MinWeek || week > pregnancy.MaxWeek {
		return nil, ErrWeekOutOfRange
	}
	return s.store.ListHealthTipsByWeek(ctx, week)
}

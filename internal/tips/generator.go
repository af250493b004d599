package tips

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
	"github.com/themobileprof/mhaas-be/internal/pregnancy"
)

// GeneratorStore is the persistence surface the daily tip generation run needs.
type GeneratorStore interface {
	ListPatientsWithEDD(ctx context.Context) ([]db.Patient, error)
	HasHealthTipForWeekOn(ctx context.Context, week int, day time.Time) (bool, error)
	CreateHealthTip(ctx context.Context, tip *db.HealthTip) error
}

// Generator produces catalog-sourced health tips for the gestational weeks the
// current patient population is in. Tips are global, not per-patient: the dedup
// key is (week, calendar day), so one tip per week per day no matter how many
// patients share that week.
type Generator struct {
	store GeneratorStore
	audit *audit.Logger
	now   func() time.Time
}

// NewGenerator creates a tip generator
func NewGenerator(store GeneratorStore, auditLogger *audit.Logger) *Generator {
	return &Generator{store: store, audit: auditLogger, now: time.Now}
}

// GenerateDailyTips runs one generation pass and returns how many tips it created.
// A failure on one patient is logged and skipped so it cannot abort the rest of
// the batch; only a failure to list the patients aborts the run.
func (g *Generator) GenerateDailyTips(ctx context.Context) (int, error) {
	patients, err := g.store.ListPatientsWithEDD(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list patients: %w", err)
	}

	today := g.now()
	generated := 0

	for _, patient := range patients {
		if patient.EDD == nil {
			continue
		}

		week := pregnancy.ComputeGestationalWeek(*patient.EDD, today)
		created, err := g.generateForWeek(ctx, week, today, patient.UserID)
		if err != nil {
			log.Printf("[tipgen] patient %s (week %d): %v", patient.ID, week, err)
			g.audit.LogSystem(ctx, fmt.Sprintf("Failed to generate tip for week %d: %v", week, err), "SystemError", nil)
			continue
		}
		if created {
			generated++
		}
	}

	log.Printf("[tipgen] generated %d new health tips", generated)
	return generated, nil
}

// generateForWeek creates the catalog tip for a week unless one was already
// created today. Returns whether a tip was created.
func (g *Generator) generateForWeek(ctx context.Context, week int, today time.Time, userID string) (bool, error) {
	exists, err := g.store.HasHealthTipForWeekOn(ctx, week, today)
	if err != nil {
		return false, fmt.Errorf("failed to check existing tip: %w", err)
	}
	if exists {
		return false, nil
	}

	entry := Lookup(week)

	createdBy := userID
	if createdBy == "" {
		createdBy = audit.SystemActorID
	}

	relevantWeek := week
	tip := &db.HealthTip{
		Title:        entry.Title,
		Content:      entry.Content,
		Tags:         []string{"AI-Generated", fmt.Sprintf("Week-%d", week), "Personalized"},
		RelevantWeek: &relevantWeek,
		CreatedBy:    createdBy,
	}

	if err := g.store.CreateHealthTip(ctx, tip); err != nil {
		return false, fmt.Errorf("failed to create tip: %w", err)
	}

	g.audit.LogSystem(ctx,
		fmt.Sprintf("Generated health tip for week %d: %q", week, entry.Title),
		"HealthTip", &tip.ID)

	return true, nil
}

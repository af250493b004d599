package tips

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
)

type fakeGenStore struct {
	patients    []db.Patient
	patientsErr error
	existing    map[int]bool
	existsErr   map[int]error
	createErr   map[int]error
	created     []db.HealthTip
}

func (f *fakeGenStore) ListPatientsWithEDD(ctx context.Context) ([]db.Patient, error) {
	if f.patientsErr != nil {
		return nil, f.patientsErr
	}
	return f.patients, nil
}

func (f *fakeGenStore) HasHealthTipForWeekOn(ctx context.Context, week int, day time.Time) (bool, error) {
	if err := f.existsErr[week]; err != nil {
		return false, err
	}
	return f.existing[week], nil
}

func (f *fakeGenStore) CreateHealthTip(ctx context.Context, tip *db.HealthTip) error {
	if tip.RelevantWeek != nil {
		if err := f.createErr[*tip.RelevantWeek]; err != nil {
			return err
		}
	}
	tip.ID = fmt.Sprintf("tip-%d", len(f.created)+1)
	f.created = append(f.created, *tip)
	// Mirror the database: a created tip satisfies the same-day dedup check.
	if tip.RelevantWeek != nil {
		if f.existing == nil {
			f.existing = make(map[int]bool)
		}
		f.existing[*tip.RelevantWeek] = true
	}
	return nil
}

type fakeAuditStore struct {
	entries []db.LogEntry
}

func (f *fakeAuditStore) CreateLogEntry(ctx context.Context, entry *db.LogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func patientAtWeek(id string, userID string, week int, today time.Time) db.Patient {
	// week w means the due date is (40-w) whole weeks away
	edd := today.AddDate(0, 0, (40-week)*7)
	return db.Patient{ID: id, UserID: userID, EDD: &edd}
}

func newTestGenerator(store *fakeGenStore, auditStore *fakeAuditStore, today time.Time) *Generator {
	gen := NewGenerator(store, audit.NewLogger(auditStore, nil))
	gen.now = func() time.Time { return today }
	return gen
}

func TestGenerator_CreatesTipPerWeek(t *testing.T) {
	today := time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)
	store := &fakeGenStore{
		patients: []db.Patient{
			patientAtWeek("p1", "u1", 12, today),
			patientAtWeek("p2", "u2", 28, today),
		},
	}

	gen := newTestGenerator(store, &fakeAuditStore{}, today)

	generated, err := gen.GenerateDailyTips(context.Background())
	if err != nil {
		t.Fatalf("GenerateDailyTips returned error: %v", err)
	}
	if generated != 2 {
		t.Errorf("generated = %d, want 2", generated)
	}

	if len(store.created) != 2 {
		t.Fatalf("created %d tips, want 2", len(store.created))
	}
	first := store.created[0]
	if first.RelevantWeek == nil || *first.RelevantWeek != 12 {
		t.Errorf("first tip week = %v, want 12", first.RelevantWeek)
	}
	if first.Title != Lookup(12).Title {
		t.Errorf("first tip title = %q, want catalog entry for week 12", first.Title)
	}
	if first.CreatedBy != "u1" {
		t.Errorf("first tip created_by = %q, want u1", first.CreatedBy)
	}

	wantTags := map[string]bool{"AI-Generated": true, "Week-12": true, "Personalized": true}
	for _, tag := range first.Tags {
		if !wantTags[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
		delete(wantTags, tag)
	}
	if len(wantTags) != 0 {
		t.Errorf("missing tags: %v", wantTags)
	}
}

func TestGenerator_DeduplicatesSharedWeek(t *testing.T) {
	// Three patients in the same gestational week produce a single tip: the dedup
	// key is (week, day), not the patient.
	today := time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)
	store := &fakeGenStore{
		patients: []db.Patient{
			patientAtWeek("p1", "u1", 20, today),
			patientAtWeek("p2", "u2", 20, today),
			patientAtWeek("p3", "u3", 20, today),
		},
	}

	gen := newTestGenerator(store, &fakeAuditStore{}, today)

	generated, err := gen.GenerateDailyTips(context.Background())
	if err != nil {
		t.Fatalf("GenerateDailyTips returned error: %v", err)
	}
	if generated != 1 {
		t.Errorf("generated = %d, want 1", generated)
	}
	if len(store.created) != 1 {
		t.Errorf("created %d tips, want 1", len(store.created))
	}
}

func TestGenerator_SkipsWeekAlreadyCoveredToday(t *testing.T) {
	today := time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)
	store := &fakeGenStore{
		patients: []db.Patient{patientAtWeek("p1", "u1", 16, today)},
		existing: map[int]bool{16: true},
	}

	gen := newTestGenerator(store, &fakeAuditStore{}, today)

	generated, err := gen.GenerateDailyTips(context.Background())
	if err != nil {
		t.Fatalf("GenerateDailyTips returned error: %v", err)
	}
	if generated != 0 {
		t.Errorf("generated = %d, want 0", generated)
	}
}

func TestGenerator_OnePatientFailureDoesNotAbortBatch(t *testing.T) {
	today := time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)
	store := &fakeGenStore{
		patients: []db.Patient{
			patientAtWeek("p1", "u1", 8, today),
			patientAtWeek("p2", "u2", 24, today),
		},
		createErr: map[int]error{8: errors.New("insert failed")},
	}
	auditStore := &fakeAuditStore{}

	gen := newTestGenerator(store, auditStore, today)

	generated, err := gen.GenerateDailyTips(context.Background())
	if err != nil {
		t.Fatalf("GenerateDailyTips returned error: %v", err)
	}
	if generated != 1 {
		t.Errorf("generated = %d, want 1", generated)
	}
	if len(store.created) != 1 || *store.created[0].RelevantWeek != 24 {
		t.Errorf("expected only the week 24 tip to be created, got %+v", store.created)
	}

	var sawFailure bool
	for _, e := range auditStore.entries {
		if e.Resource == "SystemError" && e.ActorID == audit.SystemActorID {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("expected a system-attributed failure log entry")
	}
}

func TestGenerator_ListFailureAbortsRun(t *testing.T) {
	store := &fakeGenStore{patientsErr: errors.New("connection refused")}
	gen := newTestGenerator(store, &fakeAuditStore{}, time.Now())

	if _, err := gen.GenerateDailyTips(context.Background()); err == nil {
		t.Error("expected error when patient listing fails")
	}
}

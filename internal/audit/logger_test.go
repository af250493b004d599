package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/themobileprof/mhaas-be/internal/db"
)

type fakeStore struct {
	err     error
	entries []db.LogEntry
}

func (f *fakeStore) CreateLogEntry(ctx context.Context, entry *db.LogEntry) error {
	if f.err != nil {
		return f.err
	}
	entry.ID = "log-1"
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeBroadcaster struct {
	events []db.LogEntry
}

func (f *fakeBroadcaster) BroadcastActivity(entry db.LogEntry) {
	f.events = append(f.events, entry)
}

func TestLogger_LogActivity(t *testing.T) {
	store := &fakeStore{}
	events := &fakeBroadcaster{}
	logger := NewLogger(store, events)

	resourceID := "p1"
	logger.LogActivity(context.Background(), "u1", "staff", "Registered patient", "Patient", &resourceID)

	if len(store.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(store.entries))
	}
	entry := store.entries[0]
	if entry.ActorID != "u1" || entry.ActorRole != "staff" {
		t.Errorf("actor = %s/%s, want u1/staff", entry.ActorID, entry.ActorRole)
	}
	if entry.Resource != "Patient" || entry.ResourceID == nil || *entry.ResourceID != "p1" {
		t.Errorf("resource = %s/%v, want Patient/p1", entry.Resource, entry.ResourceID)
	}

	if len(events.events) != 1 {
		t.Fatalf("broadcast %d events, want 1", len(events.events))
	}
	if events.events[0].ID != "log-1" {
		t.Errorf("broadcast entry id = %q, want the persisted id", events.events[0].ID)
	}
}

func TestLogger_StoreFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("write failed")}
	events := &fakeBroadcaster{}
	logger := NewLogger(store, events)

	// Must not panic or propagate the error.
	logger.LogActivity(context.Background(), "u1", "staff", "Registered patient", "Patient", nil)

	if len(events.events) != 0 {
		t.Error("failed writes must not be broadcast")
	}
}

func TestLogger_NilBroadcaster(t *testing.T) {
	logger := NewLogger(&fakeStore{}, nil)

	// Must not panic without a broadcaster wired.
	logger.LogSystem(context.Background(), "Sent reminder", "Reminder", nil)
}

func TestLogger_LogSystem(t *testing.T) {
	store := &fakeStore{}
	logger := NewLogger(store, nil)

	logger.LogSystem(context.Background(), "Generated health tip for week 20", "HealthTip", nil)

	if len(store.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(store.entries))
	}
	entry := store.entries[0]
	if entry.ActorID != SystemActorID {
		t.Errorf("actor id = %q, want system actor", entry.ActorID)
	}
	if entry.ActorRole != SystemRole {
		t.Errorf("actor role = %q, want %q", entry.ActorRole, SystemRole)
	}
}

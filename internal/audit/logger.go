package audit

import (
	"context"
	"log"

	"github.com/themobileprof/mhaas-be/internal/db"
)

// SystemActorID is the reserved identity used when no real user is behind an action,
// such as scheduler runs. It is a fixed UUID so log queries can filter on it.
const SystemActorID = "00000000-0000-0000-0000-000000000001"

// SystemRole is the role recorded for system-attributed log entries.
const SystemRole = "system"

// Store persists activity log entries.
type Store interface {
	CreateLogEntry(ctx context.Context, entry *db.LogEntry) error
}

// Broadcaster receives log entries for live fan-out. Optional.
type Broadcaster interface {
	BroadcastActivity(entry db.LogEntry)
}

// Logger writes activity log entries. Logging is fire-and-forget: a failed write is
// printed to the process log and swallowed, so it can never fail a business operation.
type Logger struct {
	store  Store
	events Broadcaster
}

// NewLogger creates an activity logger. events may be nil.
func NewLogger(store Store, events Broadcaster) *Logger {
	return &Logger{store: store, events: events}
}

// LogActivity records who did what to which resource. resourceID may be nil.
func (l *Logger) LogActivity(ctx context.Context, actorID, actorRole, action, resource string, resourceID *string) {
	entry := &db.LogEntry{
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
	}

	if err := l.store.CreateLogEntry(ctx, entry); err != nil {
		log.Printf("[audit] failed to record activity for %s: %v", actorID, err)
		return
	}

	if l.events != nil {
		l.events.BroadcastActivity(*entry)
	}
}

// LogSystem records a system-attributed entry, used by the schedulers.
func (l *Logger) LogSystem(ctx context.Context, action, resource string, resourceID *string) {
	l.LogActivity(ctx, SystemActorID, SystemRole, action, resource, resourceID)
}

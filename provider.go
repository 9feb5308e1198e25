package availsync

import (
	"context"
	"time"
)

// Mux routes a platform name to its calendar provider.
type Mux interface {
	Get(platform string) (Provider, error)
}

// Iterator streams external events from a provider.
type Iterator interface {
	Next() bool
	Event() *ExternalEvent
	Err() error
}

// Provider is a calendar backend (device calendar, Google, ICS feed).
type Provider interface {
	Calendars(context.Context) ([]Calendar, error)
	Events(_ context.Context, calendarID string, from, to time.Time) (Iterator, error)
	CreateEvent(_ context.Context, calendarID string, _ *EventDraft) (eventID string, _ error)
	UpdateEvent(_ context.Context, calendarID, eventID string, _ *EventDraft) error
	DeleteEvent(_ context.Context, calendarID, eventID string) error
}

// SettingsStore persists SyncSettings as one snapshot. Settings returns
// DefaultSyncSettings when nothing was saved yet.
type SettingsStore interface {
	Settings(context.Context) (*SyncSettings, error)
	SaveSettings(context.Context, *SyncSettings) error
}

// MappingStore persists rehearsal-to-event mappings.
type MappingStore interface {
	Mapping(_ context.Context, rehearsalID string) (*EventMapping, error)
	Mappings(context.Context) ([]*EventMapping, error)
	SaveMapping(context.Context, *EventMapping) error
	DeleteMapping(_ context.Context, rehearsalID string) error
}

// TrackingStore persists import fingerprints keyed by external event id.
type TrackingStore interface {
	Record(_ context.Context, eventID string) (*ImportRecord, error)
	SaveRecords(context.Context, []*ImportRecord) error
	DeleteRecords(_ context.Context, eventIDs []string) error
	Reset(context.Context) error
}

// RehearsalSource lists the rehearsals the user is called to. The
// project management side of the application implements this.
type RehearsalSource interface {
	Rehearsals(context.Context) ([]Rehearsal, error)
}

// AvailabilityAPI is the remote availability store consumed by the core.
type AvailabilityAPI interface {
	BulkUpsert(_ context.Context, entries []AvailabilityEntry) error
	List(context.Context) ([]AvailabilityEntry, error)
	DeleteDate(_ context.Context, date Date) error
	DeleteImportedAll(context.Context) error
	DeleteImportedBatch(_ context.Context, eventIDs []string) error
}

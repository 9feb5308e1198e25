// Package availsync keeps a performer's availability reconciled with
// external calendars: day-by-day free/busy/custom slots, timezone-correct
// wire entries, and bidirectional rehearsal/calendar synchronization.
package availsync

import (
	"fmt"
	"strings"
	"time"
)

// ClockFormat is the wall-clock layout used by slots ("HH:mm").
const ClockFormat = "15:04"

// TimeSlot is a wall-clock start/end pair on one calendar day.
// Start must be strictly before End. AllDay marks the slot as covering
// the whole calendar day, in which case Start/End are pinned to
// 00:00-23:59 and never timezone-converted.
type TimeSlot struct {
	Start  string `json:"startTime"`
	End    string `json:"endTime"`
	AllDay bool   `json:"isAllDay,omitempty"`
}

// AllDaySlot returns the placeholder slot covering a whole day.
func AllDaySlot() TimeSlot {
	return TimeSlot{Start: "00:00", End: "23:59", AllDay: true}
}

// DefaultSlot returns the structural default slot used when a day has no
// saved state.
func DefaultSlot() TimeSlot {
	return TimeSlot{Start: "09:00", End: "17:00"}
}

// DayMode describes how a day's availability is expressed.
type DayMode string

const (
	DayFree   DayMode = "free"
	DayBusy   DayMode = "busy"
	DayCustom DayMode = "custom"
)

// DayState is the per-date availability state. When Mode is DayFree or
// DayBusy the day is covered by a single implicit all-day range and Slots
// are ignored; in DayCustom the slots must be individually valid and
// pairwise non-overlapping.
type DayState struct {
	Mode  DayMode    `json:"mode"`
	Slots []TimeSlot `json:"slots"`
}

// AvailabilityData is the full in-memory working set for one user,
// keyed by ISO date (YYYY-MM-DD).
type AvailabilityData map[string]*DayState

// EntryType classifies an availability entry on the wire.
type EntryType string

const (
	EntryAvailable EntryType = "available"
	EntryBusy      EntryType = "busy"
	EntryTentative EntryType = "tentative"
)

// EntrySource records where an availability entry came from. It is used
// to keep exported rehearsals from being re-imported as busy time.
type EntrySource string

const (
	SourceManual    EntrySource = "manual"
	SourceImported  EntrySource = "imported"
	SourceRehearsal EntrySource = "rehearsal"
)

// AvailabilityEntry is the wire form sent to the availability store.
// StartsAt/EndsAt are UTC instants. All-day entries are pinned to
// 00:00:00.000Z-23:59:59.999Z on the entry's date regardless of the
// user's timezone: the day boundary is calendar-local, not clock-local.
type AvailabilityEntry struct {
	StartsAt time.Time   `json:"startsAt"`
	EndsAt   time.Time   `json:"endsAt"`
	Type     EntryType   `json:"type"`
	AllDay   bool        `json:"isAllDay"`
	Source   EntrySource `json:"source"`

	// EventID is set on imported entries and addresses the entry on the
	// store so a changed external event updates in place.
	EventID string `json:"eventId,omitempty"`
}

// Rehearsal is a locally-authored rehearsal to be pushed to an external
// calendar when export is enabled.
type Rehearsal struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// Calendar identifies one calendar on a provider.
type Calendar struct {
	Platform string
	ID       string
	Name     string
}

// Ref returns the provider-qualified calendar reference used in
// SyncSettings ("platform/calendarID").
func (c Calendar) Ref() string {
	return c.Platform + "/" + c.ID
}

// SplitRef splits a provider-qualified calendar reference.
func SplitRef(ref string) (platform, calendarID string, err error) {
	platform, calendarID, ok := strings.Cut(ref, "/")
	if !ok || platform == "" || calendarID == "" {
		return "", "", fmt.Errorf("invalid calendar reference %q", ref)
	}
	return platform, calendarID, nil
}

// ExternalEvent is a calendar event as seen on a provider.
type ExternalEvent struct {
	ID       string
	Title    string
	StartsAt time.Time
	EndsAt   time.Time
	AllDay   bool

	// Cancelled marks events deleted on the provider side; they carry
	// no times and must not be imported.
	Cancelled bool
}

// Fingerprint derives the change-detection key for an external event:
// id plus time window plus all-day flag. An unchanged fingerprint on a
// later sync pass means the event needs no re-import.
func (e ExternalEvent) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%s|%t",
		e.ID,
		e.StartsAt.UTC().Format(time.RFC3339),
		e.EndsAt.UTC().Format(time.RFC3339),
		e.AllDay,
	)
}

// EventDraft is the payload for creating or updating a provider event.
type EventDraft struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	AllDay      bool
}

// EventMapping associates an exported rehearsal with the provider event
// created for it. One mapping per exported rehearsal.
type EventMapping struct {
	RehearsalID string
	CalendarRef string
	EventID     string
}

// ImportRecord tracks the last-seen fingerprint of an imported external
// event so repeated sync passes stay idempotent.
type ImportRecord struct {
	EventID     string
	Fingerprint string
	ImportedAt  time.Time
}

// ImportInterval gates how often auto-sync actually imports.
type ImportInterval string

const (
	IntervalManual  ImportInterval = "manual"
	IntervalHourly  ImportInterval = "hourly"
	IntervalEvery6h ImportInterval = "every6h"
	IntervalDaily   ImportInterval = "daily"
)

// Duration returns the gate duration. ok is false for IntervalManual,
// which never auto-imports.
func (i ImportInterval) Duration() (d time.Duration, ok bool) {
	switch i {
	case IntervalHourly:
		return time.Hour, true
	case IntervalEvery6h:
		return 6 * time.Hour, true
	case IntervalDaily:
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}

// SyncSettings is the persisted sync configuration. LastImportTime and
// LastExportTime advance only when an import/export actually ran; a
// throttled no-op leaves them untouched.
type SyncSettings struct {
	ExportEnabled     bool           `json:"exportEnabled"`
	ImportEnabled     bool           `json:"importEnabled"`
	ExportCalendarRef string         `json:"exportCalendarRef"`
	ImportCalendarIDs []string       `json:"importCalendarIds"`
	ImportInterval    ImportInterval `json:"importInterval"`
	LastImportTime    time.Time      `json:"lastImportTime"`
	LastExportTime    time.Time      `json:"lastExportTime"`
}

// DefaultSyncSettings returns the settings used before the user has
// configured anything: nothing enabled, manual import only.
func DefaultSyncSettings() *SyncSettings {
	return &SyncSettings{
		ImportInterval:    IntervalManual,
		ImportCalendarIDs: []string{},
	}
}

// SyncTrigger identifies what asked for a sync pass. The host platform's
// lifecycle signals are funneled into one of these.
type SyncTrigger string

const (
	TriggerForeground SyncTrigger = "foreground"
	TriggerFocus      SyncTrigger = "focus"
	// TriggerRefresh is an explicit user refresh; it bypasses the
	// import interval gate but still respects the cool-down.
	TriggerRefresh SyncTrigger = "refresh"
)

// Force reports whether the trigger bypasses the import interval gate.
func (t SyncTrigger) Force() bool {
	return t == TriggerRefresh
}

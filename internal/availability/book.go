package availability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/stagecall/availsync"
	"github.com/stagecall/availsync/internal/timerange"
	"github.com/stagecall/availsync/internal/tzconv"
)

// Book is the in-memory availability working set for one user. It is
// loaded from and flushed to the remote availability store as a whole;
// individual edits only touch memory until Save.
type Book struct {
	output   io.Writer
	api      availsync.AvailabilityAPI
	timezone string

	data  availsync.AvailabilityData
	dirty bool
}

// NewBook creates a Book using the given IANA timezone for wall-clock
// conversion. An unrecognized timezone falls back to UTC with a logged
// warning rather than failing.
func NewBook(output io.Writer, api availsync.AvailabilityAPI, timezone string) *Book {
	if output == nil {
		output = os.Stdout
	}
	if _, err := tzconv.Location(timezone); err != nil {
		availsync.Logf(output, "availability:", "", "%v, falling back to UTC", err)
		timezone = "UTC"
	}
	return &Book{
		output:   output,
		api:      api,
		timezone: timezone,
		data:     availsync.AvailabilityData{},
	}
}

// Timezone returns the effective timezone after any UTC fallback.
func (b *Book) Timezone() string { return b.timezone }

// Dirty reports whether there are unsaved changes.
func (b *Book) Dirty() bool { return b.dirty }

// Load replaces the working set with the manually-authored entries on
// the remote store. Imported and rehearsal entries belong to the sync
// engine and are not part of the editable day states.
func (b *Book) Load(ctx context.Context) error {
	entries, err := b.api.List(ctx)
	if err != nil {
		return err
	}
	data := availsync.AvailabilityData{}
	for _, e := range entries {
		if e.Source != availsync.SourceManual {
			continue
		}
		switch {
		case e.AllDay && e.Type == availsync.EntryAvailable:
			date := e.StartsAt.UTC().Format(availsync.DateFormat)
			data[date] = &availsync.DayState{Mode: availsync.DayFree, Slots: []availsync.TimeSlot{availsync.AllDaySlot()}}
		case e.AllDay:
			date := e.StartsAt.UTC().Format(availsync.DateFormat)
			data[date] = &availsync.DayState{Mode: availsync.DayBusy, Slots: []availsync.TimeSlot{availsync.AllDaySlot()}}
		default:
			// Custom entries are keyed by the local calendar date, not
			// the UTC one: a local evening slot can start on the next
			// UTC day and must still reload onto the day it was
			// entered for.
			date, slot, err := b.localSlot(e)
			if err != nil {
				return err
			}
			state := data[date]
			if state == nil || state.Mode != availsync.DayCustom {
				state = &availsync.DayState{Mode: availsync.DayCustom}
				data[date] = state
			}
			state.Slots = append(state.Slots, slot)
		}
	}
	b.data = data
	b.dirty = false
	return nil
}

// DayState returns the state for a date, or a structural default when
// the date has never been marked. The default is not stored; reading a
// day never mutates the working set.
func (b *Book) DayState(date string) availsync.DayState {
	if state, ok := b.data[date]; ok {
		out := availsync.DayState{Mode: state.Mode, Slots: make([]availsync.TimeSlot, len(state.Slots))}
		copy(out.Slots, state.Slots)
		return out
	}
	return availsync.DayState{
		Mode:  availsync.DayCustom,
		Slots: []availsync.TimeSlot{availsync.DefaultSlot()},
	}
}

// SetDayMode sets a day's mode. Switching to free or busy resets the
// slots to the all-day placeholder; switching to custom seeds the
// default slot.
func (b *Book) SetDayMode(date string, mode availsync.DayMode) {
	state := &availsync.DayState{Mode: mode}
	if mode == availsync.DayCustom {
		state.Slots = []availsync.TimeSlot{availsync.DefaultSlot()}
	} else {
		state.Slots = []availsync.TimeSlot{availsync.AllDaySlot()}
	}
	b.data[date] = state
	b.dirty = true
}

// SetSlots replaces a day's custom slots.
func (b *Book) SetSlots(date string, slots []availsync.TimeSlot) {
	b.data[date] = &availsync.DayState{Mode: availsync.DayCustom, Slots: slots}
	b.dirty = true
}

// ApplyToDates applies one day state to a whole selection set. The
// state is validated once up front; either every date is updated or
// none is.
func (b *Book) ApplyToDates(dates []string, state availsync.DayState) error {
	if state.Mode == availsync.DayCustom {
		if err := ValidateSlots(state.Slots); err != nil {
			return err
		}
	}
	for _, date := range dates {
		if state.Mode == availsync.DayCustom {
			slots := make([]availsync.TimeSlot, len(state.Slots))
			copy(slots, state.Slots)
			b.SetSlots(date, slots)
		} else {
			b.SetDayMode(date, state.Mode)
		}
	}
	return nil
}

// ClearDay removes a date's state from the working set.
func (b *Book) ClearDay(date string) {
	if _, ok := b.data[date]; ok {
		delete(b.data, date)
		b.dirty = true
	}
}

// DeleteDay removes a date's state locally and on the remote store.
// Past dates cannot be edited but can be deleted.
func (b *Book) DeleteDay(ctx context.Context, date string) error {
	d, err := availsync.ParseDate(date)
	if err != nil {
		return err
	}
	if err := b.api.DeleteDate(ctx, d); err != nil {
		return err
	}
	delete(b.data, date)
	return nil
}

// FreeGaps returns the free intervals within the workday for a date in
// custom mode, computed as the complement of the merged busy slots.
func (b *Book) FreeGaps(date string) ([]availsync.TimeSlot, error) {
	state := b.DayState(date)
	switch state.Mode {
	case availsync.DayFree:
		return []availsync.TimeSlot{{
			Start: timerange.ToTimeString(timerange.WorkdayStart),
			End:   timerange.ToTimeString(timerange.WorkdayEnd),
		}}, nil
	case availsync.DayBusy:
		return nil, nil
	}

	busy := make([]timerange.Range, 0, len(state.Slots))
	for _, slot := range state.Slots {
		r, err := timerange.FromSlot(slot)
		if err != nil {
			return nil, err
		}
		busy = append(busy, r)
	}
	gaps := timerange.FreeGaps(timerange.Merge(busy))
	out := make([]availsync.TimeSlot, len(gaps))
	for i, g := range gaps {
		out[i] = g.ToSlot()
	}
	return out, nil
}

// Validate checks every present-or-future date in the working set.
// Dates strictly before today are immutable history and skipped. The
// first violation aborts the whole batch: saving is all-or-nothing.
func (b *Book) Validate(today availsync.Date) error {
	for _, date := range b.sortedDates() {
		state := b.data[date]
		if state.Mode != availsync.DayCustom {
			continue
		}
		d, err := availsync.ParseDate(date)
		if err != nil {
			return fmt.Errorf("availability for %q: %w", date, err)
		}
		if d.Before(today) {
			continue
		}
		if err := ValidateSlots(state.Slots); err != nil {
			var verr *availsync.ValidationError
			if errors.As(err, &verr) {
				verr.Date = date
			}
			return err
		}
	}
	return nil
}

// PrepareEntries serializes the working set into wire entries. Free and
// busy days each produce exactly one all-day entry; custom days produce
// one busy entry per slot, converted from the user's wall clock to UTC
// instants. Custom slots encode "busy during these windows".
func (b *Book) PrepareEntries() ([]availsync.AvailabilityEntry, error) {
	var entries []availsync.AvailabilityEntry
	for _, date := range b.sortedDates() {
		state := b.data[date]
		switch state.Mode {
		case availsync.DayFree, availsync.DayBusy:
			typ := availsync.EntryAvailable
			if state.Mode == availsync.DayBusy {
				typ = availsync.EntryBusy
			}
			start, end, err := AllDayBounds(date)
			if err != nil {
				return nil, err
			}
			entries = append(entries, availsync.AvailabilityEntry{
				StartsAt: start,
				EndsAt:   end,
				Type:     typ,
				AllDay:   true,
				Source:   availsync.SourceManual,
			})
		case availsync.DayCustom:
			converted, err := tzconv.ConvertSlotsToUTC(date, state.Slots, b.timezone)
			if err != nil {
				return nil, err
			}
			for _, s := range converted {
				start, end, err := slotInstants(s)
				if err != nil {
					return nil, err
				}
				entries = append(entries, availsync.AvailabilityEntry{
					StartsAt: start,
					EndsAt:   end,
					Type:     availsync.EntryBusy,
					Source:   availsync.SourceManual,
				})
			}
		}
	}
	return entries, nil
}

// Save validates the working set, serializes it, and bulk-upserts it to
// the remote store in one batch. On any failure the local changes are
// preserved so the caller can retry; nothing is partially committed.
func (b *Book) Save(ctx context.Context, today availsync.Date) error {
	if err := b.Validate(today); err != nil {
		return err
	}
	entries, err := b.PrepareEntries()
	if err != nil {
		return err
	}
	if err := b.api.BulkUpsert(ctx, entries); err != nil {
		return err
	}
	b.dirty = false
	return nil
}

func (b *Book) sortedDates() []string {
	dates := make([]string, 0, len(b.data))
	for date := range b.data {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// localSlot converts a wire entry back to the user's wall clock and
// returns the local calendar date the slot belongs to.
func (b *Book) localSlot(e availsync.AvailabilityEntry) (string, availsync.TimeSlot, error) {
	utc := tzconv.Slot{
		StartDate: e.StartsAt.UTC().Format(availsync.DateFormat),
		Start:     e.StartsAt.UTC().Format(availsync.ClockFormat),
		EndDate:   e.EndsAt.UTC().Format(availsync.DateFormat),
		End:       e.EndsAt.UTC().Format(availsync.ClockFormat),
	}
	local, err := tzconv.ConvertSlotsFromUTC([]tzconv.Slot{utc}, b.timezone)
	if err != nil {
		return "", availsync.TimeSlot{}, err
	}
	return local[0].StartDate, availsync.TimeSlot{Start: local[0].Start, End: local[0].End}, nil
}

// AllDayBounds returns the pinned UTC instants for an all-day entry on
// a date: 00:00:00.000Z through 23:59:59.999Z. All-day semantics are
// never timezone-converted.
func AllDayBounds(date string) (start, end time.Time, err error) {
	d, err := time.Parse(availsync.DateFormat, date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = d
	end = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999e6, time.UTC)
	return start, end, nil
}

func slotInstants(s tzconv.Slot) (start, end time.Time, err error) {
	layout := availsync.DateFormat + " " + availsync.ClockFormat
	start, err = time.Parse(layout, s.StartDate+" "+s.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = time.Parse(layout, s.EndDate+" "+s.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

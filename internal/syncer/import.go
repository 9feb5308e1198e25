package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/stagecall/availsync"
	"github.com/stagecall/availsync/internal/availability"
)

// importEvents pulls external events from every import calendar into
// the availability store as busy entries. Deduplication is by
// fingerprint: an event seen before with an unchanged fingerprint is a
// no-op, a changed one updates the existing entry in place. Events that
// match a rehearsal entry's time window are echoes of our own export
// and are excluded, otherwise export followed by import would duplicate
// every rehearsal. A previously imported event now cancelled on the
// provider gets its entry and tracking record removed. Tracking records
// are persisted only after the whole pass succeeded, so a failed pass
// is retried in full.
func (s *Syncer) importEvents(ctx context.Context, settings *availsync.SyncSettings, now time.Time) error {
	existing, err := s.api.List(ctx)
	if err != nil {
		return err
	}
	rehearsalWindows := make(map[string]bool)
	for _, e := range existing {
		if e.Source == availsync.SourceRehearsal {
			rehearsalWindows[windowKey(e.StartsAt, e.EndsAt)] = true
		}
	}

	from := now.Add(-s.Lookback)
	to := now.Add(s.Lookahead)

	var (
		entries []availsync.AvailabilityEntry
		records []*availsync.ImportRecord
		removed []string
	)

	for _, ref := range settings.ImportCalendarIDs {
		platform, calendarID, err := availsync.SplitRef(ref)
		if err != nil {
			return err
		}
		provider, err := s.mux.Get(platform)
		if err != nil {
			return err
		}

		it, err := provider.Events(ctx, calendarID, from, to)
		if err != nil {
			return fmt.Errorf("listing events on %s: %w", ref, err)
		}
		for it.Next() {
			ev := it.Event()
			if rehearsalWindows[windowKey(ev.StartsAt, ev.EndsAt)] {
				continue
			}

			record, err := s.tracking.Record(ctx, ev.ID)
			if err != nil {
				return err
			}
			if ev.Cancelled {
				// Only events we imported before need cleanup.
				if record != nil {
					removed = append(removed, ev.ID)
				}
				continue
			}
			fingerprint := ev.Fingerprint()
			if record != nil && record.Fingerprint == fingerprint {
				continue
			}

			entry, err := entryFromEvent(ev)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			records = append(records, &availsync.ImportRecord{
				EventID:     ev.ID,
				Fingerprint: fingerprint,
				ImportedAt:  now,
			})
		}
		if err := it.Err(); err != nil {
			return fmt.Errorf("listing events on %s: %w", ref, err)
		}
	}

	if len(removed) > 0 {
		s.logf("", "removing %d cancelled event(s)", len(removed))
		if err := s.api.DeleteImportedBatch(ctx, removed); err != nil {
			return err
		}
		if err := s.tracking.DeleteRecords(ctx, removed); err != nil {
			return err
		}
	}
	if len(entries) > 0 {
		s.logf("", "importing %d event(s)", len(entries))
		if err := s.api.BulkUpsert(ctx, entries); err != nil {
			return err
		}
	}
	return s.tracking.SaveRecords(ctx, records)
}

// entryFromEvent converts an external event to a busy imported entry.
// All-day events stay pinned to the whole calendar day of their start.
func entryFromEvent(ev *availsync.ExternalEvent) (availsync.AvailabilityEntry, error) {
	entry := availsync.AvailabilityEntry{
		Type:    availsync.EntryBusy,
		Source:  availsync.SourceImported,
		EventID: ev.ID,
	}
	if ev.AllDay {
		start, end, err := availability.AllDayBounds(ev.StartsAt.UTC().Format(availsync.DateFormat))
		if err != nil {
			return availsync.AvailabilityEntry{}, err
		}
		entry.StartsAt, entry.EndsAt = start, end
		entry.AllDay = true
		return entry, nil
	}
	entry.StartsAt = ev.StartsAt.UTC()
	entry.EndsAt = ev.EndsAt.UTC()
	return entry, nil
}

func windowKey(start, end time.Time) string {
	return start.UTC().Format(time.RFC3339) + "|" + end.UTC().Format(time.RFC3339)
}

package syncer

import (
	"context"
	"fmt"

	"github.com/stagecall/availsync"
)

// export pushes rehearsals to the configured calendar. A rehearsal with
// an existing mapping is left alone: edits to an already-exported
// rehearsal are deliberately not propagated, so the external event
// stays stable until the user re-exports by hand. Rehearsals that
// disappeared locally get their external event and mapping removed.
func (s *Syncer) export(ctx context.Context, settings *availsync.SyncSettings) error {
	platform, calendarID, err := availsync.SplitRef(settings.ExportCalendarRef)
	if err != nil {
		return err
	}
	provider, err := s.mux.Get(platform)
	if err != nil {
		return err
	}

	rehearsals, err := s.rehearsals.Rehearsals(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]bool, len(rehearsals))
	for _, r := range rehearsals {
		current[r.ID] = true

		mapping, err := s.mappings.Mapping(ctx, r.ID)
		if err != nil {
			return err
		}
		if mapping != nil {
			continue
		}

		s.logf(settings.ExportCalendarRef, "exporting rehearsal %q on %s", r.Title, r.StartsAt.Format("02 Jan 06 15:04"))
		eventID, err := provider.CreateEvent(ctx, calendarID, draftFromRehearsal(r))
		if err != nil {
			return fmt.Errorf("creating event for rehearsal %s: %w", r.ID, err)
		}
		err = s.mappings.SaveMapping(ctx, &availsync.EventMapping{
			RehearsalID: r.ID,
			CalendarRef: settings.ExportCalendarRef,
			EventID:     eventID,
		})
		if err != nil {
			// Roll the event back so the next pass doesn't create a
			// duplicate for the same rehearsal.
			_ = provider.DeleteEvent(ctx, calendarID, eventID)
			return fmt.Errorf("saving mapping for rehearsal %s: %w", r.ID, err)
		}
	}

	mappings, err := s.mappings.Mappings(ctx)
	if err != nil {
		return err
	}
	for _, m := range mappings {
		if current[m.RehearsalID] {
			continue
		}
		if err := s.Unsync(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Unsync deletes the external event created for a rehearsal and removes
// its mapping. Used both for deleted rehearsals and for an explicit
// "remove from calendar" action.
func (s *Syncer) Unsync(ctx context.Context, m *availsync.EventMapping) error {
	platform, calendarID, err := availsync.SplitRef(m.CalendarRef)
	if err != nil {
		return err
	}
	provider, err := s.mux.Get(platform)
	if err != nil {
		return err
	}

	s.logf(m.CalendarRef, "removing event %s for deleted rehearsal %s", m.EventID, m.RehearsalID)
	if err := provider.DeleteEvent(ctx, calendarID, m.EventID); err != nil {
		return fmt.Errorf("deleting event %s: %w", m.EventID, err)
	}
	return s.mappings.DeleteMapping(ctx, m.RehearsalID)
}

func draftFromRehearsal(r availsync.Rehearsal) *availsync.EventDraft {
	description := r.Notes
	if r.Location != "" {
		if description != "" {
			description = r.Location + "\n" + description
		} else {
			description = r.Location
		}
	}
	return &availsync.EventDraft{
		Title:       "Rehearsal: " + r.Title,
		Description: description,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
	}
}

// Package syncer reconciles external calendar events with the
// availability store: it exports rehearsals as calendar events, imports
// foreign events as busy time, and gates the whole thing behind
// trigger cool-downs and the user's import interval.
package syncer

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/stagecall/availsync"
)

// ErrSyncing signals that a pass failed; details are in the log.
var ErrSyncing = errors.New("an error occurred while syncing, check the logs")

const (
	// DefaultCooldown drops duplicate triggers that fire in quick
	// succession (focus + foreground arriving together).
	DefaultCooldown = 10 * time.Second

	// DefaultLookback / DefaultLookahead bound the import window.
	DefaultLookback  = 7 * 24 * time.Hour
	DefaultLookahead = 60 * 24 * time.Hour
)

type Syncer struct {
	output     io.Writer
	mux        availsync.Mux
	settings   availsync.SettingsStore
	mappings   availsync.MappingStore
	tracking   availsync.TrackingStore
	api        availsync.AvailabilityAPI
	rehearsals availsync.RehearsalSource

	Cooldown  time.Duration
	Lookback  time.Duration
	Lookahead time.Duration

	now func() time.Time

	mu          sync.Mutex // held for the whole in-flight pass
	lastAttempt time.Time
}

func New(
	output io.Writer,
	mux availsync.Mux,
	settings availsync.SettingsStore,
	mappings availsync.MappingStore,
	tracking availsync.TrackingStore,
	api availsync.AvailabilityAPI,
	rehearsals availsync.RehearsalSource,
) *Syncer {
	if output == nil {
		output = os.Stdout
	}
	return &Syncer{
		output:     output,
		mux:        mux,
		settings:   settings,
		mappings:   mappings,
		tracking:   tracking,
		api:        api,
		rehearsals: rehearsals,
		Cooldown:   DefaultCooldown,
		Lookback:   DefaultLookback,
		Lookahead:  DefaultLookahead,
		now:        time.Now,
	}
}

// HandleTrigger runs one sync pass for a lifecycle trigger. A trigger
// arriving while a pass is in flight, or within the cool-down of the
// previous attempt, is dropped rather than queued; ran reports whether
// a pass actually executed. Errors are best-effort information for the
// caller: a failed pass must never take the trigger source down.
func (s *Syncer) HandleTrigger(ctx context.Context, trigger availsync.SyncTrigger) (ran bool, err error) {
	if !s.mu.TryLock() {
		s.logf("", "trigger %s dropped, sync already in flight", trigger)
		return false, nil
	}
	defer s.mu.Unlock()

	now := s.now()
	if !s.lastAttempt.IsZero() && now.Sub(s.lastAttempt) < s.Cooldown {
		s.logf("", "trigger %s dropped, within cool-down", trigger)
		return false, nil
	}
	s.lastAttempt = now

	return true, s.sync(ctx, trigger.Force())
}

// PerformAutoSync is the entry point for foreground/focus signals.
func (s *Syncer) PerformAutoSync(ctx context.Context) error {
	_, err := s.HandleTrigger(ctx, availsync.TriggerForeground)
	return err
}

// ForceSync is the entry point for an explicit user refresh. It
// bypasses the import interval gate but still respects the cool-down.
func (s *Syncer) ForceSync(ctx context.Context) error {
	_, err := s.HandleTrigger(ctx, availsync.TriggerRefresh)
	return err
}

// sync runs export then import. Export goes first so the echo-exclusion
// check during import sees the freshest rehearsal entries. Last sync
// times advance only for the stage that actually ran and succeeded.
func (s *Syncer) sync(ctx context.Context, force bool) error {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return err
	}
	now := s.now()

	var errs []error
	changed := false

	if settings.ExportEnabled && settings.ExportCalendarRef != "" {
		if err := s.export(ctx, settings); err != nil {
			s.logf("", "export failed: %v", err)
			errs = append(errs, err)
		} else {
			settings.LastExportTime = now
			changed = true
		}
	}

	if settings.ImportEnabled && len(settings.ImportCalendarIDs) > 0 {
		if force || s.importDue(settings, now) {
			if err := s.importEvents(ctx, settings, now); err != nil {
				s.logf("", "import failed: %v", err)
				errs = append(errs, err)
			} else {
				settings.LastImportTime = now
				changed = true
			}
		} else {
			s.logf("", "import skipped, interval %s not elapsed", settings.ImportInterval)
		}
	}

	if changed {
		if err := s.settings.SaveSettings(ctx, settings); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// importDue applies the user-configured interval gate against the wall
// clock. Manual means never auto-import.
func (s *Syncer) importDue(settings *availsync.SyncSettings, now time.Time) bool {
	gate, ok := settings.ImportInterval.Duration()
	if !ok {
		return false
	}
	if settings.LastImportTime.IsZero() {
		return true
	}
	return now.Sub(settings.LastImportTime) >= gate
}

// Settings returns the current persisted sync settings.
func (s *Syncer) Settings(ctx context.Context) (*availsync.SyncSettings, error) {
	return s.settings.Settings(ctx)
}

// UpdateSettings persists a new settings snapshot.
func (s *Syncer) UpdateSettings(ctx context.Context, settings *availsync.SyncSettings) error {
	return s.settings.SaveSettings(ctx, settings)
}

// DisableImport turns import off and removes every imported entry from
// the store along with the local tracking records.
func (s *Syncer) DisableImport(ctx context.Context) error {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return err
	}
	if err := s.api.DeleteImportedAll(ctx); err != nil {
		return err
	}
	if err := s.tracking.Reset(ctx); err != nil {
		return err
	}
	settings.ImportEnabled = false
	return s.settings.SaveSettings(ctx, settings)
}

func (s *Syncer) logf(calRef, format string, a ...any) {
	availsync.Logf(s.output, "sync:", calRef, format, a...)
}

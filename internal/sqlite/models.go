package sqlite

import (
	"fmt"
	"time"

	"github.com/stagecall/availsync"
)

type eventMapping struct {
	RehearsalID string `db:"rehearsal_id"`
	CalendarRef string `db:"calendar_ref"`
	EventID     string `db:"event_id"`
}

func (m eventMapping) Convert() *availsync.EventMapping {
	return &availsync.EventMapping{
		RehearsalID: m.RehearsalID,
		CalendarRef: m.CalendarRef,
		EventID:     m.EventID,
	}
}

type importRecord struct {
	EventID     string `db:"event_id"`
	Fingerprint string `db:"fingerprint"`
	ImportedAt  string `db:"imported_at"`
}

func (r importRecord) Convert() (*availsync.ImportRecord, error) {
	var importedAt time.Time
	// "" is the pre-migration column default and maps to the zero time.
	if r.ImportedAt != "" {
		t, err := time.Parse(time.RFC3339, r.ImportedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: decoding imported_at for event %s: %w", r.EventID, err)
		}
		importedAt = t
	}
	return &availsync.ImportRecord{
		EventID:     r.EventID,
		Fingerprint: r.Fingerprint,
		ImportedAt:  importedAt,
	}, nil
}

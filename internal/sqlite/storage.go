// Package sqlite persists sync settings, rehearsal event mappings, and
// import tracking records in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stagecall/availsync"
)

const DriverName = "sqlite3"

const settingsKey = "sync_settings"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

// Settings returns the persisted sync settings, or the defaults when
// nothing was saved yet. Settings are stored as one JSON snapshot.
func (s Storage) Settings(ctx context.Context) (*availsync.SyncSettings, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `
		SELECT value FROM settings WHERE key = ?
	`, settingsKey)
	if errors.Is(err, sql.ErrNoRows) {
		return availsync.DefaultSyncSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	var settings availsync.SyncSettings
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return nil, fmt.Errorf("sqlite: decoding settings: %w", err)
	}
	return &settings, nil
}

func (s Storage) SaveSettings(ctx context.Context, settings *availsync.SyncSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=?;
	`, settingsKey, string(value), string(value))
	return err
}

func (s Storage) Mapping(ctx context.Context, rehearsalID string) (*availsync.EventMapping, error) {
	var m eventMapping
	err := s.db.GetContext(ctx, &m, `
		SELECT rehearsal_id, calendar_ref, event_id
		FROM event_mappings
		WHERE rehearsal_id = ?
	`, rehearsalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.Convert(), nil
}

func (s Storage) Mappings(ctx context.Context) ([]*availsync.EventMapping, error) {
	var mappings []eventMapping
	err := s.db.SelectContext(ctx, &mappings, `
		SELECT rehearsal_id, calendar_ref, event_id
		FROM event_mappings
	`)
	if err != nil {
		return nil, err
	}
	res := make([]*availsync.EventMapping, len(mappings))
	for i, m := range mappings {
		res[i] = m.Convert()
	}
	return res, nil
}

func (s Storage) SaveMapping(ctx context.Context, m *availsync.EventMapping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_mappings (rehearsal_id, calendar_ref, event_id)
		VALUES (?, ?, ?)
		ON CONFLICT(rehearsal_id) DO UPDATE
			SET calendar_ref = ?, event_id = ?;
	`, m.RehearsalID, m.CalendarRef, m.EventID, m.CalendarRef, m.EventID)
	return err
}

func (s Storage) DeleteMapping(ctx context.Context, rehearsalID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM event_mappings WHERE rehearsal_id = ?
	`, rehearsalID)
	return err
}

func (s Storage) Record(ctx context.Context, eventID string) (*availsync.ImportRecord, error) {
	var r importRecord
	err := s.db.GetContext(ctx, &r, `
		SELECT event_id, fingerprint, imported_at
		FROM import_records
		WHERE event_id = ?
	`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.Convert()
}

// SaveRecords upserts tracking records in one transaction so a pass
// that fails midway leaves tracking untouched.
func (s Storage) SaveRecords(ctx context.Context, records []*availsync.ImportRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO import_records (event_id, fingerprint, imported_at)
			VALUES (?, ?, ?)
			ON CONFLICT(event_id) DO UPDATE
				SET fingerprint = ?, imported_at = ?;
		`, r.EventID, r.Fingerprint, r.ImportedAt.UTC().Format(time.RFC3339),
			r.Fingerprint, r.ImportedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s Storage) DeleteRecords(ctx context.Context, eventIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range eventIDs {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM import_records WHERE event_id = ?
		`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s Storage) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM import_records`)
	return err
}

// AddAccount stores provider auth (an OAuth token blob) for an account.
func (s Storage) AddAccount(ctx context.Context, id, auth string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, auth) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET auth=?;
	`, id, auth, auth)
	return err
}

// Account returns the stored auth blob for an account id.
func (s Storage) Account(ctx context.Context, id string) (string, error) {
	var auth string
	err := s.db.GetContext(ctx, &auth, `
		SELECT auth FROM accounts WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return auth, err
}

package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS event_mappings (
		rehearsal_id VARCHAR NOT NULL PRIMARY KEY,
		calendar_ref VARCHAR NOT NULL,
		event_id VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_records (
		event_id VARCHAR NOT NULL PRIMARY KEY,
		fingerprint VARCHAR NOT NULL,
		imported_at VARCHAR NOT NULL DEFAULT ""
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR NOT NULL PRIMARY KEY,
		auth TEXT NOT NULL
	)`,
}

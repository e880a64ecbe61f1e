package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Archive items in display order
		`CREATE TABLE IF NOT EXISTS archive_items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Placed scene layers in paint order
		`CREATE TABLE IF NOT EXISTS scene_layers (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL,
			channel TEXT NOT NULL CHECK(channel IN ('c', 'm', 'y', 'k')),
			asset TEXT NOT NULL,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			rotation REAL NOT NULL DEFAULT 0,
			seq INTEGER NOT NULL,
			position INTEGER NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_archive_items_position ON archive_items(position)`,
		`CREATE INDEX IF NOT EXISTS idx_scene_layers_position ON scene_layers(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

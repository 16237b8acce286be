package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per zone role; bounds are camera pixels.
		`CREATE TABLE IF NOT EXISTS zones (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL UNIQUE CHECK(role IN ('right-shoulder', 'left-shoulder', 'shoulders', 'hands')),
			x_lower REAL NOT NULL,
			x_upper REAL NOT NULL,
			y_lower REAL NOT NULL,
			y_upper REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

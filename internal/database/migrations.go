package database

import "fmt"

// Migrations are forward-only and idempotent: every statement guards with
// IF NOT EXISTS, so reopening a store that is already at the current
// version is a no-op. The applied version is tracked in PRAGMA user_version.
type migration struct {
	version int
	stmts   string
}

var migrations = []migration{
	{
		version: 1,
		stmts: `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
`,
	},
	{
		version: 2,
		stmts: `
CREATE TABLE IF NOT EXISTS reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    domain TEXT NOT NULL,
    vendor_name TEXT NOT NULL,
    scan_type TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    result TEXT NOT NULL,
    sources TEXT NOT NULL DEFAULT '[]',
    contract_analysis TEXT
);

CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id);
CREATE INDEX IF NOT EXISTS idx_reports_domain ON reports(domain);
`,
	},
	{
		version: 3,
		stmts: `
CREATE TABLE IF NOT EXISTS settings (
    user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    provider TEXT NOT NULL,
    ollama_model TEXT NOT NULL DEFAULT '',
    ollama_url TEXT NOT NULL DEFAULT '',
    posture_weight REAL NOT NULL,
    exposure_weight REAL NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := db.Exec(m.stmts); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("recording version %d: %w", m.version, err)
		}
	}
	return nil
}

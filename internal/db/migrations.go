package db

import "github.com/gerunddev/projecthub/internal/log"

// schema is the SQL schema for the ProjectHub client database.
const schema = `
CREATE TABLE IF NOT EXISTS credentials (
    api_url TEXT PRIMARY KEY,
    token TEXT NOT NULL,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    saved_at DATETIME NOT NULL
);
`

// Migrate runs all database migrations to ensure the schema is up to date.
func (d *DB) Migrate() error {
	if _, err := d.conn.Exec(schema); err != nil {
		return err
	}
	return d.runMigrations()
}

// runMigrations applies incremental schema changes for existing databases.
func (d *DB) runMigrations() error {
	// Migration: store the user's email alongside the token so the header can
	// render before the session is revalidated.
	if exists, err := d.columnExists("credentials", "email"); err != nil {
		return err
	} else if !exists {
		if _, err := d.conn.Exec(`
			ALTER TABLE credentials ADD COLUMN email TEXT NOT NULL DEFAULT '';
		`); err != nil {
			return err
		}
	}

	return nil
}

// columnExists checks if a column exists in the specified table.
func (d *DB) columnExists(table, column string) (bool, error) {
	rows, err := d.conn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "columnExists", "error", closeErr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

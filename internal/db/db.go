// Package db provides the local sqlite store for ProjectHub. The only thing
// persisted on the client is the session credential for each API server.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gerunddev/projecthub/internal/log"
)

// ErrNotFound is returned when a requested record is not found.
var ErrNotFound = errors.New("record not found")

// DB holds the database connection and provides methods for data access.
type DB struct {
	conn *sql.DB
}

// New creates a new database connection.
// If the path is ":memory:", an in-memory database is created.
// Otherwise, the parent directory is created if it doesn't exist.
func New(path string) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("failed to close connection after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.Migrate(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("failed to close connection after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// =============================================================================
// Credential Methods
// =============================================================================

// SaveCredential stores the credential for its API server, replacing any
// previous one.
func (d *DB) SaveCredential(cred *Credential) error {
	if cred.APIURL == "" {
		return errors.New("credential api url is required")
	}
	cred.SavedAt = time.Now()

	_, err := d.conn.Exec(`
		INSERT INTO credentials (api_url, token, user_id, name, email, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(api_url) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			name = excluded.name,
			email = excluded.email,
			saved_at = excluded.saved_at`,
		cred.APIURL, cred.Token, cred.UserID, cred.Name, cred.Email, cred.SavedAt,
	)
	return err
}

// GetCredential returns the stored credential for an API server.
func (d *DB) GetCredential(apiURL string) (*Credential, error) {
	cred := &Credential{}
	err := d.conn.QueryRow(`
		SELECT api_url, token, user_id, name, email, saved_at
		FROM credentials WHERE api_url = ?`, apiURL,
	).Scan(&cred.APIURL, &cred.Token, &cred.UserID, &cred.Name, &cred.Email, &cred.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// DeleteCredential removes the stored credential for an API server.
// Deleting a missing credential is not an error.
func (d *DB) DeleteCredential(apiURL string) error {
	_, err := d.conn.Exec(`DELETE FROM credentials WHERE api_url = ?`, apiURL)
	return err
}

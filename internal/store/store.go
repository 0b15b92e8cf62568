// package store implements the durable persistence layer for the library
// organizer.
//
// A single Store handle wraps the SQLite connection and exposes every CRUD
// and aggregate operation the pipeline stages need. Batch writes run in one
// transaction; constraint failures surface as shared.ErrConstraintViolation.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/shared"
)

// Store provides access to all persisted pipeline state.
type Store struct {
	db *sql.DB
}

// New creates a Store backed by the given database connection. The caller
// owns the connection and is responsible for running migrations first.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertSource inserts a source or refreshes the name of an existing one.
// A missing ID is generated. Remote identifier uniqueness is enforced by the
// schema and surfaces as a constraint violation.
func (s *Store) UpsertSource(source *models.Source) error {
	if source.ID == "" {
		source.ID = shared.GenerateID()
	}
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sources (id, kind, name, remote_id, last_synced_at, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`

	_, err := s.db.Exec(query,
		source.ID,
		string(source.Kind),
		source.Name,
		source.RemoteID,
		source.LastSyncedAt,
		source.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", shared.MapConstraintError(err))
	}

	return nil
}

// ListSources returns all tracked sources with their song counts.
func (s *Store) ListSources() ([]models.Source, error) {
	query := `
		SELECT s.id, s.kind, s.name, COALESCE(s.remote_id, ''), s.last_synced_at, s.created_at,
			(SELECT COUNT(*) FROM songs WHERE songs.source_id = s.id)
		FROM sources s
		ORDER BY s.created_at ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []models.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sources, nil
}

// GetSource retrieves a source by ID.
func (s *Store) GetSource(id string) (*models.Source, error) {
	query := `
		SELECT id, kind, name, COALESCE(remote_id, ''), last_synced_at, created_at, 0
		FROM sources
		WHERE id = ?
	`

	source, err := scanSource(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: source %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// FindSourceByRemoteID retrieves a source by its remote collection identifier.
func (s *Store) FindSourceByRemoteID(remoteID string) (*models.Source, error) {
	query := `
		SELECT id, kind, name, COALESCE(remote_id, ''), last_synced_at, created_at, 0
		FROM sources
		WHERE remote_id = ?
	`

	source, err := scanSource(s.db.QueryRow(query, remoteID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: source with remote id %s", shared.ErrNotFound, remoteID)
	}
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// DeleteSource removes a source. Owned songs keep their rows but lose their
// source reference (schema ON DELETE SET NULL).
func (s *Store) DeleteSource(id string) error {
	result, err := s.db.Exec("DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: source %s", shared.ErrNotFound, id)
	}

	return nil
}

// TouchSourceSyncTime records a successful sync of the source.
func (s *Store) TouchSourceSyncTime(id string, at time.Time) error {
	result, err := s.db.Exec("UPDATE sources SET last_synced_at = ? WHERE id = ?", at, id)
	if err != nil {
		return fmt.Errorf("failed to update sync time: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: source %s", shared.ErrNotFound, id)
	}

	return nil
}

// ResetClassificationState clears songs, categories, playlists, and
// memberships and unsets every source's last-synced timestamp. Source rows
// themselves are preserved.
func (s *Store) ResetClassificationState() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM playlist_songs",
		"DELETE FROM playlists",
		"DELETE FROM categories",
		"DELETE FROM songs",
		"UPDATE sources SET last_synced_at = NULL",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to reset state: %w", err)
		}
	}

	return tx.Commit()
}

// ClearPlaylists removes all synthesized playlists and their memberships,
// leaving songs and categories intact.
func (s *Store) ClearPlaylists() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM playlist_songs",
		"DELETE FROM playlists",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to clear playlists: %w", err)
		}
	}

	return tx.Commit()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (models.Source, error) {
	var (
		source   models.Source
		kind     string
		syncedAt sql.NullTime
	)

	err := row.Scan(&source.ID, &kind, &source.Name, &source.RemoteID, &syncedAt, &source.CreatedAt, &source.SongCount)
	if err == sql.ErrNoRows {
		return source, err
	}
	if err != nil {
		return source, fmt.Errorf("failed to scan source: %w", err)
	}

	source.Kind = models.SourceKind(kind)
	if syncedAt.Valid {
		source.LastSyncedAt = &syncedAt.Time
	}

	return source, nil
}

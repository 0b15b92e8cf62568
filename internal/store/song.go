package store

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/shared"
)

// UpsertSongs inserts the given songs in a single transaction with
// insert-if-absent semantics keyed by the external identifier. Returns the
// number of rows actually inserted; re-ingesting known IDs is a no-op.
func (s *Store) UpsertSongs(songs []models.Song) (int, error) {
	if len(songs) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO songs (id, title, artist, source_id, added_at, classified)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, 0)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, song := range songs {
		result, err := stmt.Exec(song.ID, song.Title, song.Artist, song.SourceID, song.AddedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert song %s: %w", song.ID, shared.MapConstraintError(err))
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get affected rows: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit song batch: %w", err)
	}

	return inserted, nil
}

// ListSongs returns every song in insertion order.
func (s *Store) ListSongs() ([]models.Song, error) {
	return s.querySongs(`
		SELECT id, title, COALESCE(artist, ''), COALESCE(source_id, ''), added_at, classified
		FROM songs
		ORDER BY added_at ASC, id ASC
	`)
}

// ListUnclassified returns songs whose classified flag is unset, oldest
// first. A non-positive limit returns all of them.
func (s *Store) ListUnclassified(limit int) ([]models.Song, error) {
	query := `
		SELECT id, title, COALESCE(artist, ''), COALESCE(source_id, ''), added_at, classified
		FROM songs
		WHERE classified = 0
		ORDER BY added_at ASC, id ASC
	`
	if limit > 0 {
		return s.querySongs(query+" LIMIT ?", limit)
	}
	return s.querySongs(query)
}

// MarkClassified flips the classified flag for a song.
func (s *Store) MarkClassified(id string) error {
	result, err := s.db.Exec("UPDATE songs SET classified = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark song classified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s", shared.ErrNotFound, id)
	}

	return nil
}

func (s *Store) querySongs(query string, args ...any) ([]models.Song, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

func scanSong(rows *sql.Rows) (models.Song, error) {
	var (
		song       models.Song
		classified int
	)

	if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.SourceID, &song.AddedAt, &classified); err != nil {
		return song, fmt.Errorf("failed to scan song: %w", err)
	}

	song.Classified = classified != 0
	return song, nil
}

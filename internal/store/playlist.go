package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/shared"
)

// UpsertPlaylist creates a playlist or, when one with the same name already
// exists, refreshes its seed and updated timestamp. The playlist's ID is
// populated either way; an existing remote identifier is never touched.
func (s *Store) UpsertPlaylist(playlist *models.Playlist) error {
	now := time.Now().UTC()

	existing, err := s.FindPlaylistByName(playlist.Name)
	if err == nil {
		playlist.ID = existing.ID
		playlist.RemoteID = existing.RemoteID
		playlist.CreatedAt = existing.CreatedAt
		playlist.UpdatedAt = now

		_, err := s.db.Exec(`
			UPDATE playlists SET seed_kind = ?, seed_value = ?, updated_at = ? WHERE id = ?
		`, playlist.SeedKind, playlist.SeedValue, now, playlist.ID)
		if err != nil {
			return fmt.Errorf("failed to update playlist: %w", err)
		}
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	if playlist.ID == "" {
		playlist.ID = shared.GenerateID()
	}
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO playlists (id, name, remote_id, seed_kind, seed_value, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)
	`, playlist.ID, playlist.Name, playlist.RemoteID, playlist.SeedKind, playlist.SeedValue, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", shared.MapConstraintError(err))
	}

	return nil
}

// FindPlaylistByName retrieves a playlist by its synthesis name.
func (s *Store) FindPlaylistByName(name string) (*models.Playlist, error) {
	query := `
		SELECT id, name, COALESCE(remote_id, ''), seed_kind, seed_value, created_at, updated_at
		FROM playlists
		WHERE name = ?
	`

	playlist, err := scanPlaylist(s.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: playlist %q", shared.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// ListPlaylists returns all synthesized playlists, oldest first.
func (s *Store) ListPlaylists() ([]models.Playlist, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(remote_id, ''), seed_kind, seed_value, created_at, updated_at
		FROM playlists
		ORDER BY created_at ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// SetPlaylistRemoteID records the remote platform identifier for a published
// playlist.
func (s *Store) SetPlaylistRemoteID(id, remoteID string) error {
	result, err := s.db.Exec("UPDATE playlists SET remote_id = ?, updated_at = ? WHERE id = ?", remoteID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set remote id: %w", err)
	}
	return requireRow(result, fmt.Sprintf("playlist %s", id))
}

// ClearPlaylistRemoteID unsets the remote identifier so a playlist can be
// republished. This is an explicit user action, never done automatically.
func (s *Store) ClearPlaylistRemoteID(id string) error {
	result, err := s.db.Exec("UPDATE playlists SET remote_id = NULL, updated_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to clear remote id: %w", err)
	}
	return requireRow(result, fmt.Sprintf("playlist %s", id))
}

// DeletePlaylist removes a playlist; membership cascades.
func (s *Store) DeletePlaylist(id string) error {
	result, err := s.db.Exec("DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return requireRow(result, fmt.Sprintf("playlist %s", id))
}

// ClearMembership removes every member of a playlist.
func (s *Store) ClearMembership(playlistID string) error {
	if _, err := s.db.Exec("DELETE FROM playlist_songs WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to clear membership: %w", err)
	}
	return nil
}

// AddMember adds a song to a playlist with insert-if-absent semantics.
func (s *Store) AddMember(playlistID, songID string) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, added_at)
		VALUES (?, ?, ?)
	`, playlistID, songID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add member: %w", shared.MapConstraintError(err))
	}
	return nil
}

// ListMembers returns the songs belonging to a playlist in membership order.
func (s *Store) ListMembers(playlistID string) ([]models.Song, error) {
	return s.querySongs(`
		SELECT s.id, s.title, COALESCE(s.artist, ''), COALESCE(s.source_id, ''), s.added_at, s.classified
		FROM songs s
		JOIN playlist_songs ps ON ps.song_id = s.id
		WHERE ps.playlist_id = ?
		ORDER BY ps.added_at ASC, s.id ASC
	`, playlistID)
}

func scanPlaylist(row scanner) (models.Playlist, error) {
	var playlist models.Playlist

	err := row.Scan(&playlist.ID, &playlist.Name, &playlist.RemoteID, &playlist.SeedKind, &playlist.SeedValue, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err == sql.ErrNoRows {
		return playlist, err
	}
	if err != nil {
		return playlist, fmt.Errorf("failed to scan playlist: %w", err)
	}

	return playlist, nil
}

func requireRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, what)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

package store

import (
	"fmt"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/shared"
)

// InsertCategories persists a batch of classification facts in a single
// transaction. A foreign-key failure (unknown song) aborts the whole batch.
func (s *Store) InsertCategories(categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO categories (song_id, kind, value, confidence)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, category := range categories {
		if _, err := stmt.Exec(category.SongID, string(category.Kind), category.Value, category.Confidence); err != nil {
			return fmt.Errorf("failed to insert category for song %s: %w", category.SongID, shared.MapConstraintError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category batch: %w", err)
	}

	return nil
}

// ListCategoriesForSong returns all classification facts for one song.
func (s *Store) ListCategoriesForSong(songID string) ([]models.Category, error) {
	return s.queryCategories(`
		SELECT id, song_id, kind, value, confidence
		FROM categories
		WHERE song_id = ?
		ORDER BY id ASC
	`, songID)
}

// ListAllCategories returns every classification fact, grouped by insertion
// order. The synthesizer uses this to build per-song value sets in one pass.
func (s *Store) ListAllCategories() ([]models.Category, error) {
	return s.queryCategories(`
		SELECT id, song_id, kind, value, confidence
		FROM categories
		ORDER BY song_id ASC, id ASC
	`)
}

// ListDistinctCategoryValues returns the distinct values present for one
// classification dimension, sorted alphabetically.
func (s *Store) ListDistinctCategoryValues(kind models.CategoryKind) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT value FROM categories WHERE kind = ? ORDER BY value ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query category values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan category value: %w", err)
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return values, nil
}

func (s *Store) queryCategories(query string, args ...any) ([]models.Category, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var (
			category models.Category
			kind     string
		)
		if err := rows.Scan(&category.ID, &category.SongID, &kind, &category.Value, &category.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		category.Kind = models.CategoryKind(kind)
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

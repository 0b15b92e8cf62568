package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/services"
	"github.com/desertthunder/ytsort/internal/shared"
)

// DefaultVocabulary is the allowed value set offered to the categorization
// service. Free-form values outside it are still stored if returned.
func DefaultVocabulary() services.Vocabulary {
	return services.Vocabulary{
		Moods: []string{
			"happy", "sad", "calm", "angry", "romantic", "nostalgic",
			"uplifting", "melancholic", "dark", "dreamy",
		},
		Genres: []string{
			"pop", "rock", "hip hop", "electronic", "jazz", "classical",
			"metal", "folk", "r&b", "country", "latin", "indie",
		},
		Energies: []string{"low", "medium", "high"},
	}
}

// ClassifyResult reports one classification run.
type ClassifyResult struct {
	Total         int // unclassified songs selected
	Processed     int // songs marked classified
	Failed        int // songs left unclassified for a later retry
	Batches       int
	FailedBatches int
	Categories    int // category rows persisted
}

// Classify selects all unclassified songs, partitions them into fixed-size
// batches and runs one categorization call per batch.
//
// A batch whose call fails or whose response cannot be parsed is skipped
// whole (its songs stay unclassified, retryable on a later run); quota
// exhaustion aborts the command since further calls would also fail. Songs
// the service returned no assignment for are still marked classified so the
// pipeline always makes forward progress.
func (e *LibraryEngine) Classify(ctx context.Context, kind string, progress chan<- ProgressUpdate) (*ClassifyResult, error) {
	kinds, err := models.ParseCategoryKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	songs, err := e.store.ListUnclassified(0)
	if err != nil {
		return nil, err
	}

	result := &ClassifyResult{Total: len(songs)}
	if len(songs) == 0 {
		return result, nil
	}

	vocab := DefaultVocabulary()
	batches := partition(songs, e.batchSize)
	result.Batches = len(batches)

	for i, batch := range batches {
		if i > 0 {
			// stays under the AI service's request-rate limit
			if err := e.batchLimiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		e.sendProgress(progress, classifyBatchUpdate(i+1, len(batches), len(batch)))

		items := make([]services.BatchItem, len(batch))
		for j, song := range batch {
			items[j] = services.BatchItem{Title: song.Title, Artist: song.Artist}
		}

		assignments, err := e.ai.CategorizeBatch(ctx, items, kinds, vocab)
		if err != nil {
			if errors.Is(err, shared.ErrQuotaExceeded) {
				return result, err
			}
			result.Failed += len(batch)
			result.FailedBatches++
			e.sendProgress(progress, classifyBatchFailedUpdate(i+1, len(batches), err))
			continue
		}

		categories := collectCategories(batch, assignments, kinds)
		if err := e.store.InsertCategories(categories); err != nil {
			return result, err
		}

		for _, song := range batch {
			if err := e.store.MarkClassified(song.ID); err != nil {
				return result, err
			}
		}

		result.Processed += len(batch)
		result.Categories += len(categories)
	}

	return result, nil
}

// collectCategories validates assignments against the batch and builds the
// rows to persist. Out-of-range indexes are discarded; missing fields mean no
// assignment for that dimension. Confidence is fixed at 1.0 since the service
// does not return calibrated scores.
func collectCategories(batch []models.Song, assignments []services.BatchAssignment, kinds []models.CategoryKind) []models.Category {
	requested := make(map[models.CategoryKind]bool, len(kinds))
	for _, kind := range kinds {
		requested[kind] = true
	}

	var categories []models.Category
	add := func(songID string, kind models.CategoryKind, value string) {
		if value == "" || !requested[kind] {
			return
		}
		categories = append(categories, models.Category{
			SongID:     songID,
			Kind:       kind,
			Value:      value,
			Confidence: 1.0,
		})
	}

	for _, assignment := range assignments {
		if assignment.Index < 0 || assignment.Index >= len(batch) {
			continue
		}
		songID := batch[assignment.Index].ID

		for _, mood := range assignment.Moods {
			add(songID, models.KindMood, mood)
		}
		for _, genre := range assignment.Genres {
			add(songID, models.KindGenre, genre)
		}
		add(songID, models.KindEnergy, assignment.Energy)
	}

	return categories
}

// partition splits songs into batches of at most size items, preserving
// order.
func partition(songs []models.Song, size int) [][]models.Song {
	var batches [][]models.Song
	for start := 0; start < len(songs); start += size {
		end := start + size
		if end > len(songs) {
			end = len(songs)
		}
		batches = append(batches, songs[start:end])
	}
	return batches
}

package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/services"
)

// SynthesizeResult reports one synthesis run.
type SynthesizeResult struct {
	Suggestions int
	Created     int // new playlists
	Updated     int // existing playlists refreshed
	Empty       int // playlists recorded with no matches
	Memberships int
}

// songValues holds one song's category values per dimension.
type songValues map[models.CategoryKind][]string

// Synthesize aggregates the distinct category values present in the library,
// requests playlist groupings from the AI service, and materializes each
// suggestion as a playlist with rebuilt membership.
//
// Suggestions that fail to parse abort the whole call before anything is
// persisted. Calling twice over unchanged classified data yields identical
// membership sets.
func (e *LibraryEngine) Synthesize(ctx context.Context, progress chan<- ProgressUpdate) (*SynthesizeResult, error) {
	songs, err := e.store.ListSongs()
	if err != nil {
		return nil, err
	}

	var classified []models.Song
	for _, song := range songs {
		if song.Classified {
			classified = append(classified, song)
		}
	}
	if len(classified) == 0 {
		return nil, fmt.Errorf("no classified songs to synthesize from; run classify first")
	}

	values, err := e.loadSongValues()
	if err != nil {
		return nil, err
	}

	vocab, err := e.libraryVocabulary()
	if err != nil {
		return nil, err
	}

	suggestions, err := e.ai.SuggestPlaylists(ctx, vocab)
	if err != nil {
		return nil, err
	}

	result := &SynthesizeResult{Suggestions: len(suggestions)}
	e.sendProgress(progress, suggestionsUpdate(len(suggestions)))

	for i, suggestion := range suggestions {
		var members []models.Song
		for _, song := range classified {
			if MatchesFilter(values[song.ID], suggestion.Filter) {
				members = append(members, song)
			}
		}

		seedKind, seedValue := primarySeed(suggestion.Filter)
		playlist := models.Playlist{
			Name:      suggestion.Name,
			SeedKind:  seedKind,
			SeedValue: seedValue,
		}

		fresh := true
		if _, err := e.store.FindPlaylistByName(suggestion.Name); err == nil {
			fresh = false
		}

		if err := e.store.UpsertPlaylist(&playlist); err != nil {
			return result, err
		}
		if err := e.store.ClearMembership(playlist.ID); err != nil {
			return result, err
		}

		for _, member := range members {
			if err := e.store.AddMember(playlist.ID, member.ID); err != nil {
				return result, err
			}
		}

		if fresh {
			result.Created++
		} else {
			result.Updated++
		}
		// empty playlists are still recorded so the user sees the
		// suggestion was considered
		if len(members) == 0 {
			result.Empty++
		}
		result.Memberships += len(members)

		e.sendProgress(progress, buildPlaylistUpdate(i+1, len(suggestions), suggestion.Name, len(members)))
	}

	return result, nil
}

// MatchesFilter evaluates a suggestion predicate against one song's values.
// Every dimension present in the filter must intersect the song's own values
// for that dimension; absent dimensions always match. A song with no energy
// value never matches a filter that specifies energies.
func MatchesFilter(values songValues, filter services.SuggestionFilter) bool {
	checks := []struct {
		kind   models.CategoryKind
		wanted []string
	}{
		{models.KindMood, filter.Moods},
		{models.KindGenre, filter.Genres},
		{models.KindEnergy, filter.Energies},
	}

	for _, check := range checks {
		if len(check.wanted) == 0 {
			continue
		}
		if !intersects(values[check.kind], check.wanted) {
			return false
		}
	}

	return true
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// loadSongValues builds the per-song value sets in one pass over all
// categories.
func (e *LibraryEngine) loadSongValues() (map[string]songValues, error) {
	categories, err := e.store.ListAllCategories()
	if err != nil {
		return nil, err
	}

	values := make(map[string]songValues)
	for _, category := range categories {
		if values[category.SongID] == nil {
			values[category.SongID] = make(songValues)
		}
		values[category.SongID][category.Kind] = append(values[category.SongID][category.Kind], category.Value)
	}

	return values, nil
}

// libraryVocabulary collects the distinct values actually present per
// dimension.
func (e *LibraryEngine) libraryVocabulary() (services.Vocabulary, error) {
	var vocab services.Vocabulary
	var err error

	if vocab.Moods, err = e.store.ListDistinctCategoryValues(models.KindMood); err != nil {
		return vocab, err
	}
	if vocab.Genres, err = e.store.ListDistinctCategoryValues(models.KindGenre); err != nil {
		return vocab, err
	}
	if vocab.Energies, err = e.store.ListDistinctCategoryValues(models.KindEnergy); err != nil {
		return vocab, err
	}

	return vocab, nil
}

// primarySeed picks the first populated filter dimension as the playlist's
// seed pair.
func primarySeed(filter services.SuggestionFilter) (kind, value string) {
	switch {
	case len(filter.Moods) > 0:
		return string(models.KindMood), filter.Moods[0]
	case len(filter.Genres) > 0:
		return string(models.KindGenre), filter.Genres[0]
	case len(filter.Energies) > 0:
		return string(models.KindEnergy), filter.Energies[0]
	default:
		return "", ""
	}
}

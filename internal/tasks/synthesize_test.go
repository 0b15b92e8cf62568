package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/services"
	"github.com/desertthunder/ytsort/internal/shared"
	"github.com/desertthunder/ytsort/internal/store"
	tu "github.com/desertthunder/ytsort/internal/testing"
)

func TestMatchesFilter(t *testing.T) {
	values := songValues{
		models.KindMood:  {"happy", "calm"},
		models.KindGenre: {"pop"},
	}

	tests := []struct {
		name   string
		filter services.SuggestionFilter
		want   bool
	}{
		{"EmptyFilterMatchesAll", services.SuggestionFilter{}, true},
		{"MoodIntersects", services.SuggestionFilter{Moods: []string{"happy", "uplifting"}}, true},
		{"MoodDisjoint", services.SuggestionFilter{Moods: []string{"sad", "angry"}}, false},
		{"AllDimensionsMustMatch", services.SuggestionFilter{Moods: []string{"happy"}, Genres: []string{"rock"}}, false},
		{"MoodAndGenreMatch", services.SuggestionFilter{Moods: []string{"calm"}, Genres: []string{"pop"}}, true},
		{"MissingEnergyNeverMatches", services.SuggestionFilter{Energies: []string{"high"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesFilter(values, tt.filter); got != tt.want {
				t.Errorf("MatchesFilter = %v, want %v", got, tt.want)
			}
		})
	}
}

// seedClassifiedLibrary stores three classified songs with known categories.
func seedClassifiedLibrary(t *testing.T, st *store.Store) {
	t.Helper()

	source := addTestSource(t, st, models.SourcePlaylist, "Mix", "PL1")
	addTestSongs(t, st, source.ID, "v1", "v2", "v3")
	markAllClassified(t, st)

	err := st.InsertCategories([]models.Category{
		{SongID: "v1", Kind: models.KindMood, Value: "happy", Confidence: 1.0},
		{SongID: "v1", Kind: models.KindGenre, Value: "pop", Confidence: 1.0},
		{SongID: "v1", Kind: models.KindEnergy, Value: "high", Confidence: 1.0},
		{SongID: "v2", Kind: models.KindMood, Value: "sad", Confidence: 1.0},
		{SongID: "v2", Kind: models.KindGenre, Value: "folk", Confidence: 1.0},
		{SongID: "v3", Kind: models.KindMood, Value: "happy", Confidence: 1.0},
		{SongID: "v3", Kind: models.KindGenre, Value: "rock", Confidence: 1.0},
	})
	if err != nil {
		t.Fatalf("failed to insert categories: %v", err)
	}
}

func memberIDs(t *testing.T, st *store.Store, name string) []string {
	t.Helper()

	playlist, err := st.FindPlaylistByName(name)
	if err != nil {
		t.Fatalf("failed to find playlist %q: %v", name, err)
	}
	members, err := st.ListMembers(playlist.ID)
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}

	ids := make([]string, len(members))
	for i, member := range members {
		ids[i] = member.ID
	}
	sort.Strings(ids)
	return ids
}

func TestSynthesize(t *testing.T) {
	suggestions := []services.PlaylistSuggestion{
		{Name: "Happy Days", Filter: services.SuggestionFilter{Moods: []string{"happy"}}},
		{Name: "Quiet Folk", Filter: services.SuggestionFilter{Moods: []string{"sad"}, Genres: []string{"folk"}}},
		{Name: "Metal Hour", Filter: services.SuggestionFilter{Genres: []string{"metal"}}},
	}
	ai := &tu.MockCategorizer{
		SuggestPlaylistsFn: func(ctx context.Context, vocab services.Vocabulary) ([]services.PlaylistSuggestion, error) {
			return suggestions, nil
		},
	}

	t.Run("MaterializesSuggestions", func(t *testing.T) {
		engine, st := setupTestEngine(t, nil, ai)
		seedClassifiedLibrary(t, st)

		result, err := engine.Synthesize(context.Background(), nil)
		if err != nil {
			t.Fatalf("synthesize failed: %v", err)
		}
		if result.Created != 3 || result.Updated != 0 || result.Empty != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
		if result.Memberships != 3 {
			t.Errorf("expected 3 memberships, got %d", result.Memberships)
		}

		happy := memberIDs(t, st, "Happy Days")
		if len(happy) != 2 || happy[0] != "v1" || happy[1] != "v3" {
			t.Errorf("unexpected Happy Days members: %v", happy)
		}
		if folk := memberIDs(t, st, "Quiet Folk"); len(folk) != 1 || folk[0] != "v2" {
			t.Errorf("unexpected Quiet Folk members: %v", folk)
		}
		// empty playlists are still recorded
		if metal := memberIDs(t, st, "Metal Hour"); len(metal) != 0 {
			t.Errorf("Metal Hour should be empty, got %v", metal)
		}
	})

	t.Run("RerunRebuildsSameMembership", func(t *testing.T) {
		engine, st := setupTestEngine(t, nil, ai)
		seedClassifiedLibrary(t, st)

		if _, err := engine.Synthesize(context.Background(), nil); err != nil {
			t.Fatalf("first synthesize failed: %v", err)
		}
		firstHappy := memberIDs(t, st, "Happy Days")

		result, err := engine.Synthesize(context.Background(), nil)
		if err != nil {
			t.Fatalf("second synthesize failed: %v", err)
		}
		if result.Created != 0 || result.Updated != 3 {
			t.Errorf("rerun should refresh, not create: %+v", result)
		}

		secondHappy := memberIDs(t, st, "Happy Days")
		if len(firstHappy) != len(secondHappy) {
			t.Errorf("membership changed across reruns: %v vs %v", firstHappy, secondHappy)
		}

		playlists, err := st.ListPlaylists()
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 3 {
			t.Errorf("expected 3 playlists after rerun, got %d", len(playlists))
		}
	})

	t.Run("NoClassifiedSongsFails", func(t *testing.T) {
		engine, st := setupTestEngine(t, nil, ai)
		source := addTestSource(t, st, models.SourcePlaylist, "Mix", "PL1")
		addTestSongs(t, st, source.ID, "v1")

		if _, err := engine.Synthesize(context.Background(), nil); err == nil {
			t.Error("expected error with no classified songs")
		}
	})

	t.Run("InvalidResponseAbortsBeforePersisting", func(t *testing.T) {
		failing := &tu.MockCategorizer{
			SuggestPlaylistsFn: func(ctx context.Context, vocab services.Vocabulary) ([]services.PlaylistSuggestion, error) {
				return nil, fmt.Errorf("%w: not json", shared.ErrInvalidAIResponse)
			},
		}

		engine, st := setupTestEngine(t, nil, failing)
		seedClassifiedLibrary(t, st)

		_, err := engine.Synthesize(context.Background(), nil)
		if !errors.Is(err, shared.ErrInvalidAIResponse) {
			t.Fatalf("expected ErrInvalidAIResponse, got %v", err)
		}

		playlists, err := st.ListPlaylists()
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 0 {
			t.Errorf("nothing should be persisted on a bad response, got %d playlists", len(playlists))
		}
	})

	t.Run("VocabularyComesFromLibrary", func(t *testing.T) {
		var seen services.Vocabulary
		capture := &tu.MockCategorizer{
			SuggestPlaylistsFn: func(ctx context.Context, vocab services.Vocabulary) ([]services.PlaylistSuggestion, error) {
				seen = vocab
				return nil, nil
			},
		}

		engine, st := setupTestEngine(t, nil, capture)
		seedClassifiedLibrary(t, st)

		if _, err := engine.Synthesize(context.Background(), nil); err != nil {
			t.Fatalf("synthesize failed: %v", err)
		}

		sort.Strings(seen.Moods)
		if len(seen.Moods) != 2 || seen.Moods[0] != "happy" || seen.Moods[1] != "sad" {
			t.Errorf("unexpected mood vocabulary: %v", seen.Moods)
		}
		if len(seen.Genres) != 3 {
			t.Errorf("expected 3 distinct genres, got %v", seen.Genres)
		}
	})
}

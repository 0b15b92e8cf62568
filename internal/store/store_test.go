package store

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/shared"
)

// setupTestStore creates an in-memory SQLite database with migrations applied
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// a second pooled connection would see a fresh, empty in-memory database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return New(db)
}

func insertTestSource(t *testing.T, s *Store, kind models.SourceKind, name, remoteID string) *models.Source {
	t.Helper()

	source := &models.Source{Kind: kind, Name: name, RemoteID: remoteID}
	if err := s.UpsertSource(source); err != nil {
		t.Fatalf("failed to insert source: %v", err)
	}
	return source
}

func insertTestSongs(t *testing.T, s *Store, sourceID string, ids ...string) {
	t.Helper()

	songs := make([]models.Song, len(ids))
	for i, id := range ids {
		songs[i] = models.Song{
			ID:       id,
			Title:    "Song " + id,
			Artist:   "Artist",
			SourceID: sourceID,
			AddedAt:  time.Now().UTC(),
		}
	}
	if _, err := s.UpsertSongs(songs); err != nil {
		t.Fatalf("failed to insert songs: %v", err)
	}
}

func TestSourceStore(t *testing.T) {
	t.Run("UpsertGeneratesID", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Focus Mix", "PL123")
		if source.ID == "" {
			t.Error("source ID should be set after upsert")
		}

		got, err := s.GetSource(source.ID)
		if err != nil {
			t.Fatalf("failed to get source: %v", err)
		}
		if got.Name != "Focus Mix" || got.RemoteID != "PL123" {
			t.Errorf("unexpected source: %+v", got)
		}
	})

	t.Run("UpsertRefreshesName", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Old Name", "PL123")
		source.Name = "New Name"
		if err := s.UpsertSource(source); err != nil {
			t.Fatalf("failed to re-upsert source: %v", err)
		}

		got, err := s.GetSource(source.ID)
		if err != nil {
			t.Fatalf("failed to get source: %v", err)
		}
		if got.Name != "New Name" {
			t.Errorf("expected refreshed name, got %q", got.Name)
		}
	})

	t.Run("DuplicateRemoteIDIsConstraintViolation", func(t *testing.T) {
		s := setupTestStore(t)

		insertTestSource(t, s, models.SourcePlaylist, "First", "PL123")
		err := s.UpsertSource(&models.Source{Kind: models.SourcePlaylist, Name: "Second", RemoteID: "PL123"})
		if !errors.Is(err, shared.ErrConstraintViolation) {
			t.Errorf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("FindByRemoteID", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Focus Mix", "PL123")

		got, err := s.FindSourceByRemoteID("PL123")
		if err != nil {
			t.Fatalf("failed to find source: %v", err)
		}
		if got.ID != source.ID {
			t.Errorf("expected %s, got %s", source.ID, got.ID)
		}

		if _, err := s.FindSourceByRemoteID("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteKeepsSongs", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Focus Mix", "PL123")
		insertTestSongs(t, s, source.ID, "v1", "v2")

		if err := s.DeleteSource(source.ID); err != nil {
			t.Fatalf("failed to delete source: %v", err)
		}

		songs, err := s.ListSongs()
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 2 {
			t.Fatalf("expected 2 surviving songs, got %d", len(songs))
		}
		for _, song := range songs {
			if song.SourceID != "" {
				t.Errorf("song %s should have lost its source reference", song.ID)
			}
		}
	})

	t.Run("DeleteMissingIsNotFound", func(t *testing.T) {
		s := setupTestStore(t)

		if err := s.DeleteSource("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("TouchSyncTime", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourceLiked, "Liked Songs", "")
		if source.LastSyncedAt != nil {
			t.Fatal("new source should never have synced")
		}

		now := time.Now().UTC()
		if err := s.TouchSourceSyncTime(source.ID, now); err != nil {
			t.Fatalf("failed to touch sync time: %v", err)
		}

		got, err := s.GetSource(source.ID)
		if err != nil {
			t.Fatalf("failed to get source: %v", err)
		}
		if got.LastSyncedAt == nil {
			t.Fatal("expected sync time to be recorded")
		}
	})

	t.Run("ListIncludesSongCounts", func(t *testing.T) {
		s := setupTestStore(t)

		a := insertTestSource(t, s, models.SourcePlaylist, "A", "PLa")
		insertTestSource(t, s, models.SourcePlaylist, "B", "PLb")
		insertTestSongs(t, s, a.ID, "v1", "v2", "v3")

		sources, err := s.ListSources()
		if err != nil {
			t.Fatalf("failed to list sources: %v", err)
		}
		if len(sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(sources))
		}

		counts := map[string]int{}
		for _, source := range sources {
			counts[source.Name] = source.SongCount
		}
		if counts["A"] != 3 || counts["B"] != 0 {
			t.Errorf("unexpected song counts: %v", counts)
		}
	})
}

func TestSongStore(t *testing.T) {
	t.Run("UpsertIsIdempotent", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		songs := []models.Song{
			{ID: "v1", Title: "One", Artist: "A", SourceID: source.ID, AddedAt: time.Now().UTC()},
			{ID: "v2", Title: "Two", SourceID: source.ID, AddedAt: time.Now().UTC()},
		}

		inserted, err := s.UpsertSongs(songs)
		if err != nil {
			t.Fatalf("failed to insert songs: %v", err)
		}
		if inserted != 2 {
			t.Errorf("expected 2 inserted, got %d", inserted)
		}

		inserted, err = s.UpsertSongs(songs)
		if err != nil {
			t.Fatalf("failed to re-insert songs: %v", err)
		}
		if inserted != 0 {
			t.Errorf("re-ingestion should insert nothing, got %d", inserted)
		}
	})

	t.Run("ReingestionKeepsClassifiedFlag", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		insertTestSongs(t, s, source.ID, "v1")

		if err := s.MarkClassified("v1"); err != nil {
			t.Fatalf("failed to mark classified: %v", err)
		}

		insertTestSongs(t, s, source.ID, "v1")

		unclassified, err := s.ListUnclassified(0)
		if err != nil {
			t.Fatalf("failed to list unclassified: %v", err)
		}
		if len(unclassified) != 0 {
			t.Errorf("re-ingestion should not reset classification, got %d unclassified", len(unclassified))
		}
	})

	t.Run("ListUnclassifiedRespectsLimit", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		insertTestSongs(t, s, source.ID, "v1", "v2", "v3")

		songs, err := s.ListUnclassified(2)
		if err != nil {
			t.Fatalf("failed to list unclassified: %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("expected 2 songs, got %d", len(songs))
		}
	})

	t.Run("MarkClassifiedMissingIsNotFound", func(t *testing.T) {
		s := setupTestStore(t)

		if err := s.MarkClassified("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UnknownSourceIsConstraintViolation", func(t *testing.T) {
		s := setupTestStore(t)

		_, err := s.UpsertSongs([]models.Song{
			{ID: "v1", Title: "One", SourceID: "missing", AddedAt: time.Now().UTC()},
		})
		if !errors.Is(err, shared.ErrConstraintViolation) {
			t.Errorf("expected ErrConstraintViolation, got %v", err)
		}
	})
}

func TestCategoryStore(t *testing.T) {
	t.Run("InsertAndList", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		insertTestSongs(t, s, source.ID, "v1")

		err := s.InsertCategories([]models.Category{
			{SongID: "v1", Kind: models.KindMood, Value: "happy", Confidence: 1.0},
			{SongID: "v1", Kind: models.KindGenre, Value: "pop", Confidence: 1.0},
			{SongID: "v1", Kind: models.KindEnergy, Value: "high", Confidence: 1.0},
		})
		if err != nil {
			t.Fatalf("failed to insert categories: %v", err)
		}

		categories, err := s.ListCategoriesForSong("v1")
		if err != nil {
			t.Fatalf("failed to list categories: %v", err)
		}
		if len(categories) != 3 {
			t.Errorf("expected 3 categories, got %d", len(categories))
		}
	})

	t.Run("UnknownSongIsConstraintViolation", func(t *testing.T) {
		s := setupTestStore(t)

		err := s.InsertCategories([]models.Category{
			{SongID: "missing", Kind: models.KindMood, Value: "happy", Confidence: 1.0},
		})
		if !errors.Is(err, shared.ErrConstraintViolation) {
			t.Errorf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("DistinctValuesDeduplicate", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		insertTestSongs(t, s, source.ID, "v1", "v2")

		err := s.InsertCategories([]models.Category{
			{SongID: "v1", Kind: models.KindMood, Value: "happy", Confidence: 1.0},
			{SongID: "v2", Kind: models.KindMood, Value: "happy", Confidence: 1.0},
			{SongID: "v2", Kind: models.KindMood, Value: "calm", Confidence: 1.0},
			{SongID: "v2", Kind: models.KindGenre, Value: "pop", Confidence: 1.0},
		})
		if err != nil {
			t.Fatalf("failed to insert categories: %v", err)
		}

		moods, err := s.ListDistinctCategoryValues(models.KindMood)
		if err != nil {
			t.Fatalf("failed to list distinct values: %v", err)
		}
		if len(moods) != 2 {
			t.Errorf("expected 2 distinct moods, got %v", moods)
		}
	})
}

func TestPlaylistStore(t *testing.T) {
	t.Run("UpsertByNamePreservesIdentity", func(t *testing.T) {
		s := setupTestStore(t)

		first := &models.Playlist{Name: "Happy Pop", SeedKind: "mood", SeedValue: "happy"}
		if err := s.UpsertPlaylist(first); err != nil {
			t.Fatalf("failed to insert playlist: %v", err)
		}
		if first.ID == "" {
			t.Fatal("playlist ID should be set after upsert")
		}

		if err := s.SetPlaylistRemoteID(first.ID, "RPL1"); err != nil {
			t.Fatalf("failed to set remote id: %v", err)
		}

		second := &models.Playlist{Name: "Happy Pop", SeedKind: "genre", SeedValue: "pop"}
		if err := s.UpsertPlaylist(second); err != nil {
			t.Fatalf("failed to re-upsert playlist: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("same-name upsert should reuse the row, got %s vs %s", second.ID, first.ID)
		}

		got, err := s.FindPlaylistByName("Happy Pop")
		if err != nil {
			t.Fatalf("failed to find playlist: %v", err)
		}
		if got.RemoteID != "RPL1" {
			t.Errorf("re-upsert must not clear the remote id, got %q", got.RemoteID)
		}
		if got.SeedKind != "genre" || got.SeedValue != "pop" {
			t.Errorf("re-upsert should refresh the seed, got %s=%s", got.SeedKind, got.SeedValue)
		}
	})

	t.Run("MembershipIgnoresDuplicates", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		insertTestSongs(t, s, source.ID, "v1")

		playlist := &models.Playlist{Name: "Happy Pop"}
		if err := s.UpsertPlaylist(playlist); err != nil {
			t.Fatalf("failed to insert playlist: %v", err)
		}

		if err := s.AddMember(playlist.ID, "v1"); err != nil {
			t.Fatalf("failed to add member: %v", err)
		}
		if err := s.AddMember(playlist.ID, "v1"); err != nil {
			t.Fatalf("duplicate add should be a no-op: %v", err)
		}

		members, err := s.ListMembers(playlist.ID)
		if err != nil {
			t.Fatalf("failed to list members: %v", err)
		}
		if len(members) != 1 {
			t.Errorf("expected 1 member, got %d", len(members))
		}
	})

	t.Run("ClearMembershipKeepsPlaylist", func(t *testing.T) {
		s := setupTestStore(t)

		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		insertTestSongs(t, s, source.ID, "v1", "v2")

		playlist := &models.Playlist{Name: "Happy Pop"}
		if err := s.UpsertPlaylist(playlist); err != nil {
			t.Fatalf("failed to insert playlist: %v", err)
		}
		for _, id := range []string{"v1", "v2"} {
			if err := s.AddMember(playlist.ID, id); err != nil {
				t.Fatalf("failed to add member: %v", err)
			}
		}

		if err := s.ClearMembership(playlist.ID); err != nil {
			t.Fatalf("failed to clear membership: %v", err)
		}

		members, err := s.ListMembers(playlist.ID)
		if err != nil {
			t.Fatalf("failed to list members: %v", err)
		}
		if len(members) != 0 {
			t.Errorf("expected no members, got %d", len(members))
		}

		if _, err := s.FindPlaylistByName("Happy Pop"); err != nil {
			t.Errorf("playlist row should survive: %v", err)
		}
	})

	t.Run("ClearRemoteID", func(t *testing.T) {
		s := setupTestStore(t)

		playlist := &models.Playlist{Name: "Happy Pop"}
		if err := s.UpsertPlaylist(playlist); err != nil {
			t.Fatalf("failed to insert playlist: %v", err)
		}
		if err := s.SetPlaylistRemoteID(playlist.ID, "RPL1"); err != nil {
			t.Fatalf("failed to set remote id: %v", err)
		}
		if err := s.ClearPlaylistRemoteID(playlist.ID); err != nil {
			t.Fatalf("failed to clear remote id: %v", err)
		}

		got, err := s.FindPlaylistByName("Happy Pop")
		if err != nil {
			t.Fatalf("failed to find playlist: %v", err)
		}
		if got.RemoteID != "" {
			t.Errorf("expected empty remote id, got %q", got.RemoteID)
		}
	})
}

func TestResetState(t *testing.T) {
	seed := func(t *testing.T, s *Store) *models.Source {
		source := insertTestSource(t, s, models.SourcePlaylist, "Mix", "PL1")
		insertTestSongs(t, s, source.ID, "v1", "v2")
		if err := s.TouchSourceSyncTime(source.ID, time.Now().UTC()); err != nil {
			t.Fatalf("failed to touch sync time: %v", err)
		}
		if err := s.InsertCategories([]models.Category{
			{SongID: "v1", Kind: models.KindMood, Value: "happy", Confidence: 1.0},
		}); err != nil {
			t.Fatalf("failed to insert categories: %v", err)
		}
		playlist := &models.Playlist{Name: "Happy Pop"}
		if err := s.UpsertPlaylist(playlist); err != nil {
			t.Fatalf("failed to insert playlist: %v", err)
		}
		if err := s.AddMember(playlist.ID, "v1"); err != nil {
			t.Fatalf("failed to add member: %v", err)
		}
		return source
	}

	t.Run("FullResetKeepsSources", func(t *testing.T) {
		s := setupTestStore(t)
		source := seed(t, s)

		if err := s.ResetClassificationState(); err != nil {
			t.Fatalf("failed to reset: %v", err)
		}

		songs, err := s.ListSongs()
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 0 {
			t.Errorf("expected no songs after reset, got %d", len(songs))
		}

		playlists, err := s.ListPlaylists()
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 0 {
			t.Errorf("expected no playlists after reset, got %d", len(playlists))
		}

		got, err := s.GetSource(source.ID)
		if err != nil {
			t.Fatalf("source should survive reset: %v", err)
		}
		if got.LastSyncedAt != nil {
			t.Error("reset should unset the last-synced timestamp")
		}
	})

	t.Run("ClearPlaylistsKeepsSongsAndCategories", func(t *testing.T) {
		s := setupTestStore(t)
		seed(t, s)

		if err := s.ClearPlaylists(); err != nil {
			t.Fatalf("failed to clear playlists: %v", err)
		}

		playlists, err := s.ListPlaylists()
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 0 {
			t.Errorf("expected no playlists, got %d", len(playlists))
		}

		songs, err := s.ListSongs()
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("songs should survive a playlist clear, got %d", len(songs))
		}

		categories, err := s.ListCategoriesForSong("v1")
		if err != nil {
			t.Fatalf("failed to list categories: %v", err)
		}
		if len(categories) != 1 {
			t.Errorf("categories should survive a playlist clear, got %d", len(categories))
		}
	})
}

package tasks

import (
	"testing"
	"time"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/shared"
	"github.com/desertthunder/ytsort/internal/store"
	tu "github.com/desertthunder/ytsort/internal/testing"
)

// setupTestEngine builds a LibraryEngine over an in-memory database with the
// given test doubles. Rate limits are collapsed to keep runs fast.
func setupTestEngine(t *testing.T, catalog *tu.MockCatalog, ai *tu.MockCategorizer) (*LibraryEngine, *store.Store) {
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

	st := store.New(db)
	engine := NewLibraryEngine(EngineOpts{
		Store:        st,
		Catalog:      catalog,
		AI:           ai,
		BatchSize:    2,
		BatchDelay:   time.Millisecond,
		PublishDelay: time.Millisecond,
	})

	return engine, st
}

func addTestSource(t *testing.T, st *store.Store, kind models.SourceKind, name, remoteID string) *models.Source {
	t.Helper()

	source := &models.Source{Kind: kind, Name: name, RemoteID: remoteID}
	if err := st.UpsertSource(source); err != nil {
		t.Fatalf("failed to add source: %v", err)
	}
	return source
}

func addTestSongs(t *testing.T, st *store.Store, sourceID string, ids ...string) {
	t.Helper()

	songs := make([]models.Song, len(ids))
	for i, id := range ids {
		songs[i] = models.Song{
			ID:       id,
			Title:    "Song " + id,
			Artist:   "Artist",
			SourceID: sourceID,
			AddedAt:  time.Unix(int64(1700000000+i), 0).UTC(),
		}
	}
	if _, err := st.UpsertSongs(songs); err != nil {
		t.Fatalf("failed to add songs: %v", err)
	}
}

func markAllClassified(t *testing.T, st *store.Store) {
	t.Helper()

	songs, err := st.ListSongs()
	if err != nil {
		t.Fatalf("failed to list songs: %v", err)
	}
	for _, song := range songs {
		if err := st.MarkClassified(song.ID); err != nil {
			t.Fatalf("failed to mark classified: %v", err)
		}
	}
}

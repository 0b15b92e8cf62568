package shared

import (
	"database/sql"
	"errors"
	"testing"
)

func setupMigrationTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// a second pooled connection would see a fresh, empty in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to check table %s: %v", name, err)
	}
	return count > 0
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}

	for i, migration := range migrations {
		if migration.Up == "" || migration.Down == "" {
			t.Errorf("migration %d is missing a direction", migration.Version)
		}
		if i > 0 && migrations[i-1].Version >= migration.Version {
			t.Error("migrations should be sorted by version")
		}
	}
}

func TestRunMigrations(t *testing.T) {
	t.Run("CreatesAllTables", func(t *testing.T) {
		db := setupMigrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"schema_migrations", "sources", "songs", "categories", "playlists", "playlist_songs"} {
			if !tableExists(t, db, table) {
				t.Errorf("expected table %s to exist", table)
			}
		}
	})

	t.Run("IsIdempotent", func(t *testing.T) {
		db := setupMigrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
			t.Fatalf("failed to count applied migrations: %v", err)
		}

		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if applied != len(migrations) {
			t.Errorf("expected %d applied migrations, got %d", len(migrations), applied)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	t.Run("DropsTables", func(t *testing.T) {
		db := setupMigrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if tableExists(t, db, "sources") {
			t.Error("rollback should drop the sources table")
		}
	})

	t.Run("NothingToRollback", func(t *testing.T) {
		db := setupMigrationTestDB(t)

		if _, err := db.Exec("CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY)"); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error with no applied migrations")
		}
	})
}

func TestMapConstraintError(t *testing.T) {
	t.Run("NilPassesThrough", func(t *testing.T) {
		if err := MapConstraintError(nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("OtherErrorsPassThrough", func(t *testing.T) {
		original := errors.New("disk full")
		if err := MapConstraintError(original); err != original {
			t.Errorf("expected original error, got %v", err)
		}
	})

	t.Run("ConstraintFailureIsMapped", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		// songs.source_id references sources
		_, err := db.Exec(
			"INSERT INTO songs (id, title, source_id, added_at) VALUES ('v1', 'Song', 'missing', CURRENT_TIMESTAMP)",
		)
		if err == nil {
			t.Fatal("expected a constraint failure")
		}
		if !errors.Is(MapConstraintError(err), ErrConstraintViolation) {
			t.Errorf("expected ErrConstraintViolation, got %v", MapConstraintError(err))
		}
	})
}

func TestStripSQLComments(t *testing.T) {
	script := `CREATE TABLE t ( -- trailing comment
	id TEXT -- column comment
	-- whole line comment
)`

	got := stripSQLComments(script)
	want := "CREATE TABLE t (\nid TEXT\n)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

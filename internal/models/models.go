package models

import (
	"fmt"
	"time"
)

// SourceKind identifies how a tracked collection is fetched from the remote
// platform.
type SourceKind string

const (
	SourceLiked    SourceKind = "liked"    // the user's implicit liked-items collection
	SourcePlaylist SourceKind = "playlist" // a named remote playlist
)

// CategoryKind is a classification dimension attached to songs.
type CategoryKind string

const (
	KindMood   CategoryKind = "mood"
	KindGenre  CategoryKind = "genre"
	KindEnergy CategoryKind = "energy"
)

// Kinds returns all classification dimensions in a fixed order.
func Kinds() []CategoryKind {
	return []CategoryKind{KindMood, KindGenre, KindEnergy}
}

// ParseCategoryKind validates a user-supplied dimension name. The special
// value "all" selects every dimension.
func ParseCategoryKind(s string) ([]CategoryKind, error) {
	switch CategoryKind(s) {
	case KindMood, KindGenre, KindEnergy:
		return []CategoryKind{CategoryKind(s)}, nil
	case "all", "":
		return Kinds(), nil
	default:
		return nil, fmt.Errorf("unknown category kind %q", s)
	}
}

// Source is a tracked remote collection.
//
// RemoteID is empty for the implicit liked collection; LastSyncedAt is nil
// until the first successful sync.
type Source struct {
	ID           string
	Kind         SourceKind
	Name         string
	RemoteID     string
	LastSyncedAt *time.Time
	CreatedAt    time.Time
	SongCount    int // populated by list queries, not stored
}

// Song is a single ingested track. The ID is the platform-assigned external
// identifier and is globally unique; re-ingestion of an existing ID is a
// no-op.
type Song struct {
	ID         string
	Title      string
	Artist     string // empty when no artist could be determined
	SourceID   string // empty when the owning source was removed
	AddedAt    time.Time
	Classified bool
}

// Category is one classification fact for a song. Rows are append-only; a
// song may carry several values per kind.
type Category struct {
	ID         int64
	SongID     string
	Kind       CategoryKind
	Value      string
	Confidence float64
}

// Playlist is a locally synthesized grouping of songs. Name is the unique
// synthesis key; RemoteID is set once the playlist has been published and is
// never cleared automatically.
type Playlist struct {
	ID        string
	Name      string
	RemoteID  string
	SeedKind  string
	SeedValue string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership joins a playlist to a song.
type Membership struct {
	PlaylistID string
	SongID     string
	AddedAt    time.Time
}

package services

import (
	"context"
	"time"

	"github.com/desertthunder/ytsort/internal/models"
)

// CatalogService defines the remote platform operations the pipeline needs:
// paginated catalog reads and quota-bounded playlist writes.
//
// Implementations map remote failures onto the shared error kinds: quota
// exhaustion to shared.ErrQuotaExceeded, everything else retryable to
// shared.ErrTransient.
type CatalogService interface {
	// ListCollections retrieves the user's remote playlists, paginating
	// transparently until exhausted.
	ListCollections(ctx context.Context) ([]Collection, error)

	// ListCollectionItems retrieves every item of a remote playlist.
	ListCollectionItems(ctx context.Context, collectionID string) ([]CollectionItem, error)

	// ListLikedItems retrieves the user's liked items.
	ListLikedItems(ctx context.Context) ([]CollectionItem, error)

	// CreatePlaylist creates a private remote playlist and returns its id.
	CreatePlaylist(ctx context.Context, name, description string) (string, error)

	// AddPlaylistItem adds one item to a remote playlist.
	AddPlaylistItem(ctx context.Context, remotePlaylistID, externalItemID string) error

	// Name returns the service name (e.g. "YouTube")
	Name() string
}

// Categorizer defines the AI categorization service: batch classification of
// songs and playlist grouping suggestions.
type Categorizer interface {
	// CategorizeBatch classifies the given songs along the requested
	// dimensions. The response maps each input's positional index back to
	// its assignments; entries may be missing for songs the service could
	// not classify.
	CategorizeBatch(ctx context.Context, items []BatchItem, kinds []models.CategoryKind, vocab Vocabulary) ([]BatchAssignment, error)

	// SuggestPlaylists asks for playlist groupings over the distinct
	// category values present in the library.
	SuggestPlaylists(ctx context.Context, vocab Vocabulary) ([]PlaylistSuggestion, error)

	// Name returns the service name (e.g. "OpenAI")
	Name() string
}

// Collection represents a candidate remote collection (a playlist or the
// implicit liked collection).
type Collection struct {
	ID        string
	Title     string
	ItemCount int
}

// CollectionItem represents a single remote item before normalization.
type CollectionItem struct {
	ExternalID  string
	Title       string
	ChannelName string
	AddedAt     time.Time
}

// BatchItem is one song in a categorization request.
type BatchItem struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

// BatchAssignment maps a request item back to its category assignments by
// positional index. Absent fields mean no assignment for that dimension.
type BatchAssignment struct {
	Index  int      `json:"index"`
	Moods  []string `json:"moods,omitempty"`
	Genres []string `json:"genres,omitempty"`
	Energy string   `json:"energy,omitempty"`
}

// Vocabulary carries the allowed (or observed) values per dimension.
type Vocabulary struct {
	Moods    []string `json:"moods"`
	Genres   []string `json:"genres"`
	Energies []string `json:"energies"`
}

// SuggestionFilter is a predicate over category values. A dimension with no
// values is treated as always matching.
type SuggestionFilter struct {
	Moods    []string `json:"moods,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Energies []string `json:"energies,omitempty"`
}

// PlaylistSuggestion is one named grouping proposed by the AI service.
type PlaylistSuggestion struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Filter      SuggestionFilter `json:"filter"`
}

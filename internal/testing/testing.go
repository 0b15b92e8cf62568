// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/services"
)

// MockCatalog is a configurable test double for [services.CatalogService].
// Unset function fields return zero values.
type MockCatalog struct {
	ListCollectionsFn     func(ctx context.Context) ([]services.Collection, error)
	ListCollectionItemsFn func(ctx context.Context, collectionID string) ([]services.CollectionItem, error)
	ListLikedItemsFn      func(ctx context.Context) ([]services.CollectionItem, error)
	CreatePlaylistFn      func(ctx context.Context, name, description string) (string, error)
	AddPlaylistItemFn     func(ctx context.Context, remotePlaylistID, externalItemID string) error
}

func (m *MockCatalog) ListCollections(ctx context.Context) ([]services.Collection, error) {
	if m.ListCollectionsFn == nil {
		return nil, nil
	}
	return m.ListCollectionsFn(ctx)
}

func (m *MockCatalog) ListCollectionItems(ctx context.Context, collectionID string) ([]services.CollectionItem, error) {
	if m.ListCollectionItemsFn == nil {
		return nil, nil
	}
	return m.ListCollectionItemsFn(ctx, collectionID)
}

func (m *MockCatalog) ListLikedItems(ctx context.Context) ([]services.CollectionItem, error) {
	if m.ListLikedItemsFn == nil {
		return nil, nil
	}
	return m.ListLikedItemsFn(ctx)
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	if m.CreatePlaylistFn == nil {
		return "", nil
	}
	return m.CreatePlaylistFn(ctx, name, description)
}

func (m *MockCatalog) AddPlaylistItem(ctx context.Context, remotePlaylistID, externalItemID string) error {
	if m.AddPlaylistItemFn == nil {
		return nil
	}
	return m.AddPlaylistItemFn(ctx, remotePlaylistID, externalItemID)
}

func (m *MockCatalog) Name() string { return "mock-catalog" }

// MockCategorizer is a configurable test double for [services.Categorizer].
type MockCategorizer struct {
	CategorizeBatchFn  func(ctx context.Context, items []services.BatchItem, kinds []models.CategoryKind, vocab services.Vocabulary) ([]services.BatchAssignment, error)
	SuggestPlaylistsFn func(ctx context.Context, vocab services.Vocabulary) ([]services.PlaylistSuggestion, error)
}

func (m *MockCategorizer) CategorizeBatch(ctx context.Context, items []services.BatchItem, kinds []models.CategoryKind, vocab services.Vocabulary) ([]services.BatchAssignment, error) {
	if m.CategorizeBatchFn == nil {
		return nil, nil
	}
	return m.CategorizeBatchFn(ctx, items, kinds, vocab)
}

func (m *MockCategorizer) SuggestPlaylists(ctx context.Context, vocab services.Vocabulary) ([]services.PlaylistSuggestion, error) {
	if m.SuggestPlaylistsFn == nil {
		return nil, nil
	}
	return m.SuggestPlaylistsFn(ctx, vocab)
}

func (m *MockCategorizer) Name() string { return "mock-categorizer" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

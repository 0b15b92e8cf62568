package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/services"
	"github.com/desertthunder/ytsort/internal/shared"
)

// AddSourcesResult reports which candidates became tracked sources and which
// were skipped because their remote id is already tracked.
type AddSourcesResult struct {
	Added   []models.Source
	Skipped []services.Collection
}

// Discover lists the user's remote collections with item counts. Selection of
// which to track happens afterwards via AddSources.
func (e *LibraryEngine) Discover(ctx context.Context, progress chan<- ProgressUpdate) ([]services.Collection, error) {
	e.sendProgress(progress, discoverUpdate(1, 1))

	collections, err := e.catalog.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote collections: %w", err)
	}

	return collections, nil
}

// AddSources upserts the selected candidates as tracked sources. Candidates
// whose remote id is already tracked are reported as skipped, not errors.
func (e *LibraryEngine) AddSources(candidates []services.Collection) (*AddSourcesResult, error) {
	result := &AddSourcesResult{}

	for _, candidate := range candidates {
		if _, err := e.store.FindSourceByRemoteID(candidate.ID); err == nil {
			result.Skipped = append(result.Skipped, candidate)
			continue
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		source := models.Source{
			Kind:     models.SourcePlaylist,
			Name:     candidate.Title,
			RemoteID: candidate.ID,
		}
		if err := e.store.UpsertSource(&source); err != nil {
			return nil, err
		}
		result.Added = append(result.Added, source)
	}

	return result, nil
}

// AddLikedSource tracks the implicit liked-items collection. There is at most
// one; adding it again is reported as skipped.
func (e *LibraryEngine) AddLikedSource() (*AddSourcesResult, error) {
	result := &AddSourcesResult{}

	sources, err := e.store.ListSources()
	if err != nil {
		return nil, err
	}
	for _, existing := range sources {
		if existing.Kind == models.SourceLiked {
			result.Skipped = append(result.Skipped, services.Collection{Title: existing.Name})
			return result, nil
		}
	}

	source := models.Source{
		Kind: models.SourceLiked,
		Name: "Liked videos",
	}
	if err := e.store.UpsertSource(&source); err != nil {
		return nil, err
	}
	result.Added = append(result.Added, source)

	return result, nil
}

// AddByURL extracts a collection identifier from a playlist URL and tracks it.
func (e *LibraryEngine) AddByURL(ctx context.Context, rawURL string) (*AddSourcesResult, error) {
	remoteID, err := ParseCollectionRef(rawURL)
	if err != nil {
		return nil, err
	}

	title := remoteID
	if collections, err := e.catalog.ListCollections(ctx); err == nil {
		for _, c := range collections {
			if c.ID == remoteID {
				title = c.Title
				break
			}
		}
	}

	return e.AddSources([]services.Collection{{ID: remoteID, Title: title}})
}

// RemoveSource deletes a tracked source. Owned songs keep their rows but
// lose their source reference.
func (e *LibraryEngine) RemoveSource(id string) error {
	return e.store.DeleteSource(id)
}

// ParseCollectionRef extracts a collection identifier from a URL or returns
// the input unchanged when it already looks like a bare id. Recognized forms:
//
//	https://www.youtube.com/playlist?list=PL123
//	https://music.youtube.com/browse/VLPL123
//	PL123
func ParseCollectionRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty collection reference", shared.ErrInvalidReference)
	}

	if !strings.Contains(ref, "/") && !strings.Contains(ref, "?") {
		return ref, nil
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidReference, ref)
	}

	if list := parsed.Query().Get("list"); list != "" {
		return list, nil
	}

	if id, ok := strings.CutPrefix(strings.Trim(parsed.Path, "/"), "browse/VL"); ok && id != "" {
		return id, nil
	}

	return "", fmt.Errorf("%w: no collection id in %q", shared.ErrInvalidReference, ref)
}

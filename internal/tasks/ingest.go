package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/services"
)

// topicSuffix marks official artist channels on the platform and is never
// part of the artist's actual name.
const topicSuffix = " - Topic"

// titleSeparators in priority order: the first one found splits a raw title
// into artist and track title. Dashes must be space-padded so hyphenated
// words survive.
var titleSeparators = []string{" - ", " – ", " — ", ":", "|"}

// nonMusicPattern matches spoken-word and commentary content that should not
// enter the library. Applied to the combined title + channel text.
var nonMusicPattern = regexp.MustCompile(`(?i)\b(podcast|interview|talk\s*show|documentary|news|vlog|review|reaction|tutorial|lesson|course)\b`)

// SyncResult reports one source sync.
type SyncResult struct {
	SourceID   string
	SourceName string
	Fetched    int // items returned by the remote platform
	Filtered   int // items rejected as non-music
	Inserted   int // new songs stored
	Known      int // songs already present (idempotent re-sync)
}

// Sync fetches all items of one source, normalizes and filters them, and
// upserts the survivors. Re-running against unchanged upstream data inserts
// nothing and only refreshes the sync timestamp.
func (e *LibraryEngine) Sync(ctx context.Context, sourceID string, progress chan<- ProgressUpdate) (*SyncResult, error) {
	source, err := e.store.GetSource(sourceID)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchItemsUpdate(source.Name))

	var items []services.CollectionItem
	switch source.Kind {
	case models.SourceLiked:
		items, err = e.catalog.ListLikedItems(ctx)
	default:
		items, err = e.catalog.ListCollectionItems(ctx, source.RemoteID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items for source %s: %w", source.Name, err)
	}

	result := &SyncResult{
		SourceID:   source.ID,
		SourceName: source.Name,
		Fetched:    len(items),
	}

	var songs []models.Song
	for _, item := range items {
		if item.ExternalID == "" {
			continue
		}
		if IsNonMusic(item.Title, item.ChannelName) {
			result.Filtered++
			continue
		}

		artist, title := SplitArtistTitle(item.Title, item.ChannelName)
		songs = append(songs, models.Song{
			ID:       item.ExternalID,
			Title:    title,
			Artist:   artist,
			SourceID: source.ID,
			AddedAt:  item.AddedAt,
		})
	}

	e.sendProgress(progress, upsertItemsUpdate(len(songs), len(items)))

	inserted, err := e.store.UpsertSongs(songs)
	if err != nil {
		return nil, err
	}
	result.Inserted = inserted
	result.Known = len(songs) - inserted

	if err := e.store.TouchSourceSyncTime(source.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	return result, nil
}

// SyncAll syncs every tracked source in creation order.
func (e *LibraryEngine) SyncAll(ctx context.Context, progress chan<- ProgressUpdate) ([]SyncResult, error) {
	sources, err := e.store.ListSources()
	if err != nil {
		return nil, err
	}

	var results []SyncResult
	for _, source := range sources {
		result, err := e.Sync(ctx, source.ID, progress)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}

	return results, nil
}

// SplitArtistTitle extracts (artist, title) from a raw item title. The first
// separator found in priority order splits the string; without one the
// channel name stands in as the artist. The official-artist-channel suffix is
// always stripped from the artist.
func SplitArtistTitle(rawTitle, channelName string) (artist, title string) {
	title = strings.TrimSpace(rawTitle)

	for _, sep := range titleSeparators {
		if before, after, found := strings.Cut(title, sep); found {
			artist = strings.TrimSpace(before)
			title = strings.TrimSpace(after)
			break
		}
	}

	if artist == "" {
		artist = strings.TrimSpace(channelName)
	}
	artist = strings.TrimSpace(strings.TrimSuffix(artist, topicSuffix))

	if title == "" {
		title = strings.TrimSpace(rawTitle)
	}

	return artist, title
}

// IsNonMusic reports whether an item looks like spoken-word or commentary
// content based on its title and channel.
func IsNonMusic(title, channelName string) bool {
	return nonMusicPattern.MatchString(title + " " + channelName)
}

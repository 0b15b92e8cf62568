package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	DiscoverCollections Phase = iota
	FetchItems
	FilterItems
	UpsertItems
	ClassifyBatches
	FetchSuggestions
	BuildPlaylists
	CreateRemote
	AddMembers
)

func (p Phase) String() string {
	switch p {
	case DiscoverCollections:
		return "discover_collections"
	case FetchItems:
		return "fetch_items"
	case FilterItems:
		return "filter_items"
	case UpsertItems:
		return "upsert_items"
	case ClassifyBatches:
		return "classify_batches"
	case FetchSuggestions:
		return "fetch_suggestions"
	case BuildPlaylists:
		return "build_playlists"
	case CreateRemote:
		return "create_remote"
	case AddMembers:
		return "add_members"
	default:
		return ""
	}
}

func discoverUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiscoverCollections,
		Step:    step,
		Total:   total,
		Message: "Listing remote collections...",
	}
}

func fetchItemsUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching items for %s...", name),
	}
}

func upsertItemsUpdate(kept, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpsertItems,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Storing %d of %d fetched items...", kept, fetched),
	}
}

func classifyBatchUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyBatches,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Classifying batch of %d songs...", step, total, size),
	}
}

func classifyBatchFailedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyBatches,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ batch skipped: %v", step, total, err),
	}
}

func suggestionsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSuggestions,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Received %d playlist suggestions", count),
		Data:    count,
	}
}

func buildPlaylistUpdate(step, total int, name string, members int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d songs)", step, total, name, members),
	}
}

func createRemoteUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateRemote,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating remote playlist: %s", step, total, name),
	}
}

func addMembersUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddMembers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding songs to %s...", step, total, name),
	}
}

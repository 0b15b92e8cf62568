package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/ytsort/internal/shared"
)

// PublishResult reports one publish run.
type PublishResult struct {
	Candidates      int  // local playlists eligible for publishing
	Published       int  // remote playlists fully processed
	FailedPlaylists int  // playlists whose remote creation failed
	Added           int  // member adds that succeeded
	FailedAdds      int  // member adds skipped on non-quota failures
	Halted          bool // run stopped early on quota exhaustion
}

// Publish pushes every local playlist that lacks a remote identifier and has
// at least one member.
//
// The remote playlist id is persisted before any member is added, so a crash
// or quota halt mid-publish never causes a duplicate remote playlist.
// Quota exhaustion halts the run immediately; a non-quota failure on a single
// member is counted and the next member is tried. Playlists that already
// carry a remote id are left untouched.
func (e *LibraryEngine) Publish(ctx context.Context, progress chan<- ProgressUpdate) (*PublishResult, error) {
	playlists, err := e.store.ListPlaylists()
	if err != nil {
		return nil, err
	}

	result := &PublishResult{}
	first := true

	for i, playlist := range playlists {
		if playlist.RemoteID != "" {
			continue
		}

		members, err := e.store.ListMembers(playlist.ID)
		if err != nil {
			return result, err
		}
		if len(members) == 0 {
			continue
		}
		result.Candidates++

		if !first {
			// respects the catalog-mutation quota's per-second burst limit
			if err := e.publishLimiter.Wait(ctx); err != nil {
				return result, err
			}
		}
		first = false

		e.sendProgress(progress, createRemoteUpdate(i+1, len(playlists), playlist.Name))

		description := fmt.Sprintf("Synthesized from %s: %s", playlist.SeedKind, playlist.SeedValue)
		if playlist.SeedKind == "" {
			description = "Synthesized playlist"
		}

		remoteID, err := e.catalog.CreatePlaylist(ctx, playlist.Name, description)
		if err != nil {
			if errors.Is(err, shared.ErrQuotaExceeded) {
				result.Halted = true
				return result, err
			}
			result.FailedPlaylists++
			continue
		}

		// persisted before any member add so a rerun never recreates the
		// remote playlist
		if err := e.store.SetPlaylistRemoteID(playlist.ID, remoteID); err != nil {
			return result, err
		}

		e.sendProgress(progress, addMembersUpdate(i+1, len(playlists), playlist.Name))

		for _, member := range members {
			if err := e.catalog.AddPlaylistItem(ctx, remoteID, member.ID); err != nil {
				if errors.Is(err, shared.ErrQuotaExceeded) {
					result.Halted = true
					return result, err
				}
				result.FailedAdds++
				continue
			}
			result.Added++
		}

		result.Published++
	}

	return result, nil
}

// Unpublish clears a playlist's remote identifier so a later publish run
// recreates it remotely. This is deliberately explicit to avoid uncontrolled
// quota spend.
func (e *LibraryEngine) Unpublish(name string) error {
	playlist, err := e.store.FindPlaylistByName(name)
	if err != nil {
		return err
	}
	if playlist.RemoteID == "" {
		return fmt.Errorf("playlist %q has no remote id to clear", name)
	}
	return e.store.ClearPlaylistRemoteID(playlist.ID)
}

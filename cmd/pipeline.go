package main

import (
	"context"
	"errors"
	"strings"

	"github.com/desertthunder/ytsort/internal/shared"
	"github.com/desertthunder/ytsort/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync ingests one source (by id) or every tracked source.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	sourceID := strings.TrimSpace(cmd.StringArg("source"))

	var results []tasks.SyncResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		if sourceID != "" {
			result, err := engine.Sync(ctx, sourceID, progress)
			if result != nil {
				results = append(results, *result)
			}
			return err
		}

		all, err := engine.SyncAll(ctx, progress)
		results = all
		return err
	})

	for _, result := range results {
		r.writePlainln("✓ %s: %d fetched, %d filtered out, %d new, %d already known",
			result.SourceName, result.Fetched, result.Filtered, result.Inserted, result.Known)
	}

	return err
}

// Classify runs AI categorization over all unclassified songs.
func (r *Runner) Classify(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	kind := cmd.String("type")

	var result *tasks.ClassifyResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = engine.Classify(ctx, kind, progress)
		return runErr
	})

	if result != nil {
		r.writePlainln("Classified %d/%d songs (%d categories) across %d batches",
			result.Processed, result.Total, result.Categories, result.Batches)
		if result.Failed > 0 {
			r.writePlainln("✗ %d songs in %d failed batches left for retry",
				result.Failed, result.FailedBatches)
		}
	}

	if errors.Is(err, shared.ErrQuotaExceeded) {
		r.logger.Warn("AI quota exhausted, aborting; progress so far is kept")
	}

	return err
}

// Synthesize builds playlists from the classified library.
func (r *Runner) Synthesize(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	var result *tasks.SynthesizeResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = engine.Synthesize(ctx, progress)
		return runErr
	})

	if result != nil {
		r.writePlainln("Synthesized %d suggestions: %d new playlists, %d refreshed, %d empty, %d memberships",
			result.Suggestions, result.Created, result.Updated, result.Empty, result.Memberships)
	}

	return err
}

// Publish pushes unpublished playlists to the remote platform.
func (r *Runner) Publish(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	var result *tasks.PublishResult
	err = r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = engine.Publish(ctx, progress)
		return runErr
	})

	if result != nil {
		r.writePlainln("Published %d/%d playlists, %d songs added, %d adds failed",
			result.Published, result.Candidates, result.Added, result.FailedAdds)
		if result.Halted {
			r.writePlainln("✗ Halted on quota exhaustion; rerun publish once the quota resets")
		}
	}

	return err
}

// Unpublish clears a playlist's remote id so the next publish recreates it.
func (r *Runner) Unpublish(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.StringArg("name"))
	if err := engine.Unpublish(name); err != nil {
		return err
	}

	return r.writePlainln("✓ Cleared remote id for %q", name)
}

// Playlists lists synthesized playlists and their publication state.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureEngine(); err != nil {
		return err
	}

	playlists, err := r.store.ListPlaylists()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlainln("No playlists yet. Run `ytsort synthesize`.")
	}

	r.writePlainln("Playlists (%d):", len(playlists))
	for _, playlist := range playlists {
		members, err := r.store.ListMembers(playlist.ID)
		if err != nil {
			return err
		}

		state := "unpublished"
		if playlist.RemoteID != "" {
			state = "remote " + playlist.RemoteID
		}
		r.writePlainln("  %s — %d songs (%s)", playlist.Name, len(members), state)
	}

	return nil
}

package main

import (
	"context"
	"strings"

	"github.com/desertthunder/ytsort/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Discover lists the user's remote collections so they can pick which to track.
func (r *Runner) Discover(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	collections, err := engine.Discover(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(collections, cmd.Bool("pretty"))
	}

	r.writePlainln("Remote collections (%d):", len(collections))
	r.writePlainln("  %-36s %6s  %s", "ID", "ITEMS", "TITLE")
	for _, collection := range collections {
		r.writePlainln("  %-36s %6d  %s", collection.ID, collection.ItemCount, collection.Title)
	}
	r.writePlainln("")
	r.writePlainln("Track one with: ytsort sources add <id-or-url>, or ytsort sources add liked")

	return nil
}

// Add tracks a remote collection by id/URL, or the liked collection via the
// special ref "liked".
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimSpace(cmd.StringArg("ref"))

	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	if strings.EqualFold(ref, "liked") {
		result, err := engine.AddLikedSource()
		if err != nil {
			return err
		}
		return r.reportAdd(result)
	}

	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	result, err := engine.AddByURL(ctx, ref)
	if err != nil {
		return err
	}
	return r.reportAdd(result)
}

// Remove stops tracking a source. Its songs stay in the library.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))

	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	if err := engine.RemoveSource(id); err != nil {
		return err
	}

	r.logger.Info("source removed", "id", id)
	return r.writePlainln("✓ Removed source %s", id)
}

// Sources lists tracked sources with song counts and sync times.
func (r *Runner) Sources(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureEngine(); err != nil {
		return err
	}

	sources, err := r.store.ListSources()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sources, cmd.Bool("pretty"))
	}

	if len(sources) == 0 {
		return r.writePlainln("No tracked sources. Run `ytsort sources discover` to find some.")
	}

	r.writePlainln("Tracked sources (%d):", len(sources))
	for _, source := range sources {
		synced := "never synced"
		if source.LastSyncedAt != nil {
			synced = "synced " + source.LastSyncedAt.Format("2006-01-02 15:04")
		}
		r.writePlainln("  %s  [%s] %s — %d songs, %s", source.ID, source.Kind, source.Name, source.SongCount, synced)
	}

	return nil
}

func (r *Runner) reportAdd(result *tasks.AddSourcesResult) error {
	for _, source := range result.Added {
		r.writePlainln("✓ Tracking %s (%s)", source.Name, source.ID)
	}
	for _, candidate := range result.Skipped {
		r.writePlainln("- Already tracked: %s", candidate.Title)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ytsort/internal/server"
	"github.com/desertthunder/ytsort/internal/shared"
	"github.com/urfave/cli/v3"
)

const authTimeout = 2 * time.Minute

// SetupDatabase creates the database file and applies pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database ready", "path", r.config.Database.Path)
	return r.writePlainln("✓ Database ready at %s", r.config.Database.Path)
}

// SetupConfig writes a starter config file for the user to fill in.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlainln("✓ Wrote %s", path)
	return r.writePlainln("Fill in [credentials.youtube] and set OPENAI_API_KEY in your environment.")
}

// Reset clears derived classification state, or only playlists with --playlists.
// Tracked sources are kept either way.
func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureEngine(); err != nil {
		return err
	}

	if cmd.Bool("playlists") {
		if err := r.store.ClearPlaylists(); err != nil {
			return err
		}
		return r.writePlainln("✓ Cleared playlists and memberships")
	}

	if err := r.store.ResetClassificationState(); err != nil {
		return err
	}
	return r.writePlainln("✓ Cleared songs, categories and playlists. Sources are kept; run `ytsort sync` to refill.")
}

// AuthLogin runs the OAuth2 authorization code flow against a loopback server.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.youtube == nil {
		return fmt.Errorf("%w: configure [credentials.youtube] in config.toml", shared.ErrMissingCredentials)
	}

	state := shared.GenerateID()
	callback, err := server.NewCallbackServer(r.config.Credentials.YouTube.RedirectURI, state)
	if err != nil {
		return err
	}

	if err := callback.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		callback.Shutdown(shutdownCtx)
	}()

	r.writePlainln("Open this URL in your browser to authorize:")
	r.writePlainln("")
	r.writePlainln("  %s", r.youtube.GetAuthURL(state))
	r.writePlainln("")
	r.writePlainln("Waiting for the callback...")

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	code, err := callback.Wait(waitCtx)
	if err != nil {
		return err
	}

	if err := r.youtube.Exchange(ctx, code); err != nil {
		return err
	}

	r.logger.Info("authorized", "service", r.youtube.Name())
	return r.writePlainln("✓ Authorized. Token saved to %s", r.config.Credentials.YouTube.TokenPath)
}

// AuthStatus reports whether a usable token is on disk.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.youtube == nil {
		return fmt.Errorf("%w: configure [credentials.youtube] in config.toml", shared.ErrMissingCredentials)
	}

	ok, err := r.youtube.LoadCredential(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlainln("Not authorized. Run `ytsort auth login`.")
	}

	token := r.youtube.Token()
	if token.Expiry.IsZero() {
		return r.writePlainln("✓ Authorized")
	}
	if token.Expiry.Before(time.Now()) {
		return r.writePlainln("✓ Token on disk but expired at %s; it will refresh on next use", token.Expiry.Format(time.RFC3339))
	}
	return r.writePlainln("✓ Authorized, token valid until %s", token.Expiry.Format(time.RFC3339))
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsort/internal/services"
	"github.com/desertthunder/ytsort/internal/shared"
	"github.com/desertthunder/ytsort/internal/store"
	"github.com/desertthunder/ytsort/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	youtube *services.YouTubeService // nil until credentials are configured
	catalog services.CatalogService
	ai      services.Categorizer
	logger  *log.Logger
	output  io.Writer

	db     *sql.DB
	store  *store.Store
	engine *tasks.LibraryEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	YouTube *services.YouTubeService
	Catalog services.CatalogService
	AI      services.Categorizer
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Catalog == nil && opts.YouTube != nil {
		opts.Catalog = opts.YouTube
	}

	return &Runner{
		config:  opts.Config,
		youtube: opts.YouTube,
		catalog: opts.Catalog,
		ai:      opts.AI,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// ensureEngine lazily opens the database and builds the pipeline engine.
func (r *Runner) ensureEngine() (*tasks.LibraryEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	db, err := r.openDatabase()
	if err != nil {
		return nil, err
	}

	r.store = store.New(db)

	pipeline := r.config.Pipeline
	r.engine = tasks.NewLibraryEngine(tasks.EngineOpts{
		Store:        r.store,
		Catalog:      r.catalog,
		AI:           r.ai,
		BatchSize:    pipeline.BatchSize,
		BatchDelay:   millis(pipeline.BatchDelayMS),
		PublishDelay: millis(pipeline.PublishDelayMS),
	})

	return r.engine, nil
}

func (r *Runner) openDatabase() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	dbConfig := r.config.Database
	path := dbConfig.Path
	if path == "" {
		path = "ytsort.db"
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, dbConfig.MaxOpenConns, dbConfig.MaxIdleConns)

	r.db = db
	return db, nil
}

// requireCatalog fails early when no remote credentials are configured.
func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure [credentials.youtube] in config.toml", shared.ErrMissingCredentials)
	}
	return nil
}

// requireAuth loads the persisted token before a command that talks to the
// remote platform.
func (r *Runner) requireAuth(ctx context.Context) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}
	if r.youtube == nil {
		return nil // injected catalog (tests) carries its own auth
	}

	ok, err := r.youtube.LoadCredential(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: run `ytsort auth login` first", shared.ErrUnauthenticated)
	}
	return nil
}

// runWithProgress drains progress updates to the terminal while fn executes.
func (r *Runner) runWithProgress(fn func(chan<- tasks.ProgressUpdate) error) error {
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	err := fn(progress)
	close(progress)
	<-done
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// package tasks implements the library organization pipeline.
//
// The core abstraction is LibraryEngine, which runs the four stages
// (discover, ingest, classify, synthesize/publish) strictly sequentially
// against a shared Store. Stages emit progress updates via channels for
// non-blocking status reporting to the CLI layer, and report processed vs
// failed counts rather than silently dropping failures.
package tasks

import (
	"time"

	"github.com/desertthunder/ytsort/internal/services"
	"github.com/desertthunder/ytsort/internal/store"
	"golang.org/x/time/rate"
)

const (
	defaultBatchSize    = 15
	defaultBatchDelay   = 1500 * time.Millisecond
	defaultPublishDelay = time.Second
)

// LibraryEngine orchestrates the pipeline stages. All stages share one Store
// handle; remote calls never overlap within a stage.
type LibraryEngine struct {
	store   *store.Store
	catalog services.CatalogService
	ai      services.Categorizer

	batchSize      int
	batchLimiter   *rate.Limiter
	publishLimiter *rate.Limiter
}

// EngineOpts contains configuration options for creating a LibraryEngine.
type EngineOpts struct {
	Store        *store.Store
	Catalog      services.CatalogService
	AI           services.Categorizer
	BatchSize    int           // songs per categorization call
	BatchDelay   time.Duration // pause between categorization calls
	PublishDelay time.Duration // pause between playlist publishes
}

// NewLibraryEngine creates a LibraryEngine with the provided dependencies.
func NewLibraryEngine(opts EngineOpts) *LibraryEngine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = defaultBatchDelay
	}
	if opts.PublishDelay <= 0 {
		opts.PublishDelay = defaultPublishDelay
	}

	return &LibraryEngine{
		store:          opts.Store,
		catalog:        opts.Catalog,
		ai:             opts.AI,
		batchSize:      opts.BatchSize,
		batchLimiter:   rate.NewLimiter(rate.Every(opts.BatchDelay), 1),
		publishLimiter: rate.NewLimiter(rate.Every(opts.PublishDelay), 1),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls a stage.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Package memstore implements the versioned long-term memory store.
//
// Memories are rows in an embedded vector database. The table is an
// append-only log: updating a memory means appending a new physical row
// under the same logical ID, and reads collapse the log so only the
// most recently inserted version of each ID is ever returned.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/keeperhq/memorybank/internal/errortypes"
	"github.com/keeperhq/memorybank/internal/telemetry"
	"github.com/keeperhq/memorybank/internal/vector"
)

const (
	// DefaultCollection is the fixed name of the physical table.
	DefaultCollection = "memory_items"

	// DefaultRelativePath is the storage directory relative to the
	// process home when no path is configured.
	DefaultRelativePath = ".memorybank/longterm"

	// sentinelID identifies the dimension-probe row written when the
	// collection is created. The row is intentionally left in place: the
	// engine infers vector dimensionality from stored rows, and the
	// sentinel guarantees there is always one row to infer from. It is
	// filtered out of every search result.
	sentinelID = "__dimension_probe__"

	sentinelText = "memorybank dimension probe"

	// probeText is the fixed string embedded once at collection creation
	// to discover the embedding dimension.
	probeText = "dimension probe"
)

// ErrEmbeddingUnavailable is returned when the embedding collaborator
// yields no vector during first-time schema creation. Without a known
// dimension the collection cannot be created, so this is fatal to
// initialization.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// Options configures a Store.
type Options struct {
	// Path is the storage directory. Parent directories are created as
	// needed.
	Path string

	// Collection overrides DefaultCollection.
	Collection string

	// Compress enables gzip compression of persisted rows.
	Compress bool

	// Embedder is consulted exactly once, at collection creation, to
	// establish the embedding dimension. It is never used to embed
	// caller data; callers supply vectors on their records.
	Embedder vector.Embedder

	Logger  *slog.Logger
	Metrics *telemetry.Collector
}

// Store owns the connection and table handle for the long-term memory
// log. All state the original kept process-wide lives here, behind a
// mutex that also serializes initialization so concurrent first calls
// collapse into a single creation attempt.
type Store struct {
	path       string
	collection string
	compress   bool
	embedder   vector.Embedder
	log        *slog.Logger
	metrics    *telemetry.Collector

	mu    sync.Mutex
	db    *chromem.DB
	col   *chromem.Collection
	dim   int // 0 = unknown, vector length not validated
	ready bool
}

// New creates a Store. No I/O happens until the first operation.
func New(opts Options) *Store {
	path := opts.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		path = home + string(os.PathSeparator) + DefaultRelativePath
	}
	collection := opts.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		path:       path,
		collection: collection,
		compress:   opts.Compress,
		embedder:   opts.Embedder,
		log:        log,
		metrics:    opts.Metrics,
	}
}

// EnsureReady opens the database and collection, creating them on first
// use. It is idempotent and safe to call before every operation; when
// the store is already ready it returns without touching the backing
// store. On failure all partial state is rolled back so a later call
// retries from scratch.
func (s *Store) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureReadyLocked(ctx)
}

func (s *Store) ensureReadyLocked(ctx context.Context) error {
	if s.ready {
		return nil
	}

	s.metrics.Count(telemetry.MetricStoreInitAttempts, 1)
	if err := s.openLocked(ctx); err != nil {
		s.db = nil
		s.col = nil
		s.dim = 0
		s.ready = false
		s.metrics.Count(telemetry.MetricStoreInitFailures, 1)
		return err
	}

	s.ready = true
	return nil
}

func (s *Store) openLocked(ctx context.Context) error {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return errortypes.DatabaseError(err, "failed to create storage directory").
			WithField("path", s.path)
	}

	db, err := chromem.NewPersistentDB(s.path, s.compress)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open vector database").
			WithField("path", s.path)
	}
	s.db = db

	if col := db.GetCollection(s.collection, nil); col != nil {
		s.col = col
		s.dim = s.discoverDimension(ctx, col)
		s.metrics.Gauge(telemetry.MetricEmbedderDimensions, float64(s.dim))
		s.log.Debug("opened existing memory collection",
			"collection", s.collection, "rows", col.Count(), "dimension", s.dim)
		return nil
	}

	// First run: the engine infers the row shape from data, so the
	// collection is created together with one probe row whose vector
	// fixes the embedding dimension for the lifetime of the table.
	if s.embedder == nil {
		return errortypes.EmbeddingError(ErrEmbeddingUnavailable, "no embedder configured for dimension probe")
	}
	probe, err := s.embedder.CreateEmbedding(ctx, probeText)
	if err != nil {
		return errortypes.EmbeddingError(fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err),
			"dimension probe failed")
	}
	if len(probe) == 0 {
		return errortypes.EmbeddingError(ErrEmbeddingUnavailable,
			"dimension probe returned an empty vector")
	}

	col, err := db.CreateCollection(s.collection, nil, nil)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to create memory collection").
			WithField("collection", s.collection)
	}

	sentinel := chromem.Document{
		ID:        sentinelID,
		Content:   sentinelText,
		Embedding: probe,
		Metadata: map[string]string{
			metaKeyID:    sentinelID,
			metaKeyStage: string(stageSentinel),
			metaKeyTime:  time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	if err := col.AddDocument(ctx, sentinel); err != nil {
		return errortypes.DatabaseError(err, "failed to write dimension probe row").
			WithField("collection", s.collection)
	}

	s.col = col
	s.dim = len(probe)
	s.metrics.Gauge(telemetry.MetricEmbedderDimensions, float64(s.dim))
	s.log.Info("created memory collection",
		"collection", s.collection, "dimension", s.dim, "path", s.path)
	return nil
}

// discoverDimension reads the sentinel row back to learn the dimension
// of an existing collection. Collections written before the sentinel
// existed report 0, which disables client-side length validation.
func (s *Store) discoverDimension(ctx context.Context, col *chromem.Collection) int {
	doc, err := col.GetByID(ctx, sentinelID)
	if err != nil {
		return 0
	}
	return len(doc.Embedding)
}

// Dimension returns the established embedding dimension, or 0 when it
// is not (yet) known.
func (s *Store) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dim
}

// Add appends the given memory items to the log. Every item becomes a
// new physical row stamped with the current time; existing rows are
// never updated or deleted, so repeated IDs accumulate versions that
// reads reconcile later.
//
// The returned error reports initialization failure only. Per-item
// append failures are collected in the WriteResult so callers choose
// whether to surface or ignore them.
func (s *Store) Add(ctx context.Context, items []MemoryRecord) (WriteResult, error) {
	var res WriteResult

	if err := s.EnsureReady(ctx); err != nil {
		return res, err
	}

	s.mu.Lock()
	col, dim := s.col, s.dim
	s.mu.Unlock()

	if col == nil {
		s.log.Warn("memory collection unavailable, dropping items", "count", len(items))
		return res, nil
	}
	if len(items) == 0 {
		s.log.Debug("no memory items to append")
		return res, nil
	}

	start := time.Now()
	for _, item := range items {
		stored := StoredRecord{MemoryRecord: item, InsertTimestamp: time.Now()}
		if stored.Timestamp.IsZero() {
			stored.Timestamp = stored.InsertTimestamp
		}

		if stored.ID == "" {
			res.Failed = append(res.Failed, WriteFailure{
				Err: errortypes.ValidationError(errors.New("empty memory ID"), "cannot append memory item"),
			})
			continue
		}
		if dim > 0 && len(stored.Vector) != dim {
			res.Failed = append(res.Failed, WriteFailure{
				ID: stored.ID,
				Err: errortypes.ValidationError(
					fmt.Errorf("vector length %d does not match collection dimension %d", len(stored.Vector), dim),
					"cannot append memory item"),
			})
			continue
		}

		if err := col.AddDocument(ctx, documentFromRecord(stored)); err != nil {
			res.Failed = append(res.Failed, WriteFailure{
				ID:  stored.ID,
				Err: errortypes.DatabaseError(err, "failed to append memory item").WithField("memory_id", stored.ID),
			})
			s.metrics.Count(telemetry.MetricStoreAppendErrors, 1)
			continue
		}
		res.Appended++
		s.metrics.Count(telemetry.MetricStoreAppends, 1)
	}
	s.metrics.Time(telemetry.MetricStoreAppendLatency, time.Since(start))

	if !res.Ok() {
		for _, f := range res.Failed {
			errortypes.LogError(s.log, f.Err)
		}
		s.log.Warn("some memory items were not appended",
			"appended", res.Appended, "failed", len(res.Failed))
	} else {
		s.log.Debug("appended memory items", "count", res.Appended)
	}
	return res, nil
}

// Search returns the memories most similar to the query embedding,
// collapsed to one row per logical ID and ranked by descending score.
//
// The candidate window is limited to topN BEFORE de-duplication, so the
// result can hold fewer than topN items when versions of the same ID
// land in the window together. That is accepted: the contract is never
// returning a superseded version, not filling the requested count.
//
// Search never fails its caller: a missing handle, an empty query
// vector, or an engine error degrades to an empty result with a log
// line.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, topN int, filter map[string]string) []SearchResult {
	if len(queryEmbedding) == 0 {
		s.log.Debug("empty query embedding, returning no results")
		return nil
	}
	if topN <= 0 {
		return nil
	}

	if err := s.EnsureReady(ctx); err != nil {
		errortypes.LogError(s.log, err)
		s.metrics.Count(telemetry.MetricStoreSearchErrors, 1)
		return nil
	}

	s.mu.Lock()
	col := s.col
	s.mu.Unlock()
	if col == nil {
		return nil
	}

	start := time.Now()
	results, err := s.query(ctx, col, queryEmbedding, topN, filter)
	if err != nil {
		errortypes.LogError(s.log, errortypes.DatabaseError(err, "memory search failed").
			WithField("top_n", topN))
		s.metrics.Count(telemetry.MetricStoreSearchErrors, 1)
		return nil
	}

	candidates := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.ID == sentinelID || r.Metadata[metaKeyID] == sentinelID {
			continue
		}
		candidates = append(candidates, recordFromResult(r))
	}

	deduped := collapseLatest(candidates)
	if dropped := len(candidates) - len(deduped); dropped > 0 {
		s.metrics.Count(telemetry.MetricStoreDedupDropped, int64(dropped))
	}
	out := rankByScore(deduped, topN)

	s.metrics.Count(telemetry.MetricStoreSearches, 1)
	s.metrics.Time(telemetry.MetricStoreSearchLatency, time.Since(start))
	s.log.Debug("memory search complete",
		"candidates", len(candidates), "returned", len(out), "top_n", topN)
	return out
}

// query runs the similarity query, shrinking the window when the engine
// rejects a window larger than the number of matching rows.
func (s *Store) query(ctx context.Context, col *chromem.Collection, queryEmbedding []float32, topN int, filter map[string]string) ([]chromem.Result, error) {
	n := topN
	if count := col.Count(); count < n {
		n = count
	}

	for ; n >= 1; n-- {
		results, err := col.QueryEmbedding(ctx, queryEmbedding, n, filter, nil)
		if err == nil {
			return results, nil
		}
		if !isWindowTooLarge(err) {
			return nil, err
		}
	}
	return nil, nil
}

// isWindowTooLarge matches the engine error raised when nResults
// exceeds the number of rows passing the filter.
func isWindowTooLarge(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}

// Close tears down the connection and table handle. The next operation
// would re-initialize from scratch.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = nil
	s.col = nil
	s.dim = 0
	s.ready = false
	return nil
}

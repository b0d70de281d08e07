// Package memorybank wires the long-term memory store, the session
// context store, and the MCP tool server into one embeddable service.
package memorybank

import (
	"context"
	"log/slog"
	"time"

	"github.com/keeperhq/memorybank/internal/config"
	"github.com/keeperhq/memorybank/internal/contextstore"
	"github.com/keeperhq/memorybank/internal/errortypes"
	"github.com/keeperhq/memorybank/internal/memstore"
	"github.com/keeperhq/memorybank/internal/server"
	"github.com/keeperhq/memorybank/internal/summarizer"
	"github.com/keeperhq/memorybank/internal/telemetry"
	"github.com/keeperhq/memorybank/internal/tools"
	"github.com/keeperhq/memorybank/internal/util"
	"github.com/keeperhq/memorybank/internal/vector"
)

// Config represents the configuration for the MemoryBank service.
type Config = config.Config

// Components holds the constructed service collaborators.
type Components struct {
	Memories   *memstore.Store
	Store      contextstore.ContextStore
	Summarizer summarizer.Summarizer
	Embedder   vector.Embedder
	Metrics    *telemetry.Collector
}

// Server represents the MemoryBank service.
type Server struct {
	config     *config.Config
	components Components
	toolServer server.MemoryToolServer
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new MemoryBank Server with the given options.
// If opts.Config is provided, it is used directly. Otherwise, if
// opts.ConfigPath is provided, configuration is loaded from that path.
// If neither is provided, DefaultConfig() is used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	components, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}

	logger.Info("Initializing memory tool server component")
	mcpServer := server.NewMemoryToolServer(components.Memories, components.Store, components.Summarizer, components.Embedder)
	if err := mcpServer.Initialize(); err != nil {
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP memory tool server component")
	}

	logger.Info("MemoryBank server successfully initialized")
	return &Server{
		config:     cfg,
		components: components,
		toolServer: mcpServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the MemoryBank service.
func DefaultConfig() *Config {
	cfg := config.NewConfig()
	cfg.LongTerm.Collection = memstore.DefaultCollection
	cfg.Embedder.Dimensions = vector.DefaultEmbeddingDimensions
	return cfg
}

// CreateComponents creates and initializes the collaborators of the
// MemoryBank service without creating a server instance. This is
// useful for embedders that need direct access to the stores.
func CreateComponents(cfg *Config, logger *slog.Logger) (Components, error) {
	var components Components
	if logger == nil {
		logger = slog.Default()
	}

	metrics := telemetry.NewCollector()

	// Embedder first: the long-term store probes it on first use.
	logger.Info("Initializing embedder", "provider", cfg.Embedder.Provider, "dimensions", cfg.Embedder.Dimensions)
	emb, err := buildEmbedder(cfg, logger, metrics)
	if err != nil {
		return components, err
	}

	// Long-term memory store. Opens lazily on the first operation.
	memories := memstore.New(memstore.Options{
		Path:       cfg.LongTerm.Path,
		Collection: cfg.LongTerm.Collection,
		Compress:   cfg.LongTerm.Compress,
		Embedder:   emb,
		Logger:     logger,
		Metrics:    metrics,
	})

	// Session context store.
	logger.Info("Initializing SQLite context store", "path", cfg.Store.SQLitePath)
	store := contextstore.NewSQLiteContextStore()
	if err := store.Initialize(cfg.Store.SQLitePath); err != nil {
		return components, errortypes.DatabaseError(err, "Failed to initialize SQLite context store")
	}

	// Summarizer.
	logger.Info("Initializing summarizer", "provider", cfg.Summarizer.Provider)
	maxLen := cfg.Summarizer.MaxSummaryLength
	if maxLen <= 0 {
		maxLen = summarizer.DefaultMaxSummaryLength
	}
	var sum summarizer.Summarizer
	switch cfg.Summarizer.Provider {
	case "basic", "":
		sum = summarizer.NewBasicSummarizer(maxLen)
	default:
		logger.Warn("Unknown summarizer provider, using basic summarizer", "provider", cfg.Summarizer.Provider)
		sum = summarizer.NewBasicSummarizer(maxLen)
	}
	if err := sum.Initialize(); err != nil {
		store.Close()
		return components, errortypes.ConfigError(err, "Failed to initialize summarizer")
	}

	components = Components{
		Memories:   memories,
		Store:      store,
		Summarizer: sum,
		Embedder:   emb,
		Metrics:    metrics,
	}
	logger.Info("Components successfully initialized")
	return components, nil
}

// buildEmbedder constructs the configured embedding provider. The
// OpenAI provider is wrapped in a response cache; the mock provider is
// deterministic and cheap, so it goes uncached.
func buildEmbedder(cfg *Config, logger *slog.Logger, metrics *telemetry.Collector) (vector.Embedder, error) {
	dimensions := cfg.Embedder.Dimensions
	if dimensions <= 0 {
		dimensions = vector.DefaultEmbeddingDimensions
	}

	var emb vector.Embedder
	switch cfg.Embedder.Provider {
	case "openai":
		base := vector.NewOpenAIEmbedder(vector.OpenAIConfig{
			APIKey: cfg.Embedder.ApiKey,
			Model:  cfg.Embedder.Model,
		})
		cached, err := vector.NewCachingEmbedder(base, vector.CacheConfig{
			MaxCost: cfg.Embedder.CacheMaxCost,
			Metrics: metrics,
		})
		if err != nil {
			return nil, errortypes.ConfigError(err, "Failed to build embedding cache")
		}
		emb = cached
	case "mock", "":
		emb = vector.NewMockEmbedder(dimensions)
	default:
		logger.Warn("Unknown embedder provider, using mock embedder", "provider", cfg.Embedder.Provider)
		emb = vector.NewMockEmbedder(dimensions)
	}

	if err := emb.Initialize(); err != nil {
		return nil, errortypes.ConfigError(err, "Failed to initialize embedder")
	}
	return emb, nil
}

// Start starts the MemoryBank service. It blocks until the stdio
// transport shuts down.
func (s *Server) Start() error {
	s.logger.Info("Starting MemoryBank service")
	return s.toolServer.Start()
}

// Stop stops the MemoryBank service and closes both stores.
func (s *Server) Stop() error {
	s.logger.Info("Stopping MemoryBank service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if closer, ok := s.components.Embedder.(interface{ Close() }); ok {
		closer.Close()
	}

	if err := s.components.Memories.Close(); err != nil {
		s.logger.Error("Failed to close long-term memory store", "error", err)
		return err
	}

	if err := s.components.Store.Close(); err != nil {
		s.logger.Error("Failed to close context store", "error", err)
		return err
	}

	s.logger.Info("MemoryBank service stopped")
	return nil
}

// AddMemoryItems appends the given items to the long-term memory
// store, embedding any item that does not carry a vector. Items whose
// embedding fails are dropped with a log line.
func (s *Server) AddMemoryItems(ctx context.Context, items []memstore.MemoryRecord) (memstore.WriteResult, error) {
	records := make([]memstore.MemoryRecord, 0, len(items))
	for _, item := range items {
		if len(item.Vector) == 0 {
			embedding, err := s.components.Embedder.CreateEmbedding(ctx, item.Text)
			if err != nil {
				errortypes.LogError(s.logger, errortypes.EmbeddingError(err, "failed to embed memory item").
					WithField("memory_id", item.ID))
				continue
			}
			item.Vector = embedding
		}
		records = append(records, item)
	}
	return s.components.Memories.Add(ctx, records)
}

// SearchMemory embeds the query and returns the most similar memories,
// one per logical ID, ranked by descending score.
func (s *Server) SearchMemory(ctx context.Context, query string, topN int, filter map[string]string) ([]memstore.SearchResult, error) {
	if topN <= 0 {
		topN = tools.DefaultSearchTopN
	}
	queryEmbedding, err := s.components.Embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, errortypes.EmbeddingError(err, "failed to embed search query")
	}
	return s.components.Memories.Search(ctx, queryEmbedding, topN, filter), nil
}

// SaveContext summarizes the given text and saves it to the context
// store, returning the assigned entry ID.
func (s *Server) SaveContext(ctx context.Context, text string) (string, error) {
	summary, err := s.components.Summarizer.Summarize(text)
	if err != nil {
		return "", errortypes.APIError(err, "failed to summarize text")
	}

	embedding, err := s.components.Embedder.CreateEmbedding(ctx, summary)
	if err != nil {
		return "", errortypes.EmbeddingError(err, "failed to create embedding")
	}

	embeddingBytes, err := vector.Float32SliceToBytes(embedding)
	if err != nil {
		return "", errortypes.InternalError(err, "failed to encode embedding")
	}

	timestamp := time.Now()
	id := util.DeriveID(summary, timestamp.UnixNano())

	if err := s.components.Store.Store(id, summary, embeddingBytes, timestamp); err != nil {
		return "", errortypes.DatabaseError(err, "failed to store context")
	}

	s.logger.Info("Successfully saved context", "id", id)
	return id, nil
}

// RetrieveContext retrieves the context entries most similar to the
// given query.
func (s *Server) RetrieveContext(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = tools.DefaultRetrieveLimit
	}

	queryEmbedding, err := s.components.Embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, errortypes.EmbeddingError(err, "failed to embed query")
	}

	entries, err := s.components.Store.Search(queryEmbedding, limit)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to search context store")
	}

	results := make([]string, 0, len(entries))
	for _, entry := range entries {
		results = append(results, entry.SummaryText)
	}
	return results, nil
}

// Memories returns the long-term memory store used by the server.
func (s *Server) Memories() *memstore.Store {
	return s.components.Memories
}

// GetStore returns the context store instance used by the server.
func (s *Server) GetStore() contextstore.ContextStore {
	return s.components.Store
}

// GetSummarizer returns the summarizer instance used by the server.
func (s *Server) GetSummarizer() summarizer.Summarizer {
	return s.components.Summarizer
}

// GetEmbedder returns the embedder instance used by the server.
func (s *Server) GetEmbedder() vector.Embedder {
	return s.components.Embedder
}

// Metrics returns the telemetry collector shared by the components.
func (s *Server) Metrics() *telemetry.Collector {
	return s.components.Metrics
}

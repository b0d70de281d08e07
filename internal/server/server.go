package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/keeperhq/memorybank/internal/contextstore"
	"github.com/keeperhq/memorybank/internal/errortypes"
	"github.com/keeperhq/memorybank/internal/memstore"
	"github.com/keeperhq/memorybank/internal/summarizer"
	"github.com/keeperhq/memorybank/internal/tools"
	"github.com/keeperhq/memorybank/internal/util"
	"github.com/keeperhq/memorybank/internal/vector"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MCPMemoryToolServer implements the MemoryToolServer interface for
// handling MCP tool calls against the long-term memory log and the
// session context store.
type MCPMemoryToolServer struct {
	memories   *memstore.Store
	store      contextstore.ContextStore
	summarizer summarizer.Summarizer
	embedder   vector.Embedder
	mcpServer  server.Server
}

// NewMemoryToolServer creates a new MCPMemoryToolServer instance.
func NewMemoryToolServer(memories *memstore.Store, store contextstore.ContextStore, summarizer summarizer.Summarizer, embedder vector.Embedder) *MCPMemoryToolServer {
	return &MCPMemoryToolServer{
		memories:   memories,
		store:      store,
		summarizer: summarizer,
		embedder:   embedder,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPMemoryToolServer) Initialize() error {
	slog.Info("Initializing MCP Memory Tool Server")

	if s.memories == nil || s.store == nil || s.summarizer == nil || s.embedder == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewServer("memorybank")

	// Long-term memory tools
	srv = srv.Tool(tools.ToolAddMemoryItems, "Append memory items to the long-term memory store",
		s.handleAddMemoryItems)
	srv = srv.Tool(tools.ToolSearchMemory, "Search long-term memories by semantic similarity",
		s.handleSearchMemory)

	// Session context tools
	srv = srv.Tool(tools.ToolSaveContext, "Save context to the persistent memory store",
		s.handleSaveContext)
	srv = srv.Tool(tools.ToolRetrieveContext, "Retrieve relevant context based on a query",
		s.handleRetrieveContext)
	srv = srv.Tool(tools.ToolDeleteContext, "Delete a specific context entry by ID",
		s.handleDeleteContext)
	srv = srv.Tool(tools.ToolClearAllContext, "Clear all context entries from the store",
		s.handleClearAllContext)
	srv = srv.Tool(tools.ToolReplaceContext, "Replace an existing context entry with new content",
		s.handleReplaceContext)

	s.mcpServer = srv
	slog.Info("MCP Memory Tool Server initialized successfully", "tool_count", 7)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPMemoryToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting MCP Memory Tool Server")
	return s.mcpServer.AsStdio().Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPMemoryToolServer) Stop() error {
	slog.Info("Stopping MCP Memory Tool Server")
	// The server exits when stdin is closed
	return nil
}

// fail stamps an error onto a response's status and message fields,
// logging the structured form on the way out.
func fail(status *string, message *string, err error) {
	errortypes.LogError(nil, err)
	resp := errorToResponse(err)
	*status = tools.StatusError
	*message = resp.Code + ": " + resp.Message
}

// handleAddMemoryItems handles the add_memory_items MCP tool call.
//
// The write path is fire-and-forget: items that fail to embed or append
// are logged and dropped, never surfaced as a tool error. Only a store
// that cannot initialize at all fails the call.
func (s *MCPMemoryToolServer) handleAddMemoryItems(_ *server.Context, req tools.AddMemoryItemsRequest) (tools.AddMemoryItemsResponse, error) {
	slog.Info("Processing add_memory_items request", "items", len(req.Items))
	ctx := context.Background()

	response := tools.AddMemoryItemsResponse{
		Status: tools.StatusSuccess,
	}

	records := make([]memstore.MemoryRecord, 0, len(req.Items))
	for _, item := range req.Items {
		rec := memstore.MemoryRecord{
			ID:     item.ID,
			Text:   item.Text,
			Vector: item.Vector,
			Stage:  memstore.ParseStage(item.Stage),
		}
		if item.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, item.Timestamp); err == nil {
				rec.Timestamp = ts
			} else {
				slog.Warn("Ignoring unparsable item timestamp",
					"id", item.ID, "timestamp", item.Timestamp)
			}
		}

		if len(rec.Vector) == 0 {
			embedding, err := s.embedder.CreateEmbedding(ctx, rec.Text)
			if err != nil {
				err = errortypes.EmbeddingError(err, "failed to embed memory item").
					WithField("memory_id", rec.ID)
				errortypes.LogError(nil, err)
				continue
			}
			rec.Vector = embedding
		}
		records = append(records, rec)
	}

	result, err := s.memories.Add(ctx, records)
	if err != nil {
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	// Per-item append failures were already logged by the store.
	response.Appended = result.Appended
	slog.Info("Successfully appended memory items",
		"appended", result.Appended, "dropped", len(req.Items)-result.Appended)
	return response, nil
}

// handleSearchMemory handles the search_memory MCP tool call.
func (s *MCPMemoryToolServer) handleSearchMemory(_ *server.Context, req tools.SearchMemoryRequest) (tools.SearchMemoryResponse, error) {
	slog.Info("Processing search_memory request", "query_length", len(req.Query), "top_n", req.TopN)
	ctx := context.Background()

	response := tools.SearchMemoryResponse{
		Status: tools.StatusSuccess,
	}

	topN := req.TopN
	if topN <= 0 {
		topN = tools.DefaultSearchTopN
	}

	queryEmbedding, err := s.embedder.CreateEmbedding(ctx, req.Query)
	if err != nil {
		err = errortypes.EmbeddingError(err, "failed to embed search query").
			WithField("query_length", len(req.Query))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	// The store degrades engine failures to an empty result itself.
	results := s.memories.Search(ctx, queryEmbedding, topN, req.Filter)

	response.Results = make([]tools.MemoryResult, 0, len(results))
	for _, r := range results {
		out := tools.MemoryResult{
			ID:    r.ID,
			Text:  r.Text,
			Score: r.Score,
			Stage: string(r.Stage),
		}
		if !r.Timestamp.IsZero() {
			out.Timestamp = r.Timestamp.UTC().Format(time.RFC3339)
		}
		response.Results = append(response.Results, out)
	}

	slog.Info("Successfully searched memories", "count", len(response.Results))
	return response, nil
}

// handleSaveContext handles the save_context MCP tool call.
func (s *MCPMemoryToolServer) handleSaveContext(_ *server.Context, req tools.SaveContextRequest) (tools.SaveContextResponse, error) {
	slog.Info("Processing save_context request", "text_length", len(req.ContextText))
	ctx := context.Background()

	response := tools.SaveContextResponse{
		Status: tools.StatusSuccess,
	}

	summary, err := s.summarizer.Summarize(req.ContextText)
	if err != nil {
		err = errortypes.APIError(err, "failed to summarize text").
			WithField("text_length", len(req.ContextText))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	embedding, err := s.embedder.CreateEmbedding(ctx, summary)
	if err != nil {
		err = errortypes.EmbeddingError(err, "failed to create embedding").
			WithField("summary_length", len(summary))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	embeddingBytes, err := vector.Float32SliceToBytes(embedding)
	if err != nil {
		err = errortypes.InternalError(err, "failed to encode embedding").
			WithField("embedding_size", len(embedding))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	timestamp := time.Now()
	id := util.DeriveID(summary, timestamp.UnixNano())

	if err := s.store.Store(id, summary, embeddingBytes, timestamp); err != nil {
		err = errortypes.DatabaseError(err, "failed to store context").
			WithField("context_id", id)
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	response.ID = id
	slog.Info("Successfully saved context", "id", id)
	return response, nil
}

// handleRetrieveContext handles the retrieve_context MCP tool call.
func (s *MCPMemoryToolServer) handleRetrieveContext(_ *server.Context, req tools.RetrieveContextRequest) (tools.RetrieveContextResponse, error) {
	slog.Info("Processing retrieve_context request", "query_length", len(req.Query), "limit", req.Limit)
	ctx := context.Background()

	response := tools.RetrieveContextResponse{
		Status: tools.StatusSuccess,
	}

	limit := req.Limit
	if limit <= 0 {
		limit = tools.DefaultRetrieveLimit
	}

	queryEmbedding, err := s.embedder.CreateEmbedding(ctx, req.Query)
	if err != nil {
		err = errortypes.EmbeddingError(err, "failed to embed query").
			WithField("query_length", len(req.Query))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	entries, err := s.store.Search(queryEmbedding, limit)
	if err != nil {
		err = errortypes.DatabaseError(err, "failed to search context store").
			WithField("limit", limit)
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	response.Results = make([]string, 0, len(entries))
	for _, entry := range entries {
		response.Results = append(response.Results, entry.SummaryText)
	}

	slog.Info("Successfully retrieved context results", "count", len(response.Results))
	return response, nil
}

// handleDeleteContext handles the delete_context MCP tool call.
func (s *MCPMemoryToolServer) handleDeleteContext(_ *server.Context, req tools.DeleteContextRequest) (tools.DeleteContextResponse, error) {
	slog.Info("Processing delete_context request", "id", req.ID)

	response := tools.DeleteContextResponse{
		Status: tools.StatusSuccess,
	}

	if req.ID == "" {
		err := errortypes.ValidationError(errors.New("id cannot be empty"), "invalid delete_context request")
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	found, err := s.store.Delete(req.ID)
	if err != nil {
		err = errortypes.DatabaseError(err, "failed to delete context").
			WithField("context_id", req.ID)
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	response.Found = found
	slog.Info("Successfully processed delete_context", "id", req.ID, "found", found)
	return response, nil
}

// handleClearAllContext handles the clear_all_context MCP tool call.
func (s *MCPMemoryToolServer) handleClearAllContext(_ *server.Context, req tools.ClearAllContextRequest) (tools.ClearAllContextResponse, error) {
	slog.Info("Processing clear_all_context request")

	response := tools.ClearAllContextResponse{
		Status: tools.StatusSuccess,
	}

	if req.Confirmation != "confirm" {
		response.Status = tools.StatusError
		response.Error = "Confirmation required. Set confirmation to 'confirm' to proceed with clearing all context"
		slog.Warn("Clear all context operation rejected: missing confirmation")
		return response, nil
	}

	if err := s.store.Clear(); err != nil {
		err = errortypes.DatabaseError(err, "failed to clear context store")
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	slog.Info("Successfully cleared context entries")
	return response, nil
}

// handleReplaceContext handles the replace_context MCP tool call.
func (s *MCPMemoryToolServer) handleReplaceContext(_ *server.Context, req tools.ReplaceContextRequest) (tools.ReplaceContextResponse, error) {
	slog.Info("Processing replace_context request", "id", req.ID, "new_text_length", len(req.ContextText))
	ctx := context.Background()

	response := tools.ReplaceContextResponse{
		Status: tools.StatusSuccess,
	}

	if req.ID == "" {
		err := errortypes.ValidationError(errors.New("id cannot be empty"), "invalid replace_context request")
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	summary, err := s.summarizer.Summarize(req.ContextText)
	if err != nil {
		err = errortypes.APIError(err, "failed to summarize replacement text").
			WithField("text_length", len(req.ContextText))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	embedding, err := s.embedder.CreateEmbedding(ctx, summary)
	if err != nil {
		err = errortypes.EmbeddingError(err, "failed to create replacement embedding").
			WithField("summary_length", len(summary))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	embeddingBytes, err := vector.Float32SliceToBytes(embedding)
	if err != nil {
		err = errortypes.InternalError(err, "failed to encode replacement embedding").
			WithField("embedding_size", len(embedding))
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	found, err := s.store.Replace(req.ID, summary, embeddingBytes, time.Now())
	if err != nil {
		err = errortypes.DatabaseError(err, "failed to replace context").
			WithField("context_id", req.ID)
		fail(&response.Status, &response.Error, err)
		return response, nil
	}

	response.Found = found
	slog.Info("Successfully processed replace_context", "id", req.ID, "found", found)
	return response, nil
}

// Package tools defines the MCP tool names and request/response
// schemas for the MemoryBank service.
package tools

const (
	// ToolAddMemoryItems is the name of the add_memory_items MCP tool
	ToolAddMemoryItems = "add_memory_items"

	// ToolSearchMemory is the name of the search_memory MCP tool
	ToolSearchMemory = "search_memory"

	// ToolSaveContext is the name of the save_context MCP tool
	ToolSaveContext = "save_context"

	// ToolRetrieveContext is the name of the retrieve_context MCP tool
	ToolRetrieveContext = "retrieve_context"

	// ToolDeleteContext is the name of the delete_context MCP tool
	ToolDeleteContext = "delete_context"

	// ToolClearAllContext is the name of the clear_all_context MCP tool
	ToolClearAllContext = "clear_all_context"

	// ToolReplaceContext is the name of the replace_context MCP tool
	ToolReplaceContext = "replace_context"

	// DefaultSearchTopN is the default number of memory results to
	// return when no top_n is specified in a search_memory request
	DefaultSearchTopN = 5

	// DefaultRetrieveLimit is the default number of results to return
	// when no limit is specified in a retrieve_context request
	DefaultRetrieveLimit = 5
)

// Response status values shared by every tool.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MemoryItemInput is one memory item in an add_memory_items request.
type MemoryItemInput struct {
	// ID is the stable logical identifier of the memory. Writing an ID
	// that already exists appends a new version of it.
	ID string `json:"id"`

	// Text is the memory content
	Text string `json:"text"`

	// Vector is an optional precomputed embedding; when absent the
	// server embeds Text itself
	Vector []float32 `json:"vector,omitempty"`

	// Timestamp is an optional RFC 3339 time the content pertains to
	Timestamp string `json:"timestamp,omitempty"`

	// Stage tags the processing stage that produced the item
	// (conversation, summary, reflection, archive)
	Stage string `json:"stage,omitempty"`
}

// AddMemoryItemsRequest defines the input schema for add_memory_items tool
type AddMemoryItemsRequest struct {
	// Items are the memory items to append
	Items []MemoryItemInput `json:"items"`
}

// AddMemoryItemsResponse defines the output schema for add_memory_items tool
type AddMemoryItemsResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Appended is the number of items written
	Appended int `json:"appended"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SearchMemoryRequest defines the input schema for search_memory tool
type SearchMemoryRequest struct {
	// Query is the text to search memories for
	Query string `json:"query"`

	// TopN is the maximum number of results to return
	// If not specified, DefaultSearchTopN will be used
	TopN int `json:"top_n,omitempty"`

	// Filter restricts results to rows whose metadata matches every
	// key/value pair verbatim (e.g. {"stage": "summary"})
	Filter map[string]string `json:"filter,omitempty"`
}

// MemoryResult is one scored memory in a search_memory response.
type MemoryResult struct {
	// ID is the logical identifier of the memory
	ID string `json:"id"`

	// Text is the memory content
	Text string `json:"text"`

	// Score is the similarity to the query, higher is more similar
	Score float64 `json:"score"`

	// Timestamp is the RFC 3339 time the content pertains to
	Timestamp string `json:"timestamp,omitempty"`

	// Stage tags the processing stage that produced the item
	Stage string `json:"stage,omitempty"`
}

// SearchMemoryResponse defines the output schema for search_memory tool.
// Results may hold fewer than TopN entries: superseded versions of a
// memory are dropped rather than backfilled.
type SearchMemoryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Results contains the matching memories, ranked by descending score
	Results []MemoryResult `json:"results"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SaveContextRequest defines the input schema for save_context tool
type SaveContextRequest struct {
	// ContextText is the text to save in the context store
	ContextText string `json:"context_text"`
}

// SaveContextResponse defines the output schema for save_context tool
type SaveContextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// ID is the unique identifier assigned to the saved context
	ID string `json:"id"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// RetrieveContextRequest defines the input schema for retrieve_context tool
type RetrieveContextRequest struct {
	// Query is the text to search for in the context store
	Query string `json:"query"`

	// Limit is the maximum number of results to return
	// If not specified, DefaultRetrieveLimit will be used
	Limit int `json:"limit,omitempty"`
}

// RetrieveContextResponse defines the output schema for retrieve_context tool
type RetrieveContextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Results contains the matching context entries
	Results []string `json:"results"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// DeleteContextRequest defines the input schema for delete_context tool
type DeleteContextRequest struct {
	// ID is the unique identifier of the context entry to delete
	ID string `json:"id"`
}

// DeleteContextResponse defines the output schema for delete_context tool
type DeleteContextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Found reports whether an entry with the given ID existed
	Found bool `json:"found"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ClearAllContextRequest defines the input schema for clear_all_context tool
type ClearAllContextRequest struct {
	// Confirmation is a required field to confirm the operation
	// Must be set to "confirm" to prevent accidental clearing
	Confirmation string `json:"confirmation"`
}

// ClearAllContextResponse defines the output schema for clear_all_context tool
type ClearAllContextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ReplaceContextRequest defines the input schema for replace_context tool
type ReplaceContextRequest struct {
	// ID is the unique identifier of the context entry to replace
	ID string `json:"id"`

	// ContextText is the new text to replace the existing context
	ContextText string `json:"context_text"`
}

// ReplaceContextResponse defines the output schema for replace_context tool
type ReplaceContextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Found reports whether an entry with the given ID existed
	Found bool `json:"found"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

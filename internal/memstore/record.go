package memstore

import (
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// Stage tags a memory item with the processing stage that produced it.
type Stage string

// The closed set of stages.
const (
	StageConversation Stage = "conversation"
	StageSummary      Stage = "summary"
	StageReflection   Stage = "reflection"
	StageArchive      Stage = "archive"

	// stageSentinel marks the dimension-probe row written at collection
	// creation. Never produced by callers.
	stageSentinel Stage = "sentinel"
)

// Valid reports whether the stage belongs to the caller-facing set.
func (s Stage) Valid() bool {
	switch s {
	case StageConversation, StageSummary, StageReflection, StageArchive:
		return true
	}
	return false
}

// ParseStage maps a string onto the closed stage set, defaulting to
// StageConversation for unknown values.
func ParseStage(s string) Stage {
	if stage := Stage(s); stage.Valid() {
		return stage
	}
	return StageConversation
}

// MemoryRecord is the logical unit of long-term memory. The ID is a
// stable external identifier; it is NOT unique as physically stored,
// because updates are appends of new versions under the same ID.
type MemoryRecord struct {
	ID     string
	Text   string
	Vector []float32

	// Timestamp is the point in time the content pertains to.
	Timestamp time.Time

	Stage Stage
}

// StoredRecord is a physical row: a MemoryRecord plus the time the row
// was written. Rows from before versioning existed carry a zero
// InsertTimestamp.
type StoredRecord struct {
	MemoryRecord

	InsertTimestamp time.Time
}

// Versioned reports whether the row carries an insertion timestamp.
func (r StoredRecord) Versioned() bool {
	return !r.InsertTimestamp.IsZero()
}

// SearchResult is a stored row with the similarity score the engine
// assigned it. Higher means more similar.
type SearchResult struct {
	StoredRecord

	Score float64
}

// WriteFailure records one item that could not be appended.
type WriteFailure struct {
	ID  string
	Err error
}

// WriteResult reports the outcome of a batch append. Callers decide
// whether to surface or ignore failures.
type WriteResult struct {
	Appended int
	Failed   []WriteFailure
}

// Ok reports whether every item in the batch was appended.
func (r WriteResult) Ok() bool {
	return len(r.Failed) == 0
}

// Metadata keys used on the physical rows. The engine's filter
// predicates address these keys directly.
const (
	metaKeyID       = "memory_id"
	metaKeyStage    = "stage"
	metaKeyTime     = "metadata_timestamp"
	metaKeyInsertTS = "insert_timestamp"
)

// documentFromRecord maps a stored record onto an engine document. Each
// version gets a fresh physical row ID so appends never overwrite; the
// logical ID lives in metadata.
func documentFromRecord(rec StoredRecord) chromem.Document {
	metadata := map[string]string{
		metaKeyID:    rec.ID,
		metaKeyStage: string(rec.Stage),
		metaKeyTime:  rec.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if rec.Versioned() {
		metadata[metaKeyInsertTS] = rec.InsertTimestamp.UTC().Format(time.RFC3339Nano)
	}
	return chromem.Document{
		ID:        uuid.NewString(),
		Content:   rec.Text,
		Embedding: rec.Vector,
		Metadata:  metadata,
	}
}

// recordFromResult reconstructs a scored record from an engine result.
// A missing or unparsable insert timestamp yields a legacy row.
func recordFromResult(res chromem.Result) SearchResult {
	rec := StoredRecord{
		MemoryRecord: MemoryRecord{
			ID:     res.Metadata[metaKeyID],
			Text:   res.Content,
			Vector: res.Embedding,
			Stage:  Stage(res.Metadata[metaKeyStage]),
		},
	}
	if ts, err := time.Parse(time.RFC3339Nano, res.Metadata[metaKeyTime]); err == nil {
		rec.Timestamp = ts
	}
	if raw, ok := res.Metadata[metaKeyInsertTS]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			rec.InsertTimestamp = ts
		}
	}
	return SearchResult{StoredRecord: rec, Score: float64(res.Similarity)}
}

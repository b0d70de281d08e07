package contextstore

import (
	"fmt"
	"sort"
	"time"

	"crawshaw.io/sqlite"

	"github.com/keeperhq/memorybank/internal/errortypes"
	"github.com/keeperhq/memorybank/internal/vector"
)

// SQLiteContextStore is a ContextStore backed by a single SQLite file.
// Similarity search is a full scan with the cosine computed in Go; the
// context table stays small enough that an index is not worth carrying.
type SQLiteContextStore struct {
	conn   *sqlite.Conn
	dbPath string
}

// NewSQLiteContextStore creates a new SQLiteContextStore instance.
func NewSQLiteContextStore() *SQLiteContextStore {
	return &SQLiteContextStore{}
}

// Initialize opens the SQLite database and creates the schema.
func (s *SQLiteContextStore) Initialize(dbPath string) error {
	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open context database").
			WithField("path", dbPath)
	}
	s.conn = conn

	if err := s.createTable(); err != nil {
		s.conn.Close()
		s.conn = nil
		return errortypes.DatabaseError(err, "failed to create context schema").
			WithField("path", dbPath)
	}

	return nil
}

// createTable creates the context_memory table if it doesn't exist.
func (s *SQLiteContextStore) createTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS context_memory (
		id TEXT PRIMARY KEY,
		summary_text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		timestamp INTEGER NOT NULL
	);`

	stmt, err := s.conn.Prepare(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare create table statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute create table statement: %w", err)
	}

	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteContextStore) Close() error {
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// Store inserts or overwrites the context entry with the given ID.
func (s *SQLiteContextStore) Store(id string, summaryText string, embedding []byte, timestamp time.Time) error {
	insertSQL := `
	INSERT OR REPLACE INTO context_memory (id, summary_text, embedding, timestamp)
	VALUES (?, ?, ?, ?);`

	stmt, err := s.conn.Prepare(insertSQL)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to prepare insert statement")
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, id)
	stmt.BindText(2, summaryText)
	stmt.BindBytes(3, embedding)
	stmt.BindInt64(4, timestamp.Unix())

	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to insert context entry").
			WithField("id", id)
	}

	return nil
}

// Search scans every stored entry, scores it against the query
// embedding and returns the top entries by descending similarity.
func (s *SQLiteContextStore) Search(queryEmbedding []float32, limit int) ([]Entry, error) {
	if len(queryEmbedding) == 0 {
		return nil, errortypes.ValidationError(fmt.Errorf("empty query embedding"), "cannot search context")
	}
	if limit <= 0 {
		return nil, nil
	}

	selectSQL := `
	SELECT id, summary_text, embedding, timestamp FROM context_memory
	ORDER BY timestamp DESC;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to prepare select statement")
	}
	defer stmt.Reset()

	var results []Entry
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to scan context entries")
		}
		if !hasRow {
			break
		}

		// Column indices are 0-based
		id := stmt.ColumnText(0)
		summaryText := stmt.ColumnText(1)

		embeddingBytes := make([]byte, stmt.ColumnLen(2))
		stmt.ColumnBytes(2, embeddingBytes)

		storedEmbedding, err := vector.BytesToFloat32Slice(embeddingBytes)
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to decode stored embedding").
				WithField("id", id)
		}

		similarity, err := vector.CosineSimilarity(queryEmbedding, storedEmbedding)
		if err != nil {
			return nil, errortypes.InternalError(err, "failed to score context entry").
				WithField("id", id)
		}

		results = append(results, Entry{
			ID:          id,
			SummaryText: summaryText,
			Timestamp:   time.Unix(stmt.ColumnInt64(3), 0),
			Score:       similarity,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Delete removes the entry with the given ID.
func (s *SQLiteContextStore) Delete(id string) (bool, error) {
	deleteSQL := `DELETE FROM context_memory WHERE id = ?;`

	stmt, err := s.conn.Prepare(deleteSQL)
	if err != nil {
		return false, errortypes.DatabaseError(err, "failed to prepare delete statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, id)
	if _, err := stmt.Step(); err != nil {
		return false, errortypes.DatabaseError(err, "failed to delete context entry").
			WithField("id", id)
	}

	return s.conn.Changes() > 0, nil
}

// Replace overwrites an existing entry's text and embedding in place.
func (s *SQLiteContextStore) Replace(id string, summaryText string, embedding []byte, timestamp time.Time) (bool, error) {
	updateSQL := `
	UPDATE context_memory SET summary_text = ?, embedding = ?, timestamp = ?
	WHERE id = ?;`

	stmt, err := s.conn.Prepare(updateSQL)
	if err != nil {
		return false, errortypes.DatabaseError(err, "failed to prepare update statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, summaryText)
	stmt.BindBytes(2, embedding)
	stmt.BindInt64(3, timestamp.Unix())
	stmt.BindText(4, id)

	if _, err := stmt.Step(); err != nil {
		return false, errortypes.DatabaseError(err, "failed to replace context entry").
			WithField("id", id)
	}

	return s.conn.Changes() > 0, nil
}

// Clear removes every entry from the store.
func (s *SQLiteContextStore) Clear() error {
	clearSQL := `DELETE FROM context_memory;`

	stmt, err := s.conn.Prepare(clearSQL)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to prepare clear statement")
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to clear context entries")
	}

	return nil
}

package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/hctpa/guidebot/internal/domain/entities"
)

// ErrNoSnapshot means the store holds no saved index.
var ErrNoSnapshot = errors.New("no index snapshot")

// SnapshotStore persists one built index in SQLite so warm starts can
// skip re-embedding. The embedding model name and dimension are
// recorded; loading under a different model or dimension is rejected.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens (creating if needed) the snapshot database.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	s := &SnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing snapshot schema: %w", err)
	}
	return s, nil
}

func (s *SnapshotStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		model TEXT NOT NULL,
		dimension INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS chunks (
		rowid_order INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		source TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		embedding BLOB NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces any previous snapshot with the given chunk set.
func (s *SnapshotStore) Save(ctx context.Context, model string, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return entities.ErrEmptyCorpus
	}
	dim := len(chunks[0].Embedding)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (id, model, dimension) VALUES (1, ?, ?)", model, dim); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, source, content, chunk_index, start_offset, end_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		blob, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.DocumentID, c.Source, c.Content, c.Index, c.StartOffset, c.EndOffset, blob); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Load returns the saved chunks in original indexing order. Fails with
// ErrNoSnapshot when empty and with ConfigError when the recorded model
// does not match.
func (s *SnapshotStore) Load(ctx context.Context, model string) ([]entities.Chunk, error) {
	var savedModel string
	var dim int
	err := s.db.QueryRowContext(ctx, "SELECT model, dimension FROM meta WHERE id = 1").Scan(&savedModel, &dim)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot meta: %w", err)
	}
	if savedModel != model {
		return nil, &entities.ConfigError{
			Reason: fmt.Sprintf("snapshot was built with model %q, current model is %q", savedModel, model),
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, source, content, chunk_index, start_offset, end_offset, embedding
		FROM chunks ORDER BY rowid_order
	`)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot chunks: %w", err)
	}
	defer rows.Close()

	var chunks []entities.Chunk
	for rows.Next() {
		var c entities.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Source, &c.Content, &c.Index, &c.StartOffset, &c.EndOffset, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal(blob, &c.Embedding); err != nil {
			return nil, fmt.Errorf("decoding embedding for chunk %s: %w", c.ID, err)
		}
		if len(c.Embedding) != dim {
			return nil, &entities.ConfigError{
				Reason: fmt.Sprintf("snapshot chunk %s has dimension %d, meta records %d", c.ID, len(c.Embedding), dim),
			}
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoSnapshot
	}
	return chunks, nil
}

// Close closes the database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

// Package kb persists chunks and serves semantic search over them. Chunk
// text and metadata live in SQLite; embeddings live in flat vector indexes,
// one per collection.
package kb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// Store is the SQLite chunk store shared by all collections.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the chunk database at dbPath and initializes the
// schema. Parent directories are created as needed.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open chunk database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
	CREATE INDEX IF NOT EXISTS idx_chunks_created_at ON chunks(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// PutChunks inserts or replaces chunks under the named collection in one
// transaction.
func (s *Store) PutChunks(ctx context.Context, collection string, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO chunks (id, collection, content, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, chunk := range chunks {
		meta, err := json.Marshal(chunk.Meta)
		if err != nil {
			return fmt.Errorf("marshal metadata for chunk %s: %w", chunk.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, collection, chunk.Text, string(meta), now); err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}
	return tx.Commit()
}

// GetChunk returns the chunk with the given ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	var chunk models.Chunk
	var metaJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content, metadata FROM chunks WHERE id = ?`, id,
	).Scan(&chunk.ID, &chunk.Text, &metaJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	if metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &chunk.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for chunk %s: %w", id, err)
		}
	}
	return &chunk, nil
}

// CountChunks returns the number of chunks in a collection.
func (s *Store) CountChunks(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE collection = ?`, collection,
	).Scan(&n)
	return n, err
}

// DeleteBySource removes all chunks whose metadata source matches path,
// returning their IDs so the caller can drop the vectors too.
func (s *Store) DeleteBySource(ctx context.Context, collection, path string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, metadata FROM chunks WHERE collection = ?`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id, metaJSON string
		if err := rows.Scan(&id, &metaJSON); err != nil {
			return nil, err
		}
		var meta models.ChunkMeta
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
				continue
			}
		}
		if meta.Source == path {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE id = ?`, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

package kb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/embedding"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/vector"
)

// ErrUnavailable is returned by operations on a collection that failed to
// initialize. Callers check with errors.Is and degrade instead of crashing.
var ErrUnavailable = errors.New("collection unavailable")

// SearchHit is one retrieved chunk. Distance is 1 minus the cosine
// similarity to the query, so lower means closer.
type SearchHit struct {
	Chunk    *models.Chunk
	Distance float64
}

// Collection pairs a vector index with the chunk store for one content kind
// (document text or slide images). A collection whose index failed to load
// stays in the unavailable state and reports why; the rest of the system
// keeps working.
type Collection struct {
	name     string
	store    *Store
	index    *vector.Index
	embedder embedding.Embedder
	path     string
	logger   *zap.Logger

	mu     sync.RWMutex
	reason string // non-empty when unavailable
}

// NewCollection opens the collection's vector index from path. On failure
// the collection is returned in the unavailable state rather than as an
// error, so a broken image index does not take down text search.
func NewCollection(name, path string, store *Store, embedder embedding.Embedder, logger *zap.Logger) *Collection {
	c := &Collection{
		name:     name,
		store:    store,
		embedder: embedder,
		path:     path,
		logger:   logger.With(zap.String("collection", name)),
	}

	idx, err := vector.NewIndex(embedder.Dimensions())
	if err != nil {
		c.reason = err.Error()
		c.logger.Warn("collection unavailable", zap.Error(err))
		return c
	}
	if err := idx.Load(path); err != nil {
		c.reason = fmt.Sprintf("load vector index: %v", err)
		c.logger.Warn("collection unavailable", zap.Error(err))
		return c
	}
	c.index = idx
	return c
}

// Ready reports whether the collection can serve adds and searches.
func (c *Collection) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reason == ""
}

// UnavailableReason returns why the collection is down, or "" when ready.
func (c *Collection) UnavailableReason() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reason
}

// Add embeds the chunks and stores text, metadata, and vectors. The chunk
// texts and their search vectors always come from the same embedder, so
// query vectors are directly comparable.
func (c *Collection) Add(ctx context.Context, chunks []models.Chunk) error {
	if !c.Ready() {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, c.name, c.UnavailableReason())
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
		ids[i] = chunk.ID
	}

	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if err := c.store.PutChunks(ctx, c.name, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	if err := c.index.Add(ctx, ids, vectors); err != nil {
		return fmt.Errorf("index vectors: %w", err)
	}
	return nil
}

// Search embeds the query with the collection's own embedder and returns up
// to k hits ordered nearest first.
func (c *Collection) Search(ctx context.Context, query string, k int) ([]SearchHit, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, c.name, c.UnavailableReason())
	}

	queryVec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := c.index.Search(ctx, queryVec, k)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		chunk, err := c.store.GetChunk(ctx, r.ID)
		if err != nil {
			c.logger.Warn("indexed chunk missing from store",
				zap.String("chunk_id", r.ID), zap.Error(err))
			continue
		}
		hits = append(hits, SearchHit{Chunk: chunk, Distance: 1 - r.Score})
	}
	return hits, nil
}

// RemoveSource drops every chunk from the given source path.
func (c *Collection) RemoveSource(ctx context.Context, path string) error {
	if !c.Ready() {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, c.name, c.UnavailableReason())
	}
	ids, err := c.store.DeleteBySource(ctx, c.name, path)
	if err != nil {
		return err
	}
	return c.index.Remove(ctx, ids)
}

// Size returns the number of indexed vectors, or 0 when unavailable.
func (c *Collection) Size() int {
	if !c.Ready() {
		return 0
	}
	return c.index.Size()
}

// Save persists the vector index to its configured path.
func (c *Collection) Save() error {
	if !c.Ready() {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, c.name, c.UnavailableReason())
	}
	return c.index.Save(c.path)
}

package kb

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/embedding"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// Collection names.
const (
	TextCollection  = "radiology_texts"
	ImageCollection = "radiology_images"
)

// KnowledgeBase routes chunks into per-kind collections and serves search
// over the text collection.
type KnowledgeBase struct {
	store  *Store
	texts  *Collection
	images *Collection
	logger *zap.Logger
}

// Paths locates the knowledge base files on disk.
type Paths struct {
	Database   string
	TextIndex  string
	ImageIndex string
}

// Open builds the knowledge base. The store must open; collections that
// fail to load come up unavailable rather than failing Open.
func Open(paths Paths, embedder embedding.Embedder, logger *zap.Logger) (*KnowledgeBase, error) {
	store, err := NewStore(paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open chunk store: %w", err)
	}
	return &KnowledgeBase{
		store:  store,
		texts:  NewCollection(TextCollection, paths.TextIndex, store, embedder, logger),
		images: NewCollection(ImageCollection, paths.ImageIndex, store, embedder, logger),
		logger: logger,
	}, nil
}

// Add stores chunks, routing each to the collection matching its type:
// text-like chunks to the text collection, image chunks to the image
// collection.
func (k *KnowledgeBase) Add(ctx context.Context, chunks []models.Chunk) error {
	var textChunks, imageChunks []models.Chunk
	for _, chunk := range chunks {
		if chunk.Meta.Type.IsTextLike() {
			textChunks = append(textChunks, chunk)
		} else {
			imageChunks = append(imageChunks, chunk)
		}
	}

	if err := k.texts.Add(ctx, textChunks); err != nil {
		return err
	}
	if len(imageChunks) > 0 {
		if err := k.images.Add(ctx, imageChunks); err != nil {
			// Image indexing is best effort; text search must survive an
			// unavailable image collection.
			k.logger.Warn("image chunks not indexed", zap.Error(err))
		}
	}
	return nil
}

// Search returns up to k text chunks nearest to the query.
func (k *KnowledgeBase) Search(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	return k.texts.Search(ctx, query, topK)
}

// RemoveSource drops all chunks for a source path from both collections.
func (k *KnowledgeBase) RemoveSource(ctx context.Context, path string) error {
	if err := k.texts.RemoveSource(ctx, path); err != nil {
		return err
	}
	if k.images.Ready() {
		return k.images.RemoveSource(ctx, path)
	}
	return nil
}

// Status summarizes collection readiness and sizes.
type Status struct {
	TextReady   bool   `json:"text_ready"`
	TextChunks  int    `json:"text_chunks"`
	TextReason  string `json:"text_reason,omitempty"`
	ImageReady  bool   `json:"image_ready"`
	ImageChunks int    `json:"image_chunks"`
	ImageReason string `json:"image_reason,omitempty"`
}

// Status reports the state of both collections.
func (k *KnowledgeBase) Status() Status {
	return Status{
		TextReady:   k.texts.Ready(),
		TextChunks:  k.texts.Size(),
		TextReason:  k.texts.UnavailableReason(),
		ImageReady:  k.images.Ready(),
		ImageChunks: k.images.Size(),
		ImageReason: k.images.UnavailableReason(),
	}
}

// Texts exposes the text collection for callers that need direct access.
func (k *KnowledgeBase) Texts() *Collection { return k.texts }

// Images exposes the image collection.
func (k *KnowledgeBase) Images() *Collection { return k.images }

// Save persists both vector indexes.
func (k *KnowledgeBase) Save() error {
	if k.texts.Ready() {
		if err := k.texts.Save(); err != nil {
			return err
		}
	}
	if k.images.Ready() {
		return k.images.Save()
	}
	return nil
}

// Close saves indexes and closes the store.
func (k *KnowledgeBase) Close() error {
	if err := k.Save(); err != nil {
		k.logger.Warn("saving vector indexes on close", zap.Error(err))
	}
	return k.store.Close()
}

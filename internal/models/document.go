// Package models defines core data structures for documents, chunks, and flashcards.
package models

import "time"

// ChunkType classifies what a chunk was produced from.
type ChunkType string

const (
	// ChunkTypeText is a chunk of sectioned document text (PDF, DOCX, ...).
	ChunkTypeText ChunkType = "text"
	// ChunkTypeSlide is a per-slide chunk from a presentation.
	ChunkTypeSlide ChunkType = "slide"
	// ChunkTypeImage is a descriptive chunk for an embedded image.
	ChunkTypeImage ChunkType = "image"
	// ChunkTypeTextFile is a whole plain-text file ingested as one chunk.
	ChunkTypeTextFile ChunkType = "text_file"
)

// IsTextLike reports whether the chunk type is embedded into the text
// collection. Image chunks go through the separate image collection.
func (t ChunkType) IsTextLike() bool {
	return t == ChunkTypeText || t == ChunkTypeSlide || t == ChunkTypeTextFile
}

// SlideImage is an embedded presentation image, kept as base64 so it can be
// carried in chunk metadata and re-rendered by callers.
type SlideImage struct {
	Data       string `json:"data"`
	Format     string `json:"format"`
	SlideIndex int    `json:"slide_index"`
}

// DocumentUnit is one page or slide of a source document.
type DocumentUnit struct {
	Index     int          `json:"index"` // 1-based for display
	Title     string       `json:"title,omitempty"`
	Text      string       `json:"text"`
	Notes     string       `json:"notes,omitempty"` // speaker notes (slides only)
	HasImages bool         `json:"has_images"`
	Images    []SlideImage `json:"images,omitempty"`
}

// Document is the immutable result of extracting one source file.
// Re-ingesting the same file supersedes the previous Document under the same
// content hash; extracted fields are never mutated afterwards.
type Document struct {
	ID          string         `json:"id"`
	SourcePath  string         `json:"source_path"`
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Text        string         `json:"text"`
	Units       []DocumentUnit `json:"units"`
	UnitCount   int            `json:"unit_count"`
	ContentHash string         `json:"content_hash"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ChunkMeta carries the typed metadata attached to every chunk. Extra holds
// only source-specific pass-through fields that legitimately vary by document
// type.
type ChunkMeta struct {
	Source         string            `json:"source"`
	Section        string            `json:"section,omitempty"`
	Type           ChunkType         `json:"chunk_type"`
	UnitIndex      int               `json:"unit_index,omitempty"` // page or slide number, 1-based
	RelevanceScore float64           `json:"medical_relevance_score"`
	ExamSection    string            `json:"exam_section,omitempty"`
	HighYieldTerms []string          `json:"high_yield_terms,omitempty"`
	Entities       []string          `json:"entities,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Chunk is a bounded span of document text prepared for embedding and retrieval.
type Chunk struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Meta ChunkMeta `json:"metadata"`
}

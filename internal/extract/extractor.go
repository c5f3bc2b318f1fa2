// Package extract provides text and structure extraction from study materials.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// ExtractionError marks a source file as unreadable or corrupt. Callers log
// it, skip the file, and continue the batch.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor turns source files into the uniform Document representation.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns a Document with full text,
// per-unit structure (pages or slides), and metadata. The returned error is
// an *ExtractionError when the file cannot be read or parsed; any underlying
// file handle is released before returning regardless of outcome.
func (e *Extractor) Extract(path string) (*models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	var doc *models.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		doc, err = extractPDF(content)
	case ".ppt", ".pptx":
		doc, err = extractPPTX(content)
	case ".docx":
		doc, err = extractWordDoc(content)
	case ".odt", ".rtf":
		doc, err = extractWithCat(path)
	default:
		doc, err = extractPlain(content)
	}
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	doc.SourcePath = path
	doc.ContentHash = contentHash(content)
	doc.ID = "doc:" + doc.ContentHash[:16]
	doc.UnitCount = len(doc.Units)
	doc.CreatedAt = time.Now()
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Supported reports whether the extension (with leading dot) has an extractor.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".ppt", ".pptx", ".docx", ".odt", ".rtf", ".txt", ".md":
		return true
	}
	return false
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

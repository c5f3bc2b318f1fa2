package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/chunking"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/config"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/extract"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/kb"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/relevance"
)

// Pipeline turns source documents into scored, embedded chunks.
type Pipeline struct {
	extractor *extract.Extractor
	chunker   *chunking.Chunker
	scorer    *relevance.Scorer
	kb        *kb.KnowledgeBase
	ledger    *Ledger
	batch     config.IngestConfig
	logger    *zap.Logger
}

// NewPipeline wires the ingestion stages together.
func NewPipeline(knowledge *kb.KnowledgeBase, ledger *Ledger, chunkCfg config.ChunkingConfig, batchCfg config.IngestConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor: extract.NewExtractor(),
		chunker:   chunking.NewChunker(chunkCfg.ChunkSize, chunkCfg.Overlap),
		scorer:    relevance.NewScorer(relevance.Config{}),
		kb:        knowledge,
		ledger:    ledger,
		batch:     batchCfg,
		logger:    logger,
	}
}

// ProcessDocuments ingests the given files. Files already recorded in the
// ledger at their current modification time are skipped. One bad file never
// aborts the batch: its error is logged and reported in FailedFiles while
// the rest proceed.
func (p *Pipeline) ProcessDocuments(ctx context.Context, paths []string) *models.IngestResult {
	result := &models.IngestResult{Success: true}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Success = false
			result.Err = err.Error()
			break
		}

		fingerprint, err := Fingerprint(path)
		if err != nil {
			p.logger.Warn("file unreadable", zap.String("path", path), zap.Error(err))
			result.FailedFiles = append(result.FailedFiles, path)
			continue
		}
		if p.ledger.Seen(fingerprint) {
			p.logger.Debug("file unchanged, skipping", zap.String("path", path))
			continue
		}
		if p.ledger.SeenPath(path) {
			// Modified file: drop the stale chunks before re-ingesting.
			if err := p.kb.RemoveSource(ctx, filepath.Base(path)); err != nil {
				p.logger.Warn("stale chunk removal failed", zap.String("path", path), zap.Error(err))
			}
		}

		chunks, err := p.processOne(ctx, path)
		if err != nil {
			p.logger.Warn("ingestion failed", zap.String("path", path), zap.Error(err))
			result.FailedFiles = append(result.FailedFiles, path)
			continue
		}

		if err := p.ledger.MarkProcessed(fingerprint, path, chunks); err != nil {
			p.logger.Warn("ledger update failed", zap.String("path", path), zap.Error(err))
		}
		result.Processed++
		result.TotalChunks += chunks
		p.logger.Info("document ingested",
			zap.String("path", filepath.Base(path)), zap.Int("chunks", chunks))
	}

	if err := p.kb.Save(); err != nil {
		p.logger.Warn("saving vector indexes", zap.Error(err))
	}
	if len(result.FailedFiles) > 0 && result.Processed == 0 {
		result.Success = false
	}
	return result
}

// processOne extracts, chunks, scores, and indexes a single file, returning
// the number of chunks produced.
func (p *Pipeline) processOne(ctx context.Context, path string) (int, error) {
	doc, err := p.extractor.Extract(path)
	if err != nil {
		return 0, err
	}

	var chunks []models.Chunk
	if len(doc.Units) > 0 && isPresentation(path) {
		chunks = p.slideChunks(doc)
	} else {
		chunks = p.textChunks(doc, path)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no text extracted from %s", path)
	}

	if err := p.addBatched(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// textChunks sections the document text and packs each section into bounded
// chunks.
func (p *Pipeline) textChunks(doc *models.Document, path string) []models.Chunk {
	chunkType := models.ChunkTypeText
	if isPlainText(path) {
		chunkType = models.ChunkTypeTextFile
	}

	var chunks []models.Chunk
	for _, section := range chunking.SplitSections(doc.Text) {
		for _, text := range p.chunker.Split(section.Text) {
			chunks = append(chunks, p.buildChunk(doc, text, section.Title, chunkType, 0))
		}
	}
	return chunks
}

// slideChunks emits one chunk per slide plus one descriptive chunk per
// embedded image, so figure-heavy lectures stay searchable.
func (p *Pipeline) slideChunks(doc *models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, unit := range doc.Units {
		text := slideText(unit)
		if strings.TrimSpace(text) != "" {
			chunk := p.buildChunk(doc, text, unit.Title, models.ChunkTypeSlide, unit.Index)
			chunks = append(chunks, chunk)
		}
		for _, img := range unit.Images {
			desc := fmt.Sprintf("Slide %d image (%s)", unit.Index, img.Format)
			if unit.Title != "" {
				desc = fmt.Sprintf("Slide %d image (%s): %s", unit.Index, img.Format, unit.Title)
			}
			chunk := p.buildChunk(doc, desc, unit.Title, models.ChunkTypeImage, unit.Index)
			chunk.Meta.Extra = map[string]string{
				"image_data":   img.Data,
				"image_format": img.Format,
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func slideText(unit models.DocumentUnit) string {
	var b strings.Builder
	if unit.Title != "" {
		fmt.Fprintf(&b, "Slide %d: %s\n", unit.Index, unit.Title)
	} else {
		fmt.Fprintf(&b, "Slide %d\n", unit.Index)
	}
	b.WriteString(unit.Text)
	if unit.Notes != "" {
		b.WriteString("\nNotes: ")
		b.WriteString(unit.Notes)
	}
	return b.String()
}

// buildChunk scores and tags one chunk of text.
func (p *Pipeline) buildChunk(doc *models.Document, text, section string, chunkType models.ChunkType, unitIndex int) models.Chunk {
	kind := contentKind(section, chunkType)
	return models.Chunk{
		ID:   fmt.Sprintf("%s-%s", doc.ID, uuid.NewString()),
		Text: text,
		Meta: models.ChunkMeta{
			Source:         filepath.Base(doc.SourcePath),
			Section:        section,
			Type:           chunkType,
			UnitIndex:      unitIndex,
			RelevanceScore: p.scorer.Score(text, doc.SourcePath, kind),
			ExamSection:    relevance.ClassifySection(text),
			HighYieldTerms: p.scorer.HighYieldTags(text),
			Entities:       p.scorer.Entities(text),
		},
	}
}

var (
	caseSection    = regexp.MustCompile(`(?i)^(case|patient)\b`)
	physicsSection = regexp.MustCompile(`(?i)^(radiation safety|dose|image quality|artifacts|technique|protocol)\b`)
	findingSection = regexp.MustCompile(`(?i)findings\b`)
)

// contentKind maps a section title to the content category the scorer
// boosts: cases, physics material, and modality findings.
func contentKind(section string, chunkType models.ChunkType) string {
	switch {
	case caseSection.MatchString(section):
		return "case"
	case physicsSection.MatchString(section):
		return "physics"
	case findingSection.MatchString(section):
		return "finding"
	default:
		return string(chunkType)
	}
}

// addBatched stores chunks in fixed-size batches with a pause between them
// to bound embedder load on large documents.
func (p *Pipeline) addBatched(ctx context.Context, chunks []models.Chunk) error {
	size := p.batch.BatchSize
	if size <= 0 {
		size = 16
	}
	pause := time.Duration(p.batch.BatchPauseMS) * time.Millisecond

	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := p.kb.Add(ctx, chunks[start:end]); err != nil {
			return err
		}
		if pause > 0 && end < len(chunks) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}
	}
	return nil
}

func isPresentation(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ppt" || ext == ".pptx"
}

func isPlainText(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".txt" || ext == ".md"
}

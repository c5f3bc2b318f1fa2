package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/kb"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/pkg/utils"
)

const systemPrompt = "You are a radiology board exam tutor. Answer using the " +
	"provided source material. Be precise about imaging findings, modality " +
	"physics, and dose values. When sources disagree or do not cover the " +
	"question, say so rather than guessing. Keep answers focused on what a " +
	"CORE exam candidate needs."

const (
	defaultTopK = 5
	minTopK     = 3
	maxTopK     = 10

	historyTurns     = 3
	historyAnswerLen = 200
	cardContextLimit = 3
)

// Retriever is the chunk search surface the orchestrator needs.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]kb.SearchHit, error)
}

// CardSearcher surfaces flashcards relevant to a question. Optional; a nil
// searcher just means no card context in prompts.
type CardSearcher interface {
	SearchCards(ctx context.Context, query string, limit int) ([]models.FlashCard, error)
}

// Orchestrator retrieves context and generates answers, degrading to the
// built-in fallback when the backend is unreachable.
type Orchestrator struct {
	retriever Retriever
	cards     CardSearcher
	generator Generator
	fallback  *Fallback
	logger    *zap.Logger
}

// NewOrchestrator wires retrieval and generation together.
func NewOrchestrator(retriever Retriever, cards CardSearcher, generator Generator, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		cards:     cards,
		generator: generator,
		fallback:  &Fallback{},
		logger:    logger,
	}
}

// Ask answers the question using up to topK retrieved chunks plus any
// matching flashcards and the recent conversation history. An index that is
// not ready yet produces an answer without sources, and a backend failure
// never fails the call: the fallback answer is returned with Degraded set.
func (o *Orchestrator) Ask(ctx context.Context, question string, topK int, history []models.HistoryTurn) (*models.QueryResponse, error) {
	topK = clampTopK(topK)

	hits, err := o.retriever.Search(ctx, question, topK)
	if err != nil {
		if !errors.Is(err, kb.ErrUnavailable) {
			return nil, fmt.Errorf("retrieve context: %w", err)
		}
		// Answer from general knowledge when the index is not ready.
		o.logger.Warn("retrieval unavailable, answering without sources", zap.Error(err))
		hits = nil
	}
	sortByRelevance(hits)

	var cards []models.FlashCard
	if o.cards != nil {
		cards, err = o.cards.SearchCards(ctx, question, cardContextLimit)
		if err != nil {
			o.logger.Warn("flashcard context unavailable", zap.Error(err))
			cards = nil
		}
	}

	prompt := buildPrompt(question, hits, cards, history)

	answer, err := o.generator.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		o.logger.Warn("generation backend failed, using fallback",
			zap.String("backend", o.generator.Name()), zap.Error(err))
		return &models.QueryResponse{
			Answer:   o.fallback.Answer(question),
			Sources:  sourcesFromHits(hits),
			Success:  true,
			Degraded: true,
		}, nil
	}

	return &models.QueryResponse{
		Answer:  answer,
		Sources: sourcesFromHits(hits),
		Success: true,
	}, nil
}

func clampTopK(k int) int {
	if k == 0 {
		return defaultTopK
	}
	if k < minTopK {
		return minTopK
	}
	if k > maxTopK {
		return maxTopK
	}
	return k
}

// sortByRelevance orders hits by descending stored relevance score so the
// most exam-relevant material leads the prompt.
func sortByRelevance(hits []kb.SearchHit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Chunk.Meta.RelevanceScore > hits[j-1].Chunk.Meta.RelevanceScore; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// buildPrompt assembles the user prompt: numbered sources, flashcard notes,
// recent history, then the question.
func buildPrompt(question string, hits []kb.SearchHit, cards []models.FlashCard, history []models.HistoryTurn) string {
	var b strings.Builder

	if len(hits) > 0 {
		b.WriteString("Source material:\n\n")
		for i, hit := range hits {
			b.WriteString(sourceHeader(i+1, hit.Chunk.Meta))
			b.WriteString("\n")
			b.WriteString(hit.Chunk.Text)
			b.WriteString("\n\n")
		}
		b.WriteString(strings.Repeat("=", 40))
		b.WriteString("\n\n")
	} else {
		b.WriteString("No study material matched this question. Say so, then answer from general radiology knowledge and note that the answer is not grounded in the user's materials.\n\n")
	}

	if len(cards) > 0 {
		b.WriteString("Related flashcards from your deck:\n")
		for _, card := range cards {
			b.WriteString(fmt.Sprintf("- Q: %s A: %s\n",
				utils.Truncate(card.Front, 150), utils.Truncate(card.Back, 200)))
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		start := len(history) - historyTurns
		if start < 0 {
			start = 0
		}
		b.WriteString("Recent conversation:\n")
		for _, turn := range history[start:] {
			b.WriteString("Q: ")
			b.WriteString(turn.Question)
			b.WriteString("\nA: ")
			b.WriteString(utils.Truncate(turn.Answer, historyAnswerLen))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// sourceHeader renders one numbered source line, like
// [SOURCE 1] physics_review.pdf | Section: Dose | Slide 4 | Relevance: 42.5
func sourceHeader(n int, meta models.ChunkMeta) string {
	parts := []string{fmt.Sprintf("[SOURCE %d] %s", n, meta.Source)}
	if meta.Section != "" {
		parts = append(parts, "Section: "+meta.Section)
	}
	if meta.Type == models.ChunkTypeSlide || meta.Type == models.ChunkTypeImage {
		parts = append(parts, fmt.Sprintf("Slide %d", meta.UnitIndex))
	} else if page, ok := meta.Extra["page"]; ok {
		parts = append(parts, "Page "+page)
	}
	if meta.RelevanceScore > 0 {
		parts = append(parts, fmt.Sprintf("Relevance: %.1f", meta.RelevanceScore))
	}
	return strings.Join(parts, " | ")
}

func sourcesFromHits(hits []kb.SearchHit) []models.Source {
	sources := make([]models.Source, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, models.Source{
			Kind:      models.SourceKindDocument,
			Source:    hit.Chunk.Meta.Source,
			Unit:      hit.Chunk.Meta.UnitIndex,
			Section:   hit.Chunk.Meta.Section,
			Relevance: hit.Chunk.Meta.RelevanceScore,
		})
	}
	return sources
}

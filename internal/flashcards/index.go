package flashcards

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// indexedCard is the subset of a card that goes into the keyword index.
type indexedCard struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Deck  string   `json:"deck"`
	Tags  []string `json:"tags"`
}

// Index is a Bleve keyword index over the card fronts and backs. It feeds
// question answering: cards matching a question are quoted in the prompt as
// study context.
type Index struct {
	index bleve.Index
	store *Store
}

// NewIndex creates or opens the card index at path. The standard analyzer
// (lowercase, no stemming) keeps exact medical terms matchable.
func NewIndex(path string, store *Store) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open card index: %w", openErr)
		}
		return &Index{index: idx, store: store}, nil
	}

	im := bleve.NewIndexMapping()
	cardMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	cardMapping.AddFieldMappingsAt("front", textField)
	cardMapping.AddFieldMappingsAt("back", textField)
	cardMapping.AddFieldMappingsAt("deck", bleve.NewKeywordFieldMapping())
	cardMapping.AddFieldMappingsAt("tags", bleve.NewKeywordFieldMapping())
	im.DefaultMapping = cardMapping

	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create card index: %w", err)
	}
	return &Index{index: idx, store: store}, nil
}

// IndexCards adds or updates cards in the keyword index.
func (x *Index) IndexCards(cards ...*models.FlashCard) error {
	batch := x.index.NewBatch()
	for _, card := range cards {
		err := batch.Index(card.CardID, indexedCard{
			Front: card.Front,
			Back:  card.Back,
			Deck:  card.DeckName,
			Tags:  card.Tags,
		})
		if err != nil {
			return fmt.Errorf("index card %s: %w", card.CardID, err)
		}
	}
	return x.index.Batch(batch)
}

// RemoveCards deletes cards from the index.
func (x *Index) RemoveCards(ids ...string) error {
	batch := x.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return x.index.Batch(batch)
}

// SearchCards returns up to limit cards matching the query, best first.
func (x *Index) SearchCards(ctx context.Context, query string, limit int) ([]models.FlashCard, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("card search: %w", err)
	}

	out := make([]models.FlashCard, 0, len(results.Hits))
	for _, hit := range results.Hits {
		if card, ok := x.store.Get(hit.ID); ok {
			out = append(out, *card)
		}
	}
	return out, nil
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}

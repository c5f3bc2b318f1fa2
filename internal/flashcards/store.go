// Package flashcards manages the card collection: storage, SM-2 review
// scheduling, review sessions, imports, and keyword search.
package flashcards

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// ValidationError reports a bad review input (unknown card, quality out of
// range). It maps to a 400 at the API layer.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Store holds all cards in memory and persists them as one JSON file. Every
// mutation rewrites the file atomically (temp file then rename), so a crash
// mid-write never corrupts the collection.
type Store struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	cards map[string]*models.FlashCard
	order []string // insertion order, for stable listing
}

// NewStore loads the collection from path, starting empty when the file does
// not exist yet.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		cards:  make(map[string]*models.FlashCard),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read card store: %w", err)
	}

	var cards []*models.FlashCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parse card store %s: %w", path, err)
	}
	for _, card := range cards {
		s.cards[card.CardID] = card
		s.order = append(s.order, card.CardID)
	}
	return s, nil
}

// Add inserts or replaces cards and persists the collection. The in-memory
// collection is untouched when the write fails.
func (s *Store) Add(cards ...*models.FlashCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, order := s.cloneLocked()
	for _, card := range cards {
		if _, exists := next[card.CardID]; !exists {
			order = append(order, card.CardID)
		}
		next[card.CardID] = card
	}
	if err := s.persist(next, order); err != nil {
		return err
	}
	s.cards, s.order = next, order
	return nil
}

// Get returns the card with the given ID.
func (s *Store) Get(id string) (*models.FlashCard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	return card, ok
}

// All returns every card in insertion order.
func (s *Store) All() []*models.FlashCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.FlashCard, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.cards[id])
	}
	return out
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

// Remove deletes the cards with the given IDs and persists. Unknown IDs are
// ignored, and the in-memory collection is untouched when the write fails.
func (s *Store) Remove(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, _ := s.cloneLocked()
	var order []string
	for _, id := range s.order {
		if drop[id] {
			delete(next, id)
		} else {
			order = append(order, id)
		}
	}
	if err := s.persist(next, order); err != nil {
		return err
	}
	s.cards, s.order = next, order
	return nil
}

// Backup writes a timestamped copy of the collection next to the store file
// and returns its path.
func (s *Store) Backup() (string, error) {
	s.mu.RLock()
	data, err := marshalCards(s.cards, s.order)
	s.mu.RUnlock()
	if err != nil {
		return "", err
	}

	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(filepath.Dir(s.path),
		fmt.Sprintf("cards_backup_%s.json", stamp))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	s.logger.Info("card collection backed up", zap.String("path", backupPath))
	return backupPath, nil
}

// DueCards returns cards whose next review time is at or before now, ordered
// most overdue first. An empty deck matches every deck. A card with an
// unparsable next review time is treated as due, so schedule corruption
// surfaces in reviews instead of hiding cards.
func (s *Store) DueCards(now time.Time, deck string) []*models.FlashCard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type dated struct {
		card *models.FlashCard
		due  time.Time
	}
	var due []dated
	for _, id := range s.order {
		card := s.cards[id]
		if deck != "" && card.DeckName != deck {
			continue
		}
		t, err := time.Parse(time.RFC3339, card.NextReview)
		if err != nil {
			due = append(due, dated{card: card, due: time.Time{}})
			continue
		}
		if !t.After(now) {
			due = append(due, dated{card: card, due: t})
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })

	out := make([]*models.FlashCard, len(due))
	for i, d := range due {
		out[i] = d.card
	}
	return out
}

// NewCards returns up to limit cards with no successful repetitions, in
// collection order. A card that failed its only review counts as new again.
// An empty deck matches every deck.
func (s *Store) NewCards(deck string, limit int) []*models.FlashCard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.FlashCard
	for _, id := range s.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		card := s.cards[id]
		if deck != "" && card.DeckName != deck {
			continue
		}
		if card.Repetitions == 0 {
			out = append(out, card)
		}
	}
	return out
}

// cloneLocked copies the card map and order slice so a mutation can be built
// and persisted before it becomes visible. Caller must hold mu.
func (s *Store) cloneLocked() (map[string]*models.FlashCard, []string) {
	cards := make(map[string]*models.FlashCard, len(s.cards))
	for id, card := range s.cards {
		cards[id] = card
	}
	return cards, append([]string(nil), s.order...)
}

// persist writes the given collection state atomically. The store's own state
// is not touched, so callers commit in memory only after persist succeeds.
func (s *Store) persist(cards map[string]*models.FlashCard, order []string) error {
	data, err := marshalCards(cards, order)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create card store dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write card store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace card store: %w", err)
	}
	return nil
}

func marshalCards(cards map[string]*models.FlashCard, order []string) ([]byte, error) {
	list := make([]*models.FlashCard, 0, len(order))
	for _, id := range order {
		list = append(list, cards[id])
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cards: %w", err)
	}
	return data, nil
}

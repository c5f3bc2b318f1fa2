package flashcards

import (
	"fmt"
	"math"
	"time"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

const minEaseFactor = 1.3

// Review applies one SM-2 review with the given quality (0-5) to the card
// and persists the updated schedule. Quality 3 and above is a successful
// recall; below 3 resets the repetition streak. The ease factor is adjusted
// on every review, success or not, and never drops below 1.3. The schedule
// update is discarded when persisting fails.
func (s *Store) Review(cardID string, quality int, now time.Time) (*models.FlashCard, error) {
	if quality < 0 || quality > 5 {
		return nil, &ValidationError{Field: "quality", Msg: fmt.Sprintf("must be 0-5, got %d", quality)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok {
		return nil, &ValidationError{Field: "card_id", Msg: "unknown card " + cardID}
	}

	updated := *card
	applySM2(&updated, quality, now)

	next, order := s.cloneLocked()
	next[cardID] = &updated
	if err := s.persist(next, order); err != nil {
		return nil, err
	}
	s.cards, s.order = next, order
	return &updated, nil
}

func applySM2(card *models.FlashCard, quality int, now time.Time) {
	if quality >= 3 {
		switch card.Repetitions {
		case 0:
			card.IntervalDays = 1
		case 1:
			card.IntervalDays = 6
		default:
			card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.EaseFactor))
		}
		card.Repetitions++
		card.CorrectReviews++
	} else {
		card.Repetitions = 0
		card.IntervalDays = 1
	}

	q := float64(quality)
	card.EaseFactor += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	if card.EaseFactor < minEaseFactor {
		card.EaseFactor = minEaseFactor
	}

	card.TotalReviews++
	card.LastReview = now.Format(time.RFC3339)
	card.NextReview = now.AddDate(0, 0, card.IntervalDays).Format(time.RFC3339)
	card.Modified = now.Format(time.RFC3339)
}

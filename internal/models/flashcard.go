package models

import "time"

// FlashCard is a single study card with its spaced-repetition state.
// The scheduler is the only mutator of the SM-2 block; the dedup engine is
// the only deleter.
type FlashCard struct {
	CardID   string   `json:"card_id"`
	DeckName string   `json:"deck_name"`
	Front    string   `json:"front"`
	Back     string   `json:"back"`
	Tags     []string `json:"tags,omitempty"`
	Created  string   `json:"created"`
	Modified string   `json:"modified"`

	// SM-2 state
	EaseFactor   float64 `json:"ease_factor"`   // floor 1.3, initial 2.5
	IntervalDays int     `json:"interval"`      // days until next review, >= 1
	Repetitions  int     `json:"repetitions"`   // successful streak length
	NextReview   string  `json:"next_review"`   // RFC 3339
	LastReview   string  `json:"last_review"`   // RFC 3339, empty until first review

	TotalReviews   int `json:"total_reviews"`
	CorrectReviews int `json:"correct_reviews"`
}

// NewFlashCard returns a card with default SM-2 state, due immediately.
func NewFlashCard(id, deck, front, back string, tags []string, now time.Time) *FlashCard {
	ts := now.Format(time.RFC3339)
	return &FlashCard{
		CardID:       id,
		DeckName:     deck,
		Front:        front,
		Back:         back,
		Tags:         tags,
		Created:      ts,
		Modified:     ts,
		EaseFactor:   2.5,
		IntervalDays: 1,
		NextReview:   ts,
	}
}

// ReviewSession is one sitting of card reviews, finalized at session end.
type ReviewSession struct {
	SessionID     string `json:"session_id"`
	DeckName      string `json:"deck_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time,omitempty"`
	CardsReviewed int    `json:"cards_reviewed"`
	CardsCorrect  int    `json:"cards_correct"`
	CardsWrong    int    `json:"cards_wrong"`
}

// DuplicateTier orders duplicate groups by confidence.
type DuplicateTier string

const (
	TierExact       DuplicateTier = "exact"
	TierVerySimilar DuplicateTier = "very_similar"
	TierSimilar     DuplicateTier = "similar"
)

// DuplicateGroup is a transient cluster of equivalent cards with one
// designated primary. Recomputed on every dedup pass, never persisted.
type DuplicateGroup struct {
	PrimaryCardID    string        `json:"primary_card_id"`
	DuplicateCardIDs []string      `json:"duplicate_card_ids"`
	Similarity       float64       `json:"similarity_score"`
	Tier             DuplicateTier `json:"tier"`
}

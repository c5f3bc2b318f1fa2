package dedup

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/config"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

// Engine clusters duplicate cards using the configured weights and
// thresholds.
type Engine struct {
	cfg    config.DedupConfig
	logger *zap.Logger
}

// NewEngine returns an engine with the given dedup settings.
func NewEngine(cfg config.DedupConfig, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// FindDuplicates clusters the cards in two passes. Exact duplicates share a
// normalized content hash and form exact-tier groups. Remaining cards are
// compared pairwise on weighted front/back similarity; pairs at or above the
// very-similar threshold and the similar threshold form the lower tiers. The
// oldest card in each group is the primary. Groups are transient and
// recomputed on every call.
func (e *Engine) FindDuplicates(cards []*models.FlashCard) []models.DuplicateGroup {
	var groups []models.DuplicateGroup

	// Pass 1: exact matches by content hash.
	byHash := make(map[string][]*models.FlashCard)
	for _, card := range cards {
		h := ContentHash(card.Front, card.Back)
		byHash[h] = append(byHash[h], card)
	}
	clustered := make(map[string]bool)
	for _, group := range byHash {
		if len(group) < 2 {
			continue
		}
		ids := make([]string, 0, len(group)-1)
		for _, card := range group[1:] {
			ids = append(ids, card.CardID)
		}
		for _, card := range group {
			clustered[card.CardID] = true
		}
		groups = append(groups, models.DuplicateGroup{
			PrimaryCardID:    group[0].CardID,
			DuplicateCardIDs: ids,
			Similarity:       1.0,
			Tier:             models.TierExact,
		})
	}

	// Pass 2: pairwise near-duplicate comparison over the rest.
	var remaining []*models.FlashCard
	for _, card := range cards {
		if !clustered[card.CardID] {
			remaining = append(remaining, card)
		}
	}
	paired := make(map[string]bool)
	for i, a := range remaining {
		if paired[a.CardID] {
			continue
		}
		group := models.DuplicateGroup{PrimaryCardID: a.CardID}
		best := 0.0
		for _, b := range remaining[i+1:] {
			if paired[b.CardID] {
				continue
			}
			sim := e.similarity(a, b)
			if sim >= e.cfg.SimilarThreshold {
				group.DuplicateCardIDs = append(group.DuplicateCardIDs, b.CardID)
				paired[b.CardID] = true
				if sim > best {
					best = sim
				}
			}
		}
		if len(group.DuplicateCardIDs) == 0 {
			continue
		}
		paired[a.CardID] = true
		group.Similarity = best
		if best >= e.cfg.VerySimilarThreshold {
			group.Tier = models.TierVerySimilar
		} else {
			group.Tier = models.TierSimilar
		}
		groups = append(groups, group)
	}

	e.logger.Info("duplicate scan complete",
		zap.Int("cards", len(cards)), zap.Int("groups", len(groups)))
	return groups
}

// similarity is the weighted combination of front and back text similarity.
func (e *Engine) similarity(a, b *models.FlashCard) float64 {
	front := Ratio(Normalize(a.Front), Normalize(b.Front))
	back := Ratio(Normalize(a.Back), Normalize(b.Back))
	return e.cfg.FrontWeight*front + e.cfg.BackWeight*back
}

// CardStore is the mutation surface removal needs.
type CardStore interface {
	Backup() (string, error)
	Remove(ids ...string) error
}

// RemoveOptions selects which tiers are removed automatically.
type RemoveOptions struct {
	Exact       bool
	VerySimilar bool
	Similar     bool
}

// RemoveResult summarizes one removal run.
type RemoveResult struct {
	BackupPath string   `json:"backup_path"`
	Removed    []string `json:"removed"`
	Kept       int      `json:"groups_kept"`
}

// RemoveDuplicates backs up the collection and then deletes the non-primary
// members of every group whose tier is enabled. The backup always happens
// before any deletion.
func (e *Engine) RemoveDuplicates(store CardStore, groups []models.DuplicateGroup, opts RemoveOptions) (*RemoveResult, error) {
	backupPath, err := store.Backup()
	if err != nil {
		return nil, fmt.Errorf("backup before removal: %w", err)
	}

	result := &RemoveResult{BackupPath: backupPath}
	for _, group := range groups {
		remove := false
		switch group.Tier {
		case models.TierExact:
			remove = opts.Exact
		case models.TierVerySimilar:
			remove = opts.VerySimilar
		case models.TierSimilar:
			remove = opts.Similar
		}
		if !remove {
			result.Kept++
			continue
		}
		result.Removed = append(result.Removed, group.DuplicateCardIDs...)
	}

	if len(result.Removed) > 0 {
		if err := store.Remove(result.Removed...); err != nil {
			return nil, fmt.Errorf("remove duplicates: %w", err)
		}
	}
	e.logger.Info("duplicates removed",
		zap.Int("removed", len(result.Removed)),
		zap.Int("kept_groups", result.Kept),
		zap.String("backup", backupPath))
	return result, nil
}

package flashcards

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/pkg/utils"
)

// ImportXLSX reads cards from a spreadsheet. The first sheet is used; column
// A is the front, column B the back, optional column C space-separated tags.
// A header row is skipped when its first cell looks like a label.
func ImportXLSX(path string, logger *zap.Logger) ([]*models.FlashCard, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	deck := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	now := time.Now()

	var cards []*models.FlashCard
	skipped := 0
	for i, row := range rows {
		if len(row) < 2 {
			skipped++
			continue
		}
		front := utils.CollapseSpaces(row[0])
		back := utils.CollapseSpaces(row[1])
		if front == "" || back == "" {
			skipped++
			continue
		}
		if i == 0 && isHeaderRow(front) {
			continue
		}

		var tags []string
		if len(row) > 2 {
			tags = strings.Fields(row[2])
		}
		cards = append(cards, models.NewFlashCard(uuid.NewString(), deck, front, back, tags, now))
	}

	logger.Info("spreadsheet import finished",
		zap.String("file", filepath.Base(path)),
		zap.Int("cards", len(cards)),
		zap.Int("skipped", skipped))
	return cards, nil
}

func isHeaderRow(first string) bool {
	switch strings.ToLower(first) {
	case "front", "question", "q", "prompt":
		return true
	}
	return false
}

package flashcards

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/pkg/utils"
)

// Anki note fields are separated by the unit separator control character.
const ankiFieldSep = "\x1f"

// ImportAPKG reads an Anki .apkg export and returns its notes as cards.
// The archive's collection database is extracted to a temp file, since the
// sqlite driver needs a real path.
func ImportAPKG(path string, logger *zap.Logger) ([]*models.FlashCard, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open apkg %s: %w", path, err)
	}
	defer archive.Close()

	dbPath, cleanup, err := extractCollection(archive)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open anki collection: %w", err)
	}
	defer db.Close()

	decks, err := readDeckNames(db)
	if err != nil {
		logger.Warn("anki deck names unreadable, using file name", zap.Error(err))
		decks = map[int64]string{}
	}
	fallbackDeck := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	noteDecks, err := readNoteDecks(db)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT id, flds, tags FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("query anki notes: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var cards []*models.FlashCard
	skipped := 0
	for rows.Next() {
		var noteID int64
		var flds, tags string
		if err := rows.Scan(&noteID, &flds, &tags); err != nil {
			return nil, err
		}

		fields := strings.Split(flds, ankiFieldSep)
		if len(fields) < 2 {
			skipped++
			continue
		}
		front := utils.StripHTML(fields[0])
		back := utils.StripHTML(fields[1])
		if front == "" || back == "" {
			skipped++
			continue
		}

		deck := fallbackDeck
		if name, ok := decks[noteDecks[noteID]]; ok {
			deck = name
		}

		card := models.NewFlashCard(
			fmt.Sprintf("anki-%d", noteID),
			deck, front, back,
			strings.Fields(tags),
			now,
		)
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.Info("anki import finished",
		zap.String("file", filepath.Base(path)),
		zap.Int("cards", len(cards)),
		zap.Int("skipped", skipped))
	return cards, nil
}

// extractCollection copies the collection database out of the archive.
// Newer exports name it collection.anki21; older ones collection.anki2.
func extractCollection(archive *zip.ReadCloser) (string, func(), error) {
	var file *zip.File
	for _, name := range []string{"collection.anki21", "collection.anki2"} {
		for _, f := range archive.File {
			if f.Name == name {
				file = f
				break
			}
		}
		if file != nil {
			break
		}
	}
	if file == nil {
		return "", nil, fmt.Errorf("no collection database in archive")
	}

	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "anki-collection-*.db")
	if err != nil {
		return "", nil, fmt.Errorf("create temp collection: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("extract collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// readDeckNames parses the decks JSON from the col table.
func readDeckNames(db *sql.DB) (map[int64]string, error) {
	var decksJSON string
	if err := db.QueryRow(`SELECT decks FROM col LIMIT 1`).Scan(&decksJSON); err != nil {
		return nil, fmt.Errorf("read col.decks: %w", err)
	}
	var raw map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(decksJSON), &raw); err != nil {
		return nil, fmt.Errorf("parse decks json: %w", err)
	}
	decks := make(map[int64]string, len(raw))
	for idStr, d := range raw {
		var id int64
		if _, err := fmt.Sscanf(idStr, "%d", &id); err == nil {
			decks[id] = d.Name
		}
	}
	return decks, nil
}

// readNoteDecks maps note IDs to the deck of their first card.
func readNoteDecks(db *sql.DB) (map[int64]int64, error) {
	rows, err := db.Query(`SELECT nid, did FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("query anki cards: %w", err)
	}
	defer rows.Close()

	noteDecks := make(map[int64]int64)
	for rows.Next() {
		var nid, did int64
		if err := rows.Scan(&nid, &did); err != nil {
			return nil, err
		}
		if _, seen := noteDecks[nid]; !seen {
			noteDecks[nid] = did
		}
	}
	return noteDecks, rows.Err()
}

package flashcards

import (
	"archive/zip"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// writeTestAPKG builds a minimal Anki export with two notes.
func writeTestAPKG(t *testing.T, dir string) string {
	t.Helper()

	dbPath := filepath.Join(dir, "collection.anki2")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE col (id INTEGER PRIMARY KEY, decks TEXT);
	CREATE TABLE notes (id INTEGER PRIMARY KEY, flds TEXT, tags TEXT);
	CREATE TABLE cards (id INTEGER PRIMARY KEY, nid INTEGER, did INTEGER);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO col (id, decks) VALUES (1, ?)`,
		`{"1": {"name": "Physics"}, "2": {"name": "Chest"}}`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO notes (id, flds, tags) VALUES
		(100, '<b>What is kVp?</b>` + "\x1f" + `Peak kilovoltage &amp; beam quality', 'physics dose'),
		(101, 'Silhouette sign?` + "\x1f" + `Loss of a normal lung-soft tissue interface', ''),
		(102, 'front only no separator', '')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO cards (id, nid, did) VALUES (1, 100, 1), (2, 101, 2)`); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	apkgPath := filepath.Join(dir, "radiology_deck.apkg")
	out, err := os.Create(apkgPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(out)
	w, err := zw.Create("collection.anki2")
	if err != nil {
		t.Fatal(err)
	}
	src, err := os.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.Copy(w, src); err != nil {
		t.Fatal(err)
	}
	src.Close()
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	return apkgPath
}

func TestImportAPKG(t *testing.T) {
	path := writeTestAPKG(t, t.TempDir())
	cards, err := ImportAPKG(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 {
		t.Fatalf("imported %d cards, want 2 (malformed note skipped)", len(cards))
	}

	byID := map[string]int{}
	for i, c := range cards {
		byID[c.CardID] = i
	}
	physics := cards[byID["anki-100"]]
	if physics.Front != "What is kVp?" {
		t.Errorf("HTML not stripped from front: %q", physics.Front)
	}
	if physics.Back != "Peak kilovoltage beam quality" {
		t.Errorf("entity not stripped from back: %q", physics.Back)
	}
	if physics.DeckName != "Physics" {
		t.Errorf("deck = %q, want Physics", physics.DeckName)
	}
	if len(physics.Tags) != 2 || physics.Tags[0] != "physics" {
		t.Errorf("tags = %v", physics.Tags)
	}

	chest := cards[byID["anki-101"]]
	if chest.DeckName != "Chest" {
		t.Errorf("deck = %q, want Chest", chest.DeckName)
	}
	if chest.EaseFactor != 2.5 || chest.IntervalDays != 1 {
		t.Errorf("imported card missing default schedule: %+v", chest)
	}
}

func TestImportXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msk_cards.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Front", "Back", "Tags"},
		{"Segond fracture association?", "ACL tear", "msk knee"},
		{"", "orphan back", ""},
		{"Terry Thomas sign?", "Scapholunate dissociation"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	cards, err := ImportXLSX(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 {
		t.Fatalf("imported %d cards, want 2 (header and blank row skipped)", len(cards))
	}
	if cards[0].Front != "Segond fracture association?" || cards[0].Back != "ACL tear" {
		t.Errorf("first card = %+v", cards[0])
	}
	if len(cards[0].Tags) != 2 {
		t.Errorf("tags = %v, want [msk knee]", cards[0].Tags)
	}
	if cards[0].DeckName != "msk_cards" {
		t.Errorf("deck = %q, want spreadsheet name", cards[0].DeckName)
	}
}

func TestCardIndexSearch(t *testing.T) {
	dir := t.TempDir()
	store := testStore(t)
	a := card("c1", "CT appearance of pulmonary embolism?", "Intraluminal filling defect on CTA")
	b := card("c2", "MRI sequence for cartilage?", "Proton density fat saturated")
	store.Add(a, b)

	idx, err := NewIndex(filepath.Join(dir, "cards.bleve"), store)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	if err := idx.IndexCards(a, b); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.SearchCards(context.Background(), "pulmonary embolism", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 || hits[0].CardID != "c1" {
		t.Fatalf("hits = %+v, want c1 first", hits)
	}

	if err := idx.RemoveCards("c1"); err != nil {
		t.Fatal(err)
	}
	hits, _ = idx.SearchCards(context.Background(), "pulmonary embolism", 5)
	for _, h := range hits {
		if h.CardID == "c1" {
			t.Error("removed card still indexed")
		}
	}
}

package dedup

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/config"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

func testEngine() *Engine {
	cfg := config.DedupConfig{
		FrontWeight:          0.6,
		BackWeight:           0.4,
		SimilarThreshold:     0.85,
		VerySimilarThreshold: 0.95,
	}
	return NewEngine(cfg, zap.NewNop())
}

func mkCard(id, front, back string) *models.FlashCard {
	return models.NewFlashCard(id, "radiology", front, back, nil, time.Now())
}

func TestNormalize(t *testing.T) {
	got := Normalize("<b>What is  ALARA?</b>&nbsp; (dose!)")
	if got != "what is alara dose" {
		t.Errorf("got %q", got)
	}
}

func TestContentHashEquivalence(t *testing.T) {
	a := ContentHash("What is ALARA?", "As low as reasonably achievable.")
	b := ContentHash("<i>What is ALARA</i>", "as low as   reasonably achievable")
	if a != b {
		t.Error("formatting variants should hash identically")
	}
	c := ContentHash("What is ALARA?", "A dose principle.")
	if a == c {
		t.Error("different content should hash differently")
	}
}

func TestRatio(t *testing.T) {
	if Ratio("abc", "abc") != 1 {
		t.Error("identical strings should be 1")
	}
	if Ratio("", "") != 0 {
		t.Error("two empty strings should be 0")
	}
	if Ratio("abc", "") != 0 {
		t.Error("empty versus non-empty should be 0")
	}
	// One substitution in four characters: 1 - 1/4.
	if got := Ratio("kitten", "mitten"); got < 0.8 || got > 0.9 {
		t.Errorf("Ratio(kitten, mitten) = %f", got)
	}
	if Ratio("abc", "xy") < 0 || Ratio("abc", "xy") > 1 {
		t.Error("ratio out of [0,1]")
	}
	// Symmetric.
	if Ratio("chest ct", "chest cta") != Ratio("chest cta", "chest ct") {
		t.Error("ratio must be symmetric")
	}
}

func TestFindDuplicatesExact(t *testing.T) {
	e := testEngine()
	cards := []*models.FlashCard{
		mkCard("a", "What is ALARA?", "As low as reasonably achievable"),
		mkCard("b", "<b>What is ALARA?</b>", "as low as reasonably achievable"),
		mkCard("c", "Completely different card", "About something else entirely"),
	}
	groups := e.FindDuplicates(cards)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.Tier != models.TierExact || g.Similarity != 1.0 {
		t.Errorf("group = %+v, want exact tier", g)
	}
	if g.PrimaryCardID != "a" || len(g.DuplicateCardIDs) != 1 || g.DuplicateCardIDs[0] != "b" {
		t.Errorf("group membership = %+v", g)
	}
}

func TestFindDuplicatesNearMatch(t *testing.T) {
	e := testEngine()
	cards := []*models.FlashCard{
		mkCard("a", "What radiograph sign suggests pneumoperitoneum?", "Free air under the diaphragm on upright film"),
		mkCard("b", "What radiograph sign suggests pneumoperitoneum!?", "Free air under the diaphragm on an upright film"),
		mkCard("c", "MRI sequence for acute stroke?", "Diffusion weighted imaging"),
	}
	groups := e.FindDuplicates(cards)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Tier != models.TierVerySimilar {
		t.Errorf("tier = %s (similarity %f), want very_similar", g.Tier, g.Similarity)
	}
	if g.PrimaryCardID != "a" {
		t.Errorf("primary = %s, want a (first seen)", g.PrimaryCardID)
	}
}

func TestFindDuplicatesNoFalsePositives(t *testing.T) {
	e := testEngine()
	cards := []*models.FlashCard{
		mkCard("a", "CT sign of aortic dissection?", "Intimal flap separating true and false lumen"),
		mkCard("b", "US sign of appendicitis?", "Non-compressible tube over 6 mm"),
		mkCard("c", "Most common benign liver lesion?", "Hemangioma"),
	}
	if groups := e.FindDuplicates(cards); len(groups) != 0 {
		t.Errorf("unrelated cards grouped: %+v", groups)
	}
}

type fakeStore struct {
	backupCalled bool
	removedAfter bool
	removed      []string
	backupErr    error
}

func (f *fakeStore) Backup() (string, error) {
	f.backupCalled = true
	return "/tmp/backup.json", f.backupErr
}

func (f *fakeStore) Remove(ids ...string) error {
	if !f.backupCalled {
		f.removedAfter = true
	}
	f.removed = append(f.removed, ids...)
	return nil
}

func TestRemoveDuplicatesBackupFirst(t *testing.T) {
	e := testEngine()
	store := &fakeStore{}
	groups := []models.DuplicateGroup{
		{PrimaryCardID: "a", DuplicateCardIDs: []string{"b"}, Similarity: 1, Tier: models.TierExact},
		{PrimaryCardID: "c", DuplicateCardIDs: []string{"d"}, Similarity: 0.9, Tier: models.TierSimilar},
	}

	result, err := e.RemoveDuplicates(store, groups, RemoveOptions{Exact: true, VerySimilar: true})
	if err != nil {
		t.Fatal(err)
	}
	if store.removedAfter {
		t.Error("removal happened before backup")
	}
	if len(result.Removed) != 1 || result.Removed[0] != "b" {
		t.Errorf("removed = %v, want [b] (similar tier not enabled)", result.Removed)
	}
	if result.Kept != 1 {
		t.Errorf("kept = %d, want 1", result.Kept)
	}
	if result.BackupPath == "" {
		t.Error("backup path missing from result")
	}
}

func TestRemoveDuplicatesBackupFailureAborts(t *testing.T) {
	e := testEngine()
	store := &fakeStore{backupErr: errTest}
	groups := []models.DuplicateGroup{
		{PrimaryCardID: "a", DuplicateCardIDs: []string{"b"}, Tier: models.TierExact},
	}
	if _, err := e.RemoveDuplicates(store, groups, RemoveOptions{Exact: true}); err == nil {
		t.Fatal("expected error when backup fails")
	}
	if len(store.removed) != 0 {
		t.Error("cards removed despite backup failure")
	}
}

var errTest = &testErr{}

type testErr struct{}

func (*testErr) Error() string { return "boom" }

package vector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestIndexAddSearch(t *testing.T) {
	idx, err := NewIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	err = idx.Add(ctx,
		[]string{"a", "b", "c"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Fatalf("Size = %d, want 3", idx.Size())
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ID != "a" {
		t.Errorf("top hit = %q, want a", hits[0].ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not ordered by descending score")
	}
}

func TestIndexDimensionMismatch(t *testing.T) {
	idx, _ := NewIndex(3)
	ctx := context.Background()
	if err := idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}}); err == nil {
		t.Error("expected error adding 2-dim vector to 3-dim index")
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("expected error searching with 2-dim query")
	}
	if _, err := NewIndex(0); err == nil {
		t.Error("expected error for zero dimensions")
	}
}

func TestIndexRemove(t *testing.T) {
	idx, _ := NewIndex(2)
	ctx := context.Background()
	idx.Add(ctx, []string{"x", "y"}, [][]float32{{1, 0}, {0, 1}})
	if err := idx.Remove(ctx, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Fatalf("Size after remove = %d, want 1", idx.Size())
	}
	hits, _ := idx.Search(ctx, []float32{1, 0}, 5)
	for _, h := range hits {
		if h.ID == "x" {
			t.Error("removed vector still returned by search")
		}
	}
}

func TestIndexSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb", "texts.vec")

	idx, _ := NewIndex(4)
	ctx := context.Background()
	idx.Add(ctx, []string{"chunk-1", "chunk-2"}, [][]float32{
		{0.5, 0.5, 0.5, 0.5},
		{1, 0, 0, 0},
	})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewIndex(4)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("loaded Size = %d, want 2", loaded.Size())
	}
	hits, _ := loaded.Search(ctx, []float32{1, 0, 0, 0}, 1)
	if len(hits) != 1 || hits[0].ID != "chunk-2" {
		t.Errorf("loaded index search = %+v, want chunk-2 on top", hits)
	}
}

func TestIndexLoadMissingFile(t *testing.T) {
	idx, _ := NewIndex(4)
	if err := idx.Load(filepath.Join(t.TempDir(), "absent.vec")); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("Size = %d, want 0", idx.Size())
	}
}

func TestIndexLoadDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "texts.vec")

	idx, _ := NewIndex(2)
	idx.Add(context.Background(), []string{"a"}, [][]float32{{1, 0}})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	other, _ := NewIndex(3)
	if err := other.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Errorf("identical vectors = %f, want 1", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors = %f, want 0", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths = %f, want 0", got)
	}
}

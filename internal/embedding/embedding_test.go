package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	a, err := e.Embed(context.Background(), "pulmonary embolism findings")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(context.Background(), "pulmonary embolism findings")
	c, _ := e.Embed(context.Background(), "renal cyst classification")

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same text produced different vectors at %d", i)
		}
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestMockEmbedderUnitNorm(t *testing.T) {
	e := NewMockEmbedder(0)
	if e.Dimensions() != 384 {
		t.Errorf("default dimensions = %d, want 384", e.Dimensions())
	}
	vec, err := e.Embed(context.Background(), "chest radiograph")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("norm^2 = %f, want 1", sum)
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Get("a") // refresh a
	c.Put("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Error("expected b evicted as least recently used")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a retained after refresh")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestHashTokenizer(t *testing.T) {
	tok := &HashTokenizer{}
	ids, mask, types := tok.Tokenize("CT dose report", 8)
	if len(ids) != 8 || len(mask) != 8 || len(types) != 8 {
		t.Fatalf("lengths = %d/%d/%d, want 8", len(ids), len(mask), len(types))
	}
	if ids[0] != 101 {
		t.Errorf("ids[0] = %d, want CLS 101", ids[0])
	}
	if ids[4] != 102 {
		t.Errorf("ids[4] = %d, want SEP 102 after 3 words", ids[4])
	}

	// Uncased: case differences must not change token ids.
	upper, _, _ := tok.Tokenize("DOSE", 4)
	lower, _, _ := tok.Tokenize("dose", 4)
	if upper[1] != lower[1] {
		t.Error("tokenizer is case sensitive")
	}
}


package embed

import (
	"context"
	"math"
	"testing"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestEmbed_Deterministic(t *testing.T) {
	e := NewHashEmbedder(0)
	ctx := context.Background()

	first, err := e.Embed(ctx, []string{"Model Context Protocol connects tools"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Embed(ctx, []string{"Model Context Protocol connects tools"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("embedding not deterministic at dim %d", i)
		}
	}
	if len(first[0]) != DefaultDimensions {
		t.Fatalf("dims = %d, want %d", len(first[0]), DefaultDimensions)
	}
}

func TestEmbed_SimilarTextScoresHigherThanUnrelated(t *testing.T) {
	e := NewHashEmbedder(0)
	vecs, err := e.Embed(context.Background(), []string{
		"retrieval augmented generation with vector search",
		"vector search for retrieval augmented generation",
		"grilled cheese sandwich recipe with tomato soup",
	})
	if err != nil {
		t.Fatal(err)
	}

	related := cosine(vecs[0], vecs[1])
	unrelated := cosine(vecs[0], vecs[2])
	if related <= unrelated {
		t.Fatalf("related=%v should beat unrelated=%v", related, unrelated)
	}
}

func TestEmbed_NormalizedAndCaseInsensitive(t *testing.T) {
	e := NewHashEmbedder(64)
	vecs, err := e.Embed(context.Background(), []string{"Course Outline", "course outline"})
	if err != nil {
		t.Fatal(err)
	}

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("vector not unit-normalized: %v", norm)
	}
	if sim := cosine(vecs[0], vecs[1]); sim < 0.999 {
		t.Fatalf("case difference should not change embedding, sim=%v", sim)
	}
}

func TestEmbed_EmptyTextYieldsZeroVector(t *testing.T) {
	e := NewHashEmbedder(32)
	vecs, err := e.Embed(context.Background(), []string{""})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vecs[0] {
		if v != 0 {
			t.Fatal("empty text must embed to the zero vector")
		}
	}
}

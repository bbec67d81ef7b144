// Package embed provides a deterministic local embedder based on feature
// hashing. It needs no network or model weights, which keeps ingestion and
// tests hermetic; the model.Embedder interface lets deployments swap in an
// API-backed embedder without touching retrieval.
package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const DefaultDimensions = 256

type HashEmbedder struct {
	dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, e.embedOne(text))
	}
	return out, nil
}

// embedOne hashes unigrams and adjacent bigrams into a fixed-size vector and
// L2-normalizes it. Bigrams carry a smaller weight; they add word-order
// signal without letting rare pairs dominate.
func (e *HashEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dims)
	tokens := tokenize(text)

	for idx, token := range tokens {
		vec[e.bucket(token)] += 1.0
		if idx+1 < len(tokens) {
			vec[e.bucket(token+" "+tokens[idx+1])] += 0.5
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for idx := range vec {
		vec[idx] *= inv
	}
	return vec
}

func (e *HashEmbedder) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dims))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Package index provides exact nearest-neighbor lookup over in-memory
// vectors. The corpus here is a handful of courses, so brute-force cosine
// scoring is both simpler and faster than an approximate structure.
package index

import (
	"errors"
	"math"
	"sort"
	"sync"
)

type CosineIndex struct {
	mu      sync.RWMutex
	vectors map[int64][]float32
}

func NewCosineIndex() *CosineIndex {
	return &CosineIndex{vectors: make(map[int64][]float32)}
}

func (i *CosineIndex) Add(label int64, vector []float32) error {
	if len(vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	copied := make([]float32, len(vector))
	copy(copied, vector)

	i.mu.Lock()
	i.vectors[label] = copied
	i.mu.Unlock()
	return nil
}

// Search scores every stored vector against the query and returns the top k
// labels, best first, with their cosine similarities.
func (i *CosineIndex) Search(vector []float32, k int) ([]int64, []float64, error) {
	if len(vector) == 0 {
		return nil, nil, errors.New("query vector cannot be empty")
	}
	if k <= 0 {
		return []int64{}, []float64{}, nil
	}

	type scored struct {
		label int64
		score float64
	}

	i.mu.RLock()
	candidates := make([]scored, 0, len(i.vectors))
	for label, stored := range i.vectors {
		candidates = append(candidates, scored{label: label, score: cosine(vector, stored)})
	}
	i.mu.RUnlock()

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score == candidates[b].score {
			return candidates[a].label < candidates[b].label
		}
		return candidates[a].score > candidates[b].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	labels := make([]int64, len(candidates))
	scores := make([]float64, len(candidates))
	for idx, c := range candidates {
		labels[idx] = c.label
		scores[idx] = c.score
	}
	return labels, scores, nil
}

func (i *CosineIndex) Delete(label int64) error {
	i.mu.Lock()
	delete(i.vectors, label)
	i.mu.Unlock()
	return nil
}

func (i *CosineIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// cosine tolerates mismatched lengths by scoring the shared prefix; a zero
// norm on either side yields zero similarity.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for idx := 0; idx < n; idx++ {
		dot += float64(a[idx]) * float64(b[idx])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

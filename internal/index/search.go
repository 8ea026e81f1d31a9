package index

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/domain/pattern"
)

// Hit is one search result: a pattern and its cosine similarity to the
// query vector.
type Hit struct {
	PatternID  pattern.ID
	Similarity float64
}

// Predicate filters candidate rows before they reach the heap, so an
// excluded domain never displaces a true top-k member.
type Predicate func(pattern.ID) bool

// Search returns the k highest-similarity rows matching predicate (nil
// means no filter), sorted by descending similarity with ties broken by
// ascending pattern ID. Vectors are assumed unit-norm, so cosine
// similarity reduces to a dot product.
func Search(s *Snapshot, query []float32, k int, predicate Predicate) ([]Hit, error) {
	if s.Len() == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", domain.ErrDimensionMismatch, len(query), s.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	h := make(hitHeap, 0, k)
	for _, row := range s.rows {
		if predicate != nil && !predicate(row.PatternID) {
			continue
		}
		cand := Hit{PatternID: row.PatternID, Similarity: dot(query, row.Vector)}

		if len(h) < k {
			heap.Push(&h, cand)
			continue
		}
		if better(cand, h[0]) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}

	out := []Hit(h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].PatternID < out[j].PatternID
	})
	return out, nil
}

// better reports whether a should displace b as the weakest member of a
// bounded top-k set: higher similarity wins; on an exact tie, the smaller
// pattern ID is kept, matching the deterministic tie-break applied to the
// final ordering.
func better(a, b Hit) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	return a.PatternID < b.PatternID
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// hitHeap is a bounded min-heap over Hit ordered so that the current
// weakest member of the kept set is always at the root, letting Search
// evict it in O(log k) when a stronger candidate arrives.
type hitHeap []Hit

func (h hitHeap) Len() int { return len(h) }

// Less reports whether i is weaker than j, so the heap root (index 0) is
// always the weakest kept candidate.
func (h hitHeap) Less(i, j int) bool { return better(h[j], h[i]) }

func (h hitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) { *h = append(*h, x.(Hit)) }

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

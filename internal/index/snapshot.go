// Package index implements the in-memory vector index: an immutable,
// atomically-swappable snapshot of pattern embeddings plus exhaustive
// cosine top-k search. Exhaustive scan is correct by construction (no ANN
// approximation) and, bounded to the tens-of-thousands-of-vectors scale
// this engine targets, fast enough to keep per-query latency sub-millisecond.
package index

import (
	"fmt"
	"sync/atomic"

	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/domain/pattern"
)

// Row is one pattern's embedding, keyed by pattern identity.
type Row struct {
	PatternID pattern.ID
	Vector    []float32
}

var snapshotSeq atomic.Uint64

// Snapshot is an immutable (patterns, vectors, model descriptor) triple
// shared read-only by all concurrent queries. A snapshot is produced by
// the Index Loader and published into the Classifier's single atomic slot.
type Snapshot struct {
	id              uint64
	modelDescriptor string
	dimension       int
	rows            []Row
	patterns        map[pattern.ID]pattern.Pattern
	rowByPattern    map[pattern.ID]int
}

// Build validates rows for uniform dimension and unique pattern IDs, and
// assembles an immutable Snapshot bundled with its pattern catalogue.
func Build(rows []Row, patterns map[pattern.ID]pattern.Pattern, modelDescriptor string) (*Snapshot, error) {
	rowByPattern := make(map[pattern.ID]int, len(rows))
	dimension := 0
	if len(rows) > 0 {
		dimension = len(rows[0].Vector)
	}

	for i, r := range rows {
		if len(r.Vector) != dimension {
			return nil, fmt.Errorf(
				"%w: row %d (pattern %q) has dimension %d, expected %d",
				domain.ErrLoadFailure, i, r.PatternID, len(r.Vector), dimension,
			)
		}
		if _, dup := rowByPattern[r.PatternID]; dup {
			return nil, fmt.Errorf("%w: pattern_id %q appears more than once", domain.ErrDuplicatePattern, r.PatternID)
		}
		rowByPattern[r.PatternID] = i
	}

	return &Snapshot{
		id:              snapshotSeq.Add(1),
		modelDescriptor: modelDescriptor,
		dimension:       dimension,
		rows:            rows,
		patterns:        patterns,
		rowByPattern:    rowByPattern,
	}, nil
}

// ID returns a process-local, monotonically increasing snapshot identifier.
func (s *Snapshot) ID() uint64 { return s.id }

// ModelDescriptor returns the embedding model descriptor this snapshot was
// built with.
func (s *Snapshot) ModelDescriptor() string { return s.modelDescriptor }

// Dimension returns the vector dimension D shared by every row.
func (s *Snapshot) Dimension() int { return s.dimension }

// Len returns the number of rows (patterns) in the snapshot.
func (s *Snapshot) Len() int { return len(s.rows) }

// Lookup hydrates a Pattern by ID; fails if absent, which should not
// happen under the invariant that vectors and patterns share IDs.
func (s *Snapshot) Lookup(id pattern.ID) (pattern.Pattern, error) {
	p, ok := s.patterns[id]
	if !ok {
		return pattern.Pattern{}, fmt.Errorf("%w: %q", domain.ErrUnknownPattern, id)
	}
	return p, nil
}

// DomainOf returns the domain of a pattern by ID, empty string if unknown
// or unset. Used by the Classifier to build the domain-filter predicate
// without a full hydrate on every candidate row.
func (s *Snapshot) DomainOf(id pattern.ID) string {
	p, ok := s.patterns[id]
	if !ok {
		return ""
	}
	return p.Domain()
}

// PatternsByDomain returns the pattern count per domain, omitting patterns
// with no domain set. Used by the Gateway's /status introspection.
func (s *Snapshot) PatternsByDomain() map[string]int {
	counts := make(map[string]int)
	for _, p := range s.patterns {
		if d := p.Domain(); d != "" {
			counts[d]++
		}
	}
	return counts
}

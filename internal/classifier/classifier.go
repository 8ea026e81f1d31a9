// Package classifier implements the core classify operation: embed the
// weave unit's text, search the currently published vector index snapshot,
// and hydrate the result into a ranked classification response.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/domain/classify"
	"github.com/kailas-cloud/patternengine/internal/domain/pattern"
	"github.com/kailas-cloud/patternengine/internal/embedding"
	"github.com/kailas-cloud/patternengine/internal/index"
)

// Classifier holds the current index snapshot behind an atomic pointer so
// that Classify never blocks on, or is blocked by, a concurrent reload.
type Classifier struct {
	embedder embedding.Provider
	snapshot atomic.Pointer[index.Snapshot]
}

// New constructs a Classifier with no snapshot loaded; Classify returns
// ErrIndexEmpty until Publish is called at least once.
func New(embedder embedding.Provider) *Classifier {
	return &Classifier{embedder: embedder}
}

// Publish atomically swaps in a newly built snapshot. Requests in flight
// against the previous snapshot complete unaffected; the old snapshot is
// simply dropped, to be reclaimed once its last reader returns.
func (c *Classifier) Publish(snap *index.Snapshot) {
	c.snapshot.Store(snap)
}

// CurrentSnapshot returns the snapshot currently serving queries, or nil
// if none has been published yet.
func (c *Classifier) CurrentSnapshot() *index.Snapshot {
	return c.snapshot.Load()
}

// Classify runs the classification algorithm against the currently
// published snapshot and returns a response, never an error for ordinary
// no-match outcomes — failures are reserved for structural and
// infrastructural problems the Gateway must map to an HTTP status.
func (c *Classifier) Classify(ctx context.Context, req classify.Request) (classify.Response, error) {
	start := time.Now()

	snap := c.snapshot.Load()
	if snap == nil {
		return classify.Response{}, domain.ErrIndexEmpty
	}

	text := strings.TrimSpace(req.WeaveUnit().Text())
	if text == "" {
		return classify.Response{}, domain.ErrEmptyText
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return classify.Response{}, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}

	if err := ctx.Err(); err != nil {
		return classify.Response{}, fmt.Errorf("%w: %v", domain.ErrDeadlineExceeded, err)
	}

	k := req.MaxAlternatives() + 1

	var predicate index.Predicate
	if domainFilter, ok := req.FilterByDomain(); ok && domainFilter != "" {
		predicate = func(id pattern.ID) bool { return snap.DomainOf(id) == domainFilter }
	}

	hits, err := index.Search(snap, vec, k, predicate)
	if err != nil {
		return classify.Response{}, fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
	}

	if err := ctx.Err(); err != nil {
		return classify.Response{}, fmt.Errorf("%w: %v", domain.ErrDeadlineExceeded, err)
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if len(hits) == 0 {
		return classify.NewResponse(req.RequestID(), nil, nil, elapsed, classify.StatusNoMatch, ""), nil
	}

	matches := make([]classify.Match, 0, len(hits))
	for _, h := range hits {
		p, err := snap.Lookup(h.PatternID)
		if err != nil {
			return classify.Response{}, err
		}
		matches = append(matches, classify.NewMatch(h.PatternID.String(), confidence(h.Similarity), p.Metadata()))
	}

	best := matches[0]
	if best.Confidence() < req.ConfidenceThreshold() {
		alternatives := matches
		if len(alternatives) > req.MaxAlternatives() {
			alternatives = alternatives[:req.MaxAlternatives()]
		}
		return classify.NewResponse(req.RequestID(), nil, alternatives, elapsed, classify.StatusNoMatch, ""), nil
	}

	alternatives := matches[1:]
	if len(alternatives) > req.MaxAlternatives() {
		alternatives = alternatives[:req.MaxAlternatives()]
	}
	return classify.NewResponse(req.RequestID(), &best, alternatives, elapsed, classify.StatusSuccess, ""), nil
}

// confidence rescales cosine similarity in [-1,1] to [0,1], clamped to
// absorb floating-point drift at the boundaries.
func confidence(similarity float64) float64 {
	c := (similarity + 1) / 2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

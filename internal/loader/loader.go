// Package loader implements the Index Loader: it fetches a serialized
// pattern+embedding artifact, validates it against the active embedding
// model, builds a new vector index snapshot (re-embedding from source
// texts when the artifact carries patterns only), and publishes it
// atomically into the Classifier.
package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/domain/pattern"
	"github.com/kailas-cloud/patternengine/internal/embedding"
	"github.com/kailas-cloud/patternengine/internal/index"
)

// Publisher is the subset of the Classifier's surface the loader needs,
// kept narrow so the loader can be tested without the classify package.
type Publisher interface {
	Publish(snap *index.Snapshot)
}

// Loader builds and publishes index snapshots from artifacts.
type Loader struct {
	source    ArtifactSource
	embedder  embedding.Provider
	batch     embedding.BatchProvider // optional, used only for patterns-only artifacts
	publisher Publisher
	log       *zap.Logger
}

// New constructs a Loader. batch may be nil; Reload then fails with
// ErrLoadFailure if it is ever handed a non-precomputed artifact.
func New(source ArtifactSource, embedder embedding.Provider, batch embedding.BatchProvider, publisher Publisher, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{source: source, embedder: embedder, batch: batch, publisher: publisher, log: log}
}

// Reload fetches the artifact from the Loader's configured source,
// validates and builds a new snapshot, and publishes it. On any
// validation failure the previously published snapshot is left untouched.
func (l *Loader) Reload(ctx context.Context) (*index.Snapshot, error) {
	return l.ReloadFrom(ctx, l.source)
}

// ReloadFrom behaves like Reload but fetches from an explicit source
// instead of the Loader's default, e.g. a one-off override requested
// through POST /reload-patterns.
func (l *Loader) ReloadFrom(ctx context.Context, source ArtifactSource) (*index.Snapshot, error) {
	raw, err := source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch artifact: %v", domain.ErrLoadFailure, err)
	}

	art, err := parseArtifact(raw)
	if err != nil {
		return nil, err
	}

	if art.Header.ModelDescriptor != l.embedder.Descriptor() {
		return nil, fmt.Errorf(
			"%w: artifact built with %q, loaded model is %q",
			domain.ErrIncompatibleModel, art.Header.ModelDescriptor, l.embedder.Descriptor(),
		)
	}
	if art.Header.VectorDim != l.embedder.Dimension() {
		return nil, fmt.Errorf(
			"%w: artifact vectorDim %d, loaded model dimension %d",
			domain.ErrDimensionMismatch, art.Header.VectorDim, l.embedder.Dimension(),
		)
	}
	if len(art.Records) == 0 {
		return nil, fmt.Errorf("%w: artifact has zero records", domain.ErrEmptyIndex)
	}

	patterns := make(map[pattern.ID]pattern.Pattern, len(art.Records))
	rows := make([]index.Row, 0, len(art.Records))
	var toEmbedTexts []string
	var toEmbedIdx []int

	for i, rec := range art.Records {
		p, err := toDomainPattern(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := patterns[p.ID()]; dup {
			return nil, fmt.Errorf("%w: %q appears more than once", domain.ErrDuplicatePattern, p.ID())
		}
		patterns[p.ID()] = p

		row := index.Row{PatternID: p.ID()}
		if art.Header.Precomputed {
			row.Vector = rec.Vector
		} else {
			toEmbedTexts = append(toEmbedTexts, p.EmbeddingText())
			toEmbedIdx = append(toEmbedIdx, i)
		}
		rows = append(rows, row)
	}

	if !art.Header.Precomputed {
		if err := l.fillFromBatchEmbedder(ctx, rows, toEmbedTexts, toEmbedIdx); err != nil {
			return nil, err
		}
	}

	snap, err := index.Build(rows, patterns, art.Header.ModelDescriptor)
	if err != nil {
		return nil, err
	}

	l.publisher.Publish(snap)
	l.log.Info("index reloaded",
		zap.Uint64("snapshot_id", snap.ID()),
		zap.Int("pattern_count", snap.Len()),
		zap.String("model_descriptor", snap.ModelDescriptor()),
	)
	return snap, nil
}

// fillFromBatchEmbedder re-embeds the patterns-only subset of rows using
// the cold-path batch embedder, which must be configured for this mode.
func (l *Loader) fillFromBatchEmbedder(ctx context.Context, rows []index.Row, texts []string, idx []int) error {
	if len(texts) == 0 {
		return nil
	}
	if l.batch == nil {
		return fmt.Errorf("%w: artifact is patterns-only but no batch embedder is configured", domain.ErrLoadFailure)
	}

	vectors, err := l.batch.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: re-embed patterns: %v", domain.ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: batch embedder returned %d vectors for %d texts", domain.ErrEmbeddingFailure, len(vectors), len(texts))
	}

	for j, i := range idx {
		rows[i].Vector = vectors[j]
	}
	return nil
}

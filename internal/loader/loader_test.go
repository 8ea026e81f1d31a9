package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/index"
)

type fakeSource struct {
	data []byte
	err  error
}

func (s *fakeSource) Fetch(context.Context) ([]byte, error) { return s.data, s.err }

type fakeEmbedder struct {
	dim        int
	descriptor string
}

func (e *fakeEmbedder) Dimension() int      { return e.dim }
func (e *fakeEmbedder) Descriptor() string  { return e.descriptor }
func (e *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, e.dim), nil
}

type fakeBatchEmbedder struct {
	vectors [][]float32
	err     error
}

func (b *fakeBatchEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return b.vectors, b.err
}

type fakePublisher struct {
	published *index.Snapshot
}

func (p *fakePublisher) Publish(snap *index.Snapshot) { p.published = snap }

const precomputedArtifact = `{
  "header": {"schemaVersion": 1, "modelDescriptor": "test-model", "vectorDim": 2, "count": 2, "precomputed": true},
  "records": [
    {"patternId": "a/b", "description": "desc a", "sampleTexts": ["s1"], "vector": [1, 0]},
    {"patternId": "c/d", "description": "desc c", "sampleTexts": ["s2"], "vector": [0, 1]}
  ]
}`

func TestReloadPrecomputedArtifact(t *testing.T) {
	source := &fakeSource{data: []byte(precomputedArtifact)}
	embedder := &fakeEmbedder{dim: 2, descriptor: "test-model"}
	publisher := &fakePublisher{}
	l := New(source, embedder, nil, publisher, nil)

	snap, err := l.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", snap.Len())
	}
	if publisher.published != snap {
		t.Error("expected Reload to publish the built snapshot")
	}
}

func TestReloadFromUsesGivenSourceNotDefault(t *testing.T) {
	defaultSource := &fakeSource{data: []byte(duplicatePatternArtifact)}
	override := &fakeSource{data: []byte(precomputedArtifact)}
	embedder := &fakeEmbedder{dim: 2, descriptor: "test-model"}
	publisher := &fakePublisher{}
	l := New(defaultSource, embedder, nil, publisher, nil)

	snap, err := l.ReloadFrom(context.Background(), override)
	if err != nil {
		t.Fatalf("ReloadFrom: %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("expected 2 rows from override source, got %d", snap.Len())
	}
}

const patternsOnlyArtifact = `{
  "header": {"schemaVersion": 1, "modelDescriptor": "test-model", "vectorDim": 2, "count": 1, "precomputed": false},
  "records": [
    {"patternId": "a/b", "description": "desc a", "sampleTexts": ["s1"]}
  ]
}`

func TestReloadPatternsOnlyArtifactUsesBatchEmbedder(t *testing.T) {
	source := &fakeSource{data: []byte(patternsOnlyArtifact)}
	embedder := &fakeEmbedder{dim: 2, descriptor: "test-model"}
	batch := &fakeBatchEmbedder{vectors: [][]float32{{0.6, 0.8}}}
	publisher := &fakePublisher{}
	l := New(source, embedder, batch, publisher, nil)

	snap, err := l.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", snap.Len())
	}
}

func TestReloadPatternsOnlyWithoutBatchEmbedderFails(t *testing.T) {
	source := &fakeSource{data: []byte(patternsOnlyArtifact)}
	embedder := &fakeEmbedder{dim: 2, descriptor: "test-model"}
	publisher := &fakePublisher{}
	l := New(source, embedder, nil, publisher, nil)

	_, err := l.Reload(context.Background())
	if !errors.Is(err, domain.ErrLoadFailure) {
		t.Fatalf("expected ErrLoadFailure, got %v", err)
	}
}

func TestReloadRejectsIncompatibleModel(t *testing.T) {
	source := &fakeSource{data: []byte(precomputedArtifact)}
	embedder := &fakeEmbedder{dim: 2, descriptor: "different-model"}
	publisher := &fakePublisher{}
	l := New(source, embedder, nil, publisher, nil)

	_, err := l.Reload(context.Background())
	if !errors.Is(err, domain.ErrIncompatibleModel) {
		t.Fatalf("expected ErrIncompatibleModel, got %v", err)
	}
}

func TestReloadRejectsDimensionMismatch(t *testing.T) {
	source := &fakeSource{data: []byte(precomputedArtifact)}
	embedder := &fakeEmbedder{dim: 3, descriptor: "test-model"}
	publisher := &fakePublisher{}
	l := New(source, embedder, nil, publisher, nil)

	_, err := l.Reload(context.Background())
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

const duplicatePatternArtifact = `{
  "header": {"schemaVersion": 1, "modelDescriptor": "test-model", "vectorDim": 2, "count": 2, "precomputed": true},
  "records": [
    {"patternId": "a/b", "description": "desc a", "sampleTexts": ["s1"], "vector": [1, 0]},
    {"patternId": "a/b", "description": "desc a again", "sampleTexts": ["s2"], "vector": [0, 1]}
  ]
}`

func TestReloadRejectsDuplicatePattern(t *testing.T) {
	source := &fakeSource{data: []byte(duplicatePatternArtifact)}
	embedder := &fakeEmbedder{dim: 2, descriptor: "test-model"}
	publisher := &fakePublisher{}
	l := New(source, embedder, nil, publisher, nil)

	_, err := l.Reload(context.Background())
	if !errors.Is(err, domain.ErrDuplicatePattern) {
		t.Fatalf("expected ErrDuplicatePattern, got %v", err)
	}
}

func TestReloadRejectsEmptyArtifact(t *testing.T) {
	source := &fakeSource{data: []byte(`{"header": {"schemaVersion": 1, "modelDescriptor": "test-model", "vectorDim": 2, "count": 0, "precomputed": true}, "records": []}`)}
	embedder := &fakeEmbedder{dim: 2, descriptor: "test-model"}
	publisher := &fakePublisher{}
	l := New(source, embedder, nil, publisher, nil)

	_, err := l.Reload(context.Background())
	if !errors.Is(err, domain.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

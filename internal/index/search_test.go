package index

import (
	"testing"

	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/domain/pattern"
)

func mustPattern(t *testing.T, id string) pattern.Pattern {
	t.Helper()
	pid, err := pattern.NewID(id)
	if err != nil {
		t.Fatalf("pattern.NewID(%q): %v", id, err)
	}
	p, err := pattern.New(pid, "desc", "", pattern.Hierarchy{}, nil, []string{"sample"}, nil)
	if err != nil {
		t.Fatalf("pattern.New(%q): %v", id, err)
	}
	return p
}

func buildTestSnapshot(t *testing.T, rows []Row) *Snapshot {
	t.Helper()
	patterns := make(map[pattern.ID]pattern.Pattern, len(rows))
	for _, r := range rows {
		patterns[r.PatternID] = mustPattern(t, r.PatternID.String())
	}
	snap, err := Build(rows, patterns, "test-model")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return snap
}

func row(id string, vec []float32) Row {
	pid, _ := pattern.NewID(id)
	return Row{PatternID: pid, Vector: vec}
}

func TestSearchReturnsTopKDescending(t *testing.T) {
	rows := []Row{
		row("a/b", []float32{1, 0}),
		row("a/c", []float32{0.9, 0.1}),
		row("a/d", []float32{0, 1}),
	}
	snap := buildTestSnapshot(t, rows)

	hits, err := Search(snap, []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].PatternID.String() != "a/b" {
		t.Errorf("expected top hit a/b, got %s", hits[0].PatternID)
	}
	if hits[0].Similarity < hits[1].Similarity {
		t.Errorf("expected descending similarity, got %v then %v", hits[0].Similarity, hits[1].Similarity)
	}
}

func TestSearchTieBreaksByAscendingPatternID(t *testing.T) {
	rows := []Row{
		row("z/top", []float32{1, 0}),
		row("a/top", []float32{1, 0}),
		row("m/top", []float32{1, 0}),
	}
	snap := buildTestSnapshot(t, rows)

	hits, err := Search(snap, []float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"a/top", "m/top", "z/top"}
	for i, w := range want {
		if hits[i].PatternID.String() != w {
			t.Errorf("hit %d: want %s, got %s", i, w, hits[i].PatternID)
		}
	}
}

func TestSearchAppliesPredicateBeforeHeapInsert(t *testing.T) {
	rows := []Row{
		row("keep/one", []float32{1, 0}),
		row("drop/two", []float32{0.99, 0.01}),
	}
	snap := buildTestSnapshot(t, rows)

	hits, err := Search(snap, []float32{1, 0}, 5, func(id pattern.ID) bool {
		return id.String() == "keep/one"
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].PatternID.String() != "keep/one" {
		t.Fatalf("expected only keep/one to survive predicate, got %v", hits)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	snap := buildTestSnapshot(t, nil)
	_, err := Search(snap, []float32{1, 0}, 1, nil)
	if err != domain.ErrEmptyIndex {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	rows := []Row{row("a/b", []float32{1, 0})}
	snap := buildTestSnapshot(t, rows)

	_, err := Search(snap, []float32{1, 0, 0}, 1, nil)
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestBuildRejectsDuplicatePatternID(t *testing.T) {
	rows := []Row{
		row("a/b", []float32{1, 0}),
		row("a/b", []float32{0, 1}),
	}
	patterns := map[pattern.ID]pattern.Pattern{rows[0].PatternID: mustPattern(t, "a/b")}

	_, err := Build(rows, patterns, "test-model")
	if err == nil {
		t.Fatal("expected duplicate pattern error")
	}
}

func TestBuildRejectsNonUniformDimension(t *testing.T) {
	rows := []Row{
		row("a/b", []float32{1, 0}),
		row("a/c", []float32{1, 0, 0}),
	}
	patterns := map[pattern.ID]pattern.Pattern{
		rows[0].PatternID: mustPattern(t, "a/b"),
		rows[1].PatternID: mustPattern(t, "a/c"),
	}

	_, err := Build(rows, patterns, "test-model")
	if err == nil {
		t.Fatal("expected dimension error")
	}
}

// Package domain holds sentinel errors shared across the engine's layers.
package domain

import "errors"

var (
	// ErrInputInvalid signals a malformed request or out-of-range field.
	ErrInputInvalid = errors.New("input invalid")
	// ErrEmptyText signals an empty or whitespace-only weave unit text.
	ErrEmptyText = errors.New("empty_text")
	// ErrIndexEmpty signals no snapshot has been published yet.
	ErrIndexEmpty = errors.New("index_empty")
	// ErrEmbeddingFailure signals a model error or unacceptable embedder input.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrSearchFailure signals a vector index search failure (e.g. dimension mismatch).
	ErrSearchFailure = errors.New("search failure")
	// ErrDeadlineExceeded signals a request exceeded its time budget.
	ErrDeadlineExceeded = errors.New("deadline_exceeded")
	// ErrOverloaded signals too many in-flight classifications.
	ErrOverloaded = errors.New("overloaded")
	// ErrLoadFailure signals an index artifact failed structural, model, or
	// dimension validation. The active snapshot is left unchanged.
	ErrLoadFailure = errors.New("load failure")
	// ErrEmptyIndex signals a snapshot with zero rows was asked to search.
	ErrEmptyIndex = errors.New("empty index")
	// ErrDimensionMismatch signals a query vector whose length differs from
	// the snapshot's vector dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrUnknownPattern signals a pattern_id absent from the catalogue.
	ErrUnknownPattern = errors.New("unknown pattern")
	// ErrIncompatibleModel signals an artifact built under a different
	// embedding model descriptor than the one currently loaded.
	ErrIncompatibleModel = errors.New("incompatible model")
	// ErrDuplicatePattern signals two rows in one artifact sharing a pattern_id.
	ErrDuplicatePattern = errors.New("duplicate pattern")
)

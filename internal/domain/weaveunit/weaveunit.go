// Package weaveunit defines the ephemeral per-request input observation
// submitted for classification.
package weaveunit

import (
	"time"

	"github.com/google/uuid"
)

// WeaveUnit is a single free-text observation submitted for classification.
// Text is not validated as non-blank here: detecting empty/whitespace text
// is Classify's job (it reports the dedicated empty_text outcome), not a
// construction-time rejection.
type WeaveUnit struct {
	id        string
	text      string
	metadata  map[string]any
	timestamp time.Time
	hasStamp  bool
}

// New constructs a WeaveUnit. If id is empty a UUID is generated.
// timestamp is optional; pass the zero time when absent.
func New(id, text string, metadata map[string]any, timestamp time.Time, hasStamp bool) (WeaveUnit, error) {
	if id == "" {
		id = uuid.NewString()
	}

	return WeaveUnit{
		id:        id,
		text:      text,
		metadata:  cloneMetadata(metadata),
		timestamp: timestamp,
		hasStamp:  hasStamp,
	}, nil
}

// ID returns the weave unit identifier.
func (w WeaveUnit) ID() string { return w.id }

// Text returns the raw observation text.
func (w WeaveUnit) Text() string { return w.text }

// Metadata returns the optional metadata bag.
func (w WeaveUnit) Metadata() map[string]any { return w.metadata }

// Timestamp returns the optional observation timestamp and whether it was set.
func (w WeaveUnit) Timestamp() (time.Time, bool) { return w.timestamp, w.hasStamp }

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Package pattern defines the taxonomy node classified against — a
// slash-delimited hierarchy identifier plus the metadata used to hydrate
// match results.
package pattern

import (
	"fmt"
	"strings"
)

// minSegments and maxSegments bound the slash-delimited hierarchy depth.
const (
	minSegments = 2
	maxSegments = 6
)

// Mixin is a domain tag attached to a pattern.
type Mixin string

// Recognised mixin tags.
const (
	MixinTime       Mixin = "time"
	MixinEmotion    Mixin = "emotion"
	MixinLocation   Mixin = "location"
	MixinPerson     Mixin = "person"
	MixinActivity   Mixin = "activity"
	MixinHealth     Mixin = "health"
	MixinDevelopment Mixin = "development"
)

var validMixins = map[Mixin]struct{}{
	MixinTime: {}, MixinEmotion: {}, MixinLocation: {}, MixinPerson: {},
	MixinActivity: {}, MixinHealth: {}, MixinDevelopment: {},
}

// IsValid reports whether m is a recognised mixin tag.
func (m Mixin) IsValid() bool {
	_, ok := validMixins[m]
	return ok
}

// ID is a slash-delimited path of 2-6 non-empty segments, case-sensitive and
// stable once assigned.
type ID string

// NewID validates and returns a pattern ID.
func NewID(raw string) (ID, error) {
	if raw == "" {
		return "", fmt.Errorf("pattern id is required")
	}
	segments := strings.Split(raw, "/")
	if len(segments) < minSegments || len(segments) > maxSegments {
		return "", fmt.Errorf(
			"pattern id %q must have between %d and %d segments, got %d",
			raw, minSegments, maxSegments, len(segments),
		)
	}
	for _, seg := range segments {
		if seg == "" {
			return "", fmt.Errorf("pattern id %q has an empty segment", raw)
		}
	}
	return ID(raw), nil
}

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// Hierarchy is the optional decomposition of a pattern's taxonomy path.
type Hierarchy struct {
	Area  string
	Topic string
	Theme string
	Focus string
	Form  string
}

// Pattern is the read-only taxonomy node classification resolves against.
// Built by the cold path; immutable in the core.
type Pattern struct {
	id          ID
	description string
	domain      string
	hierarchy   Hierarchy
	mixins      []Mixin
	sampleTexts []string
	metadata    map[string]any
}

// New validates and constructs a Pattern.
func New(
	id ID, description, domain string, hierarchy Hierarchy,
	mixins []Mixin, sampleTexts []string, metadata map[string]any,
) (Pattern, error) {
	if description == "" {
		return Pattern{}, fmt.Errorf("pattern %q: description is required", id)
	}
	if len(sampleTexts) == 0 {
		return Pattern{}, fmt.Errorf("pattern %q: at least one sample text is required", id)
	}
	for _, m := range mixins {
		if !m.IsValid() {
			return Pattern{}, fmt.Errorf("pattern %q: invalid mixin %q", id, m)
		}
	}

	return Pattern{
		id:          id,
		description: description,
		domain:      domain,
		hierarchy:   hierarchy,
		mixins:      append([]Mixin(nil), mixins...),
		sampleTexts: append([]string(nil), sampleTexts...),
		metadata:    cloneMetadata(metadata),
	}, nil
}

// ID returns the pattern identifier.
func (p Pattern) ID() ID { return p.id }

// Description returns the pattern's human-readable description.
func (p Pattern) Description() string { return p.description }

// Domain returns the optional domain classification, empty if unset.
func (p Pattern) Domain() string { return p.domain }

// Hierarchy returns the optional hierarchy decomposition.
func (p Pattern) Hierarchy() Hierarchy { return p.hierarchy }

// Mixins returns the domain tags attached to this pattern.
func (p Pattern) Mixins() []Mixin { return p.mixins }

// SampleTexts returns the ordered, non-empty sample texts.
func (p Pattern) SampleTexts() []string { return p.sampleTexts }

// Metadata returns the free-form metadata bag, passed through untouched.
func (p Pattern) Metadata() map[string]any { return p.metadata }

// EmbeddingText returns the text the Embedding Provider maps to this
// pattern's vector: description concatenated with all sample texts,
// space-joined. This policy is fixed and recorded in the model descriptor.
func (p Pattern) EmbeddingText() string {
	parts := make([]string, 0, len(p.sampleTexts)+1)
	parts = append(parts, p.description)
	parts = append(parts, p.sampleTexts...)
	return strings.Join(parts, " ")
}

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

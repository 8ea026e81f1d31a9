package loader

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/domain/pattern"
)

// schemaVersion is the only artifact schema version this loader accepts.
const schemaVersion = 1

// unitNormTolerance bounds the L2-norm deviation tolerated for a vector
// the artifact claims is already unit-norm.
const unitNormTolerance = 1e-3

// artifactHeader self-describes the blob so the loader can reject a
// structurally or semantically incompatible artifact before touching any
// record.
type artifactHeader struct {
	SchemaVersion   int    `json:"schemaVersion"`
	ModelDescriptor string `json:"modelDescriptor"`
	VectorDim       int    `json:"vectorDim"`
	Count           int    `json:"count"`
	Precomputed     bool   `json:"precomputed"`
}

// artifactRecord is one pattern entry. Vector is absent (nil) when
// Precomputed is false, in which case the loader re-embeds from Pattern.
type artifactRecord struct {
	PatternID   string            `json:"patternId"`
	Description string            `json:"description"`
	Domain      string            `json:"domain"`
	Hierarchy   artifactHierarchy `json:"hierarchy"`
	Mixins      []string          `json:"mixins"`
	SampleTexts []string          `json:"sampleTexts"`
	Metadata    map[string]any    `json:"metadata"`
	Vector      []float32         `json:"vector,omitempty"`
}

type artifactHierarchy struct {
	Area  string `json:"area"`
	Topic string `json:"topic"`
	Theme string `json:"theme"`
	Focus string `json:"focus"`
	Form  string `json:"form"`
}

type artifact struct {
	Header  artifactHeader   `json:"header"`
	Records []artifactRecord `json:"records"`
}

// parseArtifact decodes and structurally validates the raw blob against
// its own header, independent of the currently loaded embedding model.
func parseArtifact(raw []byte) (artifact, error) {
	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return artifact{}, fmt.Errorf("%w: decode artifact: %v", domain.ErrLoadFailure, err)
	}

	if a.Header.SchemaVersion != schemaVersion {
		return artifact{}, fmt.Errorf("%w: unsupported schema version %d", domain.ErrLoadFailure, a.Header.SchemaVersion)
	}
	if a.Header.Count != len(a.Records) {
		return artifact{}, fmt.Errorf(
			"%w: header declares %d records, blob has %d", domain.ErrLoadFailure, a.Header.Count, len(a.Records),
		)
	}
	if a.Header.VectorDim <= 0 {
		return artifact{}, fmt.Errorf("%w: header vectorDim must be positive, got %d", domain.ErrLoadFailure, a.Header.VectorDim)
	}
	if a.Header.Precomputed {
		for i, rec := range a.Records {
			if len(rec.Vector) != a.Header.VectorDim {
				return artifact{}, fmt.Errorf(
					"%w: record %d (pattern %q) has vector dimension %d, header declares %d",
					domain.ErrLoadFailure, i, rec.PatternID, len(rec.Vector), a.Header.VectorDim,
				)
			}
			if !isUnitNorm(rec.Vector) {
				return artifact{}, fmt.Errorf(
					"%w: record %d (pattern %q) vector is not unit-norm", domain.ErrLoadFailure, i, rec.PatternID,
				)
			}
		}
	}

	return a, nil
}

func isUnitNorm(v []float32) bool {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	return math.Abs(math.Sqrt(sumSquares)-1) <= unitNormTolerance
}

// toDomainPattern converts a validated artifact record into a domain
// Pattern, surfacing structural errors (bad ID, missing description,
// unrecognised mixin) as ErrLoadFailure.
func toDomainPattern(rec artifactRecord) (pattern.Pattern, error) {
	id, err := pattern.NewID(rec.PatternID)
	if err != nil {
		return pattern.Pattern{}, fmt.Errorf("%w: %v", domain.ErrLoadFailure, err)
	}

	mixins := make([]pattern.Mixin, 0, len(rec.Mixins))
	for _, m := range rec.Mixins {
		mixins = append(mixins, pattern.Mixin(m))
	}

	h := pattern.Hierarchy{
		Area: rec.Hierarchy.Area, Topic: rec.Hierarchy.Topic, Theme: rec.Hierarchy.Theme,
		Focus: rec.Hierarchy.Focus, Form: rec.Hierarchy.Form,
	}

	p, err := pattern.New(id, rec.Description, rec.Domain, h, mixins, rec.SampleTexts, rec.Metadata)
	if err != nil {
		return pattern.Pattern{}, fmt.Errorf("%w: %v", domain.ErrLoadFailure, err)
	}
	return p, nil
}

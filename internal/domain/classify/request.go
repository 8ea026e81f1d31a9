// Package classify holds the classification request/response value
// objects exchanged between the Gateway and the Classifier.
package classify

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/patternengine/internal/domain/weaveunit"
)

// Parameter defaults and bounds.
const (
	DefaultMaxAlternatives = 3
	MinMaxAlternatives     = 1
	MaxMaxAlternatives     = 10
	DefaultConfidenceThreshold = 0.5
)

// Request is a validated classification request.
type Request struct {
	requestID          string
	weaveUnit          weaveunit.WeaveUnit
	maxAlternatives    int
	confidenceThreshold float64
	filterByDomain     string
	hasDomainFilter    bool
}

// New validates and normalizes a classification request.
// maxAlternatives == 0 defaults to DefaultMaxAlternatives; any other value
// outside [MinMaxAlternatives, MaxMaxAlternatives] is rejected. When
// hasThreshold is false confidenceThreshold defaults to
// DefaultConfidenceThreshold; a supplied value outside [0,1] is rejected.
func New(
	requestID string,
	wu weaveunit.WeaveUnit,
	maxAlternatives int,
	confidenceThreshold float64,
	hasThreshold bool,
	filterByDomain string,
	hasDomainFilter bool,
) (Request, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	if maxAlternatives == 0 {
		maxAlternatives = DefaultMaxAlternatives
	}
	if maxAlternatives < MinMaxAlternatives || maxAlternatives > MaxMaxAlternatives {
		return Request{}, fmt.Errorf(
			"max_alternatives must be between %d and %d, got %d",
			MinMaxAlternatives, MaxMaxAlternatives, maxAlternatives,
		)
	}
	if !hasThreshold {
		confidenceThreshold = DefaultConfidenceThreshold
	}
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return Request{}, fmt.Errorf("confidence_threshold must be between 0 and 1, got %v", confidenceThreshold)
	}

	return Request{
		requestID:           requestID,
		weaveUnit:            wu,
		maxAlternatives:      maxAlternatives,
		confidenceThreshold:  confidenceThreshold,
		filterByDomain:       filterByDomain,
		hasDomainFilter:      hasDomainFilter,
	}, nil
}

// RequestID returns the request identifier.
func (r Request) RequestID() string { return r.requestID }

// WeaveUnit returns the input observation.
func (r Request) WeaveUnit() weaveunit.WeaveUnit { return r.weaveUnit }

// MaxAlternatives returns the maximum number of alternatives to return.
func (r Request) MaxAlternatives() int { return r.maxAlternatives }

// ConfidenceThreshold returns the minimum confidence for a positive match.
func (r Request) ConfidenceThreshold() float64 { return r.confidenceThreshold }

// FilterByDomain returns the optional domain filter and whether it was set.
func (r Request) FilterByDomain() (string, bool) { return r.filterByDomain, r.hasDomainFilter }

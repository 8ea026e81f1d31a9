package gateway

import "time"

// weaveUnitDTO is the wire shape of a weave unit within a classify request.
type weaveUnitDTO struct {
	ID        string         `json:"id,omitempty"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
}

// classifyRequestDTO is the wire shape of POST /classify.
type classifyRequestDTO struct {
	WeaveUnit           weaveUnitDTO `json:"weaveUnit"`
	MaxAlternatives     *int         `json:"maxAlternatives,omitempty"`
	ConfidenceThreshold *float64     `json:"confidenceThreshold,omitempty"`
	FilterByDomain      *string      `json:"filterByDomain,omitempty"`
}

// matchDTO is the wire shape of a single ranked match.
type matchDTO struct {
	PatternID  string         `json:"patternId"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata"`
}

// classifyResponseDTO is the wire shape of the /classify response.
type classifyResponseDTO struct {
	RequestID        string     `json:"requestId"`
	Match            *matchDTO  `json:"match"`
	Alternatives     []matchDTO `json:"alternatives"`
	ProcessingTimeMs float64    `json:"processingTimeMs"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
}

// statusDTO is the wire shape of GET /status.
type statusDTO struct {
	PatternCount     int             `json:"patternCount"`
	VectorDim        int             `json:"vectorDim"`
	ModelDescriptor  string          `json:"modelDescriptor"`
	SnapshotID       uint64          `json:"snapshotId"`
	UptimeSeconds    float64         `json:"uptimeSeconds"`
	PatternsByDomain map[string]int  `json:"patternsByDomain,omitempty"`
	RequestStats     requestStatsDTO `json:"requestStats"`
}

// requestStatsDTO summarizes classification traffic since startup.
type requestStatsDTO struct {
	Count        uint64  `json:"count"`
	ErrorCount   uint64  `json:"errorCount"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// reloadRequestDTO is the wire shape of the optional POST /reload-patterns body.
type reloadRequestDTO struct {
	Source string `json:"source,omitempty"`
}

// reloadResponseDTO is the wire shape of the /reload-patterns response.
type reloadResponseDTO struct {
	Status       string  `json:"status"`
	PatternCount int     `json:"patternCount"`
	LoadTimeMs   float64 `json:"loadTimeMs"`
	Error        string  `json:"error,omitempty"`
}

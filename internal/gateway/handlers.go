package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/patternengine/internal/classifier"
	"github.com/kailas-cloud/patternengine/internal/domain"
	"github.com/kailas-cloud/patternengine/internal/domain/classify"
	"github.com/kailas-cloud/patternengine/internal/domain/weaveunit"
	"github.com/kailas-cloud/patternengine/internal/index"
	"github.com/kailas-cloud/patternengine/internal/loader"
	"github.com/kailas-cloud/patternengine/internal/metrics"
)

// requestStats accumulates classification traffic counters lock-free, for
// the /status endpoint's supplemental requestStats block.
type requestStats struct {
	count      atomic.Uint64
	errorCount atomic.Uint64
	totalMs    atomic.Uint64 // accumulated processing time in whole microseconds
}

func (s *requestStats) recordSuccess(elapsedMs float64) {
	s.count.Add(1)
	s.totalMs.Add(uint64(elapsedMs * 1000))
}

func (s *requestStats) recordError() {
	s.count.Add(1)
	s.errorCount.Add(1)
}

func (s *requestStats) snapshot() requestStatsDTO {
	count := s.count.Load()
	dto := requestStatsDTO{Count: count, ErrorCount: s.errorCount.Load()}
	if count > 0 {
		dto.AvgLatencyMs = float64(s.totalMs.Load()) / float64(count) / 1000.0
	}
	return dto
}

// Handlers holds the dependencies the HTTP endpoints dispatch to.
type Handlers struct {
	classifier     *classifier.Classifier
	loader         *loader.Loader
	requestTimeout time.Duration
	startedAt      time.Time
	stats          requestStats
	log            *zap.Logger
}

// NewHandlers constructs Handlers.
func NewHandlers(c *classifier.Classifier, l *loader.Loader, requestTimeout time.Duration, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{classifier: c, loader: l, requestTimeout: requestTimeout, startedAt: time.Now(), log: log}
}

// HandleHealth serves GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode("OK")
}

// HandleStatus serves GET /status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.classifier.CurrentSnapshot()
	resp := statusDTO{UptimeSeconds: time.Since(h.startedAt).Seconds(), RequestStats: h.stats.snapshot()}
	if snap != nil {
		resp.PatternCount = snap.Len()
		resp.VectorDim = snap.Dimension()
		resp.ModelDescriptor = snap.ModelDescriptor()
		resp.SnapshotID = snap.ID()
		resp.PatternsByDomain = snap.PatternsByDomain()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleClassify serves POST /classify.
func (h *Handlers) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var dto classifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.stats.recordError()
		writeClassifyError(w, "", "input_invalid", http.StatusBadRequest)
		return
	}

	req, err := classifyRequestFromDTO(dto)
	if err != nil {
		h.stats.recordError()
		writeClassifyError(w, dto.WeaveUnit.ID, "input_invalid", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.classifier.Classify(ctx, req)
	if err != nil {
		message, status := classifyErrorToWire(err)
		h.logClassifyError(err, message)
		h.stats.recordError()
		metrics.ClassifyErrorsTotal.WithLabelValues(message).Inc()
		writeClassifyError(w, req.RequestID(), message, status)
		return
	}

	h.stats.recordSuccess(resp.ProcessingTimeMs())
	metrics.ClassifyRequestsTotal.WithLabelValues(string(resp.Status())).Inc()
	writeJSON(w, http.StatusOK, responseToDTO(resp))
}

// HandleReload serves POST /reload-patterns.
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	var dto reloadRequestDTO
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			writeJSON(w, http.StatusBadRequest, reloadResponseDTO{Status: "error", Error: "input_invalid"})
			return
		}
	}

	start := time.Now()
	var (
		snap *index.Snapshot
		err  error
	)
	if dto.Source != "" {
		snap, err = h.loader.ReloadFrom(r.Context(), loader.NewFileSource(dto.Source, 0))
	} else {
		snap, err = h.loader.Reload(r.Context())
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		metrics.ReloadTotal.WithLabelValues("failure").Inc()
		metrics.ReloadDuration.WithLabelValues("failure").Observe(elapsed / 1000.0)
		h.log.Error("reload failed", zap.Error(err))
		writeJSON(w, http.StatusOK, reloadResponseDTO{Status: "error", LoadTimeMs: elapsed, Error: err.Error()})
		return
	}

	metrics.ReloadTotal.WithLabelValues("success").Inc()
	metrics.ReloadDuration.WithLabelValues("success").Observe(elapsed / 1000.0)
	metrics.IndexPatternsLoaded.Set(float64(snap.Len()))
	writeJSON(w, http.StatusOK, reloadResponseDTO{Status: "success", PatternCount: snap.Len(), LoadTimeMs: elapsed})
}

func (h *Handlers) logClassifyError(err error, kind string) {
	if kind == "internal_error" || kind == "search_failure" || kind == "embedding_failure" {
		h.log.Error("classify failed", zap.Error(err), zap.String("kind", kind))
		return
	}
	h.log.Warn("classify rejected", zap.String("kind", kind))
}

func classifyRequestFromDTO(dto classifyRequestDTO) (classify.Request, error) {
	var ts time.Time
	hasStamp := dto.WeaveUnit.Timestamp != nil
	if hasStamp {
		ts = *dto.WeaveUnit.Timestamp
	}

	wu, err := weaveunit.New(dto.WeaveUnit.ID, dto.WeaveUnit.Text, dto.WeaveUnit.Metadata, ts, hasStamp)
	if err != nil {
		return classify.Request{}, fmt.Errorf("%w: %v", domain.ErrInputInvalid, err)
	}

	maxAlternatives := 0
	if dto.MaxAlternatives != nil {
		maxAlternatives = *dto.MaxAlternatives
	}

	hasThreshold := dto.ConfidenceThreshold != nil
	confidenceThreshold := 0.0
	if hasThreshold {
		confidenceThreshold = *dto.ConfidenceThreshold
	}

	hasDomainFilter := dto.FilterByDomain != nil
	filterByDomain := ""
	if hasDomainFilter {
		filterByDomain = *dto.FilterByDomain
	}

	req, err := classify.New("", wu, maxAlternatives, confidenceThreshold, hasThreshold, filterByDomain, hasDomainFilter)
	if err != nil {
		return classify.Request{}, fmt.Errorf("%w: %v", domain.ErrInputInvalid, err)
	}
	return req, nil
}

func responseToDTO(resp classify.Response) classifyResponseDTO {
	dto := classifyResponseDTO{
		RequestID:        resp.RequestID(),
		ProcessingTimeMs: resp.ProcessingTimeMs(),
		Status:           string(resp.Status()),
		ErrorMessage:     resp.ErrorMessage(),
	}
	if m := resp.Match(); m != nil {
		dto.Match = matchToDTO(*m)
	}
	alts := resp.Alternatives()
	dto.Alternatives = make([]matchDTO, 0, len(alts))
	for _, a := range alts {
		dto.Alternatives = append(dto.Alternatives, *matchToDTO(a))
	}
	return dto
}

func matchToDTO(m classify.Match) *matchDTO {
	return &matchDTO{PatternID: m.PatternID(), Confidence: m.Confidence(), Metadata: m.Metadata()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeClassifyError(w http.ResponseWriter, requestID, message string, status int) {
	writeJSON(w, status, classifyResponseDTO{
		RequestID:    requestID,
		Alternatives: []matchDTO{},
		Status:       string(classify.StatusError),
		ErrorMessage: message,
	})
}

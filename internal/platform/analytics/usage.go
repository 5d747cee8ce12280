package analytics

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hass/hass/internal/platform/auth"
)

// RequestMetric captures a single API request for the dashboard's usage view.
type RequestMetric struct {
	Timestamp  time.Time     `json:"timestamp"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	StatusCode int           `json:"status_code"`
	Duration   time.Duration `json:"duration"`
	ActorID    string        `json:"actor_id"`
	HospitalID string        `json:"hospital_id"`
	Resource   string        `json:"resource"`
}

type endpointStats struct {
	Path          string
	TotalRequests int64
	TotalErrors   int64
	TotalDuration int64 // nanoseconds
	StatusCounts  map[int]int64
	mu            sync.Mutex
}

type actorStats struct {
	ActorID       string
	TotalRequests int64
	TotalErrors   int64
	LastRequestAt time.Time
	mu            sync.Mutex
}

type resourceStats struct {
	Resource    string
	ReadCount   int64
	CreateCount int64
	UpdateCount int64
	DeleteCount int64
	SearchCount int64
	mu          sync.Mutex
}

// EndpointSummary aggregates request statistics for a single API endpoint.
type EndpointSummary struct {
	Path            string        `json:"path"`
	TotalRequests   int64         `json:"total_requests"`
	ErrorRate       float64       `json:"error_rate"`
	AvgLatency      time.Duration `json:"avg_latency"`
	P95Latency      time.Duration `json:"p95_latency"`
	StatusBreakdown map[int]int64 `json:"status_breakdown"`
}

// ActorSummary aggregates request statistics for one staff member.
type ActorSummary struct {
	ActorID       string    `json:"actor_id"`
	TotalRequests int64     `json:"total_requests"`
	ErrorRate     float64   `json:"error_rate"`
	LastSeen      time.Time `json:"last_seen"`
}

// ResourceSummary breaks one API collection down by operation.
type ResourceSummary struct {
	Resource    string `json:"resource"`
	ReadCount   int64  `json:"read_count"`
	CreateCount int64  `json:"create_count"`
	UpdateCount int64  `json:"update_count"`
	DeleteCount int64  `json:"delete_count"`
	SearchCount int64  `json:"search_count"`
	Total       int64  `json:"total"`
}

// UsageOverview is the high-level summary shown on the admin dashboard.
type UsageOverview struct {
	TotalRequests   int64              `json:"total_requests"`
	TotalErrors     int64              `json:"total_errors"`
	ErrorRate       float64            `json:"error_rate"`
	AvgLatency      time.Duration      `json:"avg_latency"`
	UniqueActors    int                `json:"unique_actors"`
	UniqueEndpoints int                `json:"unique_endpoints"`
	TopEndpoints    []*EndpointSummary `json:"top_endpoints"`
	TopActors       []*ActorSummary    `json:"top_actors"`
}

// TimeSeriesBucket holds aggregated metrics for a single time bucket.
type TimeSeriesBucket struct {
	Timestamp    time.Time     `json:"timestamp"`
	RequestCount int64         `json:"request_count"`
	ErrorCount   int64         `json:"error_count"`
	AvgLatency   time.Duration `json:"avg_latency"`
}

// UsageTracker is a thread-safe in-memory aggregator: an append-only ring
// buffer of recent requests plus per-endpoint, per-actor, and per-resource
// counters.
type UsageTracker struct {
	metrics          []*RequestMetric
	maxMetrics       int
	writePos         int
	full             bool
	endpointCounters map[string]*endpointStats
	actorCounters    map[string]*actorStats
	resourceCounters map[string]*resourceStats
	mu               sync.RWMutex
	totalRequests    int64
	totalErrors      int64
	totalDuration    int64 // nanoseconds
}

// NewUsageTracker creates a tracker with the given ring buffer capacity.
func NewUsageTracker(maxMetrics int) *UsageTracker {
	if maxMetrics <= 0 {
		maxMetrics = 100000
	}
	return &UsageTracker{
		metrics:          make([]*RequestMetric, 0, maxMetrics),
		maxMetrics:       maxMetrics,
		endpointCounters: make(map[string]*endpointStats),
		actorCounters:    make(map[string]*actorStats),
		resourceCounters: make(map[string]*resourceStats),
	}
}

// Record appends a metric to the ring buffer and updates all counters.
func (ut *UsageTracker) Record(metric *RequestMetric) {
	isError := metric.StatusCode >= 400

	atomic.AddInt64(&ut.totalRequests, 1)
	if isError {
		atomic.AddInt64(&ut.totalErrors, 1)
	}
	atomic.AddInt64(&ut.totalDuration, int64(metric.Duration))

	ut.mu.Lock()

	// Ring buffer insert.
	if ut.full {
		ut.metrics[ut.writePos] = metric
	} else if len(ut.metrics) < ut.maxMetrics {
		ut.metrics = append(ut.metrics, metric)
	}
	ut.writePos++
	if ut.writePos >= ut.maxMetrics {
		ut.writePos = 0
		ut.full = true
	}

	ep, ok := ut.endpointCounters[metric.Path]
	if !ok {
		ep = &endpointStats{
			Path:         metric.Path,
			StatusCounts: make(map[int]int64),
		}
		ut.endpointCounters[metric.Path] = ep
	}

	var as *actorStats
	if metric.ActorID != "" {
		as, ok = ut.actorCounters[metric.ActorID]
		if !ok {
			as = &actorStats{ActorID: metric.ActorID}
			ut.actorCounters[metric.ActorID] = as
		}
	}

	var rs *resourceStats
	if metric.Resource != "" {
		rs, ok = ut.resourceCounters[metric.Resource]
		if !ok {
			rs = &resourceStats{Resource: metric.Resource}
			ut.resourceCounters[metric.Resource] = rs
		}
	}

	ut.mu.Unlock()

	// Per-endpoint mutex keeps Record cheap under concurrent traffic.
	ep.mu.Lock()
	ep.TotalRequests++
	if isError {
		ep.TotalErrors++
	}
	ep.TotalDuration += int64(metric.Duration)
	ep.StatusCounts[metric.StatusCode]++
	ep.mu.Unlock()

	if as != nil {
		as.mu.Lock()
		as.TotalRequests++
		if isError {
			as.TotalErrors++
		}
		as.LastRequestAt = metric.Timestamp
		as.mu.Unlock()
	}

	if rs != nil {
		rs.mu.Lock()
		switch metric.Method {
		case "POST":
			rs.CreateCount++
		case "PUT", "PATCH":
			rs.UpdateCount++
		case "DELETE":
			rs.DeleteCount++
		case "GET":
			if isReadByID(metric.Path, metric.Resource) {
				rs.ReadCount++
			} else {
				rs.SearchCount++
			}
		}
		rs.mu.Unlock()
	}
}

// isReadByID checks whether a GET targets one record by id
// (/api/v1/patients/123) rather than a list (/api/v1/patients).
func isReadByID(path, resource string) bool {
	if resource == "" {
		return false
	}
	idx := strings.Index(path, resource)
	if idx < 0 {
		return false
	}
	rest := path[idx+len(resource):]
	return len(rest) > 1 && rest[0] == '/'
}

// GetEndpointStats returns aggregated stats for a single endpoint path.
func (ut *UsageTracker) GetEndpointStats(path string) *EndpointSummary {
	ut.mu.RLock()
	ep, ok := ut.endpointCounters[path]
	var durations []time.Duration
	if ok {
		for _, m := range ut.metrics {
			if m != nil && m.Path == path {
				durations = append(durations, m.Duration)
			}
		}
	}
	ut.mu.RUnlock()
	if !ok {
		return nil
	}
	return buildEndpointSummary(ep, durations)
}

// GetActorStats returns aggregated stats for one staff member.
func (ut *UsageTracker) GetActorStats(actorID string) *ActorSummary {
	ut.mu.RLock()
	as, ok := ut.actorCounters[actorID]
	ut.mu.RUnlock()
	if !ok {
		return nil
	}
	return buildActorSummary(as)
}

// GetResourceStats returns the operation breakdown for one API collection.
func (ut *UsageTracker) GetResourceStats(resource string) *ResourceSummary {
	ut.mu.RLock()
	rs, ok := ut.resourceCounters[resource]
	ut.mu.RUnlock()
	if !ok {
		return nil
	}
	return buildResourceSummary(rs)
}

func buildResourceSummary(rs *resourceStats) *ResourceSummary {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return &ResourceSummary{
		Resource:    rs.Resource,
		ReadCount:   rs.ReadCount,
		CreateCount: rs.CreateCount,
		UpdateCount: rs.UpdateCount,
		DeleteCount: rs.DeleteCount,
		SearchCount: rs.SearchCount,
		Total:       rs.ReadCount + rs.CreateCount + rs.UpdateCount + rs.DeleteCount + rs.SearchCount,
	}
}

// GetOverview returns a high-level usage summary.
func (ut *UsageTracker) GetOverview() *UsageOverview {
	total := atomic.LoadInt64(&ut.totalRequests)
	errors := atomic.LoadInt64(&ut.totalErrors)
	dur := atomic.LoadInt64(&ut.totalDuration)

	var errorRate float64
	if total > 0 {
		errorRate = float64(errors) / float64(total)
	}

	var avgLatency time.Duration
	if total > 0 {
		avgLatency = time.Duration(dur / total)
	}

	ut.mu.RLock()
	uniqueActors := len(ut.actorCounters)
	uniqueEndpoints := len(ut.endpointCounters)
	ut.mu.RUnlock()

	return &UsageOverview{
		TotalRequests:   total,
		TotalErrors:     errors,
		ErrorRate:       errorRate,
		AvgLatency:      avgLatency,
		UniqueActors:    uniqueActors,
		UniqueEndpoints: uniqueEndpoints,
		TopEndpoints:    ut.GetTopEndpoints(5),
		TopActors:       ut.GetTopActors(5),
	}
}

// GetTopEndpoints returns the top N endpoints by request count.
// All tracker state is snapshotted in one read section; summaries are built
// after the lock is released so no call path re-enters ut.mu.
func (ut *UsageTracker) GetTopEndpoints(limit int) []*EndpointSummary {
	ut.mu.RLock()
	eps := make([]*endpointStats, 0, len(ut.endpointCounters))
	for _, ep := range ut.endpointCounters {
		eps = append(eps, ep)
	}
	durationsByPath := ut.durationsByPathLocked()
	ut.mu.RUnlock()

	summaries := make([]*EndpointSummary, 0, len(eps))
	for _, ep := range eps {
		summaries = append(summaries, buildEndpointSummary(ep, durationsByPath[ep.Path]))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalRequests > summaries[j].TotalRequests
	})

	if limit > len(summaries) {
		limit = len(summaries)
	}
	return summaries[:limit]
}

// GetTopActors returns the top N staff members by request count.
func (ut *UsageTracker) GetTopActors(limit int) []*ActorSummary {
	ut.mu.RLock()
	actors := make([]*actorStats, 0, len(ut.actorCounters))
	for _, as := range ut.actorCounters {
		actors = append(actors, as)
	}
	ut.mu.RUnlock()

	summaries := make([]*ActorSummary, 0, len(actors))
	for _, as := range actors {
		summaries = append(summaries, buildActorSummary(as))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalRequests > summaries[j].TotalRequests
	})

	if limit > len(summaries) {
		limit = len(summaries)
	}
	return summaries[:limit]
}

// GetTimeSeries returns request counts bucketed by interval over the given
// lookback window.
func (ut *UsageTracker) GetTimeSeries(interval, duration time.Duration) []*TimeSeriesBucket {
	now := time.Now()
	start := now.Add(-duration).Truncate(interval)
	numBuckets := int(duration/interval) + 1

	buckets := make([]*TimeSeriesBucket, numBuckets)
	for i := 0; i < numBuckets; i++ {
		buckets[i] = &TimeSeriesBucket{
			Timestamp: start.Add(time.Duration(i) * interval),
		}
	}

	ut.mu.RLock()
	metricsCopy := make([]*RequestMetric, len(ut.metrics))
	copy(metricsCopy, ut.metrics)
	ut.mu.RUnlock()

	for _, m := range metricsCopy {
		if m == nil {
			continue
		}
		if m.Timestamp.Before(start) || m.Timestamp.After(now) {
			continue
		}
		idx := int(m.Timestamp.Sub(start) / interval)
		if idx < 0 || idx >= numBuckets {
			continue
		}
		buckets[idx].RequestCount++
		if m.StatusCode >= 400 {
			buckets[idx].ErrorCount++
		}
		buckets[idx].AvgLatency += m.Duration // accumulate, averaged below
	}

	for _, b := range buckets {
		if b.RequestCount > 0 {
			b.AvgLatency = time.Duration(int64(b.AvgLatency) / b.RequestCount)
		}
	}

	return buckets
}

// GetErrorRate returns the overall error rate between 0 and 1.
func (ut *UsageTracker) GetErrorRate() float64 {
	total := atomic.LoadInt64(&ut.totalRequests)
	errors := atomic.LoadInt64(&ut.totalErrors)
	if total == 0 {
		return 0
	}
	return float64(errors) / float64(total)
}

// GetAverageLatency returns the average request duration.
func (ut *UsageTracker) GetAverageLatency() time.Duration {
	total := atomic.LoadInt64(&ut.totalRequests)
	dur := atomic.LoadInt64(&ut.totalDuration)
	if total == 0 {
		return 0
	}
	return time.Duration(dur / total)
}

// durationsByPathLocked groups the ring buffer's durations by path. The
// caller must hold ut.mu.
func (ut *UsageTracker) durationsByPathLocked() map[string][]time.Duration {
	byPath := make(map[string][]time.Duration)
	for _, m := range ut.metrics {
		if m != nil {
			byPath[m.Path] = append(byPath[m.Path], m.Duration)
		}
	}
	return byPath
}

func buildEndpointSummary(ep *endpointStats, durations []time.Duration) *EndpointSummary {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	var errorRate float64
	if ep.TotalRequests > 0 {
		errorRate = float64(ep.TotalErrors) / float64(ep.TotalRequests)
	}

	var avgLatency time.Duration
	if ep.TotalRequests > 0 {
		avgLatency = time.Duration(ep.TotalDuration / ep.TotalRequests)
	}

	statusBreakdown := make(map[int]int64, len(ep.StatusCounts))
	for code, count := range ep.StatusCounts {
		statusBreakdown[code] = count
	}

	p95 := p95FromDurations(durations)

	return &EndpointSummary{
		Path:            ep.Path,
		TotalRequests:   ep.TotalRequests,
		ErrorRate:       errorRate,
		AvgLatency:      avgLatency,
		P95Latency:      p95,
		StatusBreakdown: statusBreakdown,
	}
}

func buildActorSummary(as *actorStats) *ActorSummary {
	as.mu.Lock()
	defer as.mu.Unlock()

	var errorRate float64
	if as.TotalRequests > 0 {
		errorRate = float64(as.TotalErrors) / float64(as.TotalRequests)
	}

	return &ActorSummary{
		ActorID:       as.ActorID,
		TotalRequests: as.TotalRequests,
		ErrorRate:     errorRate,
		LastSeen:      as.LastRequestAt,
	}
}

func p95FromDurations(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	idx := int(float64(len(durations)) * 0.95)
	if idx >= len(durations) {
		idx = len(durations) - 1
	}
	return durations[idx]
}

// extractResource parses the collection name from an API path:
// /api/v1/patients/123 -> patients. Non-API paths yield "".
func extractResource(path string) string {
	const apiPrefix = "/api/v1/"
	idx := strings.Index(path, apiPrefix)
	if idx < 0 {
		return ""
	}

	rest := path[idx+len(apiPrefix):]
	if rest == "" {
		return ""
	}

	if slashIdx := strings.Index(rest, "/"); slashIdx >= 0 {
		return rest[:slashIdx]
	}
	return rest
}

// UsageMiddleware records every request into the provided UsageTracker.
func UsageMiddleware(tracker *UsageTracker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := req.URL.Path

			err := next(c)

			duration := time.Since(start)

			hospitalID := ""
			if v, ok := c.Get("hospital_id").(string); ok {
				hospitalID = v
			}

			tracker.Record(&RequestMetric{
				Timestamp:  start,
				Method:     req.Method,
				Path:       path,
				StatusCode: c.Response().Status,
				Duration:   duration,
				ActorID:    auth.UserIDFromContext(req.Context()),
				HospitalID: hospitalID,
				Resource:   extractResource(path),
			})

			return err
		}
	}
}

// UsageHandler exposes the tracker's aggregates over HTTP for the admin
// dashboard.
type UsageHandler struct {
	tracker *UsageTracker
}

func NewUsageHandler(tracker *UsageTracker) *UsageHandler {
	return &UsageHandler{tracker: tracker}
}

func (h *UsageHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/analytics/overview", h.HandleOverview)
	g.GET("/analytics/endpoints", h.HandleTopEndpoints)
	g.GET("/analytics/actors", h.HandleTopActors)
	g.GET("/analytics/actors/:id", h.HandleActorStats)
	g.GET("/analytics/resources", h.HandleResources)
	g.GET("/analytics/timeseries", h.HandleTimeSeries)
}

func (h *UsageHandler) HandleOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tracker.GetOverview())
}

func (h *UsageHandler) HandleTopEndpoints(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return c.JSON(http.StatusOK, h.tracker.GetTopEndpoints(limit))
}

func (h *UsageHandler) HandleTopActors(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return c.JSON(http.StatusOK, h.tracker.GetTopActors(limit))
}

func (h *UsageHandler) HandleActorStats(c echo.Context) error {
	summary := h.tracker.GetActorStats(c.Param("id"))
	if summary == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "actor not found"})
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *UsageHandler) HandleResources(c echo.Context) error {
	h.tracker.mu.RLock()
	summaries := make([]*ResourceSummary, 0, len(h.tracker.resourceCounters))
	for _, rs := range h.tracker.resourceCounters {
		summaries = append(summaries, buildResourceSummary(rs))
	}
	h.tracker.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Resource < summaries[j].Resource })
	return c.JSON(http.StatusOK, summaries)
}

func (h *UsageHandler) HandleTimeSeries(c echo.Context) error {
	interval := parseDurationParam(c.QueryParam("interval"), time.Minute)
	duration := parseDurationParam(c.QueryParam("duration"), time.Hour)

	return c.JSON(http.StatusOK, h.tracker.GetTimeSeries(interval, duration))
}

// parseDurationParam parses strings like "5m", "1h", "7d".
func parseDurationParam(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}

	if strings.HasSuffix(s, "d") {
		numStr := strings.TrimSuffix(s, "d")
		if n, err := strconv.Atoi(numStr); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
		return defaultVal
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

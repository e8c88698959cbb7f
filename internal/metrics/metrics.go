package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Geolocation lookup outcomes.
const (
	ResultLocal   = "local"
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// RequestsTotal counts HTTP requests by matched route and status code.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipinfo_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"path", "status"})
	// RequestDurationMs observes HTTP request latency.
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ipinfo_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	})
	// GeoLookupsTotal counts geolocation lookups by provider and result.
	GeoLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipinfo_geo_lookups_total",
		Help: "Geolocation lookups by provider and result",
	}, []string{"provider", "result"})
	// GeoLookupDurationMs observes provider call latency; local short-circuits are not observed.
	GeoLookupDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ipinfo_geo_lookup_duration_ms",
		Help:    "Geolocation provider call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(GeoLookupsTotal)
	prometheus.MustRegister(GeoLookupDurationMs)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler { return promhttp.Handler() }

// ObserveLookup records one geolocation lookup.
func ObserveLookup(provider, result string, d time.Duration) {
	GeoLookupsTotal.WithLabelValues(provider, result).Inc()
	if result != ResultLocal {
		GeoLookupDurationMs.WithLabelValues(provider).Observe(float64(d.Milliseconds()))
	}
}

// Middleware counts requests by matched route so unknown paths share one label.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RequestsTotal.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}
}

package observability

// DefaultBuckets are the request-duration histogram boundaries, in seconds.
var DefaultBuckets = []float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10}

// AppMetrics bundles the registry with the application's own series. It is
// built once at startup; a shape conflict panics there, never at request
// time.
type AppMetrics struct {
	Registry *Registry

	RequestsTotal     *Counter
	RequestDuration   *Histogram
	VisitorCount      *Gauge
	ActiveConnections *Gauge
}

func NewAppMetrics() *AppMetrics {
	r := NewRegistry()
	return &AppMetrics{
		Registry: r,
		RequestsTotal: r.Counter("http_requests_total",
			"Total number of HTTP requests",
			"method", "route", "status_code"),
		RequestDuration: r.Histogram("http_request_duration_seconds",
			"Duration of HTTP requests in seconds", DefaultBuckets,
			"method", "route", "status_code"),
		VisitorCount: r.Gauge("website_visitors_total",
			"Total number of website visitors"),
		ActiveConnections: r.Gauge("active_connections",
			"Number of active connections"),
	}
}

package weave

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the core's counters/histograms: accept ok/err, handler
// ok/err/timeout, rate-limiter closed/timeout, graceful/forced
// shutdowns, HTTP/3 body oversize, WebTransport accept/error, plus
// accept-wait and handler-duration histograms. Exporting/scraping these
// is a collaborator's job; this package only records.
type Metrics struct {
	AcceptOK prometheus.Counter
	AcceptErr prometheus.Counter

	HandlerOK prometheus.Counter
	HandlerErr prometheus.Counter
	HandlerTimeout prometheus.Counter

	RateLimiterClosed prometheus.Counter
	RateLimiterTimeout prometheus.Counter

	GracefulShutdowns prometheus.Counter
	ForcedShutdowns prometheus.Counter

	HTTP3BodyOversize prometheus.Counter

	WebTransportAccept prometheus.Counter
	WebTransportError prometheus.Counter

	AcceptWaitNS prometheus.Histogram
	HandlerDurationNS prometheus.Histogram
}

// NewMetrics registers the core's counters/histograms against reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in a server binary.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weave", Name: name, Help: help})
		reg.MustRegister(c)
		return c
	}
	histogram := func(name, help string) prometheus.Histogram {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weave",
			Name: name,
			Help: help,
			Buckets: prometheus.ExponentialBuckets(1000, 4, 12), // ns, ~1us..~4ms..s
		})
		reg.MustRegister(h)
		return h
	}

	return &Metrics{
		AcceptOK: counter("accept_ok_total", "accepted connections admitted"),
		AcceptErr: counter("accept_err_total", "listener accept errors"),
		HandlerOK: counter("handler_ok_total", "handler invocations that completed normally"),
		HandlerErr: counter("handler_err_total", "handler invocations that returned an error"),
		HandlerTimeout: counter("handler_timeout_total", "handler invocations cancelled by the per-request timeout"),
		RateLimiterClosed: counter("rate_limiter_closed_total", "connections rejected by the admission controller"),
		RateLimiterTimeout: counter("rate_limiter_timeout_total", "admission waits that exceeded max_wait"),
		GracefulShutdowns: counter("graceful_shutdowns_total", "shutdowns that drained within the grace period"),
		ForcedShutdowns: counter("forced_shutdowns_total", "shutdowns that hit the grace period and force-aborted"),
		HTTP3BodyOversize: counter("http3_body_oversize_total", "HTTP/3 request bodies that exceeded the configured limit"),
		WebTransportAccept: counter("webtransport_accept_total", "WebTransport sessions accepted"),
		WebTransportError: counter("webtransport_error_total", "WebTransport session errors"),
		AcceptWaitNS: histogram("accept_wait_ns", "time spent waiting for admission, in nanoseconds"),
		HandlerDurationNS: histogram("handler_duration_ns", "handler execution time, in nanoseconds"),
	}
}

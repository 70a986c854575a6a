// Package formiometrics exports Prometheus metrics for Form.io client
// traffic.
//
// Two layers are instrumented. The plugin counts requests by resource kind
// as they enter the pipeline and responses by status once they are decoded,
// including those served from the cache or by another plugin. The
// transport wrapper measures what actually goes over the wire.
package formiometrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/pkg/plugin"
)

// Name is the name the plugin registers under.
const Name = "formiometrics"

// Collector holds the client metrics.
type Collector struct {
	requests  *prometheus.CounterVec
	responses *prometheus.CounterVec

	wireRequests *prometheus.CounterVec
	wireLatency  *prometheus.HistogramVec
	inFlight     prometheus.Gauge
}

// NewCollector creates the metrics and registers them with reg. A nil reg
// means prometheus.DefaultRegisterer.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = "formio"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Requests started, by resource kind and method",
			},
			[]string{"kind", "method"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "responses_total",
				Help:      "Successful responses, by resource kind, method, status and source",
			},
			[]string{"kind", "method", "status", "source"},
		),
		wireRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests sent to the server",
			},
			[]string{"code", "method"},
		),
		wireLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP round trip latency",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"code", "method"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests waiting for a response",
		}),
	}

	for _, col := range []prometheus.Collector{c.requests, c.responses, c.wireRequests, c.wireLatency, c.inFlight} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Plugin returns a plugin that counts requests and responses.
func (c *Collector) Plugin() *plugin.Plugin {
	return &plugin.Plugin{
		Hooks: map[string]plugin.Hook{
			plugin.PreRequest: func(_ context.Context, args ...any) (any, error) {
				if req, ok := argAt[*formio.RequestArgs](args, 0); ok {
					c.requests.WithLabelValues(kindLabel(req.Kind), req.Method).Inc()
				}
				return nil, nil
			},
			plugin.RequestResponse: func(_ context.Context, args ...any) (any, error) {
				resp, ok := argAt[*formio.Response](args, 0)
				if !ok {
					return nil, nil
				}
				req, ok := argAt[*formio.RequestArgs](args, 1)
				if !ok {
					return nil, nil
				}
				source := "server"
				if resp.Cached {
					source = "cache"
				} else if resp.Header == nil {
					source = "plugin"
				}
				c.responses.WithLabelValues(kindLabel(req.Kind), req.Method, strconv.Itoa(resp.Status), source).Inc()
				return nil, nil
			},
		},
	}
}

// Register adds the plugin to fc and instruments the transport of client.
// client may be nil when only the plugin metrics are wanted.
func (c *Collector) Register(fc *formio.Context, client *http.Client) {
	fc.Plugins().Register(c.Plugin(), Name)
	if client != nil {
		c.InstrumentClient(client)
	}
}

// InstrumentClient wraps the transport of client in place.
func (c *Collector) InstrumentClient(client *http.Client) {
	client.Transport = c.RoundTripper(client.Transport)
}

// RoundTripper wraps next with the wire metrics. A nil next means
// http.DefaultTransport.
func (c *Collector) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(c.inFlight,
		promhttp.InstrumentRoundTripperCounter(c.wireRequests,
			promhttp.InstrumentRoundTripperDuration(c.wireLatency, next),
		),
	)
}

func argAt[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) {
		return zero, false
	}
	v, ok := args[i].(T)
	return v, ok
}

func kindLabel(kind string) string {
	if kind == "" {
		return "static"
	}
	return kind
}

// Package metrics exposes Prometheus collectors for Mirage client traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/alfredjeanlab/mirage/internal/client"
)

// Collector records backend requests and ticket poll attempts.
// It implements client.Observer.
type Collector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	pollAttempts *prometheus.CounterVec
}

var _ client.Observer = (*Collector)(nil)

// New creates a Collector and registers it with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirage_client_requests_total",
			Help: "Total backend requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mirage_client_request_duration_seconds",
			Help:    "Backend request latency by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		pollAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirage_ticket_poll_attempts_total",
			Help: "Ticket poll attempts by reported status code",
		}, []string{"code"}),
	}
	reg.MustRegister(c.requests, c.latency, c.pollAttempts)
	return c
}

// ObserveRequest records one backend request.
func (c *Collector) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	c.requests.WithLabelValues(endpoint, outcome).Inc()
	c.latency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObservePoll records one poll attempt. Attempts that produced no status
// are counted under code "error".
func (c *Collector) ObservePoll(code int, ok bool) {
	label := "error"
	if ok {
		label = strconv.Itoa(code)
	}
	c.pollAttempts.WithLabelValues(label).Inc()
}

// RequestCounts returns request totals keyed by "endpoint outcome".
func (c *Collector) RequestCounts() map[string]float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		c.requests.Collect(ch)
		close(ch)
	}()

	out := make(map[string]float64)
	for m := range ch {
		metric := &dto.Metric{}
		if err := m.Write(metric); err != nil {
			continue
		}
		var endpoint, outcome string
		for _, lp := range metric.GetLabel() {
			switch lp.GetName() {
			case "endpoint":
				endpoint = lp.GetValue()
			case "outcome":
				outcome = lp.GetValue()
			}
		}
		out[endpoint+" "+outcome] += metric.GetCounter().GetValue()
	}
	return out
}

// Package metrics counts monitoring activity with Prometheus collectors.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tick outcomes.
const (
	Captured = "captured" // a frame was taken and handed off
	NoFrame  = "no_frame" // the camera had nothing yet
	Inactive = "inactive" // monitoring was paused for the tick
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	evidenceTicks  *prometheus.CounterVec
	attentionTicks *prometheus.CounterVec
	cameraFailures prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		evidenceTicks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizwatch_evidence_ticks_total",
				Help: "Evidence cycle ticks by outcome",
			},
			[]string{"outcome"},
		),
		attentionTicks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizwatch_attention_ticks_total",
				Help: "Attention cycle ticks by session mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		cameraFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "quizwatch_camera_acquire_failures_total",
				Help: "Camera acquisitions that failed and left a session unmonitored",
			},
		),
	}
}

// EvidenceTick counts one evidence cycle tick.
func (m *Metrics) EvidenceTick(outcome string) {
	if m == nil {
		return
	}
	m.evidenceTicks.WithLabelValues(outcome).Inc()
}

// AttentionTick counts one attention cycle tick.
func (m *Metrics) AttentionTick(mode, outcome string) {
	if m == nil {
		return
	}
	m.attentionTicks.WithLabelValues(mode, outcome).Inc()
}

// CameraFailure counts a failed camera acquisition.
func (m *Metrics) CameraFailure() {
	if m == nil {
		return
	}
	m.cameraFailures.Inc()
}

// Registry exposes the collectors for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen serves /metrics on addr in the background. Close the returned
// server to stop it.
func (m *Metrics) Listen(addr string) (io.Closer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(ln)
	return srv, nil
}

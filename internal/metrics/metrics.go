// Package metrics exposes Prometheus metrics for the command bridge
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "organizeimg"

// Metrics tracks the commands answered by the bridge
type Metrics struct {
	// RequestsTotal counts requests by command and status (ok, error)
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks how long each command took
	RequestDuration *prometheus.HistogramVec

	// ImagesListed counts entries returned by get_images
	ImagesListed prometheus.Counter
}

// New creates the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_requests_total",
				Help:      "Total bridge requests by command and status.",
			},
			[]string{"command", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bridge_request_duration_seconds",
				Help:      "Bridge request duration in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"command"},
		),
		ImagesListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_listed_total",
			Help:      "Total image entries returned by get_images.",
		}),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.ImagesListed)
	return m
}

// Observe records one answered request. A nil Metrics records nothing.
func (m *Metrics) Observe(command string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(command, status).Inc()
	m.RequestDuration.WithLabelValues(command).Observe(d.Seconds())
}

// Listed adds n returned entries
func (m *Metrics) Listed(n int) {
	if m == nil {
		return
	}
	m.ImagesListed.Add(float64(n))
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Serve runs the metrics HTTP server on addr until ctx is canceled
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("metrics server stopped", "addr", addr)
		return nil
	}
}

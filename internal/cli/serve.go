package cli

import (
	"context"
	"runtime"

	"github.com/babarot/organizeimg/internal/bridge"
	"github.com/babarot/organizeimg/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// Serve answers the get_images and trash_image commands read as JSON
// lines from stdin until stdin is closed or ctx is canceled. With
// --metrics-addr, Prometheus metrics are served over HTTP meanwhile.
func (c *CLI) Serve(ctx context.Context) error {
	m, err := c.trashMover()
	if err != nil {
		return err
	}

	opts := []bridge.Option{
		bridge.WithFilter(c.config.FilterOptions()),
		bridge.WithConcurrency(runtime.NumCPU()),
	}

	addr := c.option.Serve.MetricsAddr
	if addr == "" {
		return bridge.New(m, opts...).Serve(ctx, c.stdin, c.stdout)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts = append(opts, bridge.WithMetrics(metrics.New(reg)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Serve(ctx, addr, reg)
	})
	g.Go(func() error {
		// the metrics server goes down with the bridge
		defer cancel()
		return bridge.New(m, opts...).Serve(ctx, c.stdin, c.stdout)
	})
	return g.Wait()
}

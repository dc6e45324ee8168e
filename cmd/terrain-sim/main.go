// Command terrain-sim streams terrain around a scripted observer without a
// window, recording surfaces in memory and exporting Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"terrainstream/internal/config"
	"terrainstream/internal/metrics"
	"terrainstream/internal/surface"
	"terrainstream/internal/world"
)

type options struct {
	configPath  string
	ticks       int
	tick        time.Duration
	path        string
	speed       float64
	extent      float64
	reseedEvery time.Duration
	report      time.Duration
	metricsAddr string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "terrain YAML config (defaults to $"+config.EnvPath+")")
	flag.IntVar(&opts.ticks, "ticks", 0, "number of ticks to run, 0 runs until interrupted")
	flag.DurationVar(&opts.tick, "tick", 16*time.Millisecond, "foreground tick interval")
	flag.StringVar(&opts.path, "path", "circle", "observer path: still, line, circle or teleport")
	flag.Float64Var(&opts.speed, "speed", 20000, "observer speed in world units per second")
	flag.Float64Var(&opts.extent, "extent", 100000, "circle radius or teleport distance")
	flag.DurationVar(&opts.reseedEvery, "reseed-every", 0, "change the seed at this interval, 0 disables")
	flag.DurationVar(&opts.report, "report", time.Second, "stats log interval")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "Prometheus listen address, empty disables")
	flag.Parse()

	logger := log.New(os.Stdout, "[terrain-sim] ", log.LstdFlags|log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Printf("done")
}

func run(ctx context.Context, opts options, logger *log.Logger) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	path, err := newPath(opts.path, opts.speed, opts.extent)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	rec := surface.NewRecorder()
	tr, err := world.New(cfg, rec, world.WithLogger(logger), world.WithMetrics(m))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Printf("metrics on http://%s/metrics", opts.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return simulate(ctx, tr, rec, path, opts, logger)
	})

	return g.Wait()
}

// simulate drives the terrain from a fixed-rate ticker until ctx ends or the
// tick budget is spent, then stops it.
func simulate(ctx context.Context, tr *world.Terrain, rec *surface.Recorder, path Path, opts options, logger *log.Logger) error {
	store := config.NewStore(tr.Config())
	updates := store.Subscribe()

	if err := tr.Start(ctx, path.At(0)); err != nil {
		return err
	}
	defer func() {
		if tr.State() == world.StateRunning {
			_ = tr.Stop()
		}
	}()

	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()

	start := time.Now()
	last := start
	lastReport := start
	lastReseed := start

	for n := 0; opts.ticks == 0 || n < opts.ticks; n++ {
		var now time.Time
		select {
		case <-ctx.Done():
			return tr.Stop()
		case now = <-ticker.C:
		}
		dt := now.Sub(last).Seconds()
		last = now

		if opts.reseedEvery > 0 && now.Sub(lastReseed) >= opts.reseedEvery {
			lastReseed = now
			if err := store.SetSeed(store.Get().Seed + 1); err != nil {
				logger.Printf("reseed: %v", err)
			}
		}
		select {
		case cfg := <-updates:
			if err := tr.OnConfigChanged(cfg); err != nil {
				return err
			}
		default:
		}

		pos := path.At(now.Sub(start).Seconds())
		if _, err := tr.Update(dt, pos); err != nil {
			return err
		}

		if now.Sub(lastReport) >= opts.report {
			lastReport = now
			st := tr.Stats()
			created, destroyed := rec.Totals()
			logger.Printf("pos (%.0f, %.0f) spawned %d cached %d visible %d sweeps %d epoch %d created %d destroyed %d",
				pos.X(), pos.Y(), st.Spawned, st.Cached, rec.Visible(), st.Sweeps, st.Epoch, created, destroyed)
		}
	}

	return tr.Stop()
}

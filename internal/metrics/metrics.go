// Package metrics exposes Prometheus collectors for terrain streaming.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "terrain"

// Metrics groups the streaming collectors.
type Metrics struct {
	generated     prometheus.Counter
	buildFailures prometheus.Counter
	evicted       prometheus.Counter
	staleDropped  prometheus.Counter
	spawned       prometheus.Counter
	spawnFailures prometheus.Counter
	culled        prometheus.Counter
	resets        prometheus.Counter

	cacheEntries    prometheus.Gauge
	spawnedSurfaces prometheus.Gauge

	buildSeconds prometheus.Histogram
	sweepSeconds prometheus.Histogram
}

// New creates the collectors and registers them on reg.
// It panics if any collector is already registered there.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_generated_total",
			Help: "Chunk meshes built and inserted into the cache.",
		}),
		buildFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunk_build_failures_total",
			Help: "Chunk builds that failed and were left for a later sweep.",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_evicted_total",
			Help: "Cache entries dropped for being beyond the evict radius.",
		}),
		staleDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_stale_dropped_total",
			Help: "Builds discarded because the generation epoch changed mid-build.",
		}),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "surfaces_spawned_total",
			Help: "Mesh surfaces created from cached chunks.",
		}),
		spawnFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "surface_spawn_failures_total",
			Help: "Mesh surface creations rejected by the sink.",
		}),
		culled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "surfaces_culled_total",
			Help: "Mesh surfaces destroyed for leaving the render radius.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "config_resets_total",
			Help: "Configuration changes that flushed all generated data.",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "cache_entries",
			Help: "Chunk meshes currently cached.",
		}),
		spawnedSurfaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "spawned_surfaces",
			Help: "Mesh surfaces currently live.",
		}),
		buildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "chunk_build_seconds",
			Help:    "Time to build one chunk mesh.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		sweepSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "sweep_seconds",
			Help:    "Time for one streaming sweep over the generate radius.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}

	reg.MustRegister(
		m.generated, m.buildFailures, m.evicted, m.staleDropped,
		m.spawned, m.spawnFailures, m.culled, m.resets,
		m.cacheEntries, m.spawnedSurfaces,
		m.buildSeconds, m.sweepSeconds,
	)
	return m
}

// ChunkBuilt records the build time of a valid mesh, whether or not it is cached.
func (m *Metrics) ChunkBuilt(d time.Duration) {
	if m == nil {
		return
	}
	m.buildSeconds.Observe(d.Seconds())
}

// ChunkCached counts a built mesh accepted by the cache.
func (m *Metrics) ChunkCached() {
	if m == nil {
		return
	}
	m.generated.Inc()
}

func (m *Metrics) ChunkBuildFailed() {
	if m == nil {
		return
	}
	m.buildFailures.Inc()
}

func (m *Metrics) ChunksEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evicted.Add(float64(n))
}

func (m *Metrics) StaleDropped() {
	if m == nil {
		return
	}
	m.staleDropped.Inc()
}

func (m *Metrics) SurfaceSpawned() {
	if m == nil {
		return
	}
	m.spawned.Inc()
}

func (m *Metrics) SurfaceSpawnFailed() {
	if m == nil {
		return
	}
	m.spawnFailures.Inc()
}

func (m *Metrics) SurfacesCulled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.culled.Add(float64(n))
}

// ConfigReset counts a configuration change that flushed generated data.
func (m *Metrics) ConfigReset() {
	if m == nil {
		return
	}
	m.resets.Inc()
}

func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(n))
}

func (m *Metrics) SetSpawnedSurfaces(n int) {
	if m == nil {
		return
	}
	m.spawnedSurfaces.Set(float64(n))
}

func (m *Metrics) SweepDone(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepSeconds.Observe(d.Seconds())
}

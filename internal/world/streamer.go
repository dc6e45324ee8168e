package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/bits"
	"sync/atomic"
	"time"

	"terrainstream/internal/chunk"
	"terrainstream/internal/meshing"
	"terrainstream/internal/metrics"
	"terrainstream/internal/profiling"
)

// ErrWorkerStuck is returned by Stop when the streaming goroutine did not
// exit within the shutdown timeout.
var ErrWorkerStuck = errors.New("streaming worker did not stop in time")

// BuildFunc turns a chunk coordinate into geometry.
type BuildFunc func(chunk.Coord, meshing.Params) (*chunk.MeshData, error)

// Generation is an immutable snapshot of everything a sweep needs.
// A new Generation is published on every configuration change.
type Generation struct {
	Params         meshing.Params
	Epoch          uint64
	GenerateRadius float64
	EvictRadius    float64
}

// SweepResult summarizes one pass over the generation window.
type SweepResult struct {
	Built       int
	Failed      int
	Stale       int
	Evicted     int
	Interrupted bool // cancelled, re-parameterized or observer changed chunk
}

// Streamer fills the cache around the observer from a single background
// goroutine, nearest chunk first.
type Streamer struct {
	cache    *Cache
	observer *Observer
	gen      atomic.Pointer[Generation]
	build    BuildFunc

	idle    time.Duration
	logger  *log.Logger
	metrics *metrics.Metrics

	wake    chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	started atomic.Bool

	sweeps atomic.Uint64
	// worker goroutine only
	failures  map[chunk.Coord]int
	lastEpoch uint64
}

// NewStreamer creates a stopped streamer. build defaults to meshing.Build.
func NewStreamer(cache *Cache, observer *Observer, gen Generation, build BuildFunc, idle time.Duration, logger *log.Logger, m *metrics.Metrics) *Streamer {
	if build == nil {
		build = meshing.Build
	}
	if idle <= 0 {
		idle = 20 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Streamer{
		cache:    cache,
		observer: observer,
		build:    build,
		idle:     idle,
		logger:   logger,
		metrics:  m,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		failures: make(map[chunk.Coord]int),
	}
	s.gen.Store(&gen)
	return s
}

// Start launches the worker goroutine. It runs until ctx is cancelled or Stop is called.
func (s *Streamer) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

// Stop cancels the worker and waits up to timeout for it to exit.
func (s *Streamer) Stop(timeout time.Duration) error {
	if !s.started.Load() {
		return nil
	}
	s.cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return nil
	case <-timer.C:
		s.logger.Printf("streamer: worker still running %s after cancel, abandoning it", timeout)
		return ErrWorkerStuck
	}
}

// SetGeneration publishes new generation parameters and wakes the worker.
// Chunks already being built under the old generation are discarded.
func (s *Streamer) SetGeneration(gen Generation) {
	s.gen.Store(&gen)
	s.Wake()
}

// Generation returns the current generation snapshot.
func (s *Streamer) Generation() Generation {
	return *s.gen.Load()
}

// Wake asks an idle worker to sweep again immediately.
func (s *Streamer) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Sweeps returns the number of completed, uninterrupted sweeps.
func (s *Streamer) Sweeps() uint64 {
	return s.sweeps.Load()
}

func (s *Streamer) run(ctx context.Context) {
	defer close(s.done)

	idle := time.NewTimer(s.idle)
	defer idle.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		res := s.Sweep(ctx)
		if res.Interrupted {
			continue
		}

		idle.Reset(s.idle)
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-idle.C:
		}
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
	}
}

// Sweep builds every missing chunk in the generation window around the
// observer, then evicts cached chunks beyond the eviction radius. It checks
// for cancellation and re-parameterization between chunk builds and returns
// early if the observer moves to another chunk so the order can be recomputed.
func (s *Streamer) Sweep(ctx context.Context) SweepResult {
	defer profiling.Track("world.Sweep")()
	start := time.Now()

	var res SweepResult
	gen := s.gen.Load()
	if gen.Epoch != s.lastEpoch {
		clear(s.failures)
		s.lastEpoch = gen.Epoch
	}
	size := gen.Params.Size
	pos := s.observer.Position()
	home := chunk.FromWorld(pos, size)

	for _, coord := range chunk.Window(pos, gen.GenerateRadius, size) {
		if ctx.Err() != nil || s.gen.Load() != gen {
			res.Interrupted = true
			return res
		}
		if chunk.FromWorld(s.observer.Position(), size) != home {
			res.Interrupted = true
			break
		}
		if s.cache.Contains(coord) {
			continue
		}

		mesh, err := s.buildOne(coord, gen.Params)
		if err != nil {
			res.Failed++
			s.noteFailure(coord, err)
			continue
		}
		delete(s.failures, coord)

		switch err := s.cache.Insert(coord, mesh, gen.Epoch); {
		case errors.Is(err, ErrStaleEpoch):
			res.Stale++
			s.metrics.StaleDropped()
		case err == nil:
			res.Built++
			s.metrics.ChunkCached()
		}
	}

	res.Evicted = s.cache.Evict(s.observer.Position(), gen.EvictRadius, size)
	if !res.Interrupted {
		s.sweeps.Add(1)
		s.metrics.SweepDone(time.Since(start))
	}
	return res
}

func (s *Streamer) buildOne(coord chunk.Coord, p meshing.Params) (mesh *chunk.MeshData, err error) {
	defer profiling.Track("world.BuildChunk")()
	defer func() {
		if r := recover(); r != nil {
			mesh, err = nil, fmt.Errorf("build %s panicked: %v", coord, r)
		}
	}()

	start := time.Now()
	mesh, err = s.build(coord, p)
	if err != nil {
		return nil, err
	}
	if mesh == nil || !mesh.Valid() {
		return nil, fmt.Errorf("build %s: malformed mesh", coord)
	}
	s.metrics.ChunkBuilt(time.Since(start))
	return mesh, nil
}

// noteFailure logs the first failure of a chunk and then only on powers of
// two so a permanently broken chunk does not flood the log.
func (s *Streamer) noteFailure(coord chunk.Coord, err error) {
	s.metrics.ChunkBuildFailed()
	n := s.failures[coord] + 1
	s.failures[coord] = n
	if bits.OnesCount(uint(n)) == 1 {
		s.logger.Printf("streamer: chunk %s failed (attempt %d): %v", coord, n, err)
	}
}

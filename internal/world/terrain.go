// Package world streams procedurally generated terrain chunks around a
// moving observer. A single background goroutine fills a shared cache and
// the foreground turns cached chunks into surfaces on every tick.
package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/chunk"
	"terrainstream/internal/config"
	"terrainstream/internal/meshing"
	"terrainstream/internal/metrics"
	"terrainstream/internal/surface"
)

var (
	ErrAlreadyStarted = errors.New("terrain already started")
	ErrNotRunning     = errors.New("terrain not running")
)

// State is the terrain's lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Stats is a point-in-time summary for logging and HUDs.
type Stats struct {
	State   State
	Epoch   uint64
	Cached  int
	Spawned int
	Sweeps  uint64
	Uptime  time.Duration
}

// Option customizes a Terrain.
type Option func(*Terrain)

// WithLogger sets the logger used by the terrain and its worker.
func WithLogger(l *log.Logger) Option {
	return func(t *Terrain) { t.logger = l }
}

// WithMetrics records terrain activity into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Terrain) { t.metrics = m }
}

// WithBuilder replaces the chunk builder.
func WithBuilder(fn BuildFunc) Option {
	return func(t *Terrain) { t.build = fn }
}

// Terrain owns the chunk cache, the streaming worker and the spawned surfaces.
// Start, Update, OnConfigChanged and Stop must be called from one goroutine.
type Terrain struct {
	mu    sync.Mutex
	state State
	cfg   config.Terrain
	epoch uint64

	cache     *Cache
	observer  *Observer
	streamer  *Streamer
	lifecycle *Lifecycle
	sink      surface.Sink
	build     BuildFunc
	lastChunk chunk.Coord
	uptime    time.Duration

	logger  *log.Logger
	metrics *metrics.Metrics
}

// New validates cfg and returns an uninitialized terrain that hands surfaces to sink.
func New(cfg config.Terrain, sink surface.Sink, opts ...Option) (*Terrain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, errors.New("terrain: nil surface sink")
	}
	t := &Terrain{
		cfg:  cfg.Clone(),
		sink: sink,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.Default()
	}
	return t, nil
}

// Start seeds the observer, spawns the streaming goroutine and moves to Running.
func (t *Terrain) Start(ctx context.Context, observer mgl32.Vec3) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateUninitialized {
		return fmt.Errorf("start in state %s: %w", t.state, ErrAlreadyStarted)
	}

	t.cache = NewCache(t.metrics)
	t.cache.Reset(t.epoch)
	t.observer = NewObserver(observer)
	t.lastChunk = chunk.FromWorld(observer, t.cfg.ChunkSize)
	t.lifecycle = NewLifecycle(t.cache, t.sink, lifecycleSettings(t.cfg), t.logger, t.metrics)
	t.streamer = NewStreamer(t.cache, t.observer, t.generation(), t.build,
		t.cfg.Streaming.IdleInterval, t.logger, t.metrics)
	t.streamer.Start(ctx)

	t.state = StateRunning
	t.logger.Printf("terrain: started at %v, chunk %s, render radius %.0f, generate radius %.0f",
		observer, t.lastChunk, t.cfg.RenderRadius, t.cfg.GenerateRadius())
	return nil
}

// Update publishes the observer position and runs one spawn and cull pass.
func (t *Terrain) Update(dt float64, observer mgl32.Vec3) (TickStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return TickStats{}, fmt.Errorf("update in state %s: %w", t.state, ErrNotRunning)
	}
	if dt > 0 {
		t.uptime += time.Duration(dt * float64(time.Second))
	}

	t.observer.Set(observer)
	if c := chunk.FromWorld(observer, t.cfg.ChunkSize); c != t.lastChunk {
		t.lastChunk = c
		t.streamer.Wake()
	}
	return t.lifecycle.Update(observer), nil
}

// OnConfigChanged discards all generated terrain and regenerates it with cfg.
// Before Start it only replaces the configuration.
func (t *Terrain) OnConfigChanged(cfg config.Terrain) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateUninitialized:
		t.cfg = cfg.Clone()
		return nil
	case StateRunning:
	default:
		return fmt.Errorf("config change in state %s: %w", t.state, ErrNotRunning)
	}

	t.cfg = cfg.Clone()
	t.epoch++
	t.streamer.SetGeneration(t.generation())

	destroyed := t.lifecycle.DestroyAll()
	t.lifecycle.Configure(lifecycleSettings(t.cfg))
	t.cache.Reset(t.epoch)
	t.lastChunk = chunk.FromWorld(t.observer.Position(), t.cfg.ChunkSize)
	t.metrics.ConfigReset()

	t.logger.Printf("terrain: config changed, epoch %d, destroyed %d surfaces", t.epoch, destroyed)
	return nil
}

// Stop cancels the worker, waits for it up to the configured shutdown
// timeout and destroys every surface. The terrain ends in Stopped even when
// the worker does not exit in time; ErrWorkerStuck is returned in that case.
func (t *Terrain) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateUninitialized:
		t.state = StateStopped
		return nil
	case StateRunning:
	default:
		return nil
	}

	t.state = StateShuttingDown
	timeout := t.cfg.Streaming.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.Default().Streaming.ShutdownTimeout
	}
	err := t.streamer.Stop(timeout)
	if err != nil {
		t.logger.Printf("terrain: %v; surfaces are torn down anyway", err)
	}

	destroyed := t.lifecycle.DestroyAll()
	// a stuck worker may still finish a build; a new epoch rejects it
	t.epoch++
	t.cache.Reset(t.epoch)
	t.state = StateStopped
	t.logger.Printf("terrain: stopped, destroyed %d surfaces", destroyed)
	return err
}

// State returns the current lifecycle state.
func (t *Terrain) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Config returns a copy of the active configuration.
func (t *Terrain) Config() config.Terrain {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Clone()
}

// Stats returns counters for the current state. Cache and spawn counts are
// zero before Start.
func (t *Terrain) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Stats{State: t.state, Epoch: t.epoch, Uptime: t.uptime}
	if t.cache != nil {
		st.Cached = t.cache.Len()
		st.Spawned = t.lifecycle.Len()
		st.Sweeps = t.streamer.Sweeps()
	}
	return st
}

// Cache exposes the chunk cache. Nil before Start.
func (t *Terrain) Cache() *Cache {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache
}

// Spawned returns the coordinates with live surfaces.
func (t *Terrain) Spawned() []chunk.Coord {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lifecycle == nil {
		return nil
	}
	return t.lifecycle.Spawned()
}

// Handle returns the surface handle spawned for coord.
func (t *Terrain) Handle(coord chunk.Coord) (surface.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lifecycle == nil {
		return surface.Handle{}, false
	}
	return t.lifecycle.Handle(coord)
}

func (t *Terrain) generation() Generation {
	return Generation{
		Params:         meshing.ParamsFromConfig(t.cfg),
		Epoch:          t.epoch,
		GenerateRadius: t.cfg.GenerateRadius(),
		EvictRadius:    t.cfg.EvictRadius(),
	}
}

func lifecycleSettings(cfg config.Terrain) LifecycleSettings {
	return LifecycleSettings{
		ChunkSize:        cfg.ChunkSize,
		RenderRadius:     cfg.RenderRadius,
		HysteresisMargin: cfg.Streaming.HysteresisMargin,
		Material:         cfg.Material,
	}
}

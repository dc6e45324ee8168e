package world

import (
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/chunk"
	"terrainstream/internal/metrics"
	"terrainstream/internal/profiling"
	"terrainstream/internal/surface"
)

// compactMin is the peak table size below which the spawned map is never rebuilt.
const compactMin = 64

// LifecycleSettings are the foreground parameters for spawning and culling.
type LifecycleSettings struct {
	ChunkSize        float64
	RenderRadius     float64
	HysteresisMargin float64 // squared world units
	Material         string
}

// TickStats reports what one foreground update did.
type TickStats struct {
	Spawned int
	Culled  int
	Pending int // in render range but not generated yet
	Failed  int
	Live    int
}

// Lifecycle turns cached chunk data into renderable surfaces and removes
// surfaces that fall out of range. It is only used from the foreground.
type Lifecycle struct {
	cache    *Cache
	sink     surface.Sink
	settings LifecycleSettings

	spawned map[chunk.Coord]surface.Handle
	peak    int

	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewLifecycle creates a lifecycle manager with no live surfaces.
func NewLifecycle(cache *Cache, sink surface.Sink, settings LifecycleSettings, logger *log.Logger, m *metrics.Metrics) *Lifecycle {
	if logger == nil {
		logger = log.Default()
	}
	return &Lifecycle{
		cache:    cache,
		sink:     sink,
		settings: settings,
		spawned:  make(map[chunk.Coord]surface.Handle),
		logger:   logger,
		metrics:  m,
	}
}

// Configure replaces the spawn and cull parameters.
func (l *Lifecycle) Configure(settings LifecycleSettings) {
	l.settings = settings
}

// Update runs the spawn pass and then the cull pass for an observer at pos.
func (l *Lifecycle) Update(pos mgl32.Vec3) TickStats {
	defer profiling.Track("world.Lifecycle.Update")()

	var st TickStats
	l.spawnPass(pos, &st)
	st.Culled = l.cullPass(pos)
	st.Live = len(l.spawned)
	l.metrics.SetSpawnedSurfaces(st.Live)
	return st
}

func (l *Lifecycle) spawnPass(pos mgl32.Vec3, st *TickStats) {
	for _, coord := range chunk.Window(pos, l.settings.RenderRadius, l.settings.ChunkSize) {
		if _, ok := l.spawned[coord]; ok {
			continue
		}
		mesh, ok := l.cache.Acquire(coord)
		if !ok {
			st.Pending++
			continue
		}
		if err := l.spawn(coord, mesh); err != nil {
			l.cache.Release(coord)
			l.logger.Printf("lifecycle: spawn %s: %v", coord, err)
			l.metrics.SurfaceSpawnFailed()
			st.Failed++
			continue
		}
		st.Spawned++
	}
	if n := len(l.spawned); n > l.peak {
		l.peak = n
	}
}

func (l *Lifecycle) spawn(coord chunk.Coord, mesh *chunk.MeshData) error {
	h, err := l.sink.Create(mesh)
	if err != nil {
		return err
	}
	l.sink.SetWorldLocation(h, coord.Origin(float32(l.settings.ChunkSize)))
	l.sink.AssignMaterial(h, l.settings.Material)
	if err := l.sink.Register(h); err != nil {
		l.sink.Destroy(h)
		return err
	}
	l.spawned[coord] = h
	l.metrics.SurfaceSpawned()
	return nil
}

// cullPass removes surfaces whose chunk center is farther than
// sqrt(R² + margin) from pos. The margin widens the keep circle beyond the
// spawn circle so chunks on the boundary do not flicker.
func (l *Lifecycle) cullPass(pos mgl32.Vec3) int {
	limit := l.settings.RenderRadius*l.settings.RenderRadius + l.settings.HysteresisMargin

	var out []chunk.Coord
	for coord := range l.spawned {
		if coord.DistanceSq(pos, l.settings.ChunkSize) > limit {
			out = append(out, coord)
		}
	}
	for _, coord := range out {
		l.destroy(coord)
	}
	if len(out) > 0 {
		l.metrics.SurfacesCulled(len(out))
		l.compact()
	}
	return len(out)
}

func (l *Lifecycle) destroy(coord chunk.Coord) {
	h := l.spawned[coord]
	l.sink.Unregister(h)
	l.sink.Destroy(h)
	delete(l.spawned, coord)
	l.cache.Release(coord)
}

// compact rebuilds the spawned map after a large cull so its buckets do not
// stay sized for the peak.
func (l *Lifecycle) compact() {
	n := len(l.spawned)
	if l.peak < compactMin || n > l.peak/4 {
		return
	}
	fresh := make(map[chunk.Coord]surface.Handle, n)
	for coord, h := range l.spawned {
		fresh[coord] = h
	}
	l.spawned = fresh
	l.peak = n
}

// DestroyAll unregisters and destroys every live surface. Returns how many were removed.
func (l *Lifecycle) DestroyAll() int {
	n := len(l.spawned)
	for coord := range l.spawned {
		l.destroy(coord)
	}
	l.spawned = make(map[chunk.Coord]surface.Handle)
	l.peak = 0
	l.metrics.SetSpawnedSurfaces(0)
	return n
}

// IsSpawned reports whether coord has a live surface.
func (l *Lifecycle) IsSpawned(coord chunk.Coord) bool {
	_, ok := l.spawned[coord]
	return ok
}

// Handle returns the surface handle for coord.
func (l *Lifecycle) Handle(coord chunk.Coord) (surface.Handle, bool) {
	h, ok := l.spawned[coord]
	return h, ok
}

// Spawned returns the coordinates with live surfaces, sorted by X then Y.
func (l *Lifecycle) Spawned() []chunk.Coord {
	out := make([]chunk.Coord, 0, len(l.spawned))
	for coord := range l.spawned {
		out = append(out, coord)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// Len returns the number of live surfaces.
func (l *Lifecycle) Len() int {
	return len(l.spawned)
}

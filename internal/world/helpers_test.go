package world

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"terrainstream/internal/chunk"
	"terrainstream/internal/config"
	"terrainstream/internal/meshing"
)

// testConfig is a small world: 100-unit chunks, 250 render radius, 375
// generate radius and 475 evict radius.
func testConfig() config.Terrain {
	cfg := config.Default()
	cfg.Scale = 0.01
	cfg.ChunkSize = 100
	cfg.ChunkResolution = 3
	cfg.RenderRadius = 250
	cfg.Streaming.HysteresisMargin = 10000
	cfg.Streaming.IdleInterval = time.Millisecond
	cfg.Streaming.ShutdownTimeout = time.Second
	return cfg
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testGeneration(cfg config.Terrain, epoch uint64) Generation {
	return Generation{
		Params:         meshing.ParamsFromConfig(cfg),
		Epoch:          epoch,
		GenerateRadius: cfg.GenerateRadius(),
		EvictRadius:    cfg.EvictRadius(),
	}
}

func fakeMesh(coord chunk.Coord) *chunk.MeshData {
	return &chunk.MeshData{
		Coord:      coord,
		Resolution: 2,
		Vertices:   make([]mgl32.Vec3, 4),
		Normals:    make([]mgl32.Vec3, 4),
		UVs:        make([]mgl32.Vec2, 4),
		Colors:     make([]mgl32.Vec4, 4),
		Tangents:   make([]mgl32.Vec3, 4),
		Triangles:  []uint32{0, 1, 3, 0, 3, 2},
	}
}

func quadBuilder(coord chunk.Coord, _ meshing.Params) (*chunk.MeshData, error) {
	return fakeMesh(coord), nil
}

func fillWindow(t *testing.T, c *Cache, pos mgl32.Vec3, radius, size float64) []chunk.Coord {
	t.Helper()
	coords := chunk.Window(pos, radius, size)
	for _, coord := range coords {
		require.NoError(t, c.Insert(coord, fakeMesh(coord), c.Epoch()))
	}
	return coords
}

func coordSet(coords []chunk.Coord) map[chunk.Coord]bool {
	set := make(map[chunk.Coord]bool, len(coords))
	for _, c := range coords {
		set[c] = true
	}
	return set
}

// gaugeValue reads a gauge or counter by its full name from reg.
func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		require.Len(t, f.GetMetric(), 1)
		m := f.GetMetric()[0]
		if g := m.GetGauge(); g != nil {
			return g.GetValue()
		}
		return m.GetCounter().GetValue()
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

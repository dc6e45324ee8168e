package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChunkBuilt(time.Millisecond)
		m.ChunkBuildFailed()
		m.ChunksEvicted(3)
		m.StaleDropped()
		m.SurfaceSpawned()
		m.SurfaceSpawnFailed()
		m.SurfacesCulled(2)
		m.ChunkCached()
		m.ConfigReset()
		m.SetCacheEntries(10)
		m.SetSpawnedSurfaces(4)
		m.SweepDone(time.Second)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ChunkBuilt(2 * time.Millisecond)
	m.ChunkBuilt(3 * time.Millisecond)
	m.ChunkCached()
	m.ConfigReset()
	m.ChunksEvicted(5)
	m.ChunksEvicted(0)
	m.SurfacesCulled(2)
	m.SetCacheEntries(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generated), "only cached builds count as generated")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resets))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.evicted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.culled))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.cacheEntries))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 12)
}

func TestDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

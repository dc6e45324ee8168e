package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDerivedConstants(t *testing.T) {
	cfg := Default()
	cfg.Scale = 128
	cfg.HeightToWidthRatio = 0.5
	cfg.RenderRadius = 1000
	cfg.ChunkSize = 100

	assert.InDelta(t, 2.0, cfg.Frequency(), 1e-12)
	assert.InDelta(t, 0.0000625*2.0/16, cfg.NoiseFrequency(), 1e-18)
	assert.InDelta(t, 64.0, cfg.HeightScale(), 1e-12)
	assert.InDelta(t, 1500.0, cfg.GenerateRadius(), 1e-12)
	assert.InDelta(t, 1600.0, cfg.EvictRadius(), 1e-12, "defaults to one chunk edge of margin")

	cfg.Streaming.EvictMargin = 250
	assert.InDelta(t, 1750.0, cfg.EvictRadius(), 1e-12)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Terrain){
		"zero scale":      func(c *Terrain) { c.Scale = 0 },
		"resolution":      func(c *Terrain) { c.ChunkResolution = 1 },
		"chunk size":      func(c *Terrain) { c.ChunkSize = -1 },
		"render radius":   func(c *Terrain) { c.RenderRadius = 0 },
		"radius too wide": func(c *Terrain) { c.ChunkSize, c.RenderRadius = 1, 1e9 },
		"noise type":      func(c *Terrain) { c.Noise.Type = "worley" },
		"octaves":         func(c *Terrain) { c.Noise.Octaves = 0 },
		"colors":          func(c *Terrain) { c.Colors = "rainbow" },
		"hysteresis":      func(c *Terrain) { c.Streaming.HysteresisMargin = -1 },
		"unsorted curve":  func(c *Terrain) { c.Curve = []CurvePoint{{In: 1}, {In: 0}} },
		"duplicate curve": func(c *Terrain) { c.Curve = []CurvePoint{{In: 0}, {In: 0}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidateRenderRadiusBound(t *testing.T) {
	cfg := Default()
	cfg.RenderRadius = MaxRenderChunks * cfg.ChunkSize
	assert.NoError(t, cfg.Validate())

	cfg.RenderRadius = math.Nextafter(cfg.RenderRadius, math.Inf(1))
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestLoadRejectsHugeRenderRadius(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 1\nrender_radius: 1e9\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	data := `
scale: 50
chunk_resolution: 16
chunk_size: 100
render_radius: 250
seed: 42
material: terrain/rock
curve:
  - {in: -1, out: 0}
  - {in: 1, out: 1}
noise:
  type: perlin
  octaves: 3
  lacunarity: 2
  gain: 0.5
streaming:
  idle_interval: 5ms
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.Scale)
	assert.Equal(t, 16, cfg.ChunkResolution)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "terrain/rock", cfg.Material)
	assert.Equal(t, NoisePerlin, cfg.Noise.Type)
	assert.Len(t, cfg.Curve, 2)
	assert.Equal(t, 5*time.Millisecond, cfg.Streaming.IdleInterval)
	// untouched fields keep their defaults
	assert.Equal(t, Default().HeightToWidthRatio, cfg.HeightToWidthRatio)
	assert.Equal(t, Default().Streaming.ShutdownTimeout, cfg.Streaming.ShutdownTimeout)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_resolution: 1\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadRandomizesZeroSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotZero(t, cfg.Seed)
}

func TestLoadEmptyPathUsesEnv(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Scale, cfg.Scale)

	t.Setenv(EnvPath, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load("")
	assert.Error(t, err)
}

func TestStoreNotifiesLatest(t *testing.T) {
	s := NewStore(Default())
	ch := s.Subscribe()

	require.NoError(t, s.SetScale(200))
	require.NoError(t, s.SetScale(300))

	got := <-ch
	assert.Equal(t, 300.0, got.Scale)
	assert.Equal(t, 300.0, s.Get().Scale)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra notification: %+v", extra)
	default:
	}
}

func TestStoreRejectsInvalidUpdate(t *testing.T) {
	s := NewStore(Default())
	ch := s.Subscribe()

	err := s.Update(func(c *Terrain) { c.ChunkResolution = 0 })
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, Default().ChunkResolution, s.Get().ChunkResolution)
	assert.Empty(t, ch)
}

func TestStoreClampsRenderRadius(t *testing.T) {
	s := NewStore(Default())
	size := s.Get().ChunkSize

	require.NoError(t, s.SetRenderRadius(1))
	assert.Equal(t, size, s.Get().RenderRadius)

	require.NoError(t, s.SetRenderRadius(1e12))
	assert.Equal(t, 64*size, s.Get().RenderRadius)
}

func TestStoreGetIsACopy(t *testing.T) {
	cfg := Default()
	cfg.Curve = []CurvePoint{{In: -1, Out: -1}, {In: 1, Out: 1}}
	s := NewStore(cfg)

	got := s.Get()
	got.Curve[0].Out = 99
	assert.Equal(t, -1.0, s.Get().Curve[0].Out)
}

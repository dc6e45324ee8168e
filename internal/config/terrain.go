package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalid is returned (wrapped) by Validate for any out-of-range setting.
var ErrInvalid = errors.New("invalid terrain config")

const (
	// BaseFrequency is divided by Scale to get the visual frequency.
	BaseFrequency = 256.0
	// GenerateRadiusFactor keeps generation ahead of the render radius.
	GenerateRadiusFactor = 1.5

	noiseFrequencyFactor  = 0.0000625
	noiseFrequencyDivisor = 16.0
)

// Noise types.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
)

// Vertex color policies.
const (
	ColorsUniform   = "uniform"
	ColorsElevation = "elevation"
)

// CurvePoint is one key of the terrain curve: raw noise In maps to Out.
type CurvePoint struct {
	In  float64 `yaml:"in"`
	Out float64 `yaml:"out"`
}

// NoiseConfig selects and tunes the fractal noise backend.
type NoiseConfig struct {
	Type       string  `yaml:"type"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
}

// StreamingConfig tunes the background worker and the spawn/cull passes.
type StreamingConfig struct {
	// HysteresisMargin is in squared world units and is added to RenderRadius²
	// before a spawned chunk is culled.
	HysteresisMargin float64 `yaml:"hysteresis_margin"`
	// EvictMargin is added to the generate radius before cache eviction.
	// Zero or negative means one chunk edge.
	EvictMargin     float64       `yaml:"evict_margin"`
	IdleInterval    time.Duration `yaml:"idle_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Terrain is the configuration surface owned by the host.
// Any change to it invalidates every generated chunk.
type Terrain struct {
	Scale              float64         `yaml:"scale"`
	HeightToWidthRatio float64         `yaml:"height_to_width_ratio"`
	ChunkResolution    int             `yaml:"chunk_resolution"`
	ChunkSize          float64         `yaml:"chunk_size"`
	RenderRadius       float64         `yaml:"render_radius"`
	Seed               int64           `yaml:"seed"`
	Material           string          `yaml:"material"`
	Curve              []CurvePoint    `yaml:"curve"`
	Noise              NoiseConfig     `yaml:"noise"`
	Colors             string          `yaml:"colors"`
	Streaming          StreamingConfig `yaml:"streaming"`
}

// Default returns a configuration that renders a few kilometres of rolling hills.
func Default() Terrain {
	return Terrain{
		Scale:              100,
		HeightToWidthRatio: 50,
		ChunkResolution:    32,
		ChunkSize:          10000,
		RenderRadius:       50000,
		Seed:               1337,
		Material:           "terrain/default",
		Noise: NoiseConfig{
			Type:       NoiseSimplex,
			Octaves:    6,
			Lacunarity: 2.0,
			Gain:       0.5,
		},
		Colors: ColorsElevation,
		Streaming: StreamingConfig{
			HysteresisMargin: 10000,
			IdleInterval:     20 * time.Millisecond,
			ShutdownTimeout:  2 * time.Second,
		},
	}
}

// Frequency returns BaseFrequency / Scale.
func (t Terrain) Frequency() float64 {
	return BaseFrequency / t.Scale
}

// NoiseFrequency is the frequency handed to the fractal noise function.
func (t Terrain) NoiseFrequency() float64 {
	return noiseFrequencyFactor * t.Frequency() / noiseFrequencyDivisor
}

// HeightScale multiplies the curve output.
func (t Terrain) HeightScale() float64 {
	return t.Scale * t.HeightToWidthRatio
}

// GenerateRadius returns the precomputation radius.
func (t Terrain) GenerateRadius() float64 {
	return t.RenderRadius * GenerateRadiusFactor
}

// EvictRadius returns the distance beyond which cached chunks are dropped.
func (t Terrain) EvictRadius() float64 {
	margin := t.Streaming.EvictMargin
	if margin <= 0 {
		margin = t.ChunkSize
	}
	return t.GenerateRadius() + margin
}

// Clone returns a deep copy.
func (t Terrain) Clone() Terrain {
	if t.Curve != nil {
		t.Curve = append([]CurvePoint(nil), t.Curve...)
	}
	return t
}

// MaxRenderChunks bounds RenderRadius in chunk edges. The streaming window
// grows with the square of this ratio.
const MaxRenderChunks = 64

// Validate checks every field and returns an error wrapping ErrInvalid.
func (t Terrain) Validate() error {
	switch {
	case !positive(t.Scale):
		return fmt.Errorf("%w: scale must be > 0, got %v", ErrInvalid, t.Scale)
	case t.HeightToWidthRatio < 0 || math.IsNaN(t.HeightToWidthRatio) || math.IsInf(t.HeightToWidthRatio, 0):
		return fmt.Errorf("%w: height_to_width_ratio must be >= 0, got %v", ErrInvalid, t.HeightToWidthRatio)
	case t.ChunkResolution < 2 || t.ChunkResolution > 1024:
		return fmt.Errorf("%w: chunk_resolution must be in [2,1024], got %d", ErrInvalid, t.ChunkResolution)
	case !positive(t.ChunkSize):
		return fmt.Errorf("%w: chunk_size must be > 0, got %v", ErrInvalid, t.ChunkSize)
	case !positive(t.RenderRadius):
		return fmt.Errorf("%w: render_radius must be > 0, got %v", ErrInvalid, t.RenderRadius)
	case t.RenderRadius > MaxRenderChunks*t.ChunkSize:
		return fmt.Errorf("%w: render_radius must be at most %d chunk edges, got %v with chunk_size %v",
			ErrInvalid, MaxRenderChunks, t.RenderRadius, t.ChunkSize)
	case t.Streaming.HysteresisMargin < 0:
		return fmt.Errorf("%w: hysteresis_margin must be >= 0", ErrInvalid)
	case t.Streaming.IdleInterval < 0 || t.Streaming.ShutdownTimeout < 0:
		return fmt.Errorf("%w: streaming intervals must be >= 0", ErrInvalid)
	}

	switch t.Noise.Type {
	case NoiseSimplex, NoisePerlin:
	default:
		return fmt.Errorf("%w: unknown noise type %q", ErrInvalid, t.Noise.Type)
	}
	if t.Noise.Octaves < 1 || t.Noise.Octaves > 16 {
		return fmt.Errorf("%w: noise octaves must be in [1,16], got %d", ErrInvalid, t.Noise.Octaves)
	}
	if !positive(t.Noise.Lacunarity) || !positive(t.Noise.Gain) {
		return fmt.Errorf("%w: noise lacunarity and gain must be > 0", ErrInvalid)
	}

	switch t.Colors {
	case ColorsUniform, ColorsElevation:
	default:
		return fmt.Errorf("%w: unknown color policy %q", ErrInvalid, t.Colors)
	}

	for i, p := range t.Curve {
		if math.IsNaN(p.In) || math.IsNaN(p.Out) {
			return fmt.Errorf("%w: curve key %d is NaN", ErrInvalid, i)
		}
		if i > 0 && p.In <= t.Curve[i-1].In {
			return fmt.Errorf("%w: curve keys must be strictly ascending (key %d)", ErrInvalid, i)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

package heightfield

import (
	"errors"
	"fmt"
	"math"

	"terrainstream/internal/config"
)

// ErrNonFiniteHeight is returned when the noise or curve produces NaN or ±Inf.
var ErrNonFiniteHeight = errors.New("non-finite height")

// Attributes carries per-sample hints for vertex attribute policies.
type Attributes struct {
	Noise     float64 // raw fractal output
	Elevation float64 // curve output before height scaling
}

// Generator maps world (x, y) to a terrain height. It is immutable and
// safe for concurrent use; equal settings give bit-identical output.
type Generator struct {
	noise       Fractal
	curve       Curve
	seed        int64
	frequency   float64
	heightScale float64
}

// New builds a generator from the terrain configuration.
func New(cfg config.Terrain) *Generator {
	return &Generator{
		noise:       NewFractal(cfg.Noise, cfg.Seed),
		curve:       NewCurve(cfg.Curve),
		seed:        cfg.Seed,
		frequency:   cfg.NoiseFrequency(),
		heightScale: cfg.HeightScale(),
	}
}

// NewWithNoise builds a generator over an arbitrary noise function.
func NewWithNoise(noise Fractal, curve Curve, frequency, heightScale float64) *Generator {
	return &Generator{
		noise:       noise,
		curve:       curve,
		frequency:   frequency,
		heightScale: heightScale,
	}
}

// Sample returns the height at world (x, y).
func (g *Generator) Sample(x, y float64) (float64, Attributes, error) {
	n := g.noise.Eval(x*g.frequency, y*g.frequency)
	e := g.curve.Eval(n)
	h := e * g.heightScale
	attrs := Attributes{Noise: n, Elevation: e}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, attrs, fmt.Errorf("%w at (%g,%g): noise=%g elevation=%g", ErrNonFiniteHeight, x, y, n, e)
	}
	return h, attrs, nil
}

// Seed returns the configured seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Frequency returns the noise-space frequency.
func (g *Generator) Frequency() float64 {
	return g.frequency
}

// HeightScale returns the multiplier applied after the curve.
func (g *Generator) HeightScale() float64 {
	return g.heightScale
}

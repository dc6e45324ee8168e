package heightfield

import (
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"terrainstream/internal/config"
)

// Fractal is a seeded 2D fractal noise function returning roughly [-1, 1].
// Implementations must be safe for concurrent reads.
type Fractal interface {
	Eval(x, y float64) float64
}

// simplexFractal is fractal Brownian motion over OpenSimplex octaves,
// one independently seeded layer per octave.
type simplexFractal struct {
	octaves    []opensimplex.Noise
	lacunarity float64
	gain       float64
	bounding   float64
}

func newSimplexFractal(seed int64, octaves int, lacunarity, gain float64) *simplexFractal {
	f := &simplexFractal{
		octaves:    make([]opensimplex.Noise, octaves),
		lacunarity: lacunarity,
		gain:       gain,
	}
	amp, total := 1.0, 0.0
	for i := range octaves {
		f.octaves[i] = opensimplex.New(seed + int64(i))
		total += amp
		amp *= gain
	}
	f.bounding = 1 / total
	return f
}

func (f *simplexFractal) Eval(x, y float64) float64 {
	sum, amp := 0.0, 1.0
	for _, n := range f.octaves {
		sum += n.Eval2(x, y) * amp
		x *= f.lacunarity
		y *= f.lacunarity
		amp *= f.gain
	}
	return sum * f.bounding
}

// perlinFractal delegates octave summation to go-perlin, where alpha divides
// the amplitude and beta multiplies the frequency at each octave.
type perlinFractal struct {
	p *perlin.Perlin
}

func newPerlinFractal(seed int64, octaves int, lacunarity, gain float64) *perlinFractal {
	return &perlinFractal{p: perlin.NewPerlin(1/gain, lacunarity, int32(octaves), seed)}
}

func (f *perlinFractal) Eval(x, y float64) float64 {
	return f.p.Noise2D(x, y)
}

// NewFractal builds the backend named by cfg.Type. Unknown types fall back to simplex.
func NewFractal(cfg config.NoiseConfig, seed int64) Fractal {
	if cfg.Type == config.NoisePerlin {
		return newPerlinFractal(seed, cfg.Octaves, cfg.Lacunarity, cfg.Gain)
	}
	return newSimplexFractal(seed, cfg.Octaves, cfg.Lacunarity, cfg.Gain)
}

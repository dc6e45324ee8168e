package meshing

import (
	"terrainstream/internal/config"
	"terrainstream/internal/heightfield"
)

// Sampler is the height field the builder queries.
type Sampler interface {
	Sample(x, y float64) (float64, heightfield.Attributes, error)
}

// Params is the per-epoch generation input for every chunk.
// It must not be mutated after it is handed to a worker.
type Params struct {
	Resolution int     // vertices per chunk edge
	Size       float64 // world length of a chunk edge
	Sampler    Sampler
	Colors     string // config.ColorsUniform or config.ColorsElevation
}

// ParamsFromConfig derives builder parameters and a fresh height field from cfg.
func ParamsFromConfig(cfg config.Terrain) Params {
	return Params{
		Resolution: cfg.ChunkResolution,
		Size:       cfg.ChunkSize,
		Sampler:    heightfield.New(cfg),
		Colors:     cfg.Colors,
	}
}

package meshing

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/chunk"
	"terrainstream/internal/heightfield"
)

var (
	ErrInvalidResolution = errors.New("chunk resolution must be at least 2")
	ErrInvalidSize       = errors.New("chunk size must be positive")
	ErrNoSampler         = errors.New("no height sampler")
)

// Build samples a Resolution×Resolution grid over the chunk footprint and
// returns its mesh. Vertices are local to coord.Origin, with Z up.
// Normals come from central differences, sampling one step past the chunk
// edge so neighbouring chunks shade seamlessly. Build has no side effects.
func Build(coord chunk.Coord, p Params) (mesh *chunk.MeshData, err error) {
	switch {
	case p.Resolution < 2:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResolution, p.Resolution)
	case !(p.Size > 0) || math.IsInf(p.Size, 0):
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSize, p.Size)
	case p.Sampler == nil:
		return nil, ErrNoSampler
	}

	defer func() {
		if r := recover(); r != nil {
			mesh = nil
			err = fmt.Errorf("chunk %v: height sampler panicked: %v", coord, r)
		}
	}()

	res := p.Resolution
	step := p.Size / float64(res-1)
	// fraction of the chunk edge at grid index i; edge samples of
	// neighbouring chunks land on bit-identical world coordinates
	frac := func(i int) float64 { return float64(i) / float64(res-1) }

	// heights over a (res+2)² grid with a one-sample border
	border := res + 2
	heights := make([]float64, border*border)
	attrs := make([]heightfield.Attributes, res*res)
	for j := range border {
		for i := range border {
			wx := (float64(coord.X) + frac(i-1)) * p.Size
			wy := (float64(coord.Y) + frac(j-1)) * p.Size
			h, a, err := p.Sampler.Sample(wx, wy)
			if err != nil {
				return nil, fmt.Errorf("chunk %v: %w", coord, err)
			}
			heights[j*border+i] = h
			if i >= 1 && i <= res && j >= 1 && j <= res {
				attrs[(j-1)*res+(i-1)] = a
			}
		}
	}
	at := func(i, j int) float64 { return heights[(j+1)*border+(i+1)] }

	n := res * res
	mesh = &chunk.MeshData{
		Coord:      coord,
		Resolution: res,
		Vertices:   make([]mgl32.Vec3, n),
		Normals:    make([]mgl32.Vec3, n),
		UVs:        make([]mgl32.Vec2, n),
		Colors:     make([]mgl32.Vec4, n),
		Tangents:   make([]mgl32.Vec3, n),
		Triangles:  make([]uint32, 0, (res-1)*(res-1)*6),
		MinHeight:  float32(math.Inf(1)),
		MaxHeight:  float32(math.Inf(-1)),
	}

	uvStep := 1 / float32(res-1)
	for j := range res {
		for i := range res {
			idx := j*res + i
			h := at(i, j)
			hf := float32(h)

			mesh.Vertices[idx] = mgl32.Vec3{float32(frac(i) * p.Size), float32(frac(j) * p.Size), hf}
			mesh.UVs[idx] = mgl32.Vec2{float32(i) * uvStep, float32(j) * uvStep}
			mesh.Colors[idx] = vertexColor(p.Colors, attrs[idx])

			dhdx := (at(i+1, j) - at(i-1, j)) / (2 * step)
			dhdy := (at(i, j+1) - at(i, j-1)) / (2 * step)
			mesh.Normals[idx] = mgl32.Vec3{float32(-dhdx), float32(-dhdy), 1}.Normalize()
			// U runs along +X, so the tangent follows the surface in X
			mesh.Tangents[idx] = mgl32.Vec3{1, 0, float32(dhdx)}.Normalize()

			mesh.MinHeight = min(mesh.MinHeight, hf)
			mesh.MaxHeight = max(mesh.MaxHeight, hf)
		}
	}

	// two counter-clockwise triangles per cell, seen from +Z
	for j := range res - 1 {
		for i := range res - 1 {
			v0 := uint32(j*res + i)
			v1 := v0 + 1
			v2 := v0 + uint32(res)
			v3 := v2 + 1
			mesh.Triangles = append(mesh.Triangles, v0, v1, v3, v0, v3, v2)
		}
	}

	return mesh, nil
}

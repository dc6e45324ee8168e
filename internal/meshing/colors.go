package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/config"
	"terrainstream/internal/heightfield"
)

var uniformColor = mgl32.Vec4{0.45, 0.55, 0.35, 1}

// elevation bands, checked in order against the curve output
var elevationBands = []struct {
	below float64
	color mgl32.Vec4
}{
	{-0.20, mgl32.Vec4{0.10, 0.25, 0.55, 1}}, // water
	{-0.10, mgl32.Vec4{0.76, 0.70, 0.50, 1}}, // sand
	{0.30, mgl32.Vec4{0.30, 0.55, 0.20, 1}},  // grass
	{0.60, mgl32.Vec4{0.45, 0.42, 0.40, 1}},  // rock
}

var snowColor = mgl32.Vec4{0.95, 0.95, 0.97, 1}

func vertexColor(policy string, attrs heightfield.Attributes) mgl32.Vec4 {
	if policy != config.ColorsElevation {
		return uniformColor
	}
	for _, band := range elevationBands {
		if attrs.Elevation < band.below {
			return band.color
		}
	}
	return snowColor
}

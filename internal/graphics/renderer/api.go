package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/graphics"
)

// RenderContext provides shared per-frame state to every renderable.
type RenderContext struct {
	Camera *graphics.Camera
	DT     float64
	View   mgl32.Mat4
	Proj   mgl32.Mat4
}

// Renderable is one feature drawn by the Renderer.
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
}

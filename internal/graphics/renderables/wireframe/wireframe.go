package wireframe

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/graphics"
	"terrainstream/internal/graphics/renderer"
	"terrainstream/internal/profiling"
)

var (
	vertShader = "shaders/wireframe.vert"
	fragShader = "shaders/wireframe.frag"
)

// Box is an axis-aligned world-space box.
type Box struct {
	Min, Max mgl32.Vec3
}

// Wireframe outlines the boxes returned by its source, e.g. the bounds of
// every spawned chunk.
type Wireframe struct {
	shader  *graphics.Shader
	vao     uint32
	vbo     uint32
	source  func() []Box
	Color   mgl32.Vec3
	Enabled bool
}

// NewWireframe creates a disabled wireframe renderable over source.
func NewWireframe(source func() []Box) *Wireframe {
	return &Wireframe{source: source, Color: mgl32.Vec3{0, 0, 0}}
}

func (w *Wireframe) Init() error {
	var err error
	w.shader, err = graphics.NewShader(graphics.Shaders, vertShader, fragShader)
	if err != nil {
		return err
	}
	w.setupWireframeVAO()
	return nil
}

func (w *Wireframe) Render(ctx renderer.RenderContext) {
	if !w.Enabled || w.source == nil {
		return
	}
	defer profiling.Track("renderer.Wireframe")()

	w.shader.Use()
	w.shader.SetMatrix4("proj", &ctx.Proj[0])
	w.shader.SetMatrix4("view", &ctx.View[0])
	w.shader.SetVector3("color", w.Color)

	gl.BindVertexArray(w.vao)
	gl.LineWidth(1.0)
	for _, b := range w.source() {
		size := b.Max.Sub(b.Min)
		model := mgl32.Translate3D(b.Min.X(), b.Min.Y(), b.Min.Z()).
			Mul4(mgl32.Scale3D(size.X(), size.Y(), max(size.Z(), 1)))
		w.shader.SetMatrix4("model", &model[0])
		gl.DrawArrays(gl.LINES, 0, 24)
	}
	gl.BindVertexArray(0)
}

func (w *Wireframe) Dispose() {
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
	}
	if w.vbo != 0 {
		gl.DeleteBuffers(1, &w.vbo)
	}
	if w.shader != nil {
		w.shader.Delete()
	}
}

func (w *Wireframe) setupWireframeVAO() {
	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)

	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)

	// unit cube edges, scaled per box
	vertices := []float32{
		// bottom
		0, 0, 0, 1, 0, 0,
		1, 0, 0, 1, 1, 0,
		1, 1, 0, 0, 1, 0,
		0, 1, 0, 0, 0, 0,

		// top
		0, 0, 1, 1, 0, 1,
		1, 0, 1, 1, 1, 1,
		1, 1, 1, 0, 1, 1,
		0, 1, 1, 0, 0, 1,

		// verticals
		0, 0, 0, 0, 0, 1,
		1, 0, 0, 1, 0, 1,
		1, 1, 0, 1, 1, 1,
		0, 1, 0, 0, 1, 1,
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
}

package terrain

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/graphics"
	"terrainstream/internal/graphics/renderer"
	"terrainstream/internal/profiling"
)

var (
	vertShader = "shaders/terrain.vert"
	fragShader = "shaders/terrain.frag"
)

// Terrain draws the surfaces registered with its graphics.Surfaces sink.
type Terrain struct {
	shader    *graphics.Shader
	surfaces  *graphics.Surfaces
	wireframe bool

	LightDir    mgl32.Vec3
	FogDistance float32
	drawn       int
}

// NewTerrain creates a renderable over surfaces. fogDistance is usually the render radius.
func NewTerrain(surfaces *graphics.Surfaces, fogDistance float32) *Terrain {
	return &Terrain{
		surfaces:    surfaces,
		LightDir:    mgl32.Vec3{-0.4, -0.3, -1}.Normalize(),
		FogDistance: fogDistance,
	}
}

func (t *Terrain) Init() error {
	var err error
	t.shader, err = graphics.NewShader(graphics.Shaders, vertShader, fragShader)
	return err
}

func (t *Terrain) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.Terrain")()

	t.shader.Use()
	t.shader.SetMatrix4("view", &ctx.View[0])
	t.shader.SetMatrix4("proj", &ctx.Proj[0])
	t.shader.SetVector3("lightDir", t.LightDir)
	t.shader.SetVector3("cameraPos", ctx.Camera.Position)
	t.shader.SetVector3("fogColor", renderer.SkyColor)
	t.shader.SetFloat("fogDistance", t.FogDistance)

	if t.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	t.drawn = t.surfaces.Draw(t.shader)
}

func (t *Terrain) Dispose() {
	t.surfaces.Dispose()
	if t.shader != nil {
		t.shader.Delete()
	}
}

// ToggleWireframe switches between filled and line rendering.
func (t *Terrain) ToggleWireframe() {
	t.wireframe = !t.wireframe
}

// Drawn returns how many surfaces the last frame drew.
func (t *Terrain) Drawn() int {
	return t.drawn
}

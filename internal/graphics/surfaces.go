package graphics

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"terrainstream/internal/chunk"
	"terrainstream/internal/meshing"
	"terrainstream/internal/profiling"
	"terrainstream/internal/surface"
)

// attribute layout of meshing.Interleave, in floats
var vertexAttribs = []struct {
	loc, size, offset uint32
}{
	{0, 3, 0},  // position
	{1, 3, 3},  // normal
	{2, 2, 6},  // uv
	{3, 4, 8},  // color
	{4, 3, 12}, // tangent
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	model         mgl32.Mat4
	material      string
	visible       bool
}

// Surfaces uploads chunk meshes to the GPU and draws the registered ones.
// It implements surface.Sink and must only be used on the GL thread.
type Surfaces struct {
	meshes    map[surface.Handle]*gpuMesh
	materials map[string]mgl32.Vec4
}

var _ surface.Sink = (*Surfaces)(nil)

func NewSurfaces() *Surfaces {
	return &Surfaces{
		meshes:    make(map[surface.Handle]*gpuMesh),
		materials: make(map[string]mgl32.Vec4),
	}
}

// SetMaterial defines the tint multiplied into surfaces using material.
// Unknown materials draw untinted.
func (s *Surfaces) SetMaterial(name string, tint mgl32.Vec4) {
	s.materials[name] = tint
}

func (s *Surfaces) Create(mesh *chunk.MeshData) (surface.Handle, error) {
	defer profiling.Track("renderer.Surfaces.Create")()
	if mesh == nil || !mesh.Valid() {
		return uuid.Nil, fmt.Errorf("create surface: malformed mesh")
	}

	m := &gpuMesh{
		indexCount: int32(len(mesh.Triangles)),
		model:      mgl32.Ident4(),
	}
	vertices := meshing.Interleave(mesh)
	stride := int32(meshing.VertexStride * 4)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Triangles)*4, gl.Ptr(mesh.Triangles), gl.STATIC_DRAW)

	for _, a := range vertexAttribs {
		gl.EnableVertexAttribArray(a.loc)
		gl.VertexAttribPointerWithOffset(a.loc, int32(a.size), gl.FLOAT, false, stride, uintptr(a.offset*4))
	}
	gl.BindVertexArray(0)

	h := uuid.New()
	s.meshes[h] = m
	return h, nil
}

func (s *Surfaces) SetWorldLocation(h surface.Handle, pos mgl32.Vec3) {
	if m, ok := s.meshes[h]; ok {
		m.model = mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
	}
}

func (s *Surfaces) AssignMaterial(h surface.Handle, material string) {
	if m, ok := s.meshes[h]; ok {
		m.material = material
	}
}

func (s *Surfaces) Register(h surface.Handle) error {
	m, ok := s.meshes[h]
	if !ok {
		return fmt.Errorf("register %s: %w", h, surface.ErrUnknownHandle)
	}
	m.visible = true
	return nil
}

func (s *Surfaces) Unregister(h surface.Handle) {
	if m, ok := s.meshes[h]; ok {
		m.visible = false
	}
}

func (s *Surfaces) Destroy(h surface.Handle) {
	m, ok := s.meshes[h]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	delete(s.meshes, h)
}

// Draw renders every registered surface with shader, which must already be in use.
// Returns the number of surfaces drawn.
func (s *Surfaces) Draw(shader *Shader) int {
	defer profiling.Track("renderer.Surfaces.Draw")()
	drawn := 0
	for _, m := range s.meshes {
		if !m.visible {
			continue
		}
		tint, ok := s.materials[m.material]
		if !ok {
			tint = mgl32.Vec4{1, 1, 1, 1}
		}
		shader.SetMatrix4("model", &m.model[0])
		shader.SetVector4("tint", tint)
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
		drawn++
	}
	gl.BindVertexArray(0)
	return drawn
}

// Len returns the number of surfaces holding GPU buffers.
func (s *Surfaces) Len() int {
	return len(s.meshes)
}

// Dispose destroys every surface.
func (s *Surfaces) Dispose() {
	for h := range s.meshes {
		s.Destroy(h)
	}
}

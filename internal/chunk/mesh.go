package chunk

import "github.com/go-gl/mathgl/mgl32"

// MeshData holds the generated buffers for one chunk.
// It is immutable once inserted into the cache: readers share the slices.
type MeshData struct {
	Coord      Coord
	Resolution int

	Vertices  []mgl32.Vec3 // local to the chunk origin, Z up
	Triangles []uint32
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []mgl32.Vec4 // linear RGBA
	Tangents  []mgl32.Vec3

	MinHeight float32
	MaxHeight float32
}

// VertexCount returns the number of vertices in the mesh.
func (m *MeshData) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles in the mesh.
func (m *MeshData) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Valid reports whether all per-vertex buffers agree with the vertex count.
func (m *MeshData) Valid() bool {
	n := len(m.Vertices)
	return n > 0 &&
		len(m.Normals) == n &&
		len(m.UVs) == n &&
		len(m.Colors) == n &&
		len(m.Tangents) == n &&
		len(m.Triangles)%3 == 0
}

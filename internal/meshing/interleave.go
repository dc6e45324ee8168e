package meshing

import "terrainstream/internal/chunk"

// VertexStride is the number of float32 per interleaved vertex:
// pos.xyz, normal.xyz, uv.st, color.rgba, tangent.xyz
const VertexStride = 15

// Interleave packs a mesh into one float buffer for GPU upload.
func Interleave(m *chunk.MeshData) []float32 {
	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for i, v := range m.Vertices {
		n, uv, c, t := m.Normals[i], m.UVs[i], m.Colors[i], m.Tangents[i]
		out = append(out,
			v[0], v[1], v[2],
			n[0], n[1], n[2],
			uv[0], uv[1],
			c[0], c[1], c[2], c[3],
			t[0], t[1], t[2],
		)
	}
	return out
}

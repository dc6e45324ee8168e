package chunk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFromWorldNegative(t *testing.T) {
	assert.Equal(t, Coord{X: 0, Y: 0}, FromWorld(mgl32.Vec3{0, 0, 0}, 100))
	assert.Equal(t, Coord{X: -1, Y: -1}, FromWorld(mgl32.Vec3{-0.5, -99, 0}, 100))
	assert.Equal(t, Coord{X: 2, Y: -3}, FromWorld(mgl32.Vec3{250, -201, 40}, 100))
}

func TestWindowExampleScenario(t *testing.T) {
	coords := Window(mgl32.Vec3{0, 0, 0}, 250, 100)
	set := make(map[Coord]bool, len(coords))
	for _, c := range coords {
		set[c] = true
	}

	assert.True(t, set[Coord{0, 0}])
	assert.True(t, set[Coord{1, 0}], "center (150,50) is ~158 from origin")
	assert.False(t, set[Coord{3, 0}], "center (350,50) is ~353 from origin")
	assert.False(t, set[Coord{2, 2}], "corner of the square sweep is outside the circle")
}

func TestWindowNearestFirst(t *testing.T) {
	pos := mgl32.Vec3{420, -130, 0}
	coords := Window(pos, 500, 100)
	if assert.NotEmpty(t, coords) {
		assert.Equal(t, FromWorld(pos, 100), coords[0])
	}
	for i := 1; i < len(coords); i++ {
		assert.LessOrEqual(t, coords[i-1].DistanceSq(pos, 100), coords[i].DistanceSq(pos, 100))
	}
}

func TestWindowDegenerate(t *testing.T) {
	assert.Empty(t, Window(mgl32.Vec3{}, 0, 100))
	assert.Empty(t, Window(mgl32.Vec3{}, 100, 0))
}

func TestMeshDataValid(t *testing.T) {
	m := &MeshData{}
	assert.False(t, m.Valid())

	m = &MeshData{
		Vertices:  make([]mgl32.Vec3, 4),
		Normals:   make([]mgl32.Vec3, 4),
		UVs:       make([]mgl32.Vec2, 4),
		Colors:    make([]mgl32.Vec4, 4),
		Tangents:  make([]mgl32.Vec3, 4),
		Triangles: []uint32{0, 1, 3, 0, 3, 2},
	}
	assert.True(t, m.Valid())
	assert.Equal(t, 2, m.TriangleCount())

	m.UVs = m.UVs[:3]
	assert.False(t, m.Valid())
}

package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraFront(t *testing.T) {
	c := NewCamera(900, 600, mgl32.Vec3{}, 1000)
	assert.InDelta(t, 1.5, c.AspectRatio, 1e-6)

	f := c.Front()
	assert.InDelta(t, 1, f.X(), 1e-6)
	assert.InDelta(t, 0, f.Z(), 1e-6)

	c.Yaw = 90
	assert.InDelta(t, 1, c.Front().Y(), 1e-6)
	assert.InDelta(t, 0, c.Right().Z(), 1e-6)
}

func TestCameraPitchClamped(t *testing.T) {
	c := NewCamera(1, 1, mgl32.Vec3{}, 1000)
	c.Look(0, 500)
	assert.Equal(t, 89.0, c.Pitch)
	c.Look(0, -500)
	assert.Equal(t, -89.0, c.Pitch)
}

func TestCameraMove(t *testing.T) {
	c := NewCamera(1, 1, mgl32.Vec3{}, 1000)
	c.Speed = 10

	c.Move(1, 0, 0, 0.5)
	assert.InDelta(t, 5, c.Position.X(), 1e-5)

	c.Move(0, 0, 1, 1)
	assert.InDelta(t, 10, c.Position.Z(), 1e-5)

	before := c.Position
	c.Move(0, 0, 0, 1)
	assert.Equal(t, before, c.Position)
}

func TestCameraZeroHeightViewport(t *testing.T) {
	c := NewCamera(800, 400, mgl32.Vec3{}, 1000)
	c.SetViewport(800, 0)
	assert.InDelta(t, 2, c.AspectRatio, 1e-6)
}

package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying Z-up camera. Yaw and Pitch are in degrees; yaw 0
// looks along +X.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float64
	Pitch       float64
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
	Speed       float32 // world units per second
}

// NewCamera creates a camera at pos whose far plane reaches farPlane.
func NewCamera(width, height int, pos mgl32.Vec3, farPlane float32) *Camera {
	c := &Camera{
		Position:  pos,
		FOV:       60.0,
		NearPlane: 10.0,
		FarPlane:  farPlane,
		Speed:     5000,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Zero heights are ignored.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Front returns the unit look direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(float32(c.Yaw)))
	p := float64(mgl32.DegToRad(float32(c.Pitch)))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(y) * math.Cos(p)),
		float32(math.Sin(p)),
	}.Normalize()
}

// Right returns the unit strafe direction, always horizontal.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 0, 1}).Normalize()
}

// Look applies a mouse delta in degrees, clamping pitch short of the poles.
func (c *Camera) Look(dYaw, dPitch float64) {
	c.Yaw -= dYaw
	c.Pitch += dPitch
	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}

// Move translates the camera by forward/right/up amounts scaled by Speed and dt.
func (c *Camera) Move(forward, right, up float32, dt float64) {
	step := c.Speed * float32(dt)
	delta := c.Front().Mul(forward).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, 0, up})
	if delta.Len() == 0 {
		return
	}
	c.Position = c.Position.Add(delta.Normalize().Mul(step))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 0, 1})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Package surface defines the presentation sink that live chunk meshes are
// handed to, plus an in-memory implementation for headless runs and tests.
package surface

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"terrainstream/internal/chunk"
)

// Handle identifies one mesh surface instance owned by a Sink.
type Handle = uuid.UUID

// Sink instantiates mesh surfaces. All calls come from the foreground
// goroutine; implementations need not be safe for concurrent use unless
// they are inspected from elsewhere.
type Sink interface {
	// Create uploads the mesh buffers and returns a handle to a hidden surface.
	Create(mesh *chunk.MeshData) (Handle, error)
	SetWorldLocation(h Handle, pos mgl32.Vec3)
	AssignMaterial(h Handle, material string)
	// Register makes the surface visible.
	Register(h Handle) error
	Unregister(h Handle)
	// Destroy releases the surface; the handle is invalid afterwards.
	Destroy(h Handle)
}

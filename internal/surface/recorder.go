package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"terrainstream/internal/chunk"
)

// ErrUnknownHandle is returned when a handle was never created or is already destroyed.
var ErrUnknownHandle = errors.New("unknown surface handle")

// Record is the recorder's view of one live surface.
type Record struct {
	Mesh       *chunk.MeshData
	Location   mgl32.Vec3
	Material   string
	Registered bool
}

// Recorder is a Sink that keeps surfaces in memory.
type Recorder struct {
	mu        sync.Mutex
	surfaces  map[Handle]*Record
	created   int
	destroyed int

	// FailCreate, when set, is consulted before every Create.
	FailCreate func(mesh *chunk.MeshData) error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{surfaces: make(map[Handle]*Record)}
}

func (r *Recorder) Create(mesh *chunk.MeshData) (Handle, error) {
	if r.FailCreate != nil {
		if err := r.FailCreate(mesh); err != nil {
			return uuid.Nil, err
		}
	}
	if mesh == nil || !mesh.Valid() {
		return uuid.Nil, fmt.Errorf("create surface: malformed mesh")
	}

	h := uuid.New()
	r.mu.Lock()
	r.surfaces[h] = &Record{Mesh: mesh}
	r.created++
	r.mu.Unlock()
	return h, nil
}

func (r *Recorder) SetWorldLocation(h Handle, pos mgl32.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.surfaces[h]; ok {
		rec.Location = pos
	}
}

func (r *Recorder) AssignMaterial(h Handle, material string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.surfaces[h]; ok {
		rec.Material = material
	}
}

func (r *Recorder) Register(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.surfaces[h]
	if !ok {
		return fmt.Errorf("register %s: %w", h, ErrUnknownHandle)
	}
	rec.Registered = true
	return nil
}

func (r *Recorder) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.surfaces[h]; ok {
		rec.Registered = false
	}
}

func (r *Recorder) Destroy(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surfaces[h]; ok {
		delete(r.surfaces, h)
		r.destroyed++
	}
}

// Get returns a copy of the record for h.
func (r *Recorder) Get(h Handle) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.surfaces[h]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Live returns the number of surfaces created and not yet destroyed.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.surfaces)
}

// Visible returns the number of registered surfaces.
func (r *Recorder) Visible() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.surfaces {
		if rec.Registered {
			n++
		}
	}
	return n
}

// Totals returns lifetime create and destroy counts.
func (r *Recorder) Totals() (created, destroyed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created, r.destroyed
}

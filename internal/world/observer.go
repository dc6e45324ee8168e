package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Observer is the tracked entity's position, written by the foreground once
// per tick and read by the streaming goroutine.
type Observer struct {
	mu  sync.RWMutex
	pos mgl32.Vec3
}

// NewObserver returns an observer at pos.
func NewObserver(pos mgl32.Vec3) *Observer {
	return &Observer{pos: pos}
}

// Position returns the latest position.
func (o *Observer) Position() mgl32.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pos
}

// Set stores a new position.
func (o *Observer) Set(pos mgl32.Vec3) {
	o.mu.Lock()
	o.pos = pos
	o.mu.Unlock()
}

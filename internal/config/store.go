package config

import "sync"

// Store holds the live terrain configuration and notifies subscribers on change.
type Store struct {
	mu   sync.RWMutex
	cfg  Terrain
	subs []chan Terrain
}

// NewStore creates a store seeded with cfg. cfg must already be valid.
func NewStore(cfg Terrain) *Store {
	return &Store{cfg: cfg.Clone()}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Terrain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Subscribe returns a channel that receives the latest configuration after
// every successful Update. Slow readers only ever see the newest value.
func (s *Store) Subscribe() <-chan Terrain {
	ch := make(chan Terrain, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Update applies fn to a copy of the configuration, validates it and
// publishes it. The stored value is unchanged if validation fails.
func (s *Store) Update(fn func(*Terrain)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Clone()
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next

	for _, ch := range s.subs {
		// drop a stale pending value so the newest one always fits
		select {
		case <-ch:
		default:
		}
		ch <- next.Clone()
	}
	return nil
}

// SetScale sets Scale, clamped to [1, 1e6].
func (s *Store) SetScale(scale float64) error {
	return s.Update(func(t *Terrain) {
		t.Scale = clamp(scale, 1, 1e6)
	})
}

// SetRenderRadius sets RenderRadius, clamped to [1, MaxRenderChunks] chunk edges.
func (s *Store) SetRenderRadius(radius float64) error {
	return s.Update(func(t *Terrain) {
		t.RenderRadius = clamp(radius, t.ChunkSize, MaxRenderChunks*t.ChunkSize)
	})
}

// SetSeed sets the noise seed.
func (s *Store) SetSeed(seed int64) error {
	return s.Update(func(t *Terrain) {
		t.Seed = seed
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package main

import "time"

// pausedFPS caps the frame rate while the viewer is paused.
const pausedFPS = 30

// frameLimiter paces the render loop to a frame cap with a sleep then spin wait.
type frameLimiter struct {
	limit int // frames per second, 0 disables
	next  time.Time
}

// Wait blocks until the next frame is due.
func (f *frameLimiter) Wait(paused bool) {
	limit := f.limit
	if paused && (limit <= 0 || limit > pausedFPS) {
		limit = pausedFPS
	}
	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}

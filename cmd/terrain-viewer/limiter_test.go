package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameLimiterPaces(t *testing.T) {
	f := &frameLimiter{limit: 200}
	start := time.Now()
	for range 10 {
		f.Wait(false)
	}
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestFrameLimiterDisabled(t *testing.T) {
	f := &frameLimiter{}
	start := time.Now()
	for range 100 {
		f.Wait(false)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.True(t, f.next.IsZero())
}

func TestFrameLimiterResyncsAfterHitch(t *testing.T) {
	f := &frameLimiter{limit: 1000}
	f.Wait(false)
	time.Sleep(20 * time.Millisecond)
	f.Wait(false)
	assert.Greater(t, time.Until(f.next), -time.Millisecond)
}

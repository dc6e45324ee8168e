package main

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Path is the observer's scripted position over time.
type Path interface {
	At(t float64) mgl32.Vec3
}

type stillPath struct{}

func (stillPath) At(float64) mgl32.Vec3 { return mgl32.Vec3{} }

// linePath flies along +X at speed units per second.
type linePath struct {
	speed float64
}

func (p linePath) At(t float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(p.speed * t), 0, 0}
}

// circlePath orbits the origin at radius, covering speed units per second.
type circlePath struct {
	radius, speed float64
}

func (p circlePath) At(t float64) mgl32.Vec3 {
	a := p.speed * t / p.radius
	return mgl32.Vec3{float32(p.radius * math.Cos(a)), float32(p.radius * math.Sin(a)), 0}
}

// teleportPath jumps between the origin and (distance, 0) every period seconds.
type teleportPath struct {
	distance, period float64
}

func (p teleportPath) At(t float64) mgl32.Vec3 {
	if int(t/p.period)%2 == 1 {
		return mgl32.Vec3{float32(p.distance), 0, 0}
	}
	return mgl32.Vec3{}
}

func newPath(kind string, speed, extent float64) (Path, error) {
	switch kind {
	case "still":
		return stillPath{}, nil
	case "line":
		return linePath{speed: speed}, nil
	case "circle":
		if extent <= 0 {
			return nil, fmt.Errorf("circle path needs a positive extent")
		}
		return circlePath{radius: extent, speed: speed}, nil
	case "teleport":
		if extent <= 0 || speed <= 0 {
			return nil, fmt.Errorf("teleport path needs a positive extent and speed")
		}
		return teleportPath{distance: extent, period: extent / speed}, nil
	}
	return nil, fmt.Errorf("unknown path %q", kind)
}

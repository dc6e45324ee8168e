package chunk

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Coord is the grid-aligned identity of a terrain chunk.
// Chunk (x, y) covers world [x*size, (x+1)*size) × [y*size, (y+1)*size).
type Coord struct {
	X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Origin returns the world-space corner the chunk's mesh surface is placed at.
func (c Coord) Origin(size float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X) * size, float32(c.Y) * size, 0}
}

// Center returns the world-space center of the chunk footprint.
func (c Coord) Center(size float64) (float64, float64) {
	return (float64(c.X) + 0.5) * size, (float64(c.Y) + 0.5) * size
}

// DistanceSq returns the squared planar distance from the chunk center to pos.
func (c Coord) DistanceSq(pos mgl32.Vec3, size float64) float64 {
	cx, cy := c.Center(size)
	dx := cx - float64(pos.X())
	dy := cy - float64(pos.Y())
	return dx*dx + dy*dy
}

// FromWorld returns the coordinate of the chunk containing world position pos.
func FromWorld(pos mgl32.Vec3, size float64) Coord {
	return Coord{
		X: int(math.Floor(float64(pos.X()) / size)),
		Y: int(math.Floor(float64(pos.Y()) / size)),
	}
}

// Window returns every coordinate whose chunk center lies strictly within
// radius of pos. The sweep covers the bounding square
// [floor((pos-r)/size), ceil((pos+r)/size)] on both axes and keeps only the
// coordinates inside the inscribed circle. Results are ordered nearest first.
func Window(pos mgl32.Vec3, radius, size float64) []Coord {
	if radius <= 0 || size <= 0 {
		return nil
	}
	px, py := float64(pos.X()), float64(pos.Y())
	xStart := int(math.Floor((px - radius) / size))
	xEnd := int(math.Ceil((px + radius) / size))
	yStart := int(math.Floor((py - radius) / size))
	yEnd := int(math.Ceil((py + radius) / size))

	rSq := radius * radius
	type ranked struct {
		coord Coord
		dist  float64
	}
	list := make([]ranked, 0, (xEnd-xStart+1)*(yEnd-yStart+1))
	for x := xStart; x <= xEnd; x++ {
		for y := yStart; y <= yEnd; y++ {
			c := Coord{X: x, Y: y}
			d := c.DistanceSq(pos, size)
			if d < rSq {
				list = append(list, ranked{coord: c, dist: d})
			}
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dist != list[j].dist {
			return list[i].dist < list[j].dist
		}
		if list[i].coord.X != list[j].coord.X {
			return list[i].coord.X < list[j].coord.X
		}
		return list[i].coord.Y < list[j].coord.Y
	})

	out := make([]Coord, len(list))
	for i, r := range list {
		out[i] = r.coord
	}
	return out
}

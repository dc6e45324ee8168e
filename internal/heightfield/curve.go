package heightfield

import (
	"math"
	"sort"

	"terrainstream/internal/config"
)

// Curve remaps raw noise to elevation by piecewise-linear interpolation
// between keys. Inputs outside the key range clamp to the end values.
// An empty curve is the identity.
type Curve struct {
	keys []config.CurvePoint
}

// NewCurve copies keys, which must be sorted by In.
func NewCurve(keys []config.CurvePoint) Curve {
	return Curve{keys: append([]config.CurvePoint(nil), keys...)}
}

// Eval returns the curve value at v. NaN passes through unchanged.
func (c Curve) Eval(v float64) float64 {
	n := len(c.keys)
	switch {
	case n == 0 || math.IsNaN(v):
		return v
	case v <= c.keys[0].In:
		return c.keys[0].Out
	case v >= c.keys[n-1].In:
		return c.keys[n-1].Out
	}

	// first key strictly greater than v; 1 <= i <= n-1 here
	i := sort.Search(n, func(i int) bool { return c.keys[i].In > v })
	a, b := c.keys[i-1], c.keys[i]
	t := (v - a.In) / (b.In - a.In)
	return a.Out + t*(b.Out-a.Out)
}

// Len returns the number of keys.
func (c Curve) Len() int {
	return len(c.keys)
}

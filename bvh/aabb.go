package bvh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box. Bounds may be infinite, which is how
// unbounded shapes such as half-spaces take part in the hierarchy.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Infinite returns a box covering all of space.
func Infinite() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{-inf, -inf, -inf},
		Max: mgl64.Vec3{inf, inf, inf},
	}
}

// FromCenter builds a box around c with the given half extents.
func FromCenter(c, halfExtents mgl64.Vec3) AABB {
	return AABB{Min: c.Sub(halfExtents), Max: c.Add(halfExtents)}
}

// FromSphere returns the tightest box around a sphere.
func FromSphere(center mgl64.Vec3, radius float64) AABB {
	return FromCenter(center, mgl64.Vec3{radius, radius, radius})
}

// FromPoints returns the tightest box around pts. An empty slice yields the
// zero box.
func FromPoints(pts ...mgl64.Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	out := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		for i := 0; i < 3; i++ {
			out.Min[i] = math.Min(out.Min[i], p[i])
			out.Max[i] = math.Max(out.Max[i], p[i])
		}
	}
	return out
}

// Union returns the smallest box holding both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a.Min[0], b.Min[0]), math.Min(a.Min[1], b.Min[1]), math.Min(a.Min[2], b.Min[2])},
		Max: mgl64.Vec3{math.Max(a.Max[0], b.Max[0]), math.Max(a.Max[1], b.Max[1]), math.Max(a.Max[2], b.Max[2])},
	}
}

// Overlaps reports whether a and b touch or intersect on all three axes.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max.X() >= b.Min.X() && a.Min.X() <= b.Max.X() &&
		a.Max.Y() >= b.Min.Y() && a.Min.Y() <= b.Max.Y() &&
		a.Max.Z() >= b.Min.Z() && a.Min.Z() <= b.Max.Z()
}

// Contains reports whether other lies completely inside a.
func (a AABB) Contains(other AABB) bool {
	return a.Min.X() <= other.Min.X() && a.Min.Y() <= other.Min.Y() && a.Min.Z() <= other.Min.Z() &&
		a.Max.X() >= other.Max.X() && a.Max.Y() >= other.Max.Y() && a.Max.Z() >= other.Max.Z()
}

// Volume of the box; +Inf for unbounded boxes.
func (a AABB) Volume() float64 {
	e := a.Max.Sub(a.Min)
	return e.X() * e.Y() * e.Z()
}

// IsInfinite reports whether any bound of the box is infinite.
func (a AABB) IsInfinite() bool {
	for i := 0; i < 3; i++ {
		if math.IsInf(a.Min[i], 0) || math.IsInf(a.Max[i], 0) {
			return true
		}
	}
	return false
}

// Center of the box. Unbounded axes report 0.
func (a AABB) Center() mgl64.Vec3 {
	var c mgl64.Vec3
	for i := 0; i < 3; i++ {
		m := (a.Min[i] + a.Max[i]) * 0.5
		if math.IsNaN(m) || math.IsInf(m, 0) {
			m = 0
		}
		c[i] = m
	}
	return c
}

// Growth is how much a's volume increases when merged with b. Growth into an
// already unbounded box is reported as +Inf so insertion steers away from it.
func (a AABB) Growth(b AABB) float64 {
	g := a.Union(b).Volume() - a.Volume()
	if math.IsNaN(g) {
		return math.Inf(1)
	}
	return g
}

// Proximity is the Manhattan distance between the box centers, used to break
// growth ties.
func (a AABB) Proximity(b AABB) float64 {
	ca, cb := a.Center(), b.Center()
	return math.Abs(ca[0]-cb[0]) + math.Abs(ca[1]-cb[1]) + math.Abs(ca[2]-cb[2])
}

package physix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Constraint is a force generator between bodies, applied once per step.
type Constraint interface {
	Affect(bodies BodyResolver)
	Bodies() (BodyHandle, BodyHandle)
}

// Spring pulls two bodies together with a force proportional to how far the
// distance between them differs from the rest length.
//
// By default both ends sit at the bodies' centers. An anchored spring instead
// attaches the other end at otherConnectionPoint, given in the other body's
// local space.
type Spring struct {
	first, other         BodyHandle
	otherConnectionPoint mgl64.Vec3
	springConstant       float64
	restLength           float64
	anchored             bool
}

func NewSpring(first, other BodyHandle, otherConnectionPoint mgl64.Vec3, springConstant, restLength float64) (*Spring, error) {
	if math.IsNaN(springConstant) || springConstant < 0 || math.IsInf(springConstant, 0) {
		return nil, invalidf("spring constant must be finite and >= 0, got %v", springConstant)
	}
	if math.IsNaN(restLength) || restLength < 0 || math.IsInf(restLength, 0) {
		return nil, invalidf("rest length must be finite and >= 0, got %v", restLength)
	}
	if first == other {
		return nil, invalidf("spring connects body %d to itself", first)
	}
	return &Spring{
		first:                first,
		other:                other,
		otherConnectionPoint: otherConnectionPoint,
		springConstant:       springConstant,
		restLength:           restLength,
	}, nil
}

// NewAnchoredSpring is NewSpring with the other end attached at
// otherConnectionPoint instead of the other body's center.
func NewAnchoredSpring(first, other BodyHandle, otherConnectionPoint mgl64.Vec3, springConstant, restLength float64) (*Spring, error) {
	s, err := NewSpring(first, other, otherConnectionPoint, springConstant, restLength)
	if err != nil {
		return nil, err
	}
	s.anchored = true
	return s, nil
}

func (s *Spring) Bodies() (BodyHandle, BodyHandle) { return s.first, s.other }
func (s *Spring) OtherConnectionPoint() mgl64.Vec3 { return s.otherConnectionPoint }
func (s *Spring) SpringConstant() float64          { return s.springConstant }
func (s *Spring) RestLength() float64              { return s.restLength }
func (s *Spring) Anchored() bool                   { return s.anchored }

// Ends returns the world-space attachment points on the first and other body.
func (s *Spring) Ends(bodies BodyResolver) (mgl64.Vec3, mgl64.Vec3, bool) {
	a, b := bodies.Body(s.first), bodies.Body(s.other)
	if a == nil || b == nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	end := b.Position()
	if s.anchored {
		end = b.PointInWorldSpace(s.otherConnectionPoint)
	}
	return a.Position(), end, true
}

// Forces returns the forces the spring applies to the first and the other
// body. They are always equal and opposite; a zero-length spring gives zero.
func (s *Spring) Forces(bodies BodyResolver) (onFirst, onOther mgl64.Vec3) {
	p1, p2, ok := s.Ends(bodies)
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	d := p1.Sub(p2)
	length := d.Len()
	if length == 0 || math.IsNaN(length) {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	magnitude := math.Abs(length-s.restLength) * s.springConstant
	dir := d.Mul(1 / length)
	return dir.Mul(-magnitude), dir.Mul(magnitude)
}

// Affect accumulates the spring forces on both bodies at their attachment
// points.
func (s *Spring) Affect(bodies BodyResolver) {
	p1, p2, ok := s.Ends(bodies)
	if !ok {
		return
	}
	f1, f2 := s.Forces(bodies)
	if f1 == (mgl64.Vec3{}) {
		return
	}
	bodies.Body(s.first).AddForceAtPoint(f1, p1)
	bodies.Body(s.other).AddForceAtPoint(f2, p2)
}

package physix

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact describes the overlap of two shapes. Normal is a unit vector
// pointing from Second toward First, and Penetration is how far the shapes
// would have to move apart along it to separate.
type Contact struct {
	First       *Shape
	Second      *Shape
	Points      []mgl64.Vec3
	Normal      mgl64.Vec3
	Penetration float64
}

// Point returns the average of the contact points.
func (c Contact) Point() mgl64.Vec3 {
	if len(c.Points) == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for _, p := range c.Points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(c.Points)))
}

// Flipped returns the same contact seen from the other shape.
func (c Contact) Flipped() Contact {
	return Contact{
		First:       c.Second,
		Second:      c.First,
		Points:      c.Points,
		Normal:      c.Normal.Mul(-1),
		Penetration: c.Penetration,
	}
}

// Involves reports whether s is one of the two shapes.
func (c Contact) Involves(s *Shape) bool {
	return c.First == s || c.Second == s
}

func (c Contact) String() string {
	return fmt.Sprintf("contact(%s, %s n=%v depth=%.4f points=%d)",
		c.First.ID(), c.Second.ID(), c.Normal, c.Penetration, len(c.Points))
}

// placed is a shape together with its resolved owning body.
type placed struct {
	shape *Shape
	body  *RigidBody
}

type collideFunc func(a, b placed) (Contact, bool)

// narrowPhase is indexed by the kinds of the first and second shape. A nil
// entry means the pairing is not supported and never produces a contact.
var narrowPhase = buildNarrowPhase()

func buildNarrowPhase() [shapeKindCount][shapeKindCount]collideFunc {
	var table [shapeKindCount][shapeKindCount]collideFunc
	register := func(a, b ShapeKind, fn collideFunc) {
		table[a][b] = fn
		if a == b {
			return
		}
		table[b][a] = func(x, y placed) (Contact, bool) {
			c, ok := fn(y, x)
			if !ok {
				return Contact{}, false
			}
			return c.Flipped(), true
		}
	}
	register(ShapeSphere, ShapeSphere, collideSphereSphere)
	register(ShapeSphere, ShapeBox, collideSphereBox)
	register(ShapeSphere, ShapeHalfSpace, collideSphereHalfSpace)
	register(ShapeBox, ShapeBox, collideBoxBox)
	register(ShapeBox, ShapeHalfSpace, collideBoxHalfSpace)
	return table
}

// Supports reports whether the narrow phase has a routine for the pairing.
func Supports(a, b ShapeKind) bool {
	if a >= shapeKindCount || b >= shapeKindCount {
		return false
	}
	return narrowPhase[a][b] != nil
}

// Collide runs the narrow-phase test for a and b. The bool is false when the
// shapes do not intersect, when the pairing is unsupported, or when either
// body handle does not resolve.
func Collide(bodies BodyResolver, a, b *Shape) (Contact, bool) {
	if a == nil || b == nil || a == b {
		return Contact{}, false
	}
	ba, bb := bodies.Body(a.body), bodies.Body(b.body)
	if ba == nil || bb == nil {
		return Contact{}, false
	}
	return collide(placed{a, ba}, placed{b, bb})
}

func collide(a, b placed) (Contact, bool) {
	if !Supports(a.shape.kind, b.shape.kind) {
		return Contact{}, false
	}
	return narrowPhase[a.shape.kind][b.shape.kind](a, b)
}

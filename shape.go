package physix

import (
	"fmt"
	"math"

	"github.com/gekko3d/physix/bvh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeHalfSpace

	shapeKindCount
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeHalfSpace:
		return "halfspace"
	}
	return fmt.Sprintf("ShapeKind(%d)", uint8(k))
}

type ShapeId string

func newShapeId() ShapeId {
	return ShapeId(uuid.NewString())
}

// BoundingSphere is the cached bounding volume of sphere shapes.
type BoundingSphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Overlaps reports whether the two spheres touch or intersect.
func (s BoundingSphere) Overlaps(o BoundingSphere) bool {
	r := s.Radius + o.Radius
	return s.Center.Sub(o.Center).LenSqr() <= r*r
}

// Shape is the collision geometry attached to a body. Only the fields of its
// kind are meaningful:
//
//	Box:       halfSize, in body space
//	Sphere:    radius, centered on the body position
//	HalfSpace: world-space plane normal·x = offset, solid where normal·x <= offset
//
// The owning body is referenced by handle and is never owned by the shape.
type Shape struct {
	id   ShapeId
	kind ShapeKind
	body BodyHandle

	halfSize mgl64.Vec3
	radius   float64
	normal   mgl64.Vec3
	offset   float64

	cacheBody    *RigidBody
	cacheVersion uint64
	bounds       bvh.AABB
	sphere       BoundingSphere
}

// NewBox creates a box with positive half extents.
func NewBox(body BodyHandle, halfSize mgl64.Vec3) (*Shape, error) {
	for i := 0; i < 3; i++ {
		if !(halfSize[i] > 0) || math.IsInf(halfSize[i], 0) {
			return nil, invalidf("box half size must be positive and finite, got %v", halfSize)
		}
	}
	return &Shape{id: newShapeId(), kind: ShapeBox, body: body, halfSize: halfSize}, nil
}

// NewSphere creates a sphere with a positive radius.
func NewSphere(body BodyHandle, radius float64) (*Shape, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, invalidf("sphere radius must be positive and finite, got %v", radius)
	}
	return &Shape{id: newShapeId(), kind: ShapeSphere, body: body, radius: radius}, nil
}

// NewHalfSpace creates a half-space; the normal is normalized.
func NewHalfSpace(body BodyHandle, normal mgl64.Vec3, offset float64) (*Shape, error) {
	l := normal.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return nil, invalidf("half-space normal must be a non-zero finite vector, got %v", normal)
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return nil, invalidf("half-space offset must be finite, got %v", offset)
	}
	return &Shape{id: newShapeId(), kind: ShapeHalfSpace, body: body, normal: normal.Mul(1 / l), offset: offset}, nil
}

func (s *Shape) ID() ShapeId          { return s.id }
func (s *Shape) Kind() ShapeKind      { return s.kind }
func (s *Shape) Body() BodyHandle     { return s.body }
func (s *Shape) HalfSize() mgl64.Vec3 { return s.halfSize }
func (s *Shape) Radius() float64      { return s.radius }
func (s *Shape) Normal() mgl64.Vec3   { return s.normal }
func (s *Shape) Offset() float64      { return s.offset }

func (s *Shape) String() string {
	switch s.kind {
	case ShapeBox:
		return fmt.Sprintf("box(%s half=%v)", s.id, s.halfSize)
	case ShapeSphere:
		return fmt.Sprintf("sphere(%s r=%v)", s.id, s.radius)
	case ShapeHalfSpace:
		return fmt.Sprintf("halfspace(%s n=%v d=%v)", s.id, s.normal, s.offset)
	}
	return fmt.Sprintf("shape(%s)", s.id)
}

// Bounds returns the world-space AABB for the body's current pose. The value
// is cached per body and recomputed only after that body's pose changed.
func (s *Shape) Bounds(body *RigidBody) bvh.AABB {
	s.refresh(body)
	return s.bounds
}

// BoundingSphere returns the cached bounding sphere of a sphere shape. For the
// other kinds it returns the sphere around the AABB.
func (s *Shape) BoundingSphere(body *RigidBody) BoundingSphere {
	s.refresh(body)
	return s.sphere
}

func (s *Shape) refresh(body *RigidBody) {
	if s.cacheBody == body && s.cacheVersion == body.Version() {
		return
	}
	switch s.kind {
	case ShapeSphere:
		s.sphere = BoundingSphere{Center: body.Position(), Radius: s.radius}
		s.bounds = bvh.FromSphere(s.sphere.Center, s.sphere.Radius)
	case ShapeBox:
		s.bounds = bvh.FromPoints(boxVertices(body, s.halfSize)...)
		s.sphere = BoundingSphere{Center: body.Position(), Radius: s.halfSize.Len()}
	default:
		s.bounds = bvh.Infinite()
		s.sphere = BoundingSphere{Radius: math.Inf(1)}
	}
	s.cacheBody = body
	s.cacheVersion = body.Version()
}

// ApplyMassProperties gives body the mass and the solid inertia tensor of
// this shape. Half-spaces are static, so their body is locked instead.
func (s *Shape) ApplyMassProperties(body *RigidBody, mass float64) error {
	if s.kind == ShapeHalfSpace {
		body.Lock()
		return nil
	}
	if math.IsInf(mass, 1) {
		body.Lock()
		return nil
	}
	if err := body.SetMass(mass); err != nil {
		return err
	}
	switch s.kind {
	case ShapeSphere:
		c := 0.4 * mass * s.radius * s.radius
		return body.SetInertiaTensorCoeffs(c, c, c, 0, 0, 0)
	default:
		x2 := 4 * s.halfSize.X() * s.halfSize.X()
		y2 := 4 * s.halfSize.Y() * s.halfSize.Y()
		z2 := 4 * s.halfSize.Z() * s.halfSize.Z()
		k := mass / 12
		return body.SetInertiaTensorCoeffs(k*(y2+z2), k*(x2+z2), k*(x2+y2), 0, 0, 0)
	}
}

// boxVertices returns the eight world-space corners of a box.
func boxVertices(body *RigidBody, halfSize mgl64.Vec3) []mgl64.Vec3 {
	axes := [3]mgl64.Vec3{body.Axis(0), body.Axis(1), body.Axis(2)}
	return obbCorners(body.Position(), axes, halfSize)
}

func obbCorners(pos mgl64.Vec3, axes [3]mgl64.Vec3, halfSize mgl64.Vec3) []mgl64.Vec3 {
	corners := make([]mgl64.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		p := pos
		for a := 0; a < 3; a++ {
			d := axes[a].Mul(halfSize[a])
			if i&(1<<a) != 0 {
				p = p.Add(d)
			} else {
				p = p.Sub(d)
			}
		}
		corners = append(corners, p)
	}
	return corners
}

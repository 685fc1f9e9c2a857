package physix

import (
	"github.com/gekko3d/physix/bvh"
)

// CollisionDetector finds the contacts between a set of shapes. Each pass
// builds a fresh bounding volume hierarchy over the shapes and runs the
// narrow phase on every pair of overlapping leaves.
//
// Results are cached: Contacts runs a pass only when the cache is stale.
// The cache goes stale on Invalidate, on any change to the shape set and
// whenever a body referenced by a shape has moved since the last pass.
type CollisionDetector struct {
	bodies BodyResolver
	logger Logger

	shapes []*Shape
	tree   *bvh.Tree
	placed []placed

	stale      bool
	versions   []uint64
	detections []Contact
	passes     int
}

func NewCollisionDetector(bodies BodyResolver, logger Logger) *CollisionDetector {
	return &CollisionDetector{
		bodies: bodies,
		logger: orNop(logger),
		tree:   bvh.NewTree(0),
		stale:  true,
	}
}

// AddShape appends s to the shape list. The shape's body handle must resolve.
func (d *CollisionDetector) AddShape(s *Shape) error {
	if s == nil {
		return invalidf("nil shape")
	}
	if d.bodies.Body(s.body) == nil {
		return invalidf("shape %s references unknown body %d", s.id, s.body)
	}
	for _, existing := range d.shapes {
		if existing == s {
			return invalidf("shape %s already registered", s.id)
		}
	}
	d.shapes = append(d.shapes, s)
	d.Invalidate()
	return nil
}

// RemoveShape removes the shape with the given id, keeping the order of the
// remaining shapes.
func (d *CollisionDetector) RemoveShape(id ShapeId) bool {
	for i, s := range d.shapes {
		if s.id == id {
			d.shapes = append(d.shapes[:i], d.shapes[i+1:]...)
			d.Invalidate()
			return true
		}
	}
	return false
}

// Shapes returns a copy of the shape list in insertion order.
func (d *CollisionDetector) Shapes() []*Shape {
	out := make([]*Shape, len(d.shapes))
	copy(out, d.shapes)
	return out
}

func (d *CollisionDetector) Len() int { return len(d.shapes) }

// Invalidate marks the cached contacts stale.
func (d *CollisionDetector) Invalidate() {
	d.stale = true
}

// Passes returns how many detection passes have run.
func (d *CollisionDetector) Passes() int { return d.passes }

// Contacts returns the cached contacts, running a pass first if needed.
func (d *CollisionDetector) Contacts() []Contact {
	if d.stale || d.moved() {
		return d.ReDetect()
	}
	return d.detections
}

// ReDetect rebuilds the hierarchy and replaces the contact list. The shape
// list is only read: the root is seeded with the first shape and the rest are
// inserted in order.
func (d *CollisionDetector) ReDetect() []Contact {
	d.passes++
	d.stale = false
	d.detections = make([]Contact, 0, len(d.detections))
	d.versions = d.versions[:0]
	d.placed = d.placed[:0]
	d.tree.Reset()

	for _, s := range d.shapes {
		body := d.bodies.Body(s.body)
		d.placed = append(d.placed, placed{s, body})
		if body == nil {
			d.versions = append(d.versions, 0)
			continue
		}
		d.versions = append(d.versions, body.Version())
	}

	for i, p := range d.placed {
		if p.body == nil {
			d.logger.Warnf("shape %s skipped: body %d not found", p.shape.id, p.shape.body)
			continue
		}
		d.tree.Insert(i, p.shape.Bounds(p.body))
	}

	candidates := 0
	d.tree.Pairs(func(i, j int) {
		candidates++
		if i > j {
			i, j = j, i
		}
		if c, ok := collide(d.placed[i], d.placed[j]); ok {
			d.detections = append(d.detections, c)
		}
	})

	if d.logger.DebugEnabled() {
		d.logger.Debugf("detection pass %d: %d shapes, %d candidate pairs, %d contacts, tree depth %d",
			d.passes, len(d.shapes), candidates, len(d.detections), d.tree.Depth())
	}
	return d.detections
}

// DetectExhaustive tests every pair of shapes without the hierarchy. It does
// not touch the cache.
func (d *CollisionDetector) DetectExhaustive() []Contact {
	var out []Contact
	for i := 0; i < len(d.shapes); i++ {
		for j := i + 1; j < len(d.shapes); j++ {
			if c, ok := Collide(d.bodies, d.shapes[i], d.shapes[j]); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// moved reports whether any body pose changed since the last pass.
func (d *CollisionDetector) moved() bool {
	if len(d.versions) != len(d.shapes) {
		return true
	}
	for i, s := range d.shapes {
		body := d.bodies.Body(s.body)
		if body == nil {
			if d.versions[i] != 0 {
				return true
			}
			continue
		}
		if body.Version() != d.versions[i] {
			return true
		}
	}
	return false
}

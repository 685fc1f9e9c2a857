package physix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const pointInBoxTolerance = 1e-9

var upAxis = mgl64.Vec3{0, 1, 0}

func collideSphereSphere(a, b placed) (Contact, bool) {
	ca, cb := a.body.Position(), b.body.Position()
	ra, rb := a.shape.radius, b.shape.radius

	mid := ca.Sub(cb)
	dist := mid.Len()
	if dist >= ra+rb {
		return Contact{}, false
	}

	normal := upAxis
	if dist > 0 {
		normal = mid.Mul(1 / dist)
	}
	depth := ra + rb - dist
	return Contact{
		First:       a.shape,
		Second:      b.shape,
		Points:      []mgl64.Vec3{cb.Add(normal.Mul(rb - depth*0.5))},
		Normal:      normal,
		Penetration: depth,
	}, true
}

func collideSphereHalfSpace(a, b placed) (Contact, bool) {
	c := a.body.Position()
	n := b.shape.normal
	dist := n.Dot(c) - b.shape.offset
	if dist >= a.shape.radius {
		return Contact{}, false
	}
	return Contact{
		First:       a.shape,
		Second:      b.shape,
		Points:      []mgl64.Vec3{c.Sub(n.Mul(dist))},
		Normal:      n,
		Penetration: a.shape.radius - dist,
	}, true
}

func collideSphereBox(a, b placed) (Contact, bool) {
	center := a.body.Position()
	r := a.shape.radius
	h := b.shape.halfSize

	local := b.body.PointInLocalSpace(center)
	closest := mgl64.Vec3{
		mgl64.Clamp(local.X(), -h.X(), h.X()),
		mgl64.Clamp(local.Y(), -h.Y(), h.Y()),
		mgl64.Clamp(local.Z(), -h.Z(), h.Z()),
	}
	diff := local.Sub(closest)
	distSq := diff.LenSqr()
	if distSq >= r*r {
		return Contact{}, false
	}

	var normalLocal mgl64.Vec3
	var depth float64
	if distSq > 0 {
		dist := math.Sqrt(distSq)
		normalLocal = diff.Mul(1 / dist)
		depth = r - dist
	} else {
		// Center inside the box: push out through the nearest face.
		axis, faceDist := 0, math.Inf(1)
		for i := 0; i < 3; i++ {
			if d := h[i] - math.Abs(local[i]); d < faceDist {
				axis, faceDist = i, d
			}
		}
		sign := 1.0
		if local[axis] < 0 {
			sign = -1
		}
		normalLocal[axis] = sign
		closest[axis] = sign * h[axis]
		depth = r + faceDist
	}

	return Contact{
		First:       a.shape,
		Second:      b.shape,
		Points:      []mgl64.Vec3{b.body.PointInWorldSpace(closest)},
		Normal:      b.body.DirectionInWorldSpace(normalLocal).Normalize(),
		Penetration: depth,
	}, true
}

func collideBoxHalfSpace(a, b placed) (Contact, bool) {
	n := b.shape.normal
	var points []mgl64.Vec3
	depth := 0.0
	for _, v := range boxVertices(a.body, a.shape.halfSize) {
		d := n.Dot(v) - b.shape.offset
		if d >= 0 {
			continue
		}
		points = append(points, v)
		depth = math.Max(depth, -d)
	}
	if len(points) == 0 {
		return Contact{}, false
	}
	return Contact{
		First:       a.shape,
		Second:      b.shape,
		Points:      points,
		Normal:      n,
		Penetration: depth,
	}, true
}

type obb struct {
	pos      mgl64.Vec3
	axes     [3]mgl64.Vec3
	halfSize mgl64.Vec3
}

func obbOf(p placed) obb {
	return obb{
		pos:      p.body.Position(),
		axes:     [3]mgl64.Vec3{p.body.Axis(0), p.body.Axis(1), p.body.Axis(2)},
		halfSize: p.shape.halfSize,
	}
}

// project returns the half length of the box projected onto axis.
func (o obb) project(axis mgl64.Vec3) float64 {
	return o.halfSize[0]*math.Abs(o.axes[0].Dot(axis)) +
		o.halfSize[1]*math.Abs(o.axes[1].Dot(axis)) +
		o.halfSize[2]*math.Abs(o.axes[2].Dot(axis))
}

func (o obb) contains(p mgl64.Vec3) bool {
	d := p.Sub(o.pos)
	for i := 0; i < 3; i++ {
		if math.Abs(d.Dot(o.axes[i])) > o.halfSize[i]+pointInBoxTolerance {
			return false
		}
	}
	return true
}

// support returns the corner of the box furthest along dir.
func (o obb) support(dir mgl64.Vec3) mgl64.Vec3 {
	p := o.pos
	for i := 0; i < 3; i++ {
		d := o.axes[i].Mul(o.halfSize[i])
		if o.axes[i].Dot(dir) < 0 {
			p = p.Sub(d)
		} else {
			p = p.Add(d)
		}
	}
	return p
}

// collideBoxBox runs the separating axis test over the 15 candidate axes
// and keeps the one with the smallest overlap.
func collideBoxBox(a, b placed) (Contact, bool) {
	oa, ob := obbOf(a), obbOf(b)
	toA := oa.pos.Sub(ob.pos)

	type satAxis struct {
		axis mgl64.Vec3
		i, j int // j >= 0 marks an edge-edge axis
	}
	axes := make([]satAxis, 0, 15)
	for i := 0; i < 3; i++ {
		axes = append(axes, satAxis{oa.axes[i], i, -1}, satAxis{ob.axes[i], i + 3, -1})
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := oa.axes[i].Cross(ob.axes[j])
			if cross.LenSqr() > 1e-10 {
				axes = append(axes, satAxis{cross.Normalize(), i, j})
			}
		}
	}

	best := satAxis{i: -1}
	minOverlap := math.Inf(1)
	for _, ax := range axes {
		overlap := oa.project(ax.axis) + ob.project(ax.axis) - math.Abs(toA.Dot(ax.axis))
		if overlap <= 0 {
			return Contact{}, false
		}
		if overlap < minOverlap {
			minOverlap = overlap
			best = ax
		}
	}

	normal := best.axis
	if toA.Dot(normal) < 0 {
		normal = normal.Mul(-1)
	}

	var points []mgl64.Vec3
	for _, p := range obbCorners(oa.pos, oa.axes, oa.halfSize) {
		if ob.contains(p) {
			points = append(points, p)
		}
	}
	for _, p := range obbCorners(ob.pos, ob.axes, ob.halfSize) {
		if oa.contains(p) {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		points = []mgl64.Vec3{edgeContactPoint(oa, ob, normal, best.i, best.j)}
	}

	return Contact{
		First:       a.shape,
		Second:      b.shape,
		Points:      points,
		Normal:      normal,
		Penetration: minOverlap,
	}, true
}

// edgeContactPoint handles the case where no corner lies inside the other box:
// the midpoint between the closest points of the two touching edges, or of the
// two support corners when the separating axis was a face normal.
func edgeContactPoint(oa, ob obb, normal mgl64.Vec3, i, j int) mgl64.Vec3 {
	pa := oa.support(normal.Mul(-1))
	pb := ob.support(normal)
	if j < 0 {
		return pa.Add(pb).Mul(0.5)
	}

	// Slide the support corners to the middle of the edges along axes i and j.
	pa = pa.Sub(oa.axes[i].Mul(oa.axes[i].Dot(pa.Sub(oa.pos))))
	pb = pb.Sub(ob.axes[j].Mul(ob.axes[j].Dot(pb.Sub(ob.pos))))
	da, db := oa.axes[i], ob.axes[j]

	r := pa.Sub(pb)
	b := da.Dot(db)
	c := da.Dot(r)
	f := db.Dot(r)
	denom := 1 - b*b
	if denom < 1e-12 {
		return pa.Add(pb).Mul(0.5)
	}
	s := (b*f - c) / denom
	t := (f - b*c) / denom
	s = mgl64.Clamp(s, -oa.halfSize[i], oa.halfSize[i])
	t = mgl64.Clamp(t, -ob.halfSize[j], ob.halfSize[j])
	return pa.Add(da.Mul(s)).Add(pb.Add(db.Mul(t))).Mul(0.5)
}

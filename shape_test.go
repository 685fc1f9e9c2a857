package physix

import (
	"math"
	"testing"

	"github.com/gekko3d/physix/bvh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Gravity = mgl64.Vec3{}
	w, err := NewWorld(cfg, nil)
	require.NoError(t, err)
	return w
}

func addBody(w *World, pos mgl64.Vec3) (BodyHandle, *RigidBody) {
	b := NewRigidBody()
	b.SetPosition(pos)
	return w.AddBody(b), b
}

func addSphere(t *testing.T, w *World, pos mgl64.Vec3, r float64) *Shape {
	t.Helper()
	h, _ := addBody(w, pos)
	s, err := NewSphere(h, r)
	require.NoError(t, err)
	require.NoError(t, w.AddShape(s))
	return s
}

func addBox(t *testing.T, w *World, pos, half mgl64.Vec3, rot mgl64.Quat) *Shape {
	t.Helper()
	h, b := addBody(w, pos)
	b.SetOrientation(rot)
	s, err := NewBox(h, half)
	require.NoError(t, err)
	require.NoError(t, w.AddShape(s))
	return s
}

func addHalfSpace(t *testing.T, w *World, normal mgl64.Vec3, offset float64) *Shape {
	t.Helper()
	h, b := addBody(w, mgl64.Vec3{})
	b.Lock()
	s, err := NewHalfSpace(h, normal, offset)
	require.NoError(t, err)
	require.NoError(t, w.AddShape(s))
	return s
}

func TestShapeConstructorsValidate(t *testing.T) {
	_, err := NewBox(0, mgl64.Vec3{1, 0, 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewBox(0, mgl64.Vec3{1, math.NaN(), 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSphere(0, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSphere(0, math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewHalfSpace(0, mgl64.Vec3{}, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	hs, err := NewHalfSpace(0, mgl64.Vec3{0, 2, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, hs.Normal())
	assert.Equal(t, ShapeHalfSpace, hs.Kind())
}

func TestShapeIdsAreUnique(t *testing.T) {
	a, _ := NewSphere(0, 1)
	b, _ := NewSphere(0, 1)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Contains(t, a.String(), string(a.ID()))
}

func TestSphereBoundsFollowBody(t *testing.T) {
	w := newTestWorld(t)
	s := addSphere(t, w, mgl64.Vec3{1, 2, 3}, 0.5)
	body := w.Body(s.Body())

	assert.Equal(t, BoundingSphere{Center: mgl64.Vec3{1, 2, 3}, Radius: 0.5}, s.BoundingSphere(body))
	assert.Equal(t, bvh.FromSphere(mgl64.Vec3{1, 2, 3}, 0.5), s.Bounds(body))

	body.SetPosition(mgl64.Vec3{-4, 0, 0})
	assert.Equal(t, mgl64.Vec3{-4, 0, 0}, s.BoundingSphere(body).Center)
	assert.Equal(t, mgl64.Vec3{-4.5, -0.5, -0.5}, s.Bounds(body).Min)
}

func TestBoundsCacheIsPerBody(t *testing.T) {
	s, err := NewSphere(0, 1)
	require.NoError(t, err)
	near, far := NewRigidBody(), NewRigidBody()
	near.SetPosition(mgl64.Vec3{1, 0, 0})
	far.SetPosition(mgl64.Vec3{50, 0, 0})
	require.Equal(t, near.Version(), far.Version())

	assert.Equal(t, 0.0, s.Bounds(near).Min.X())
	assert.Equal(t, 49.0, s.Bounds(far).Min.X())
	assert.Equal(t, mgl64.Vec3{50, 0, 0}, s.BoundingSphere(far).Center)
}

func TestRotatedBoxBounds(t *testing.T) {
	w := newTestWorld(t)
	s := addBox(t, w, mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))
	b := s.Bounds(w.Body(s.Body()))

	assert.InDelta(t, math.Sqrt2, b.Max.X(), 1e-9)
	assert.InDelta(t, math.Sqrt2, b.Max.Y(), 1e-9)
	assert.InDelta(t, 1.0, b.Max.Z(), 1e-9)
	assert.InDelta(t, -math.Sqrt2, b.Min.X(), 1e-9)
}

func TestHalfSpaceBoundsAreInfinite(t *testing.T) {
	w := newTestWorld(t)
	s := addHalfSpace(t, w, mgl64.Vec3{0, 1, 0}, 0)
	assert.True(t, s.Bounds(w.Body(s.Body())).IsInfinite())
}

func TestApplyMassProperties(t *testing.T) {
	b := NewRigidBody()
	sphere, _ := NewSphere(0, 2)
	require.NoError(t, sphere.ApplyMassProperties(b, 5))
	assert.Equal(t, 5.0, b.Mass())
	assert.True(t, b.InertiaTensor().ApproxEqualThreshold(mgl64.Diag3(mgl64.Vec3{8, 8, 8}), 1e-9))

	box, _ := NewBox(0, mgl64.Vec3{1, 2, 3})
	require.NoError(t, box.ApplyMassProperties(b, 3))
	// m/3 * (b^2 + c^2) with half sizes
	assert.True(t, b.InertiaTensor().ApproxEqualThreshold(mgl64.Diag3(mgl64.Vec3{13, 10, 5}), 1e-9),
		"got %v", b.InertiaTensor())

	assert.ErrorIs(t, box.ApplyMassProperties(b, -1), ErrInvalidArgument)

	plane, _ := NewHalfSpace(0, mgl64.Vec3{0, 1, 0}, 0)
	require.NoError(t, plane.ApplyMassProperties(b, 10))
	assert.False(t, b.HasFiniteMass())
}

package physix

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRigidBodyDefaults(t *testing.T) {
	b := NewRigidBody()

	assert.True(t, b.HasFiniteMass())
	assert.Equal(t, 1.0, b.Mass())
	assert.Equal(t, 1.0, b.InverseMass())
	assert.True(t, b.IsAwake())
	assert.Equal(t, mgl64.QuatIdent(), b.Orientation())
	assert.Equal(t, mgl64.Ident3(), b.InverseInertiaTensor())
	assert.Equal(t, mgl64.Ident4(), b.Transform())
	assert.NotZero(t, b.Version())
}

func TestMassAndInverseMassAreReciprocal(t *testing.T) {
	for _, m := range []float64{1e-3, 0.5, 1, 2.5, 80, 1e6} {
		b := NewRigidBody()
		require.NoError(t, b.SetMass(m))
		assert.Equal(t, 1/m, b.InverseMass(), "mass %v", m)
		assert.InEpsilon(t, m, b.Mass(), 1e-12, "mass %v", m)
		assert.True(t, b.HasFiniteMass())

		require.NoError(t, b.SetInverseMass(1/m))
		assert.InEpsilon(t, m, b.Mass(), 1e-12, "mass %v", m)
	}
}

func TestInfiniteMass(t *testing.T) {
	b := NewRigidBody()
	require.NoError(t, b.SetMass(math.Inf(1)))
	assert.False(t, b.HasFiniteMass())
	assert.Equal(t, 0.0, b.InverseMass())
	assert.True(t, math.IsInf(b.Mass(), 1))

	require.NoError(t, b.SetInverseMass(0.25))
	assert.True(t, b.HasFiniteMass())
	assert.Equal(t, 4.0, b.Mass())

	require.NoError(t, b.SetInverseMass(0))
	assert.False(t, b.HasFiniteMass())
}

func TestInvalidMassIsRejected(t *testing.T) {
	b := NewRigidBody()
	for _, m := range []float64{0, -1, math.Inf(-1), math.NaN()} {
		err := b.SetMass(m)
		assert.ErrorIs(t, err, ErrInvalidArgument, "mass %v", m)
	}
	for _, inv := range []float64{-0.5, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, b.SetInverseMass(inv), ErrInvalidArgument, "inverse mass %v", inv)
	}
	assert.Equal(t, 1.0, b.Mass(), "failed setters must not change the body")
}

func TestForceFreeUpdateMovesByVelocity(t *testing.T) {
	for _, dt := range []float64{0, 1.0 / 60, 0.25, 1, 3} {
		b := NewRigidBody()
		b.SetPosition(mgl64.Vec3{1, 2, 3})
		v := mgl64.Vec3{0.5, -2, 7}
		b.SetVelocity(v)
		start := b.Position()

		b.Update(dt)

		assert.Equal(t, start.Add(v.Mul(dt)), b.Position(), "dt %v", dt)
		assert.Equal(t, v, b.Velocity(), "dt %v", dt)
		assert.Equal(t, mgl64.QuatIdent(), b.Orientation())
	}
}

func TestUpdateIntegratesAccumulatedForce(t *testing.T) {
	b := NewRigidBody()
	require.NoError(t, b.SetMass(2))
	b.AddForce(mgl64.Vec3{4, 0, 0})

	b.Update(0.5)

	assert.Equal(t, mgl64.Vec3{2, 0, 0}, b.LastFrameAcceleration())
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, b.Velocity())
	assert.Equal(t, mgl64.Vec3{0.5, 0, 0}, b.Position())

	force, torque := b.Accumulators()
	assert.Equal(t, mgl64.Vec3{}, force)
	assert.Equal(t, mgl64.Vec3{}, torque)
}

func TestConstantAccelerationOnlyMovesFiniteMass(t *testing.T) {
	b := NewRigidBody()
	b.SetAcceleration(mgl64.Vec3{0, -10, 0})
	b.Update(0.1)
	assert.InDelta(t, -1.0, b.Velocity().Y(), 1e-12)

	b.Lock()
	start := b.Position()
	b.Update(0.1)
	assert.Equal(t, start, b.Position())
}

func TestAddForceAtPointProducesTorque(t *testing.T) {
	b := NewRigidBody()
	b.SetPosition(mgl64.Vec3{1, 1, 1})
	b.AddForceAtPoint(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{2, 1, 1})

	force, torque := b.Accumulators()
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, force)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, torque)

	b.Update(0.1)
	assert.InDelta(t, 0.1, b.Rotation().Z(), 1e-12)
	assert.InDelta(t, 1.0, b.Orientation().Len(), 1e-12)
	assert.NotEqual(t, mgl64.QuatIdent(), b.Orientation())
}

func TestOrientationStaysUnit(t *testing.T) {
	b := NewRigidBody()
	b.SetRotation(mgl64.Vec3{3, -1, 2})
	for i := 0; i < 500; i++ {
		b.Update(1.0 / 30)
		if l := b.Orientation().Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("step %d: orientation length %v", i, l)
		}
	}

	b.SetOrientation(mgl64.Quat{W: 0, V: mgl64.Vec3{}})
	assert.Equal(t, mgl64.QuatIdent(), b.Orientation())
	b.SetOrientation(mgl64.Quat{W: 2, V: mgl64.Vec3{}})
	assert.Equal(t, mgl64.QuatIdent(), b.Orientation())
}

func TestLockedBodyIsImmovable(t *testing.T) {
	b := NewRigidBody()
	b.SetPosition(mgl64.Vec3{0, 5, 0})
	b.SetVelocity(mgl64.Vec3{1, 0, 0})
	b.SetRotation(mgl64.Vec3{0, 1, 0})
	b.Lock()

	pos, rot := b.Position(), b.Orientation()
	b.AddForce(mgl64.Vec3{100, 100, 100})
	b.AddForceAtPoint(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{3, 5, 0})
	b.Update(0.5)

	assert.Equal(t, pos, b.Position())
	assert.Equal(t, rot, b.Orientation())
	assert.False(t, b.HasFiniteMass())
	assert.Equal(t, mgl64.Mat3{}, b.InverseInertiaTensorWorld())
}

func TestRevertChangesRestoresPose(t *testing.T) {
	for _, dt := range []float64{1.0 / 120, 0.1, 1} {
		b := NewRigidBody()
		b.SetPosition(mgl64.Vec3{-1, 4, 2})
		b.SetOrientation(mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0}))
		b.SetVelocity(mgl64.Vec3{2, 0, -1})
		b.SetRotation(mgl64.Vec3{0.5, 0, 0.25})
		b.AddForceAtPoint(mgl64.Vec3{0, -3, 0}, mgl64.Vec3{0, 4, 3})

		pos, rot := b.Position(), b.Orientation()
		b.Update(dt)
		require.NotEqual(t, pos, b.Position())
		vel := b.Velocity()

		b.RevertChanges()
		assert.Equal(t, pos, b.Position(), "dt %v", dt)
		assert.Equal(t, rot, b.Orientation(), "dt %v", dt)
		assert.Equal(t, vel, b.Velocity(), "velocity is not rolled back")
	}
}

func TestSleepingBodySkipsUpdate(t *testing.T) {
	b := NewRigidBody()
	b.SetVelocity(mgl64.Vec3{1, 1, 1})
	b.Sleep()
	b.Update(1)
	assert.Equal(t, mgl64.Vec3{}, b.Position())

	b.Awake()
	b.Update(1)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, b.Position())
}

func TestInertiaTensor(t *testing.T) {
	b := NewRigidBody()
	require.NoError(t, b.SetInertiaTensorCoeffs(2, 4, 8, 0, 0, 0))
	assert.True(t, b.InertiaTensor().ApproxEqual(mgl64.Diag3(mgl64.Vec3{2, 4, 8})))
	assert.True(t, b.InverseInertiaTensor().ApproxEqual(mgl64.Diag3(mgl64.Vec3{0.5, 0.25, 0.125})))

	assert.ErrorIs(t, b.SetInertiaTensorCoeffs(0, 1, 1, 0, 0, 0), ErrInvalidArgument)
	assert.ErrorIs(t, b.SetInertiaTensorCoeffs(1, 1, 1, 1, 0, 0), ErrInvalidArgument, "singular tensor")
	assert.ErrorIs(t, b.SetInertiaTensor(mgl64.Mat3{}), ErrInvalidArgument)
}

func TestWorldInertiaFollowsOrientation(t *testing.T) {
	b := NewRigidBody()
	require.NoError(t, b.SetInertiaTensorCoeffs(1, 2, 4, 0, 0, 0))
	b.SetOrientation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))

	want := mgl64.Diag3(mgl64.Vec3{0.5, 1, 0.25})
	assert.True(t, b.InverseInertiaTensorWorld().ApproxEqualThreshold(want, 1e-9),
		"got %v", b.InverseInertiaTensorWorld())
}

func TestSpaceConversions(t *testing.T) {
	b := NewRigidBody()
	b.SetPosition(mgl64.Vec3{1, 0, 0})
	b.SetOrientation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))

	world := b.PointInWorldSpace(mgl64.Vec3{1, 0, 0})
	assert.True(t, world.ApproxEqualThreshold(mgl64.Vec3{1, 1, 0}, 1e-9), "got %v", world)
	assert.True(t, b.PointInLocalSpace(world).ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9))
	assert.True(t, b.Axis(0).ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9))
	assert.True(t, b.Axis(3).ApproxEqual(mgl64.Vec3{1, 0, 0}))
}

func TestVersionBumpsOnPoseChange(t *testing.T) {
	b := NewRigidBody()
	v := b.Version()
	b.SetPosition(mgl64.Vec3{1, 0, 0})
	assert.Greater(t, b.Version(), v)

	v = b.Version()
	b.SetVelocity(mgl64.Vec3{1, 0, 0})
	assert.Equal(t, v, b.Version(), "velocity does not affect derived state")
	b.Update(0.1)
	assert.Greater(t, b.Version(), v)
}

package physix

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidArgument is returned for setup values that cannot describe a
// physical body or shape (non-positive mass, singular inertia, ...).
var ErrInvalidArgument = errors.New("physix: invalid argument")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// RigidBody holds the kinematic state of one body. Position and orientation
// drive the derived transform and world-space inverse inertia; every mutator
// of the pose goes through situationChanged so the two never go stale.
type RigidBody struct {
	position    mgl64.Vec3
	orientation mgl64.Quat

	velocity mgl64.Vec3
	rotation mgl64.Vec3 // angular velocity, world space

	acceleration          mgl64.Vec3
	lastFrameAcceleration mgl64.Vec3
	angularAcceleration   mgl64.Vec3

	forceAccum  mgl64.Vec3
	torqueAccum mgl64.Vec3

	inverseMass   float64
	hasFiniteMass bool

	inverseInertiaTensor      mgl64.Mat3
	inverseInertiaTensorWorld mgl64.Mat3
	transform                 mgl64.Mat4

	awake    bool
	idleTime float64

	prevPosition    mgl64.Vec3
	prevOrientation mgl64.Quat

	version uint64
}

// NewRigidBody returns an awake unit-mass body at the origin with an identity
// inertia tensor.
func NewRigidBody() *RigidBody {
	b := &RigidBody{
		orientation:          mgl64.QuatIdent(),
		prevOrientation:      mgl64.QuatIdent(),
		inverseMass:          1,
		hasFiniteMass:        true,
		inverseInertiaTensor: mgl64.Ident3(),
		awake:                true,
	}
	b.situationChanged()
	return b
}

// SetMass sets a finite positive mass, or +Inf for an immovable body.
func (b *RigidBody) SetMass(mass float64) error {
	if math.IsNaN(mass) || mass <= 0 {
		return invalidf("mass must be positive, got %v", mass)
	}
	if math.IsInf(mass, 1) {
		b.inverseMass = 0
		b.hasFiniteMass = false
		return nil
	}
	b.inverseMass = 1 / mass
	b.hasFiniteMass = true
	return nil
}

// SetInverseMass sets the inverse mass; zero means infinite mass.
func (b *RigidBody) SetInverseMass(inverseMass float64) error {
	if math.IsNaN(inverseMass) || inverseMass < 0 || math.IsInf(inverseMass, 0) {
		return invalidf("inverse mass must be finite and >= 0, got %v", inverseMass)
	}
	b.inverseMass = inverseMass
	b.hasFiniteMass = inverseMass != 0
	return nil
}

// Mass returns the mass, +Inf for immovable bodies.
func (b *RigidBody) Mass() float64 {
	if !b.hasFiniteMass {
		return math.Inf(1)
	}
	return 1 / b.inverseMass
}

func (b *RigidBody) InverseMass() float64 { return b.inverseMass }
func (b *RigidBody) HasFiniteMass() bool  { return b.hasFiniteMass }

// SetInertiaTensor stores the inverse of the given body-space tensor.
func (b *RigidBody) SetInertiaTensor(tensor mgl64.Mat3) error {
	det := tensor.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return invalidf("inertia tensor is singular")
	}
	b.inverseInertiaTensor = tensor.Inv()
	b.situationChanged()
	return nil
}

// SetInertiaTensorCoeffs builds the body-space tensor from principal moments
// and products of inertia.
func (b *RigidBody) SetInertiaTensorCoeffs(ix, iy, iz, ixy, ixz, iyz float64) error {
	if !(ix > 0 && iy > 0 && iz > 0) {
		return invalidf("principal moments must be positive, got (%v, %v, %v)", ix, iy, iz)
	}
	// mgl64 matrices are column-major; the tensor is symmetric either way.
	m := mgl64.Mat3{
		ix, -ixy, -ixz,
		-ixy, iy, -iyz,
		-ixz, -iyz, iz,
	}
	return b.SetInertiaTensor(m)
}

// SetInverseInertiaTensor stores a body-space inverse tensor directly. The
// zero matrix gives infinite rotational inertia.
func (b *RigidBody) SetInverseInertiaTensor(inverse mgl64.Mat3) {
	b.inverseInertiaTensor = inverse
	b.situationChanged()
}

func (b *RigidBody) InverseInertiaTensor() mgl64.Mat3 { return b.inverseInertiaTensor }

// InertiaTensor inverts the stored tensor on every call. A locked body
// reports the zero matrix.
func (b *RigidBody) InertiaTensor() mgl64.Mat3 {
	return b.inverseInertiaTensor.Inv()
}

func (b *RigidBody) InverseInertiaTensorWorld() mgl64.Mat3 { return b.inverseInertiaTensorWorld }

func (b *RigidBody) Position() mgl64.Vec3    { return b.position }
func (b *RigidBody) Orientation() mgl64.Quat { return b.orientation }

// SetPosition moves the body; the old pose becomes the rollback snapshot.
func (b *RigidBody) SetPosition(p mgl64.Vec3) {
	b.snapshot()
	b.position = p
	b.situationChanged()
}

// SetOrientation sets and normalizes the orientation. A zero quaternion is
// replaced by the identity.
func (b *RigidBody) SetOrientation(q mgl64.Quat) {
	b.snapshot()
	b.orientation = q
	b.situationChanged()
}

func (b *RigidBody) Velocity() mgl64.Vec3         { return b.velocity }
func (b *RigidBody) SetVelocity(v mgl64.Vec3)     { b.velocity = v }
func (b *RigidBody) AddVelocity(v mgl64.Vec3)     { b.velocity = b.velocity.Add(v) }
func (b *RigidBody) Rotation() mgl64.Vec3         { return b.rotation }
func (b *RigidBody) SetRotation(w mgl64.Vec3)     { b.rotation = w }
func (b *RigidBody) Acceleration() mgl64.Vec3     { return b.acceleration }
func (b *RigidBody) SetAcceleration(a mgl64.Vec3) { b.acceleration = a }

func (b *RigidBody) LastFrameAcceleration() mgl64.Vec3 { return b.lastFrameAcceleration }
func (b *RigidBody) AngularAcceleration() mgl64.Vec3   { return b.angularAcceleration }

// Transform is the body to world matrix.
func (b *RigidBody) Transform() mgl64.Mat4 { return b.transform }

// Version increases every time the pose changes. Shapes use it to know when
// their cached bounds are stale.
func (b *RigidBody) Version() uint64 { return b.version }

func (b *RigidBody) IsAwake() bool { return b.awake }

// Sleep excludes the body from integration and drops pending forces.
func (b *RigidBody) Sleep() {
	b.awake = false
	b.idleTime = 0
	b.clearAccumulators()
}

func (b *RigidBody) Awake() {
	b.awake = true
	b.idleTime = 0
}

// IsMoving reports a non-zero linear velocity.
func (b *RigidBody) IsMoving() bool {
	return b.velocity != (mgl64.Vec3{})
}

// AddForce accumulates a force through the center of mass.
func (b *RigidBody) AddForce(force mgl64.Vec3) {
	b.forceAccum = b.forceAccum.Add(force)
}

// AddForceAtPoint accumulates a force applied at a world-space point, along
// with the torque it produces about the center of mass.
func (b *RigidBody) AddForceAtPoint(force, point mgl64.Vec3) {
	pt := point.Sub(b.position)
	b.forceAccum = b.forceAccum.Add(force)
	b.torqueAccum = b.torqueAccum.Add(pt.Cross(force))
}

func (b *RigidBody) AddTorque(torque mgl64.Vec3) {
	b.torqueAccum = b.torqueAccum.Add(torque)
}

// Accumulators returns the pending force and torque.
func (b *RigidBody) Accumulators() (force, torque mgl64.Vec3) {
	return b.forceAccum, b.torqueAccum
}

// Update integrates the body over dt with semi-implicit Euler: velocities are
// advanced first and the new velocities move the pose.
func (b *RigidBody) Update(dt float64) {
	if !b.awake {
		return
	}

	b.lastFrameAcceleration = b.forceAccum.Mul(b.inverseMass)
	if b.hasFiniteMass {
		b.lastFrameAcceleration = b.lastFrameAcceleration.Add(b.acceleration)
	}
	b.angularAcceleration = b.inverseInertiaTensorWorld.Mul3x1(b.torqueAccum)

	b.velocity = b.velocity.Add(b.lastFrameAcceleration.Mul(dt))
	b.rotation = b.rotation.Add(b.angularAcceleration.Mul(dt))

	b.snapshot()

	b.position = b.position.Add(b.velocity.Mul(dt))
	if b.rotation.LenSqr() > 0 {
		b.orientation = addScaledVector(b.orientation, b.rotation, dt)
	}

	b.situationChanged()
	b.clearAccumulators()
}

// RevertChanges restores the pose saved before the last Update or pose
// setter. Velocities are kept.
func (b *RigidBody) RevertChanges() {
	b.position = b.prevPosition
	b.orientation = b.prevOrientation
	b.situationChanged()
}

// Lock makes the body immovable. Mass and inertia have to be set again to
// release it.
func (b *RigidBody) Lock() {
	b.inverseInertiaTensor = mgl64.Mat3{}
	b.inverseMass = 0
	b.hasFiniteMass = false
	b.velocity = mgl64.Vec3{}
	b.rotation = mgl64.Vec3{}
	b.clearAccumulators()
	b.situationChanged()
}

// PointInWorldSpace converts a body-space point to world space.
func (b *RigidBody) PointInWorldSpace(local mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(local, b.transform)
}

// PointInLocalSpace converts a world-space point to body space.
func (b *RigidBody) PointInLocalSpace(world mgl64.Vec3) mgl64.Vec3 {
	return b.orientation.Conjugate().Rotate(world.Sub(b.position))
}

// DirectionInWorldSpace rotates a body-space direction into world space.
func (b *RigidBody) DirectionInWorldSpace(local mgl64.Vec3) mgl64.Vec3 {
	return b.orientation.Rotate(local)
}

// Axis returns column i (0..2) of the transform: the body's local axes in
// world space. Index 3 is the position.
func (b *RigidBody) Axis(i int) mgl64.Vec3 {
	return b.transform.Col(i).Vec3()
}

func (b *RigidBody) snapshot() {
	b.prevPosition = b.position
	b.prevOrientation = b.orientation
}

func (b *RigidBody) clearAccumulators() {
	b.forceAccum = mgl64.Vec3{}
	b.torqueAccum = mgl64.Vec3{}
}

// situationChanged is the single invalidation hook for derived state.
func (b *RigidBody) situationChanged() {
	b.orientation = b.orientation.Normalize()

	rot := b.orientation.Mat4()
	b.transform = mgl64.Translate3D(b.position.X(), b.position.Y(), b.position.Z()).Mul4(rot)

	r := rot.Mat3()
	b.inverseInertiaTensorWorld = r.Mul3(b.inverseInertiaTensor).Mul3(r.Transpose())
	b.version++
}

// addScaledVector applies a small rotation of w*scale to q:
// q += 0.5 * (0, w*scale) * q, then normalizes.
func addScaledVector(q mgl64.Quat, w mgl64.Vec3, scale float64) mgl64.Quat {
	spin := mgl64.Quat{W: 0, V: w.Mul(scale)}.Mul(q).Scale(0.5)
	return q.Add(spin).Normalize()
}

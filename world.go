package physix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyHandle is an index into a World's body arena.
type BodyHandle int

// NoBody never resolves to a body.
const NoBody BodyHandle = -1

// BodyResolver maps handles to bodies. Shapes, springs and the detector only
// hold handles; the resolver owns the bodies.
type BodyResolver interface {
	Body(h BodyHandle) *RigidBody
}

// World is the simulation context: it owns the bodies, the constraints and
// the collision detector, and provides a reference step for host loops.
type World struct {
	cfg    Config
	logger Logger

	bodies      []*RigidBody
	constraints []Constraint
	detector    *CollisionDetector

	steps int
}

func NewWorld(cfg Config, logger Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{cfg: cfg, logger: orNop(logger)}
	w.detector = NewCollisionDetector(w, w.logger)
	return w, nil
}

func (w *World) Config() Config               { return w.cfg }
func (w *World) Logger() Logger               { return w.logger }
func (w *World) Detector() *CollisionDetector { return w.detector }
func (w *World) Steps() int                   { return w.steps }
func (w *World) Constraints() []Constraint    { return append([]Constraint(nil), w.constraints...) }

// AddBody stores b in the arena and returns its handle.
func (w *World) AddBody(b *RigidBody) BodyHandle {
	w.bodies = append(w.bodies, b)
	return BodyHandle(len(w.bodies) - 1)
}

// Body resolves h, returning nil for unknown handles.
func (w *World) Body(h BodyHandle) *RigidBody {
	if h < 0 || int(h) >= len(w.bodies) {
		return nil
	}
	return w.bodies[h]
}

// Bodies returns the number of bodies in the arena.
func (w *World) Bodies() int { return len(w.bodies) }

// AddShape registers s with the detector.
func (w *World) AddShape(s *Shape) error {
	return w.detector.AddShape(s)
}

func (w *World) RemoveShape(id ShapeId) bool {
	return w.detector.RemoveShape(id)
}

// AddConstraint registers a force generator. Both of its bodies must exist.
func (w *World) AddConstraint(c Constraint) error {
	a, b := c.Bodies()
	if w.Body(a) == nil || w.Body(b) == nil {
		return invalidf("constraint references unknown bodies %d, %d", a, b)
	}
	w.constraints = append(w.constraints, c)
	return nil
}

// Step advances the simulation by dt seconds: constraint forces first, then
// gravity, then integration of every body. Sleeping bodies that receive a
// constraint force are woken; the others never carry forces over. The
// contact cache is invalidated afterwards. Steps with dt <= 0, NaN or above
// Config.MaxStep are skipped.
func (w *World) Step(dt float64) bool {
	if math.IsNaN(dt) || dt <= 0 || dt > w.cfg.MaxStep {
		w.logger.Warnf("skipping step with dt=%v (max %v)", dt, w.cfg.MaxStep)
		return false
	}

	for _, c := range w.constraints {
		c.Affect(w)
	}
	// A constraint pulling on a sleeping body wakes it and its partners.
	for i, b := range w.bodies {
		if b.IsAwake() || !b.HasFiniteMass() {
			continue
		}
		if force, torque := b.Accumulators(); force != (mgl64.Vec3{}) || torque != (mgl64.Vec3{}) {
			w.Wake(BodyHandle(i))
		}
	}

	for _, b := range w.bodies {
		if !b.IsAwake() || !b.HasFiniteMass() {
			continue
		}
		if w.cfg.Gravity != (mgl64.Vec3{}) {
			b.AddForce(w.cfg.Gravity.Mul(b.Mass()))
		}
	}

	for _, b := range w.bodies {
		if !b.IsAwake() {
			b.clearAccumulators()
			continue
		}
		b.Update(dt)
		w.trySleep(b, dt)
	}

	w.steps++
	w.detector.Invalidate()
	w.logger.Debugf("step %d: dt=%v bodies=%d constraints=%d", w.steps, dt, len(w.bodies), len(w.constraints))
	return true
}

// Advance steps by the frame time recorded in t.
func (w *World) Advance(t *Time) bool {
	return w.Step(t.Seconds())
}

// Contacts returns the contacts for the current body poses.
func (w *World) Contacts() []Contact {
	return w.detector.Contacts()
}

// Wake wakes b and every body sharing a constraint with it.
func (w *World) Wake(h BodyHandle) {
	b := w.Body(h)
	if b == nil {
		return
	}
	b.Awake()
	for _, c := range w.constraints {
		x, y := c.Bodies()
		switch h {
		case x:
			if o := w.Body(y); o != nil {
				o.Awake()
			}
		case y:
			if o := w.Body(x); o != nil {
				o.Awake()
			}
		}
	}
}

func (w *World) trySleep(b *RigidBody, dt float64) {
	if w.cfg.SleepTime <= 0 || !b.IsAwake() || !b.HasFiniteMass() {
		return
	}
	if b.Velocity().Len() < w.cfg.SleepThreshold && b.Rotation().Len() < w.cfg.SleepThreshold {
		b.idleTime += dt
		if b.idleTime > w.cfg.SleepTime {
			b.Sleep()
			b.SetVelocity(mgl64.Vec3{})
			b.SetRotation(mgl64.Vec3{})
		}
		return
	}
	b.idleTime = 0
}

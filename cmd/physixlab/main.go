// Command physixlab runs a small headless scene through the physics core:
// a few boxes and spheres fall onto a ground plane while a spring ties two
// of the spheres together. Contacts are resolved crudely by rolling bodies
// back and cancelling their approaching velocity.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/physix"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	configPath := flag.String("config", "physix.yaml", "path to the YAML world config")
	steps := flag.Int("steps", 240, "number of simulation steps")
	dt := flag.Duration("dt", time.Second/60, "fixed time step")
	debug := flag.Bool("debug", false, "enable debug logging")
	verify := flag.Bool("verify", false, "cross-check every pass against the exhaustive detector")
	flag.Parse()

	cfg, err := physix.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}
	logger := physix.NewLoggerFromConfig(cfg)

	world, err := physix.NewWorld(cfg, logger)
	if err != nil {
		logger.Errorf("create world: %v", err)
		os.Exit(1)
	}
	if err := buildScene(world); err != nil {
		logger.Errorf("build scene: %v", err)
		os.Exit(1)
	}

	clock := physix.NewTime(time.Time{})
	for i := 0; i < *steps; i++ {
		clock.Tick(clock.Time.Add(*dt))
		if !world.Advance(clock) {
			continue
		}
		contacts := world.Contacts()
		if *verify {
			if want := len(world.Detector().DetectExhaustive()); want != len(contacts) {
				logger.Errorf("step %d: hierarchy found %d contacts, exhaustive search %d", i, len(contacts), want)
			}
		}
		resolved := resolve(world, contacts)
		if i%30 == 0 {
			logger.Infof("step %d: %d contacts, %d bodies rolled back", i, len(contacts), resolved)
		}
	}

	for h := 0; h < world.Bodies(); h++ {
		b := world.Body(physix.BodyHandle(h))
		logger.Infof("body %d: position=%v awake=%v", h, b.Position(), b.IsAwake())
	}
}

func buildScene(w *physix.World) error {
	ground := physix.NewRigidBody()
	ground.Lock()
	gh := w.AddBody(ground)
	plane, err := physix.NewHalfSpace(gh, mgl64.Vec3{0, 1, 0}, 0)
	if err != nil {
		return err
	}
	if err := w.AddShape(plane); err != nil {
		return err
	}

	var spheres []physix.BodyHandle
	for i := 0; i < 4; i++ {
		b := physix.NewRigidBody()
		b.SetPosition(mgl64.Vec3{float64(i) * 2.5, 3 + float64(i), 0})
		h := w.AddBody(b)

		var s *physix.Shape
		if i%2 == 0 {
			s, err = physix.NewBox(h, mgl64.Vec3{0.5, 0.5, 0.5})
		} else {
			s, err = physix.NewSphere(h, 0.5)
			spheres = append(spheres, h)
		}
		if err != nil {
			return err
		}
		if err := s.ApplyMassProperties(b, 2); err != nil {
			return err
		}
		if err := w.AddShape(s); err != nil {
			return err
		}
	}

	spring, err := physix.NewSpring(spheres[0], spheres[1], mgl64.Vec3{}, 4, 2)
	if err != nil {
		return err
	}
	return w.AddConstraint(spring)
}

// resolve undoes the last step of every movable body in contact and removes
// the velocity component driving it into the other shape.
func resolve(w *physix.World, contacts []physix.Contact) int {
	reverted := map[physix.BodyHandle]bool{}
	push := func(h physix.BodyHandle, normal mgl64.Vec3) {
		b := w.Body(h)
		if b == nil || !b.HasFiniteMass() {
			return
		}
		if !reverted[h] {
			b.RevertChanges()
			reverted[h] = true
		}
		if vn := b.Velocity().Dot(normal); vn < 0 {
			b.SetVelocity(b.Velocity().Sub(normal.Mul(vn)))
		}
	}
	for _, c := range contacts {
		push(c.First.Body(), c.Normal)
		push(c.Second.Body(), c.Normal.Mul(-1))
	}
	return len(reverted)
}

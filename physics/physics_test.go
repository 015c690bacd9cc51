package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
)

func TestLimitFrictionKeepsNormalComponent(t *testing.T) {
	normal := mgl32.Vec3{0, 1, 0}
	v := mgl32.Vec3{0.5, 2.0, 0}

	got := LimitFriction(v, normal, 0.1)
	if diff := got.Y() - 2.0; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("normal component = %v, want 2.0", got.Y())
	}
	// Tangential part is capped at d times the normal part.
	if got.X() > 0.2+1e-5 {
		t.Errorf("tangential component = %v, want at most 0.2", got.X())
	}
	if got.Z() != 0 {
		t.Errorf("unexpected z component %v", got.Z())
	}
}

func TestLimitFrictionSmallTangential(t *testing.T) {
	normal := mgl32.Vec3{0, 1, 0}
	v := mgl32.Vec3{0.05, 2.0, 0}

	// The tangential part is below the cap of 0.2 and survives unchanged.
	got := LimitFriction(v, normal, 0.1)
	if diff := got.X() - 0.05; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("tangential component = %v, want 0.05", got.X())
	}
}

func TestSimulatePuckFallsUnderGravity(t *testing.T) {
	rink := game.NewRink(30, 61, 8.5)
	cfg := game.DefaultPhysicsConfig()

	puck := game.NewPuck(mgl32.Vec3{15, 1.5, 30.5}, mgl32.Ident3())
	pucks := []PuckEntry{{Index: 0, Puck: puck}}

	events := Simulate(nil, pucks, rink, &cfg)
	if len(events) != 0 {
		t.Errorf("free fall produced %d events", len(events))
	}
	if puck.Body.Vel.Y() >= 0 {
		t.Errorf("puck velocity y = %v, want negative", puck.Body.Vel.Y())
	}
	if puck.Body.Pos.Y() >= 1.5 {
		t.Errorf("puck position y = %v, want below 1.5", puck.Body.Pos.Y())
	}
}

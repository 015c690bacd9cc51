package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Body is a rigid body shared by skaters and pucks. Positions are in metres,
// velocities in metres per centisecond, angular velocities in radians per
// centisecond.
type Body struct {
	Pos        mgl32.Vec3
	Vel        mgl32.Vec3
	Rot        mgl32.Mat3
	AngularVel mgl32.Vec3
	// RotMul is a fixed per-axis inertia shortcut used when converting point
	// impulses into angular velocity changes.
	RotMul mgl32.Vec3
}

// CollisionBall is one of the six spheres carrying a skater's distributed
// mass during contact resolution.
type CollisionBall struct {
	Offset mgl32.Vec3
	Pos    mgl32.Vec3
	Vel    mgl32.Vec3
	Radius float32
	Mass   float32
}

// Skater is one player object in the world.
//
// Setting the position, rotation or velocity directly desynchronizes the
// collision balls from the body; call ResetCollisionBalls afterwards.
type Skater struct {
	Body Body
	// StickPos is the stick blade position in world space.
	StickPos mgl32.Vec3
	StickVel mgl32.Vec3
	StickRot mgl32.Mat3
	// HeadRot turns the head around the local Y axis, negative left.
	HeadRot float32
	// BodyRot leans the torso around the local X axis, positive forwards.
	BodyRot float32
	Height  float32
	// JumpedLastFrame edge-triggers the jump impulse.
	JumpedLastFrame bool
	// StickPlacement is azimuth and inclination of the stick in the player's
	// frame, StickPlacementDelta its per-tick derivative.
	StickPlacement      mgl32.Vec2
	StickPlacementDelta mgl32.Vec2
	CollisionBalls      [6]CollisionBall
	Hand                Hand
}

var skaterBallConfig = [6]struct {
	offset mgl32.Vec3
	radius float32
}{
	{mgl32.Vec3{0, 0, 0}, 0.225},
	{mgl32.Vec3{0.25, 0.3125, 0}, 0.25},
	{mgl32.Vec3{-0.25, 0.3125, 0}, 0.25},
	{mgl32.Vec3{-0.1875, -0.1875, 0}, 0.1875},
	{mgl32.Vec3{0.1875, -0.1875, 0}, 0.1875},
	{mgl32.Vec3{0, 0.5, 0}, 0.1875},
}

// NewSkater returns a skater at rest at the given position and rotation.
func NewSkater(pos mgl32.Vec3, rot mgl32.Mat3, hand Hand) *Skater {
	s := &Skater{
		Body: Body{
			Pos:    pos,
			Rot:    rot,
			RotMul: mgl32.Vec3{2.75, 6.16, 2.35},
		},
		StickPos: pos,
		StickRot: mgl32.Ident3(),
		Height:   0.75,
		Hand:     hand,
	}
	s.ResetCollisionBalls()
	return s
}

// ResetCollisionBalls restores the ball offsets relative to the current body
// position, giving every ball the body's velocity.
func (s *Skater) ResetCollisionBalls() {
	for i, c := range skaterBallConfig {
		s.CollisionBalls[i] = CollisionBall{
			Offset: c.offset,
			Pos:    s.Body.Pos.Add(s.Body.Rot.Mul3x1(c.offset)),
			Vel:    s.Body.Vel,
			Radius: c.radius,
			Mass:   1.0,
		}
	}
}

// Puck is the puck object.
type Puck struct {
	Body   Body
	Radius float32
	Height float32
}

// NewPuck returns a puck at rest at the given position and rotation.
func NewPuck(pos mgl32.Vec3, rot mgl32.Mat3) *Puck {
	return &Puck{
		Body: Body{
			Pos:    pos,
			Rot:    rot,
			RotMul: mgl32.Vec3{223.5, 128.0, 223.5},
		},
		Radius: 0.125,
		Height: 0.0412500016391,
	}
}

// Vertices samples the puck's surface as 48 points, 16 azimuths at three
// heights, used for rink and stick collision tests.
func (p *Puck) Vertices() [48]mgl32.Vec3 {
	var res [48]mgl32.Vec3
	for i := 0; i < 16; i++ {
		sin, cos := math32.Sincos(float32(i) * math32.Pi / 8.0)
		for j := -1; j <= 1; j++ {
			point := mgl32.Vec3{cos * p.Radius, float32(j) * p.Height, sin * p.Radius}
			res[i*3+1-j] = p.Body.Pos.Add(p.Body.Rot.Mul3x1(point))
		}
	}
	return res
}

package game

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SideOfLine is the result of a rink line query. The red side is the end
// where the red net stands (high Z).
type SideOfLine uint8

const (
	SideBlue SideOfLine = iota
	SideOn
	SideRed
)

// RinkLine is one of the three transverse lines painted on the ice.
type RinkLine struct {
	// Z is the coordinate of the middle of the line.
	Z float32
	// Width of the painted line.
	Width float32
}

// SideOfLine reports which side of the line a sphere of the given radius at
// pos is on, treating any contact with the painted band as On.
func (l RinkLine) SideOfLine(pos mgl32.Vec3, radius float32) SideOfLine {
	dot := pos.Z() - l.Z
	switch {
	case dot > l.Width/2.0+radius:
		return SideRed
	case dot < -l.Width-radius:
		return SideBlue
	default:
		return SideOn
	}
}

// Net is one of the two goal cages.
type Net struct {
	// Posts are capsule segments (start, end, radius).
	Posts []NetPost
	// Surfaces close the cage; each is a quad wound so its normal faces out.
	Surfaces [][4]mgl32.Vec3
	// LeftPost and RightPost anchor the goal plane.
	LeftPost  mgl32.Vec3
	RightPost mgl32.Vec3
	// Normal points out of the goal mouth.
	Normal mgl32.Vec3
	// LeftPostInside and RightPostInside are half-space normals pointing into
	// the goal mouth from each post.
	LeftPostInside  mgl32.Vec3
	RightPostInside mgl32.Vec3
}

// NetPost is a single capsule segment of a net frame.
type NetPost struct {
	Start  mgl32.Vec3
	End    mgl32.Vec3
	Radius float32
}

func newNet(pos mgl32.Vec3, rot mgl32.Mat3) Net {
	const (
		frontHalfWidth = 1.5
		backHalfWidth  = 1.25
		height         = 1.0
		upperDepth     = 0.75
		lowerDepth     = 1.0
	)
	frontUpperLeft := pos.Add(rot.Mul3x1(mgl32.Vec3{-frontHalfWidth, height, 0}))
	frontUpperRight := pos.Add(rot.Mul3x1(mgl32.Vec3{frontHalfWidth, height, 0}))
	frontLowerLeft := pos.Add(rot.Mul3x1(mgl32.Vec3{-frontHalfWidth, 0, 0}))
	frontLowerRight := pos.Add(rot.Mul3x1(mgl32.Vec3{frontHalfWidth, 0, 0}))
	backUpperLeft := pos.Add(rot.Mul3x1(mgl32.Vec3{-backHalfWidth, height, -upperDepth}))
	backUpperRight := pos.Add(rot.Mul3x1(mgl32.Vec3{backHalfWidth, height, -upperDepth}))
	backLowerLeft := pos.Add(rot.Mul3x1(mgl32.Vec3{-backHalfWidth, 0, -lowerDepth}))
	backLowerRight := pos.Add(rot.Mul3x1(mgl32.Vec3{backHalfWidth, 0, -lowerDepth}))

	return Net{
		Posts: []NetPost{
			{frontLowerRight, frontUpperRight, 0.1875},
			{frontLowerLeft, frontUpperLeft, 0.1875},
			{frontUpperRight, frontUpperLeft, 0.125},
			{frontLowerLeft, backLowerLeft, 0.125},
			{frontLowerRight, backLowerRight, 0.125},
			{frontUpperLeft, backUpperLeft, 0.125},
			{backUpperRight, frontUpperRight, 0.125},
			{backLowerLeft, backUpperLeft, 0.125},
			{backLowerRight, backUpperRight, 0.125},
			{backLowerLeft, backLowerRight, 0.125},
			{backUpperLeft, backUpperRight, 0.125},
		},
		Surfaces: [][4]mgl32.Vec3{
			{backUpperLeft, backUpperRight, backLowerRight, backLowerLeft},
			{frontUpperLeft, backUpperLeft, backLowerLeft, frontLowerLeft},
			{frontUpperRight, frontLowerRight, backLowerRight, backUpperRight},
			{frontUpperLeft, frontUpperRight, backUpperRight, backUpperLeft},
		},
		LeftPost:        frontLowerLeft,
		RightPost:       frontLowerRight,
		Normal:          rot.Mul3x1(mgl32.Vec3{0, 0, 1}),
		LeftPostInside:  rot.Mul3x1(mgl32.Vec3{1, 0, 0}),
		RightPostInside: rot.Mul3x1(mgl32.Vec3{-1, 0, 0}),
	}
}

// Plane is an infinite boundary plane given by a point and an inward normal.
type Plane struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3
}

// Corner is a quarter-cylinder corner board, with Dir selecting the quadrant.
type Corner struct {
	Pos    mgl32.Vec3
	Dir    mgl32.Vec3
	Radius float32
}

// Rink holds the static collision geometry and painted lines for a game.
//
// The X axis runs sideline-to-sideline (0 at the left wall seen from the red
// goalie, default width 30), the Z axis end-to-end (0 at the wall behind the
// blue net, default length 61), Y up with the ice at 0.
type Rink struct {
	Planes  []Plane
	Corners []Corner

	RedNet  Net
	BlueNet Net

	CenterLine       RinkLine
	RedZoneBlueLine  RinkLine
	BlueZoneBlueLine RinkLine

	Width  float32
	Length float32
}

// NewRink constructs a rink. IIHF rules 17iii-17vi fix the line width at 0.3,
// goal lines 4 m from the end boards and bluelines 22.86 m from them.
func NewRink(width, length, cornerRadius float32) *Rink {
	planes := []Plane{
		{mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, length}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{width, 0, 0}, mgl32.Vec3{-1, 0, 0}},
		{mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}},
	}
	r, wr, lr := cornerRadius, width-cornerRadius, length-cornerRadius
	corners := []Corner{
		{mgl32.Vec3{r, 0, r}, mgl32.Vec3{-1, 0, -1}, cornerRadius},
		{mgl32.Vec3{wr, 0, r}, mgl32.Vec3{1, 0, -1}, cornerRadius},
		{mgl32.Vec3{wr, 0, lr}, mgl32.Vec3{1, 0, 1}, cornerRadius},
		{mgl32.Vec3{r, 0, lr}, mgl32.Vec3{-1, 0, 1}, cornerRadius},
	}

	const (
		lineWidth        = 0.3
		goalLineDistance = 4.0
		blueLineDistance = 22.86
	)
	blueLineMid := float32(blueLineDistance - lineWidth/2.0)
	centerX := width / 2.0

	blueNet := newNet(mgl32.Vec3{centerX, 0, goalLineDistance}, mgl32.Ident3())
	redNet := newNet(mgl32.Vec3{centerX, 0, length - goalLineDistance}, mgl32.Mat3FromCols(
		mgl32.Vec3{-1, 0, 0},
		mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{0, 0, -1},
	))

	return &Rink{
		Planes:           planes,
		Corners:          corners,
		RedNet:           redNet,
		BlueNet:          blueNet,
		CenterLine:       RinkLine{Z: length / 2.0, Width: lineWidth},
		RedZoneBlueLine:  RinkLine{Z: length - blueLineMid, Width: lineWidth},
		BlueZoneBlueLine: RinkLine{Z: blueLineMid, Width: lineWidth},
		Width:            width,
		Length:           length,
	}
}

// Net returns the net that the given team defends.
func (r *Rink) Net(team Team) *Net {
	if team == TeamRed {
		return &r.RedNet
	}
	return &r.BlueNet
}

// Line returns a named transverse line from the perspective of team: the
// defensive blueline guards its own zone, the offensive blueline the
// opponent's.
func (r *Rink) DefensiveLine(team Team) *RinkLine {
	if team == TeamRed {
		return &r.RedZoneBlueLine
	}
	return &r.BlueZoneBlueLine
}

// OffensiveLine returns the blueline in front of the opponent's zone.
func (r *Rink) OffensiveLine(team Team) *RinkLine {
	if team == TeamRed {
		return &r.BlueZoneBlueLine
	}
	return &r.RedZoneBlueLine
}

// SideForTeam maps a raw line side to "own side" semantics: the red team's
// own side of any line is the red side.
func SideForTeam(team Team, side SideOfLine) SideOfLine {
	if team == TeamBlue {
		switch side {
		case SideRed:
			return SideBlue
		case SideBlue:
			return SideRed
		}
	}
	return side
}

// PhysicsConfig holds the tunable constants of the movement simulation.
type PhysicsConfig struct {
	Gravity                 float32
	LimitJumpSpeed          bool
	PlayerAcceleration      float32
	PlayerDeceleration      float32
	MaxPlayerSpeed          float32
	PuckRinkFriction        float32
	PlayerTurning           float32
	PlayerShiftAcceleration float32
	MaxPlayerShiftSpeed     float32
	PlayerShiftTurning      float32
}

// DefaultPhysicsConfig returns the constants every public server runs with.
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Gravity:                 0.000680555,
		PlayerAcceleration:      0.000208333,
		PlayerDeceleration:      0.000555555,
		MaxPlayerSpeed:          0.05,
		PuckRinkFriction:        0.05,
		PlayerTurning:           0.00041666666,
		PlayerShiftAcceleration: 0.00027777,
		MaxPlayerShiftSpeed:     0.0333333,
		PlayerShiftTurning:      0.00038888888,
	}
}

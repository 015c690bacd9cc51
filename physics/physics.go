// Package physics runs one fixed 10 ms step of the rigid-body simulation for
// skaters, sticks and pucks, and reports the rink events the step produced.
package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
)

// EventKind tags a rink event produced by a simulation step.
type EventKind uint8

const (
	// EventPuckTouch fires when a stick moves a puck.
	EventPuckTouch EventKind = iota
	// EventPuckEnteredNet fires when the puck fully crosses the goal plane
	// inside the posts. Team is the team whose net it is, not the scorer.
	EventPuckEnteredNet
	// EventPuckPassedGoalLine fires when the puck crosses the extended goal
	// line outside the net.
	EventPuckPassedGoalLine
	// EventPuckTouchedNet fires on contact with a net post or surface.
	EventPuckTouchedNet
	EventPuckReachedDefensiveLine
	EventPuckPassedDefensiveLine
	EventPuckReachedCenterLine
	EventPuckPassedCenterLine
	EventPuckReachedOffensiveZone
	EventPuckEnteredOffensiveZone
)

// Event is one rink event. Puck is the object slot of the puck involved;
// Player is only set for EventPuckTouch.
type Event struct {
	Kind   EventKind
	Team   game.Team
	Puck   int
	Player game.PlayerId
}

// SkaterEntry pairs a simulated skater with its owner and current input.
type SkaterEntry struct {
	Id     game.PlayerId
	Skater *game.Skater
	Input  *game.PlayerInput
}

// PuckEntry pairs a simulated puck with its object slot.
type PuckEntry struct {
	Index int
	Puck  *game.Puck
}

type collision struct {
	playerPlayer bool
	i, ib        int
	j, jb        int
	overlap      float32
	normal       mgl32.Vec3
}

// Simulate advances the world by one tick. The phase order and all constants
// are part of the network contract: identical inputs must produce
// byte-identical snapshots.
func Simulate(players []SkaterEntry, pucks []PuckEntry, rink *game.Rink, cfg *game.PhysicsConfig) []Event {
	events := make([]Event, 0, 16)
	oldPuckPos := make([]mgl32.Vec3, len(pucks))
	for i, p := range pucks {
		oldPuckPos[i] = p.Puck.Body.Pos
	}

	collisions := make([]collision, 0, 32)
	for i, p := range players {
		updatePlayer(i, p.Skater, p.Input, cfg, rink, &collisions)
	}

	for i := 0; i < len(players); i++ {
		p1 := players[i].Skater
		for j := i + 1; j < len(players); j++ {
			p2 := players[j].Skater
			for ib := range p1.CollisionBalls {
				for jb := range p2.CollisionBalls {
					b1, b2 := &p1.CollisionBalls[ib], &p2.CollisionBalls[jb]
					posDiff := b1.Pos.Sub(b2.Pos)
					radiusSum := b1.Radius + b2.Radius
					if posDiff.Len() < radiusSum {
						collisions = append(collisions, collision{
							playerPlayer: true,
							i:            i, ib: ib,
							j: j, jb: jb,
							overlap: radiusSum - posDiff.Len(),
							normal:  posDiff.Normalize(),
						})
					}
				}
			}
			stickV := p1.StickPos.Sub(p2.StickPos)
			stickDistance := stickV.Len()
			if stickDistance < 0.25 {
				stickOverlap := 0.25 - stickDistance
				normal := stickV.Normalize()
				force := normal.Mul(0.125 * stickOverlap).Add(p2.StickVel.Sub(p1.StickVel).Mul(0.25))
				if force.Dot(normal) > 0.0 {
					force = LimitFriction(force, normal, 0.01)
					force = force.Mul(0.5)
					p1.StickVel = p1.StickVel.Add(force.Mul(0.5))
					p2.StickVel = p2.StickVel.Sub(force.Mul(0.5))
				}
			}
		}
	}

	for _, p := range pucks {
		p.Puck.Body.Vel[1] -= cfg.Gravity
	}

	updateSticksAndPucks(players, pucks, rink, &events, cfg)

	for i, p := range pucks {
		puck := p.Puck
		if puck.Body.Vel.Len() > 1.0/65536.0 {
			scale := puck.Body.Vel.Len() * puck.Body.Vel.Len() * 0.125 * 0.125
			puck.Body.Vel = puck.Body.Vel.Sub(puck.Body.Vel.Normalize().Mul(scale))
		}
		if puck.Body.AngularVel.Len() > 1.0/65536.0 {
			rotateMatrixAroundAxis(&puck.Body.Rot, puck.Body.AngularVel.Normalize(), puck.Body.AngularVel.Len())
		}
		puckDetection(puck, p.Index, oldPuckPos[i], rink, &events)
	}

	applyCollisions(players, collisions)
	return events
}

func updateSticksAndPucks(players []SkaterEntry, pucks []PuckEntry, rink *game.Rink, events *[]Event, cfg *game.PhysicsConfig) {
	for i := 0; i < 10; i++ {
		for _, p := range players {
			p.Skater.StickPos = p.Skater.StickPos.Add(p.Skater.StickVel.Mul(0.1))
		}
		for _, pe := range pucks {
			puck := pe.Puck
			puck.Body.Pos = puck.Body.Pos.Add(puck.Body.Vel.Mul(0.1))

			velBefore := puck.Body.Vel
			angVelBefore := puck.Body.AngularVel
			vertices := puck.Vertices()
			if i == 0 {
				doPuckRinkForces(puck, &vertices, rink, velBefore, angVelBefore, cfg.PuckRinkFriction)
			}
			for _, p := range players {
				oldStickVel := p.Skater.StickVel
				if puck.Body.Pos.Sub(p.Skater.StickPos).Len() < 1.0 {
					if doPuckStickForces(puck, p.Skater, &vertices, velBefore, angVelBefore, oldStickVel) {
						*events = append(*events, Event{Kind: EventPuckTouch, Puck: pe.Index, Player: p.Id})
					}
				}
			}
			redNetCollision := doPuckPostForces(puck, &rink.RedNet, velBefore, angVelBefore)
			blueNetCollision := doPuckPostForces(puck, &rink.BlueNet, velBefore, angVelBefore)
			redNetCollision = doPuckNetForces(puck, &rink.RedNet, velBefore, angVelBefore) || redNetCollision
			blueNetCollision = doPuckNetForces(puck, &rink.BlueNet, velBefore, angVelBefore) || blueNetCollision

			if redNetCollision {
				*events = append(*events, Event{Kind: EventPuckTouchedNet, Team: game.TeamRed, Puck: pe.Index})
			}
			if blueNetCollision {
				*events = append(*events, Event{Kind: EventPuckTouchedNet, Team: game.TeamBlue, Puck: pe.Index})
			}
		}
	}
}

func updatePlayer(i int, player *game.Skater, input *game.PlayerInput, cfg *game.PhysicsConfig, rink *game.Rink, collisions *[]collision) {
	velBefore := player.Body.Vel
	angVelBefore := player.Body.AngularVel

	player.Body.Pos = player.Body.Pos.Add(player.Body.Vel)
	player.Body.Vel[1] -= cfg.Gravity
	for bi := range player.CollisionBalls {
		ball := &player.CollisionBalls[bi]
		ball.Vel = ball.Vel.Mul(0.999)
		ball.Pos = ball.Pos.Add(ball.Vel)
		ball.Vel[1] -= cfg.Gravity
	}
	feetPos := player.Body.Pos.Sub(player.Body.Rot.Mul3x1(mgl32.Vec3{0, player.Height, 0}))
	if feetPos.Y() < 0.0 {
		fwbw := game.Clamp(input.Fwbw, -1, 1)
		if fwbw != 0.0 {
			var skateDirection mgl32.Vec3
			if fwbw > 0.0 {
				skateDirection = player.Body.Rot.Mul3x1(mgl32.Vec3{0, 0, -1})
			} else {
				skateDirection = player.Body.Rot.Mul3x1(mgl32.Vec3{0, 0, 1})
			}
			maxAcceleration := cfg.PlayerAcceleration
			if player.Body.Vel.Dot(skateDirection) < 0.0 {
				// Skating against the motion counts as braking.
				maxAcceleration = cfg.PlayerDeceleration
			}
			skateDirection[1] = 0.0
			skateDirection = skateDirection.Normalize()
			newAcceleration := skateDirection.Mul(cfg.MaxPlayerSpeed).Sub(player.Body.Vel)
			player.Body.Vel = player.Body.Vel.Add(game.LimitVectorLength(newAcceleration, maxAcceleration))
		}
		if input.Jump() && !player.JumpedLastFrame {
			diff := float32(0.025)
			if cfg.LimitJumpSpeed {
				diff = game.Clamp(0.025-player.Body.Vel[1], 0.0, 0.025)
			}
			if diff != 0.0 {
				player.Body.Vel[1] += diff
				for bi := range player.CollisionBalls {
					player.CollisionBalls[bi].Vel[1] += diff
				}
			}
		}
	}
	player.JumpedLastFrame = input.Jump()

	turn := game.Clamp(input.Turn, -1, 1)
	if input.Shift() {
		velocityDirection := player.Body.Rot.Mul3x1(mgl32.Vec3{1, 0, 0})
		velocityDirection[1] = 0.0
		velocityDirection = velocityDirection.Normalize()

		velocityAdjustment := velocityDirection.Mul(cfg.MaxPlayerShiftSpeed * turn).Sub(player.Body.Vel)
		player.Body.Vel = player.Body.Vel.Add(game.LimitVectorLength(velocityAdjustment, cfg.PlayerShiftAcceleration))
		turnChange := player.Body.Rot.Mul3x1(mgl32.Vec3{0, 1, 0}).Mul(-turn * cfg.PlayerShiftTurning)
		player.Body.AngularVel = player.Body.AngularVel.Add(turnChange)
	} else {
		turnChange := player.Body.Rot.Mul3x1(mgl32.Vec3{0, 1, 0}).Mul(turn * cfg.PlayerTurning)
		player.Body.AngularVel = player.Body.AngularVel.Add(turnChange)
	}

	if player.Body.AngularVel.Len() > 1.0/65536.0 {
		rotateMatrixAroundAxis(&player.Body.Rot, player.Body.AngularVel.Normalize(), player.Body.AngularVel.Len())
	}
	adjustHeadBodyRot(&player.HeadRot, game.Clamp(input.HeadRot, -7.0*math32.Pi/8.0, 7.0*math32.Pi/8.0))
	adjustHeadBodyRot(&player.BodyRot, game.Clamp(input.BodyRot, -math32.Pi/2.0, math32.Pi/2.0))

	for bi := range player.CollisionBalls {
		ball := &player.CollisionBalls[bi]
		newRot := player.Body.Rot
		if bi == 1 || bi == 2 || bi == 5 {
			rotAxis := newRot.Mul3x1(mgl32.Vec3{0, 1, 0})
			rotateMatrixAroundAxis(&newRot, rotAxis, player.HeadRot*0.5)
			rotAxis = newRot.Mul3x1(mgl32.Vec3{1, 0, 0})
			rotateMatrixAroundAxis(&newRot, rotAxis, player.BodyRot)
		}
		intendedPos := player.Body.Pos.Add(newRot.Mul3x1(ball.Offset))
		posDiff := intendedPos.Sub(ball.Pos)

		speed := speedOfPointIncludingRotation(intendedPos, player.Body.Pos, velBefore, angVelBefore)
		force := posDiff.Mul(0.125).Add(speed.Sub(ball.Vel).Mul(0.25))
		ball.Vel = ball.Vel.Add(force.Mul(0.9375))
		applyAccelerationToObject(&player.Body, force.Mul(0.9375-1.0), intendedPos)
	}

	for ib := range player.CollisionBalls {
		ball := &player.CollisionBalls[ib]
		if overlap, normal, ok := collisionBetweenSphereAndRink(ball.Pos, ball.Radius, rink); ok {
			*collisions = append(*collisions, collision{i: i, ib: ib, overlap: overlap, normal: normal})
		}
	}
	velBefore = player.Body.Vel
	angVelBefore = player.Body.AngularVel

	if input.Crouch() {
		player.Height = math32.Max(player.Height-0.015625, 0.25)
	} else {
		player.Height = math32.Min(player.Height+0.125, 0.75)
	}

	feetPos = player.Body.Pos.Sub(player.Body.Rot.Mul3x1(mgl32.Vec3{0, player.Height, 0}))
	touchesIce := false
	if feetPos.Y() < 0.0 {
		// Bounce the player up when the feet sink below the ice.
		unitY := mgl32.Vec3{0, 1, 0}
		temp2 := unitY.Mul(-feetPos.Y() * 0.125 * 0.125).Sub(player.Body.Vel).Mul(0.25)
		if temp2.Dot(unitY) > 0.0 {
			axis, rejectionLimit := mgl32.Vec3{0, 0, 1}, float32(1.2)
			if input.Shift() {
				axis, rejectionLimit = mgl32.Vec3{1, 0, 0}, 0.4
			}
			direction := player.Body.Rot.Mul3x1(axis)
			direction = mgl32.Vec3{direction.X(), 0, direction.Z()}.Normalize()

			acceleration := temp2.Sub(game.Projection(temp2, direction))
			acceleration = LimitFriction(acceleration, unitY, rejectionLimit)
			player.Body.Vel = player.Body.Vel.Add(acceleration)
			touchesIce = true
		}
	}
	if player.Body.Pos.Y() < 0.5 && player.Body.Vel.Len() < 0.025 {
		// Getting-up boost for fallen players.
		player.Body.Vel[1] += 0.00055555555
		touchesIce = true
	}
	if touchesIce {
		player.Body.AngularVel = player.Body.AngularVel.Mul(0.975)
		intendedUp := mgl32.Vec3{0, 1, 0}

		if !input.Shift() {
			axis := player.Body.Rot.Mul3x1(mgl32.Vec3{0, 0, 1})
			fractionOfMaxSpeed := player.Body.Vel.Dot(axis) / cfg.MaxPlayerSpeed
			rotateVectorAroundAxis(&intendedUp, axis, -0.225*turn*fractionOfMaxSpeed)
		}

		rotation1 := intendedUp.Cross(player.Body.Rot.Mul3x1(mgl32.Vec3{0, 1, 0}))
		if rotation1.Len() > 0.0 {
			rotation1Direction := rotation1.Normalize()
			angularChange := rotation1.Mul(0.008333333).
				Sub(game.Projection(player.Body.AngularVel, rotation1Direction).Mul(0.25))
			angularChange = game.LimitVectorLength(angularChange, 0.00034722223)
			player.Body.AngularVel = player.Body.AngularVel.Add(angularChange)
		}
	}
	updateStick(player, input, velBefore, angVelBefore, rink)
}

func updateStick(player *game.Skater, input *game.PlayerInput, velBefore, angVelBefore mgl32.Vec3, rink *game.Rink) {
	stickInput := mgl32.Vec2{
		game.Clamp(replaceNaN(input.Stick[0], 0), -math32.Pi/2.0, math32.Pi/2.0),
		game.Clamp(replaceNaN(input.Stick[1], 0), -5.0*math32.Pi/16.0, math32.Pi/8.0),
	}

	placementDiff := stickInput.Sub(player.StickPlacement)
	placementChange := placementDiff.Mul(0.0625).Sub(player.StickPlacementDelta.Mul(0.5))
	placementChange = game.LimitVectorLength2(placementChange, 0.008888889)

	player.StickPlacementDelta = player.StickPlacementDelta.Add(placementChange)
	player.StickPlacement = player.StickPlacement.Add(player.StickPlacementDelta)

	mul := float32(-1.0)
	if player.Hand == game.HandRight {
		mul = 1.0
	}

	// Derive the stick rotation from where the stick currently is relative to
	// the lower pivot.
	pivot1Pos := player.Body.Pos.Add(player.Body.Rot.Mul3x1(mgl32.Vec3{-0.375 * mul, -0.5, -0.125}))
	stickPosConverted := player.Body.Rot.Transpose().Mul3x1(player.StickPos.Sub(pivot1Pos))

	currentAzimuth := math32.Atan2(stickPosConverted[0], -stickPosConverted[2])
	currentInclination := -math32.Atan2(stickPosConverted[1],
		math32.Sqrt(stickPosConverted[0]*stickPosConverted[0]+stickPosConverted[2]*stickPosConverted[2]))

	newStickRotation := player.Body.Rot
	rotateMatrixSpherical(&newStickRotation, currentAzimuth, currentInclination)

	if player.StickPlacement[1] > 0.0 {
		axis := newStickRotation.Mul3x1(mgl32.Vec3{0, 1, 0})
		rotateMatrixAroundAxis(&newStickRotation, axis, player.StickPlacement[1]*mul*math32.Pi/2.0)
	}

	handleAxis := newStickRotation.Mul3x1(mgl32.Vec3{0, 0.75, 1}.Normalize())
	rotateMatrixAroundAxis(&newStickRotation, handleAxis,
		game.Clamp(-replaceNaN(input.StickAngle, 0), -1, 1)*math32.Pi/4.0)
	player.StickRot = newStickRotation

	// The intended stick position hangs from the upper pivot.
	stickRotation2 := player.Body.Rot
	rotateMatrixSpherical(&stickRotation2, player.StickPlacement[0], player.StickPlacement[1])
	temp := stickRotation2.Mul3x1(mgl32.Vec3{1, 0, 0})
	rotateMatrixAroundAxis(&stickRotation2, temp, math32.Pi/4.0)

	const stickLength = 1.75
	stickTopPosition := player.Body.Pos.Add(player.Body.Rot.Mul3x1(mgl32.Vec3{-0.375 * mul, 0.5, -0.125}))
	intendedStickPosition := stickTopPosition.Add(stickRotation2.Mul3x1(mgl32.Vec3{0, 0, -stickLength}))
	if intendedStickPosition[1] < 0.0 {
		intendedStickPosition[1] = 0.0
	}

	speedAtStickPos := speedOfPointIncludingRotation(intendedStickPosition, player.Body.Pos, velBefore, angVelBefore)
	stickForce := intendedStickPosition.Sub(player.StickPos).Mul(0.125).
		Add(speedAtStickPos.Sub(player.StickVel).Mul(0.5))

	player.StickVel = player.StickVel.Add(stickForce.Mul(0.996))
	applyAccelerationToObject(&player.Body, stickForce.Mul(-0.004), intendedStickPosition)

	if overlap, normal, ok := collisionBetweenSphereAndRink(player.StickPos, 0.09375, rink); ok {
		n := normal.Mul(overlap * 0.25).Sub(player.StickVel.Mul(0.5))
		if n.Dot(normal) > 0.0 {
			n = LimitFriction(n, normal, 0.1)
			player.StickVel = player.StickVel.Add(n)
		}
	}
}

func applyCollisions(players []SkaterEntry, collisions []collision) {
	for iter := 0; iter < 16; iter++ {
		originalBallVelocities := make([][6]mgl32.Vec3, len(players))
		for i, p := range players {
			for b := range p.Skater.CollisionBalls {
				originalBallVelocities[i][b] = p.Skater.CollisionBalls[b].Vel
			}
		}

		for _, c := range collisions {
			if !c.playerPlayer {
				originalVelocity := originalBallVelocities[c.i][c.ib]
				n := c.normal.Mul(c.overlap * 0.03125).Sub(originalVelocity.Mul(0.25))
				if n.Dot(c.normal) > 0.0 {
					n = LimitFriction(n, c.normal, 0.01)
					ball := &players[c.i].Skater.CollisionBalls[c.ib]
					ball.Vel = ball.Vel.Add(n)
				}
			} else {
				v1 := originalBallVelocities[c.i][c.ib]
				v2 := originalBallVelocities[c.j][c.jb]
				n := c.normal.Mul(c.overlap * 0.125).Add(v2.Sub(v1).Mul(0.25))
				if n.Dot(c.normal) > 0.0 {
					n = LimitFriction(n, c.normal, 0.01)
					mass1 := players[c.i].Skater.CollisionBalls[c.ib].Mass
					mass2 := players[c.j].Skater.CollisionBalls[c.jb].Mass
					massSum := mass1 + mass2

					b1 := &players[c.i].Skater.CollisionBalls[c.ib]
					b1.Vel = b1.Vel.Add(n.Mul(mass2 / massSum))
					b2 := &players[c.j].Skater.CollisionBalls[c.jb]
					b2.Vel = b2.Vel.Sub(n.Mul(mass1 / massSum))
				}
			}
		}
	}
}

func replaceNaN(v, d float32) float32 {
	if math32.IsNaN(v) {
		return d
	}
	return v
}

// LimitFriction caps the tangential component of v at d times its normal
// component, simulating Coulomb friction against the plane with the given
// unit normal.
func LimitFriction(v, normal mgl32.Vec3, d float32) mgl32.Vec3 {
	projectionLength := v.Dot(normal)
	projection := normal.Mul(projectionLength)
	rejection := v.Sub(projection)
	rejectionLength := rejection.Len()
	res := projection

	if rejectionLength > 1.0/65536.0 {
		rejectionNorm := rejection.Normalize()
		rejectionLength2 := math32.Min(rejectionLength, projection.Len()*d)
		res = res.Add(rejectionNorm.Mul(rejectionLength2))
	}
	return res
}

func rotateVectorAroundAxis(v *mgl32.Vec3, axis mgl32.Vec3, angle float32) {
	rot := game.AxisAngle(axis, -angle)
	*v = rot.Mul3x1(*v)
}

func rotateMatrixAroundAxis(m *mgl32.Mat3, axis mgl32.Vec3, angle float32) {
	rot := game.AxisAngle(axis, -angle)
	*m = rot.Mul3(*m)
}

func rotateMatrixSpherical(m *mgl32.Mat3, azimuth, inclination float32) {
	col1 := m.Mul3x1(mgl32.Vec3{0, 1, 0})
	rotateMatrixAroundAxis(m, col1, azimuth)
	col0 := m.Mul3x1(mgl32.Vec3{1, 0, 0})
	rotateMatrixAroundAxis(m, col0, inclination)
}

func adjustHeadBodyRot(rot *float32, inputRot float32) {
	diff := inputRot - *rot
	if diff <= 0.06666667 {
		if diff >= -0.06666667 {
			*rot = inputRot
		} else {
			*rot -= 0.06666667
		}
	} else {
		*rot += 0.06666667
	}
}

func applyAccelerationToObject(body *game.Body, change, point mgl32.Vec3) {
	diff1 := point.Sub(body.Pos)
	body.Vel = body.Vel.Add(change)
	cross := change.Cross(diff1)
	local := body.Rot.Transpose().Mul3x1(cross)
	scaled := mgl32.Vec3{
		local.X() * body.RotMul.X(),
		local.Y() * body.RotMul.Y(),
		local.Z() * body.RotMul.Z(),
	}
	body.AngularVel = body.AngularVel.Add(body.Rot.Mul3x1(scaled))
}

func speedOfPointIncludingRotation(p, pos, vel, angularVel mgl32.Vec3) mgl32.Vec3 {
	return vel.Add(p.Sub(pos).Cross(angularVel))
}

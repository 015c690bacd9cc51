package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
)

func collisionBetweenSphereAndRink(pos mgl32.Vec3, radius float32, rink *game.Rink) (float32, mgl32.Vec3, bool) {
	maxOverlap := float32(0.0)
	var collNormal mgl32.Vec3
	found := false

	for _, plane := range rink.Planes {
		overlap := plane.Point.Sub(pos).Dot(plane.Normal) + radius
		if overlap > maxOverlap {
			maxOverlap = overlap
			collNormal = plane.Normal
			found = true
		}
	}
	for _, corner := range rink.Corners {
		p2 := corner.Pos.Sub(pos)
		p2[1] = 0.0
		if p2.X()*corner.Dir.X() < 0.0 && p2.Z()*corner.Dir.Z() < 0.0 {
			overlap := p2.Len() + radius - corner.Radius
			if overlap > maxOverlap {
				maxOverlap = overlap
				collNormal = p2.Normalize()
				found = true
			}
		}
	}
	return maxOverlap, collNormal, found
}

func doPuckRinkForces(puck *game.Puck, vertices *[48]mgl32.Vec3, rink *game.Rink, velBefore, angVelBefore mgl32.Vec3, friction float32) {
	for _, vertex := range vertices {
		if overlap, normal, ok := collisionBetweenSphereAndRink(vertex, 0.0, rink); ok {
			vertexVelocity := speedOfPointIncludingRotation(vertex, puck.Body.Pos, velBefore, angVelBefore)
			force := normal.Mul(overlap * 0.5).Sub(vertexVelocity).Mul(0.125 * 0.125)
			if normal.Dot(force) > 0.0 {
				force = LimitFriction(force, normal, friction)
				applyAccelerationToObject(&puck.Body, force, vertex)
			}
		}
	}
}

func doPuckStickForces(puck *game.Puck, player *game.Skater, vertices *[48]mgl32.Vec3, puckVelBefore, puckAngVelBefore, stickVelBefore mgl32.Vec3) bool {
	surfaces := stickSurfaces(player)
	res := false
	for _, vertex := range vertices {
		if dot, normal, ok := collisionBetweenPuckVertexAndStick(puck.Body.Pos, vertex, &surfaces); ok {
			res = true
			vertexSpeed := speedOfPointIncludingRotation(vertex, puck.Body.Pos, puckVelBefore, puckAngVelBefore)
			force := normal.Mul(dot * 0.125 * 0.5).Add(stickVelBefore.Sub(vertexSpeed).Mul(0.125))
			if force.Dot(normal) > 0.0 {
				force = LimitFriction(force, normal, 0.5)
				player.StickVel = player.StickVel.Sub(force.Mul(0.25))
				force = force.Mul(0.75)
				applyAccelerationToObject(&puck.Body, force, vertex)
			}
		}
	}
	return res
}

func doPuckPostForces(puck *game.Puck, net *game.Net, velBefore, angVelBefore mgl32.Vec3) bool {
	res := false
	for _, post := range net.Posts {
		if overlap, normal, ok := collisionBetweenSphereAndPost(puck.Body.Pos, puck.Radius, post); ok {
			res = true
			p := puck.Body.Pos.Sub(normal.Mul(puck.Radius))
			vertexVelocity := speedOfPointIncludingRotation(p, puck.Body.Pos, velBefore, angVelBefore)
			force := normal.Mul(overlap * 0.125).Sub(vertexVelocity.Mul(0.25))
			if normal.Dot(force) > 0.0 {
				force = LimitFriction(force, normal, 0.2)
				applyAccelerationToObject(&puck.Body, force, p)
			}
		}
	}
	return res
}

func doPuckNetForces(puck *game.Puck, net *game.Net, velBefore, angVelBefore mgl32.Vec3) bool {
	overlapPos, overlap, normal, ok := collisionBetweenSphereAndNet(puck.Body.Pos, puck.Radius, net)
	if !ok {
		return false
	}
	vertexVelocity := speedOfPointIncludingRotation(overlapPos, puck.Body.Pos, velBefore, angVelBefore)
	force := normal.Mul(0.5 * overlap).Sub(vertexVelocity.Mul(0.5))

	if normal.Dot(force) > 0.0 {
		force = LimitFriction(force, normal, 0.5)
		applyAccelerationToObject(&puck.Body, force, overlapPos)
		puck.Body.Vel = puck.Body.Vel.Mul(0.9875)
		puck.Body.AngularVel = puck.Body.AngularVel.Mul(0.95)
	}
	return true
}

func stickSurfaces(player *game.Skater) [6][4]mgl32.Vec3 {
	stickSize := mgl32.Vec3{0.0625, 0.25, 0.5}
	corner := func(x, y, z float32) mgl32.Vec3 {
		local := mgl32.Vec3{x * stickSize.X(), y * stickSize.Y(), z * stickSize.Z()}
		return player.StickPos.Add(player.StickRot.Mul3x1(local))
	}
	nnn := corner(-0.5, -0.5, -0.5)
	nnp := corner(-0.5, -0.5, 0.5)
	npn := corner(-0.5, 0.5, -0.5)
	npp := corner(-0.5, 0.5, 0.5)
	pnn := corner(0.5, -0.5, -0.5)
	pnp := corner(0.5, -0.5, 0.5)
	ppn := corner(0.5, 0.5, -0.5)
	ppp := corner(0.5, 0.5, 0.5)

	return [6][4]mgl32.Vec3{
		{nnp, pnp, pnn, nnn},
		{npp, ppp, pnp, nnp},
		{npn, npp, nnp, nnn},
		{ppn, npn, nnn, pnn},
		{ppp, ppn, pnn, pnp},
		{npn, ppn, ppp, npp},
	}
}

func insideSurface(pos mgl32.Vec3, surface *[4]mgl32.Vec3, normal mgl32.Vec3) bool {
	p1, p2, p3, p4 := surface[0], surface[1], surface[2], surface[3]
	return pos.Sub(p1).Cross(p2.Sub(p1)).Dot(normal) >= 0.0 &&
		pos.Sub(p2).Cross(p3.Sub(p2)).Dot(normal) >= 0.0 &&
		pos.Sub(p3).Cross(p4.Sub(p3)).Dot(normal) >= 0.0 &&
		pos.Sub(p4).Cross(p1.Sub(p4)).Dot(normal) >= 0.0
}

func collisionBetweenSphereAndNet(pos mgl32.Vec3, radius float32, net *game.Net) (mgl32.Vec3, float32, mgl32.Vec3, bool) {
	maxOverlap := float32(0.0)
	var resPos, resNormal mgl32.Vec3
	var resOverlap float32
	found := false

	for si := range net.Surfaces {
		surface := &net.Surfaces[si]
		normal := surface[3].Sub(surface[0]).Cross(surface[1].Sub(surface[0])).Normalize()

		dot := surface[0].Sub(pos).Dot(normal)
		overlap := dot + radius
		overlap2 := -dot + radius

		if overlap > 0.0 && overlap < radius {
			overlapPos := pos.Add(normal.Mul(radius - overlap))
			if insideSurface(overlapPos, surface, normal) && overlap > maxOverlap {
				maxOverlap = overlap
				resPos, resOverlap, resNormal = overlapPos, overlap, normal
				found = true
			}
		} else if overlap2 > 0.0 && overlap2 < radius {
			// The upstream engine reuses overlap here instead of overlap2 when
			// placing the contact point. Kept for simulation parity.
			overlapPos := pos.Add(normal.Mul(radius - overlap))
			if insideSurface(overlapPos, surface, normal) && overlap2 > maxOverlap {
				maxOverlap = overlap2
				resPos, resOverlap, resNormal = overlapPos, overlap2, normal.Mul(-1)
				found = true
			}
		}
	}
	return resPos, resOverlap, resNormal, found
}

func collisionBetweenSphereAndPost(pos mgl32.Vec3, radius float32, post game.NetPost) (float32, mgl32.Vec3, bool) {
	a := radius + post.Radius
	directionVector := post.End.Sub(post.Start)

	diff := pos.Sub(post.Start)
	t0 := game.Clamp(diff.Dot(directionVector)/directionVector.Dot(directionVector), 0.0, 1.0)
	projection := directionVector.Mul(t0)
	rejection := diff.Sub(projection)

	overlap := a - rejection.Len()
	if overlap > 0.0 {
		return overlap, rejection.Normalize(), true
	}
	return 0, mgl32.Vec3{}, false
}

func collisionBetweenPuckAndSurface(puckPos, puckPos2 mgl32.Vec3, surface *[4]mgl32.Vec3) (float32, mgl32.Vec3, float32, mgl32.Vec3, bool) {
	normal := surface[3].Sub(surface[0]).Cross(surface[1].Sub(surface[0])).Normalize()
	p1 := surface[0]
	puckPos2Projection := p1.Sub(puckPos2).Dot(normal)
	if puckPos2Projection >= 0.0 {
		puckPosProjection := p1.Sub(puckPos).Dot(normal)
		if puckPosProjection <= 0.0 {
			diff := puckPos2.Sub(puckPos)
			diffProjection := diff.Dot(normal)
			if diffProjection != 0.0 {
				intersection := puckPosProjection / diffProjection
				intersectionPos := puckPos.Add(diff.Mul(intersection))
				overlap := intersectionPos.Sub(puckPos2).Dot(normal)
				if insideSurface(intersectionPos, surface, normal) {
					return intersection, intersectionPos, overlap, normal, true
				}
			}
		}
	}
	return 0, mgl32.Vec3{}, 0, mgl32.Vec3{}, false
}

func collisionBetweenPuckVertexAndStick(puckPos, puckVertex mgl32.Vec3, surfaces *[6][4]mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	minIntersection := float32(1.0)
	var resOverlap float32
	var resNormal mgl32.Vec3
	found := false
	for si := range surfaces {
		if intersection, _, overlap, normal, ok := collisionBetweenPuckAndSurface(puckPos, puckVertex, &surfaces[si]); ok {
			if intersection < minIntersection {
				resOverlap, resNormal = overlap, normal
				minIntersection = intersection
				found = true
			}
		}
	}
	return resOverlap, resNormal, found
}

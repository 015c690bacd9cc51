package gamemode

import (
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/server"
)

// allowedPositions are the faceoff positions players may claim with /sp, in
// assignment priority order.
var allowedPositions = []string{
	"C", "LW", "RW", "LD", "RD", "G", "LM", "RM", "LLM", "RRM", "LLD", "RRD",
	"CM", "CD", "LW2", "RW2", "LLW", "RRW",
}

type faceoffSpotKind uint8

const (
	spotCenter faceoffSpotKind = iota
	spotDefensiveZone
	spotOffside
)

// faceoffSpot names where the next faceoff takes place. For zone and neutral
// spots, team is the defending team and side picks the left or right dot.
type faceoffSpot struct {
	kind faceoffSpotKind
	team game.Team
	side rinkSide
}

func centerSpot() faceoffSpot {
	return faceoffSpot{kind: spotCenter}
}

func defensiveZoneSpot(team game.Team, side rinkSide) faceoffSpot {
	return faceoffSpot{kind: spotDefensiveZone, team: team, side: side}
}

func offsideSpot(team game.Team, side rinkSide) faceoffSpot {
	return faceoffSpot{kind: spotOffside, team: team, side: side}
}

// spawn is a position and facing on the ice.
type spawn struct {
	pos mgl32.Vec3
	rot mgl32.Mat3
}

// layout is a resolved faceoff spot: the puck drop point and a spawn per
// position name for both teams.
type layout struct {
	center mgl32.Vec3
	red    map[string]spawn
	blue   map[string]spawn
}

// faceoffLayout resolves a named faceoff spot against the rink geometry. The
// dot placement follows the IIHF rulebook: zone spots sit 10 m from the end
// boards and 7 m off center, neutral spots 1.5 m from the blue lines.
func faceoffLayout(rink *game.Rink, spot faceoffSpot, spawnPointOffset, spawnPlayerAltitude float32) layout {
	length, width := rink.Length, rink.Width

	centerX := width / 2.0
	leftFaceoffX := centerX - 7.0
	rightFaceoffX := centerX + 7.0

	goalLineDistance := float32(4.0)
	zoneFaceoffZ := goalLineDistance + 6.0
	neutralFaceoffZ := rink.BlueZoneBlueLine.Z + 1.5

	var center mgl32.Vec3
	switch spot.kind {
	case spotCenter:
		center = mgl32.Vec3{centerX, 0, length / 2.0}
	case spotDefensiveZone:
		z := zoneFaceoffZ
		if spot.team == game.TeamRed {
			z = length - zoneFaceoffZ
		}
		center = mgl32.Vec3{faceoffX(spot.side, leftFaceoffX, rightFaceoffX), 0, z}
	case spotOffside:
		z := neutralFaceoffZ
		if spot.team == game.TeamRed {
			z = length - neutralFaceoffZ
		}
		center = mgl32.Vec3{faceoffX(spot.side, leftFaceoffX, rightFaceoffX), 0, z}
	}

	redDefensiveZone := center.Z() > length-11.0
	blueDefensiveZone := center.Z() < 11.0
	redLeft := center.X() < 9.0
	redRight := center.X() > width-9.0

	redRot := mgl32.Ident3()
	blueRot := mgl32.Rotate3DY(math32.Pi)
	redGoalie := mgl32.Vec3{centerX, spawnPlayerAltitude, length - 5.0}
	blueGoalie := mgl32.Vec3{centerX, spawnPlayerAltitude, 5.0}

	return layout{
		center: center,
		red: positionSpawns(center, redRot, redGoalie, redDefensiveZone, redLeft, redRight,
			spawnPointOffset, spawnPlayerAltitude),
		blue: positionSpawns(center, blueRot, blueGoalie, blueDefensiveZone, redRight, redLeft,
			spawnPointOffset, spawnPlayerAltitude),
	}
}

func faceoffX(side rinkSide, left, right float32) float32 {
	if side == higherHalfZ {
		return right
	}
	return left
}

func positionSpawns(center mgl32.Vec3, rot mgl32.Mat3, goalie mgl32.Vec3, defensiveZone, closeToLeft, closeToRight bool, spawnPointOffset, alt float32) map[string]spawn {
	wingerZ := float32(4.0)
	mZ := float32(7.25)
	dZ := float32(10.0)
	if defensiveZone {
		dZ = 8.25
	}
	farLeftWingerX, farLeftWingerZ := float32(-10.0), wingerZ
	if closeToLeft {
		farLeftWingerX, farLeftWingerZ = -6.5, 3.0
	}
	farRightWingerX, farRightWingerZ := float32(10.0), wingerZ
	if closeToRight {
		farRightWingerX, farRightWingerZ = 6.5, 3.0
	}
	sideM := float32(5.0)
	if closeToLeft && defensiveZone {
		sideM = 3.0
	}
	sideMRight := float32(5.0)
	if closeToRight && defensiveZone {
		sideMRight = 3.0
	}

	offsets := []struct {
		name   string
		offset mgl32.Vec3
	}{
		{"C", mgl32.Vec3{0, alt, spawnPointOffset}},
		{"LM", mgl32.Vec3{-2.0, alt, mZ}},
		{"RM", mgl32.Vec3{2.0, alt, mZ}},
		{"LW", mgl32.Vec3{-5.0, alt, wingerZ}},
		{"RW", mgl32.Vec3{5.0, alt, wingerZ}},
		{"LD", mgl32.Vec3{-2.0, alt, dZ}},
		{"RD", mgl32.Vec3{2.0, alt, dZ}},
		{"LLM", mgl32.Vec3{-sideM, alt, mZ}},
		{"RRM", mgl32.Vec3{sideMRight, alt, mZ}},
		{"LLD", mgl32.Vec3{-sideM, alt, dZ}},
		{"RRD", mgl32.Vec3{sideMRight, alt, dZ}},
		{"CM", mgl32.Vec3{0, alt, mZ}},
		{"CD", mgl32.Vec3{0, alt, dZ}},
		{"LW2", mgl32.Vec3{-6.0, alt, wingerZ}},
		{"RW2", mgl32.Vec3{6.0, alt, wingerZ}},
		{"LLW", mgl32.Vec3{farLeftWingerX, alt, farLeftWingerZ}},
		{"RRW", mgl32.Vec3{farRightWingerX, alt, farRightWingerZ}},
	}

	spawns := make(map[string]spawn, len(offsets)+1)
	for _, o := range offsets {
		spawns[o.name] = spawn{pos: center.Add(rot.Mul3x1(o.offset)), rot: rot}
	}
	spawns["G"] = spawn{pos: goalie, rot: rot}
	return spawns
}

// assignment is a resolved faceoff position for one player.
type assignment struct {
	team     game.Team
	position string
}

type playerPreference struct {
	id game.PlayerId
	// position is empty when the player has not claimed one.
	position string
}

// faceoffAssignments gives every player on the ice a faceoff position,
// honoring /sp preferences where possible.
func (m *Match) faceoffAssignments(s *server.Server) map[game.PlayerId]assignment {
	var red, blue []playerPreference
	s.Players(func(id game.PlayerId, p *server.Player) bool {
		if !p.HasSkater() {
			return true
		}
		preferred, _ := m.preferredPositions.Get(id)
		if p.Team == game.TeamRed {
			red = append(red, playerPreference{id, preferred})
		} else {
			blue = append(blue, playerPreference{id, preferred})
		}
		return true
	})

	res := make(map[game.PlayerId]assignment, len(red)+len(blue))
	setupPositions(res, red, game.TeamRed)
	setupPositions(res, blue, game.TeamBlue)
	return res
}

// setupPositions hands out positions to one team. Preferences win, someone
// always ends up at C, and goalies are never pulled to center against their
// will.
func setupPositions(positions map[game.PlayerId]assignment, players []playerPreference, team game.Team) {
	available := make([]string, len(allowedPositions))
	copy(available, allowedPositions)

	take := func(pos string) bool {
		for i, a := range available {
			if a == pos {
				available = append(available[:i], available[i+1:]...)
				return true
			}
		}
		return false
	}

	for _, p := range players {
		if p.position != "" && take(p.position) {
			positions[p.id] = assignment{team, p.position}
		}
	}

	for _, p := range players {
		if _, ok := positions[p.id]; ok {
			continue
		}
		switch {
		case take("C"):
			positions[p.id] = assignment{team, "C"}
		case len(available) > 0:
			pos := available[0]
			available = available[1:]
			positions[p.id] = assignment{team, pos}
		case p.position != "":
			positions[p.id] = assignment{team, p.position}
		default:
			positions[p.id] = assignment{team, "C"}
		}
	}

	// If nobody took C, reassign the first non-goalie to it.
	if containsString(available, "C") {
		var change *game.PlayerId
		for i := range players {
			id := players[i].id
			if change == nil {
				change = &players[i].id
			}
			if a, ok := positions[id]; ok && a.position != "G" {
				change = &players[i].id
				break
			}
		}
		if change != nil {
			take("C")
			positions[*change] = assignment{team, "C"}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// normalizePosition maps a chat argument to a known faceoff position.
func normalizePosition(arg string) (string, bool) {
	upper := strings.ToUpper(arg)
	for _, p := range allowedPositions {
		if p == upper {
			return p, true
		}
	}
	return "", false
}

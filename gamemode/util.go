// Package gamemode implements the rule engines that run on top of the server
// core: regular matches, shootouts, the russian attempt game and a permanent
// warmup mode.
package gamemode

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/server"
)

// SpawnPoint selects where joining players appear on the ice.
type SpawnPoint uint8

const (
	// SpawnCenter puts joiners a few metres from the center faceoff spot.
	SpawnCenter SpawnPoint = iota
	// SpawnBench puts joiners at the boards near the center line.
	SpawnBench
)

// ParseSpawnPoint maps a configuration string to a spawn point.
func ParseSpawnPoint(s string) (SpawnPoint, bool) {
	switch s {
	case "center":
		return SpawnCenter, true
	case "bench":
		return SpawnBench, true
	}
	return SpawnCenter, false
}

// Spawnpoint returns the position and facing for a player joining the given
// team.
func Spawnpoint(rink *game.Rink, team game.Team, spawnPoint SpawnPoint) (mgl32.Vec3, mgl32.Mat3) {
	midZ := rink.Length / 2.0
	if spawnPoint == SpawnBench {
		z := midZ + 4.0
		if team == game.TeamBlue {
			z = midZ - 4.0
		}
		return mgl32.Vec3{0.5, 2.0, z}, mgl32.Rotate3DY(3.0 * math32.Pi / 2.0)
	}
	z, yaw := midZ+3.0, float32(0.0)
	if team == game.TeamBlue {
		z, yaw = midZ-3.0, math32.Pi
	}
	return mgl32.Vec3{rink.Width / 2.0, 2.0, z}, mgl32.Rotate3DY(yaw)
}

// teamSwitchDelay is how many ticks a player has to wait after leaving the
// ice before they can join a team again.
const teamSwitchDelay = 500

// AddPlayers processes the join, spectate and team switch inputs for one
// tick. switchTimer tracks the per-player rejoin delay, showExtra the players
// who asked for team change chat messages. coords places the i:th joiner of a
// team; onSpectate and onJoin may be nil. The returned counts are the players
// on the ice per team after the joins.
func AddPlayers(
	s *server.Server,
	teamMax int,
	switchTimer map[game.PlayerId]uint32,
	showExtra map[game.PlayerId]struct{},
	coords func(team game.Team, i int) (mgl32.Vec3, mgl32.Mat3),
	onSpectate func(id game.PlayerId),
	onJoin func(id game.PlayerId, team game.Team),
) (int, int) {
	redCount, blueCount := 0, 0
	type candidate struct {
		id   game.PlayerId
		name string
	}
	var spectating, joiningRed, joiningBlue []candidate

	s.Players(func(id game.PlayerId, p *server.Player) bool {
		if t, ok := switchTimer[id]; ok && t > 0 {
			switchTimer[id] = t - 1
		}
		if p.HasSkater() {
			switch {
			case p.Input.Spectate():
				switchTimer[id] = teamSwitchDelay
				spectating = append(spectating, candidate{id, p.Name})
			case p.Team == game.TeamRed:
				redCount++
			default:
				blueCount++
			}
		} else if (p.Input.JoinRed() || p.Input.JoinBlue()) && switchTimer[id] == 0 {
			if p.Input.JoinRed() {
				joiningRed = append(joiningRed, candidate{id, p.Name})
			} else {
				joiningBlue = append(joiningBlue, candidate{id, p.Name})
			}
		}
		return true
	})

	for _, c := range spectating {
		s.Log().WithFields(logrus.Fields{
			"name":  c.name,
			"index": c.id.Index,
		}).Info("Player spectating")
		s.MoveToSpectator(c.id)
		if onSpectate != nil {
			onSpectate(c.id)
		}
		for watcher := range showExtra {
			s.AddDirectedServerChatMessage(fmt.Sprintf("%s is spectating", c.name), watcher)
		}
	}

	join := func(joining []candidate, team game.Team, count *int) {
		for i, c := range joining {
			if *count >= teamMax {
				return
			}
			pos, rot := coords(team, i)
			if !s.SpawnSkater(c.id, team, pos, rot, false) {
				return
			}
			s.Log().WithFields(logrus.Fields{
				"name":  c.name,
				"index": c.id.Index,
				"team":  team,
			}).Info("Player joined team")
			*count++
			if onJoin != nil {
				onJoin(c.id, team)
			}
			for watcher := range showExtra {
				s.AddDirectedServerChatMessage(fmt.Sprintf("%s is playing for %s", c.name, team), watcher)
			}
		}
	}
	join(joiningRed, game.TeamRed, &redCount)
	join(joiningBlue, game.TeamBlue, &blueCount)

	return redCount, blueCount
}

// countTeamMembers returns how many skaters each team currently has on the
// ice.
func countTeamMembers(s *server.Server) (red, blue int) {
	s.Players(func(_ game.PlayerId, player *server.Player) bool {
		if player.HasSkater() {
			if player.Team == game.TeamRed {
				red++
			} else {
				blue++
			}
		}
		return true
	})
	return red, blue
}

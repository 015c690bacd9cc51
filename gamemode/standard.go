package gamemode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/server"
)

// StandardMatch is the regular team-versus-team game with periods, rule
// calls and faceoffs.
type StandardMatch struct {
	server.NopBehaviour

	m                 *Match
	spawnPoint        SpawnPoint
	teamSwitchTimer   map[game.PlayerId]uint32
	showExtraMessages map[game.PlayerId]struct{}
	teamMax           int
}

// NewStandardMatch creates a match behaviour with the given rule
// configuration and per-team player cap.
func NewStandardMatch(config MatchConfiguration, teamMax int, spawnPoint SpawnPoint) *StandardMatch {
	return &StandardMatch{
		m:                 NewMatch(config),
		spawnPoint:        spawnPoint,
		teamSwitchTimer:   make(map[game.PlayerId]uint32),
		showExtraMessages: make(map[game.PlayerId]struct{}),
		teamMax:           teamMax,
	}
}

func (b *StandardMatch) Init(s *server.Server) {
	s.SetHistoryLength(1000)
}

func (b *StandardMatch) BeforeTick(s *server.Server) {
	b.updatePlayers(s)
}

func (b *StandardMatch) updatePlayers(s *server.Server) {
	red, blue := AddPlayers(s, b.teamMax, b.teamSwitchTimer, b.showExtraMessages,
		func(team game.Team, i int) (mgl32.Vec3, mgl32.Mat3) {
			return Spawnpoint(s.Rink(), team, b.spawnPoint)
		},
		nil,
		func(id game.PlayerId, team game.Team) {
			b.m.ClearStartedGoalie(id)
		})

	// Cut the warmup short once both benches are manned.
	values := &s.Scoreboard
	if values.Period == 0 && values.Time > 2000 && red > 0 && blue > 0 {
		values.Time = 2000
	}
}

func (b *StandardMatch) AfterTick(s *server.Server, events []physics.Event) {
	b.m.AfterTick(s, events)
}

func (b *StandardMatch) forcePlayerOffIce(s *server.Server, adminId game.PlayerId, forceIndex game.PlayerIndex) {
	admin, ok := s.CheckAdmin(adminId)
	if !ok {
		return
	}
	forceName := admin.Name
	id, forced, ok := s.PlayerAtIndex(forceIndex)
	if !ok {
		return
	}
	name := forced.Name
	if s.MoveToSpectator(id) {
		s.AddServerChatMessage(fmt.Sprintf("%s forced off ice by %s", name, forceName))
		s.Log().WithFields(logrus.Fields{
			"name":  name,
			"index": id.Index,
			"admin": forceName,
		}).Info("Player forced off ice")
		b.teamSwitchTimer[id] = teamSwitchDelay
	}
}

func (b *StandardMatch) setTeamSize(s *server.Server, id game.PlayerId, arg string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	size, err := strconv.Atoi(arg)
	if err != nil || size < 1 || size > 15 {
		return
	}
	b.teamMax = size
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"size":  size,
	}).Info("Team size set")
	s.AddServerChatMessage(fmt.Sprintf("Team size set to %d by %s", size, admin.Name))
}

func (b *StandardMatch) HandleCommand(s *server.Server, cmd, arg string, player game.PlayerId) {
	switch cmd {
	case "set":
		subcmd, subarg, _ := strings.Cut(arg, " ")
		switch subcmd {
		case "redscore":
			if score, err := strconv.ParseUint(subarg, 10, 32); err == nil {
				b.m.SetScore(s, game.TeamRed, uint32(score), player)
			}
		case "bluescore":
			if score, err := strconv.ParseUint(subarg, 10, 32); err == nil {
				b.m.SetScore(s, game.TeamBlue, uint32(score), player)
			}
		case "period":
			if period, err := strconv.ParseUint(subarg, 10, 32); err == nil {
				b.m.SetPeriod(s, uint32(period), player)
			}
		case "periodnum":
			if periods, err := strconv.ParseUint(subarg, 10, 32); err == nil {
				b.m.SetPeriodCount(s, uint32(periods), player)
			}
		case "clock":
			if time, ok := parseClock(subarg); ok {
				b.m.SetClock(s, time, player)
			}
		case "icing":
			b.m.SetIcingRule(s, player, subarg)
		case "offside":
			b.m.SetOffsideRule(s, player, subarg)
		case "twolinepass":
			b.m.SetTwoLinePass(s, player, subarg)
		case "offsideline":
			b.m.SetOffsideLine(s, player, subarg)
		case "mercy":
			b.m.SetMercyRule(s, player, subarg)
		case "first":
			b.m.SetFirstToRule(s, player, subarg)
		case "teamsize":
			b.setTeamSize(s, player, subarg)
		case "goalreplay":
			b.m.SetGoalReplay(s, player, subarg)
		case "spawnoffset":
			if offset, err := strconv.ParseFloat(subarg, 32); err == nil {
				b.m.SetSpawnOffset(s, player, float32(offset))
			}
		case "spawnplayeraltitude":
			if altitude, err := strconv.ParseFloat(subarg, 32); err == nil {
				b.m.SetSpawnPlayerAltitude(s, player, float32(altitude))
			}
		case "spawnpuckaltitude":
			if altitude, err := strconv.ParseFloat(subarg, 32); err == nil {
				b.m.SetSpawnPuckAltitude(s, player, float32(altitude))
			}
		case "spawnplayerkeepstick":
			b.m.SetSpawnKeepStick(s, player, subarg)
		}
	case "faceoff":
		b.m.Faceoff(s, player)
	case "start", "startgame":
		b.m.StartGame(s, player)
	case "reset", "resetgame":
		b.m.ResetGame(s, player)
	case "pause", "pausegame":
		b.m.Pause(s, player)
	case "unpause", "unpausegame":
		b.m.Unpause(s, player)
	case "sp", "setposition":
		b.m.SetPreferredFaceoffPosition(s, player, arg)
	case "fs":
		if index, ok := game.ParsePlayerIndex(arg); ok {
			b.forcePlayerOffIce(s, player, index)
		}
	case "icing":
		b.m.SetIcingRule(s, player, arg)
	case "offside":
		b.m.SetOffsideRule(s, player, arg)
	case "rules":
		b.m.MsgRules(s, player)
	case "chatextend":
		switch arg {
		case "true", "on":
			b.showExtraMessages[player] = struct{}{}
			s.AddDirectedServerChatMessage("Team change messages activated", player)
		case "false", "off":
			delete(b.showExtraMessages, player)
			s.AddDirectedServerChatMessage("Team change messages de-activated", player)
		}
	}
}

// parseClock reads a "m:ss.c" or "m:ss" clock string into ticks. A single
// fraction digit counts as tenths.
func parseClock(arg string) (uint32, bool) {
	timePart, fracPart, hasFrac := strings.Cut(arg, ".")
	minPart, secPart, ok := strings.Cut(timePart, ":")
	if !ok {
		return 0, false
	}
	minutes, err := strconv.ParseUint(minPart, 10, 32)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseUint(secPart, 10, 32)
	if err != nil {
		return 0, false
	}
	var centis uint64
	if hasFrac {
		centis, err = strconv.ParseUint(fracPart, 10, 32)
		if err != nil {
			return 0, false
		}
		if len(fracPart) == 1 {
			centis *= 10
		}
	}
	return uint32(minutes*60*100 + seconds*100 + centis), true
}

func (b *StandardMatch) InitialGameValues() server.InitialGameValues {
	return b.m.InitialGameValues()
}

func (b *StandardMatch) GameStarted(s *server.Server) {
	b.m.GameStarted(s)
}

func (b *StandardMatch) BeforePlayerExit(s *server.Server, id game.PlayerId, _ server.ExitReason) {
	b.m.CleanupPlayer(id)
	delete(b.teamSwitchTimer, id)
	delete(b.showExtraMessages, id)
}

func (b *StandardMatch) ServerListTeamSize() uint32 {
	return uint32(b.teamMax)
}

func (b *StandardMatch) IncludeTickInRecording(s *server.Server) bool {
	return s.Scoreboard.Period > 0
}

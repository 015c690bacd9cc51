package gamemode

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/server"
)

type russianPhase int

const (
	russianWaiting russianPhase = iota
	russianGame
	russianGameOver
)

type russianStatus struct {
	phase russianPhase

	inZone     game.Team
	round      uint32
	goalScored bool

	overTimer uint32
}

// RussianPucks is an attack-versus-defence drill. The attacking team works
// the puck out of its own zone and the defenders are held behind their blue
// line until the puck crosses it.
type RussianPucks struct {
	server.NopBehaviour

	attempts        uint32
	status          russianStatus
	teamSwitchTimer map[game.PlayerId]uint32
	teamMax         int
}

// NewRussianPucks creates a Russian pucks behaviour with the given number
// of attempts per team and per-team player cap.
func NewRussianPucks(attempts uint32, teamMax int) *RussianPucks {
	return &RussianPucks{
		attempts:        attempts,
		teamSwitchTimer: make(map[game.PlayerId]uint32),
		teamMax:         teamMax,
	}
}

func (b *RussianPucks) BeforeTick(s *server.Server) {
	AddPlayers(s, b.teamMax, b.teamSwitchTimer, nil,
		func(team game.Team, i int) (mgl32.Vec3, mgl32.Mat3) {
			midZ := s.Rink().Length / 2.0
			z := midZ + 12.0
			if team == game.TeamBlue {
				z = midZ - 12.0
			}
			return mgl32.Vec3{0.5, 2.0, z}, mgl32.Rotate3DY(3.0 * math32.Pi / 2.0)
		},
		nil, nil)
}

func (b *RussianPucks) placePuckForTeam(s *server.Server, team game.Team) {
	s.RemoveAllPucks()

	z := float32(55.0)
	if team == game.TeamBlue {
		z = 6.0
	}
	s.SpawnPuck(mgl32.Vec3{s.Rink().Width / 2.0, 0.5, z}, mgl32.Ident3())

	b.fixStatus(s, team)
}

func attemptsMessage(remaining uint32, team game.Team) string {
	switch {
	case remaining >= 2:
		return fmt.Sprintf("%d attempts left for %s", remaining, team)
	case remaining == 1:
		return fmt.Sprintf("Last attempt for %s", team)
	default:
		return fmt.Sprintf("Tie-breaker round for %s", team)
	}
}

func (b *RussianPucks) fixStatus(s *server.Server, team game.Team) {
	switch b.status.phase {
	case russianWaiting:
		b.status = russianStatus{
			phase:  russianGame,
			inZone: team,
		}
		s.AddServerChatMessage(attemptsMessage(b.attempts, team))
	case russianGame:
		if b.status.inZone != team {
			s.Scoreboard.Time = 2000
			b.status.inZone = team
			if team == game.TeamRed {
				b.status.round++
			}
			s.AddServerChatMessage(attemptsMessage(saturatingSub(b.attempts, b.status.round), team))
		}
	}
}

func (b *RussianPucks) init(s *server.Server) {
	s.Scoreboard.Period = 1
	s.Scoreboard.Time = 2000

	s.RemoveAllPucks()

	s.AddServerChatMessage(fmt.Sprintf("Each team will get %d attempts", b.attempts))

	b.placePuckForTeam(s, game.TeamRed)

	var redPlayers, bluePlayers []game.PlayerId
	s.Players(func(id game.PlayerId, player *server.Player) bool {
		if player.HasSkater() {
			if player.Team == game.TeamRed {
				redPlayers = append(redPlayers, id)
			} else {
				bluePlayers = append(bluePlayers, id)
			}
		}
		return true
	})

	rot := mgl32.Rotate3DY(3.0 * math32.Pi / 2.0)
	length := s.Rink().Length
	for i, id := range redPlayers {
		z := length/2.0 + (12.0 + float32(i))
		s.SpawnSkater(id, game.TeamRed, mgl32.Vec3{0.5, 2.0, z}, rot, false)
	}
	for i, id := range bluePlayers {
		z := length/2.0 - (12.0 + float32(i))
		s.SpawnSkater(id, game.TeamBlue, mgl32.Vec3{0.5, 2.0, z}, rot, false)
	}
}

func (b *RussianPucks) checkEnding(values *game.ScoreboardValues) {
	if b.status.phase != russianGame {
		return
	}
	redTaken := b.status.round
	if b.status.inZone == game.TeamBlue {
		redTaken++
	}
	blueTaken := b.status.round
	attempts := b.attempts
	if redTaken > attempts {
		attempts = redTaken
	}
	remainingRed := attempts - redTaken
	remainingBlue := attempts - blueTaken

	gameOver := false
	switch {
	case values.RedScore > values.BlueScore:
		gameOver = remainingBlue < values.RedScore-values.BlueScore
	case values.BlueScore > values.RedScore:
		gameOver = remainingRed < values.BlueScore-values.RedScore
	}
	if gameOver {
		b.status = russianStatus{phase: russianGameOver, overTimer: 500}
		values.GameOver = true
	}
}

// containSkaters pushes skaters back behind their own blue line and counts
// the players on each team.
func (b *RussianPucks) containSkaters(s *server.Server) (red, blue int) {
	rink := s.Rink()
	s.Players(func(_ game.PlayerId, player *server.Player) bool {
		if !player.HasSkater() {
			return true
		}
		line := &rink.RedZoneBlueLine
		normal := mgl32.Vec3{0, 0, 1}
		if player.Team == game.TeamRed {
			red++
		} else {
			blue++
			line = &rink.BlueZoneBlueLine
			normal = mgl32.Vec3{0, 0, -1}
		}

		lineP := mgl32.Vec3{0, 0, line.Z}
		for i := range player.Skater.CollisionBalls {
			ball := &player.Skater.CollisionBalls[i]
			overlap := lineP.Sub(ball.Pos).Dot(normal) + ball.Radius
			if overlap > 0 {
				push := normal.Mul(overlap * 0.03125).Sub(ball.Vel.Mul(0.25))
				if push.Dot(normal) > 0 {
					push = physics.LimitFriction(push, normal, 0.01)
					ball.Vel = ball.Vel.Add(push)
				}
			}
		}
		return true
	})
	return red, blue
}

func (b *RussianPucks) AfterTick(s *server.Server, events []physics.Event) {
	red, blue := b.containSkaters(s)

	switch b.status.phase {
	case russianWaiting:
		values := &s.Scoreboard
		if red > 0 && blue > 0 {
			values.Time = saturatingSub(values.Time, 1)
			if values.Time == 0 {
				b.init(s)
			}
		} else {
			values.Time = 1000
		}
	case russianGameOver:
		b.status.overTimer = saturatingSub(b.status.overTimer, 1)
		if b.status.overTimer == 0 {
			s.NewGame(b.InitialGameValues())
		}
	case russianGame:
		if b.status.goalScored {
			values := &s.Scoreboard
			values.GoalMessageTimer = saturatingSub(values.GoalMessageTimer, 1)
			if values.GoalMessageTimer == 0 {
				values.Time = 2000
				b.placePuckForTeam(s, b.status.inZone)
				b.status.goalScored = false
			}
			return
		}
		for _, event := range events {
			switch event.Kind {
			case physics.EventPuckEnteredNet:
				team := event.Team.Other()
				values := &s.Scoreboard
				if team == game.TeamRed {
					values.RedScore++
				} else {
					values.BlueScore++
				}
				b.status.goalScored = true
				values.GoalMessageTimer = 300
				s.AddGoalMessage(team, -1, -1)
				b.checkEnding(values)
			case physics.EventPuckTouch:
				if player := s.Player(event.Player); player != nil && player.HasSkater() {
					b.fixStatus(s, player.Team)
				}
			case physics.EventPuckEnteredOffensiveZone:
				b.fixStatus(s, event.Team.Other())
			case physics.EventPuckPassedDefensiveLine, physics.EventPuckPassedGoalLine:
				b.checkEnding(&s.Scoreboard)
			}
		}
		s.Scoreboard.Time = saturatingSub(s.Scoreboard.Time, 1)
		if s.Scoreboard.Time == 0 {
			b.checkEnding(&s.Scoreboard)
			if b.status.phase == russianGame {
				b.placePuckForTeam(s, b.status.inZone.Other())
			}
		}
	}
}

func (b *RussianPucks) resetGame(s *server.Server, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
	}).Info("Game reset")
	name := admin.Name
	s.NewGame(b.InitialGameValues())
	s.AddServerChatMessage(fmt.Sprintf("Game reset by %s", name))
}

func (b *RussianPucks) forcePlayerOffIce(s *server.Server, adminId game.PlayerId, forceIndex game.PlayerIndex) {
	admin, ok := s.CheckAdmin(adminId)
	if !ok {
		return
	}
	id, forced, ok := s.PlayerAtIndex(forceIndex)
	if !ok {
		return
	}
	name := forced.Name
	if s.MoveToSpectator(id) {
		s.AddServerChatMessage(fmt.Sprintf("%s forced off ice by %s", name, admin.Name))
		s.Log().WithFields(logrus.Fields{
			"name":  name,
			"index": id.Index,
			"admin": admin.Name,
		}).Info("Player forced off ice")
		b.teamSwitchTimer[id] = teamSwitchDelay
	}
}

func (b *RussianPucks) HandleCommand(s *server.Server, cmd, arg string, player game.PlayerId) {
	switch cmd {
	case "reset", "resetgame":
		b.resetGame(s, player)
	case "fs":
		if index, ok := game.ParsePlayerIndex(arg); ok {
			b.forcePlayerOffIce(s, player, index)
		}
	}
}

func (b *RussianPucks) InitialGameValues() server.InitialGameValues {
	values := game.DefaultScoreboardValues()
	values.Time = 1000
	return server.InitialGameValues{
		Values:    values,
		PuckSlots: 1,
	}
}

func (b *RussianPucks) GameStarted(s *server.Server) {
	b.status = russianStatus{phase: russianWaiting}
}

func (b *RussianPucks) BeforePlayerExit(s *server.Server, id game.PlayerId, _ server.ExitReason) {
	delete(b.teamSwitchTimer, id)
}

func (b *RussianPucks) ServerListTeamSize() uint32 {
	return uint32(b.teamMax)
}

func (b *RussianPucks) IncludeTickInRecording(s *server.Server) bool {
	return b.status.phase != russianWaiting
}

package gamemode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/server"
)

type shootoutAttemptState int

const (
	// shootoutAttack means the attacker still controls the attempt.
	shootoutAttack shootoutAttemptState = iota
	// shootoutNoMoreAttack means the puck went backwards, hit the post or
	// touched a defender, but may still trickle in.
	shootoutNoMoreAttack
	// shootoutOver means the attempt has been decided.
	shootoutOver
)

type shootoutStatus struct {
	inGame bool

	state         shootoutAttemptState
	progress      float32
	finalProgress float32
	overTimer     uint32
	goalScored    bool

	round uint32
	team  game.Team
}

// Shootout alternates one-on-one attempts between the teams until one of
// them cannot catch up anymore.
type Shootout struct {
	server.NopBehaviour

	attempts        uint32
	status          shootoutStatus
	paused          bool
	teamSwitchTimer map[game.PlayerId]uint32
	teamMax         int
}

// NewShootout creates a shootout behaviour with the given number of
// attempts per team.
func NewShootout(attempts uint32) *Shootout {
	return &Shootout{
		attempts:        attempts,
		teamSwitchTimer: make(map[game.PlayerId]uint32),
		teamMax:         1,
	}
}

func (b *Shootout) startAttempt(s *server.Server, round uint32, team game.Team) {
	b.status = shootoutStatus{
		inGame: true,
		state:  shootoutAttack,
		round:  round,
		team:   team,
	}

	defendingTeam := team.Other()

	remaining := saturatingSub(b.attempts, round)
	switch {
	case remaining >= 2:
		s.AddServerChatMessage(fmt.Sprintf("%d attempts left for %s", remaining, team))
	case remaining == 1:
		s.AddServerChatMessage(fmt.Sprintf("Last attempt for %s", team))
	default:
		s.AddServerChatMessage(fmt.Sprintf("Tie-breaker round for %s", team))
	}

	values := &s.Scoreboard
	values.Time = 2000
	values.GoalMessageTimer = 0
	values.Period = 1
	s.RemoveAllPucks()

	rink := s.Rink()
	length := rink.Length
	width := rink.Width

	s.SpawnPuck(mgl32.Vec3{width / 2.0, 1.0, length / 2.0}, mgl32.Ident3())

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

	redRot := mgl32.Ident3()
	blueRot := mgl32.Rotate3DY(math32.Pi)

	redGoaliePos := mgl32.Vec3{width / 2.0, 1.5, length - 5.0}
	blueGoaliePos := mgl32.Vec3{width / 2.0, 1.5, 5.0}

	attacking, defending := redPlayers, bluePlayers
	attackingRot, defendingRot := redRot, blueRot
	goaliePos := blueGoaliePos
	if team == game.TeamBlue {
		attacking, defending = bluePlayers, redPlayers
		attackingRot, defendingRot = blueRot, redRot
		goaliePos = redGoaliePos
	}

	centerPos := mgl32.Vec3{width / 2.0, 1.5, length / 2.0}
	for i, id := range attacking {
		pos := centerPos.Add(attackingRot.Mul3x1(mgl32.Vec3{0, 0, 3}))
		if i > 0 {
			dist := float32(i/2 + 1)
			pos = pos.Add(attackingRot.Mul3x1(mgl32.Vec3{-1.5 * dist, 0, 0}))
		}
		s.SpawnSkater(id, team, pos, attackingRot, false)
	}
	for i, id := range defending {
		pos := goaliePos
		if i > 0 {
			dist := float32(i/2 + 1)
			pos = pos.Add(defendingRot.Mul3x1(mgl32.Vec3{-1.5 * dist, 0, 0}))
		}
		s.SpawnSkater(id, defendingTeam, pos, defendingRot, false)
	}
}

func (b *Shootout) startNextAttempt(s *server.Server) {
	nextTeam, nextRound := game.TeamRed, uint32(0)
	if b.status.inGame {
		nextTeam = b.status.team.Other()
		nextRound = b.status.round
		if b.status.team == game.TeamBlue {
			nextRound++
		}
	}
	b.startAttempt(s, nextRound, nextTeam)
}

func (b *Shootout) updateGameOver(s *server.Server) {
	if !b.status.inGame {
		return
	}
	var attemptOver uint32
	if b.status.state == shootoutOver {
		attemptOver = 1
	}
	redTaken := b.status.round + attemptOver
	blueTaken := b.status.round
	if b.status.team == game.TeamBlue {
		blueTaken += attemptOver
	}
	attempts := b.attempts
	if redTaken > attempts {
		attempts = redTaken
	}
	remainingRed := attempts - redTaken
	remainingBlue := attempts - blueTaken

	values := &s.Scoreboard
	switch {
	case values.RedScore > values.BlueScore:
		values.GameOver = remainingBlue < values.RedScore-values.BlueScore
	case values.BlueScore > values.RedScore:
		values.GameOver = remainingRed < values.BlueScore-values.RedScore
	default:
		values.GameOver = false
	}
}

func (b *Shootout) endAttempt(s *server.Server, goalScored bool) {
	if !b.status.inGame {
		return
	}
	if goalScored {
		if b.status.team == game.TeamRed {
			s.Scoreboard.RedScore++
		} else {
			s.Scoreboard.BlueScore++
		}
		s.AddGoalMessage(b.status.team, -1, -1)
	} else {
		s.AddServerChatMessage("Miss")
	}
	b.status.state = shootoutOver
	b.status.overTimer = 500
	b.status.goalScored = goalScored
	b.updateGameOver(s)
}

func (b *Shootout) BeforeTick(s *server.Server) {
	AddPlayers(s, b.teamMax, b.teamSwitchTimer, nil,
		func(team game.Team, i int) (mgl32.Vec3, mgl32.Mat3) {
			return Spawnpoint(s.Rink(), team, SpawnBench)
		},
		nil, nil)
}

func (b *Shootout) AfterTick(s *server.Server, events []physics.Event) {
	for _, event := range events {
		switch event.Kind {
		case physics.EventPuckEnteredNet:
			if b.status.inGame && b.status.state != shootoutOver {
				scoringTeam := event.Team.Other()
				b.endAttempt(s, scoringTeam == b.status.team)
			}
		case physics.EventPuckPassedGoalLine:
			if b.status.inGame && b.status.state != shootoutOver {
				b.endAttempt(s, false)
			}
		case physics.EventPuckTouch:
			player := s.Player(event.Player)
			if player == nil || !player.HasSkater() || !b.status.inGame {
				continue
			}
			if player.Team == b.status.team {
				if b.status.state == shootoutNoMoreAttack {
					b.endAttempt(s, false)
				}
			} else if b.status.state == shootoutAttack {
				b.status.state = shootoutNoMoreAttack
				b.status.finalProgress = b.status.progress
			}
		case physics.EventPuckTouchedNet:
			if b.status.inGame && event.Team.Other() == b.status.team && b.status.state == shootoutAttack {
				b.status.state = shootoutNoMoreAttack
				b.status.finalProgress = b.status.progress
			}
		}
	}

	if !b.status.inGame {
		red, blue := countTeamMembers(s)
		values := &s.Scoreboard
		if red > 0 && blue > 0 && !b.paused {
			values.Time = saturatingSub(values.Time, 1)
			if values.Time == 0 {
				b.startNextAttempt(s)
			}
		} else {
			values.Time = 1000
		}
		return
	}
	if b.paused {
		return
	}

	if b.status.state == shootoutOver {
		b.status.overTimer = saturatingSub(b.status.overTimer, 1)
		if b.status.goalScored {
			s.Scoreboard.GoalMessageTimer = b.status.overTimer
		} else {
			s.Scoreboard.GoalMessageTimer = 0
		}
		if b.status.overTimer == 0 {
			if s.Scoreboard.GameOver {
				s.NewGame(b.InitialGameValues())
			} else {
				b.startNextAttempt(s)
			}
		}
		return
	}

	values := &s.Scoreboard
	values.Time = saturatingSub(values.Time, 1)
	if values.Time == 0 {
		// Keeps the clock off the intermission display.
		values.Time = 1
		b.endAttempt(s, false)
		return
	}

	puck := s.Puck(0)
	if puck == nil {
		return
	}
	rink := s.Rink()
	center := mgl32.Vec3{rink.Width / 2.0, 0, rink.Length / 2.0}
	normal := mgl32.Vec3{0, 0, 1}
	if b.status.team == game.TeamRed {
		normal = mgl32.Vec3{0, 0, -1}
	}
	progress := puck.Body.Pos.Sub(center).Dot(normal)
	switch b.status.state {
	case shootoutAttack:
		if progress > b.status.progress {
			b.status.progress = progress
		} else if progress-b.status.progress < -0.5 {
			b.endAttempt(s, false)
		}
	case shootoutNoMoreAttack:
		if progress-b.status.finalProgress < -5.0 {
			b.endAttempt(s, false)
		}
	}
}

func (b *Shootout) resetGame(s *server.Server, id game.PlayerId) {
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

func (b *Shootout) forcePlayerOffIce(s *server.Server, adminId game.PlayerId, forceIndex game.PlayerIndex) {
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

func (b *Shootout) setScore(s *server.Server, team game.Team, score uint32, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	if team == game.TeamRed {
		s.Scoreboard.RedScore = score
	} else {
		s.Scoreboard.BlueScore = score
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"team":  team,
		"score": score,
	}).Info("Score changed")
	s.AddServerChatMessage(fmt.Sprintf("%s score changed by %s", team, admin.Name))
	b.updateGameOver(s)
}

func (b *Shootout) setRound(s *server.Server, team game.Team, round uint32, id game.PlayerId) {
	if round == 0 {
		return
	}
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	if b.status.inGame {
		b.status.round = round - 1
		b.status.team = team
		s.Log().WithFields(logrus.Fields{
			"name":  admin.Name,
			"index": id.Index,
			"round": round,
			"team":  team,
		}).Info("Round changed")
		s.AddServerChatMessage(fmt.Sprintf("Round changed to %d for %s by %s", round, team, admin.Name))
	}
	b.updateGameOver(s)
}

func (b *Shootout) redoRound(s *server.Server, team game.Team, round uint32, id game.PlayerId) {
	if round == 0 {
		return
	}
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	if b.status.inGame {
		b.status.round = round - 1
		b.status.team = team
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"round": round,
		"team":  team,
	}).Info("Round changed")
	s.AddServerChatMessage(fmt.Sprintf("Round changed to %d for %s by %s", round, team, admin.Name))
	b.updateGameOver(s)
	b.paused = false
	if !s.Scoreboard.GameOver {
		b.startAttempt(s, round-1, team)
	}
}

func (b *Shootout) pause(s *server.Server, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	b.paused = true
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
	}).Info("Game paused")
	s.AddServerChatMessage(fmt.Sprintf("Game paused by %s", admin.Name))
}

func (b *Shootout) unpause(s *server.Server, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	b.paused = false
	if b.status.inGame && b.status.state == shootoutOver && b.status.overTimer < 200 {
		b.status.overTimer = 200
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
	}).Info("Game resumed")
	s.AddServerChatMessage(fmt.Sprintf("Game resumed by %s", admin.Name))
}

func (b *Shootout) HandleCommand(s *server.Server, cmd, arg string, player game.PlayerId) {
	switch cmd {
	case "reset", "resetgame":
		b.resetGame(s, player)
	case "fs":
		if index, ok := game.ParsePlayerIndex(arg); ok {
			b.forcePlayerOffIce(s, player, index)
		}
	case "set":
		args := strings.Split(arg, " ")
		if len(args) < 2 {
			return
		}
		switch args[0] {
		case "redscore":
			if score, err := strconv.ParseUint(args[1], 10, 32); err == nil {
				b.setScore(s, game.TeamRed, uint32(score), player)
			}
		case "bluescore":
			if score, err := strconv.ParseUint(args[1], 10, 32); err == nil {
				b.setScore(s, game.TeamBlue, uint32(score), player)
			}
		case "round":
			if len(args) < 3 {
				return
			}
			team, ok := parseTeamLetter(args[1])
			if !ok {
				return
			}
			if round, err := strconv.ParseUint(args[2], 10, 32); err == nil {
				b.setRound(s, team, uint32(round), player)
			}
		}
	case "redo":
		args := strings.Split(arg, " ")
		if len(args) < 2 {
			return
		}
		team, ok := parseTeamLetter(args[0])
		if !ok {
			return
		}
		if round, err := strconv.ParseUint(args[1], 10, 32); err == nil {
			b.redoRound(s, team, uint32(round), player)
		}
	case "pause", "pausegame":
		b.pause(s, player)
	case "unpause", "unpausegame":
		b.unpause(s, player)
	}
}

func parseTeamLetter(s string) (game.Team, bool) {
	switch s {
	case "r", "R":
		return game.TeamRed, true
	case "b", "B":
		return game.TeamBlue, true
	}
	return game.TeamRed, false
}

func (b *Shootout) InitialGameValues() server.InitialGameValues {
	values := game.DefaultScoreboardValues()
	values.Time = 1000
	return server.InitialGameValues{
		Values:    values,
		PuckSlots: 1,
	}
}

func (b *Shootout) GameStarted(s *server.Server) {
	b.status = shootoutStatus{}
}

func (b *Shootout) BeforePlayerExit(s *server.Server, id game.PlayerId, _ server.ExitReason) {
	delete(b.teamSwitchTimer, id)
}

func (b *Shootout) ServerListTeamSize() uint32 {
	return uint32(b.teamMax)
}

func (b *Shootout) IncludeTickInRecording(s *server.Server) bool {
	return b.status.inGame
}

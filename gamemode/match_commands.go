package gamemode

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/server"
)

// ResetGame throws the current game away and starts a fresh warmup.
func (m *Match) ResetGame(s *server.Server, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
	}).Info("Game reset")
	name := admin.Name
	s.NewGame(m.InitialGameValues())
	s.AddServerChatMessage(fmt.Sprintf("Game reset by %s", name))
}

// StartGame skips the rest of the warmup.
func (m *Match) StartGame(s *server.Server, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	values := &s.Scoreboard
	if values.Period == 0 && values.Time > 1 {
		s.Log().WithFields(logrus.Fields{
			"name":  admin.Name,
			"index": id.Index,
		}).Info("Game started early")
		m.Paused = false
		values.Time = 1
		s.AddServerChatMessage(fmt.Sprintf("Game started by %s", admin.Name))
	}
}

// Pause freezes the clock and the rule engine.
func (m *Match) Pause(s *server.Server, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	m.Paused = true
	if m.pauseTimer > 0 && m.pauseTimer < m.Config.TimeBreak {
		// Top a nearly expired break back up so the faceoff does not fire
		// the moment the game is unpaused.
		m.pauseTimer = m.Config.TimeBreak
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
	}).Info("Game paused")
	s.AddServerChatMessage(fmt.Sprintf("Game paused by %s", admin.Name))
}

// Unpause resumes a paused game.
func (m *Match) Unpause(s *server.Server, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	m.Paused = false
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
	}).Info("Game resumed")
	s.AddServerChatMessage(fmt.Sprintf("Game resumed by %s", admin.Name))
}

// SetClock sets the remaining time of the current period, in ticks.
func (m *Match) SetClock(s *server.Server, time uint32, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	s.Scoreboard.Time = time
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"clock": fmt.Sprintf("%d:%02d.%02d", time/(60*100), time%(60*100)/100, time%100),
	}).Info("Clock set")
	s.AddServerChatMessage(fmt.Sprintf("Clock set by %s", admin.Name))
	m.updateGameOver(s)
}

// SetScore overrides one team's score.
func (m *Match) SetScore(s *server.Server, team game.Team, score uint32, id game.PlayerId) {
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
	m.updateGameOver(s)
}

// SetPeriod overrides the current period number.
func (m *Match) SetPeriod(s *server.Server, period uint32, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	s.Scoreboard.Period = period
	s.Log().WithFields(logrus.Fields{
		"name":   admin.Name,
		"index":  id.Index,
		"period": period,
	}).Info("Period set")
	s.AddServerChatMessage(fmt.Sprintf("Period set by %s", admin.Name))
	m.updateGameOver(s)
}

// SetPeriodCount changes how many periods a game has.
func (m *Match) SetPeriodCount(s *server.Server, periods uint32, id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	m.Config.Periods = periods
	s.Log().WithFields(logrus.Fields{
		"name":    admin.Name,
		"index":   id.Index,
		"periods": periods,
	}).Info("Number of periods set")
	s.AddServerChatMessage(fmt.Sprintf("Number of periods set to %d by %s", periods, admin.Name))
	m.updateGameOver(s)
}

// SetIcingRule switches the icing rule from a chat argument.
func (m *Match) SetIcingRule(s *server.Server, id game.PlayerId, rule string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	var msg string
	switch rule {
	case "on", "touch":
		m.Config.Icing = IcingTouch
		msg = fmt.Sprintf("Touch icing enabled by %s", admin.Name)
	case "notouch":
		m.Config.Icing = IcingNoTouch
		msg = fmt.Sprintf("No-touch icing enabled by %s", admin.Name)
	case "off":
		m.Config.Icing = IcingOff
		msg = fmt.Sprintf("Icing disabled by %s", admin.Name)
	default:
		return
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"rule":  rule,
	}).Info("Icing rule changed")
	s.AddServerChatMessage(msg)
}

// SetOffsideRule switches the offside rule from a chat argument.
func (m *Match) SetOffsideRule(s *server.Server, id game.PlayerId, rule string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	var msg string
	switch rule {
	case "on", "delayed":
		m.Config.Offside = OffsideDelayed
		msg = fmt.Sprintf("Offside enabled by %s", admin.Name)
	case "imm", "immediate":
		m.Config.Offside = OffsideImmediate
		msg = fmt.Sprintf("Immediate offside enabled by %s", admin.Name)
	case "off":
		m.Config.Offside = OffsideOff
		msg = fmt.Sprintf("Offside disabled by %s", admin.Name)
	default:
		return
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"rule":  rule,
	}).Info("Offside rule changed")
	s.AddServerChatMessage(msg)
}

// SetOffsideLine picks which line the offside rule uses.
func (m *Match) SetOffsideLine(s *server.Server, id game.PlayerId, rule string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	var msg string
	switch rule {
	case "blue":
		m.Config.OffsideLine = OffsideLineBlue
		msg = fmt.Sprintf("Blue line set as offside line by %s", admin.Name)
	case "center":
		m.Config.OffsideLine = OffsideLineCenter
		msg = fmt.Sprintf("Center line set as offside line by %s", admin.Name)
	default:
		return
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"line":  rule,
	}).Info("Offside line changed")
	s.AddServerChatMessage(msg)
}

// SetTwoLinePass switches the two-line pass rule from a chat argument.
func (m *Match) SetTwoLinePass(s *server.Server, id game.PlayerId, rule string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	var msg string
	switch rule {
	case "off":
		m.Config.TwoLinePass = TwoLinePassOff
		msg = fmt.Sprintf("Two-line pass rule disabled by %s", admin.Name)
	case "on":
		m.Config.TwoLinePass = TwoLinePassOn
		msg = fmt.Sprintf("Regular two-line pass rule enabled by %s", admin.Name)
	case "forward":
		m.Config.TwoLinePass = TwoLinePassForward
		msg = fmt.Sprintf("Forward two-line pass rule enabled by %s", admin.Name)
	case "double", "both":
		m.Config.TwoLinePass = TwoLinePassDouble
		msg = fmt.Sprintf("Regular and forward two-line pass rule enabled by %s", admin.Name)
	case "blue", "three", "threeline":
		m.Config.TwoLinePass = TwoLinePassThreeLine
		msg = fmt.Sprintf("Three-line pass rule enabled by %s", admin.Name)
	default:
		return
	}
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"rule":  rule,
	}).Info("Two-line pass rule changed")
	s.AddServerChatMessage(msg)
}

// SetGoalReplay toggles automatic goal replays.
func (m *Match) SetGoalReplay(s *server.Server, id game.PlayerId, setting string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	switch setting {
	case "on":
		m.Config.GoalReplay = true
		s.AddServerChatMessage(fmt.Sprintf("Goal replays enabled by %s", admin.Name))
	case "off":
		m.Config.GoalReplay = false
		s.AddServerChatMessage(fmt.Sprintf("Goal replays disabled by %s", admin.Name))
	}
}

// SetFirstToRule sets the first-to-goals limit, "off" or 0 disabling it.
func (m *Match) SetFirstToRule(s *server.Server, id game.PlayerId, arg string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	num, ok := parseGoalLimit(arg)
	if !ok {
		return
	}
	m.Config.FirstTo = num
	if num > 0 {
		s.Log().WithFields(logrus.Fields{
			"name":  admin.Name,
			"index": id.Index,
			"goals": num,
		}).Info("First-to-goals rule set")
		s.AddServerChatMessage(fmt.Sprintf("First-to-goals rule set to %d goals by %s", num, admin.Name))
	} else {
		s.Log().WithFields(logrus.Fields{
			"name":  admin.Name,
			"index": id.Index,
		}).Info("First-to-goals rule disabled")
		s.AddServerChatMessage(fmt.Sprintf("First-to-goals rule disabled by %s", admin.Name))
	}
}

// SetMercyRule sets the mercy goal difference, "off" or 0 disabling it.
func (m *Match) SetMercyRule(s *server.Server, id game.PlayerId, arg string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	num, ok := parseGoalLimit(arg)
	if !ok {
		return
	}
	m.Config.Mercy = num
	if num > 0 {
		s.Log().WithFields(logrus.Fields{
			"name":  admin.Name,
			"index": id.Index,
			"goals": num,
		}).Info("Mercy rule set")
		s.AddServerChatMessage(fmt.Sprintf("Mercy rule set to %d goals by %s", num, admin.Name))
	} else {
		s.Log().WithFields(logrus.Fields{
			"name":  admin.Name,
			"index": id.Index,
		}).Info("Mercy rule disabled")
		s.AddServerChatMessage(fmt.Sprintf("Mercy rule disabled by %s", admin.Name))
	}
}

func parseGoalLimit(arg string) (uint32, bool) {
	if arg == "off" {
		return 0, true
	}
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// Faceoff schedules an immediate faceoff at the next spot.
func (m *Match) Faceoff(s *server.Server, id game.PlayerId) {
	if s.Scoreboard.GameOver {
		return
	}
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	m.pauseTimer = 5 * 100
	m.Paused = false
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
	}).Info("Faceoff initiated")
	s.AddServerChatMessage(fmt.Sprintf("Faceoff initiated by %s", admin.Name))
}

// SetPreferredFaceoffPosition claims a faceoff position for the next play.
func (m *Match) SetPreferredFaceoffPosition(s *server.Server, id game.PlayerId, arg string) {
	position, ok := normalizePosition(arg)
	if !ok {
		return
	}
	player := s.Player(id)
	if player == nil {
		return
	}
	s.Log().WithFields(logrus.Fields{
		"name":     player.Name,
		"index":    id.Index,
		"position": position,
	}).Info("Faceoff position set")
	m.preferredPositions.Set(id, position)
	s.AddServerChatMessage(fmt.Sprintf("%s position %s", player.Name, position))
}

// MsgRules sends the current rule configuration to one player.
func (m *Match) MsgRules(s *server.Server, receiver game.PlayerId) {
	offsideStr := "Offside disabled"
	switch m.Config.Offside {
	case OffsideDelayed:
		offsideStr = "Offside enabled"
	case OffsideImmediate:
		offsideStr = "Immediate offside enabled"
	}
	offsideLineStr := ""
	if m.Config.Offside != OffsideOff && m.Config.OffsideLine == OffsideLineCenter {
		offsideLineStr = " (center line)"
	}
	icingStr := "Icing disabled"
	switch m.Config.Icing {
	case IcingTouch:
		icingStr = "Icing enabled"
	case IcingNoTouch:
		icingStr = "No-touch icing enabled"
	}
	s.AddDirectedServerChatMessage(fmt.Sprintf("%s%s, %s", offsideStr, offsideLineStr, icingStr), receiver)

	twoLineStr := ""
	switch m.Config.TwoLinePass {
	case TwoLinePassOn:
		twoLineStr = "Two-line pass rule enabled"
	case TwoLinePassForward:
		twoLineStr = "Forward two-line pass rule enabled"
	case TwoLinePassDouble:
		twoLineStr = "Forward and regular two-line pass rule enabled"
	case TwoLinePassThreeLine:
		twoLineStr = "Three-line pass rule enabled"
	}
	if twoLineStr != "" {
		s.AddDirectedServerChatMessage(twoLineStr, receiver)
	}

	if m.Config.Mercy > 0 {
		s.AddDirectedServerChatMessage(fmt.Sprintf("Mercy rule when team leads by %d goals", m.Config.Mercy), receiver)
	}
	if m.Config.FirstTo > 0 {
		s.AddDirectedServerChatMessage(fmt.Sprintf("Game ends when team scores %d goals", m.Config.FirstTo), receiver)
	}
}

// SetSpawnOffset moves the center faceoff spawn closer to or further from
// the dot.
func (m *Match) SetSpawnOffset(s *server.Server, id game.PlayerId, value float32) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	m.Config.SpawnPointOffset = value
	s.Log().WithFields(logrus.Fields{
		"name":   admin.Name,
		"index":  id.Index,
		"offset": value,
	}).Info("Spawn point offset changed")
	s.AddServerChatMessage(fmt.Sprintf("Spawn point offset changed by %s to %v", admin.Name, value))
}

// SetSpawnPlayerAltitude changes the height players drop from at faceoffs.
func (m *Match) SetSpawnPlayerAltitude(s *server.Server, id game.PlayerId, value float32) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	m.Config.SpawnPlayerAltitude = value
	s.Log().WithFields(logrus.Fields{
		"name":     admin.Name,
		"index":    id.Index,
		"altitude": value,
	}).Info("Spawn player altitude changed")
	s.AddServerChatMessage(fmt.Sprintf("Spawn player altitude changed by %s to %v", admin.Name, value))
}

// SetSpawnPuckAltitude changes the height the puck drops from at faceoffs.
func (m *Match) SetSpawnPuckAltitude(s *server.Server, id game.PlayerId, value float32) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	m.Config.SpawnPuckAltitude = value
	s.Log().WithFields(logrus.Fields{
		"name":     admin.Name,
		"index":    id.Index,
		"altitude": value,
	}).Info("Spawn puck altitude changed")
	s.AddServerChatMessage(fmt.Sprintf("Spawn puck altitude changed by %s to %v", admin.Name, value))
}

// SetSpawnKeepStick toggles carrying the stick pose through faceoff
// teleports.
func (m *Match) SetSpawnKeepStick(s *server.Server, id game.PlayerId, setting string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	var value bool
	switch setting {
	case "on", "true":
		value = true
	case "off", "false":
		value = false
	default:
		return
	}
	m.Config.SpawnKeepStickPosition = value
	s.Log().WithFields(logrus.Fields{
		"name":  admin.Name,
		"index": id.Index,
		"keep":  value,
	}).Info("Spawn stick position keeping changed")
	s.AddServerChatMessage(fmt.Sprintf("Spawn stick position keeping changed by %s to %t", admin.Name, value))
}

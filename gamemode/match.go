package gamemode

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/server"
)

// IcingRule selects how icing is enforced.
type IcingRule uint8

const (
	IcingOff IcingRule = iota
	// IcingTouch calls icing only when a defender touches the puck first.
	IcingTouch
	// IcingNoTouch calls icing as soon as the puck crosses the goal line.
	IcingNoTouch
)

// OffsideRule selects how offside is enforced.
type OffsideRule uint8

const (
	OffsideOff OffsideRule = iota
	// OffsideDelayed waits for an attacker to touch the puck.
	OffsideDelayed
	// OffsideImmediate calls offside the moment the puck enters the zone.
	OffsideImmediate
)

// OffsideLineRule selects which line arms the offside rule.
type OffsideLineRule uint8

const (
	OffsideLineBlue OffsideLineRule = iota
	OffsideLineCenter
)

// TwoLinePassRule selects which long passes are forbidden.
type TwoLinePassRule uint8

const (
	TwoLinePassOff TwoLinePassRule = iota
	// TwoLinePassOn forbids passes from behind the own blue line across the
	// center line.
	TwoLinePassOn
	// TwoLinePassForward forbids passes from behind the center line across
	// the offensive blue line.
	TwoLinePassForward
	// TwoLinePassDouble enables both the regular and the forward rule.
	TwoLinePassDouble
	// TwoLinePassThreeLine forbids passes from behind the own blue line
	// across the offensive blue line.
	TwoLinePassThreeLine
)

// MatchConfiguration are the rules of a standard match. All times are in
// ticks.
type MatchConfiguration struct {
	TimePeriod       uint32
	TimeWarmup       uint32
	TimeBreak        uint32
	TimeIntermission uint32
	// Mercy ends the game when a team leads by this many goals, 0 disables.
	Mercy uint32
	// FirstTo ends the game when a team reaches this score, 0 disables.
	FirstTo uint32
	Periods uint32

	Offside     OffsideRule
	Icing       IcingRule
	OffsideLine OffsideLineRule
	TwoLinePass TwoLinePassRule

	WarmupPucks int
	UseMph      bool
	GoalReplay  bool

	SpawnPointOffset       float32
	SpawnPlayerAltitude    float32
	SpawnPuckAltitude      float32
	SpawnKeepStickPosition bool
}

// GoalEvent describes a scored goal, for mode extensions that track stats.
type GoalEvent struct {
	Team game.Team
	// Scorer and Assist are player table indices, negative when unattributed.
	Scorer game.PlayerIndex
	Assist game.PlayerIndex
	// SpeedFromStick is the puck speed at the scorer's last touch in metres
	// per tick; SpeedKnown is false when nobody on the scoring team touched
	// the puck.
	SpeedFromStick  float32
	SpeedKnown      bool
	SpeedAcrossLine float32
	Time            uint32
	Period          uint32
}

// rinkSide is the half of the ice a faceoff spot sits in, along the X axis.
type rinkSide uint8

const (
	lowerHalfZ rinkSide = iota
	higherHalfZ
)

// passLocation orders the lines a puck has passed since the last possession
// change, from the passer's point of view.
type passLocation uint8

const (
	passNone passLocation = iota
	reachedOwnBlue
	passedOwnBlue
	reachedCenter
	passedCenter
	reachedOffensive
	passedOffensive
)

// pass is the last possession: who touched the puck, on which side, and how
// far back the puck has been since.
type pass struct {
	team   game.Team
	side   rinkSide
	from   passLocation
	player game.PlayerId
}

type icingStatusKind uint8

const (
	icingNone icingStatusKind = iota
	icingWarning
	icingCalled
)

type icingStatus struct {
	kind icingStatusKind
	team game.Team
	side rinkSide
}

type offsideStatusKind uint8

const (
	offsideNeutral offsideStatusKind = iota
	offsideInZone
	offsideWarning
	offsideCalled
)

type offsideStatus struct {
	kind     offsideStatusKind
	team     game.Team
	side     rinkSide
	location passLocation
	player   game.PlayerId
}

type twoLineStatusKind uint8

const (
	twoLineNone twoLineStatusKind = iota
	twoLineWarning
	twoLineCalled
)

type twoLineStatus struct {
	kind     twoLineStatusKind
	team     game.Team
	side     rinkSide
	location passLocation
	players  []game.PlayerId
}

// puckTouch is one player's possession of a puck. Consecutive touches by the
// same player merge into one entry.
type puckTouch struct {
	player    game.PlayerId
	team      game.Team
	puckPos   mgl32.Vec3
	puckSpeed float32
	firstTime uint32
	lastTime  uint32
}

type pendingReplay struct {
	startStep uint32
	endStep   uint32
	forceView game.PlayerIndex
}

// Match is the shared rules engine of match-like modes: faceoffs, goals,
// icing, offside, two-line passes and the game clock.
type Match struct {
	Config MatchConfiguration
	Paused bool

	pauseTimer  uint32
	isPauseGoal bool

	nextFaceoffSpot faceoffSpot
	icing           icingStatus
	offside         offsideStatus
	twoLine         twoLineStatus
	pass            *pass

	preferredPositions *orderedmap.OrderedMap[game.PlayerId, string]
	startedAsGoalie    []game.PlayerId

	faceoffGameStep      uint32
	stepWherePeriodEnded uint32
	tooLatePrinted       bool
	nextReplay           *pendingReplay
	// puckTouches is a per-puck possession history, newest first.
	puckTouches map[int][]puckTouch
}

// NewMatch returns a match rules engine for the given configuration.
func NewMatch(config MatchConfiguration) *Match {
	return &Match{
		Config:             config,
		nextFaceoffSpot:    centerSpot(),
		preferredPositions: orderedmap.NewOrderedMap[game.PlayerId, string](),
		puckTouches:        make(map[int][]puckTouch),
	}
}

// ClearStartedGoalie forgets that a player started the current play in goal,
// so a rejoin does not exempt them from icing calls.
func (m *Match) ClearStartedGoalie(id game.PlayerId) {
	for i, g := range m.startedAsGoalie {
		if g == id {
			m.startedAsGoalie = append(m.startedAsGoalie[:i], m.startedAsGoalie[i+1:]...)
			return
		}
	}
}

// CleanupPlayer drops all per-player rule state when a player leaves.
func (m *Match) CleanupPlayer(id game.PlayerId) {
	m.ClearStartedGoalie(id)
	m.preferredPositions.Delete(id)
}

func (m *Match) doFaceoff(s *server.Server) {
	positions := m.faceoffAssignments(s)

	s.RemoveAllPucks()
	clear(m.puckTouches)

	spot := faceoffLayout(s.Rink(), m.nextFaceoffSpot, m.Config.SpawnPointOffset, m.Config.SpawnPlayerAltitude)

	puckPos := spot.center.Add(mgl32.Vec3{0, m.Config.SpawnPuckAltitude, 0})
	s.SpawnPuck(puckPos, mgl32.Ident3())

	m.startedAsGoalie = m.startedAsGoalie[:0]
	for id, a := range positions {
		table := spot.red
		if a.team == game.TeamBlue {
			table = spot.blue
		}
		sp := table[a.position]
		s.SpawnSkater(id, a.team, sp.pos, sp.rot, m.Config.SpawnKeepStickPosition)
		if a.position == "G" {
			m.startedAsGoalie = append(m.startedAsGoalie, id)
		}
	}

	rink := s.Rink()
	m.icing = icingStatus{}
	switch {
	case rink.BlueZoneBlueLine.SideOfLine(puckPos, 0) == game.SideBlue:
		m.offside = offsideStatus{kind: offsideInZone, team: game.TeamRed}
	case rink.RedZoneBlueLine.SideOfLine(puckPos, 0) == game.SideRed:
		m.offside = offsideStatus{kind: offsideInZone, team: game.TeamBlue}
	default:
		m.offside = offsideStatus{}
	}
	m.twoLine = twoLineStatus{}
	m.pass = nil

	m.faceoffGameStep = s.GameStep()
}

func (m *Match) updateGameOver(s *server.Server) {
	values := &s.Scoreboard
	red, blue := values.RedScore, values.BlueScore
	wasOver := values.GameOver
	switch {
	case values.Period > m.Config.Periods && red != blue:
		values.GameOver = true
	case m.Config.Mercy > 0 && (saturatingSub(red, blue) >= m.Config.Mercy || saturatingSub(blue, red) >= m.Config.Mercy):
		values.GameOver = true
	case m.Config.FirstTo > 0 && (red >= m.Config.FirstTo || blue >= m.Config.FirstTo):
		values.GameOver = true
	default:
		values.GameOver = false
	}
	if values.GameOver && !wasOver {
		m.pauseTimer = max(m.pauseTimer, m.Config.TimeIntermission)
	} else if !values.GameOver && wasOver {
		m.pauseTimer = max(m.pauseTimer, m.Config.TimeBreak)
	}
}

func (m *Match) callGoal(s *server.Server, team game.Team, puckIndex int) GoalEvent {
	values := &s.Scoreboard
	if team == game.TeamRed {
		values.RedScore++
	} else {
		values.BlueScore++
	}

	m.nextFaceoffSpot = centerSpot()

	scorer := game.PlayerIndex(-1)
	assist := game.PlayerIndex(-1)
	lastTouch := game.PlayerIndex(-1)
	var speedAcrossLine, speedFromStick float32
	speedKnown := false

	if puck := s.Puck(game.ObjectIndex(puckIndex)); puck != nil {
		speedAcrossLine = puck.Body.Vel.Len()
		touches := m.puckTouches[puckIndex]
		if len(touches) > 0 {
			lastTouch = touches[0].player.Index
		}
		var scorerFirstTouch uint32
		for _, touch := range touches {
			if touch.team != team {
				continue
			}
			if scorer < 0 {
				scorer = touch.player.Index
				scorerFirstTouch = touch.firstTime
				speedFromStick = touch.puckSpeed
				speedKnown = true
			} else if touch.player.Index == scorer {
				scorerFirstTouch = touch.firstTime
			} else {
				// First scoring-team touch before the scorer's possession.
				// More than ten seconds between it and the scorer's first
				// touch means no assist.
				if saturatingSub(touch.lastTime, scorerFirstTouch) <= 1000 {
					assist = touch.player.Index
				}
				break
			}
		}
	}

	s.AddGoalMessage(team, scorer, assist)

	line, unit := convertSpeed(speedAcrossLine, m.Config.UseMph)
	msg := fmt.Sprintf("Goal scored, %.1f %s across line", line, unit)
	if speedKnown {
		stick, unit := convertSpeed(speedFromStick, m.Config.UseMph)
		msg += fmt.Sprintf(", %.1f %s from stick", stick, unit)
	}
	s.AddServerChatMessage(msg)

	if values.Time < 1000 {
		s.AddServerChatMessage(fmt.Sprintf("%d.%02d seconds left", values.Time/100, values.Time%100))
	}

	m.pauseTimer = m.Config.TimeBreak
	m.isPauseGoal = true
	m.updateGameOver(s)

	gameStep := s.GameStep()
	if m.Config.GoalReplay {
		forceView := scorer
		if forceView < 0 {
			forceView = lastTouch
		}
		m.nextReplay = &pendingReplay{
			startStep: max(m.faceoffGameStep, saturatingSub(gameStep, 600)),
			endStep:   gameStep + 200,
			forceView: forceView,
		}
		m.pauseTimer = max(saturatingSub(m.pauseTimer, 800), 400)
	}

	return GoalEvent{
		Team:            team,
		Scorer:          scorer,
		Assist:          assist,
		SpeedFromStick:  speedFromStick,
		SpeedKnown:      speedKnown,
		SpeedAcrossLine: speedAcrossLine,
		Time:            values.Time,
		Period:          values.Period,
	}
}

// convertSpeed turns a puck speed in metres per tick into a display value.
func convertSpeed(speed float32, useMph bool) (float32, string) {
	if useMph {
		return speed * 100 * 2.23693, "mph"
	}
	return speed * 100 * 3.6, "km/h"
}

func (m *Match) handleEventsEndOfPeriod(s *server.Server, events []physics.Event) {
	for _, event := range events {
		if event.Kind != physics.EventPuckEnteredNet {
			continue
		}
		late := saturatingSub(s.GameStep(), m.stepWherePeriodEnded)
		if late <= 300 && !m.tooLatePrinted {
			m.tooLatePrinted = true
			s.AddServerChatMessage(fmt.Sprintf("%d.%02d seconds too late!", late/100, late%100))
		}
	}
}

func (m *Match) handlePuckTouch(s *server.Server, playerId game.PlayerId, puckIndex int) {
	player := s.Player(playerId)
	if player == nil || !player.HasSkater() {
		return
	}
	touchingTeam := player.Team
	puck := s.Puck(game.ObjectIndex(puckIndex))
	if puck == nil {
		return
	}
	m.puckTouches[puckIndex] = addTouch(m.puckTouches[puckIndex], puck, playerId, touchingTeam, s.Scoreboard.Time)

	side := lowerHalfZ
	if puck.Body.Pos.X() > s.Rink().Width/2.0 {
		side = higherHalfZ
	}
	m.pass = &pass{team: touchingTeam, side: side, player: playerId}

	if m.offside.kind == offsideWarning && m.offside.team == touchingTeam {
		selfTouch := playerId == m.offside.player
		m.callOffside(s, touchingTeam, m.offside.side, m.offside.location, selfTouch)
		return
	}
	if m.twoLine.kind == twoLineWarning {
		if m.twoLine.team == touchingTeam && containsId(m.twoLine.players, playerId) {
			m.callTwoLinePass(s, touchingTeam, m.twoLine.side, m.twoLine.location)
			return
		}
		m.twoLine = twoLineStatus{}
		s.AddServerChatMessage("Two-line pass waved off")
	}
	if m.icing.kind == icingWarning {
		if touchingTeam != m.icing.team && !containsId(m.startedAsGoalie, playerId) {
			m.callIcing(s, touchingTeam.Other(), m.icing.side)
		} else {
			m.icing = icingStatus{}
			s.AddServerChatMessage("Icing waved off")
		}
	}
}

func addTouch(touches []puckTouch, puck *game.Puck, playerId game.PlayerId, team game.Team, time uint32) []puckTouch {
	pos := puck.Body.Pos
	speed := puck.Body.Vel.Len()

	if len(touches) > 0 && touches[0].player == playerId && touches[0].team == team {
		touches[0].puckPos = pos
		touches[0].lastTime = time
		touches[0].puckSpeed = speed
		return touches
	}
	if len(touches) > 15 {
		touches = touches[:15]
	}
	return append([]puckTouch{{
		player:    playerId,
		team:      team,
		puckPos:   pos,
		puckSpeed: speed,
		firstTime: time,
		lastTime:  time,
	}}, touches...)
}

func (m *Match) handlePuckEnteredNet(s *server.Server, goals *[]GoalEvent, netTeam game.Team, puckIndex int) {
	team := netTeam.Other()
	switch {
	case m.offside.kind == offsideWarning && m.offside.team == team:
		m.callOffside(s, team, m.offside.side, m.offside.location, false)
	case m.offside.kind == offsideCalled:
	default:
		*goals = append(*goals, m.callGoal(s, team, puckIndex))
	}
}

func (m *Match) handlePuckPassedGoalLine(s *server.Server, lineTeam game.Team) {
	if m.pass == nil || m.pass.from == passNone {
		return
	}
	team := lineTeam.Other()
	if team != m.pass.team || m.pass.from > reachedCenter {
		return
	}
	switch m.Config.Icing {
	case IcingTouch:
		m.icing = icingStatus{kind: icingWarning, team: team, side: m.pass.side}
		s.AddServerChatMessage("Icing warning")
	case IcingNoTouch:
		m.callIcing(s, team, m.pass.side)
	}
}

func (m *Match) puckIntoOffsideZone(s *server.Server, team game.Team) {
	if m.offside.kind == offsideInZone && m.offside.team == team {
		return
	}
	if p := m.pass; p != nil && p.team == team && m.hasPlayersInOffensiveZone(s, team, p.player) {
		switch m.Config.Offside {
		case OffsideDelayed:
			m.offside = offsideStatus{
				kind:     offsideWarning,
				team:     team,
				side:     p.side,
				location: p.from,
				player:   p.player,
			}
			s.AddServerChatMessage("Offside warning")
		case OffsideImmediate:
			m.callOffside(s, team, p.side, p.from, false)
		case OffsideOff:
			m.offside = offsideStatus{kind: offsideInZone, team: team}
		}
		return
	}
	m.offside = offsideStatus{kind: offsideInZone, team: team}
}

func (m *Match) handlePuckEnteredOffensiveHalf(s *server.Server, team game.Team) {
	if m.offside.kind != offsideCalled && m.Config.OffsideLine == OffsideLineCenter {
		m.puckIntoOffsideZone(s, team)
	}
	if m.offside.kind == offsideWarning && m.offside.team != team {
		s.AddServerChatMessage("Offside waved off")
	}
	if p := m.pass; p != nil && p.from != passNone && m.twoLine.kind == twoLineNone && p.team == team {
		regularActive := m.Config.TwoLinePass == TwoLinePassDouble || m.Config.TwoLinePass == TwoLinePassOn
		if p.from <= reachedOwnBlue && regularActive {
			m.checkTwoLinePass(s, team, p.side, p.from, p.player, false)
		}
	}
}

func (m *Match) handlePuckEnteredOffensiveZone(s *server.Server, team game.Team) {
	if m.offside.kind != offsideCalled && m.Config.OffsideLine == OffsideLineBlue {
		m.puckIntoOffsideZone(s, team)
	}
	if p := m.pass; p != nil && p.from != passNone && m.twoLine.kind == twoLineNone && p.team == team {
		forwardActive := m.Config.TwoLinePass == TwoLinePassDouble || m.Config.TwoLinePass == TwoLinePassForward
		threeLineActive := m.Config.TwoLinePass == TwoLinePassThreeLine
		if (p.from <= reachedCenter && forwardActive) || (p.from <= reachedOwnBlue && threeLineActive) {
			m.checkTwoLinePass(s, team, p.side, p.from, p.player, true)
		}
	}
}

func (m *Match) checkTwoLinePass(s *server.Server, team game.Team, side rinkSide, from passLocation, passPlayer game.PlayerId, offensiveLine bool) {
	line := s.Rink().CenterLine
	if offensiveLine {
		line = *s.Rink().OffensiveLine(team)
	}
	var pastLine []game.PlayerId
	s.Players(func(id game.PlayerId, p *server.Player) bool {
		if id != passPlayer && isPastLine(p, team, line) {
			pastLine = append(pastLine, id)
		}
		return true
	})
	if len(pastLine) > 0 {
		m.twoLine = twoLineStatus{
			kind:     twoLineWarning,
			team:     team,
			side:     side,
			location: from,
			players:  pastLine,
		}
		s.AddServerChatMessage("Two-line pass warning")
	}
}

func (m *Match) handlePuckPassedDefensiveLine(s *server.Server, team game.Team) {
	if m.offside.kind != offsideCalled && m.Config.OffsideLine == OffsideLineBlue {
		if m.offside.kind == offsideWarning && m.offside.team == team.Other() {
			s.AddServerChatMessage("Offside waved off")
		}
		m.offside = offsideStatus{}
	}
}

func (m *Match) updatePass(team game.Team, loc passLocation) {
	if m.pass != nil && m.pass.team == team && m.pass.from == passNone {
		m.pass.from = loc
	}
}

func (m *Match) checkWaveOffTwoLine(s *server.Server, team game.Team) {
	if m.twoLine.kind == twoLineWarning && m.twoLine.team != team {
		m.twoLine = twoLineStatus{}
		s.AddServerChatMessage("Two-line pass waved off")
	}
}

func (m *Match) handleEvents(s *server.Server, events []physics.Event, goals *[]GoalEvent) {
	for _, event := range events {
		switch event.Kind {
		case physics.EventPuckEnteredNet:
			m.handlePuckEnteredNet(s, goals, event.Team, event.Puck)
		case physics.EventPuckTouch:
			m.handlePuckTouch(s, event.Player, event.Puck)
		case physics.EventPuckReachedDefensiveLine:
			m.checkWaveOffTwoLine(s, event.Team)
			m.updatePass(event.Team, reachedOwnBlue)
		case physics.EventPuckPassedDefensiveLine:
			m.updatePass(event.Team, passedOwnBlue)
			m.handlePuckPassedDefensiveLine(s, event.Team)
		case physics.EventPuckReachedCenterLine:
			m.checkWaveOffTwoLine(s, event.Team)
			m.updatePass(event.Team, reachedCenter)
		case physics.EventPuckPassedCenterLine:
			m.updatePass(event.Team, passedCenter)
			m.handlePuckEnteredOffensiveHalf(s, event.Team)
		case physics.EventPuckReachedOffensiveZone:
			m.updatePass(event.Team, reachedOffensive)
		case physics.EventPuckEnteredOffensiveZone:
			m.updatePass(event.Team, passedOffensive)
			m.handlePuckEnteredOffensiveZone(s, event.Team)
		case physics.EventPuckPassedGoalLine:
			m.handlePuckPassedGoalLine(s, event.Team)
		}

		// A call or goal stops play; later events this tick are void.
		values := &s.Scoreboard
		if m.pauseTimer > 0 || values.Time == 0 || values.GameOver || values.Period == 0 {
			return
		}
	}
}

func (m *Match) callOffside(s *server.Server, team game.Team, side rinkSide, location passLocation, selfTouch bool) {
	var spot faceoffSpot
	switch {
	case selfTouch && m.Config.OffsideLine == OffsideLineBlue:
		spot = offsideSpot(team.Other(), side)
	case selfTouch:
		spot = centerSpot()
	case location != passNone && location <= reachedOwnBlue:
		spot = defensiveZoneSpot(team, side)
	case location != passNone && location <= reachedCenter:
		spot = offsideSpot(team, side)
	default:
		spot = centerSpot()
	}

	m.nextFaceoffSpot = spot
	m.pauseTimer = m.Config.TimeBreak
	m.offside = offsideStatus{kind: offsideCalled, team: team}
	s.AddServerChatMessage("Offside")
}

func (m *Match) callTwoLinePass(s *server.Server, team game.Team, side rinkSide, location passLocation) {
	switch {
	case location <= reachedOwnBlue:
		m.nextFaceoffSpot = defensiveZoneSpot(team, side)
	case location <= reachedCenter:
		m.nextFaceoffSpot = offsideSpot(team, side)
	default:
		m.nextFaceoffSpot = centerSpot()
	}
	m.pauseTimer = m.Config.TimeBreak
	m.twoLine = twoLineStatus{kind: twoLineCalled, team: team}
	s.AddServerChatMessage("Two-line pass")
}

func (m *Match) callIcing(s *server.Server, team game.Team, side rinkSide) {
	m.nextFaceoffSpot = defensiveZoneSpot(team, side)
	m.pauseTimer = m.Config.TimeBreak
	m.icing = icingStatus{kind: icingCalled, team: team}
	s.AddServerChatMessage("Icing")
}

// AfterTick applies the rule engine to one tick's physics events and advances
// the clock. It returns the goals scored this tick.
func (m *Match) AfterTick(s *server.Server, events []physics.Event) []GoalEvent {
	var goals []GoalEvent
	values := &s.Scoreboard
	if values.Time == 0 && values.Period > 1 {
		m.handleEventsEndOfPeriod(s, events)
	} else if m.pauseTimer > 0 || values.Time == 0 || values.GameOver || values.Period == 0 || m.Paused {
		// Play is stopped.
	} else {
		m.handleEvents(s, events, &goals)

		if m.offside.kind == offsideWarning && !m.hasPlayersInOffensiveZone(s, m.offside.team, noPlayer) {
			team := m.offside.team
			m.offside = offsideStatus{kind: offsideInZone, team: team}
			s.AddServerChatMessage("Offside waved off")
		}

		s.Scoreboard.Rules = m.rulesState()
	}

	m.updateClock(s)

	if r := m.nextReplay; r != nil && r.endStep <= s.GameStep() {
		s.AddReplayToQueue(r.startStep, r.endStep, r.forceView)
		s.AddServerChatMessage("Goal replay")
		m.nextReplay = nil
	}
	return goals
}

func (m *Match) rulesState() game.RulesState {
	switch {
	case m.offside.kind == offsideCalled || m.twoLine.kind == twoLineCalled:
		return game.RulesState{Tag: game.RulesOffside}
	case m.icing.kind == icingCalled:
		return game.RulesState{Tag: game.RulesIcing}
	default:
		return game.RulesState{
			Tag:            game.RulesRegular,
			OffsideWarning: m.offside.kind == offsideWarning || m.twoLine.kind == twoLineWarning,
			IcingWarning:   m.icing.kind == icingWarning,
		}
	}
}

func (m *Match) updateClock(s *server.Server) {
	values := &s.Scoreboard
	if !m.Paused {
		if m.pauseTimer > 0 {
			m.pauseTimer--
			if m.pauseTimer == 0 {
				m.isPauseGoal = false
				if values.GameOver {
					s.NewGame(m.InitialGameValues())
				} else {
					if values.Time == 0 {
						values.Time = m.Config.TimePeriod
					}
					m.doFaceoff(s)
				}
			}
		} else {
			values.Time = saturatingSub(values.Time, 1)
			if values.Time == 0 {
				values.Period++
				m.pauseTimer = m.Config.TimeIntermission
				m.isPauseGoal = false
				m.stepWherePeriodEnded = s.GameStep()
				m.tooLatePrinted = false
				m.nextFaceoffSpot = centerSpot()
				m.updateGameOver(s)
			}
		}
	}
	if m.isPauseGoal {
		s.Scoreboard.GoalMessageTimer = m.pauseTimer
	} else {
		s.Scoreboard.GoalMessageTimer = 0
	}
}

// InitialGameValues starts a game in warmup with the configured puck count.
func (m *Match) InitialGameValues() server.InitialGameValues {
	values := game.DefaultScoreboardValues()
	values.Time = m.Config.TimeWarmup
	return server.InitialGameValues{
		Values:    values,
		PuckSlots: m.Config.WarmupPucks,
	}
}

// GameStarted resets the rule state and lines up the warmup pucks along the
// center line.
func (m *Match) GameStarted(s *server.Server) {
	m.Paused = false
	m.pauseTimer = 0
	m.nextFaceoffSpot = centerSpot()
	m.icing = icingStatus{}
	m.offside = offsideStatus{}
	m.twoLine = twoLineStatus{}
	m.nextReplay = nil

	rink := s.Rink()
	lineStart := rink.Width/2.0 - 0.4*float32(m.Config.WarmupPucks-1)
	for i := 0; i < m.Config.WarmupPucks; i++ {
		pos := mgl32.Vec3{lineStart + 0.8*float32(i), m.Config.SpawnPuckAltitude, rink.Length / 2.0}
		s.SpawnPuck(pos, mgl32.Ident3())
	}
}

// isPastLine reports whether a player's skates are on the far side of a line
// for their team's attacking direction.
func isPastLine(p *server.Player, team game.Team, line game.RinkLine) bool {
	if !p.HasSkater() || p.Team != team {
		return false
	}
	skater := p.Skater
	feet := skater.Body.Pos.Sub(skater.Body.Rot.Mul3x1(mgl32.Vec3{0, skater.Height, 0}))
	side := line.SideOfLine(feet, 0)
	if team == game.TeamRed {
		return side == game.SideBlue
	}
	return side == game.SideRed
}

// noPlayer is an id that never resolves, used where a player filter is
// optional.
var noPlayer = game.PlayerId{Index: -1}

func (m *Match) hasPlayersInOffensiveZone(s *server.Server, team game.Team, ignore game.PlayerId) bool {
	line := *s.Rink().OffensiveLine(team)
	found := false
	s.Players(func(id game.PlayerId, p *server.Player) bool {
		if id != ignore && isPastLine(p, team, line) {
			found = true
			return false
		}
		return true
	})
	return found
}

func containsId(ids []game.PlayerId, id game.PlayerId) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func saturatingSub(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}

package gamemode

import (
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/ban"
	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/server"
)

// newRulesMatch builds a server around a standard match with play in
// progress, so AfterTick feeds events into the rule machines.
func newRulesMatch(t *testing.T, config MatchConfiguration) (*server.Server, *Match) {
	t.Helper()
	config.TimePeriod = 30000
	config.TimeBreak = 500
	config.TimeIntermission = 1000
	config.Periods = 3
	config.WarmupPucks = 1
	b := NewStandardMatch(config, 5, SpawnCenter)
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := server.New(log, server.Config{PlayerMax: 10}, game.DefaultPhysicsConfig(), b, ban.NewInMemory(), nil)
	s.Scoreboard.Period = 1
	s.Scoreboard.Time = 10000
	return s, b.m
}

func addSkater(t *testing.T, s *server.Server, name string, team game.Team, pos mgl32.Vec3) game.PlayerId {
	t.Helper()
	id, ok := s.AddBot(name)
	if !ok {
		t.Fatal("no free player slot")
	}
	if !s.SpawnSkater(id, team, pos, mgl32.Ident3(), false) {
		t.Fatalf("could not spawn skater for %s", name)
	}
	return id
}

func spawnTestPuck(t *testing.T, s *server.Server, pos mgl32.Vec3) {
	t.Helper()
	if _, ok := s.SpawnPuck(pos, mgl32.Ident3()); !ok {
		t.Fatal("could not spawn puck")
	}
}

func TestIcingTouchCalledOnDefenderTouch(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{Icing: IcingTouch})
	shooter := addSkater(t, s, "shooter", game.TeamRed, mgl32.Vec3{15, 1.5, 45})
	defender := addSkater(t, s, "defender", game.TeamBlue, mgl32.Vec3{15, 1.5, 10})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 45})

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: shooter, Puck: 0},
		{Kind: physics.EventPuckReachedDefensiveLine, Team: game.TeamRed},
	})
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckPassedGoalLine, Team: game.TeamBlue},
	})
	if m.icing.kind != icingWarning || m.icing.team != game.TeamRed {
		t.Fatalf("after dump-in: icing kind %d team %v, want warning against Red", m.icing.kind, m.icing.team)
	}

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: defender, Puck: 0},
	})
	if m.icing.kind != icingCalled || m.icing.team != game.TeamRed {
		t.Fatalf("after defender touch: icing kind %d team %v, want called against Red", m.icing.kind, m.icing.team)
	}
}

func TestIcingWavedOffOnOwnTouch(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{Icing: IcingTouch})
	shooter := addSkater(t, s, "shooter", game.TeamRed, mgl32.Vec3{15, 1.5, 45})
	chaser := addSkater(t, s, "chaser", game.TeamRed, mgl32.Vec3{15, 1.5, 40})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 45})

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: shooter, Puck: 0},
		{Kind: physics.EventPuckReachedDefensiveLine, Team: game.TeamRed},
	})
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckPassedGoalLine, Team: game.TeamBlue},
	})
	if m.icing.kind != icingWarning {
		t.Fatal("expected an icing warning before the race to the puck")
	}

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: chaser, Puck: 0},
	})
	if m.icing.kind != icingNone {
		t.Fatalf("icing kind %d after the icing team touched first, want none", m.icing.kind)
	}
}

func TestIcingNoTouchCalledImmediately(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{Icing: IcingNoTouch})
	shooter := addSkater(t, s, "shooter", game.TeamRed, mgl32.Vec3{15, 1.5, 45})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 45})

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: shooter, Puck: 0},
		{Kind: physics.EventPuckReachedDefensiveLine, Team: game.TeamRed},
	})
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckPassedGoalLine, Team: game.TeamBlue},
	})
	if m.icing.kind != icingCalled || m.icing.team != game.TeamRed {
		t.Fatalf("icing kind %d team %v, want called against Red", m.icing.kind, m.icing.team)
	}
}

func TestOffsideDelayedWarningAndCall(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{Offside: OffsideDelayed})
	passer := addSkater(t, s, "passer", game.TeamRed, mgl32.Vec3{15, 1.5, 35})
	attacker := addSkater(t, s, "attacker", game.TeamRed, mgl32.Vec3{15, 1.5, 10})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 35})

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: passer, Puck: 0},
	})
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckEnteredOffensiveZone, Team: game.TeamRed},
	})
	if m.offside.kind != offsideWarning || m.offside.team != game.TeamRed {
		t.Fatalf("offside kind %d team %v, want warning against Red", m.offside.kind, m.offside.team)
	}
	if m.offside.player != passer {
		t.Errorf("offside pass attributed to %v, want %v", m.offside.player, passer)
	}

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: attacker, Puck: 0},
	})
	if m.offside.kind != offsideCalled || m.offside.team != game.TeamRed {
		t.Fatalf("offside kind %d team %v, want called against Red", m.offside.kind, m.offside.team)
	}
}

func TestOffsideWavedOffWhenZoneClears(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{Offside: OffsideDelayed})
	passer := addSkater(t, s, "passer", game.TeamRed, mgl32.Vec3{15, 1.5, 35})
	attacker := addSkater(t, s, "attacker", game.TeamRed, mgl32.Vec3{15, 1.5, 10})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 35})

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: passer, Puck: 0},
	})
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckEnteredOffensiveZone, Team: game.TeamRed},
	})
	if m.offside.kind != offsideWarning {
		t.Fatal("expected an offside warning while the attacker is in the zone")
	}

	// The attacker tags up behind the blue line.
	if !s.SpawnSkater(attacker, game.TeamRed, mgl32.Vec3{15, 1.5, 35}, mgl32.Ident3(), false) {
		t.Fatal("could not reposition attacker")
	}
	m.AfterTick(s, nil)
	if m.offside.kind != offsideInZone {
		t.Fatalf("offside kind %d after tag-up, want in-zone tracking", m.offside.kind)
	}
}

func TestOffsideImmediateCall(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{Offside: OffsideImmediate})
	passer := addSkater(t, s, "passer", game.TeamRed, mgl32.Vec3{15, 1.5, 35})
	addSkater(t, s, "attacker", game.TeamRed, mgl32.Vec3{15, 1.5, 10})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 35})

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: passer, Puck: 0},
	})
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckEnteredOffensiveZone, Team: game.TeamRed},
	})
	if m.offside.kind != offsideCalled || m.offside.team != game.TeamRed {
		t.Fatalf("offside kind %d team %v, want called against Red", m.offside.kind, m.offside.team)
	}
}

func TestGoalAttribution(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{})
	helper := addSkater(t, s, "helper", game.TeamRed, mgl32.Vec3{15, 1.5, 30})
	scorer := addSkater(t, s, "scorer", game.TeamRed, mgl32.Vec3{13, 1.5, 28})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 29})

	s.Scoreboard.Time = 5000
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: helper, Puck: 0},
	})
	s.Scoreboard.Time = 4600
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: scorer, Puck: 0},
	})
	goals := m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckEnteredNet, Team: game.TeamBlue, Puck: 0},
	})

	if len(goals) != 1 {
		t.Fatalf("got %d goals, want 1", len(goals))
	}
	g := goals[0]
	if g.Team != game.TeamRed {
		t.Errorf("goal team = %v, want Red", g.Team)
	}
	if g.Scorer != scorer.Index {
		t.Errorf("scorer = %d, want %d", g.Scorer, scorer.Index)
	}
	if g.Assist != helper.Index {
		t.Errorf("assist = %d, want %d", g.Assist, helper.Index)
	}
	if s.Scoreboard.RedScore != 1 {
		t.Errorf("red score = %d, want 1", s.Scoreboard.RedScore)
	}
}

func TestGoalAssistWindowExpired(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{})
	helper := addSkater(t, s, "helper", game.TeamRed, mgl32.Vec3{15, 1.5, 30})
	scorer := addSkater(t, s, "scorer", game.TeamRed, mgl32.Vec3{13, 1.5, 28})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 29})

	s.Scoreboard.Time = 5000
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: helper, Puck: 0},
	})
	// More than ten seconds of possession before the scorer's first touch.
	s.Scoreboard.Time = 3500
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: scorer, Puck: 0},
	})
	goals := m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckEnteredNet, Team: game.TeamBlue, Puck: 0},
	})

	if len(goals) != 1 {
		t.Fatalf("got %d goals, want 1", len(goals))
	}
	if goals[0].Scorer != scorer.Index {
		t.Errorf("scorer = %d, want %d", goals[0].Scorer, scorer.Index)
	}
	if goals[0].Assist >= 0 {
		t.Errorf("assist = %d, want unattributed", goals[0].Assist)
	}
}

func TestGoalDisallowedDuringOffside(t *testing.T) {
	s, m := newRulesMatch(t, MatchConfiguration{Offside: OffsideDelayed})
	passer := addSkater(t, s, "passer", game.TeamRed, mgl32.Vec3{15, 1.5, 35})
	addSkater(t, s, "attacker", game.TeamRed, mgl32.Vec3{15, 1.5, 10})
	spawnTestPuck(t, s, mgl32.Vec3{14, 1, 35})

	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckTouch, Player: passer, Puck: 0},
	})
	m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckEnteredOffensiveZone, Team: game.TeamRed},
	})
	if m.offside.kind != offsideWarning {
		t.Fatal("expected an offside warning before the shot")
	}

	goals := m.AfterTick(s, []physics.Event{
		{Kind: physics.EventPuckEnteredNet, Team: game.TeamBlue, Puck: 0},
	})
	if len(goals) != 0 {
		t.Fatalf("got %d goals on a delayed offside, want 0", len(goals))
	}
	if m.offside.kind != offsideCalled {
		t.Fatalf("offside kind %d, want called", m.offside.kind)
	}
	if s.Scoreboard.RedScore != 0 {
		t.Errorf("red score = %d, want 0", s.Scoreboard.RedScore)
	}
}

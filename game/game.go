package game

import (
	"fmt"
	"strconv"
)

// Team is one of the two sides of a hockey game.
type Team uint8

const (
	TeamRed Team = iota
	TeamBlue
)

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

func (t Team) String() string {
	if t == TeamRed {
		return "Red"
	}
	return "Blue"
}

// Num returns the wire representation of the team, with -1 reserved for
// spectators.
func (t Team) Num() int32 {
	if t == TeamRed {
		return 0
	}
	return 1
}

// PlayerIndex is a raw slot in the 64-entry player table.
type PlayerIndex int

// ParsePlayerIndex parses a player index from a chat command argument.
func ParsePlayerIndex(s string) (PlayerIndex, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= PlayerSlotCount {
		return 0, false
	}
	return PlayerIndex(n), true
}

// PlayerId identifies a player across slot reuse. The counter is bumped each
// time a slot is vacated, so stale ids fail lookup harmlessly.
type PlayerId struct {
	Index   PlayerIndex
	Counter uint32
}

func (id PlayerId) String() string {
	return fmt.Sprintf("%d", id.Index)
}

// PlayerSlotCount is the size of the player table.
const PlayerSlotCount = 64

// ObjectSlotCount is the size of the world object table. The first PuckSlots
// entries hold pucks, the rest skaters.
const ObjectSlotCount = 32

// ObjectIndex is a slot in the world object table.
type ObjectIndex int

// Input keybits as sent by clients.
const (
	KeyJump     = 0x1
	KeyCrouch   = 0x2
	KeyJoinRed  = 0x4
	KeyJoinBlue = 0x8
	KeyShift    = 0x10
	KeySpectate = 0x20
)

// PlayerInput is the per-tick control state received from a client.
type PlayerInput struct {
	StickAngle float32
	Turn       float32
	Fwbw       float32
	Stick      [2]float32
	HeadRot    float32
	BodyRot    float32
	Keys       uint32
}

func (i PlayerInput) Jump() bool     { return i.Keys&KeyJump != 0 }
func (i PlayerInput) Crouch() bool   { return i.Keys&KeyCrouch != 0 }
func (i PlayerInput) JoinRed() bool  { return i.Keys&KeyJoinRed != 0 }
func (i PlayerInput) JoinBlue() bool { return i.Keys&KeyJoinBlue != 0 }
func (i PlayerInput) Shift() bool    { return i.Keys&KeyShift != 0 }
func (i PlayerInput) Spectate() bool { return i.Keys&KeySpectate != 0 }

// Hand is the side a skater holds their stick on.
type Hand uint8

const (
	HandLeft Hand = iota
	HandRight
)

// RulesStateTag describes the rule situation shown to PingRules clients.
type RulesStateTag uint8

const (
	RulesRegular RulesStateTag = iota
	RulesOffside
	RulesIcing
)

// RulesState is the rule situation broadcast on the scoreboard.
type RulesState struct {
	Tag            RulesStateTag
	OffsideWarning bool
	IcingWarning   bool
}

// ScoreboardValues is the shared game clock and score state.
type ScoreboardValues struct {
	Rules            RulesState
	RedScore         uint32
	BlueScore        uint32
	Period           uint32
	Time             uint32
	GoalMessageTimer uint32
	GameOver         bool
}

// DefaultScoreboardValues returns the scoreboard a new game starts with.
func DefaultScoreboardValues() ScoreboardValues {
	return ScoreboardValues{
		Time: 30000,
	}
}

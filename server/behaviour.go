package server

import (
	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
)

// Behaviour implements the rules of a game mode on top of the server core.
// All callbacks run on the tick goroutine, so implementations may freely
// mutate server state without locking.
type Behaviour interface {
	// Init is called once when the server starts.
	Init(s *Server)

	// BeforeTick runs before the physics step. Spawning pucks and moving
	// players between teams must happen here, not in AfterTick.
	BeforeTick(s *Server)

	// AfterTick runs after the physics step with the events it produced.
	AfterTick(s *Server, events []physics.Event)

	// HandleCommand receives chat commands the server core did not consume.
	HandleCommand(s *Server, cmd, arg string, player game.PlayerId)

	// InitialGameValues supplies the scoreboard and puck slot count for a
	// new game.
	InitialGameValues() InitialGameValues

	// GameStarted is called when the first player activates a fresh game.
	GameStarted(s *Server)

	// BeforePlayerExit is called while the leaving player can still be
	// looked up.
	BeforePlayerExit(s *Server, player game.PlayerId, reason ExitReason)

	// AfterPlayerJoin is called right after a player has been added.
	AfterPlayerJoin(s *Server, player game.PlayerId)

	// ServerListTeamSize is the team size shown in the server browser.
	ServerListTeamSize() uint32

	// IncludeTickInRecording reports whether the current tick should be
	// appended to the game recording.
	IncludeTickInRecording(s *Server) bool
}

// NopBehaviour provides no-op defaults for the optional Behaviour callbacks.
// Embed it and override what the mode needs.
type NopBehaviour struct{}

func (NopBehaviour) Init(*Server)                                         {}
func (NopBehaviour) HandleCommand(*Server, string, string, game.PlayerId) {}
func (NopBehaviour) GameStarted(*Server)                                  {}
func (NopBehaviour) BeforePlayerExit(*Server, game.PlayerId, ExitReason)  {}
func (NopBehaviour) AfterPlayerJoin(*Server, game.PlayerId)               {}
func (NopBehaviour) IncludeTickInRecording(*Server) bool                  { return false }

// InitialGameValues seeds a new game.
type InitialGameValues struct {
	Values    game.ScoreboardValues
	PuckSlots int
}

// ExitReason says why a player is leaving.
type ExitReason uint8

const (
	ExitDisconnected ExitReason = iota
	ExitTimeout
	ExitAdminKicked
)

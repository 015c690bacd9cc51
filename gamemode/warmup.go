package gamemode

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/server"
)

// PermanentWarmup is a free-skate mode with no clock, no rules and no team
// size limit.
type PermanentWarmup struct {
	server.NopBehaviour

	pucks           int
	spawnPoint      SpawnPoint
	teamSwitchTimer map[game.PlayerId]uint32
}

// NewPermanentWarmup creates a warmup behaviour with the given number of
// pucks on the ice.
func NewPermanentWarmup(pucks int, spawnPoint SpawnPoint) *PermanentWarmup {
	return &PermanentWarmup{
		pucks:           pucks,
		spawnPoint:      spawnPoint,
		teamSwitchTimer: make(map[game.PlayerId]uint32),
	}
}

func (b *PermanentWarmup) BeforeTick(s *server.Server) {
	AddPlayers(s, game.PlayerSlotCount, b.teamSwitchTimer, nil,
		func(team game.Team, i int) (mgl32.Vec3, mgl32.Mat3) {
			return Spawnpoint(s.Rink(), team, b.spawnPoint)
		},
		nil, nil)
}

func (b *PermanentWarmup) AfterTick(s *server.Server, events []physics.Event) {}

func (b *PermanentWarmup) InitialGameValues() server.InitialGameValues {
	return server.InitialGameValues{
		Values:    game.DefaultScoreboardValues(),
		PuckSlots: b.pucks,
	}
}

func (b *PermanentWarmup) GameStarted(s *server.Server) {
	rink := s.Rink()
	lineStart := rink.Width/2.0 - 0.4*float32(b.pucks-1)
	for i := 0; i < b.pucks; i++ {
		pos := mgl32.Vec3{lineStart + 0.8*float32(i), 1.5, rink.Length / 2.0}
		s.SpawnPuck(pos, mgl32.Ident3())
	}
}

func (b *PermanentWarmup) BeforePlayerExit(s *server.Server, id game.PlayerId, _ server.ExitReason) {
	delete(b.teamSwitchTimer, id)
}

func (b *PermanentWarmup) ServerListTeamSize() uint32 {
	return 0
}

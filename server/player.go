package server

import (
	"net"
	"time"

	"github.com/chewxy/math32"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/protocol"
)

// MuteStatus is the chat state of a player.
type MuteStatus uint8

const (
	NotMuted MuteStatus = iota
	// ShadowMuted players see their own messages but nobody else does.
	ShadowMuted
	Muted
)

// Player is one occupied slot in the player table. Bots have a nil network
// state.
type Player struct {
	Name string
	// Skater is nil while the player spectates. Team and ObjectIndex are only
	// meaningful when Skater is set.
	Skater      *game.Skater
	ObjectIndex game.ObjectIndex
	Team        game.Team
	IsAdmin     bool
	Mute        MuteStatus
	Hand        game.Hand
	Input       game.PlayerInput
	net         *networkPlayer
}

// networkPlayer is the connection state of a remote player.
type networkPlayer struct {
	addr          net.UDPAddr
	version       protocol.ClientVersion
	inactivity    int
	knownPacket   uint32
	knownMsgPos   int
	chatRep       int
	deltatime     uint32
	lastPing      *ring[float32]
	viewPlayerIdx game.PlayerIndex
	gameID        uint32
	messages      []protocol.ServerMessage
}

const pingHistoryLength = 100

func newNetworkPlayer(addr net.UDPAddr, version protocol.ClientVersion, index game.PlayerIndex) *networkPlayer {
	return &networkPlayer{
		addr:          addr,
		version:       version,
		knownPacket:   ^uint32(0),
		gameID:        ^uint32(0),
		chatRep:       -1,
		lastPing:      newRing[float32](pingHistoryLength),
		viewPlayerIdx: index,
	}
}

// IsBot reports whether the slot is occupied by a server-controlled player.
func (p *Player) IsBot() bool {
	return p.net == nil
}

// HasSkater reports whether the player currently controls a skater object.
func (p *Player) HasSkater() bool {
	return p.Skater != nil
}

// resetGameState is called when a new game starts so clients resynchronize
// from scratch.
func (n *networkPlayer) resetGameState() {
	n.knownPacket = ^uint32(0)
	n.knownMsgPos = 0
	n.messages = n.messages[:0]
}

// PingData summarizes the recent round-trip times of a player, in seconds.
type PingData struct {
	Min          float32
	Max          float32
	Avg          float32
	DeviationAvg float32
}

// pingData returns ping statistics, or false if no samples exist yet.
func (n *networkPlayer) pingData() (PingData, bool) {
	if n.lastPing.len() == 0 {
		return PingData{}, false
	}
	min := float32(math32.Inf(1))
	max := float32(math32.Inf(-1))
	sum := float32(0)
	for i := 0; i < n.lastPing.len(); i++ {
		v := *n.lastPing.get(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	avg := sum / float32(n.lastPing.len())
	devSum := float32(0)
	for i := 0; i < n.lastPing.len(); i++ {
		d := *n.lastPing.get(i) - avg
		devSum += d * d
	}
	dev := math32.Sqrt(devSum / float32(n.lastPing.len()))
	return PingData{Min: min, Max: max, Avg: avg, DeviationAvg: dev}, true
}

// playerSlot pairs a player with the reuse counter of its table index.
type playerSlot struct {
	counter uint32
	player  *Player
}

func addrEqual(a, b net.UDPAddr) bool {
	return a.Port == b.Port && a.IP.Equal(b.IP)
}

// pingSample converts the packet round trip measured from the saved ping ring
// into seconds.
func pingSample(sent time.Time, now time.Time) float32 {
	return float32(now.Sub(sent).Seconds())
}

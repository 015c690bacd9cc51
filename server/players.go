package server

import (
	"net"
	"net/netip"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/protocol"
)

// realPlayerCount counts connected players, excluding bots.
func (s *Server) realPlayerCount() int {
	count := 0
	for i := range s.players {
		p := s.players[i].player
		if p != nil && p.net != nil {
			count++
		}
	}
	return count
}

// PlayerCount counts every occupied slot, bots included.
func (s *Server) PlayerCount() int {
	count := 0
	for i := range s.players {
		if s.players[i].player != nil {
			count++
		}
	}
	return count
}

// Player resolves an id, failing for stale counters after slot reuse.
func (s *Server) Player(id game.PlayerId) *Player {
	if id.Index < 0 || int(id.Index) >= len(s.players) {
		return nil
	}
	slot := &s.players[id.Index]
	if slot.player == nil || slot.counter != id.Counter {
		return nil
	}
	return slot.player
}

// PlayerAtIndex resolves a raw table index, as used by chat commands.
func (s *Server) PlayerAtIndex(index game.PlayerIndex) (game.PlayerId, *Player, bool) {
	if index < 0 || int(index) >= len(s.players) {
		return game.PlayerId{}, nil, false
	}
	slot := &s.players[index]
	if slot.player == nil {
		return game.PlayerId{}, nil, false
	}
	return game.PlayerId{Index: index, Counter: slot.counter}, slot.player, true
}

// Players visits every occupied slot until visit returns false.
func (s *Server) Players(visit func(id game.PlayerId, p *Player) bool) {
	for i := range s.players {
		slot := &s.players[i]
		if slot.player == nil {
			continue
		}
		if !visit(game.PlayerId{Index: game.PlayerIndex(i), Counter: slot.counter}, slot.player) {
			return
		}
	}
}

func (s *Server) findPlayerByAddr(addr net.UDPAddr) (game.PlayerId, *Player, bool) {
	for i := range s.players {
		slot := &s.players[i]
		p := slot.player
		if p == nil || p.net == nil {
			continue
		}
		if addrEqual(p.net.addr, addr) {
			return game.PlayerId{Index: game.PlayerIndex(i), Counter: slot.counter}, p, true
		}
	}
	return game.PlayerId{}, nil, false
}

func (s *Server) findEmptySlot() (game.PlayerIndex, bool) {
	for i := range s.players {
		if s.players[i].player == nil {
			return game.PlayerIndex(i), true
		}
	}
	return 0, false
}

func (s *Server) addPlayer(name string, addr net.UDPAddr) (game.PlayerId, bool) {
	index, ok := s.findEmptySlot()
	if !ok {
		return game.PlayerId{}, false
	}
	slot := &s.players[index]
	player := &Player{
		Name:        name,
		ObjectIndex: -1,
		net:         newNetworkPlayer(addr, protocol.ClientVanilla, index),
	}
	player.net.messages = append(player.net.messages, s.persistentMessages...)
	slot.player = player
	id := game.PlayerId{Index: index, Counter: slot.counter}
	s.addGlobalMessage(protocol.PlayerUpdateMessage{
		PlayerIndex: index,
		InServer:    true,
		PlayerName:  name,
		ObjectIndex: -1,
	}, true, true)
	return id, true
}

// AddBot inserts a server-controlled player into the table.
func (s *Server) AddBot(name string) (game.PlayerId, bool) {
	index, ok := s.findEmptySlot()
	if !ok {
		return game.PlayerId{}, false
	}
	slot := &s.players[index]
	slot.player = &Player{
		Name:        name,
		ObjectIndex: -1,
	}
	id := game.PlayerId{Index: index, Counter: slot.counter}
	s.addGlobalMessage(protocol.PlayerUpdateMessage{
		PlayerIndex: index,
		InServer:    true,
		PlayerName:  name,
		ObjectIndex: -1,
	}, true, true)
	return id, true
}

// RemovePlayer vacates a slot and bumps its reuse counter. Callers that care
// about the exit reason must invoke the behaviour callback first.
func (s *Server) RemovePlayer(id game.PlayerId) {
	s.removePlayer(id)
}

func (s *Server) removePlayer(id game.PlayerId) {
	player := s.Player(id)
	if player == nil {
		return
	}
	wasAdmin := player.IsAdmin
	slot := &s.players[id.Index]
	slot.player = nil
	slot.counter++
	s.addGlobalMessage(protocol.PlayerUpdateMessage{
		PlayerIndex: id.Index,
		InServer:    false,
		PlayerName:  player.Name,
		ObjectIndex: -1,
	}, true, true)
	if wasAdmin && !s.hasAdmin() {
		s.allowJoin = true
	}
}

func (s *Server) hasAdmin() bool {
	for i := range s.players {
		p := s.players[i].player
		if p != nil && p.IsAdmin {
			return true
		}
	}
	return false
}

// MoveToSpectator removes the player's skater from the ice.
func (s *Server) MoveToSpectator(id game.PlayerId) bool {
	player := s.Player(id)
	if player == nil || player.Skater == nil {
		return false
	}
	player.Skater = nil
	player.ObjectIndex = -1
	s.addGlobalMessage(protocol.PlayerUpdateMessage{
		PlayerIndex: id.Index,
		InServer:    true,
		PlayerName:  player.Name,
		ObjectIndex: -1,
	}, true, true)
	return true
}

// SpawnSkater puts the player on the ice for a team. An existing skater is
// repositioned; keepStick carries the stick along relative to the new body
// transform so mid-play teleports do not snap the blade.
func (s *Server) SpawnSkater(id game.PlayerId, team game.Team, pos mgl32.Vec3, rot mgl32.Mat3, keepStick bool) bool {
	player := s.Player(id)
	if player == nil {
		return false
	}
	if old := player.Skater; old != nil {
		fresh := game.NewSkater(pos, rot, player.Hand)
		if keepStick {
			oldBodyRotT := old.Body.Rot.Transpose()
			stickPosDiff := old.StickPos.Sub(old.Body.Pos)
			rotChange := rot.Mul3(oldBodyRotT)
			fresh.StickPos = pos.Add(rotChange.Mul3x1(stickPosDiff))
			fresh.StickRot = old.StickRot.Mul3(oldBodyRotT).Mul3(rot)
			fresh.StickPlacement = old.StickPlacement
		}
		player.Skater = fresh
		player.Team = team
	} else {
		objectIndex, ok := s.findEmptyPlayerObjectSlot()
		if !ok {
			return false
		}
		player.Skater = game.NewSkater(pos, rot, player.Hand)
		player.ObjectIndex = objectIndex
		player.Team = team
		if player.net != nil {
			player.net.viewPlayerIdx = id.Index
		}
	}
	s.addGlobalMessage(protocol.PlayerUpdateMessage{
		PlayerIndex: id.Index,
		InServer:    true,
		PlayerName:  player.Name,
		ObjectIndex: player.ObjectIndex,
		Team:        team,
	}, true, true)
	return true
}

// findEmptyPlayerObjectSlot picks a world object slot above the puck range.
func (s *Server) findEmptyPlayerObjectSlot() (game.ObjectIndex, bool) {
	var used uint32
	for i := range s.players {
		p := s.players[i].player
		if p != nil && p.Skater != nil {
			used |= 1 << uint(p.ObjectIndex)
		}
	}
	for i := s.puckSlots; i < game.ObjectSlotCount; i++ {
		if used&(1<<uint(i)) == 0 {
			return game.ObjectIndex(i), true
		}
	}
	return 0, false
}

// PuckSlots returns the number of world slots reserved for pucks.
func (s *Server) PuckSlots() int {
	return s.puckSlots
}

// Puck returns the puck in a world slot, nil when empty or out of range.
func (s *Server) Puck(index game.ObjectIndex) *game.Puck {
	if index < 0 || int(index) >= len(s.pucks) {
		return nil
	}
	return s.pucks[index]
}

// SpawnPuck places a puck in the first free puck slot.
func (s *Server) SpawnPuck(pos mgl32.Vec3, rot mgl32.Mat3) (game.ObjectIndex, bool) {
	for i := range s.pucks {
		if s.pucks[i] == nil {
			s.pucks[i] = game.NewPuck(pos, rot)
			return game.ObjectIndex(i), true
		}
	}
	return 0, false
}

// RemovePuck clears one puck slot.
func (s *Server) RemovePuck(index game.ObjectIndex) {
	if index >= 0 && int(index) < len(s.pucks) {
		s.pucks[index] = nil
	}
}

// RemoveAllPucks clears every puck slot.
func (s *Server) RemoveAllPucks() {
	for i := range s.pucks {
		s.pucks[i] = nil
	}
}

func addrIP(addr net.UDPAddr) (netip.Addr, bool) {
	ip, ok := netip.AddrFromSlice(addr.IP)
	return ip.Unmap(), ok
}

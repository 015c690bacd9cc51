package protocol

import (
	"github.com/crease-gg/crease/game"
)

// ObjectKind discriminates the entries of an object frame.
type ObjectKind uint8

const (
	ObjectNone ObjectKind = iota
	ObjectPuck
	ObjectSkater
)

// SkaterPacket is the quantized wire form of a skater.
type SkaterPacket struct {
	Pos      [3]uint32
	Rot      [2]uint32
	StickPos [3]uint32
	StickRot [2]uint32
	HeadRot  uint32
	BodyRot  uint32
}

// PuckPacket is the quantized wire form of a puck.
type PuckPacket struct {
	Pos [3]uint32
	Rot [2]uint32
}

// ObjectPacket is one slot of an object frame.
type ObjectPacket struct {
	Kind   ObjectKind
	Skater SkaterPacket
	Puck   PuckPacket
}

// ObjectFrame is the quantized state of all 32 object slots at one tick.
type ObjectFrame [game.ObjectSlotCount]ObjectPacket

// QuantizePosition clamps v into an unsigned bits-wide integer.
func QuantizePosition(bits uint8, v float32) uint32 {
	temp := int32(v)
	if temp < 0 {
		return 0
	}
	max := int32(1)<<bits - 1
	if temp > max {
		return uint32(max)
	}
	return uint32(temp)
}

// SkaterPacketOf quantizes a skater for the wire. Stick coordinates are
// relative to the body, biased by 4 metres.
func SkaterPacketOf(s *game.Skater) SkaterPacket {
	rot1, rot2 := ConvertMatrixToNetwork(31, s.Body.Rot)
	stickRot1, stickRot2 := ConvertMatrixToNetwork(25, s.StickRot)
	return SkaterPacket{
		Pos: [3]uint32{
			QuantizePosition(17, 1024.0*s.Body.Pos.X()),
			QuantizePosition(17, 1024.0*s.Body.Pos.Y()),
			QuantizePosition(17, 1024.0*s.Body.Pos.Z()),
		},
		Rot: [2]uint32{rot1, rot2},
		StickPos: [3]uint32{
			QuantizePosition(13, 1024.0*(s.StickPos.X()-s.Body.Pos.X()+4.0)),
			QuantizePosition(13, 1024.0*(s.StickPos.Y()-s.Body.Pos.Y()+4.0)),
			QuantizePosition(13, 1024.0*(s.StickPos.Z()-s.Body.Pos.Z()+4.0)),
		},
		StickRot: [2]uint32{stickRot1, stickRot2},
		HeadRot:  QuantizePosition(16, (s.HeadRot+2.0)*8192.0),
		BodyRot:  QuantizePosition(16, (s.BodyRot+2.0)*8192.0),
	}
}

// PuckPacketOf quantizes a puck for the wire.
func PuckPacketOf(p *game.Puck) PuckPacket {
	rot1, rot2 := ConvertMatrixToNetwork(31, p.Body.Rot)
	return PuckPacket{
		Pos: [3]uint32{
			QuantizePosition(17, 1024.0*p.Body.Pos.X()),
			QuantizePosition(17, 1024.0*p.Body.Pos.Y()),
			QuantizePosition(17, 1024.0*p.Body.Pos.Z()),
		},
		Rot: [2]uint32{rot1, rot2},
	}
}

// ServerMessage is a reliable event replicated to every client: chat lines,
// goals and player roster updates.
type ServerMessage interface {
	serverMessage()
}

// ChatMessage is a chat line. PlayerIndex is negative for server messages.
type ChatMessage struct {
	PlayerIndex game.PlayerIndex
	Message     string
}

// GoalMessage announces a scored goal. Negative player indices mean no
// scorer or no assist.
type GoalMessage struct {
	Team              game.Team
	GoalPlayerIndex   game.PlayerIndex
	AssistPlayerIndex game.PlayerIndex
}

// PlayerUpdateMessage announces a roster change. ObjectIndex is negative
// when the player has no skater on the ice.
type PlayerUpdateMessage struct {
	PlayerIndex game.PlayerIndex
	InServer    bool
	PlayerName  string
	ObjectIndex game.ObjectIndex
	Team        game.Team
}

func (ChatMessage) serverMessage()         {}
func (GoalMessage) serverMessage()         {}
func (PlayerUpdateMessage) serverMessage() {}

func playerIndexBits(i game.PlayerIndex) uint32 {
	if i < 0 {
		return ^uint32(0)
	}
	return uint32(i)
}

// WriteMessage appends one reliable message to the frame.
func WriteMessage(w *Writer, message ServerMessage) {
	switch m := message.(type) {
	case ChatMessage:
		w.WriteBits(6, 2)
		w.WriteBits(6, playerIndexBits(m.PlayerIndex))
		messageBytes := []byte(m.Message)
		size := len(messageBytes)
		if size > 63 {
			size = 63
		}
		w.WriteBits(6, uint32(size))
		for i := 0; i < size; i++ {
			w.WriteBits(7, uint32(messageBytes[i]))
		}
	case GoalMessage:
		w.WriteBits(6, 1)
		w.WriteBits(2, uint32(m.Team.Num()))
		w.WriteBits(6, playerIndexBits(m.GoalPlayerIndex))
		w.WriteBits(6, playerIndexBits(m.AssistPlayerIndex))
	case PlayerUpdateMessage:
		w.WriteBits(6, 0)
		w.WriteBits(6, uint32(m.PlayerIndex))

		objectIndex := ^uint32(0)
		teamNum := ^uint32(0)
		if m.InServer && m.ObjectIndex >= 0 {
			objectIndex = uint32(m.ObjectIndex)
			teamNum = uint32(m.Team.Num())
		}
		inServer := uint32(0)
		if m.InServer {
			inServer = 1
		}
		w.WriteBits(1, inServer)
		w.WriteBits(2, teamNum)
		w.WriteBits(6, objectIndex)

		nameBytes := []byte(m.PlayerName)
		for i := 0; i < 31; i++ {
			v := byte(0)
			if i < len(nameBytes) {
				v = nameBytes[i]
			}
			w.WriteBits(7, uint32(v))
		}
	}
}

// WriteObjects appends the object frame, delta-compressed against the frame
// the client last acknowledged. old is nil when no usable baseline exists.
func WriteObjects(w *Writer, current *ObjectFrame, old *ObjectFrame, currentPacket, knownPacket uint32) {
	w.WriteU32Aligned(currentPacket)
	w.WriteU32Aligned(knownPacket)

	for i := range current {
		cur := &current[i]
		var oldPacket *ObjectPacket
		if old != nil {
			oldPacket = &old[i]
		}
		switch cur.Kind {
		case ObjectPuck:
			var oldPuck *PuckPacket
			if oldPacket != nil && oldPacket.Kind == ObjectPuck {
				oldPuck = &oldPacket.Puck
			}
			w.WriteBits(1, 1)
			w.WriteBits(2, 1)
			for c := 0; c < 3; c++ {
				w.WritePos(17, cur.Puck.Pos[c], puckPosField(oldPuck, c))
			}
			w.WritePos(31, cur.Puck.Rot[0], puckRotField(oldPuck, 0))
			w.WritePos(31, cur.Puck.Rot[1], puckRotField(oldPuck, 1))
		case ObjectSkater:
			var oldSkater *SkaterPacket
			if oldPacket != nil && oldPacket.Kind == ObjectSkater {
				oldSkater = &oldPacket.Skater
			}
			w.WriteBits(1, 1)
			w.WriteBits(2, 0)
			s := &cur.Skater
			for c := 0; c < 3; c++ {
				w.WritePos(17, s.Pos[c], skaterPosField(oldSkater, c))
			}
			w.WritePos(31, s.Rot[0], skaterRotField(oldSkater, 0))
			w.WritePos(31, s.Rot[1], skaterRotField(oldSkater, 1))
			for c := 0; c < 3; c++ {
				w.WritePos(13, s.StickPos[c], skaterStickPosField(oldSkater, c))
			}
			w.WritePos(25, s.StickRot[0], skaterStickRotField(oldSkater, 0))
			w.WritePos(25, s.StickRot[1], skaterStickRotField(oldSkater, 1))
			var oldHead, oldBody *uint32
			if oldSkater != nil {
				oldHead, oldBody = &oldSkater.HeadRot, &oldSkater.BodyRot
			}
			w.WritePos(16, s.HeadRot, oldHead)
			w.WritePos(16, s.BodyRot, oldBody)
		default:
			w.WriteBits(1, 0)
		}
	}
}

func puckPosField(old *PuckPacket, c int) *uint32 {
	if old == nil {
		return nil
	}
	return &old.Pos[c]
}

func puckRotField(old *PuckPacket, c int) *uint32 {
	if old == nil {
		return nil
	}
	return &old.Rot[c]
}

func skaterPosField(old *SkaterPacket, c int) *uint32 {
	if old == nil {
		return nil
	}
	return &old.Pos[c]
}

func skaterRotField(old *SkaterPacket, c int) *uint32 {
	if old == nil {
		return nil
	}
	return &old.Rot[c]
}

func skaterStickPosField(old *SkaterPacket, c int) *uint32 {
	if old == nil {
		return nil
	}
	return &old.StickPos[c]
}

func skaterStickRotField(old *SkaterPacket, c int) *uint32 {
	if old == nil {
		return nil
	}
	return &old.StickRot[c]
}

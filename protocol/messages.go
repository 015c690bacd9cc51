package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
)

// Header is the 4-byte magic every datagram starts with.
var Header = [4]byte{'H', 'o', 'c', 'k'}

var (
	ErrWrongHeader = errors.New("protocol: wrong header")
	ErrUnknownType = errors.New("protocol: unknown message type")
)

// ClientVersion describes which optional fields a client's update packets
// carry.
type ClientVersion uint8

const (
	ClientVanilla ClientVersion = iota
	ClientPing
	ClientPingRules
)

// HasPing reports whether update packets include a deltatime field.
func (v ClientVersion) HasPing() bool {
	return v == ClientPing || v == ClientPingRules
}

// HasRules reports whether the client understands the rules-state field in
// game state frames.
func (v ClientVersion) HasRules() bool {
	return v == ClientPingRules
}

// ClientMessage is a parsed client-to-server datagram.
type ClientMessage interface {
	clientMessage()
}

// InfoRequest is a server browser ping.
type InfoRequest struct {
	Version uint32
	Ping    uint32
}

// Join is a connection request carrying the client's protocol version and
// requested name.
type Join struct {
	Version    uint32
	PlayerName string
}

// Update is the per-tick input packet.
type Update struct {
	CurrentGameId  uint32
	Input          game.PlayerInput
	Deltatime      uint32
	HasDeltatime   bool
	NewKnownPacket uint32
	KnownMsgPos    int
	ChatRep        uint8
	ChatMessage    string
	HasChat        bool
	Version        ClientVersion
}

// Exit is a voluntary disconnect.
type Exit struct{}

func (InfoRequest) clientMessage() {}
func (Join) clientMessage()        {}
func (Update) clientMessage()      {}
func (Exit) clientMessage()        {}

// ParseMessage decodes one client datagram.
func ParseMessage(src []byte) (ClientMessage, error) {
	r := NewReader(src)
	var header [4]byte
	r.ReadBytesAligned(header[:])
	if header != Header {
		return nil, ErrWrongHeader
	}

	command := r.ReadByteAligned()
	switch command {
	case 0:
		return parseInfoRequest(r), nil
	case 2:
		return parseJoin(r)
	case 4:
		return parseUpdate(r, ClientVanilla)
	case 8:
		return parseUpdate(r, ClientPing)
	case 0x10:
		return parseUpdate(r, ClientPingRules)
	case 7:
		return Exit{}, nil
	default:
		return nil, fmt.Errorf("%w: %#x", ErrUnknownType, command)
	}
}

func parseInfoRequest(r *Reader) InfoRequest {
	version := r.ReadBits(8)
	ping := r.ReadU32Aligned()
	return InfoRequest{Version: version, Ping: ping}
}

func parseJoin(r *Reader) (Join, error) {
	version := r.ReadBits(8)
	var nameBytes [32]byte
	r.ReadBytesAligned(nameBytes[:])
	name, err := playerName(nameBytes[:])
	if err != nil {
		return Join{}, err
	}
	return Join{Version: version, PlayerName: name}, nil
}

func parseUpdate(r *Reader, version ClientVersion) (Update, error) {
	currentGameId := r.ReadU32Aligned()

	stickAngle := r.ReadF32Aligned()
	turn := r.ReadF32Aligned()
	_ = r.ReadF32Aligned()
	fwbw := r.ReadF32Aligned()
	stickRot1 := r.ReadF32Aligned()
	stickRot2 := r.ReadF32Aligned()
	headRot := r.ReadF32Aligned()
	bodyRot := r.ReadF32Aligned()
	keys := r.ReadU32Aligned()
	input := game.PlayerInput{
		StickAngle: stickAngle,
		Turn:       turn,
		Fwbw:       fwbw,
		Stick:      mgl32.Vec2{stickRot1, stickRot2},
		HeadRot:    headRot,
		BodyRot:    bodyRot,
		Keys:       keys,
	}

	msg := Update{
		CurrentGameId: currentGameId,
		Input:         input,
		Version:       version,
	}
	if version.HasPing() {
		msg.Deltatime = r.ReadU32Aligned()
		msg.HasDeltatime = true
	}

	msg.NewKnownPacket = r.ReadU32Aligned()
	msg.KnownMsgPos = int(r.ReadU16Aligned())

	if r.ReadBits(1) == 1 {
		rep := uint8(r.ReadBits(3))
		byteNum := int(r.ReadBits(8))
		chatBytes := make([]byte, byteNum)
		r.ReadBytesAligned(chatBytes)
		if !utf8.Valid(chatBytes) {
			return Update{}, fmt.Errorf("protocol: chat message is not valid utf-8")
		}
		msg.ChatRep = rep
		msg.ChatMessage = string(chatBytes)
		msg.HasChat = true
	}
	return msg, nil
}

func playerName(b []byte) (string, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("protocol: player name is not valid utf-8")
	}
	if len(b) == 0 {
		return "Noname", nil
	}
	return string(b), nil
}

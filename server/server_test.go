package server

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/ban"
	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/protocol"
)

type stubBehaviour struct {
	NopBehaviour
}

func (stubBehaviour) BeforeTick(*Server)                 {}
func (stubBehaviour) AfterTick(*Server, []physics.Event) {}
func (stubBehaviour) ServerListTeamSize() uint32         { return 5 }
func (stubBehaviour) InitialGameValues() InitialGameValues {
	return InitialGameValues{Values: game.DefaultScoreboardValues(), PuckSlots: 1}
}

func newTestServer(t *testing.T, config Config) *Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log, config, game.DefaultPhysicsConfig(), stubBehaviour{}, ban.NewInMemory(), nil)
}

// pushFrames records n object frames, marking each with its push ordinal so
// tests can tell them apart.
func pushFrames(s *Server, n int) {
	for i := 0; i < n; i++ {
		var frame protocol.ObjectFrame
		frame[0] = protocol.ObjectPacket{
			Kind: protocol.ObjectPuck,
			Puck: protocol.PuckPacket{Pos: [3]uint32{uint32(i), 0, 0}},
		}
		s.savedPackets.push(frame)
		s.packet++
	}
}

func TestBaselineFrame(t *testing.T) {
	s := newTestServer(t, Config{PlayerMax: 4})
	pushFrames(s, 10)

	// The i:th pushed frame carried packet number i.
	if f := s.baselineFrame(8); f == nil {
		t.Fatal("expected a baseline for a recent acknowledgement")
	} else if got := f[0].Puck.Pos[0]; got != 8 {
		t.Errorf("baseline frame marker = %d, want 8", got)
	}
	if f := s.baselineFrame(s.packet); f != nil {
		t.Error("acknowledging the current packet must not yield a baseline")
	}
}

func TestBaselineFrameRollover(t *testing.T) {
	s := newTestServer(t, Config{PlayerMax: 4})
	pushFrames(s, 200)

	// Acknowledgements older than the 192-deep ring force a full update.
	if f := s.baselineFrame(6); f != nil {
		t.Error("acknowledgement older than the saved window must yield nil")
	}
	if f := s.baselineFrame(8); f == nil {
		t.Fatal("expected a baseline for the oldest retained frame")
	} else if got := f[0].Puck.Pos[0]; got != 8 {
		t.Errorf("baseline frame marker = %d, want 8", got)
	}
	if f := s.baselineFrame(199); f != nil {
		t.Error("acknowledging the current packet must not yield a baseline")
	}
}

func TestMessageWindow(t *testing.T) {
	cases := []struct {
		knownPos, total int
		wantPos, wantN  int
	}{
		{0, 0, 0, 0},
		{0, 5, 0, 5},
		{3, 5, 3, 2},
		{0, 40, 0, 15},
		{30, 40, 30, 10},
		{50, 40, 40, 0},
	}
	for _, c := range cases {
		pos, n := messageWindow(c.knownPos, c.total)
		if pos != c.wantPos || n != c.wantN {
			t.Errorf("messageWindow(%d, %d) = (%d, %d), want (%d, %d)",
				c.knownPos, c.total, pos, n, c.wantPos, c.wantN)
		}
	}
}

func TestInfoResponse(t *testing.T) {
	s := newTestServer(t, Config{PlayerMax: 4, ServerName: "Test server"})
	w := protocol.NewWriter(nil)
	s.writeInfoResponse(w, 0xAABBCCDD)

	r := protocol.NewReader(w.Bytes())
	var header [4]byte
	r.ReadBytesAligned(header[:])
	if header != protocol.Header {
		t.Fatalf("header = %q, want %q", header[:], protocol.Header[:])
	}
	if got := r.ReadByteAligned(); got != 1 {
		t.Errorf("message type = %d, want 1", got)
	}
	if got := r.ReadBits(8); got != clientCompatibilityVersion {
		t.Errorf("version = %d, want %d", got, clientCompatibilityVersion)
	}
	if got := r.ReadU32Aligned(); got != 0xAABBCCDD {
		t.Errorf("ping echo = %#x, want 0xaabbccdd", got)
	}
	if got := r.ReadBits(8); got != 0 {
		t.Errorf("player count = %d, want 0", got)
	}
	if got := r.ReadBits(4); got != 4 {
		t.Errorf("reserved nibble = %d, want 4", got)
	}
	if got := r.ReadBits(4); got != 5 {
		t.Errorf("team size = %d, want 5", got)
	}
	name := make([]byte, 32)
	r.ReadBytesAligned(name)
	if got := string(bytes.TrimRight(name, "\x00")); got != "Test server" {
		t.Errorf("server name = %q, want %q", got, "Test server")
	}
}

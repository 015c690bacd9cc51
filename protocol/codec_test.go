package protocol

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWriteBitsReadBits(t *testing.T) {
	w := NewWriter(nil)
	w.WriteBits(5, 0x15)
	w.WriteBits(7, 0x5a)
	w.WriteBits(13, 0x1abc)
	w.WriteBits(32, 0xdeadbeef)
	w.WriteBits(1, 1)

	r := NewReader(w.Bytes())
	if got := r.ReadBits(5); got != 0x15 {
		t.Errorf("ReadBits(5) = %#x, want 0x15", got)
	}
	if got := r.ReadBits(7); got != 0x5a {
		t.Errorf("ReadBits(7) = %#x, want 0x5a", got)
	}
	if got := r.ReadBits(13); got != 0x1abc {
		t.Errorf("ReadBits(13) = %#x, want 0x1abc", got)
	}
	if got := r.ReadBits(32); got != 0xdeadbeef {
		t.Errorf("ReadBits(32) = %#x, want 0xdeadbeef", got)
	}
	if got := r.ReadBits(1); got != 1 {
		t.Errorf("ReadBits(1) = %d, want 1", got)
	}
}

func TestWritePosDeltaRanges(t *testing.T) {
	tests := []struct {
		name string
		old  uint32
		v    uint32
	}{
		{"same", 5000, 5000},
		{"small down", 5000, 4996},
		{"small up", 5000, 5003},
		{"medium down", 5000, 4968},
		{"medium up", 5000, 5031},
		{"large down", 5000, 2952},
		{"large up", 5000, 7047},
		{"out of range down", 5000, 2000},
		{"out of range up", 5000, 9000},
		{"max", 0, 1<<17 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(nil)
			old := tt.old
			w.WritePos(17, tt.v, &old)

			r := NewReader(w.Bytes())
			oldRead := tt.old
			if got := r.ReadPos(17, &oldRead); got != tt.v {
				t.Errorf("ReadPos = %d, want %d", got, tt.v)
			}
		})
	}
}

func TestWritePosWithoutBaseline(t *testing.T) {
	w := NewWriter(nil)
	w.WritePos(17, 12345, nil)

	r := NewReader(w.Bytes())
	if got := r.ReadBits(2); got != 3 {
		t.Fatalf("selector = %d, want 3", got)
	}
	if got := r.ReadBits(17); got != 12345 {
		t.Errorf("value = %d, want 12345", got)
	}
}

func TestReadBitsSigned(t *testing.T) {
	w := NewWriter(nil)
	neg := int32(-17)
	w.WriteBits(6, uint32(neg)&0x3f)
	w.WriteBits(6, 17)

	r := NewReader(w.Bytes())
	if got := r.ReadBitsSigned(6); got != -17 {
		t.Errorf("ReadBitsSigned = %d, want -17", got)
	}
	if got := r.ReadBitsSigned(6); got != 17 {
		t.Errorf("ReadBitsSigned = %d, want 17", got)
	}
}

func TestRotationRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    mgl32.Mat3
	}{
		{"identity", mgl32.Ident3()},
		{"quarter turn", mgl32.Rotate3DY(mgl32.DegToRad(90))},
		{"half turn", mgl32.Rotate3DY(mgl32.DegToRad(180))},
		{"tilted", mgl32.Rotate3DY(1.2).Mul3(mgl32.Rotate3DX(0.4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v1, v2 := ConvertMatrixToNetwork(31, tt.m)
			got := ConvertMatrixFromNetwork(31, v1, v2)
			for i := 0; i < 9; i++ {
				if diff := got[i] - tt.m[i]; diff > 1e-3 || diff < -1e-3 {
					t.Fatalf("matrix mismatch at %d: got %v, want %v", i, got, tt.m)
				}
			}
		})
	}
}

func TestQuantizePositionClamps(t *testing.T) {
	if got := QuantizePosition(17, -5.0); got != 0 {
		t.Errorf("negative position = %d, want 0", got)
	}
	if got := QuantizePosition(17, 1e9); got != 1<<17-1 {
		t.Errorf("huge position = %d, want %d", got, 1<<17-1)
	}
	if got := QuantizePosition(17, 2048.0); got != 2048 {
		t.Errorf("position = %d, want 2048", got)
	}
}

func TestParseMessageHeader(t *testing.T) {
	if _, err := ParseMessage([]byte{'H', 'q', 'm', 'x', 0}); err != ErrWrongHeader {
		t.Errorf("bad header error = %v, want ErrWrongHeader", err)
	}
	if _, err := ParseMessage([]byte{'H', 'o', 'c', 'k', 0xaa}); err == nil {
		t.Error("unknown command should fail")
	}
}

func TestParseInfoRequest(t *testing.T) {
	msg, err := ParseMessage([]byte{'H', 'o', 'c', 'k', 0, 55, 0x12, 0x34, 0x56, 0x78})
	if err != nil {
		t.Fatal(err)
	}
	info, ok := msg.(InfoRequest)
	if !ok {
		t.Fatalf("message type %T, want InfoRequest", msg)
	}
	if info.Version != 55 {
		t.Errorf("version = %d, want 55", info.Version)
	}
	if info.Ping != 0x78563412 {
		t.Errorf("ping = %#x, want 0x78563412", info.Ping)
	}
}

func TestParseJoin(t *testing.T) {
	data := []byte{'H', 'o', 'c', 'k', 2, 55}
	var name [32]byte
	copy(name[:], "tester")
	data = append(data, name[:]...)

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatal(err)
	}
	join, ok := msg.(Join)
	if !ok {
		t.Fatalf("message type %T, want Join", msg)
	}
	if join.PlayerName != "tester" {
		t.Errorf("name = %q, want %q", join.PlayerName, "tester")
	}

	data = []byte{'H', 'o', 'c', 'k', 2, 55}
	data = append(data, make([]byte, 32)...)
	msg, err = ParseMessage(data)
	if err != nil {
		t.Fatal(err)
	}
	if join := msg.(Join); join.PlayerName != "Noname" {
		t.Errorf("empty name = %q, want Noname", join.PlayerName)
	}
}

func TestParseExit(t *testing.T) {
	msg, err := ParseMessage([]byte{'H', 'o', 'c', 'k', 7})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(Exit); !ok {
		t.Errorf("message type %T, want Exit", msg)
	}
}

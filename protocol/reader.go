package protocol

import "math"

// Reader unpacks bit fields from a datagram. Reads past the end of the
// buffer return zero bytes instead of failing, matching the client.
type Reader struct {
	buf    []byte
	pos    int
	bitPos uint8
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) safeGetByte(pos int) byte {
	if pos < len(r.buf) {
		return r.buf[pos]
	}
	return 0
}

func (r *Reader) ReadByteAligned() byte {
	r.align()
	res := r.safeGetByte(r.pos)
	r.pos++
	return res
}

func (r *Reader) ReadBytesAligned(out []byte) {
	r.align()
	for i := range out {
		out[i] = r.safeGetByte(r.pos + i)
	}
	r.pos += len(out)
}

func (r *Reader) ReadU16Aligned() uint16 {
	r.align()
	b1 := uint16(r.safeGetByte(r.pos))
	b2 := uint16(r.safeGetByte(r.pos + 1))
	r.pos += 2
	return b1 | b2<<8
}

func (r *Reader) ReadU32Aligned() uint32 {
	r.align()
	b1 := uint32(r.safeGetByte(r.pos))
	b2 := uint32(r.safeGetByte(r.pos + 1))
	b3 := uint32(r.safeGetByte(r.pos + 2))
	b4 := uint32(r.safeGetByte(r.pos + 3))
	r.pos += 4
	return b1 | b2<<8 | b3<<16 | b4<<24
}

func (r *Reader) ReadF32Aligned() float32 {
	return math.Float32frombits(r.ReadU32Aligned())
}

// ReadPos is the inverse of Writer.WritePos. old must be non-nil whenever a
// delta selector arrives; the result is clamped at zero.
func (r *Reader) ReadPos(b uint8, old *uint32) uint32 {
	posType := r.ReadBits(2)
	switch posType {
	case 0, 1, 2:
		widths := [3]uint8{3, 6, 12}
		diff := r.ReadBitsSigned(widths[posType])
		v := int32(*old) + diff
		if v < 0 {
			v = 0
		}
		return uint32(v)
	default:
		return r.ReadBits(b)
	}
}

func (r *Reader) ReadBitsSigned(b uint8) int32 {
	a := r.ReadBits(b)
	if a >= 1<<(b-1) {
		return int32(^uint32(0)<<b) | int32(a)
	}
	return int32(a)
}

// ReadBits reads n bits, LSB first.
func (r *Reader) ReadBits(b uint8) uint32 {
	bitsRemaining := b
	res := uint32(0)
	p := uint8(0)
	for bitsRemaining > 0 {
		bitsPossibleToWrite := 8 - r.bitPos
		bits := bitsRemaining
		if bitsPossibleToWrite < bits {
			bits = bitsPossibleToWrite
		}
		var mask byte
		if bits == 8 {
			mask = 0xff
		} else {
			mask = ^(byte(0xff) << bits)
		}
		a := uint32((r.safeGetByte(r.pos) >> r.bitPos) & mask)
		res |= a << p

		if bitsRemaining >= bitsPossibleToWrite {
			bitsRemaining -= bitsPossibleToWrite
			r.bitPos = 0
			r.pos++
			p += bits
		} else {
			r.bitPos += bitsRemaining
			bitsRemaining = 0
		}
	}
	return res
}

func (r *Reader) align() {
	if r.bitPos > 0 {
		r.bitPos = 0
		r.pos++
	}
}

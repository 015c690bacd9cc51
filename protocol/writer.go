// Package protocol implements the "Hock" UDP wire format: a little-endian
// bit-packed codec for client commands, server state frames and the
// delta-compressed object stream.
package protocol

// Writer packs bit fields into a byte buffer. Aligned writes reset the bit
// cursor to the next whole byte.
type Writer struct {
	buf    []byte
	bitPos uint8
}

// NewWriter returns a Writer appending to buf. Pass a sliced-to-zero buffer
// from a pool to avoid allocation on the send path.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Bytes returns everything written so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of whole bytes written, including a partially
// filled trailing byte.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteByteAligned(v byte) {
	w.bitPos = 0
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBytesAligned(v []byte) {
	w.bitPos = 0
	w.buf = append(w.buf, v...)
}

// WriteBytesAlignedPadded writes exactly n bytes, truncating or
// zero-padding v as needed.
func (w *Writer) WriteBytesAlignedPadded(n int, v []byte) {
	w.bitPos = 0
	m := n
	if len(v) < m {
		m = len(v)
	}
	w.buf = append(w.buf, v[:m]...)
	for i := m; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteU32Aligned(v uint32) {
	w.bitPos = 0
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WritePos writes a quantized coordinate as a delta against its value in the
// client's last acknowledged frame. Small deltas take 5, 8 or 14 bits; a
// missing or out-of-range delta falls back to the full n-bit value.
func (w *Writer) WritePos(n uint8, v uint32, old *uint32) {
	var diff int32
	if old != nil {
		diff = int32(v) - int32(*old)
	}
	switch {
	case old != nil && diff >= -4 && diff <= 3:
		w.WriteBits(2, 0)
		w.WriteBits(3, uint32(diff))
	case old != nil && diff >= -32 && diff <= 31:
		w.WriteBits(2, 1)
		w.WriteBits(6, uint32(diff))
	case old != nil && diff >= -2048 && diff <= 2047:
		w.WriteBits(2, 2)
		w.WriteBits(12, uint32(diff))
	default:
		w.WriteBits(2, 3)
		w.WriteBits(n, v)
	}
}

// WriteBits writes the low n bits of v, LSB first.
func (w *Writer) WriteBits(n uint8, v uint32) {
	toWrite := v
	if n < 32 {
		toWrite &= ^(^uint32(0) << n)
	}
	bitsRemaining := n
	p := uint8(0)
	for bitsRemaining > 0 {
		bitsPossibleToWrite := 8 - w.bitPos
		bits := bitsRemaining
		if bitsPossibleToWrite < bits {
			bits = bitsPossibleToWrite
		}
		mask := ^(^uint32(0) << bits)
		a := byte((toWrite >> p) & mask)

		if w.bitPos == 0 {
			w.buf = append(w.buf, a)
		} else {
			w.buf[len(w.buf)-1] |= a << w.bitPos
		}

		if bitsRemaining >= bitsPossibleToWrite {
			bitsRemaining -= bitsPossibleToWrite
			w.bitPos = 0
			p += bits
		} else {
			w.bitPos += bits
			bitsRemaining = 0
		}
	}
}

// ReplayFix appends a zero byte when the writer is byte-aligned, so that
// recorded frames always end with a partially consumed byte the way the
// client's replay parser expects.
func (w *Writer) ReplayFix() {
	if w.bitPos == 0 {
		w.buf = append(w.buf, 0)
	}
}

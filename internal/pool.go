package internal

import "sync"

// PacketPool recycles datagram buffers used on the UDP receive and send
// paths. Callers must reslice to zero length before writing.
var PacketPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 4096)
		return &b
	},
}

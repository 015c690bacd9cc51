// Package ban decides which addresses may join the server.
package ban

import (
	"net/netip"
	"sync"
)

// Checker is consulted on every join attempt and mutated by admin commands.
type Checker interface {
	// IsBanned reports whether the address is currently banned.
	IsBanned(addr netip.Addr) bool
	// Ban adds the address to the ban list.
	Ban(addr netip.Addr)
	// ClearAll removes every ban.
	ClearAll()
}

// InMemory is a ban list that lives only as long as the process.
type InMemory struct {
	mu    sync.Mutex
	addrs map[netip.Addr]struct{}
}

// NewInMemory returns an empty in-memory ban list.
func NewInMemory() *InMemory {
	return &InMemory{addrs: make(map[netip.Addr]struct{})}
}

func (b *InMemory) IsBanned(addr netip.Addr) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.addrs[addr.Unmap()]
	return ok
}

func (b *InMemory) Ban(addr netip.Addr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrs[addr.Unmap()] = struct{}{}
}

func (b *InMemory) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrs = make(map[netip.Addr]struct{})
}

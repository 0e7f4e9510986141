package ip

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"sync"
)

// LeaseBits is the prefix length of one point-to-point lease.
const LeaseBits = 30

var (
	ErrPoolExhausted = errors.New("address pool exhausted")
	ErrInvalidSubnet = errors.New("invalid subnet")
	ErrUnknownLease  = errors.New("unknown lease")
)

// Lease is one /30 block: network, local (.1), peer (.2), broadcast.
type Lease struct {
	index int
	Local netip.Prefix
	Peer  netip.Addr
}

func (l Lease) String() string {
	return fmt.Sprintf("%s peer %s", l.Local, l.Peer)
}

// Pool hands out /30 blocks of an IPv4 subnet, one per relay session.
type Pool struct {
	mu     sync.Mutex
	base   uint32
	blocks int
	used   []bool
	next   int
}

func NewPool(subnet netip.Prefix) (*Pool, error) {
	if !subnet.IsValid() || !subnet.Addr().Is4() {
		return nil, fmt.Errorf("%w: %s (IPv4 required)", ErrInvalidSubnet, subnet)
	}
	if subnet.Bits() > LeaseBits {
		return nil, fmt.Errorf("%w: %s is smaller than /%d", ErrInvalidSubnet, subnet, LeaseBits)
	}
	subnet = subnet.Masked()
	arr := subnet.Addr().As4()
	blocks := 1 << (LeaseBits - subnet.Bits())
	return &Pool{
		base:   binary.BigEndian.Uint32(arr[:]),
		blocks: blocks,
		used:   make([]bool, blocks),
	}, nil
}

// Acquire returns the next free block, scanning round-robin so a just
// released block is not reused immediately.
func (p *Pool) Acquire() (Lease, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < p.blocks; i++ {
		idx := (p.next + i) % p.blocks
		if p.used[idx] {
			continue
		}
		p.used[idx] = true
		p.next = (idx + 1) % p.blocks
		return p.lease(idx), nil
	}
	return Lease{}, ErrPoolExhausted
}

func (p *Pool) Release(l Lease) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l.index < 0 || l.index >= p.blocks || !p.used[l.index] || p.lease(l.index) != l {
		return fmt.Errorf("%w: %s", ErrUnknownLease, l)
	}
	p.used[l.index] = false
	return nil
}

func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, u := range p.used {
		if u {
			n++
		}
	}
	return n
}

func (p *Pool) Capacity() int {
	return p.blocks
}

func (p *Pool) lease(idx int) Lease {
	network := p.base + uint32(idx)<<(32-LeaseBits)
	return Lease{
		index: idx,
		Local: netip.PrefixFrom(addrFrom(network+1), LeaseBits),
		Peer:  addrFrom(network + 2),
	}
}

func addrFrom(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

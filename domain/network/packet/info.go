package packet

import (
	"encoding/binary"
	"net/netip"
)

// Info is a view over one packet's header fields.
// Fields are meaningful only when Classify reported success.
type Info struct {
	IsIPv4                bool
	IsTCP                 bool
	SourceAddress         uint32
	DestAddress           uint32
	SourcePort            uint16
	DestPort              uint16
	IPHeaderLength        int
	TransportHeaderLength int
}

// Truncated reports a TCP packet whose buffer ends before the fixed TCP header
// or whose data offset is below the minimum. Port fields are zero in that case.
func (i Info) Truncated() bool {
	return i.IsTCP && i.TransportHeaderLength == 0
}

func (i Info) Source() netip.Addr {
	return addrFromUint32(i.SourceAddress)
}

func (i Info) Destination() netip.Addr {
	return addrFromUint32(i.DestAddress)
}

func addrFromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

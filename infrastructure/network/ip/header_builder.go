package ip

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"golang.org/x/net/ipv4"
)

const (
	ProtoTCP = 6
	ProtoUDP = 17

	tcpHeaderLen = 20
	defaultTTL   = 64
)

// HeaderBuilder assembles minimal IPv4 datagrams.
type HeaderBuilder struct{}

func NewHeaderBuilder() *HeaderBuilder {
	return &HeaderBuilder{}
}

// BuildIPv4Packet builds header(20B) + payload with the checksum filled in.
func (h HeaderBuilder) BuildIPv4Packet(src, dst netip.Addr, proto, ttl uint8, payload []byte) ([]byte, error) {
	if !src.Is4() || !dst.Is4() {
		return nil, fmt.Errorf("IPv4 addresses required")
	}
	total := ipv4.HeaderLen + len(payload)
	if total > 0xFFFF {
		return nil, fmt.Errorf("packet too large: %d", total)
	}
	out := make([]byte, total)

	out[0] = 0x45
	binary.BigEndian.PutUint16(out[2:4], uint16(total))
	out[8] = ttl
	out[9] = proto

	srcBytes := src.As4()
	dstBytes := dst.As4()
	copy(out[12:16], srcBytes[:])
	copy(out[16:20], dstBytes[:])
	copy(out[ipv4.HeaderLen:], payload)

	binary.BigEndian.PutUint16(out[10:12], checksum(out[:ipv4.HeaderLen]))
	return out, nil
}

// BuildTCPSegment builds an IPv4 packet carrying a bare TCP header
// (data offset 5, SYN set) followed by data. The TCP checksum is left zero.
func (h HeaderBuilder) BuildTCPSegment(src, dst netip.AddrPort, data []byte) ([]byte, error) {
	seg := make([]byte, tcpHeaderLen+len(data))
	binary.BigEndian.PutUint16(seg[0:2], src.Port())
	binary.BigEndian.PutUint16(seg[2:4], dst.Port())
	seg[12] = 5 << 4
	seg[13] = 0x02
	binary.BigEndian.PutUint16(seg[14:16], 0xFFFF)
	copy(seg[tcpHeaderLen:], data)
	return h.BuildIPv4Packet(src.Addr(), dst.Addr(), ProtoTCP, defaultTTL, seg)
}

func checksum(hdr []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(hdr); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(hdr[i : i+2]))
	}
	for (sum >> 16) != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

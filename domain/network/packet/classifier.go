package packet

import "encoding/binary"

const (
	// MinIPv4HeaderLength is the size of an IPv4 header without options.
	MinIPv4HeaderLength = 20
	// MinTCPHeaderLength is the size of a TCP header without options.
	MinTCPHeaderLength = 20

	ProtocolTCP = 6
)

// Classify parses the IPv4 and TCP headers of b far enough to decide filtering.
// It reads only within len(b), never writes to b and does not allocate.
//
// ok is false for buffers shorter than a minimal IPv4 header, for non-IPv4
// packets and for a declared header length that is malformed or exceeds the buffer.
// A non-TCP IPv4 packet is a valid result with IsTCP=false.
func Classify(b []byte) (info Info, ok bool) {
	if len(b) < MinIPv4HeaderLength {
		return Info{}, false
	}
	if b[0]>>4 != 4 {
		return Info{}, false
	}
	ihl := int(b[0]&0x0F) * 4
	if ihl < MinIPv4HeaderLength || len(b) < ihl {
		return Info{}, false
	}

	info.IsIPv4 = true
	info.IPHeaderLength = ihl
	info.SourceAddress = binary.BigEndian.Uint32(b[12:16])
	info.DestAddress = binary.BigEndian.Uint32(b[16:20])

	if b[9] != ProtocolTCP {
		return info, true
	}
	info.IsTCP = true

	// truncated segment: valid IP, ports untrusted
	if len(b) < ihl+MinTCPHeaderLength {
		return info, true
	}

	tcp := b[ihl:]
	dataOffset := int(tcp[12]>>4) * 4
	if dataOffset < MinTCPHeaderLength {
		return info, true
	}
	info.SourcePort = binary.BigEndian.Uint16(tcp[0:2])
	info.DestPort = binary.BigEndian.Uint16(tcp[2:4])
	info.TransportHeaderLength = dataOffset
	return info, true
}

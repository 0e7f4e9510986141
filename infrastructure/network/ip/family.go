package ip

import "golang.org/x/sys/unix"

// Family returns the address family of a raw IP packet from its version
// nibble, or 0 when the buffer is not IPv4 or IPv6.
func Family(packet []byte) int {
	if len(packet) == 0 {
		return 0
	}
	switch packet[0] >> 4 {
	case 4:
		return unix.AF_INET
	case 6:
		return unix.AF_INET6
	default:
		return 0
	}
}

//go:build linux

package ip

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

var ErrPassthroughFamily = errors.New("passthrough supports IPv4 only")

// RawSender re-emits captured IPv4 packets unchanged through a raw socket
// with IP_HDRINCL. A non-zero mark is set with SO_MARK so policy routing can
// keep them out of the capture device.
type RawSender struct {
	conn *ipv4.RawConn
	pc   net.PacketConn
}

func NewRawSender(mark int) (*RawSender, error) {
	pc, err := net.ListenPacket("ip4:255", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("open raw socket: %w", err)
	}
	if mark != 0 {
		if err := setMark(pc, mark); err != nil {
			_ = pc.Close()
			return nil, err
		}
	}
	rc, err := ipv4.NewRawConn(pc)
	if err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("raw conn: %w", err)
	}
	return &RawSender{conn: rc, pc: pc}, nil
}

// Send writes packet as is. The header is parsed only to hand the kernel the
// split it expects; addresses, options and payload are not modified.
func (s *RawSender) Send(packet []byte) error {
	if Family(packet) != unix.AF_INET {
		return ErrPassthroughFamily
	}
	h, err := ipv4.ParseHeader(packet)
	if err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	if h.Len > len(packet) {
		return fmt.Errorf("header length %d exceeds packet %d", h.Len, len(packet))
	}
	return s.conn.WriteTo(h, packet[h.Len:], nil)
}

func (s *RawSender) Close() error {
	return s.conn.Close()
}

func setMark(pc net.PacketConn, mark int) error {
	sc, ok := pc.(syscall.Conn)
	if !ok {
		return fmt.Errorf("raw socket does not expose a file descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_MARK, mark)
	}); err != nil {
		return err
	}
	if sockErr != nil {
		return fmt.Errorf("set SO_MARK %d: %w", mark, sockErr)
	}
	return nil
}

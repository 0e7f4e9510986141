//go:build linux

package interception

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charisbit/net-rewire/application/network/interception"
	"github.com/charisbit/net-rewire/infrastructure/network/ip"

	"golang.org/x/sys/unix"
	wgtun "golang.zx2c4.com/wireguard/tun"
)

// DefaultOffset is the headroom reserved in front of every packet buffer.
// The Linux driver needs room for a virtio-net header when offloads are on.
const DefaultOffset = 16

var (
	ErrUnsupportedFamily = errors.New("unsupported address family")
	ErrPacketTooLarge    = errors.New("packet larger than buffer")
)

// PacketSender emits a captured packet on the host's normal path.
type PacketSender interface {
	Send(packet []byte) error
	Close() error
}

var _ interception.Interceptor = (*Interceptor)(nil)

// Interceptor captures outbound packets from a TUN device that routing policy
// points at, and writes tunnel-received packets back into it.
//
// ReadPacket must be called from a single goroutine. Passthrough and
// Reinject may be called concurrently with it.
type Interceptor struct {
	dev    wgtun.Device
	sender PacketSender
	offset int

	// read side, owned by the ReadPacket caller
	bufs    [][]byte
	sizes   []int
	pending int
	cursor  int

	wmu  sync.Mutex
	wbuf []byte

	once     sync.Once
	closeErr error
}

func NewInterceptor(dev wgtun.Device, sender PacketSender, mtu int) *Interceptor {
	batch := dev.BatchSize()
	if batch < 1 {
		batch = 1
	}
	bufSize := DefaultOffset + mtu
	bufs := make([][]byte, batch)
	for i := range bufs {
		bufs[i] = make([]byte, bufSize)
	}
	return &Interceptor{
		dev:    dev,
		sender: sender,
		offset: DefaultOffset,
		bufs:   bufs,
		sizes:  make([]int, batch),
		wbuf:   make([]byte, bufSize),
	}
}

// ReadPacket returns the next captured packet, reading a new batch from the
// device when the previous one is drained. Order within and across batches
// is the device order.
func (i *Interceptor) ReadPacket(p []byte) (int, interception.Family, error) {
	for i.cursor >= i.pending {
		n, err := i.dev.Read(i.bufs, i.sizes, i.offset)
		if err != nil {
			if errors.Is(err, wgtun.ErrTooManySegments) && n > 0 {
				i.pending, i.cursor = n, 0
				break
			}
			if isClosed(err) {
				return 0, 0, fmt.Errorf("%w: %w", interception.ErrClosed, err)
			}
			return 0, 0, err
		}
		i.pending, i.cursor = n, 0
	}

	idx := i.cursor
	i.cursor++
	size := i.sizes[idx]
	if size > len(p) {
		return 0, 0, fmt.Errorf("%w: %d > %d", ErrPacketTooLarge, size, len(p))
	}
	pkt := i.bufs[idx][i.offset : i.offset+size]
	copy(p, pkt)
	return size, interception.Family(ip.Family(pkt)), nil
}

// Passthrough re-emits an IPv4 packet unchanged. IPv6 is not forwarded.
func (i *Interceptor) Passthrough(p []byte, family interception.Family) error {
	if family != unix.AF_INET {
		return fmt.Errorf("%w: %d", ErrUnsupportedFamily, family)
	}
	return i.sender.Send(p)
}

// Reinject writes a tunnel-received packet into the device so the host stack
// receives it as if it had arrived from the network.
func (i *Interceptor) Reinject(p []byte) error {
	i.wmu.Lock()
	defer i.wmu.Unlock()
	if i.offset+len(p) > len(i.wbuf) {
		return fmt.Errorf("%w: %d", ErrPacketTooLarge, len(p))
	}
	n := copy(i.wbuf[i.offset:], p)
	if _, err := i.dev.Write([][]byte{i.wbuf[:i.offset+n]}, i.offset); err != nil {
		return err
	}
	return nil
}

// Close releases the device and the passthrough socket, unblocking ReadPacket.
func (i *Interceptor) Close() error {
	i.once.Do(func() {
		i.closeErr = errors.Join(i.dev.Close(), i.sender.Close())
	})
	return i.closeErr
}

// isClosed reports errors produced by reads on a closed device.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, unix.EBADF)
}

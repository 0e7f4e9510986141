//go:build linux

package relay

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/tun"
	"github.com/charisbit/net-rewire/infrastructure/PAL/exec_commander"
	"github.com/charisbit/net-rewire/infrastructure/PAL/linux/ioctl"
	"github.com/charisbit/net-rewire/infrastructure/PAL/linux/ip"
	"github.com/charisbit/net-rewire/infrastructure/PAL/linux/tun/epoll"
	netip4 "github.com/charisbit/net-rewire/infrastructure/network/ip"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

// teardownTimeout bounds interface removal, which runs after the session
// context is already cancelled.
const teardownTimeout = 5 * time.Second

// maxNameProbes bounds the search for an unused interface name.
const maxNameProbes = 1024

var ErrNoInterfaceName = errors.New("no free interface name")

type wrapFunc func(f *os.File) (tun.Device, error)

// TunFactory creates one point-to-point TUN interface per relay session.
type TunFactory struct {
	ip     ip.Contract
	ioctl  ioctl.Contract
	wrap   wrapFunc
	pool   *netip4.Pool
	cfg    settings.RelayInterface
	logger logging.Logger

	mu    sync.Mutex
	next  int
	names map[string]struct{}
}

func NewTunFactory(cfg settings.RelayInterface, logger logging.Logger) (*TunFactory, error) {
	pool, err := netip4.NewPool(cfg.Subnet)
	if err != nil {
		return nil, err
	}
	return newTunFactory(
		cfg,
		pool,
		ip.NewWrapper(exec_commander.NewExecCommander()),
		ioctl.NewWrapper(ioctl.DefaultTunPath),
		func(f *os.File) (tun.Device, error) { return epoll.NewDevice(f) },
		logger,
	), nil
}

func newTunFactory(
	cfg settings.RelayInterface,
	pool *netip4.Pool,
	ipc ip.Contract,
	ioc ioctl.Contract,
	wrap wrapFunc,
	logger logging.Logger,
) *TunFactory {
	return &TunFactory{
		ip:     ipc,
		ioctl:  ioc,
		wrap:   wrap,
		pool:   pool,
		cfg:    cfg,
		logger: logger,
		names:  make(map[string]struct{}),
	}
}

// Create leases an address block, creates and configures the interface and
// attaches to it. Every step already taken is rolled back on failure.
func (f *TunFactory) Create(ctx context.Context) (_ tun.Interface, err error) {
	lease, err := f.pool.Acquire()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = f.pool.Release(lease)
		}
	}()

	name, err := f.reserveName(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.releaseName(name)
		}
	}()

	created := false
	defer func() {
		if err != nil && created {
			if delErr := f.ip.LinkDelete(context.WithoutCancel(ctx), name); delErr != nil {
				f.logger.Printf("failed to rollback TUN %s after create error: %v", name, delErr)
			}
		}
	}()

	if err = f.ip.TunTapAddDevTun(ctx, name); err != nil {
		return nil, fmt.Errorf("could not create tuntap dev: %w", err)
	}
	created = true

	if err = f.ip.LinkSetDevMTU(ctx, name, settings.ResolveMTU(f.cfg.MTU)); err != nil {
		return nil, fmt.Errorf("could not set mtu on tuntap dev: %w", err)
	}
	if err = f.ip.AddrAddDevPeer(ctx, name, lease.Local.String(), lease.Peer.String()); err != nil {
		return nil, fmt.Errorf("could not assign address to tuntap dev: %w", err)
	}
	if err = f.ip.LinkSetDevUp(ctx, name); err != nil {
		return nil, fmt.Errorf("could not set tuntap dev up: %w", err)
	}

	file, err := f.ioctl.CreateTunInterface(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open TUN interface: %w", err)
	}
	dev, err := f.wrap(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to wrap TUN interface: %w", err)
	}

	return &sessionInterface{
		Device:  dev,
		name:    name,
		lease:   lease,
		factory: f,
	}, nil
}

func (f *TunFactory) reserveName(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < maxNameProbes; i++ {
		name := f.cfg.InterfaceName(f.next)
		f.next = (f.next + 1) % maxNameProbes
		if _, taken := f.names[name]; taken {
			continue
		}
		// a leftover from an unclean shutdown keeps its name
		if f.ip.LinkExists(ctx, name) {
			continue
		}
		f.names[name] = struct{}{}
		return name, nil
	}
	return "", ErrNoInterfaceName
}

func (f *TunFactory) releaseName(name string) {
	f.mu.Lock()
	delete(f.names, name)
	f.mu.Unlock()
}

func (f *TunFactory) dispose(s *sessionInterface) error {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	closeErr := s.Device.Close()
	delErr := f.ip.LinkDelete(ctx, s.name)
	f.releaseName(s.name)
	relErr := f.pool.Release(s.lease)
	return errors.Join(closeErr, delErr, relErr)
}

type sessionInterface struct {
	tun.Device
	name    string
	lease   netip4.Lease
	factory *TunFactory
	once    sync.Once
	err     error
}

func (s *sessionInterface) Name() string            { return s.name }
func (s *sessionInterface) LocalAddr() netip.Prefix { return s.lease.Local }
func (s *sessionInterface) PeerAddr() netip.Addr    { return s.lease.Peer }

// Close closes the device, deletes the link and returns the lease. Safe to
// call more than once.
func (s *sessionInterface) Close() error {
	s.once.Do(func() {
		s.err = s.factory.dispose(s)
	})
	return s.err
}

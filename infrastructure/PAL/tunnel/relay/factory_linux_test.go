//go:build linux

package relay

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charisbit/net-rewire/application/network/tun"
	"github.com/charisbit/net-rewire/infrastructure/logging"
	netip4 "github.com/charisbit/net-rewire/infrastructure/network/ip"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

type fakeIP struct {
	mu       sync.Mutex
	calls    []string
	existing map[string]bool
	failOn   string
}

func (f *fakeIP) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.HasPrefix(call, f.failOn) {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeIP) TunTapAddDevTun(_ context.Context, dev string) error {
	return f.record("add " + dev)
}
func (f *fakeIP) LinkDelete(_ context.Context, dev string) error {
	return f.record("del " + dev)
}
func (f *fakeIP) LinkExists(_ context.Context, dev string) bool {
	return f.existing[dev]
}
func (f *fakeIP) LinkSetDevUp(_ context.Context, dev string) error {
	return f.record("up " + dev)
}
func (f *fakeIP) LinkSetDevMTU(_ context.Context, dev string, _ int) error {
	return f.record("mtu " + dev)
}
func (f *fakeIP) AddrAddDevPeer(_ context.Context, dev, local, peer string) error {
	return f.record("addr " + dev + " " + local + " " + peer)
}

func (f *fakeIP) joined() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.calls, ";")
}

type fakeIoctl struct {
	dir string
	err error
}

func (f *fakeIoctl) CreateTunInterface(name string) (*os.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	return os.Create(filepath.Join(f.dir, name))
}

func (f *fakeIoctl) DetectTunNameFromFd(fd *os.File) (string, error) {
	return filepath.Base(fd.Name()), nil
}

type fakeDevice struct {
	closed bool
}

func (d *fakeDevice) Read([]byte) (int, error)    { return 0, nil }
func (d *fakeDevice) Write(p []byte) (int, error) { return len(p), nil }
func (d *fakeDevice) Close() error                { d.closed = true; return nil }

func newTestFactory(t *testing.T, subnet string, ipc *fakeIP, ioc *fakeIoctl) (*TunFactory, *[]*fakeDevice) {
	t.Helper()
	cfg := settings.DefaultRelayInterface()
	cfg.Subnet = netip.MustParsePrefix(subnet)
	pool, err := netip4.NewPool(cfg.Subnet)
	if err != nil {
		t.Fatal(err)
	}
	devices := &[]*fakeDevice{}
	wrap := func(f *os.File) (tun.Device, error) {
		_ = f.Close()
		d := &fakeDevice{}
		*devices = append(*devices, d)
		return d, nil
	}
	return newTunFactory(cfg, pool, ipc, ioc, wrap, logging.NewLogLogger()), devices
}

func TestTunFactory_CreateAndClose(t *testing.T) {
	ipc := &fakeIP{}
	f, devices := newTestFactory(t, "10.8.0.0/24", ipc, &fakeIoctl{dir: t.TempDir()})

	iface, err := f.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if iface.Name() != "rwtun0" {
		t.Fatalf("name %s", iface.Name())
	}
	if iface.LocalAddr() != netip.MustParsePrefix("10.8.0.1/30") || iface.PeerAddr() != netip.MustParseAddr("10.8.0.2") {
		t.Fatalf("addresses %s %s", iface.LocalAddr(), iface.PeerAddr())
	}
	want := "add rwtun0;mtu rwtun0;addr rwtun0 10.8.0.1/30 10.8.0.2;up rwtun0"
	if ipc.joined() != want {
		t.Fatalf("calls %q", ipc.joined())
	}
	if f.pool.InUse() != 1 {
		t.Fatalf("in use %d", f.pool.InUse())
	}

	if err := iface.Close(); err != nil {
		t.Fatal(err)
	}
	if err := iface.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !(*devices)[0].closed {
		t.Fatal("device not closed")
	}
	if !strings.HasSuffix(ipc.joined(), "del rwtun0") || strings.Count(ipc.joined(), "del") != 1 {
		t.Fatalf("expected exactly one link delete, calls %q", ipc.joined())
	}
	if f.pool.InUse() != 0 {
		t.Fatalf("lease not released, in use %d", f.pool.InUse())
	}
}

func TestTunFactory_DistinctInterfacesPerSession(t *testing.T) {
	ipc := &fakeIP{existing: map[string]bool{"rwtun1": true}}
	f, _ := newTestFactory(t, "10.8.0.0/24", ipc, &fakeIoctl{dir: t.TempDir()})

	a, err := f.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.Name() == b.Name() || b.Name() != "rwtun2" {
		t.Fatalf("names %s %s", a.Name(), b.Name())
	}
	if a.LocalAddr() == b.LocalAddr() {
		t.Fatal("sessions share an address block")
	}
}

func TestTunFactory_RollbackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		failOn  string
		ioctl   error
		deleted bool
	}{
		{"tuntap add", "add", nil, false},
		{"set mtu", "mtu", nil, true},
		{"assign address", "addr", nil, true},
		{"link up", "up", nil, true},
		{"open device", "", errors.New("EBUSY"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ipc := &fakeIP{failOn: tt.failOn}
			f, _ := newTestFactory(t, "10.8.0.0/29", ipc, &fakeIoctl{dir: t.TempDir(), err: tt.ioctl})
			if _, err := f.Create(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			if got := strings.Contains(ipc.joined(), "del rwtun0"); got != tt.deleted {
				t.Fatalf("link deleted=%v, calls %q", got, ipc.joined())
			}
			if f.pool.InUse() != 0 {
				t.Fatal("lease leaked")
			}
			if _, taken := f.names["rwtun0"]; taken {
				t.Fatal("name leaked")
			}
		})
	}
}

func TestTunFactory_PoolExhaustion(t *testing.T) {
	f, _ := newTestFactory(t, "10.8.0.0/30", &fakeIP{}, &fakeIoctl{dir: t.TempDir()})
	if _, err := f.Create(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Create(context.Background()); !errors.Is(err, netip4.ErrPoolExhausted) {
		t.Fatalf("want ErrPoolExhausted, got %v", err)
	}
}

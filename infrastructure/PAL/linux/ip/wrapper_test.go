package ip

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockCommander struct {
	calls  [][]string
	output string
	err    error
}

func (m *mockCommander) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	return []byte(m.output), m.err
}

func (m *mockCommander) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	return []byte(m.output), m.err
}

func (m *mockCommander) last() string {
	if len(m.calls) == 0 {
		return ""
	}
	return strings.Join(m.calls[len(m.calls)-1], " ")
}

func TestWrapper_Commands(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(Contract) error
		want string
	}{
		{"tuntap add", func(c Contract) error { return c.TunTapAddDevTun(ctx, "rwtun0") }, "ip tuntap add dev rwtun0 mode tun"},
		{"link delete", func(c Contract) error { return c.LinkDelete(ctx, "rwtun0") }, "ip link delete rwtun0"},
		{"link up", func(c Contract) error { return c.LinkSetDevUp(ctx, "rwtun0") }, "ip link set dev rwtun0 up"},
		{"mtu", func(c Contract) error { return c.LinkSetDevMTU(ctx, "rwtun0", 1400) }, "ip link set dev rwtun0 mtu 1400"},
		{"addr peer", func(c Contract) error { return c.AddrAddDevPeer(ctx, "rwtun0", "10.8.0.1/30", "10.8.0.2") }, "ip addr add 10.8.0.1/30 peer 10.8.0.2 dev rwtun0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockCommander{}
			if err := tt.call(NewWrapper(m)); err != nil {
				t.Fatal(err)
			}
			if m.last() != tt.want {
				t.Fatalf("got %q want %q", m.last(), tt.want)
			}
		})
	}
}

func TestWrapper_ErrorsCarryOutput(t *testing.T) {
	m := &mockCommander{output: "RTNETLINK answers: File exists\n", err: errors.New("exit status 2")}
	err := NewWrapper(m).TunTapAddDevTun(context.Background(), "rwtun0")
	if err == nil || !strings.Contains(err.Error(), "failed to create TUN") || !strings.Contains(err.Error(), "File exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWrapper_LinkExists(t *testing.T) {
	if !NewWrapper(&mockCommander{}).LinkExists(context.Background(), "rwtun0") {
		t.Fatal("expected link to exist")
	}
	if NewWrapper(&mockCommander{err: errors.New("not found")}).LinkExists(context.Background(), "rwtun0") {
		t.Fatal("expected link to be absent")
	}
}

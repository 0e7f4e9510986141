package ip

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charisbit/net-rewire/infrastructure/PAL/exec_commander"
)

// Wrapper is a wrapper around ip command from the iproute2 tool collection
type Wrapper struct {
	commander exec_commander.Commander
}

func NewWrapper(commander exec_commander.Commander) Contract {
	return &Wrapper{commander: commander}
}

// TunTapAddDevTun Adds new TUN device
func (i *Wrapper) TunTapAddDevTun(ctx context.Context, devName string) error {
	output, err := i.commander.CombinedOutput(ctx, "ip", "tuntap", "add", "dev", devName, "mode", "tun")
	if err != nil {
		return fmt.Errorf("failed to create TUN %v: %v, output: %s", devName, err, trim(output))
	}
	return nil
}

// LinkDelete Deletes network device by name
func (i *Wrapper) LinkDelete(ctx context.Context, devName string) error {
	output, err := i.commander.CombinedOutput(ctx, "ip", "link", "delete", devName)
	if err != nil {
		return fmt.Errorf("failed to delete interface %v: %v, output: %s", devName, err, trim(output))
	}
	return nil
}

// LinkExists reports whether a network device with this name is present
func (i *Wrapper) LinkExists(ctx context.Context, devName string) bool {
	_, err := i.commander.Output(ctx, "ip", "link", "show", "dev", devName)
	return err == nil
}

// LinkSetDevUp Sets network device status as UP
func (i *Wrapper) LinkSetDevUp(ctx context.Context, devName string) error {
	output, err := i.commander.CombinedOutput(ctx, "ip", "link", "set", "dev", devName, "up")
	if err != nil {
		return fmt.Errorf("failed to start TUN %v: %v, output: %s", devName, err, trim(output))
	}
	return nil
}

// LinkSetDevMTU sets device MTU
func (i *Wrapper) LinkSetDevMTU(ctx context.Context, devName string, mtu int) error {
	output, err := i.commander.CombinedOutput(ctx, "ip", "link", "set", "dev", devName, "mtu", strconv.Itoa(mtu))
	if err != nil {
		return fmt.Errorf("failed to set mtu on %v: %v, output: %s", devName, err, trim(output))
	}
	return nil
}

// AddrAddDevPeer assigns a point-to-point address: local is a CIDR, peer a bare address
func (i *Wrapper) AddrAddDevPeer(ctx context.Context, devName, local, peer string) error {
	output, err := i.commander.CombinedOutput(ctx, "ip", "addr", "add", local, "peer", peer, "dev", devName)
	if err != nil {
		return fmt.Errorf("failed to assign %s peer %s to %v: %v, output: %s", local, peer, devName, err, trim(output))
	}
	return nil
}

func trim(b []byte) string {
	return strings.TrimSpace(string(b))
}

package ip

import "context"

type Contract interface {
	TunTapAddDevTun(ctx context.Context, devName string) error
	LinkDelete(ctx context.Context, devName string) error
	LinkExists(ctx context.Context, devName string) bool
	LinkSetDevUp(ctx context.Context, devName string) error
	LinkSetDevMTU(ctx context.Context, devName string, mtu int) error
	AddrAddDevPeer(ctx context.Context, devName, local, peer string) error
}

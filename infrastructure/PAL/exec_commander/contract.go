package exec_commander

import "context"

// Commander abstracts command execution so callers can be tested with fakes.
type Commander interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

//go:build !windows

package elevation

import "testing"

func TestIsElevated(t *testing.T) {
	tests := []struct {
		name string
		euid int
		want bool
	}{
		{"root", 0, true},
		{"user", 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ProcessElevationImpl{geteuid: func() int { return tt.euid }}
			if got := p.IsElevated(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHint(t *testing.T) {
	if h := NewProcessElevation().Hint(); h == "" {
		t.Fatal("expected non-empty hint")
	}
}

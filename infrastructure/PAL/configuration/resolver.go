package configuration

import (
	"os"
	"path/filepath"
)

// Resolver resolves a configuration file path.
type Resolver interface {
	Resolve() (string, error)
}

// PathResolver resolves to a fixed path, falling back to a default when empty.
type PathResolver struct {
	path     string
	fallback string
}

func NewPathResolver(path, fallback string) Resolver {
	return &PathResolver{path: path, fallback: fallback}
}

func (r PathResolver) Resolve() (string, error) {
	if r.path != "" {
		return filepath.Abs(r.path)
	}
	return r.fallback, nil
}

// DefaultPath returns /etc/netrewire/<name>.
func DefaultPath(name string) string {
	return filepath.Join(string(os.PathSeparator), "etc", "netrewire", name)
}

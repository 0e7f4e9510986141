package args

import "os"

// Provider yields the command line without the program name.
type Provider interface {
	Args() []string
}

type DefaultProvider struct {
}

func NewDefaultProvider() Provider {
	return &DefaultProvider{}
}

func (d *DefaultProvider) Args() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}

// StaticProvider returns a fixed argument list.
type StaticProvider []string

func (s StaticProvider) Args() []string {
	return s
}

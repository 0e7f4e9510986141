package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Validatable is implemented by every configuration document.
type Validatable interface {
	Validate() error
}

// Stat abstracts os.Stat for tests.
type Stat interface {
	Stat(name string) (os.FileInfo, error)
}

type DefaultStat struct{}

func (DefaultStat) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// Load reads path into a fresh T, writing def there first when the file does
// not exist yet. The result is validated.
func Load[T any, PT interface {
	*T
	Validatable
}](stat Stat, path string, def func() *T) (*T, error) {
	if _, statErr := stat.Stat(path); statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			return nil, statErr
		}
		if writeErr := Write(path, def()); writeErr != nil {
			return nil, fmt.Errorf("could not write default configuration: %w", writeErr)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := new(T)
	if err := json.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w", path, err)
	}
	if err := PT(conf).Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w", path, err)
	}
	return conf, nil
}

// Write stores v as indented JSON. The file is replaced atomically so a
// watcher never observes a half-written document.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".netrewire-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package configuration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type doc struct {
	Name string `json:"Name"`
	Port int    `json:"Port"`
}

func (d *doc) Validate() error {
	if d.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

type failingStat struct{ err error }

func (f failingStat) Stat(string) (os.FileInfo, error) { return nil, f.err }

func TestLoad_WritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "conf.json")
	conf, err := Load[doc](DefaultStat{}, path, func() *doc { return &doc{Name: "x", Port: 25} })
	if err != nil {
		t.Fatal(err)
	}
	if conf.Port != 25 {
		t.Fatalf("got %+v", conf)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default not written: %v", err)
	}
	if !strings.Contains(string(data), `"Port": 25`) {
		t.Fatalf("unexpected file %s", data)
	}
}

func TestLoad_ReadsExistingAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	if err := os.WriteFile(path, []byte(`{"Name":"y","Port":0}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load[doc](DefaultStat{}, path, func() *doc { return &doc{Port: 1} })
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	_ = os.WriteFile(path, []byte(`{`), 0o600)
	if _, err := Load[doc](DefaultStat{}, path, func() *doc { return &doc{Port: 1} }); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_StatError(t *testing.T) {
	boom := errors.New("permission denied")
	_, err := Load[doc](failingStat{err: boom}, "/nowhere", func() *doc { return &doc{Port: 1} })
	if !errors.Is(err, boom) {
		t.Fatalf("want stat error, got %v", err)
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	if err := Write(path, &doc{Name: "a", Port: 1}); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "conf.json" {
		t.Fatalf("unexpected dir contents %v", entries)
	}
}

func TestPathResolver(t *testing.T) {
	p, _ := NewPathResolver("", "/etc/netrewire/agent.json").Resolve()
	if p != "/etc/netrewire/agent.json" {
		t.Fatalf("fallback %s", p)
	}
	p, _ = NewPathResolver("/tmp/a.json", "x").Resolve()
	if p != "/tmp/a.json" {
		t.Fatalf("explicit %s", p)
	}
	if DefaultPath("relay.json") != "/etc/netrewire/relay.json" {
		t.Fatal(DefaultPath("relay.json"))
	}
}

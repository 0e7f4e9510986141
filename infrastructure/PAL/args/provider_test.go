package args

import (
	"os"
	"reflect"
	"testing"
)

func TestDefaultProvider_SkipsProgramName(t *testing.T) {
	saved := os.Args
	defer func() { os.Args = saved }()

	os.Args = []string{"netrewire", "c", "/tmp/agent.json"}
	if got := NewDefaultProvider().Args(); !reflect.DeepEqual(got, []string{"c", "/tmp/agent.json"}) {
		t.Fatalf("got %v", got)
	}
	os.Args = []string{"netrewire"}
	if got := NewDefaultProvider().Args(); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestStaticProvider(t *testing.T) {
	if got := (StaticProvider{"s"}).Args(); len(got) != 1 || got[0] != "s" {
		t.Fatalf("got %v", got)
	}
}

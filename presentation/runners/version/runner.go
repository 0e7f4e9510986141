package version

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charisbit/net-rewire/domain/app"
)

// Tag is set via ldflags by the release build.
var Tag = ""

// devel is reported for builds with neither a tag nor a module version.
const devel = "devel"

type Runner struct {
	out io.Writer
}

func NewRunner(out io.Writer) *Runner { return &Runner{out: out} }

func (r *Runner) Run(_ context.Context) {
	_, _ = fmt.Fprintf(r.out, "%s %s %s/%s\n", app.Name, Current(), runtime.GOOS, runtime.GOARCH)
}

// Current returns the release tag, falling back to the module version
// recorded by `go install`.
func Current() string {
	if tag := strings.TrimSpace(Tag); tag != "" {
		return tag
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return devel
}

package trafficstats

import (
	"testing"
	"time"
)

func TestRecorder_FlushesAtThreshold(t *testing.T) {
	c := NewCollector(time.Second, 0)
	SetGlobal(c)
	t.Cleanup(func() { SetGlobal(nil) })

	r := NewRecorder(Upstream)
	r.Record(1500)
	if c.Snapshot().Up.Packets != 0 {
		t.Fatal("recorded below threshold must stay local")
	}
	r.Record(int(HotPathFlushThresholdBytes))
	s := c.Snapshot().Up
	if s.Packets != 2 || s.Bytes != 1500+HotPathFlushThresholdBytes {
		t.Fatalf("unexpected %+v", s)
	}
}

func TestRecorder_FlushDrains(t *testing.T) {
	c := NewCollector(time.Second, 0)
	SetGlobal(c)
	t.Cleanup(func() { SetGlobal(nil) })

	r := NewRecorder(Downstream)
	r.Record(100)
	r.Flush()
	r.Flush()
	if s := c.Snapshot().Down; s.Packets != 1 || s.Bytes != 100 {
		t.Fatalf("unexpected %+v", s)
	}
}

func TestRecorder_NoGlobalIsNoop(t *testing.T) {
	SetGlobal(nil)
	r := NewRecorder(Upstream)
	r.Record(100)
	r.Flush()
	if SnapshotGlobal() != (Snapshot{}) {
		t.Fatal("expected empty snapshot")
	}
}

func TestHotPath_NoAllocs(t *testing.T) {
	c := NewCollector(time.Second, 0)
	SetGlobal(c)
	t.Cleanup(func() { SetGlobal(nil) })

	r := NewRecorder(Upstream)
	allocs := testing.AllocsPerRun(1000, func() {
		r.Record(1500)
		AddPacket(Downstream, 900)
	})
	if allocs != 0 {
		t.Fatalf("expected zero allocations in hot path, got %.2f", allocs)
	}
}

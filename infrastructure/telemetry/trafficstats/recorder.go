package trafficstats

// Recorder batches packet and byte counts for one direction and flushes them
// to a Collector once HotPathFlushThresholdBytes have accumulated.
//
// A Recorder is not safe for concurrent use; each forwarding loop owns one.
// Call Flush (typically via defer) to drain the remainder.
type Recorder struct {
	collector *Collector
	dir       Direction
	packets   uint64
	bytes     uint64
}

// NewRecorder binds to the current Global() collector. With no global
// collector all calls are no-ops.
func NewRecorder(d Direction) Recorder {
	return Recorder{collector: Global(), dir: d}
}

func (r *Recorder) Record(size int) {
	if r.collector == nil || size <= 0 {
		return
	}
	r.packets++
	r.bytes += uint64(size)
	if r.bytes >= HotPathFlushThresholdBytes {
		r.Flush()
	}
}

func (r *Recorder) Flush() {
	if r.collector == nil || r.packets == 0 {
		return
	}
	r.collector.Add(r.dir, r.packets, r.bytes)
	r.packets, r.bytes = 0, 0
}

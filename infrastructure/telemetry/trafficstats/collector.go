package trafficstats

import (
	"context"
	"sync/atomic"
	"time"
)

// Direction is relative to the tunnel: Upstream flows from the captured host
// towards the relay interface, Downstream flows back.
type Direction int

const (
	Upstream Direction = iota
	Downstream
)

func (d Direction) String() string {
	if d == Upstream {
		return "up"
	}
	return "down"
}

type DirectionSnapshot struct {
	Packets uint64
	Bytes   uint64
	Rate    uint64 // bytes/sec
}

type Snapshot struct {
	Up   DirectionSnapshot
	Down DirectionSnapshot
}

const HotPathFlushThresholdBytes uint64 = 64 * 1024

type counter struct {
	packets atomic.Uint64
	bytes   atomic.Uint64
	rate    atomic.Uint64

	// sampler goroutine only
	last uint64
	ema  float64
}

func (c *counter) add(packets, bytes uint64) {
	if packets != 0 {
		c.packets.Add(packets)
	}
	if bytes != 0 {
		c.bytes.Add(bytes)
	}
}

func (c *counter) sample(seconds, alpha float64) {
	now := c.bytes.Load()
	perSec := float64(now-c.last) / seconds
	c.last = now
	if alpha > 0 {
		if c.ema == 0 {
			c.ema = perSec
		} else {
			c.ema = alpha*perSec + (1-alpha)*c.ema
		}
		perSec = c.ema
	}
	c.rate.Store(uint64(perSec))
}

func (c *counter) snapshot() DirectionSnapshot {
	return DirectionSnapshot{
		Packets: c.packets.Load(),
		Bytes:   c.bytes.Load(),
		Rate:    c.rate.Load(),
	}
}

// Collector totals tunneled traffic per direction and keeps an optionally
// smoothed byte rate, sampled by Start.
type Collector struct {
	dirs [2]counter

	sampleInterval time.Duration
	emaAlpha       float64
	started        atomic.Bool
}

func NewCollector(sampleInterval time.Duration, emaAlpha float64) *Collector {
	if sampleInterval <= 0 {
		sampleInterval = time.Second
	}
	if emaAlpha < 0 {
		emaAlpha = 0
	}
	if emaAlpha > 1 {
		emaAlpha = 1
	}
	return &Collector{
		sampleInterval: sampleInterval,
		emaAlpha:       emaAlpha,
	}
}

// Start samples rates until ctx is done. Only the first call has an effect.
func (c *Collector) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	ticker := time.NewTicker(c.sampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.updateRates(c.sampleInterval)
		}
	}
}

// Add is allocation-free and intended for hot paths.
func (c *Collector) Add(d Direction, packets, bytes uint64) {
	c.dirs[d&1].add(packets, bytes)
}

// AddPacket counts one packet of size bytes.
func (c *Collector) AddPacket(d Direction, size int) {
	if size <= 0 {
		return
	}
	c.Add(d, 1, uint64(size))
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Up:   c.dirs[Upstream].snapshot(),
		Down: c.dirs[Downstream].snapshot(),
	}
}

func (c *Collector) updateRates(interval time.Duration) {
	seconds := interval.Seconds()
	if seconds <= 0 {
		return
	}
	for i := range c.dirs {
		c.dirs[i].sample(seconds, c.emaAlpha)
	}
}

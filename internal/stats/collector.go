package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ringSize is how many one-second samples the collector keeps.
const ringSize = 60

// Reader is the subset of Collector presenters read.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	RollingBlocksPerSec(seconds int) float64
	SparklineData(n int) []float64
	ETA() time.Duration
}

// ReadTicker is a Reader that presenters also drive once per second.
type ReadTicker interface {
	Reader
	Tick()
}

// Collector tracks signature run statistics using lock-free atomic counters.
type Collector struct {
	blocksHashed     atomic.Int64
	blocksFailed     atomic.Int64
	blocksMismatched atomic.Int64
	bytesHashed      atomic.Int64
	blocksTotal      atomic.Int64
	bytesTotal       atomic.Int64
	startTime        time.Time

	// Per-second deltas, written only by the presenter's Tick.
	mu         sync.Mutex
	bytes      ring
	blocks     ring
	lastBytes  int64
	lastBlocks int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records the block and byte counts of the input.
func (c *Collector) SetTotals(blocks, bytes int64) {
	c.blocksTotal.Store(blocks)
	c.bytesTotal.Store(bytes)
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BlocksHashed     int64
	BlocksFailed     int64
	BlocksMismatched int64
	BytesHashed      int64
	BlocksTotal      int64
	BytesTotal       int64
	Elapsed          time.Duration
}

func (c *Collector) AddBlocksHashed(n int64)     { c.blocksHashed.Add(n) }
func (c *Collector) AddBlocksFailed(n int64)     { c.blocksFailed.Add(n) }
func (c *Collector) AddBlocksMismatched(n int64) { c.blocksMismatched.Add(n) }
func (c *Collector) AddBytesHashed(n int64)      { c.bytesHashed.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		BlocksHashed:     c.blocksHashed.Load(),
		BlocksFailed:     c.blocksFailed.Load(),
		BlocksMismatched: c.blocksMismatched.Load(),
		BytesHashed:      c.bytesHashed.Load(),
		BlocksTotal:      c.blocksTotal.Load(),
		BytesTotal:       c.bytesTotal.Load(),
		Elapsed:          c.Elapsed(),
	}
}

// Tick records the bytes and blocks hashed since the previous call. The
// presenter calls it once per second.
func (c *Collector) Tick() {
	bytes, blocks := c.bytesHashed.Load(), c.blocksHashed.Load()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bytes.push(bytes - c.lastBytes)
	c.blocks.push(blocks - c.lastBlocks)
	c.lastBytes, c.lastBlocks = bytes, blocks
}

// RollingSpeed returns the mean bytes/sec over the newest seconds samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes.mean(seconds)
}

// RollingBlocksPerSec returns the mean blocks/sec over the newest seconds
// samples.
func (c *Collector) RollingBlocksPerSec(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks.mean(seconds)
}

// SparklineData returns up to n throughput samples, oldest first.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes.recent(n)
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesHashed.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"blocks=%d/%d failed=%d mismatched=%d bytes=%d",
		s.BlocksHashed, s.BlocksTotal, s.BlocksFailed, s.BlocksMismatched, s.BytesHashed,
	)
}

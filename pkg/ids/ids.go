package ids

import (
	"errors"
	"sync"
	"time"
)

// Snowflake-style ids: 41 bits of millisecond time, 10 bits of node, 12 bits
// of sequence. Ids issued by one node are strictly increasing, which the
// history store relies on for per-room clustering order.
const (
	nodeBits  = 10
	seqBits   = 12
	nodeMax   = -1 ^ (-1 << nodeBits)
	seqMask   = -1 ^ (-1 << seqBits)
	timeShift = nodeBits + seqBits
	nodeShift = seqBits

	epoch int64 = 1704067200000 // 2024-01-01 00:00:00 UTC
)

// Generator issues unique message ids. Safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	last int64
	node int64
	seq  int64
}

// NewGenerator builds a generator for one node. Node ids must be unique per
// process instance (from env in deployment, 0 is fine for tests).
func NewGenerator(node int64) (*Generator, error) {
	if node < 0 || node > nodeMax {
		return nil, errors.New("ids: node must be between 0 and 1023")
	}
	return &Generator{node: node}, nil
}

// Next returns the next id, strictly greater than any id this generator has
// returned before.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now < g.last {
		// Clock went backwards, keep issuing against the last observed time.
		now = g.last
	}

	if now == g.last {
		g.seq = (g.seq + 1) & seqMask
		if g.seq == 0 {
			for now <= g.last {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		g.seq = 0
	}
	g.last = now

	return ((now - epoch) << timeShift) | (g.node << nodeShift) | g.seq
}

package pools

import (
	"sort"
	"sync"
	"sync/atomic"
)

// BytePool is a multi-tiered byte slice pool for connection read buffers
type BytePool struct {
	pools []*sync.Pool
	sizes []int

	gets   atomic.Uint64
	puts   atomic.Uint64
	misses atomic.Uint64
}

// Common buffer sizes for request reads
var defaultSizes = []int{
	1024,  // Small requests
	4096,  // Typical headers
	16384, // Requests with bodies
	65536, // Extra large
}

// NewBytePool creates a new byte pool with standard size tiers
func NewBytePool() *BytePool {
	return NewBytePoolWithSizes(defaultSizes)
}

// NewBytePoolWithSizes creates a byte pool with custom size tiers.
// Non-positive sizes are ignored.
func NewBytePoolWithSizes(sizes []int) *BytePool {
	tiers := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if s > 0 {
			tiers = append(tiers, s)
		}
	}
	sort.Ints(tiers)

	bp := &BytePool{
		pools: make([]*sync.Pool, len(tiers)),
		sizes: tiers,
	}

	for i, size := range tiers {
		sz := size
		bp.pools[i] = &sync.Pool{
			New: func() any {
				buf := make([]byte, sz)
				return &buf
			},
		}
	}

	return bp
}

// Get returns a byte slice of length size. Its capacity is the tier size.
func (bp *BytePool) Get(size int) []byte {
	bp.gets.Add(1)
	for i, poolSize := range bp.sizes {
		if size <= poolSize {
			buf := *bp.pools[i].Get().(*[]byte)
			return buf[:size]
		}
	}

	// Size too large, allocate directly
	bp.misses.Add(1)
	return make([]byte, size)
}

// Put returns a byte slice to the pool. Slices whose capacity is not a tier
// size are left to the GC.
func (bp *BytePool) Put(buf []byte) {
	capacity := cap(buf)
	for i, poolSize := range bp.sizes {
		if capacity == poolSize {
			buf = buf[:capacity]
			bp.pools[i].Put(&buf)
			bp.puts.Add(1)
			return
		}
	}
}

// Grow returns a buffer holding buf's first n bytes with room for at least
// minSize bytes, releasing buf to the pool
func (bp *BytePool) Grow(buf []byte, n, minSize int) []byte {
	size := 2 * cap(buf)
	if size < minSize {
		size = minSize
	}
	grown := bp.Get(size)
	copy(grown, buf[:n])
	bp.Put(buf)
	return grown
}

// Stats returns pool statistics
func (bp *BytePool) Stats() BytePoolStats {
	return BytePoolStats{
		TotalGets: bp.gets.Load(),
		TotalPuts: bp.puts.Load(),
		Misses:    bp.misses.Load(),
	}
}

// BytePoolStats contains byte pool statistics
type BytePoolStats struct {
	TotalGets uint64 `json:"gets"`
	TotalPuts uint64 `json:"puts"`
	Misses    uint64 `json:"misses"`
}

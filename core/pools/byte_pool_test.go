package pools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytePool_GetPut(t *testing.T) {
	bp := NewBytePoolWithSizes([]int{256, 64, 0})

	buf := bp.Get(10)
	assert.Len(t, buf, 10)
	assert.Equal(t, 64, cap(buf))

	buf = bp.Get(100)
	assert.Len(t, buf, 100)
	assert.Equal(t, 256, cap(buf))
	bp.Put(buf)

	big := bp.Get(1000)
	assert.Len(t, big, 1000)
	bp.Put(big) // not a tier size, dropped

	stats := bp.Stats()
	assert.Equal(t, uint64(3), stats.TotalGets)
	assert.Equal(t, uint64(1), stats.TotalPuts)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestBytePool_Grow(t *testing.T) {
	bp := NewBytePool()

	buf := bp.Get(1024)
	copy(buf, "GET / HTTP/1.1\r\n")

	grown := bp.Grow(buf, 16, 1500)
	assert.GreaterOrEqual(t, len(grown), 2048)
	assert.Equal(t, "GET / HTTP/1.1\r\n", string(grown[:16]))

	grown = bp.Grow(grown, 16, 100000)
	assert.Len(t, grown, 100000)
	assert.Equal(t, "GET / HTTP/1.1\r\n", string(grown[:16]))
}

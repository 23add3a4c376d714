// Package mempool provides reusable scratch buffers for cell-block encoding.
//
// Encoding a mutation builds an uncompressed payload that is discarded as soon
// as it has been compressed and checksummed. Pooling those payload buffers by
// size class keeps steady-state encoding allocation-free for typical rows.
package mempool

import "sync"

// Pool manages reusable byte slices of various sizes.
type Pool struct {
	// Size buckets: 256B, 1KB, 4KB, 16KB, 64KB
	pools [5]sync.Pool
}

// BucketSizes defines the buffer size buckets.
var BucketSizes = [5]int{
	256,
	1024,
	4 * 1024,
	16 * 1024,
	64 * 1024,
}

// NewPool creates a new Pool.
func NewPool() *Pool {
	bp := &Pool{}
	for i := range bp.pools {
		size := BucketSizes[i]
		bp.pools[i] = sync.Pool{
			New: func() any {
				buf := make([]byte, 0, size)
				return &buf
			},
		}
	}
	return bp
}

// Get retrieves a zero-length byte slice with at least minSize capacity.
// Requests above the largest bucket are allocated directly.
func (bp *Pool) Get(minSize int) []byte {
	bucket := bucketFor(minSize)
	if bucket < 0 {
		return make([]byte, 0, minSize)
	}
	bufPtr, ok := bp.pools[bucket].Get().(*[]byte)
	if !ok || cap(*bufPtr) < minSize {
		return make([]byte, 0, BucketSizes[bucket])
	}
	return (*bufPtr)[:0]
}

// Put returns a byte slice to the pool. The slice must not be used afterwards.
// A slice is filed under the largest bucket its capacity fully covers, so Get
// never hands out a buffer smaller than its bucket size.
func (bp *Pool) Put(buf []byte) {
	c := cap(buf)
	if c < BucketSizes[0] || c > BucketSizes[len(BucketSizes)-1]*2 {
		return
	}
	bucket := len(BucketSizes) - 1
	for bucket > 0 && BucketSizes[bucket] > c {
		bucket--
	}
	buf = buf[:0]
	bp.pools[bucket].Put(&buf)
}

// bucketFor returns the smallest bucket that can hold size bytes, or -1.
func bucketFor(size int) int {
	for i, bucketSize := range BucketSizes {
		if size <= bucketSize {
			return i
		}
	}
	return -1
}

// GlobalPool is the shared scratch pool used by the cell-block encoder.
var GlobalPool = NewPool()

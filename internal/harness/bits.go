package harness

import (
	"fmt"
	"math"
)

// Bits returns the raw IEEE-754 pattern of v as a signed integer. Width 32
// narrows v to float32 first; any other width uses the full float64 pattern.
func Bits(v float64, width int) int64 {
	if width == 32 {
		return int64(int32(math.Float32bits(float32(v))))
	}
	return int64(math.Float64bits(v))
}

// Bucket quantizes a reference x-position into a buffer index the way
// round-half-up does.
func Bucket(x, scale float64) int {
	return int(math.Floor(x*scale + 0.5))
}

// BitBuffer records one side's bit patterns indexed by bucket. Later captures
// in the same bucket overwrite earlier ones.
type BitBuffer struct {
	bits     []int64
	width    int
	overflow bool
	count    int
}

// NewBitBuffer allocates a zeroed buffer with size buckets.
func NewBitBuffer(size, width int) *BitBuffer {
	return &BitBuffer{bits: make([]int64, size), width: width}
}

// Record stores the pattern of v at bucket. A bucket past the end marks the
// buffer full; negative buckets are ignored.
func (b *BitBuffer) Record(bucket int, v float64) {
	switch {
	case bucket < 0:
		return
	case bucket >= len(b.bits):
		b.overflow = true
		return
	}
	b.bits[bucket] = Bits(v, b.width)
	b.count++
}

// Full reports whether the reference object has moved past the last bucket.
func (b *BitBuffer) Full() bool { return b.overflow }

// Len returns the number of buckets.
func (b *BitBuffer) Len() int { return len(b.bits) }

// Count returns the number of captures stored so far.
func (b *BitBuffer) Count() int { return b.count }

// Width returns the bit width of stored patterns.
func (b *BitBuffer) Width() int { return b.width }

// At returns the pattern stored at bucket i.
func (b *BitBuffer) At(i int) int64 { return b.bits[i] }

// Reset zeroes every bucket.
func (b *BitBuffer) Reset() {
	clear(b.bits)
	b.overflow = false
	b.count = 0
}

// DumpRow compares one bucket across the two sides.
type DumpRow struct {
	Index int
	Left  int64
	Right int64
}

// Diff returns the integer difference of the two bit patterns.
func (r DumpRow) Diff() int64 { return r.Left - r.Right }

// String formats the row as a diagnostic dump line.
func (r DumpRow) String() string {
	return fmt.Sprintf("time:%d,left-pos:%d,right-pos:%d,diff-pos:%d", r.Index, r.Left, r.Right, r.Diff())
}

// Dump is the one-time comparison of both sides' buffers.
type Dump struct {
	Frame           int
	BitWidth        int
	Rows            []DumpRow
	FirstDivergence int // -1 when every bucket matches
}

// NewDump compares left and right bucket by bucket.
func NewDump(frame int, left, right *BitBuffer) *Dump {
	n := min(left.Len(), right.Len())
	d := &Dump{
		Frame:           frame,
		BitWidth:        left.Width(),
		Rows:            make([]DumpRow, n),
		FirstDivergence: -1,
	}
	for i := 0; i < n; i++ {
		d.Rows[i] = DumpRow{Index: i, Left: left.At(i), Right: right.At(i)}
		if d.FirstDivergence < 0 && d.Rows[i].Left != d.Rows[i].Right {
			d.FirstDivergence = i
		}
	}
	return d
}

// Diverged reports whether any bucket differs.
func (d *Dump) Diverged() bool { return d.FirstDivergence >= 0 }

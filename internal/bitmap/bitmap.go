// Package bitmap implements the word-granular mark bitmap used by the
// collector. One bit covers one heap word; ranges are half-open [start, end)
// word offsets within a space.
//
// The collector's "clean bitmap" invariant requires that every bit is clear
// between collections. ClearRange and IsClear exist specifically to restore
// and check that invariant.
package bitmap

// WordBits is the number of bits per backing word. Growth requests elsewhere
// are rounded to multiples of this so bitmap arithmetic never straddles a
// partial word at the top of a space.
const WordBits = 64

// Bitmap is a fixed-size bit vector, one bit per heap word.
type Bitmap struct {
	bits []uint64
	n    uint64 // number of valid bits
}

// New returns a bitmap covering n words, all bits clear.
func New(n uint64) *Bitmap {
	return &Bitmap{
		bits: make([]uint64, (n+WordBits-1)/WordBits),
		n:    n,
	}
}

// Len returns the number of words the bitmap covers.
func (b *Bitmap) Len() uint64 { return b.n }

// Set sets the bit for word offset i.
func (b *Bitmap) Set(i uint64) {
	b.bits[i/WordBits] |= 1 << (i % WordBits)
}

// Clear clears the bit for word offset i.
func (b *Bitmap) Clear(i uint64) {
	b.bits[i/WordBits] &^= 1 << (i % WordBits)
}

// Test reports whether the bit for word offset i is set.
func (b *Bitmap) Test(i uint64) bool {
	return b.bits[i/WordBits]&(1<<(i%WordBits)) != 0
}

// SetRange sets every bit in [start, end).
func (b *Bitmap) SetRange(start, end uint64) {
	for i := start; i < end; i++ {
		b.Set(i)
	}
}

// ClearRange clears every bit in [start, end).
func (b *Bitmap) ClearRange(start, end uint64) {
	if start >= end {
		return
	}
	firstWord := start / WordBits
	lastWord := (end - 1) / WordBits
	if firstWord == lastWord {
		mask := rangeMask(start%WordBits, (end-1)%WordBits+1)
		b.bits[firstWord] &^= mask
		return
	}
	b.bits[firstWord] &^= rangeMask(start%WordBits, WordBits)
	for w := firstWord + 1; w < lastWord; w++ {
		b.bits[w] = 0
	}
	b.bits[lastWord] &^= rangeMask(0, (end-1)%WordBits+1)
}

// CountRange returns the number of set bits in [start, end).
func (b *Bitmap) CountRange(start, end uint64) uint64 {
	var count uint64
	for i := start; i < end; i++ {
		if b.Test(i) {
			count++
		}
	}
	return count
}

// IsClear reports whether no bit is set anywhere in the bitmap.
func (b *Bitmap) IsClear() bool {
	for _, w := range b.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

// rangeMask builds a mask with bits [lo, hi) set, 0 <= lo < hi <= 64.
func rangeMask(lo, hi uint64) uint64 {
	mask := ^uint64(0) << lo
	if hi < WordBits {
		mask &= (1 << hi) - 1
	}
	return mask
}

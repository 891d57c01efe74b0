package bitvec

import (
	"iter"
	"math/bits"
)

// WordBitCount is the number of payload bit slots in a literal word.
const WordBitCount = 31

const (
	flagCompressed = 1 << 31
	flagFillBit    = 1 << 30

	packedShift = 25
	packedMask  = 0x1F << packedShift

	literalMask = 0x7FFFFFFF

	// MaxFillCount is the largest run length a single compressed word
	// can carry, in 31-bit logical words.
	MaxFillCount = 1<<packedShift - 1
)

// Word is one 32-bit unit of a vector's backing array.
//
// Bit 31 clear: a literal carrying 31 bit slots (0..30).
// Bit 31 set: a run of FillCount logical words of FillBit, with bits
// 25..29 optionally naming a packed position: a single set slot (1..31)
// of an implicit literal that logically follows the run. The packed
// payload is only meaningful when the owning vector's compression mode
// enables it.
type Word uint32

// newFill returns a run word of count logical words of the given fill bit.
func newFill(fill bool, count uint32) Word {
	w := Word(flagCompressed | count&MaxFillCount)
	if fill {
		w |= flagFillBit
	}
	return w
}

// IsCompressed reports whether the word is a run rather than a literal.
func (w Word) IsCompressed() bool {
	return w&flagCompressed != 0
}

// FillBit returns the fill value of a run word.
func (w Word) FillBit() bool {
	return w&flagFillBit != 0
}

// FillCount returns the run length in 31-bit logical words.
func (w Word) FillCount() uint32 {
	return uint32(w) & MaxFillCount
}

// withFillCount returns the run with its length replaced by count.
func (w Word) withFillCount(count uint32) Word {
	return w&^Word(MaxFillCount) | Word(count&MaxFillCount)
}

// HasPackedWord reports whether a run carries a packed position.
func (w Word) HasPackedWord() bool {
	return w&packedMask != 0
}

// PackedPosition returns the packed slot, 1..31. Zero means absent.
func (w Word) PackedPosition() uint32 {
	return uint32(w&packedMask) >> packedShift
}

// PackedWord returns the literal form of the packed sub-word: a single
// bit set at PackedPosition-1.
func (w Word) PackedWord() Word {
	return 1 << (w.PackedPosition() - 1)
}

// Pack folds a single-bit literal into this run's packed slot. The
// receiver must be a run without a packed payload and the literal must
// have population exactly one; callers check both.
func (w Word) Pack(literal Word) Word {
	pos := uint32(bits.TrailingZeros32(uint32(literal))) + 1
	return w | Word(pos<<packedShift)
}

// GetBit reads slot i of a literal word.
func (w Word) GetBit(i uint32) bool {
	return w&(1<<i) != 0
}

// SetBit returns the literal with slot i set to v.
func (w Word) SetBit(i uint32, v bool) Word {
	if v {
		return w | 1<<i
	}
	return w &^ (1 << i)
}

// IsCompressible reports whether a literal is all-zero or all-one and can
// be reinterpreted as a one-word run.
func (w Word) IsCompressible() bool {
	return w == 0 || w == literalMask
}

// Compress reinterprets an all-0 or all-1 literal as a one-word run.
// Callers check IsCompressible first.
func (w Word) Compress() Word {
	return newFill(w == literalMask, 1)
}

// Population returns the number of 1 bits the word stands for logically.
// packed controls whether a run's packed payload is recognized.
func (w Word) Population(packed bool) uint32 {
	if !w.IsCompressed() {
		return uint32(bits.OnesCount32(uint32(w)))
	}
	var n uint32
	if w.FillBit() {
		n = WordBitCount * w.FillCount()
	}
	if packed && w.HasPackedWord() {
		n++
	}
	return n
}

// Bits enumerates the slots of a literal word whose bit equals value.
func (w Word) Bits(value bool) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i := uint32(0); i < WordBitCount; i++ {
			if w.GetBit(i) == value && !yield(i) {
				return
			}
		}
	}
}

//go:build !purego

package bitvec

import (
	"math/bits"
	"unsafe"
)

// unsafeKernels is the pointer-arithmetic kernel set. Nil on purego
// builds.
var unsafeKernels logic = unsafeLogic{}

// unsafeLogic mirrors safeLogic word for word but walks raw pointers
// instead of indexing, trading bounds checks for manual cursor
// discipline. Both implementations are observably identical; the
// equivalence tests in logic_test.go hold them to that.
type unsafeLogic struct{}

const wordSize = unsafe.Sizeof(Word(0))

func wordPtr(s []Word) *Word {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

func (unsafeLogic) Decompress(dst, src []Word, srcPacked bool) {
	if len(src) == 0 {
		return
	}
	d := unsafe.Pointer(wordPtr(dst))
	p := unsafe.Pointer(wordPtr(src))
	end := unsafe.Add(p, uintptr(len(src))*wordSize)
	for ; p != end; p = unsafe.Add(p, wordSize) {
		w := *(*Word)(p)
		if !w.IsCompressed() {
			*(*Word)(d) = w
			d = unsafe.Add(d, wordSize)
			continue
		}
		count := uintptr(w.FillCount())
		if w.FillBit() {
			stop := unsafe.Add(d, count*wordSize)
			for ; d != stop; d = unsafe.Add(d, wordSize) {
				*(*Word)(d) = literalMask
			}
		} else {
			d = unsafe.Add(d, count*wordSize)
		}
		if srcPacked && w.HasPackedWord() {
			*(*Word)(d) = w.PackedWord()
			d = unsafe.Add(d, wordSize)
		}
	}
}

func (unsafeLogic) AndNN(left, right []Word) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	l := unsafe.Pointer(wordPtr(left))
	r := unsafe.Pointer(wordPtr(right))
	stop := unsafe.Add(l, uintptr(n)*wordSize)
	for ; l != stop; l = unsafe.Add(l, wordSize) {
		*(*Word)(l) &= *(*Word)(r)
		r = unsafe.Add(r, wordSize)
	}
	tail := unsafe.Add(unsafe.Pointer(wordPtr(left)), uintptr(len(left))*wordSize)
	for ; l != tail; l = unsafe.Add(l, wordSize) {
		*(*Word)(l) = 0
	}
}

func (unsafeLogic) AndNC(left, right []Word, rightPacked bool) {
	if len(left) == 0 {
		return
	}
	base := unsafe.Pointer(wordPtr(left))
	lend := unsafe.Add(base, uintptr(len(left))*wordSize)
	l := base
	for _, w := range right {
		if uintptr(l) >= uintptr(lend) {
			return
		}
		if !w.IsCompressed() {
			*(*Word)(l) &= w
			l = unsafe.Add(l, wordSize)
			continue
		}
		count := uintptr(w.FillCount())
		next := unsafe.Add(l, count*wordSize)
		if !w.FillBit() {
			stop := next
			if uintptr(stop) > uintptr(lend) {
				stop = lend
			}
			for p := l; uintptr(p) < uintptr(stop); p = unsafe.Add(p, wordSize) {
				*(*Word)(p) = 0
			}
		}
		l = next
		if rightPacked && w.HasPackedWord() {
			if uintptr(l) < uintptr(lend) {
				*(*Word)(l) &= w.PackedWord()
			}
			l = unsafe.Add(l, wordSize)
		}
	}
	for p := l; uintptr(p) < uintptr(lend); p = unsafe.Add(p, wordSize) {
		*(*Word)(p) = 0
	}
}

func (unsafeLogic) OrNN(left, right []Word) {
	if len(right) == 0 {
		return
	}
	l := unsafe.Pointer(wordPtr(left))
	r := unsafe.Pointer(wordPtr(right))
	stop := unsafe.Add(r, uintptr(len(right))*wordSize)
	for ; r != stop; r = unsafe.Add(r, wordSize) {
		*(*Word)(l) |= *(*Word)(r)
		l = unsafe.Add(l, wordSize)
	}
}

func (unsafeLogic) OrNC(left, right []Word, rightPacked bool) {
	if len(left) == 0 {
		return
	}
	l := unsafe.Pointer(wordPtr(left))
	for _, w := range right {
		if !w.IsCompressed() {
			*(*Word)(l) |= w
			l = unsafe.Add(l, wordSize)
			continue
		}
		count := uintptr(w.FillCount())
		if w.FillBit() {
			stop := unsafe.Add(l, count*wordSize)
			for ; l != stop; l = unsafe.Add(l, wordSize) {
				*(*Word)(l) = literalMask
			}
		} else {
			l = unsafe.Add(l, count*wordSize)
		}
		if rightPacked && w.HasPackedWord() {
			*(*Word)(l) |= w.PackedWord()
			l = unsafe.Add(l, wordSize)
		}
	}
}

func (unsafeLogic) AndPopulationNN(left, right []Word) uint32 {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if n == 0 {
		return 0
	}
	l := unsafe.Pointer(wordPtr(left))
	r := unsafe.Pointer(wordPtr(right))
	stop := unsafe.Add(l, uintptr(n)*wordSize)
	var pop uint32
	for ; l != stop; l = unsafe.Add(l, wordSize) {
		pop += uint32(bits.OnesCount32(uint32(*(*Word)(l) & *(*Word)(r))))
		r = unsafe.Add(r, wordSize)
	}
	return pop
}

func (unsafeLogic) AndPopulationNC(left, right []Word, rightPacked bool) uint32 {
	if len(left) == 0 {
		return 0
	}
	base := unsafe.Pointer(wordPtr(left))
	lend := unsafe.Add(base, uintptr(len(left))*wordSize)
	l := base
	var pop uint32
	for _, w := range right {
		if uintptr(l) >= uintptr(lend) {
			break
		}
		if !w.IsCompressed() {
			pop += uint32(bits.OnesCount32(uint32(*(*Word)(l) & w)))
			l = unsafe.Add(l, wordSize)
			continue
		}
		count := uintptr(w.FillCount())
		next := unsafe.Add(l, count*wordSize)
		if w.FillBit() {
			stop := next
			if uintptr(stop) > uintptr(lend) {
				stop = lend
			}
			for p := l; uintptr(p) < uintptr(stop); p = unsafe.Add(p, wordSize) {
				pop += uint32(bits.OnesCount32(uint32(*(*Word)(p))))
			}
		}
		l = next
		if rightPacked && w.HasPackedWord() {
			if uintptr(l) < uintptr(lend) {
				pop += uint32(bits.OnesCount32(uint32(*(*Word)(l) & w.PackedWord())))
			}
			l = unsafe.Add(l, wordSize)
		}
	}
	return pop
}

func (unsafeLogic) AndAnyNN(left, right []Word) bool {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if n == 0 {
		return false
	}
	l := unsafe.Pointer(wordPtr(left))
	r := unsafe.Pointer(wordPtr(right))
	stop := unsafe.Add(l, uintptr(n)*wordSize)
	for ; l != stop; l = unsafe.Add(l, wordSize) {
		if *(*Word)(l)&*(*Word)(r) != 0 {
			return true
		}
		r = unsafe.Add(r, wordSize)
	}
	return false
}

func (unsafeLogic) AndAnyNC(left, right []Word, rightPacked bool) bool {
	if len(left) == 0 {
		return false
	}
	base := unsafe.Pointer(wordPtr(left))
	lend := unsafe.Add(base, uintptr(len(left))*wordSize)
	l := base
	for _, w := range right {
		if uintptr(l) >= uintptr(lend) {
			return false
		}
		if !w.IsCompressed() {
			if *(*Word)(l)&w != 0 {
				return true
			}
			l = unsafe.Add(l, wordSize)
			continue
		}
		count := uintptr(w.FillCount())
		next := unsafe.Add(l, count*wordSize)
		if w.FillBit() {
			stop := next
			if uintptr(stop) > uintptr(lend) {
				stop = lend
			}
			for p := l; uintptr(p) < uintptr(stop); p = unsafe.Add(p, wordSize) {
				if *(*Word)(p) != 0 {
					return true
				}
			}
		}
		l = next
		if rightPacked && w.HasPackedWord() {
			if uintptr(l) < uintptr(lend) && *(*Word)(l)&w.PackedWord() != 0 {
				return true
			}
			l = unsafe.Add(l, wordSize)
		}
	}
	return false
}

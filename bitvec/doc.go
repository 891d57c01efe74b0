// Package bitvec implements word-aligned hybrid (WAH) compressed bitmap
// vectors: 31-bit literal words interleaved with run-length fills, with
// an optional packed-position extension that folds single-bit literals
// into the free bits of a preceding zero run.
//
// Vectors support random bit set (forward-only once compressed),
// population counts, in-place and out-of-place AND/OR, ordered position
// enumeration, and a post-compaction remap. The word-array kernels come
// in a safe array-indexed flavor and a pointer-arithmetic flavor behind
// the purego build tag; both are observably identical.
package bitvec

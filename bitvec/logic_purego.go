//go:build purego

package bitvec

// unsafeKernels is nil on purego builds; requesting them surfaces
// ErrUnsafeUnavailable at vector construction.
var unsafeKernels logic

package catalog

import (
	"cmp"
	"context"
	"iter"
	"sync"

	"github.com/huandu/skiplist"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/facetgo/bitvec"
)

// entryOpt is the compaction scratch state of an entry. It is Idle
// outside the two-phase protocol.
type entryOpt uint8

const (
	optIdle entryOpt = iota
	optReady
	optDead
)

// entry holds one key's posting vector plus the compaction scratch
// produced by the read phase and installed by the write phase.
type entry struct {
	vector    *bitvec.Vector
	opt       entryOpt
	optimized *bitvec.Vector
}

// Catalog is an inverted index over one attribute: it maps each distinct
// key value to the vector of bit positions carrying that value. Keys
// live in a skip list so range filters and two-direction sort
// enumeration need no per-call sorting.
//
// Structural mutation is single-writer; concurrent read-only use is
// safe.
type Catalog[K cmp.Ordered] struct {
	name        string
	compression bitvec.Compression
	allowUnsafe bool

	mu      sync.RWMutex
	entries *skiplist.SkipList // K -> *entry, ascending
}

// New creates an empty catalog. Entry vectors use the given compression;
// allowUnsafe selects the pointer kernels for them.
func New[K cmp.Ordered](name string, compression bitvec.Compression, allowUnsafe bool) *Catalog[K] {
	return &Catalog[K]{
		name:        name,
		compression: compression,
		allowUnsafe: allowUnsafe,
		entries: skiplist.New(skiplist.GreaterThanFunc(func(a, b interface{}) int {
			return cmp.Compare(a.(K), b.(K))
		})),
	}
}

// Name returns the catalog's registered name.
func (c *Catalog[K]) Name() string {
	return c.name
}

// Compression returns the compression mode of the entry vectors.
func (c *Catalog[K]) Compression() bitvec.Compression {
	return c.compression
}

// Len returns the number of distinct keys.
func (c *Catalog[K]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries.Len()
}

func (c *Catalog[K]) lookup(key K) *entry {
	el := c.entries.Get(key)
	if el == nil {
		return nil
	}
	return el.Value.(*entry)
}

// Set writes the bit at pos of key's vector. The entry is created on
// first sight of the key.
func (c *Catalog[K]) Set(key K, pos uint32, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(key)
	if e == nil {
		v, err := bitvec.New(c.compression, c.allowUnsafe)
		if err != nil {
			return err
		}
		e = &entry{vector: v}
		c.entries.Set(key, e)
	}
	return e.vector.SetBit(pos, value)
}

// SetAll writes the bit at pos for every key.
func (c *Catalog[K]) SetAll(keys []K, pos uint32, value bool) error {
	for _, k := range keys {
		if err := c.Set(k, pos, value); err != nil {
			return err
		}
	}
	return nil
}

// Filter intersects v in place with key's posting vector. A missing key
// clears v.
func (c *Catalog[K]) Filter(v *bitvec.Vector, key K) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e := c.lookup(key)
	if e == nil {
		v.Clear()
		return nil
	}
	return v.AndInPlace(e.vector)
}

// FilterIn intersects v in place with the union of the keys' posting
// vectors. Keys are deduplicated; missing keys are skipped; if none
// match, v is cleared.
func (c *Catalog[K]) FilterIn(v *bitvec.Vector, keys []K) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[K]struct{}, len(keys))
	var vectors []*bitvec.Vector
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if e := c.lookup(k); e != nil {
			vectors = append(vectors, e.vector)
		}
	}
	return c.intersectUnion(v, vectors)
}

// FilterRange intersects v in place with the union of the posting
// vectors of every key in [min, max]. A nil bound defaults to the
// catalog's smallest/largest key; at least one bound is required and
// min must not exceed max.
func (c *Catalog[K]) FilterRange(v *bitvec.Vector, minKey, maxKey *K) error {
	if minKey == nil && maxKey == nil {
		return ErrBoundRequired
	}
	if minKey != nil && maxKey != nil && *minKey > *maxKey {
		return ErrInvertedRange
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entries.Len() == 0 {
		v.Clear()
		return nil
	}

	var el *skiplist.Element
	if minKey != nil {
		el = c.entries.Find(*minKey)
	} else {
		el = c.entries.Front()
	}

	var vectors []*bitvec.Vector
	for ; el != nil; el = el.Next() {
		if maxKey != nil && el.Key().(K) > *maxKey {
			break
		}
		vectors = append(vectors, el.Value.(*entry).vector)
	}
	return c.intersectUnion(v, vectors)
}

// intersectUnion ANDs v with the union of vectors. Catalog vectors may
// be compressed, so more than one is first OR-unioned into a fresh
// uncompressed vector.
func (c *Catalog[K]) intersectUnion(v *bitvec.Vector, vectors []*bitvec.Vector) error {
	switch len(vectors) {
	case 0:
		v.Clear()
		return nil
	case 1:
		return v.AndInPlace(vectors[0])
	default:
		union, err := bitvec.OrOutOfPlace(vectors...)
		if err != nil {
			return err
		}
		return v.AndInPlace(union)
	}
}

// Facet counts, for every key, the bits shared between v and the key's
// posting vector, returning keys with a non-zero count. Under
// shortCircuit each matching key counts 1. Entries are scanned in
// parallel up to parallelism workers; 1 serializes the scan.
func (c *Catalog[K]) Facet(v *bitvec.Vector, parallelism int, shortCircuit bool) (map[K]uint32, error) {
	c.mu.RLock()
	type pair struct {
		key    K
		vector *bitvec.Vector
	}
	pairs := make([]pair, 0, c.entries.Len())
	for el := c.entries.Front(); el != nil; el = el.Next() {
		pairs = append(pairs, pair{key: el.Key().(K), vector: el.Value.(*entry).vector})
	}
	c.mu.RUnlock()

	if parallelism < 1 {
		parallelism = 1
	}

	counts := make([]uint32, len(pairs))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(parallelism)
	for i := range pairs {
		g.Go(func() error {
			if shortCircuit {
				any, err := v.AndPopulationAny(pairs[i].vector)
				if err != nil {
					return err
				}
				if any {
					counts[i] = 1
				}
				return nil
			}
			pop, err := v.AndPopulation(pairs[i].vector)
			if err != nil {
				return err
			}
			counts[i] = pop
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[K]uint32)
	for i, p := range pairs {
		if counts[i] > 0 {
			out[p.key] = counts[i]
		}
	}
	return out, nil
}

// Keys enumerates the distinct keys in ascending or descending order.
func (c *Catalog[K]) Keys(ascending bool) iter.Seq[K] {
	return func(yield func(K) bool) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if ascending {
			for el := c.entries.Front(); el != nil; el = el.Next() {
				if !yield(el.Key().(K)) {
					return
				}
			}
			return
		}
		for el := c.entries.Back(); el != nil; el = el.Prev() {
			if !yield(el.Key().(K)) {
				return
			}
		}
	}
}

// SortBitPositions yields, in key order, each key together with the
// intersection of v and the key's posting vector, skipping keys whose
// intersection is empty. The intersection vectors are uncompressed and
// freshly allocated; v is borrowed for the lifetime of the enumeration.
func (c *Catalog[K]) SortBitPositions(v *bitvec.Vector, ascending bool) iter.Seq2[K, *bitvec.Vector] {
	return func(yield func(K, *bitvec.Vector) bool) {
		// Keys holds the read lock across the enumeration, so lookup
		// runs under it already.
		for key := range c.Keys(ascending) {
			e := c.lookup(key)
			if e == nil {
				continue
			}
			and, err := v.AndOutOfPlace(e.vector, bitvec.None)
			if err != nil || !and.PopulationAny() {
				continue
			}
			if !yield(key, and) {
				return
			}
		}
	}
}

// OptimizeReadPhase runs the compaction read phase: every entry's vector
// is remapped against shifts into per-entry scratch. It only reads the
// live vectors and writes entry-local state, so different catalogs may
// run this concurrently.
func (c *Catalog[K]) OptimizeReadPhase(shifts []int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.entries.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		nonEmpty, optimized, err := e.vector.OptimizeReadPhase(shifts)
		if err != nil {
			return err
		}
		if nonEmpty {
			e.opt = optReady
			e.optimized = optimized
		} else {
			e.opt = optDead
			e.optimized = nil
		}
	}
	return nil
}

// OptimizeWritePhase commits the read phase: surviving entries adopt
// their scratch vector, dead entries and their keys are removed.
func (c *Catalog[K]) OptimizeWritePhase() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var dead []K
	for el := c.entries.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		switch e.opt {
		case optReady:
			e.vector = e.optimized
		case optDead:
			dead = append(dead, el.Key().(K))
		}
		e.opt = optIdle
		e.optimized = nil
	}
	for _, k := range dead {
		c.entries.Remove(k)
	}
}

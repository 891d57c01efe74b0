package facetgo

import (
	"cmp"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/facetgo/bitvec"
	"github.com/hupe1980/facetgo/pk"
)

// registeredCatalog is the engine's type-erased view of one catalog:
// its identity plus the capabilities captured at registration time.
type registeredCatalog struct {
	name          string
	oneToOne      bool
	compression   bitvec.Compression
	optimizeRead  func([]int32) error
	optimizeWrite func()
	facet         func(v *bitvec.Vector, parallelism int, shortCircuit bool) (map[any]uint32, error)
}

// Engine aggregates catalogs keyed by name and by primary key, executes
// compound Boolean filter trees, facet and sort requests, and drives
// compaction.
//
// Structural mutations (AddCatalog, Add, Remove, Compact) are
// single-writer: the caller serializes them. Query execution is
// read-only and may run concurrently with other queries.
type Engine[PK cmp.Ordered] struct {
	mu       sync.RWMutex
	catalogs map[string]*registeredCatalog
	order    []string

	index     *pk.Index[PK]
	active    *bitvec.Vector // uncompressed; one set bit per live item
	deletions int

	opts options
}

// New creates an engine. Options select logging, metrics, parallelism
// and the unsafe vector kernels.
func New[PK cmp.Ordered](opts ...Option) (*Engine[PK], error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	active, err := bitvec.New(bitvec.None, o.allowUnsafe)
	if err != nil {
		return nil, err
	}
	return &Engine[PK]{
		catalogs: make(map[string]*registeredCatalog),
		index:    pk.NewIndex[PK](),
		active:   active,
		opts:     o,
	}, nil
}

// Add allocates the next bit position for primaryKey and invokes fill,
// which writes the item's catalog bits through typed catalog references.
func (e *Engine[PK]) Add(primaryKey PK, fill func(pos uint32) error) (err error) {
	start := time.Now()
	defer func() {
		e.opts.metrics.RecordAdd(time.Since(start), err)
	}()

	pos, ok := e.index.Allocate(primaryKey)
	if !ok {
		err = ErrPrimaryKeyExists
		return err
	}
	e.mu.Lock()
	err = e.active.SetBit(pos, true)
	e.mu.Unlock()
	if err == nil && fill != nil {
		err = fill(pos)
	}
	e.opts.logger.LogAdd(pos, err)
	return err
}

// Remove tombstones primaryKey's bit position. Catalog vectors are left
// untouched; the position is reclaimed by the next Compact.
func (e *Engine[PK]) Remove(primaryKey PK) (err error) {
	start := time.Now()
	defer func() {
		e.opts.metrics.RecordRemove(time.Since(start), err)
	}()

	pos, ok := e.index.Remove(primaryKey)
	if !ok {
		err = ErrNotFound
		return err
	}
	e.mu.Lock()
	err = e.active.SetBit(pos, false)
	e.deletions++
	e.mu.Unlock()
	e.opts.logger.LogRemove(pos, err)
	return err
}

// Has reports whether primaryKey is live.
func (e *Engine[PK]) Has(primaryKey PK) bool {
	_, ok := e.index.Lookup(primaryKey)
	return ok
}

// Len returns the number of live items.
func (e *Engine[PK]) Len() int {
	return e.index.Len()
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	ActiveItems int
	Tombstones  int
	Catalogs    int
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine[PK]) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		ActiveItems: e.index.Len(),
		Tombstones:  e.deletions,
		Catalogs:    len(e.catalogs),
	}
}

// activeCopy returns a fresh uncompressed copy of the live-item
// universe.
func (e *Engine[PK]) activeCopy() *bitvec.Vector {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active.Clone()
}

// Compact rebuilds the bit-position space after removals.
//
// Phase 1 computes the shift table and remaps every catalog vector into
// per-entry scratch; catalogs only read live vectors, so the phase runs
// them in parallel. Phase 2 serially installs the scratch vectors,
// rewrites the primary-key tables, and resets the tombstone count.
func (e *Engine[PK]) Compact() (err error) {
	start := time.Now()
	removed := 0
	defer func() {
		e.opts.metrics.RecordCompaction(time.Since(start), removed, err)
		e.opts.logger.LogCompaction(removed, time.Since(start), err)
	}()

	shifts := e.index.Shifts()
	for _, s := range shifts {
		if s < 0 {
			removed++
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(e.opts.parallelism)
	for _, name := range e.order {
		reg := e.catalogs[name]
		g.Go(func() error {
			return reg.optimizeRead(shifts)
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	for _, name := range e.order {
		e.catalogs[name].optimizeWrite()
	}
	_, rebuilt, rerr := e.active.OptimizeReadPhase(shifts)
	if rerr != nil {
		err = rerr
		return err
	}
	e.active = rebuilt
	e.index.Rewrite(shifts)
	e.deletions = 0
	return nil
}

// CreateQuery starts a one-shot query builder against this engine.
func (e *Engine[PK]) CreateQuery() *Query[PK] {
	return &Query[PK]{engine: e}
}

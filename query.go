package facetgo

import (
	"cmp"
	"iter"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hupe1980/facetgo/bitvec"
)

// SortParam orders query results by one catalog's keys. Build it with
// CatalogRef.Sort.
type SortParam struct {
	catalogName string
	owner       any
	stream      func(v *bitvec.Vector) iter.Seq[*bitvec.Vector]
}

// FacetParam requests per-key candidate counts for one catalog. Build it
// with CatalogRef.Facet.
type FacetParam struct {
	catalogName string
	owner       any
}

// Result is the outcome of one query execution.
type Result[PK cmp.Ordered] struct {
	// PrimaryKeys is the requested page, at most take keys.
	PrimaryKeys []PK
	// Total counts every candidate, before paging.
	Total uint32
	// Facets maps catalog name to per-key candidate counts.
	Facets map[string]map[any]uint32
	// Elapsed is the execution wall time.
	Elapsed time.Duration
}

// Query is a one-shot builder: compose filters, sorts, facets and an
// amongst-set, then Execute exactly once.
type Query[PK cmp.Ordered] struct {
	engine          *Engine[PK]
	clause          Clause
	amongst         []PK
	sorts           []SortParam
	sortByPK        *bool
	facets          []FacetParam
	disableParallel bool
	shortCircuit    bool

	executed atomic.Uint32
	elapsed  time.Duration
}

// Filter adds a filter clause. Multiple calls combine conjunctively.
func (q *Query[PK]) Filter(c Clause) *Query[PK] {
	if c == nil {
		return q
	}
	if q.clause == nil {
		q.clause = c
	} else {
		q.clause = And(q.clause, c)
	}
	return q
}

// Sort appends a sort parameter. Parameters compose left to right;
// later parameters order within the key groups of earlier ones.
func (q *Query[PK]) Sort(p SortParam) *Query[PK] {
	q.sorts = append(q.sorts, p)
	return q
}

// SortByPrimaryKey orders results by primary key value. It cannot be
// combined with catalog sort parameters.
func (q *Query[PK]) SortByPrimaryKey(ascending bool) *Query[PK] {
	q.sortByPK = &ascending
	return q
}

// Facet appends a facet request.
func (q *Query[PK]) Facet(p FacetParam) *Query[PK] {
	q.facets = append(q.facets, p)
	return q
}

// Amongst restricts candidates to the given primary keys. Duplicates
// and unknown keys are ignored.
func (q *Query[PK]) Amongst(primaryKeys ...PK) *Query[PK] {
	q.amongst = append(q.amongst, primaryKeys...)
	return q
}

// DisableParallelFacets caps the facet scan at one worker.
func (q *Query[PK]) DisableParallelFacets() *Query[PK] {
	q.disableParallel = true
	return q
}

// ShortCircuitCounting makes facets report 1 for every matching key
// instead of exact counts, stopping each scan at the first hit.
func (q *Query[PK]) ShortCircuitCounting() *Query[PK] {
	q.shortCircuit = true
	return q
}

// Elapsed returns the execution wall time of a completed query.
func (q *Query[PK]) Elapsed() time.Duration {
	return q.elapsed
}

// validate checks parameter/engine membership and per-catalog
// multiplicity before any evaluation work.
func (q *Query[PK]) validate() error {
	if q.sortByPK != nil && len(q.sorts) > 0 {
		return ErrSortConflict
	}

	leaves := q.clauseLeaves()
	// Only leaves ANDed directly into the filter count toward the one-filter
	// limit of a one-to-one catalog; leaves under Or or Not do not.
	conjuncts := []Clause{q.clause}
	if a, ok := q.clause.(*andClause); ok {
		conjuncts = a.children
	}
	filterSeen := make(map[string]int, len(leaves))
	for _, l := range leaves {
		if l.owner != any(q.engine) {
			return ErrCatalogMismatch
		}
		if !slices.Contains(conjuncts, Clause(l)) {
			continue
		}
		filterSeen[l.catalogName]++
		if l.oneToOne && filterSeen[l.catalogName] > 1 {
			return ErrDuplicateParameter
		}
	}

	sortSeen := make(map[string]struct{}, len(q.sorts))
	for _, p := range q.sorts {
		if p.owner != any(q.engine) {
			return ErrCatalogMismatch
		}
		if _, dup := sortSeen[p.catalogName]; dup {
			return ErrDuplicateParameter
		}
		sortSeen[p.catalogName] = struct{}{}
	}

	facetSeen := make(map[string]struct{}, len(q.facets))
	for _, p := range q.facets {
		if p.owner != any(q.engine) {
			return ErrCatalogMismatch
		}
		if _, dup := facetSeen[p.catalogName]; dup {
			return ErrDuplicateParameter
		}
		facetSeen[p.catalogName] = struct{}{}
	}
	return nil
}

func (q *Query[PK]) clauseLeaves() []*leafClause {
	if q.clause == nil {
		return nil
	}
	return q.clause.collectLeaves(nil)
}

// Execute evaluates the query and returns the page [skip, skip+take) of
// the sorted candidates together with the total count and facets. A
// query executes at most once; further calls fail with
// ErrAlreadyExecuted.
func (q *Query[PK]) Execute(skip, take uint32) (_ *Result[PK], err error) {
	if !q.executed.CompareAndSwap(0, 1) {
		return nil, ErrAlreadyExecuted
	}

	start := time.Now()
	e := q.engine
	var total uint32
	defer func() {
		q.elapsed = time.Since(start)
		e.opts.metrics.RecordQuery(total, q.elapsed, err)
		e.opts.logger.LogQuery(total, q.elapsed, err)
	}()

	if err = q.validate(); err != nil {
		return nil, err
	}

	universe := e.activeCopy
	var candidate *bitvec.Vector
	if q.clause != nil {
		candidate, err = q.clause.eval(universe)
		if err != nil {
			return nil, err
		}
	} else {
		candidate = universe()
	}

	if len(q.amongst) > 0 {
		mask := candidate.Clone()
		mask.Clear()
		for _, k := range q.amongst {
			pos, ok := e.index.Lookup(k)
			if !ok {
				continue
			}
			if err = mask.SetBit(pos, true); err != nil {
				return nil, err
			}
		}
		if err = candidate.AndInPlace(mask); err != nil {
			return nil, err
		}
	}

	total = candidate.Population()

	var page []PK
	if q.sortByPK != nil {
		page, err = q.pageByPrimaryKey(candidate, skip, take)
	} else {
		page, err = q.pageByPositions(candidate, skip, take)
	}
	if err != nil {
		return nil, err
	}

	facets := make(map[string]map[any]uint32, len(q.facets))
	parallelism := e.opts.parallelism
	if q.disableParallel {
		parallelism = 1
	}
	for _, p := range q.facets {
		e.mu.RLock()
		reg := e.catalogs[p.catalogName]
		e.mu.RUnlock()
		if reg == nil {
			return nil, ErrCatalogMismatch
		}
		counts, ferr := reg.facet(candidate, parallelism, q.shortCircuit)
		if ferr != nil {
			err = ferr
			return nil, err
		}
		facets[p.catalogName] = counts
	}

	return &Result[PK]{
		PrimaryKeys: page,
		Total:       total,
		Facets:      facets,
		Elapsed:     time.Since(start),
	}, nil
}

// pageByPositions pages the sorted bit-position stream lazily, mapping
// positions to primary keys.
func (q *Query[PK]) pageByPositions(candidate *bitvec.Vector, skip, take uint32) ([]PK, error) {
	page := make([]PK, 0, take)
	var skipped uint32
	for pos := range sortedPositions(candidate, q.sorts) {
		if skipped < skip {
			skipped++
			continue
		}
		if uint32(len(page)) >= take {
			break
		}
		if k, ok := q.engine.index.PrimaryKey(pos); ok {
			page = append(page, k)
		}
	}
	return page, nil
}

// pageByPrimaryKey materializes the candidates, orders them by primary
// key value, and slices the page out.
func (q *Query[PK]) pageByPrimaryKey(candidate *bitvec.Vector, skip, take uint32) ([]PK, error) {
	seq, err := candidate.Positions(true)
	if err != nil {
		return nil, err
	}
	var keys []PK
	for pos := range seq {
		if k, ok := q.engine.index.PrimaryKey(pos); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if !*q.sortByPK {
		slices.Reverse(keys)
	}
	if int(skip) >= len(keys) {
		return nil, nil
	}
	keys = keys[skip:]
	if uint32(len(keys)) > take {
		keys = keys[:take]
	}
	return keys, nil
}

// sortedPositions composes sort parameters left to right: the first
// parameter's key order partitions the candidates, later parameters
// order within each partition, and bit-position order breaks the final
// ties. Keys whose intersection with the candidate set is empty are
// skipped by the catalog enumerators.
func sortedPositions(v *bitvec.Vector, sorts []SortParam) iter.Seq[uint32] {
	if len(sorts) == 0 {
		seq, err := v.Positions(true)
		if err != nil {
			return func(func(uint32) bool) {}
		}
		return seq
	}
	return func(yield func(uint32) bool) {
		for group := range sorts[0].stream(v) {
			for p := range sortedPositions(group, sorts[1:]) {
				if !yield(p) {
					return
				}
			}
		}
	}
}

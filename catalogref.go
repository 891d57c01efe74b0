package facetgo

import (
	"cmp"
	"iter"

	"github.com/hupe1980/facetgo/bitvec"
	"github.com/hupe1980/facetgo/catalog"
)

// CatalogRef is the typed handle to a registered catalog. It writes
// item bits during Add and constructs the typed filter, sort and facet
// parameters a query consumes — the statically-typed form of selecting
// a catalog by name and casting at runtime.
type CatalogRef[K cmp.Ordered, PK cmp.Ordered] struct {
	engine  *Engine[PK]
	catalog *catalog.Catalog[K]
	name    string
}

// AddCatalog registers a catalog under a unique name. oneToOne declares
// that every item carries at most one key in this catalog, which limits
// a query to a single filter against it among the filter's direct
// conjuncts; alternatives under Or and filters under Not are not counted.
func AddCatalog[K cmp.Ordered, PK cmp.Ordered](e *Engine[PK], name string, compression bitvec.Compression, oneToOne bool) (*CatalogRef[K, PK], error) {
	if name == "" {
		return nil, ErrArgumentRequired
	}
	// Probe kernel availability once instead of failing on first Set.
	if _, err := bitvec.New(compression, e.opts.allowUnsafe); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.catalogs[name]; dup {
		return nil, ErrCatalogExists
	}

	c := catalog.New[K](name, compression, e.opts.allowUnsafe)
	e.catalogs[name] = &registeredCatalog{
		name:          name,
		oneToOne:      oneToOne,
		compression:   compression,
		optimizeRead:  c.OptimizeReadPhase,
		optimizeWrite: c.OptimizeWritePhase,
		facet: func(v *bitvec.Vector, parallelism int, shortCircuit bool) (map[any]uint32, error) {
			counts, err := c.Facet(v, parallelism, shortCircuit)
			if err != nil {
				return nil, err
			}
			out := make(map[any]uint32, len(counts))
			for k, n := range counts {
				out[k] = n
			}
			return out, nil
		},
	}
	e.order = append(e.order, name)

	return &CatalogRef[K, PK]{engine: e, catalog: c, name: name}, nil
}

// Name returns the catalog's registered name.
func (r *CatalogRef[K, PK]) Name() string {
	return r.name
}

// Set writes the item at pos under every given key, creating entries on
// first sight.
func (r *CatalogRef[K, PK]) Set(pos uint32, keys ...K) error {
	return translateError(r.catalog.SetAll(keys, pos, true))
}

// SetValue writes or clears the bit at pos for every given key.
func (r *CatalogRef[K, PK]) SetValue(pos uint32, value bool, keys ...K) error {
	return translateError(r.catalog.SetAll(keys, pos, value))
}

// Keys enumerates the catalog's distinct keys in order.
func (r *CatalogRef[K, PK]) Keys(ascending bool) iter.Seq[K] {
	return r.catalog.Keys(ascending)
}

// Exact builds a filter clause matching items carrying exactly key.
func (r *CatalogRef[K, PK]) Exact(key K) Clause {
	return &leafClause{
		catalogName: r.name,
		oneToOne:    r.oneToOne(),
		owner:       r.engine,
		filter: func(v *bitvec.Vector) error {
			return r.catalog.Filter(v, key)
		},
	}
}

// In builds a filter clause matching items carrying any of the keys.
// Keys are deduplicated.
func (r *CatalogRef[K, PK]) In(keys ...K) Clause {
	return &leafClause{
		catalogName: r.name,
		oneToOne:    r.oneToOne(),
		owner:       r.engine,
		filter: func(v *bitvec.Vector) error {
			return r.catalog.FilterIn(v, keys)
		},
	}
}

// Range builds a filter clause matching items whose key falls in
// [min, max]. A nil bound defaults to the catalog's smallest/largest
// key; at least one bound is required.
func (r *CatalogRef[K, PK]) Range(min, max *K) Clause {
	return &leafClause{
		catalogName: r.name,
		oneToOne:    r.oneToOne(),
		owner:       r.engine,
		filter: func(v *bitvec.Vector) error {
			return r.catalog.FilterRange(v, min, max)
		},
	}
}

// Sort builds a sort parameter ordering candidates by this catalog's
// keys.
func (r *CatalogRef[K, PK]) Sort(ascending bool) SortParam {
	return SortParam{
		catalogName: r.name,
		owner:       r.engine,
		stream: func(v *bitvec.Vector) iter.Seq[*bitvec.Vector] {
			return func(yield func(*bitvec.Vector) bool) {
				for _, group := range r.catalog.SortBitPositions(v, ascending) {
					if !yield(group) {
						return
					}
				}
			}
		},
	}
}

// Facet builds a facet parameter counting candidate items per distinct
// key of this catalog.
func (r *CatalogRef[K, PK]) Facet() FacetParam {
	return FacetParam{
		catalogName: r.name,
		owner:       r.engine,
	}
}

func (r *CatalogRef[K, PK]) oneToOne() bool {
	r.engine.mu.RLock()
	defer r.engine.mu.RUnlock()
	return r.engine.catalogs[r.name].oneToOne
}

// Package facetgo provides an embedded in-memory inverted-index search
// engine built on word-aligned hybrid (WAH) compressed bitmap vectors.
//
// Items are tagged with typed attributes held in per-attribute catalogs.
// Queries compose Boolean filter trees over those catalogs, count
// distinct values against the candidate set (faceting), sort by one or
// more catalogs or by primary key, and page the result.
//
// # Quick Start
//
//	e, _ := facetgo.New[int]()
//	color, _ := facetgo.AddCatalog[string](e, "color", bitvec.Compressed, true)
//	size, _ := facetgo.AddCatalog[string](e, "size", bitvec.Compressed, true)
//
//	e.Add(1, func(pos uint32) error {
//	    if err := color.Set(pos, "red"); err != nil {
//	        return err
//	    }
//	    return size.Set(pos, "S")
//	})
//
//	res, _ := e.CreateQuery().
//	    Filter(color.Exact("red")).
//	    Facet(size.Facet()).
//	    Execute(0, 10)
//
// # Deletion model
//
// Remove only tombstones an item; catalog vectors keep its bits until
// Compact rebuilds the bit-position space. Structural mutations are
// single-writer; queries are read-only and may run concurrently with
// each other.
package facetgo

package facetgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/facetgo/catalog"
)

var (
	// ErrArgumentRequired is returned when a required input is missing.
	ErrArgumentRequired = errors.New("argument required")

	// ErrArgumentOutOfRange is returned for invalid positions, counts
	// and inverted range bounds.
	ErrArgumentOutOfRange = errors.New("argument out of range")

	// ErrCatalogExists is returned when a catalog name is registered
	// twice.
	ErrCatalogExists = errors.New("catalog already registered")

	// ErrCatalogMismatch is returned when a query parameter references a
	// catalog belonging to a different engine.
	ErrCatalogMismatch = errors.New("catalog does not belong to this engine")

	// ErrDuplicateParameter is returned for a second filter on a
	// one-to-one catalog ANDed directly into the query's filter, or a
	// second sort or facet parameter on any catalog, within one query.
	// Filters under Or or Not are not counted.
	ErrDuplicateParameter = errors.New("duplicate parameter for catalog")

	// ErrAlreadyExecuted is returned by the second Execute call on a
	// one-shot query.
	ErrAlreadyExecuted = errors.New("query already executed")

	// ErrNotFound is returned when a primary key is unknown.
	ErrNotFound = errors.New("not found")

	// ErrPrimaryKeyExists is returned when adding an item under a
	// primary key that is already present.
	ErrPrimaryKeyExists = errors.New("primary key already present")

	// ErrSortConflict is returned when catalog sort parameters are
	// combined with SortByPrimaryKey.
	ErrSortConflict = errors.New("catalog sorts cannot be combined with primary-key sort")
)

// translateError normalizes lower-layer errors into the public contract.
// bitvec errors pass through unchanged; their kinds are part of the
// surface.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, catalog.ErrBoundRequired) {
		return fmt.Errorf("%w: %w", ErrArgumentRequired, err)
	}
	if errors.Is(err, catalog.ErrInvertedRange) {
		return fmt.Errorf("%w: %w", ErrArgumentOutOfRange, err)
	}
	return err
}

package facetgo

import (
	"github.com/hupe1980/facetgo/bitvec"
)

// Clause is a node of a Boolean filter tree. Leaves come from typed
// catalog references (Exact, In, Range); interior nodes from And, Or and
// Not. Same-kind children flatten on construction, so
// And(a, And(b, c)) and And(And(a, b), c) both build the one ternary
// And node.
type Clause interface {
	// eval produces the candidate vector for this subtree. universe
	// returns a fresh uncompressed copy of the engine's active bit
	// range.
	eval(universe func() *bitvec.Vector) (*bitvec.Vector, error)

	// collectLeaves appends the subtree's leaf parameters, for
	// engine-membership and duplicate validation.
	collectLeaves(dst []*leafClause) []*leafClause
}

// leafClause binds one catalog filter parameter. owner identifies the
// engine the catalog was registered with; filter is the catalog's
// create-filter capability captured at registration time.
type leafClause struct {
	catalogName string
	oneToOne    bool
	owner       any
	filter      func(*bitvec.Vector) error
}

func (l *leafClause) eval(universe func() *bitvec.Vector) (*bitvec.Vector, error) {
	v := universe()
	if err := l.filter(v); err != nil {
		return nil, translateError(err)
	}
	return v, nil
}

func (l *leafClause) collectLeaves(dst []*leafClause) []*leafClause {
	return append(dst, l)
}

type andClause struct {
	children []Clause
}

// And combines clauses conjunctively. Nested And children are flattened
// into the new node.
func And(children ...Clause) Clause {
	node := &andClause{}
	for _, c := range children {
		if sub, ok := c.(*andClause); ok {
			node.children = append(node.children, sub.children...)
			continue
		}
		node.children = append(node.children, c)
	}
	return node
}

func (a *andClause) eval(universe func() *bitvec.Vector) (*bitvec.Vector, error) {
	if len(a.children) == 0 {
		return universe(), nil
	}
	v, err := a.children[0].eval(universe)
	if err != nil {
		return nil, err
	}
	for _, c := range a.children[1:] {
		cv, err := c.eval(universe)
		if err != nil {
			return nil, err
		}
		if err := v.AndInPlace(cv); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (a *andClause) collectLeaves(dst []*leafClause) []*leafClause {
	for _, c := range a.children {
		dst = c.collectLeaves(dst)
	}
	return dst
}

type orClause struct {
	children []Clause
}

// Or combines clauses disjunctively. Nested Or children are flattened
// into the new node.
func Or(children ...Clause) Clause {
	node := &orClause{}
	for _, c := range children {
		if sub, ok := c.(*orClause); ok {
			node.children = append(node.children, sub.children...)
			continue
		}
		node.children = append(node.children, c)
	}
	return node
}

func (o *orClause) eval(universe func() *bitvec.Vector) (*bitvec.Vector, error) {
	switch len(o.children) {
	case 0:
		v := universe()
		v.Clear()
		return v, nil
	case 1:
		return o.children[0].eval(universe)
	}
	vectors := make([]*bitvec.Vector, 0, len(o.children))
	for _, c := range o.children {
		cv, err := c.eval(universe)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, cv)
	}
	return bitvec.OrOutOfPlace(vectors...)
}

func (o *orClause) collectLeaves(dst []*leafClause) []*leafClause {
	for _, c := range o.children {
		dst = c.collectLeaves(dst)
	}
	return dst
}

type notClause struct {
	child Clause
}

// Not negates a clause against the engine's active bit range.
func Not(child Clause) Clause {
	return &notClause{child: child}
}

func (n *notClause) eval(universe func() *bitvec.Vector) (*bitvec.Vector, error) {
	cv, err := n.child.eval(universe)
	if err != nil {
		return nil, err
	}
	v := universe()
	if err := v.AndNotInPlace(cv); err != nil {
		return nil, err
	}
	return v, nil
}

func (n *notClause) collectLeaves(dst []*leafClause) []*leafClause {
	return n.child.collectLeaves(dst)
}

// SPDX-License-Identifier: MIT
//
// File: merge.go
// Role: Merge / substitution. Collapse coincident wires into one identity.
//
// Policy:
//   - Substitute is a pure index rewrite over the constraint list: Op and the
//     A/B/V roles of every constraint are preserved, order is preserved.
//   - Retired wires stay in the store (value, name, pin untouched); they only
//     stop being referenced.
//   - CoincidentGroups is deterministic: groups and members follow input order.

package descent

import (
	"errors"
	"fmt"
	"math"
)

// ErrSubstitutionCycle indicates a mapping whose chains never settle (a→b, b→a).
var ErrSubstitutionCycle = errors.New("descent: substitution mapping has a cycle")

// Substitute rewrites every constraint reference found as a key of mapping
// to the mapped wire. Chains are followed to their end, so {a→b, b→c} sends
// both a and b to c. Identity entries are ignored. Named lookups of a retired
// wire are redirected to its survivor so later DeclareNamed calls agree with
// the rewritten graph.
//
// Panics with ErrWireOutOfRange for foreign indices and ErrSubstitutionCycle
// for cyclic mappings.
//
// Complexity: O(C + M·L) where M = len(mapping), L = longest chain.
func (n *Network) Substitute(mapping map[Wire]Wire) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.substitute(mapping)
}

// Referenced reports whether any constraint still mentions w.
// Complexity: O(C).
func (n *Network) Referenced(w Wire) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.mustContain(w)
	for _, c := range n.constraints {
		if c.A == w || c.B == w || c.V == w {
			return true
		}
	}
	return false
}

// CoincidentGroups clusters points whose current positions lie within tol
// of each other (Euclidean distance in the complex plane, transitively).
// Only clusters with two or more members are returned. Members keep their
// input order; groups are ordered by their first member.
//
// Implementation:
//   - Stage 1: Read every position under one read lock.
//   - Stage 2: Union-find over all pairs within tol (path halving, union by rank).
//   - Stage 3: Bucket points by root in first-appearance order.
//
// Complexity: O(P²·α(P)) time, O(P) space.
func (n *Network) CoincidentGroups(points []ComplexWire, tol float64) [][]ComplexWire {
	n.mu.RLock()
	pos := make([]complex128, len(points))
	for i, p := range points {
		n.mustContain(p.Re)
		n.mustContain(p.Im)
		pos[i] = complex(n.values[p.Re], n.values[p.Im])
	}
	n.mu.RUnlock()

	ds := newDisjointSet(len(points))
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if points[i] == points[j] || distance(pos[i], pos[j]) <= tol {
				ds.union(i, j)
			}
		}
	}

	slot := make(map[int]int) // root → index into groups
	var groups [][]ComplexWire
	for i, p := range points {
		root := ds.find(i)
		k, ok := slot[root]
		if !ok {
			k = len(groups)
			slot[root] = k
			groups = append(groups, nil)
		}
		groups[k] = append(groups[k], p)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g) >= 2 {
			out = append(out, g)
		}
	}
	return out
}

// MergeGroups collapses each group onto one representative: the first member
// with a pinned component, otherwise the first member. Every other member's
// Re/Im wires are substituted by the representative's. The retired members
// are returned in group order so the caller can drop the matching arrows.
func (n *Network) MergeGroups(groups [][]ComplexWire) []ComplexWire {
	n.mu.Lock()
	defer n.mu.Unlock()

	mapping := make(map[Wire]Wire)
	var retired []ComplexWire
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		rep := g[0]
		for _, m := range g {
			n.mustContain(m.Re)
			n.mustContain(m.Im)
			if n.pins[m.Re] || n.pins[m.Im] {
				rep = m
				break
			}
		}
		for _, m := range g {
			if m == rep {
				continue
			}
			if m.Re != rep.Re {
				mapping[m.Re] = rep.Re
			}
			if m.Im != rep.Im {
				mapping[m.Im] = rep.Im
			}
			retired = append(retired, m)
		}
	}
	n.substitute(mapping)

	return retired
}

func (n *Network) substitute(mapping map[Wire]Wire) {
	if len(mapping) == 0 {
		return
	}
	resolved := make(map[Wire]Wire, len(mapping))
	for from := range mapping {
		n.mustContain(from)
		to := from
		for hops := 0; ; hops++ {
			next, ok := mapping[to]
			if !ok || next == to {
				break
			}
			if hops > len(mapping) {
				panic(fmt.Errorf("%w: starting at %d", ErrSubstitutionCycle, from))
			}
			n.mustContain(next)
			to = next
		}
		if to != from {
			resolved[from] = to
		}
	}

	rewrite := func(w Wire) Wire {
		if to, ok := resolved[w]; ok {
			return to
		}
		return w
	}
	for i := range n.constraints {
		c := &n.constraints[i]
		c.A, c.B, c.V = rewrite(c.A), rewrite(c.B), rewrite(c.V)
	}
	for name, w := range n.byName {
		n.byName[name] = rewrite(w)
	}
}

func distance(u, v complex128) float64 {
	d := u - v
	return math.Hypot(real(d), imag(d))
}

// disjointSet is a slice-backed union-find.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(size int) *disjointSet {
	ds := &disjointSet{parent: make([]int, size), rank: make([]int, size)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]] // path halving
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(x, y int) {
	rx, ry := ds.find(x), ds.find(y)
	if rx == ry {
		return
	}
	switch {
	case ds.rank[rx] < ds.rank[ry]:
		ds.parent[rx] = ry
	case ds.rank[rx] > ds.rank[ry]:
		ds.parent[ry] = rx
	default:
		ds.parent[ry] = rx
		ds.rank[rx]++
	}
}

// SPDX-License-Identifier: MIT

package quiver

import (
	"fmt"

	"github.com/katalvlaran/mathtoys/descent"
)

// AddVariable places a free arrow at z. An empty label picks the next
// letter after the variables already on the sheet.
func (q *Quiver) AddVariable(label string, z complex128) Arrow {
	q.mu.Lock()
	arrow := q.addLocked(Variable, z, nil)
	if label != "" {
		q.arrows[len(q.arrows)-1].Label = label
		arrow.Label = label
	}
	q.mu.Unlock()

	q.notify(Event{Tag: "add", Arrow: arrow})
	return arrow
}

// AddConstant places a pinned arrow at z.
func (q *Quiver) AddConstant(z complex128) Arrow {
	q.mu.Lock()
	arrow := q.addLocked(Constant, z, nil)
	q.mu.Unlock()

	q.notify(Event{Tag: "add", Arrow: arrow})
	return arrow
}

// AddSum adds the arrow i + j, starting at the exact current sum.
func (q *Quiver) AddSum(i, j int) (Arrow, error) {
	return q.addDerived(Sum, i, j)
}

// AddProduct adds the arrow i · j, starting at the exact current product.
func (q *Quiver) AddProduct(i, j int) (Arrow, error) {
	return q.addDerived(Product, i, j)
}

// Drag pins a variable's wires and moves it to z, as a pointer holding it
// would each frame. Only variables can be held; constants and derived
// arrows report ErrNotDraggable.
func (q *Quiver) Drag(id int, z complex128) error {
	q.mu.Lock()
	arrow, ok := q.find(id)
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("Drag(%d): %w", id, ErrArrowNotFound)
	}
	if arrow.Kind != Variable {
		q.mu.Unlock()
		return fmt.Errorf("Drag(%d): %s: %w", id, arrow.Kind, ErrNotDraggable)
	}
	q.net.SetComplexPinned(arrow.Wires, true)
	q.net.SetComplex(arrow.Wires, z)
	q.mu.Unlock()

	q.notify(Event{Tag: "move"})
	return nil
}

// Release lets go of a held variable. Other kinds are never pinned by Drag,
// so releasing them is a no-op and constants stay pinned.
func (q *Quiver) Release(id int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	arrow, ok := q.find(id)
	if !ok {
		return fmt.Errorf("Release(%d): %w", id, ErrArrowNotFound)
	}
	if arrow.Kind == Variable {
		q.net.SetComplexPinned(arrow.Wires, false)
	}
	return nil
}

// Tick is one animation frame: if the total error exceeds the threshold it
// runs one Relax batch and reports true.
func (q *Quiver) Tick() bool {
	if q.net.TotalError() <= q.threshold {
		return false
	}
	q.net.Relax(q.stepsPerFrame)

	q.notify(Event{Tag: "move"})
	return true
}

// Settled reports whether the diagram is within the threshold.
func (q *Quiver) Settled() bool {
	return q.net.TotalError() <= q.threshold
}

// TotalError forwards to the network.
func (q *Quiver) TotalError() float64 {
	return q.net.TotalError()
}

// MergeCoincident unifies arrows lying within the merge tolerance of each
// other. Each cluster keeps one arrow (a pinned one if any); the others are
// dropped from the sheet and every reference to them is repointed at the
// survivor. It returns the number of dropped arrows.
func (q *Quiver) MergeCoincident() int {
	q.mu.Lock()
	// Constants go first so a cluster's representative is a constant whenever
	// it has one; a held variable is pinned too but must not win over it.
	pts := make([]descent.ComplexWire, 0, len(q.arrows))
	owner := make(map[descent.ComplexWire]int, len(q.arrows))
	for _, constantsPass := range []bool{true, false} {
		for _, a := range q.arrows {
			if (a.Kind == Constant) == constantsPass {
				pts = append(pts, a.Wires)
				owner[a.Wires] = a.ID
			}
		}
	}
	groups := q.net.CoincidentGroups(pts, q.mergeTol)
	retiredWires := q.net.MergeGroups(groups)
	if len(retiredWires) == 0 {
		q.mu.Unlock()
		return 0
	}

	gone := make(map[descent.ComplexWire]bool, len(retiredWires))
	for _, w := range retiredWires {
		gone[w] = true
	}
	survivor := make(map[int]int, len(retiredWires)) // retired ID → kept ID
	for _, g := range groups {
		var keep descent.ComplexWire
		for _, m := range g {
			if !gone[m] {
				keep = m
				break
			}
		}
		for _, m := range g {
			if gone[m] {
				survivor[owner[m]] = owner[keep]
			}
		}
	}

	retired := make([]int, 0, len(survivor))
	live := q.arrows[:0]
	for _, a := range q.arrows {
		if _, dropped := survivor[a.ID]; dropped {
			retired = append(retired, a.ID)
			continue
		}
		for k, arg := range a.Args {
			if to, ok := survivor[arg]; ok {
				a.Args[k] = to
			}
		}
		live = append(live, a)
	}
	q.arrows = live
	q.mu.Unlock()

	q.notify(Event{Tag: "merge", Retired: retired})
	return len(retired)
}

// Arrows returns a copy of the live arrows in creation order.
func (q *Quiver) Arrows() []Arrow {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Arrow, len(q.arrows))
	for i, a := range q.arrows {
		out[i] = cloneArrow(a)
	}
	return out
}

// Arrow returns the arrow with the given ID.
func (q *Quiver) Arrow(id int) (Arrow, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	a, ok := q.find(id)
	if !ok {
		return Arrow{}, fmt.Errorf("Arrow(%d): %w", id, ErrArrowNotFound)
	}
	return cloneArrow(a), nil
}

// Value returns the current position of an arrow.
func (q *Quiver) Value(id int) (complex128, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	a, ok := q.find(id)
	if !ok {
		return 0, fmt.Errorf("Value(%d): %w", id, ErrArrowNotFound)
	}
	return q.net.ComplexValue(a.Wires), nil
}

// Network exposes the underlying constraint network.
func (q *Quiver) Network() *descent.Network { return q.net }

// AddWatcher registers fn to be called after every change.
func (q *Quiver) AddWatcher(fn func(Event)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.watchers = append(q.watchers, fn)
}

func (q *Quiver) addDerived(kind Kind, i, j int) (Arrow, error) {
	q.mu.Lock()
	a, okA := q.find(i)
	b, okB := q.find(j)
	if !okA || !okB {
		q.mu.Unlock()
		return Arrow{}, fmt.Errorf("add %s(%d, %d): %w", kind, i, j, ErrArrowNotFound)
	}
	za, zb := q.net.ComplexValue(a.Wires), q.net.ComplexValue(b.Wires)
	z := za + zb
	if kind == Product {
		z = za * zb
	}
	arrow := q.addLocked(kind, z, []int{i, j})
	q.mu.Unlock()

	q.notify(Event{Tag: "add", Arrow: arrow})
	return arrow, nil
}

// addLocked creates the arrow, its wires and its constraints. Caller holds mu.
func (q *Quiver) addLocked(kind Kind, z complex128, args []int) Arrow {
	id := q.nextID
	q.nextID++

	var wires descent.ComplexWire
	if kind == Constant {
		wires = q.net.DeclareComplexConstant(z)
	} else {
		wires = q.net.DeclareComplexNamed(fmt.Sprintf("#%d", id))
		q.net.SetComplex(wires, z)
	}

	arrow := Arrow{ID: id, Kind: kind, Wires: wires, Args: args}
	switch kind {
	case Variable:
		for arrow.Label == "" || q.labelTaken(arrow.Label) {
			arrow.Label = variableLabel(q.nextVar)
			q.nextVar++
		}
	case Constant:
		arrow.Label = constantLabel(z)
	case Sum, Product:
		l, _ := q.find(args[0])
		r, _ := q.find(args[1])
		arrow.Label = derivedLabel(kind, args[0] == args[1], l.Label, r.Label)
		if kind == Sum {
			q.net.ComplexAdd(l.Wires, r.Wires, wires)
		} else {
			q.net.ComplexMul(l.Wires, r.Wires, wires)
		}
	}
	q.arrows = append(q.arrows, arrow)

	return cloneArrow(arrow)
}

func (q *Quiver) find(id int) (Arrow, bool) {
	for _, a := range q.arrows {
		if a.ID == id {
			return a, true
		}
	}
	return Arrow{}, false
}

func (q *Quiver) labelTaken(label string) bool {
	for _, a := range q.arrows {
		if a.Label == label {
			return true
		}
	}
	return false
}

func (q *Quiver) countKind(kind Kind) int {
	count := 0
	for _, a := range q.arrows {
		if a.Kind == kind {
			count++
		}
	}
	return count
}

func (q *Quiver) notify(ev Event) {
	q.mu.Lock()
	watchers := make([]func(Event), len(q.watchers))
	copy(watchers, q.watchers)
	q.mu.Unlock()

	for _, w := range watchers {
		w(ev)
	}
}

func cloneArrow(a Arrow) Arrow {
	if a.Args != nil {
		a.Args = append([]int(nil), a.Args...)
	}
	return a
}

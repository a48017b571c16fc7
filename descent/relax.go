// SPDX-License-Identifier: MIT
//
// File: relax.go
// Role: Constraint list and the relaxation engine.
//
// Objective:
//
//	E = Σ_c 0.5 * (f_c(a, b) − v)²,  f = + or *
//
// Partials per constraint (d = f(a, b) − v):
//
//	add: ∂E/∂a = d,    ∂E/∂b = d,    ∂E/∂v = −d
//	mul: ∂E/∂a = d·b,  ∂E/∂b = d·a,  ∂E/∂v = −d
//
// A wire shared by several constraints sums their contributions.

package descent

import (
	"context"
	"fmt"
)

// AddConstraint appends (op, a, b, v). All three wires must exist and op
// must be OpAdd or OpMul; anything else panics.
// Complexity: O(1) amortized.
func (n *Network) AddConstraint(op Op, a, b, v Wire) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.addConstraint(op, a, b, v)
}

// Add records a + b == v.
func (n *Network) Add(a, b, v Wire) { n.AddConstraint(OpAdd, a, b, v) }

// Mul records a * b == v.
func (n *Network) Mul(a, b, v Wire) { n.AddConstraint(OpMul, a, b, v) }

// Constraints returns a copy of the constraint list in insertion order.
func (n *Network) Constraints() []Constraint {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Constraint, len(n.constraints))
	copy(out, n.constraints)
	return out
}

// NumConstraints reports the length of the constraint list.
func (n *Network) NumConstraints() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return len(n.constraints)
}

// ConstraintError scores c against the current wire values:
// 0.5 * (a op b − v)².
func (n *Network) ConstraintError(c Constraint) float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.mustContain(c.A)
	n.mustContain(c.B)
	n.mustContain(c.V)
	return n.residual(c)
}

// TotalError sums ConstraintError over every constraint. Callers poll it to
// decide whether another Relax batch is worth running.
// Complexity: O(C).
func (n *Network) TotalError() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.totalError()
}

// Gradient returns ∂E/∂w for every wire, pinned ones included.
// Complexity: O(W + C).
func (n *Network) Gradient() []float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	pd := make([]float64, len(n.values))
	n.gradientInto(pd)
	return pd
}

// Relax runs nsteps rounds of synchronous gradient descent: compute the full
// gradient, then move every unpinned wire by −stepSize·gradient. It always
// performs exactly nsteps rounds; nsteps <= 0 does nothing.
//
// Complexity: O(nsteps·(W + C)).
func (n *Network) Relax(nsteps int) {
	if nsteps <= 0 {
		return
	}

	n.mu.Lock()
	pd := make([]float64, len(n.values))
	for step := 0; step < nsteps; step++ {
		n.gradientInto(pd)
		for i, d := range pd {
			if !n.pins[i] {
				n.values[i] -= n.stepSize * d
			}
		}
	}
	obs := n.observer
	var total float64
	if obs != nil {
		total = n.totalError()
	}
	wires, constraints := len(n.values), len(n.constraints)
	n.mu.Unlock()

	if obs != nil {
		obs.ObserveRelax(nsteps, total, wires, constraints)
	}
}

// RelaxUntil issues Relax(batch) until TotalError drops below tol, maxSteps
// rounds have been spent, or ctx is done. It returns the number of rounds
// performed and ctx.Err() on cancellation.
//
// Relax itself never checks convergence; this is a caller-side loop.
func (n *Network) RelaxUntil(ctx context.Context, tol float64, maxSteps, batch int) (int, error) {
	if batch <= 0 {
		batch = 1
	}
	steps := 0
	for steps < maxSteps && n.TotalError() >= tol {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		k := batch
		if rest := maxSteps - steps; k > rest {
			k = rest
		}
		n.Relax(k)
		steps += k
	}
	return steps, nil
}

func (n *Network) addConstraint(op Op, a, b, v Wire) {
	if op != OpAdd && op != OpMul {
		panic(fmt.Errorf("%w: %d", ErrUnknownOp, uint8(op)))
	}
	n.mustContain(a)
	n.mustContain(b)
	n.mustContain(v)
	n.constraints = append(n.constraints, Constraint{Op: op, A: a, B: b, V: v})
}

func (n *Network) residual(c Constraint) float64 {
	r := c.Op.apply(n.values[c.A], n.values[c.B]) - n.values[c.V]
	return 0.5 * r * r
}

func (n *Network) totalError() float64 {
	total := 0.0
	for _, c := range n.constraints {
		total += n.residual(c)
	}
	return total
}

// gradientInto zeroes pd (len == NumWires) and accumulates every partial.
func (n *Network) gradientInto(pd []float64) {
	for i := range pd {
		pd[i] = 0
	}
	for _, c := range n.constraints {
		av, bv, vv := n.values[c.A], n.values[c.B], n.values[c.V]
		switch c.Op {
		case OpAdd:
			diff := av + bv - vv
			pd[c.A] += diff
			pd[c.B] += diff
			pd[c.V] -= diff
		case OpMul:
			diff := av*bv - vv
			pd[c.A] += diff * bv
			pd[c.B] += diff * av
			pd[c.V] -= diff
		default:
			panic(fmt.Errorf("%w: %d", ErrUnknownOp, uint8(c.Op)))
		}
	}
}

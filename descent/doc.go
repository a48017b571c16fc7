// SPDX-License-Identifier: MIT

// Package descent keeps a small network of scalar "wires" self-consistent by
// gradient descent.
//
// 🚀 What is a constraint network?
//
//	A Network holds scalar unknowns (wires) and ternary relations between them
//	(constraints). Each constraint reads "a op b == v" with op ∈ {+, *}.
//	Violations are scored as half the squared residual and the sum of all
//	residuals is driven toward zero by plain fixed-step gradient descent:
//	  • no momentum, no adaptive step, no line search
//	  • pinned wires are boundary conditions and never move
//	  • the caller decides how many steps to run and when to stop
//
// ✨ Key features:
//   - Wire store with name dedup, anonymous constants and per-wire pins
//   - Complex adapter: a complex number is a pair of wires; complex multiply
//     is decomposed into four real products and two real sums
//   - Live structural edits between relaxation batches (declare, pin, merge)
//   - Substitution pass that collapses coincident wires without touching
//     constraint operators or argument roles
//   - JSON snapshots and an Observer hook for metrics
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/mathtoys/descent"
//
//	n := descent.NewNetwork()
//	a := n.DeclareConstant(3)
//	b := n.DeclareConstant(4)
//	v := n.DeclareNamed("v", 0)
//	n.Add(a, b, v)
//	for n.TotalError() > 1e-6 {
//	  n.Relax(100)
//	}
//	fmt.Println(n.Get(v)) // ≈ 7
//
// Performance:
//
//   - Gradient: O(W + C) per step (W wires, C constraints)
//   - Relax(k): O(k·(W + C))
//
// Concurrency:
//
//	A Network is meant to be driven from one goroutine (an animation or
//	event loop). Its methods are nevertheless guarded by a sync.RWMutex so a
//	Network can be shared by server handlers; Relax holds the write lock for
//	the whole batch so no edit lands in the middle of a gradient computation.
package descent

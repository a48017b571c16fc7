// SPDX-License-Identifier: MIT

// Package quiver models a sheet of "arrows" (complex numbers drawn from the
// origin) whose relations are kept consistent by a descent.Network.
//
// An arrow is a variable, a constant, or the sum or product of two other
// arrows. Every arrow owns a (Re, Im) pair of wires; sums and products add
// complex constraints between the pairs. Dragging a variable pins its wires
// to the pointer position and lets relaxation move the rest of the diagram.
//
// A host UI drives a Quiver from its frame loop:
//
//	q := quiver.New(quiver.WithUnitArrows())
//	a, _ := q.AddVariable(complex(1, 1))
//	p, _ := q.AddProduct(a.ID, a.ID)
//	...
//	// every frame
//	q.Tick()                    // relax a batch if the diagram is off
//	for _, arr := range q.Arrows() { draw(arr) }
//
// Arrows that end up on top of each other can be unified with
// MergeCoincident, which collapses their wires and drops the duplicates.
package quiver

// SPDX-License-Identifier: MIT
package descent_test

import (
	"fmt"

	"github.com/katalvlaran/mathtoys/descent"
)

// //////////////////////////////////////////////////////////////////////////////
// ExampleNetwork_Relax
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	Two pinned constants feed a free sum:  3 + 4 = v.
//	The caller keeps issuing batches until the residual is small.
//
// Complexity: O(steps·(W + C))
func ExampleNetwork_Relax() {
	n := descent.NewNetwork()
	a := n.DeclareConstant(3)
	b := n.DeclareConstant(4)
	v := n.DeclareNamed("v", 0)
	n.Add(a, b, v)

	for n.TotalError() > 1e-8 {
		n.Relax(100)
	}
	fmt.Printf("v=%.3f\n", n.Get(v))
	// Output:
	// v=7.000
}

// //////////////////////////////////////////////////////////////////////////////
// ExampleNetwork_ComplexMul
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	(2+3i)·(4−i) with both factors pinned. The product pair settles at 11+10i
//	through four auxiliary real products.
func ExampleNetwork_ComplexMul() {
	n := descent.NewNetwork()
	u := n.DeclareComplexConstant(complex(2, 3))
	w := n.DeclareComplexConstant(complex(4, -1))
	v := n.DeclareComplexNamed("v")
	n.ComplexMul(u, w, v)

	n.Relax(20000)
	z := n.ComplexValue(v)
	fmt.Printf("v=%.2f%+.2fi wires=%d constraints=%d\n", real(z), imag(z), n.NumWires(), n.NumConstraints())
	// Output:
	// v=11.00+10.00i wires=10 constraints=6
}

// //////////////////////////////////////////////////////////////////////////////
// ExampleNetwork_MergeGroups
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	A free point dragged onto the constant 1 is unified with it.
//	The constraint that used the free point now reads from the constant.
func ExampleNetwork_MergeGroups() {
	n := descent.NewNetwork()
	one := n.DeclareComplexConstant(1)
	p := n.DeclareComplexNamed("p")
	sq := n.DeclareComplexNamed("sq")
	n.ComplexAdd(p, p, sq)
	n.SetComplex(p, complex(1.0000001, 0))

	groups := n.CoincidentGroups([]descent.ComplexWire{one, p}, 1e-3)
	retired := n.MergeGroups(groups)

	fmt.Println("retired p:", retired[0] == p)
	fmt.Println("p still referenced:", n.Referenced(p.Re))
	fmt.Println(n.Constraints()[0].A == one.Re)
	// Output:
	// retired p: true
	// p still referenced: false
	// true
}

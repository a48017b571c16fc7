// SPDX-License-Identifier: MIT
//
// File: complex.go
// Role: Complex adapter. A complex value is a (Re, Im) pair of real wires;
// complex relations become real constraints.

package descent

import "fmt"

// DeclareComplexNamed declares (or finds) the wires name+".x" and name+".y".
func (n *Network) DeclareComplexNamed(name string) ComplexWire {
	n.mu.Lock()
	defer n.mu.Unlock()

	return ComplexWire{
		Re: n.declareNamed(name+".x", 0),
		Im: n.declareNamed(name+".y", 0),
	}
}

// DeclareComplexConstant appends two fresh pinned constants for real(z), imag(z).
func (n *Network) DeclareComplexConstant(z complex128) ComplexWire {
	n.mu.Lock()
	defer n.mu.Unlock()

	return ComplexWire{
		Re: n.appendWire("", real(z), true),
		Im: n.appendWire("", imag(z), true),
	}
}

// ComplexAdd records a + b == v as one real sum per component.
func (n *Network) ComplexAdd(a, b, v ComplexWire) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mustContainAll(a, b, v)
	n.addConstraint(OpAdd, a.Re, b.Re, v.Re)
	n.addConstraint(OpAdd, a.Im, b.Im, v.Im)
}

// ComplexMul records a * b == v.
//
// Each output component is a sum of two products, so four auxiliary wires
// x1, x2, y1, y2 are generated and six real constraints are emitted:
//
//	x1 = a.re * b.re        y1 = a.im * b.re
//	x2 = a.im * b.im        y2 = a.re * b.im
//	v.re + x2 = x1          y1 + y2 = v.im
//
// The real part is wired as add(v.re, x2, x1), i.e. v.re == x1 − x2, so the
// residual gradient on v.re has the sign of an addend, not of a result.
func (n *Network) ComplexMul(a, b, v ComplexWire) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mustContainAll(a, b, v)
	x1, x2 := n.genvar("x1"), n.genvar("x2")
	y1, y2 := n.genvar("y1"), n.genvar("y2")
	n.addConstraint(OpMul, a.Re, b.Re, x1)
	n.addConstraint(OpMul, a.Im, b.Im, x2)
	n.addConstraint(OpAdd, v.Re, x2, x1)
	n.addConstraint(OpMul, a.Im, b.Re, y1)
	n.addConstraint(OpMul, a.Re, b.Im, y2)
	n.addConstraint(OpAdd, y1, y2, v.Im)
}

// ComplexValue reads the pair as a complex128.
func (n *Network) ComplexValue(c ComplexWire) complex128 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.mustContain(c.Re)
	n.mustContain(c.Im)
	return complex(n.values[c.Re], n.values[c.Im])
}

// SetComplex writes z into the pair.
func (n *Network) SetComplex(c ComplexWire, z complex128) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mustContain(c.Re)
	n.mustContain(c.Im)
	n.values[c.Re] = real(z)
	n.values[c.Im] = imag(z)
}

// SetComplexPinned pins or releases both components.
func (n *Network) SetComplexPinned(c ComplexWire, pinned bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mustContain(c.Re)
	n.mustContain(c.Im)
	n.pins[c.Re] = pinned
	n.pins[c.Im] = pinned
}

// genvar declares a fresh unpinned wire named stem_N. Caller holds mu.
func (n *Network) genvar(stem string) Wire {
	name := fmt.Sprintf("%s_%d", stem, n.gensym)
	n.gensym++
	return n.declareNamed(name, 0)
}

// mustContainAll checks every component before anything is allocated, so a
// bad call leaves the network untouched.
func (n *Network) mustContainAll(cs ...ComplexWire) {
	for _, c := range cs {
		n.mustContain(c.Re)
		n.mustContain(c.Im)
	}
}

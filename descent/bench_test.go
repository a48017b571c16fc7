// SPDX-License-Identifier: MIT
package descent_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/mathtoys/descent"
)

// chainNetwork builds k chained complex products z_{i+1} = z_i · c.
func chainNetwork(k int) *descent.Network {
	n := descent.NewNetwork()
	c := n.DeclareComplexConstant(complex(0.9, 0.1))
	prev := n.DeclareComplexConstant(1)
	for i := 0; i < k; i++ {
		next := n.DeclareComplexNamed(fmt.Sprintf("z%d", i))
		n.ComplexMul(prev, c, next)
		prev = next
	}
	return n
}

func benchmarkRelax(b *testing.B, k, steps int) {
	n := chainNetwork(k)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Relax(steps)
	}
}

// BenchmarkRelax_Chain10 relaxes a short product chain (≈60 wires).
func BenchmarkRelax_Chain10(b *testing.B) { benchmarkRelax(b, 10, 50) }

// BenchmarkRelax_Chain100 relaxes a long product chain (≈600 wires).
func BenchmarkRelax_Chain100(b *testing.B) { benchmarkRelax(b, 100, 50) }

// BenchmarkCoincidentGroups_200 clusters 200 scattered points.
func BenchmarkCoincidentGroups_200(b *testing.B) {
	n := descent.NewNetwork()
	pts := make([]descent.ComplexWire, 200)
	for i := range pts {
		pts[i] = n.DeclareComplexConstant(complex(float64(i%20), float64(i/20)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.CoincidentGroups(pts, 0.5)
	}
}

// SPDX-License-Identifier: MIT
package descent_test

import (
	"encoding/json"
	"testing"

	"github.com/katalvlaran/mathtoys/descent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnapshot_RestoresBehaviour rebuilds a network through JSON and checks it
// keeps relaxing identically, gensym included.
func TestSnapshot_RestoresBehaviour(t *testing.T) {
	n := descent.NewNetwork(descent.WithStepSize(0.02))
	u := n.DeclareComplexConstant(complex(1, 1))
	w := n.DeclareComplexNamed("w")
	v := n.DeclareComplexNamed("v")
	n.ComplexMul(u, w, v)
	n.SetComplex(w, complex(0.5, -2))
	n.Relax(37)

	data, err := json.Marshal(n.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"*"`)

	var snap descent.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	back, err := descent.FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, 0.02, back.StepSize())
	assert.Equal(t, n.Values(), back.Values())
	assert.Equal(t, n.Constraints(), back.Constraints())
	assert.Equal(t, n.Pinned(u.Re), back.Pinned(u.Re))

	n.Relax(100)
	back.Relax(100)
	assert.Equal(t, n.Values(), back.Values())

	n.ComplexMul(u, u, v)
	back.ComplexMul(u, u, v)
	_, ok := back.Lookup("x1_4")
	assert.True(t, ok, "gensym counter survives the round trip")
	assert.Equal(t, n.NumWires(), back.NumWires())
}

// TestSnapshot_KeepsRedirectedNames preserves merge redirects.
func TestSnapshot_KeepsRedirectedNames(t *testing.T) {
	n := descent.NewNetwork()
	p := n.DeclareNamed("p", 0)
	q := n.DeclareNamed("q", 0)
	n.Substitute(map[descent.Wire]descent.Wire{p: q})

	back, err := descent.FromSnapshot(n.Snapshot())
	require.NoError(t, err)
	got, ok := back.Lookup("p")
	require.True(t, ok)
	assert.Equal(t, q, got)
}

// TestFromSnapshot_Invalid rejects dangling indices and unknown operators.
func TestFromSnapshot_Invalid(t *testing.T) {
	wires := []descent.WireState{{Name: "a"}, {Name: "b"}}

	_, err := descent.FromSnapshot(descent.Snapshot{
		Wires:       wires,
		Constraints: []descent.Constraint{{Op: descent.OpAdd, A: 0, B: 1, V: 2}},
	})
	assert.ErrorIs(t, err, descent.ErrInvalidSnapshot)
	assert.ErrorIs(t, err, descent.ErrWireOutOfRange)

	_, err = descent.FromSnapshot(descent.Snapshot{
		Wires:       wires,
		Constraints: []descent.Constraint{{Op: 0, A: 0, B: 1, V: 1}},
	})
	assert.ErrorIs(t, err, descent.ErrInvalidSnapshot)
	assert.ErrorIs(t, err, descent.ErrUnknownOp)

	var op descent.Op
	assert.ErrorIs(t, json.Unmarshal([]byte(`"/"`), &op), descent.ErrUnknownOp)
}

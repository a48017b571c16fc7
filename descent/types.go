// SPDX-License-Identifier: MIT

// Package descent declares Wire, Op, Constraint, ComplexWire, the Network
// container, NetworkOption and the package sentinel errors.
//
// Errors:
//
//	ErrWireOutOfRange  - a wire index does not belong to the network.
//	ErrUnknownOp       - a constraint carries an operator other than + or *.
//	ErrInvalidSnapshot - a snapshot cannot be turned back into a network.
package descent

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for descent operations.
var (
	// ErrWireOutOfRange indicates a wire index outside [0, NumWires).
	// Raised as a panic value: indices are produced by the network itself,
	// so a foreign index is a caller bug.
	ErrWireOutOfRange = errors.New("descent: wire index out of range")

	// ErrUnknownOp indicates a constraint operator other than OpAdd/OpMul.
	ErrUnknownOp = errors.New("descent: unknown constraint operator")

	// ErrInvalidSnapshot indicates a snapshot with dangling indices or bad operators.
	ErrInvalidSnapshot = errors.New("descent: invalid snapshot")
)

// DefaultStepSize is the fixed gradient-descent step used by Relax.
const DefaultStepSize = 0.01

// Wire identifies one scalar in a Network. Indices are assigned densely
// from zero and are never reused.
type Wire int

// Op is the relation kind of a Constraint.
type Op uint8

const (
	// OpAdd relates a + b == v.
	OpAdd Op = iota + 1

	// OpMul relates a * b == v.
	OpMul
)

// String returns "+" or "*".
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpMul:
		return "*"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// MarshalJSON encodes the operator as its symbol.
func (op Op) MarshalJSON() ([]byte, error) {
	if op != OpAdd && op != OpMul {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, uint8(op))
	}
	return json.Marshal(op.String())
}

// UnmarshalJSON accepts "+" or "*".
func (op *Op) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "+":
		*op = OpAdd
	case "*":
		*op = OpMul
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}
	return nil
}

// apply evaluates a op b. It panics on an unknown operator.
func (op Op) apply(a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpMul:
		return a * b
	default:
		panic(fmt.Errorf("%w: %d", ErrUnknownOp, uint8(op)))
	}
}

// Constraint asks the relaxation engine to drive V toward A op B.
//
// Pinning is a property of wires, not constraints: any of A, B, V may be
// pinned or free independently.
type Constraint struct {
	Op Op   `json:"op"`
	A  Wire `json:"a"`
	B  Wire `json:"b"`
	V  Wire `json:"v"`
}

// String renders the constraint as "a op b = v" with raw indices.
func (c Constraint) String() string {
	return fmt.Sprintf("w%d %s w%d = w%d", c.A, c.Op, c.B, c.V)
}

// ComplexWire groups the real and imaginary wires of one complex value.
// The engine never sees it; it is a caller-facing pairing only.
type ComplexWire struct {
	Re Wire `json:"re"`
	Im Wire `json:"im"`
}

// Observer receives a report after every Relax batch.
type Observer interface {
	ObserveRelax(steps int, totalError float64, wires, constraints int)
}

// NetworkOption configures a Network before first use.
type NetworkOption func(n *Network)

// WithStepSize sets the gradient-descent step. Panics if step is not positive.
func WithStepSize(step float64) NetworkOption {
	if !(step > 0) {
		panic(fmt.Sprintf("descent: WithStepSize(%v): step must be > 0", step))
	}
	return func(n *Network) { n.stepSize = step }
}

// WithObserver attaches an Observer notified after each Relax batch.
func WithObserver(o Observer) NetworkOption {
	return func(n *Network) { n.observer = o }
}

// Network is one independent constraint system: parallel wire stores, an
// append-only constraint list and a gensym counter for auxiliary wires.
//
// values/names/pins are indexed by Wire and always have equal length.
// byName maps non-empty names to the first wire declared with that name.
type Network struct {
	mu sync.RWMutex

	stepSize float64
	observer Observer

	values []float64
	names  []string
	pins   []bool
	byName map[string]Wire

	constraints []Constraint
	gensym      uint64
}

// NewNetwork returns an empty Network with DefaultStepSize.
// Complexity: O(len(opts)).
func NewNetwork(opts ...NetworkOption) *Network {
	n := &Network{
		stepSize: DefaultStepSize,
		byName:   make(map[string]Wire),
	}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// StepSize reports the configured descent step.
func (n *Network) StepSize() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.stepSize
}

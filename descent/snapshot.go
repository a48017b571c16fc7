// SPDX-License-Identifier: MIT

package descent

import "fmt"

// WireState is one wire as stored in a Snapshot.
type WireState struct {
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value"`
	Pinned bool    `json:"pinned,omitempty"`
}

// Snapshot is a self-contained, JSON-friendly copy of a Network.
// Wires[i] is the state of Wire(i).
type Snapshot struct {
	StepSize    float64      `json:"step_size"`
	Gensym      uint64       `json:"gensym"`
	Wires       []WireState  `json:"wires"`
	Constraints []Constraint `json:"constraints"`

	// Names records name lookups that a merge redirected away from the
	// first wire carrying that name.
	Names map[string]Wire `json:"names,omitempty"`
}

// Snapshot copies the whole network state.
// Complexity: O(W + C).
func (n *Network) Snapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()

	s := Snapshot{
		StepSize:    n.stepSize,
		Gensym:      n.gensym,
		Wires:       make([]WireState, len(n.values)),
		Constraints: make([]Constraint, len(n.constraints)),
	}
	for i := range n.values {
		s.Wires[i] = WireState{Name: n.names[i], Value: n.values[i], Pinned: n.pins[i]}
	}
	copy(s.Constraints, n.constraints)
	for name, w := range n.byName {
		if n.names[w] != name {
			if s.Names == nil {
				s.Names = make(map[string]Wire)
			}
			s.Names[name] = w
		}
	}
	return s
}

// FromSnapshot rebuilds a Network. A positive s.StepSize is applied before
// opts, so options may still override it. Dangling indices or unknown
// operators yield ErrInvalidSnapshot.
func FromSnapshot(s Snapshot, opts ...NetworkOption) (*Network, error) {
	if s.StepSize > 0 {
		opts = append([]NetworkOption{WithStepSize(s.StepSize)}, opts...)
	}
	n := NewNetwork(opts...)
	for _, ws := range s.Wires {
		n.appendWire(ws.Name, ws.Value, ws.Pinned)
	}
	for i, c := range s.Constraints {
		if c.Op != OpAdd && c.Op != OpMul {
			return nil, fmt.Errorf("%w: constraint %d: %w", ErrInvalidSnapshot, i, ErrUnknownOp)
		}
		for _, w := range [...]Wire{c.A, c.B, c.V} {
			if !n.contains(w) {
				return nil, fmt.Errorf("%w: constraint %d: %w: %d", ErrInvalidSnapshot, i, ErrWireOutOfRange, w)
			}
		}
		n.constraints = append(n.constraints, c)
	}
	for name, w := range s.Names {
		if !n.contains(w) {
			return nil, fmt.Errorf("%w: name %q: %w: %d", ErrInvalidSnapshot, name, ErrWireOutOfRange, w)
		}
		n.byName[name] = w
	}
	n.gensym = s.Gensym

	return n, nil
}

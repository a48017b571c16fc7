// SPDX-License-Identifier: MIT
//
// File: wires.go
// Role: Wire store. Declaration, pins, direct reads and writes.
//
// Policy:
//   - Wire indices are dense and permanent; nothing here ever removes a wire.
//   - Out-of-range indices panic with ErrWireOutOfRange.
//   - Named wires dedupe by name; constants never dedupe.

package descent

import "fmt"

// DeclareNamed returns the wire called name, creating it with the given
// initial value if it does not exist yet. A new wire starts unpinned.
// An existing wire is returned unchanged; initial is ignored in that case.
//
// The empty name marks anonymous wires and is never deduplicated.
//
// Complexity: O(1) amortized.
func (n *Network) DeclareNamed(name string, initial float64) Wire {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.declareNamed(name, initial)
}

// DeclareConstant appends a fresh pinned, anonymous wire holding value.
// Equal values still get distinct wires so each can be retired on its own
// by a later merge.
//
// Complexity: O(1) amortized.
func (n *Network) DeclareConstant(value float64) Wire {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.appendWire("", value, true)
}

// SetPinned freezes (true) or releases (false) a wire. Re-pinning with the
// same flag is a no-op.
func (n *Network) SetPinned(w Wire, pinned bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mustContain(w)
	n.pins[w] = pinned
}

// Pinned reports whether w is currently excluded from descent updates.
func (n *Network) Pinned(w Wire) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.mustContain(w)
	return n.pins[w]
}

// Get returns the current value of w.
func (n *Network) Get(w Wire) float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.mustContain(w)
	return n.values[w]
}

// Set overwrites the value of w, pinned or not. This is how a pointer drag
// moves a held point each frame.
func (n *Network) Set(w Wire, value float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mustContain(w)
	n.values[w] = value
}

// Name returns the debug name of w ("" for constants).
func (n *Network) Name(w Wire) string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.mustContain(w)
	return n.names[w]
}

// Lookup finds a named wire without creating it.
func (n *Network) Lookup(name string) (Wire, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if name == "" {
		return 0, false
	}
	w, ok := n.byName[name]
	return w, ok
}

// NumWires reports how many wires were ever declared, orphans included.
func (n *Network) NumWires() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return len(n.values)
}

// Contains reports whether w is a valid index of this network.
// Use it to vet indices that arrive from outside the process.
func (n *Network) Contains(w Wire) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.contains(w)
}

// Values returns a copy of all wire values, indexed by Wire.
func (n *Network) Values() []float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]float64, len(n.values))
	copy(out, n.values)
	return out
}

// declareNamed is DeclareNamed without locking.
func (n *Network) declareNamed(name string, initial float64) Wire {
	if name != "" {
		if w, ok := n.byName[name]; ok {
			return w
		}
	}
	return n.appendWire(name, initial, false)
}

// appendWire grows the three parallel stores by one. Caller holds mu.
func (n *Network) appendWire(name string, value float64, pinned bool) Wire {
	w := Wire(len(n.values))
	n.values = append(n.values, value)
	n.names = append(n.names, name)
	n.pins = append(n.pins, pinned)
	if name != "" {
		if _, taken := n.byName[name]; !taken {
			n.byName[name] = w
		}
	}
	return w
}

func (n *Network) contains(w Wire) bool {
	return w >= 0 && int(w) < len(n.values)
}

// mustContain panics with ErrWireOutOfRange if w is not a wire of n.
func (n *Network) mustContain(w Wire) {
	if !n.contains(w) {
		panic(fmt.Errorf("%w: %d (have %d wires)", ErrWireOutOfRange, w, len(n.values)))
	}
}

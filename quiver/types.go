// SPDX-License-Identifier: MIT

package quiver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/katalvlaran/mathtoys/descent"
)

// Sentinel errors for quiver operations.
var (
	// ErrArrowNotFound indicates an arrow ID that is not (or no longer) on the sheet.
	ErrArrowNotFound = errors.New("quiver: arrow not found")

	// ErrNotDraggable indicates a Drag on an arrow that is not a variable.
	ErrNotDraggable = errors.New("quiver: only variables can be dragged")

	// ErrInvalidState indicates a saved State that does not fit its network.
	ErrInvalidState = errors.New("quiver: invalid state")
)

// Defaults for the frame loop.
const (
	DefaultThreshold      = 1e-5
	DefaultStepsPerFrame  = 50
	DefaultMergeTolerance = 1e-3
)

// Kind says how an arrow came to be.
type Kind int

const (
	// Variable is a free arrow placed by the user.
	Variable Kind = iota

	// Constant is a pinned arrow that never moves on its own.
	Constant

	// Sum is Args[0] + Args[1].
	Sum

	// Product is Args[0] · Args[1].
	Product
)

var kindNames = [...]string{"variable", "constant", "sum", "product"}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Arrow is one complex number on the sheet.
type Arrow struct {
	ID    int                 `json:"id"`
	Label string              `json:"label"`
	Kind  Kind                `json:"kind"`
	Wires descent.ComplexWire `json:"wires"`
	Args  []int               `json:"args,omitempty"`
}

// Event is delivered to watchers after a change.
//
// Tag is one of "add", "move", "merge". Arrow is set for "add";
// Retired lists dropped arrow IDs for "merge".
type Event struct {
	Tag     string
	Arrow   Arrow
	Retired []int
}

// Option configures a Quiver.
type Option func(q *Quiver)

// WithNetworkOptions forwards options to the underlying descent.Network.
func WithNetworkOptions(opts ...descent.NetworkOption) Option {
	return func(q *Quiver) { q.netOpts = append(q.netOpts, opts...) }
}

// WithThreshold sets the total error above which Tick relaxes.
// Panics if threshold is negative.
func WithThreshold(threshold float64) Option {
	if threshold < 0 {
		panic(fmt.Sprintf("quiver: WithThreshold(%v): must be >= 0", threshold))
	}
	return func(q *Quiver) { q.threshold = threshold }
}

// WithStepsPerFrame sets the Relax batch issued by one Tick. Panics if steps < 1.
func WithStepsPerFrame(steps int) Option {
	if steps < 1 {
		panic(fmt.Sprintf("quiver: WithStepsPerFrame(%d): must be >= 1", steps))
	}
	return func(q *Quiver) { q.stepsPerFrame = steps }
}

// WithMergeTolerance sets the distance under which arrows count as coincident.
// Panics if tol is negative.
func WithMergeTolerance(tol float64) Option {
	if tol < 0 {
		panic(fmt.Sprintf("quiver: WithMergeTolerance(%v): must be >= 0", tol))
	}
	return func(q *Quiver) { q.mergeTol = tol }
}

// WithUnitArrows seeds the sheet with the constants 0 and 1.
func WithUnitArrows() Option {
	return func(q *Quiver) { q.seedUnits = true }
}

// Quiver is a collection of arrows over one constraint network.
type Quiver struct {
	mu sync.Mutex

	net     *descent.Network
	netOpts []descent.NetworkOption

	arrows   []Arrow // live arrows in creation order
	nextID   int
	nextVar  int // variables ever created; picks the next label
	watchers []func(Event)

	threshold     float64
	stepsPerFrame int
	mergeTol      float64
	seedUnits     bool
}

// New returns an empty Quiver with a fresh network.
func New(opts ...Option) *Quiver {
	q := &Quiver{
		threshold:     DefaultThreshold,
		stepsPerFrame: DefaultStepsPerFrame,
		mergeTol:      DefaultMergeTolerance,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.net = descent.NewNetwork(q.netOpts...)
	if q.seedUnits {
		q.addLocked(Constant, 0, nil)
		q.addLocked(Constant, 1, nil)
	}

	return q
}

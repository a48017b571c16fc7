// SPDX-License-Identifier: MIT

package quiver

import (
	"fmt"

	"github.com/katalvlaran/mathtoys/descent"
)

// State is a serialisable copy of a Quiver: its network plus the arrow list.
type State struct {
	Network descent.Snapshot `json:"network"`
	Arrows  []Arrow          `json:"arrows"`
	NextID  int              `json:"next_id"`

	// NextVariable counts variables ever created. Older states omit it and
	// fall back to the number of live variables.
	NextVariable int `json:"next_variable,omitempty"`
}

// State captures the sheet. Relaxation is not paused; take it between ticks.
func (q *Quiver) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := State{
		Network:      q.net.Snapshot(),
		Arrows:       make([]Arrow, len(q.arrows)),
		NextID:       q.nextID,
		NextVariable: q.nextVar,
	}
	for i, a := range q.arrows {
		s.Arrows[i] = cloneArrow(a)
	}
	return s
}

// Restore rebuilds a Quiver from a State. Options apply as in New, except
// that WithUnitArrows is ignored: the saved arrows are the whole sheet.
func Restore(s State, opts ...Option) (*Quiver, error) {
	q := &Quiver{
		threshold:     DefaultThreshold,
		stepsPerFrame: DefaultStepsPerFrame,
		mergeTol:      DefaultMergeTolerance,
	}
	for _, opt := range opts {
		opt(q)
	}

	net, err := descent.FromSnapshot(s.Network, q.netOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	q.net = net

	ids := make(map[int]bool, len(s.Arrows))
	for _, a := range s.Arrows {
		if ids[a.ID] {
			return nil, fmt.Errorf("%w: duplicate arrow id %d", ErrInvalidState, a.ID)
		}
		ids[a.ID] = true
	}
	for _, a := range s.Arrows {
		if err := validateArrow(net, a, ids, s.NextID); err != nil {
			return nil, err
		}
		q.arrows = append(q.arrows, cloneArrow(a))
	}
	q.nextID = s.NextID
	q.nextVar = s.NextVariable
	if live := q.countKind(Variable); q.nextVar < live {
		q.nextVar = live
	}

	return q, nil
}

// validateArrow checks a saved arrow against its network and the saved ids.
// Args may point at any live arrow: a merge can repoint them at a later one.
func validateArrow(net *descent.Network, a Arrow, ids map[int]bool, nextID int) error {
	switch {
	case a.ID < 0 || a.ID >= nextID:
		return fmt.Errorf("%w: arrow id %d outside [0, %d)", ErrInvalidState, a.ID, nextID)
	case a.Kind < Variable || a.Kind > Product:
		return fmt.Errorf("%w: arrow %d: unknown kind %d", ErrInvalidState, a.ID, int(a.Kind))
	case !net.Contains(a.Wires.Re) || !net.Contains(a.Wires.Im):
		return fmt.Errorf("%w: arrow %d: wires %v not in network", ErrInvalidState, a.ID, a.Wires)
	}
	if (a.Kind == Variable || a.Kind == Constant) && len(a.Args) != 0 {
		return fmt.Errorf("%w: arrow %d: %s takes no args, got %v", ErrInvalidState, a.ID, a.Kind, a.Args)
	}
	if a.Kind == Sum || a.Kind == Product {
		if len(a.Args) != 2 {
			return fmt.Errorf("%w: arrow %d: %s needs 2 args, got %d", ErrInvalidState, a.ID, a.Kind, len(a.Args))
		}
		for _, arg := range a.Args {
			if !ids[arg] {
				return fmt.Errorf("%w: arrow %d: unknown arg %d", ErrInvalidState, a.ID, arg)
			}
		}
	}
	return nil
}

// SPDX-License-Identifier: MIT
package descent_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/katalvlaran/mathtoys/descent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeclareNamed_Dedupes returns the first wire for a repeated name and
// keeps its original value.
func TestDeclareNamed_Dedupes(t *testing.T) {
	n := descent.NewNetwork()
	x := n.DeclareNamed("x", 1.5)
	y := n.DeclareNamed("y", 0)
	again := n.DeclareNamed("x", 99)

	assert.Equal(t, x, again)
	assert.NotEqual(t, x, y)
	assert.Equal(t, 1.5, n.Get(x), "initial value of a repeat declaration is ignored")
	assert.False(t, n.Pinned(x), "named wires start free")
	assert.Equal(t, 2, n.NumWires())
	assert.Equal(t, "x", n.Name(x))

	w, ok := n.Lookup("y")
	assert.True(t, ok)
	assert.Equal(t, y, w)
	_, ok = n.Lookup("missing")
	assert.False(t, ok)
	_, ok = n.Lookup("")
	assert.False(t, ok)
}

// TestDeclareNamed_EmptyNameNeverDedupes keeps anonymous wires distinct.
func TestDeclareNamed_EmptyNameNeverDedupes(t *testing.T) {
	n := descent.NewNetwork()
	assert.NotEqual(t, n.DeclareNamed("", 0), n.DeclareNamed("", 0))
}

// TestDeclareConstant always appends a pinned anonymous wire.
func TestDeclareConstant(t *testing.T) {
	n := descent.NewNetwork()
	c1 := n.DeclareConstant(2)
	c2 := n.DeclareConstant(2)

	assert.NotEqual(t, c1, c2, "equal constants are not deduplicated")
	assert.True(t, n.Pinned(c1))
	assert.True(t, n.Pinned(c2))
	assert.Equal(t, "", n.Name(c1))
	assert.Equal(t, 2.0, n.Get(c2))
	assert.Equal(t, []float64{2, 2}, n.Values())
}

// TestSetPinned_IdempotentAndReversible re-pins and toggles a wire.
func TestSetPinned_IdempotentAndReversible(t *testing.T) {
	build := func() (*descent.Network, descent.Wire) {
		n := descent.NewNetwork()
		a := n.DeclareConstant(3)
		b := n.DeclareConstant(4)
		v := n.DeclareNamed("v", 0)
		n.Add(a, b, v)
		return n, v
	}

	n, v := build()
	n.SetPinned(v, true)
	n.SetPinned(v, true)
	assert.True(t, n.Pinned(v))
	n.Relax(100)
	assert.Equal(t, 0.0, n.Get(v), "double pin still holds")

	// Toggling twice restores the free behaviour step for step.
	ref, rv := build()
	toggled, tv := build()
	toggled.SetPinned(tv, true)
	toggled.SetPinned(tv, false)
	ref.Relax(250)
	toggled.Relax(250)
	assert.Equal(t, ref.Get(rv), toggled.Get(tv))
	assert.False(t, toggled.Pinned(tv))
}

// TestSet_OverwritesPinned lets a drag write through a pin.
func TestSet_OverwritesPinned(t *testing.T) {
	n := descent.NewNetwork()
	c := n.DeclareConstant(1)
	n.Set(c, -4.5)
	assert.Equal(t, -4.5, n.Get(c))
	assert.True(t, n.Pinned(c))
}

// TestOutOfRange panics with ErrWireOutOfRange on every accessor.
func TestOutOfRange(t *testing.T) {
	n := descent.NewNetwork()
	w := n.DeclareNamed("w", 0)
	bad := []descent.Wire{-1, w + 1, 1000}

	for _, b := range bad {
		assert.False(t, n.Contains(b))
		for name, fn := range map[string]func(){
			"Get":       func() { n.Get(b) },
			"Set":       func() { n.Set(b, 1) },
			"SetPinned": func() { n.SetPinned(b, true) },
			"Pinned":    func() { n.Pinned(b) },
			"Name":      func() { n.Name(b) },
		} {
			err := recoverError(fn)
			require.Error(t, err, "%s(%d) should panic", name, b)
			assert.True(t, errors.Is(err, descent.ErrWireOutOfRange), "%s(%d): %v", name, b, err)
		}
	}
	assert.True(t, n.Contains(w))
}

// TestConcurrentDeclareAndRelax exercises the lock discipline under -race.
func TestConcurrentDeclareAndRelax(t *testing.T) {
	n := descent.NewNetwork()
	a := n.DeclareConstant(1)
	b := n.DeclareConstant(2)
	v := n.DeclareNamed("v", 0)
	n.Add(a, b, v)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(2 * workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			n.Relax(20)
		}()
		go func() {
			defer wg.Done()
			w := n.DeclareNamed("", 0)
			n.Add(a, w, n.DeclareNamed("", 0))
			_ = n.TotalError()
		}()
	}
	wg.Wait()

	assert.Equal(t, 3+2*workers, n.NumWires())
	assert.Equal(t, 1+workers, n.NumConstraints())
}

// recoverError runs fn and returns the recovered panic value as an error.
func recoverError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.New("non-error panic")
		}
	}()
	fn()
	return nil
}

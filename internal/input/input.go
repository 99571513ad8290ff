// Package input tracks which movement keys are currently held down.
//
// Key events only insert into or remove from the set; the walk loop reads it
// once per frame. Both happen on the loop goroutine, so HeldKeys carries no
// lock.
package input

import (
	"slices"

	"chosenoffset.com/roomwalk/internal/render"
)

// movementKeys are the only keys HeldKeys will ever contain.
var movementKeys = [...]render.Key{render.KeyW, render.KeyD, render.KeyS, render.KeyA}

// IsMovementKey reports whether k is one of the four movement keys.
func IsMovementKey(k render.Key) bool {
	return slices.Contains(movementKeys[:], k)
}

// HeldKeys is an insertion-ordered set of held movement keys.
type HeldKeys struct {
	keys []render.Key
}

// NewHeldKeys returns an empty set.
func NewHeldKeys() *HeldKeys {
	return &HeldKeys{keys: make([]render.Key, 0, len(movementKeys))}
}

// OnKeyDown records k as held. Keys other than the movement keys are ignored
// and a key already held keeps its original position.
func (h *HeldKeys) OnKeyDown(k render.Key) {
	if !IsMovementKey(k) || h.Contains(k) {
		return
	}
	h.keys = append(h.keys, k)
}

// OnKeyUp forgets k. It is a no-op when k is not held.
func (h *HeldKeys) OnKeyUp(k render.Key) {
	if i := slices.Index(h.keys, k); i >= 0 {
		h.keys = slices.Delete(h.keys, i, i+1)
	}
}

// Contains reports whether k is held.
func (h *HeldKeys) Contains(k render.Key) bool {
	return slices.Contains(h.keys, k)
}

// Len returns the number of held keys.
func (h *HeldKeys) Len() int {
	return len(h.keys)
}

// Keys returns the held keys in insertion order. The slice is a copy.
func (h *HeldKeys) Keys() []render.Key {
	return slices.Clone(h.keys)
}

// Reset forgets every held key.
func (h *HeldKeys) Reset() {
	h.keys = h.keys[:0]
}

package input

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"chosenoffset.com/roomwalk/internal/render"
)

func TestHeldKeys(t *testing.T) {
	t.Run("key down inserts movement keys in order", func(t *testing.T) {
		h := NewHeldKeys()
		h.OnKeyDown(render.KeyW)
		h.OnKeyDown(render.KeyD)
		assert.Equal(t, []render.Key{render.KeyW, render.KeyD}, h.Keys())
	})
	t.Run("repeated key down is idempotent", func(t *testing.T) {
		h := NewHeldKeys()
		h.OnKeyDown(render.KeyS)
		h.OnKeyDown(render.KeyA)
		h.OnKeyDown(render.KeyS)
		assert.Equal(t, []render.Key{render.KeyS, render.KeyA}, h.Keys())
	})
	t.Run("unrecognized keys are ignored", func(t *testing.T) {
		h := NewHeldKeys()
		h.OnKeyDown(render.KeyE)
		h.OnKeyDown(render.KeySpace)
		h.OnKeyDown(render.KeyUnknown)
		assert.Equal(t, 0, h.Len())
	})
	t.Run("key up of absent key is a no-op", func(t *testing.T) {
		h := NewHeldKeys()
		h.OnKeyDown(render.KeyW)
		h.OnKeyUp(render.KeyA)
		h.OnKeyUp(render.KeyEscape)
		assert.Equal(t, []render.Key{render.KeyW}, h.Keys())
	})
	t.Run("key up removes key", func(t *testing.T) {
		h := NewHeldKeys()
		h.OnKeyDown(render.KeyW)
		h.OnKeyDown(render.KeyA)
		h.OnKeyUp(render.KeyW)
		assert.False(t, h.Contains(render.KeyW))
		assert.Equal(t, []render.Key{render.KeyA}, h.Keys())
	})
	t.Run("keys returns a copy", func(t *testing.T) {
		h := NewHeldKeys()
		h.OnKeyDown(render.KeyW)
		keys := h.Keys()
		keys[0] = render.KeyE
		assert.True(t, h.Contains(render.KeyW))
	})
	t.Run("reset clears", func(t *testing.T) {
		h := NewHeldKeys()
		h.OnKeyDown(render.KeyW)
		h.OnKeyDown(render.KeyS)
		h.Reset()
		assert.Equal(t, 0, h.Len())
	})
}

func TestHeldKeysMatchesPressedState(t *testing.T) {
	all := []render.Key{
		render.KeyW, render.KeyA, render.KeyS, render.KeyD,
		render.KeyE, render.KeySpace, render.KeyEscape, render.KeyUnknown,
	}
	rng := rand.New(rand.NewPCG(7, 7))
	for run := 0; run < 50; run++ {
		h := NewHeldKeys()
		down := make(map[render.Key]bool)
		for step := 0; step < 200; step++ {
			k := all[rng.IntN(len(all))]
			if rng.IntN(2) == 0 {
				h.OnKeyDown(k)
				down[k] = true
			} else {
				h.OnKeyUp(k)
				delete(down, k)
			}
			var want []render.Key
			for k := range down {
				if IsMovementKey(k) {
					want = append(want, k)
				}
			}
			got := h.Keys()
			assert.ElementsMatch(t, want, got)
			for _, k := range got {
				assert.True(t, IsMovementKey(k), "unexpected key %s", k)
			}
		}
	}
}

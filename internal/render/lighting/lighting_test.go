package lighting

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func grey(v float64) mgl64.Vec3 { return mgl64.Vec3{v, v, v} }

func assertShade(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-9, "channel %d of %v", i, got)
	}
}

func TestShade(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	t.Run("ambient only", func(t *testing.T) {
		m := NewManager()
		m.SetAmbientLight(0.3)
		assertShade(t, grey(0.3), m.Shade(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, false))
	})
	t.Run("facing light is fully lit", func(t *testing.T) {
		m := NewManager()
		m.SetAmbientLight(0.2)
		m.AddPointLight(mgl64.Vec3{0, 500, 0}, 1, white)
		assertShade(t, grey(1), m.Shade(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, false))
	})
	t.Run("back face single sided gets ambient", func(t *testing.T) {
		m := NewManager()
		m.SetAmbientLight(0.2)
		m.AddPointLight(mgl64.Vec3{0, 500, 0}, 0.5, white)
		assertShade(t, grey(0.2), m.Shade(mgl64.Vec3{}, mgl64.Vec3{0, -1, 0}, false))
		assertShade(t, grey(0.7), m.Shade(mgl64.Vec3{}, mgl64.Vec3{0, -1, 0}, true))
	})
	t.Run("light colour tints each channel", func(t *testing.T) {
		m := NewManager()
		m.SetAmbientLight(0.1)
		m.AddPointLight(mgl64.Vec3{0, 500, 0}, 0.5, color.NRGBA{255, 0, 51, 255})
		assertShade(t, mgl64.Vec3{0.6, 0.1, 0.2}, m.Shade(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, false))
	})
	t.Run("lights are copied", func(t *testing.T) {
		m := NewManager()
		m.AddPointLight(mgl64.Vec3{1, 2, 3}, 1, white)
		lights := m.GetAllLights()
		lights[0].Intensity = 0
		assert.Equal(t, 1.0, m.GetAllLights()[0].Intensity)
	})
}

package lighting

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LightSource is a point light in world space.
type LightSource struct {
	Position  mgl64.Vec3
	Intensity float64     // 0.0 to 1.0
	Color     color.NRGBA // Light color
}

// Manager handles all light sources in the scene
type Manager struct {
	lights       []LightSource
	ambientLight float64 // 0.0 = pitch black, 1.0 = fully lit
}

// NewManager creates a lighting manager with a low ambient level and no lights.
func NewManager() *Manager {
	return &Manager{
		ambientLight: 0.25,
	}
}

// SetAmbientLight sets the global ambient light level
func (m *Manager) SetAmbientLight(level float64) {
	m.ambientLight = level
}

// GetAmbientLight returns the current ambient light level
func (m *Manager) GetAmbientLight() float64 {
	return m.ambientLight
}

// AddPointLight adds a point light.
func (m *Manager) AddPointLight(pos mgl64.Vec3, intensity float64, col color.NRGBA) {
	m.lights = append(m.lights, LightSource{Position: pos, Intensity: intensity, Color: col})
}

// GetAllLights returns all light sources
func (m *Manager) GetAllLights() []LightSource {
	return append([]LightSource(nil), m.lights...)
}

// Shade returns the per-channel brightness (r, g, b) of a surface at point
// with the given normal, each clamped to [0, 1]. Ambient light is white; each
// point light adds its intensity tinted by its colour. Double-sided surfaces
// are lit from either side.
func (m *Manager) Shade(point, normal mgl64.Vec3, doubleSided bool) mgl64.Vec3 {
	level := mgl64.Vec3{m.ambientLight, m.ambientLight, m.ambientLight}
	if normal.Len() == 0 {
		return clamp01(level)
	}
	n := normal.Normalize()
	for _, l := range m.lights {
		tint := mgl64.Vec3{float64(l.Color.R), float64(l.Color.G), float64(l.Color.B)}.Mul(l.Intensity / 255)
		dir := l.Position.Sub(point)
		if dir.Len() == 0 {
			level = level.Add(tint)
			continue
		}
		d := n.Dot(dir.Normalize())
		if doubleSided {
			d = math.Abs(d)
		}
		if d > 0 {
			level = level.Add(tint.Mul(d))
		}
	}
	return clamp01(level)
}

func clamp01(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{mgl64.Clamp(v[0], 0, 1), mgl64.Clamp(v[1], 0, 1), mgl64.Clamp(v[2], 0, 1)}
}

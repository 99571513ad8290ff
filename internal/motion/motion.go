// Package motion turns held movement keys into camera displacement and keeps
// the camera inside the room.
package motion

import (
	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/roomwalk/internal/render"
)

// Mover moves a camera rig relative to its current facing.
type Mover interface {
	MoveForward(distance float64)
	MoveRight(distance float64)
}

// Controller applies a fixed step per held key per frame.
type Controller struct {
	Step float64
}

// NewController creates a controller that moves step units per key per frame.
func NewController(step float64) *Controller {
	return &Controller{Step: step}
}

// Apply moves m once for every key in keys, in order. Opposing keys are not
// cancelled: W and S held together each apply their full step.
func (c *Controller) Apply(keys []render.Key, m Mover) {
	for _, k := range keys {
		switch k {
		case render.KeyW:
			m.MoveForward(c.Step)
		case render.KeyD:
			m.MoveRight(c.Step)
		case render.KeyS:
			m.MoveForward(-c.Step)
		case render.KeyA:
			m.MoveRight(-c.Step)
		}
	}
}

// Bounds is the allowed range for x and z.
type Bounds struct {
	Min, Max float64
}

// NewBounds returns the square [-halfExtent, halfExtent] on both axes.
func NewBounds(halfExtent float64) Bounds {
	return Bounds{Min: -halfExtent, Max: halfExtent}
}

// Clamp limits x and z to the bounds. y is returned unchanged.
func (b Bounds) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p.X(), b.Min, b.Max),
		p.Y(),
		mgl64.Clamp(p.Z(), b.Min, b.Max),
	}
}

// Contains reports whether p lies inside the bounds on x and z.
func (b Bounds) Contains(p mgl64.Vec3) bool {
	return p.X() >= b.Min && p.X() <= b.Max && p.Z() >= b.Min && p.Z() <= b.Max
}

// Package camera provides the first-person rig driven by pointer lock and the
// perspective camera used to project the room.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// lookSpeed converts pointer motion in pixels to radians.
const lookSpeed = 0.002

// Rig is a first-person camera rig. Yaw turns around the world y axis and
// pitch tilts around the rig's x axis; movement only follows yaw, so the
// height of the rig never changes while walking.
type Rig struct {
	position    mgl64.Vec3
	yaw, pitch  float64
	locked      bool
	Sensitivity float64
}

// NewRig places a rig at position facing -z.
func NewRig(position mgl64.Vec3) *Rig {
	return &Rig{position: position, Sensitivity: 1}
}

// Lock enables mouse look.
func (r *Rig) Lock() { r.locked = true }

// Unlock disables mouse look.
func (r *Rig) Unlock() { r.locked = false }

// IsLocked reports whether mouse look is enabled.
func (r *Rig) IsLocked() bool { return r.locked }

// Look turns the rig by a pointer delta. It does nothing while unlocked.
func (r *Rig) Look(dx, dy float64) {
	if !r.locked {
		return
	}
	r.yaw -= dx * lookSpeed * r.Sensitivity
	r.pitch -= dy * lookSpeed * r.Sensitivity
	r.pitch = mgl64.Clamp(r.pitch, -math.Pi/2, math.Pi/2)
}

// SetOrientation sets yaw and pitch in radians. Pitch is clamped to
// [-pi/2, pi/2].
func (r *Rig) SetOrientation(yaw, pitch float64) {
	r.yaw = yaw
	r.pitch = mgl64.Clamp(pitch, -math.Pi/2, math.Pi/2)
}

// Yaw returns the rotation around the world y axis in radians.
func (r *Rig) Yaw() float64 { return r.yaw }

// Pitch returns the tilt in radians.
func (r *Rig) Pitch() float64 { return r.pitch }

// Forward returns the horizontal unit vector the rig walks along.
func (r *Rig) Forward() mgl64.Vec3 {
	s, c := math.Sincos(r.yaw)
	return mgl64.Vec3{-s, 0, -c}
}

// Right returns the horizontal unit vector the rig strafes along.
func (r *Rig) Right() mgl64.Vec3 {
	s, c := math.Sincos(r.yaw)
	return mgl64.Vec3{c, 0, -s}
}

// MoveForward moves the rig along Forward.
func (r *Rig) MoveForward(distance float64) {
	r.position = r.position.Add(r.Forward().Mul(distance))
}

// MoveRight moves the rig along Right.
func (r *Rig) MoveRight(distance float64) {
	r.position = r.position.Add(r.Right().Mul(distance))
}

// Position returns the rig position.
func (r *Rig) Position() mgl64.Vec3 { return r.position }

// SetPosition moves the rig to p.
func (r *Rig) SetPosition(p mgl64.Vec3) { r.position = p }

// View returns the world-to-eye transform.
func (r *Rig) View() mgl64.Mat4 {
	p := r.position
	return mgl64.HomogRotate3DX(-r.pitch).
		Mul4(mgl64.HomogRotate3DY(-r.yaw)).
		Mul4(mgl64.Translate3D(-p.X(), -p.Y(), -p.Z()))
}

// Camera is a perspective projection.
type Camera struct {
	FOV        float64 // vertical field of view in degrees
	Aspect     float64
	Near, Far  float64
	projection mgl64.Mat4
}

// New creates a camera and computes its projection.
func New(fov, aspect, near, far float64) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.UpdateProjection()
	return c
}

// SetAspect recomputes the projection for a viewport of w by h pixels.
// Degenerate sizes are ignored.
func (c *Camera) SetAspect(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.Aspect = float64(w) / float64(h)
	c.UpdateProjection()
}

// UpdateProjection recomputes the projection from the current fields.
func (c *Camera) UpdateProjection() {
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// Projection returns the eye-to-clip transform.
func (c *Camera) Projection() mgl64.Mat4 {
	return c.projection
}

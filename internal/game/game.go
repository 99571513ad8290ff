package game

import (
	"github.com/charmbracelet/log"

	"chosenoffset.com/roomwalk/internal/render"
)

// Frame advances the walk by one tick: held keys move the rig, then the rig
// is pulled back inside the room bounds. Frames before the room is ready are
// ignored.
func (m *Manager) Frame() {
	if m.state != StateWalking {
		return
	}
	m.controller.Apply(m.held.Keys(), m.rig)
	m.rig.SetPosition(m.bounds.Clamp(m.rig.Position()))
	m.frames++
}

func (m *Manager) handleInput() {
	in := m.InputMgr

	if m.rig.IsLocked() && !in.IsCursorCaptured() {
		log.Debug("Pointer capture lost")
		m.unlock()
	}

	m.keyBuf = in.AppendJustReleasedKeys(m.keyBuf[:0])
	for _, k := range m.keyBuf {
		m.held.OnKeyUp(k)
	}
	m.keyBuf = in.AppendJustPressedKeys(m.keyBuf[:0])
	for _, k := range m.keyBuf {
		if k == render.KeyEscape {
			m.unlock()
			continue
		}
		m.held.OnKeyDown(k)
	}

	if in.IsMouseButtonJustPressed(render.MouseButtonLeft) && !m.rig.IsLocked() {
		m.lock()
	}

	x, y := in.GetCursorPosition()
	if m.rig.IsLocked() && m.cursorTracked {
		m.rig.Look(float64(x-m.cursorX), float64(y-m.cursorY))
	}
	m.cursorX, m.cursorY = x, y
	m.cursorTracked = true
}

func (m *Manager) lock() {
	m.rig.Lock()
	m.InputMgr.SetCursorCaptured(true)
	// Capturing the cursor can jump its reported position.
	m.cursorTracked = false
	log.Debug("Pointer locked")
}

func (m *Manager) unlock() {
	if !m.rig.IsLocked() {
		return
	}
	m.rig.Unlock()
	m.InputMgr.SetCursorCaptured(false)
	// Key-up events are lost while the pointer is released.
	m.held.Reset()
	log.Debug("Pointer released")
}

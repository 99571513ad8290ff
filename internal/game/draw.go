package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/roomwalk/internal/render"
)

const (
	loadingText = "Loading..."
	hintText    = "Click to look around, WASD to walk, Esc to release"
	textScale   = 1.0
)

var (
	overlayBackground = color.NRGBA{0, 0, 0, 255}
	overlayText       = color.NRGBA{220, 220, 220, 255}
	errorText         = color.NRGBA{255, 96, 96, 255}
)

// Draw renders the current state to the screen.
func (m *Manager) Draw(screen render.Image) {
	switch m.state {
	case StateLoading:
		screen.Fill(overlayBackground)
		m.drawCentered(screen, loadingText, overlayText)
	case StateFailed:
		screen.Fill(overlayBackground)
		m.drawCentered(screen, fmt.Sprintf("Failed to load room: %v", m.err), errorText)
	case StateWalking:
		m.projector.Render(screen, m.scene, m.camera, m.rig)
		if !m.rig.IsLocked() {
			m.drawHint(screen)
		}
	}
}

func (m *Manager) drawCentered(screen render.Image, text string, clr color.Color) {
	w, h := screen.Size()
	tw, th := m.Renderer.MeasureText(text, textScale)
	m.Renderer.DrawText(screen, text, (w-tw)/2, (h-th)/2, clr, textScale)
}

func (m *Manager) drawHint(screen render.Image) {
	_, h := screen.Size()
	_, th := m.Renderer.MeasureText(hintText, textScale)
	m.Renderer.DrawText(screen, hintText, 10, h-th-10, overlayText, textScale)
}

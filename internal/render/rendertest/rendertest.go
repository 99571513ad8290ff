// Package rendertest provides in-memory fakes of the render interfaces for
// tests.
package rendertest

import (
	"image"
	"image/color"
	"slices"

	"chosenoffset.com/roomwalk/internal/render"
)

// DrawCall records one DrawTriangles call.
type DrawCall struct {
	Vertices []render.Vertex
	Indices  []uint16
	Source   *Image
}

// Image is a fake render.Image that records drawing.
type Image struct {
	Rect     image.Rectangle
	Filled   color.Color
	Calls    []DrawCall
	Texts    []string
	Uploaded image.Image // set for images created from decoded images
	Disposed bool
}

// NewImage creates a fake image of the given size.
func NewImage(w, h int) *Image {
	return &Image{Rect: image.Rect(0, 0, w, h)}
}

func (i *Image) Size() (int, int) { return i.Rect.Dx(), i.Rect.Dy() }

func (i *Image) SubImage(r image.Rectangle) render.Image {
	return &Image{Rect: r.Intersect(i.Rect), Filled: i.Filled}
}

func (i *Image) Fill(clr color.Color) {
	i.Filled = clr
	i.Calls = nil
	i.Texts = nil
}

func (i *Image) DrawTriangles(vertices []render.Vertex, indices []uint16, img render.Image, opts *render.DrawTrianglesOptions) {
	src, _ := img.(*Image)
	i.Calls = append(i.Calls, DrawCall{
		Vertices: slices.Clone(vertices),
		Indices:  slices.Clone(indices),
		Source:   src,
	})
}

func (i *Image) Dispose() { i.Disposed = true }

// Renderer is a fake render.Renderer.
type Renderer struct {
	Uploads int
}

func (r *Renderer) NewImage(w, h int) render.Image { return NewImage(w, h) }

func (r *Renderer) NewImageFromImage(src image.Image) render.Image {
	r.Uploads++
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy())
	img.Uploaded = src
	return img
}

func (r *Renderer) DrawText(dst render.Image, text string, x, y int, clr color.Color, scale float64) {
	if img, ok := dst.(*Image); ok {
		img.Texts = append(img.Texts, text)
	}
}

func (r *Renderer) MeasureText(text string, scale float64) (int, int) {
	return int(float64(len(text)*8) * scale), int(16 * scale)
}

// Input is a scripted render.InputManager. Tests set the fields before each
// Update; the Just* lists are consumed by the next read.
type Input struct {
	JustPressed  []render.Key
	JustReleased []render.Key
	CursorX      int
	CursorY      int
	Clicked      bool
	Captured     bool
}

// NewInput creates an idle input.
func NewInput() *Input {
	return &Input{}
}

// Press scripts key-down events for the next tick.
func (in *Input) Press(keys ...render.Key) {
	in.JustPressed = append(in.JustPressed, keys...)
}

// Release scripts key-up events for the next tick.
func (in *Input) Release(keys ...render.Key) {
	in.JustReleased = append(in.JustReleased, keys...)
}

func (in *Input) AppendJustPressedKeys(keys []render.Key) []render.Key {
	keys = append(keys, in.JustPressed...)
	in.JustPressed = nil
	return keys
}

func (in *Input) AppendJustReleasedKeys(keys []render.Key) []render.Key {
	keys = append(keys, in.JustReleased...)
	in.JustReleased = nil
	return keys
}

func (in *Input) GetCursorPosition() (int, int) { return in.CursorX, in.CursorY }

func (in *Input) IsMouseButtonJustPressed(b render.MouseButton) bool {
	clicked := b == render.MouseButtonLeft && in.Clicked
	in.Clicked = false
	return clicked
}

func (in *Input) SetCursorCaptured(captured bool) { in.Captured = captured }

func (in *Input) IsCursorCaptured() bool { return in.Captured }

// Package placeholders generates stand-in gallery assets: a patterned JPEG for
// every painting and a plain frame mesh, so the room can be walked without the
// real artwork.
package placeholders

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/charmbracelet/log"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"chosenoffset.com/roomwalk/internal/config"
)

// PixelsPerUnit is the painting image resolution relative to its world size.
const PixelsPerUnit = 2

// Frame geometry in frame-local units. The front face is FrameDepth in front
// of the wall.
const (
	FrameBorder = 16
	FrameDepth  = 12
)

// ColorPalette holds the placeholder colours.
var ColorPalette = struct {
	Canvas  []color.RGBA
	Pattern color.RGBA
	Border  color.RGBA
	Frame   [4]float64
}{
	Canvas: []color.RGBA{
		{70, 110, 160, 255},  // Dusk blue
		{160, 90, 60, 255},   // Terracotta
		{80, 130, 80, 255},   // Moss
		{150, 120, 170, 255}, // Lavender
	},
	Pattern: color.RGBA{240, 230, 200, 255},
	Border:  color.RGBA{30, 28, 25, 255},
	Frame:   [4]float64{0.78, 0.62, 0.25, 1}, // Gilt
}

// Generate writes a placeholder image for every painting in cfg and the frame
// mesh under cfg.Assets.Root. Existing files are overwritten.
func Generate(cfg *config.Config) error {
	a := cfg.Assets
	patterns := []string{"grid", "diagonal", "cross", "dots"}
	for i, p := range cfg.Paintings {
		clr := ColorPalette.Canvas[i%len(ColorPalette.Canvas)]
		img := CreatePainting(int(a.PaintingWidth)*PixelsPerUnit, int(a.PaintingHeight)*PixelsPerUnit,
			clr, patterns[i%len(patterns)])
		path := filepath.Join(a.Root, p.Asset)
		if err := SaveJPEG(img, path); err != nil {
			return err
		}
		log.Info("Wrote painting", "path", path)
	}

	below := a.PaintY - a.PaintingHeight/2 - a.FrameY
	path := filepath.Join(a.Root, a.FrameMesh)
	if err := SaveFrame(path, a.PaintingWidth, a.PaintingHeight, below); err != nil {
		return err
	}
	log.Info("Wrote frame", "path", path)
	return nil
}

// CreatePainting creates a bordered canvas with a simple pattern.
func CreatePainting(width, height int, base color.RGBA, pattern string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Lighter towards the top so orientation is visible on the wall.
	for y := 0; y < height; y++ {
		c := Lighten(base, 0.5*float64(height-y)/float64(height))
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	step := max(width/8, 1)
	switch pattern {
	case "grid":
		for i := 0; i < max(width, height); i += step {
			for t := 0; t < max(width, height); t++ {
				img.Set(t, i, ColorPalette.Pattern)
				img.Set(i, t, ColorPalette.Pattern)
			}
		}
	case "dots":
		for y := step / 2; y < height; y += step {
			for x := step / 2; x < width; x += step {
				fillRect(img, image.Rect(x-2, y-2, x+2, y+2), ColorPalette.Pattern)
			}
		}
	case "cross":
		fillRect(img, image.Rect(width/2-3, 0, width/2+3, height), ColorPalette.Pattern)
		fillRect(img, image.Rect(0, height/3-3, width, height/3+3), ColorPalette.Pattern)
	case "diagonal":
		for i := 0; i < max(width, height); i++ {
			img.Set(i, i*height/width, ColorPalette.Pattern)
			img.Set(width-1-i, i*height/width, ColorPalette.Pattern)
		}
	}

	border := max(width/40, 1)
	fillRect(img, image.Rect(0, 0, width, border), ColorPalette.Border)
	fillRect(img, image.Rect(0, height-border, width, height), ColorPalette.Border)
	fillRect(img, image.Rect(0, 0, border, height), ColorPalette.Border)
	fillRect(img, image.Rect(width-border, 0, width, height), ColorPalette.Border)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)
}

// SaveJPEG saves an image as a JPEG file, creating parent directories.
func SaveJPEG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := imgio.Save(path, img, imgio.JPEGEncoder(90)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// FrameBars returns the four bars of a frame around a width by height opening
// whose lower edge is below units above the origin, as min/max corners.
func FrameBars(width, height, below float64) [4][2][2]float64 {
	x0, x1 := -width/2, width/2
	y0, y1 := below, below+height
	b := float64(FrameBorder)
	return [4][2][2]float64{
		{{x0 - b, y0 - b}, {x1 + b, y0}}, // bottom
		{{x0 - b, y1}, {x1 + b, y1 + b}}, // top
		{{x0 - b, y0}, {x0, y1}},         // left
		{{x1, y0}, {x1 + b, y1}},         // right
	}
}

// SaveFrame writes a glTF frame mesh with its buffer embedded in the file.
func SaveFrame(path string, width, height, below float64) error {
	var positions [][3]float32
	var indices []uint16
	for _, bar := range FrameBars(width, height, below) {
		lo, hi := bar[0], bar[1]
		base := uint16(len(positions))
		positions = append(positions,
			[3]float32{float32(lo[0]), float32(hi[1]), FrameDepth},
			[3]float32{float32(hi[0]), float32(hi[1]), FrameDepth},
			[3]float32{float32(lo[0]), float32(lo[1]), FrameDepth},
			[3]float32{float32(hi[0]), float32(lo[1]), FrameDepth},
		)
		indices = append(indices, base, base+2, base+1, base+2, base+3, base+1)
	}

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, positions)
	idx := modeler.WriteIndices(doc, indices)
	doc.Buffers[0].EmbeddedResource()
	frame := ColorPalette.Frame
	doc.Materials = []*gltf.Material{{
		Name:                 "gilt",
		DoubleSided:          true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &frame},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "frame",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "frame", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := gltf.Save(doc, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Lighten returns a lighter version of a color
func Lighten(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*factor),
		G: uint8(float64(c.G) + (255-float64(c.G))*factor),
		B: uint8(float64(c.B) + (255-float64(c.B))*factor),
		A: c.A,
	}
}

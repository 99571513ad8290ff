// Package compose builds the gallery room and hangs the paintings.
//
// Composition happens on a private staging scene. The scene is only returned
// once every painting has been attached, so callers never observe a partly
// hung room.
package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/roomwalk/internal/assets"
	"chosenoffset.com/roomwalk/internal/config"
	"chosenoffset.com/roomwalk/internal/scene"
)

// Kind identifies the asset type of a LoadError.
type Kind string

const (
	KindMesh  Kind = "mesh"
	KindImage Kind = "image"
)

// LoadError reports a failed asset fetch or decode.
type LoadError struct {
	Asset string
	Kind  Kind
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Kind, e.Asset, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MeshLoader loads a mesh file into a scene node.
type MeshLoader interface {
	LoadMesh(ctx context.Context, path string) (*scene.Node, error)
}

// ImageLoader decodes an image file.
type ImageLoader interface {
	LoadImage(ctx context.Context, path string, opts assets.ImageOptions) (image.Image, error)
}

// Composer builds the room described by a config.
type Composer struct {
	cfg    *config.Config
	meshes MeshLoader
	images ImageLoader
}

// New creates a composer.
func New(cfg *config.Config, meshes MeshLoader, images ImageLoader) *Composer {
	return &Composer{cfg: cfg, meshes: meshes, images: images}
}

// Node names used for the room geometry.
const (
	FloorName = "floor"
	WallName  = "wall"
)

// PaintingName and FrameName name the nodes of painting i.
func PaintingName(i int) string { return fmt.Sprintf("painting-%d", i) }

func FrameName(i int) string { return fmt.Sprintf("frame-%d", i) }

// BuildRoom adds the floor, the four walls and the ceiling light to s.
func BuildRoom(s *scene.Scene, cfg config.RoomConfig) {
	size := 2 * cfg.WallDistance
	d := cfg.WallDistance
	h := cfg.WallHeight / 2

	floorMesh := scene.Plane(size, size)
	floorMesh.Color = rgb(cfg.FloorColor)
	floor := scene.NewNode(FloorName, floorMesh)
	floor.Rotation = mgl64.Vec3{math.Pi / 2, 0, 0}
	floor.Layer = scene.LayerFloor
	s.Add(floor)

	walls := []struct {
		pos mgl64.Vec3
		rot float64
	}{
		{mgl64.Vec3{0, h, d}, 0},
		{mgl64.Vec3{d, h, 0}, math.Pi / 2},
		{mgl64.Vec3{0, h, -d}, 0},
		{mgl64.Vec3{-d, h, 0}, math.Pi / 2},
	}
	for i, w := range walls {
		m := scene.Plane(size, cfg.WallHeight)
		m.Color = rgb(cfg.WallColor)
		n := scene.NewNode(fmt.Sprintf("%s-%d", WallName, i), m)
		n.Position = w.pos
		n.Rotation = mgl64.Vec3{0, w.rot, 0}
		n.Layer = scene.LayerWall
		s.Add(n)
	}

	s.Lights.SetAmbientLight(cfg.Ambient)
	s.Lights.AddPointLight(mgl64.Vec3{0, cfg.LightHeight, 0}, 1, color.NRGBA{255, 255, 255, 255})
}

// AddPainting loads the image and the frame for p and attaches both to s.
// Nothing is attached when either load fails.
func (c *Composer) AddPainting(ctx context.Context, s *scene.Scene, i int, p config.Painting) error {
	img, err := c.images.LoadImage(ctx, p.Asset, assets.ImageOptions{FlipY: true})
	if err != nil {
		return &LoadError{Asset: p.Asset, Kind: KindImage, Err: err}
	}
	frame, err := c.meshes.LoadMesh(ctx, c.cfg.Assets.FrameMesh)
	if err != nil {
		return &LoadError{Asset: c.cfg.Assets.FrameMesh, Kind: KindMesh, Err: err}
	}

	a := c.cfg.Assets
	m := scene.Plane(a.PaintingWidth, a.PaintingHeight)
	m.Texture = img
	m.Unlit = true
	painting := scene.NewNode(PaintingName(i), m)
	painting.Position = mgl64.Vec3{p.PaintX, a.PaintY, p.PaintY}
	painting.Rotation = mgl64.Vec3{0, p.Rotation, 0}
	painting.Layer = scene.LayerDecor

	frame.Name = FrameName(i)
	frame.Position = mgl64.Vec3{p.FrameX, a.FrameY, p.FrameY}
	frame.Rotation = mgl64.Vec3{0, p.Rotation, 0}
	frame.Layer = scene.LayerDecor

	s.Add(frame, painting)
	return nil
}

// Compose builds the room and hangs every painting. It returns the finished
// scene, or the LoadError of the first painting (in declaration order) that
// failed, in which case no scene is returned.
func (c *Composer) Compose(ctx context.Context) (*scene.Scene, error) {
	start := time.Now()
	s := scene.New()
	BuildRoom(s, c.cfg.Room)

	var err error
	if c.cfg.Composition.Sequential {
		err = c.composeSequential(ctx, s)
	} else {
		err = c.composeConcurrent(ctx, s)
	}
	if err != nil {
		return nil, err
	}
	log.Info("Composed room", "nodes", s.Len(), "paintings", len(c.cfg.Paintings),
		"sequential", c.cfg.Composition.Sequential, "took", time.Since(start).Round(time.Millisecond))
	return s, nil
}

func (c *Composer) composeSequential(ctx context.Context, s *scene.Scene) error {
	for i, p := range c.cfg.Paintings {
		if err := c.AddPainting(ctx, s, i, p); err != nil {
			return err
		}
	}
	return nil
}

// composeConcurrent hangs each painting on its own staging scene and merges
// them in declaration order once all have succeeded. Siblings are not
// cancelled on failure, so the reported error is always the one of the
// lowest failing index, as in sequential mode.
func (c *Composer) composeConcurrent(ctx context.Context, s *scene.Scene) error {
	staged := make([]*scene.Scene, len(c.cfg.Paintings))
	errs := make([]error, len(c.cfg.Paintings))
	g := new(errgroup.Group)
	for i, p := range c.cfg.Paintings {
		g.Go(func() error {
			part := scene.New()
			if err := c.AddPainting(ctx, part, i, p); err != nil {
				errs[i] = err
				return err
			}
			staged[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
		return err
	}
	for _, part := range staged {
		s.Add(part.Nodes()...)
	}
	return nil
}

func rgb(v uint32) color.NRGBA {
	return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}

package projector

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/roomwalk/internal/camera"
	"chosenoffset.com/roomwalk/internal/render/rendertest"
	"chosenoffset.com/roomwalk/internal/scene"
)

func setup() (*Projector, *rendertest.Renderer, *camera.Camera, *camera.Rig) {
	r := &rendertest.Renderer{}
	p := New(r)
	p.SetSize(800, 600)
	cam := camera.New(75, 800.0/600.0, 0.1, 2e6)
	rig := camera.NewRig(mgl64.Vec3{0, 0, 0})
	return p, r, cam, rig
}

func quad(name string, z float64, layer int) *scene.Node {
	n := scene.NewNode(name, scene.Plane(100, 100))
	n.Position = mgl64.Vec3{0, 0, z}
	n.Layer = layer
	return n
}

func TestRenderVisibleQuad(t *testing.T) {
	p, _, cam, rig := setup()
	s := scene.New()
	s.Background = color.NRGBA{1, 2, 3, 255}
	s.Add(quad("ahead", -500, 0))
	dst := rendertest.NewImage(800, 600)

	p.Render(dst, s, cam, rig)

	assert.Equal(t, s.Background, dst.Filled)
	require.Len(t, dst.Calls, 2)
	for _, c := range dst.Calls {
		for _, v := range c.Vertices {
			assert.InDelta(t, 400, v.DstX, 100)
			assert.InDelta(t, 300, v.DstY, 100)
		}
	}
}

func TestRenderSkipsGeometryBehindCamera(t *testing.T) {
	p, _, cam, rig := setup()
	s := scene.New()
	s.Add(quad("behind", 500, 0))
	dst := rendertest.NewImage(800, 600)
	p.Render(dst, s, cam, rig)
	assert.Empty(t, dst.Calls)
}

func TestRenderClipsAcrossNearPlane(t *testing.T) {
	p, _, cam, rig := setup()
	s := scene.New()
	floor := scene.NewNode("floor", scene.Plane(2000, 2000))
	floor.Rotation = mgl64.Vec3{math.Pi / 2, 0, 0}
	floor.Position = mgl64.Vec3{0, -250, 0}
	s.Add(floor)
	dst := rendertest.NewImage(800, 600)
	p.Render(dst, s, cam, rig)
	require.NotEmpty(t, dst.Calls)
	for _, c := range dst.Calls {
		for _, v := range c.Vertices {
			assert.False(t, math.IsNaN(float64(v.DstX)) || math.IsInf(float64(v.DstX), 0))
		}
	}
}

func TestRenderOrder(t *testing.T) {
	p, _, cam, rig := setup()
	s := scene.New()
	s.Add(quad("near-decor", -300, scene.LayerDecor))
	s.Add(quad("far-decor", -900, scene.LayerDecor))
	s.Add(quad("wall", -100, scene.LayerWall))
	dst := rendertest.NewImage(800, 600)
	p.Render(dst, s, cam, rig)
	require.Len(t, dst.Calls, 6)

	depthOf := func(c rendertest.DrawCall) float32 {
		// Nearer quads of the same size cover a wider span on screen.
		minX, maxX := c.Vertices[0].DstX, c.Vertices[0].DstX
		for _, v := range c.Vertices {
			minX = min(minX, v.DstX)
			maxX = max(maxX, v.DstX)
		}
		return maxX - minX
	}
	// Wall layer first even though it is nearest, then decor far to near.
	assert.Greater(t, depthOf(dst.Calls[0]), depthOf(dst.Calls[5]))
	assert.Less(t, depthOf(dst.Calls[2]), depthOf(dst.Calls[4]))
}

func TestTexturesUploadOnce(t *testing.T) {
	p, r, cam, rig := setup()
	s := scene.New()
	n := quad("painting", -400, scene.LayerDecor)
	n.Meshes[0].Texture = image.NewNRGBA(image.Rect(0, 0, 16, 32))
	s.Add(n)
	dst := rendertest.NewImage(800, 600)
	p.Render(dst, s, cam, rig)
	p.Render(dst, s, cam, rig)
	assert.Equal(t, 1, r.Uploads)
	require.NotEmpty(t, dst.Calls)
	src := dst.Calls[0].Source
	require.NotNil(t, src)
	assert.NotNil(t, src.Uploaded)
	for _, v := range dst.Calls[0].Vertices {
		assert.GreaterOrEqual(t, v.SrcX, float32(0))
		assert.LessOrEqual(t, v.SrcX, float32(16))
		assert.LessOrEqual(t, v.SrcY, float32(32))
	}
}

func TestSetSizeScalesOutput(t *testing.T) {
	p, _, cam, rig := setup()
	p.SetSize(400, 300)
	s := scene.New()
	s.Add(quad("ahead", -500, 0))
	dst := rendertest.NewImage(400, 300)
	p.Render(dst, s, cam, rig)
	require.NotEmpty(t, dst.Calls)
	for _, v := range dst.Calls[0].Vertices {
		assert.InDelta(t, 200, v.DstX, 60)
	}
}

func TestUnlitMeshIgnoresLights(t *testing.T) {
	p, _, cam, rig := setup()
	s := scene.New()
	s.Lights.SetAmbientLight(0.1)
	lit := quad("wall", -600, scene.LayerWall)
	unlit := quad("painting", -500, scene.LayerDecor)
	unlit.Meshes[0].Texture = image.NewNRGBA(image.Rect(0, 0, 4, 4))
	unlit.Meshes[0].Unlit = true
	s.Add(lit, unlit)
	dst := rendertest.NewImage(800, 600)
	p.Render(dst, s, cam, rig)

	require.Len(t, dst.Calls, 4)
	for _, v := range dst.Calls[0].Vertices {
		assert.InDelta(t, 0.1, v.ColorR, 1e-6)
	}
	for _, v := range dst.Calls[3].Vertices {
		assert.Equal(t, float32(1), v.ColorR)
		assert.Equal(t, float32(1), v.ColorG)
		assert.Equal(t, float32(1), v.ColorB)
	}
}

func TestTexturesDisposedWhenMeshLeavesScene(t *testing.T) {
	p, r, cam, rig := setup()
	n := quad("painting", -400, scene.LayerDecor)
	n.Meshes[0].Texture = image.NewNRGBA(image.Rect(0, 0, 8, 8))
	s := scene.New()
	s.Add(n)
	dst := rendertest.NewImage(800, 600)
	p.Render(dst, s, cam, rig)
	require.NotEmpty(t, dst.Calls)
	tex := dst.Calls[0].Source
	require.NotNil(t, tex)
	assert.False(t, tex.Disposed)

	p.Render(dst, scene.New(), cam, rig)
	assert.True(t, tex.Disposed)

	// Coming back uploads a fresh texture.
	p.Render(dst, s, cam, rig)
	assert.Equal(t, 2, r.Uploads)
}

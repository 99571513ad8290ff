// Package projector draws a scene through a perspective camera using only
// flat 2D triangles. Triangles are clipped against the near plane, shaded per
// face and painted back to front within each draw layer.
package projector

import (
	"cmp"
	"image"
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/roomwalk/internal/camera"
	"chosenoffset.com/roomwalk/internal/render"
	"chosenoffset.com/roomwalk/internal/scene"
)

// Projector renders scenes. It must be used from the draw goroutine.
type Projector struct {
	renderer render.Renderer
	width    int
	height   int
	white    render.Image
	textures map[*scene.Mesh]render.Image
	used     map[*scene.Mesh]bool
	faces    []face
}

type face struct {
	layer int
	depth float64
	verts []render.Vertex
	tex   render.Image
}

// clipVertex is a vertex in clip space with its texture coordinates.
type clipVertex struct {
	pos  mgl64.Vec4
	u, v float64
}

// New creates a projector drawing with r.
func New(r render.Renderer) *Projector {
	white := r.NewImage(3, 3)
	white.Fill(color.White)
	return &Projector{
		renderer: r,
		white:    white.SubImage(image.Rect(1, 1, 2, 2)),
		textures: make(map[*scene.Mesh]render.Image),
		used:     make(map[*scene.Mesh]bool),
	}
}

// SetSize sets the viewport size in pixels.
func (p *Projector) SetSize(width, height int) {
	p.width, p.height = width, height
}

// Size returns the viewport size.
func (p *Projector) Size() (width, height int) {
	return p.width, p.height
}

// Render draws s as seen by rig through cam onto dst.
func (p *Projector) Render(dst render.Image, s *scene.Scene, cam *camera.Camera, rig *camera.Rig) {
	if p.width == 0 || p.height == 0 {
		p.width, p.height = dst.Size()
	}
	dst.Fill(s.Background)

	vp := cam.Projection().Mul4(rig.View())
	eye := rig.Position()
	p.faces = p.faces[:0]
	clear(p.used)

	for _, n := range s.Nodes() {
		model := n.Model()
		for _, m := range n.Meshes {
			p.projectMesh(s, n.Layer, m, model, vp, eye)
		}
	}

	slices.SortStableFunc(p.faces, func(a, b face) int {
		if c := cmp.Compare(a.layer, b.layer); c != 0 {
			return c
		}
		return cmp.Compare(b.depth, a.depth)
	})

	for _, f := range p.faces {
		indices := make([]uint16, 0, (len(f.verts)-2)*3)
		for i := 2; i < len(f.verts); i++ {
			indices = append(indices, 0, uint16(i-1), uint16(i))
		}
		dst.DrawTriangles(f.verts, indices, f.tex, &render.DrawTrianglesOptions{})
	}

	// Textures of meshes no longer in the scene.
	for m, t := range p.textures {
		if !p.used[m] {
			t.Dispose()
			delete(p.textures, m)
		}
	}
}

func (p *Projector) projectMesh(s *scene.Scene, layer int, m *scene.Mesh, model, vp mgl64.Mat4, eye mgl64.Vec3) {
	var tex render.Image
	texW, texH := 1.0, 1.0
	if m.Texture != nil {
		tex = p.texture(m)
		w, h := tex.Size()
		texW, texH = float64(w), float64(h)
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		var world [3]mgl64.Vec3
		var poly []clipVertex
		for j := range 3 {
			idx := m.Indices[i+j]
			if int(idx) >= len(m.Vertices) {
				return
			}
			v := m.Vertices[idx]
			world[j] = mgl64.TransformCoordinate(v.Pos, model)
			poly = append(poly, clipVertex{pos: vp.Mul4x1(world[j].Vec4(1)), u: v.U, v: v.V})
		}

		normal := world[1].Sub(world[0]).Cross(world[2].Sub(world[0]))
		if !m.DoubleSided && normal.Dot(eye.Sub(world[0])) <= 0 {
			continue
		}

		poly = clipNear(poly)
		if len(poly) < 3 || offscreen(poly) {
			continue
		}

		centroid := world[0].Add(world[1]).Add(world[2]).Mul(1.0 / 3)
		shade := mgl64.Vec3{1, 1, 1}
		if !m.Unlit {
			shade = s.Lights.Shade(centroid, normal, m.DoubleSided)
		}
		r, g, b, a := float32(1), float32(1), float32(1), float32(1)
		if tex == nil {
			r, g, b, a = float32(m.Color.R)/255, float32(m.Color.G)/255, float32(m.Color.B)/255, float32(m.Color.A)/255
		}

		f := face{layer: layer, tex: p.white, verts: make([]render.Vertex, len(poly))}
		if tex != nil {
			f.tex = tex
		}
		for j, cv := range poly {
			ndc := cv.pos.Vec3().Mul(1 / cv.pos.W())
			sx := (ndc.X() + 1) / 2 * float64(p.width)
			sy := (1 - ndc.Y()) / 2 * float64(p.height)
			vert := render.Vertex{
				DstX:   float32(sx),
				DstY:   float32(sy),
				SrcX:   1,
				SrcY:   1,
				ColorR: r * float32(shade[0]),
				ColorG: g * float32(shade[1]),
				ColorB: b * float32(shade[2]),
				ColorA: a,
			}
			if tex != nil {
				vert.SrcX = float32(cv.u * texW)
				vert.SrcY = float32(cv.v * texH)
			}
			f.verts[j] = vert
			f.depth += cv.pos.W()
		}
		f.depth /= float64(len(poly))
		p.faces = append(p.faces, f)
	}
}

func (p *Projector) texture(m *scene.Mesh) render.Image {
	p.used[m] = true
	if t, ok := p.textures[m]; ok {
		return t
	}
	t := p.renderer.NewImageFromImage(m.Texture)
	p.textures[m] = t
	return t
}

// clipNear clips a convex polygon against the near plane (z >= -w).
func clipNear(poly []clipVertex) []clipVertex {
	dist := func(v clipVertex) float64 { return v.pos.Z() + v.pos.W() }
	var out []clipVertex
	for i, cur := range poly {
		next := poly[(i+1)%len(poly)]
		dc, dn := dist(cur), dist(next)
		if dc >= 0 {
			out = append(out, cur)
		}
		if (dc >= 0) != (dn >= 0) {
			t := dc / (dc - dn)
			out = append(out, clipVertex{
				pos: cur.pos.Add(next.pos.Sub(cur.pos).Mul(t)),
				u:   cur.u + (next.u-cur.u)*t,
				v:   cur.v + (next.v-cur.v)*t,
			})
		}
	}
	return out
}

// offscreen reports whether every vertex lies beyond the same side plane.
func offscreen(poly []clipVertex) bool {
	var left, right, below, above int
	for _, v := range poly {
		x, y, w := v.pos.X(), v.pos.Y(), v.pos.W()
		if x < -w {
			left++
		}
		if x > w {
			right++
		}
		if y < -w {
			below++
		}
		if y > w {
			above++
		}
	}
	n := len(poly)
	return left == n || right == n || below == n || above == n
}

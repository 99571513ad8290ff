// Package scene holds the static room: nodes with a transform and meshes.
// Nothing here knows about the render backend; textures are kept as decoded
// images and uploaded by the renderer.
package scene

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/roomwalk/internal/render/lighting"
)

// Draw layers. Lower layers are drawn first regardless of depth.
const (
	LayerFloor = iota
	LayerWall
	LayerDecor
)

// Vertex is a mesh vertex in model space.
type Vertex struct {
	Pos  mgl64.Vec3
	U, V float64 // texture coordinates, (0, 0) is the bottom-left corner
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices    []Vertex
	Indices     []uint16
	Color       color.NRGBA
	Texture     image.Image // optional, stored bottom row first
	DoubleSided bool
	Unlit       bool // drawn at full brightness, ignoring scene lights
}

// Plane returns a width by height rectangle in the xy plane facing +z,
// centred on the origin.
func Plane(width, height float64) *Mesh {
	w, h := width/2, height/2
	return &Mesh{
		Vertices: []Vertex{
			{Pos: mgl64.Vec3{-w, h, 0}, U: 0, V: 1},
			{Pos: mgl64.Vec3{w, h, 0}, U: 1, V: 1},
			{Pos: mgl64.Vec3{-w, -h, 0}, U: 0, V: 0},
			{Pos: mgl64.Vec3{w, -h, 0}, U: 1, V: 0},
		},
		Indices:     []uint16{0, 2, 1, 2, 3, 1},
		Color:       color.NRGBA{255, 255, 255, 255},
		DoubleSided: true,
	}
}

// Node places meshes in the world.
type Node struct {
	Name     string
	Meshes   []*Mesh
	Position mgl64.Vec3
	Rotation mgl64.Vec3 // Euler angles in radians, applied x then y then z
	Scale    mgl64.Vec3
	Layer    int
}

// NewNode creates a node with unit scale.
func NewNode(name string, meshes ...*Mesh) *Node {
	return &Node{Name: name, Meshes: meshes, Scale: mgl64.Vec3{1, 1, 1}}
}

// Clone returns a copy of n that shares its meshes.
func (n *Node) Clone(name string) *Node {
	c := *n
	c.Name = name
	c.Meshes = append([]*Mesh(nil), n.Meshes...)
	return &c
}

// Model returns the model-to-world transform.
func (n *Node) Model() mgl64.Mat4 {
	r := n.Rotation
	return mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).
		Mul4(mgl64.HomogRotate3DX(r.X())).
		Mul4(mgl64.HomogRotate3DY(r.Y())).
		Mul4(mgl64.HomogRotate3DZ(r.Z())).
		Mul4(mgl64.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
}

// Scene is the set of nodes drawn each frame.
type Scene struct {
	Background color.NRGBA
	Lights     *lighting.Manager
	nodes      []*Node
}

// New creates an empty scene with a black background and no lights.
func New() *Scene {
	return &Scene{
		Background: color.NRGBA{0, 0, 0, 255},
		Lights:     lighting.NewManager(),
	}
}

// Add appends nodes in draw order.
func (s *Scene) Add(nodes ...*Node) {
	s.nodes = append(s.nodes, nodes...)
}

// Nodes returns the nodes in the order they were added.
func (s *Scene) Nodes() []*Node {
	return s.nodes
}

// Len returns the number of nodes.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Find returns the first node called name.
func (s *Scene) Find(name string) (*Node, bool) {
	for _, n := range s.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

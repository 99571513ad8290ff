package assets

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/sync/singleflight"

	"chosenoffset.com/roomwalk/internal/scene"
)

// MeshLoader reads glTF and GLB files. Each path is read at most once; later
// and concurrent requests share the result.
type MeshLoader struct {
	root  string
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*scene.Node
}

// NewMeshLoader creates a loader resolving relative paths against root.
func NewMeshLoader(root string) *MeshLoader {
	return &MeshLoader{root: root, cache: make(map[string]*scene.Node)}
}

// LoadMesh returns a node holding every triangle primitive of the file's
// default scene, with node transforms baked into the vertices. The returned
// node is a fresh copy; its meshes are shared between callers.
func (l *MeshLoader) LoadMesh(ctx context.Context, path string) (*scene.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := resolve(l.root, path)

	l.mu.Lock()
	n, ok := l.cache[full]
	l.mu.Unlock()
	if ok {
		return n.Clone(n.Name), nil
	}

	v, err, shared := l.group.Do(full, func() (any, error) {
		n, err := readGLTF(full)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[full] = n
		l.mu.Unlock()
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("Loaded mesh", "path", full, "shared", shared)
	n = v.(*scene.Node)
	return n.Clone(n.Name), nil
}

func readGLTF(path string) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	root := scene.NewNode(path)

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		for i := range doc.Nodes {
			roots = append(roots, i)
		}
	}

	var visit func(idx int, parent mgl64.Mat4, depth int) error
	visit = func(idx int, parent mgl64.Mat4, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("%s: node index %d out of range", path, idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("%s: node hierarchy has a cycle", path)
		}
		node := doc.Nodes[idx]
		world := parent.Mul4(localMatrix(node))
		if node.Mesh != nil {
			if *node.Mesh >= len(doc.Meshes) {
				return fmt.Errorf("%s: mesh index %d out of range", path, *node.Mesh)
			}
			for _, prim := range doc.Meshes[*node.Mesh].Primitives {
				m, err := readPrimitive(doc, prim, world)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if m != nil {
					root.Meshes = append(root.Meshes, m)
				}
			}
		}
		for _, c := range node.Children {
			if err := visit(c, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, idx := range roots {
		if err := visit(idx, mgl64.Ident4(), 0); err != nil {
			return nil, err
		}
	}
	if len(root.Meshes) == 0 {
		return nil, fmt.Errorf("%s: no triangle meshes", path)
	}
	return root, nil
}

func localMatrix(n *gltf.Node) mgl64.Mat4 {
	if n.Matrix != [16]float64{} && mgl64.Mat4(n.Matrix) != mgl64.Ident4() {
		return mgl64.Mat4(n.Matrix)
	}
	t := mgl64.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	r := mgl64.Ident4()
	if q := n.Rotation; q != [4]float64{} {
		r = mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}.Normalize().Mat4()
	}
	s := n.Scale
	if s == [3]float64{} {
		s = [3]float64{1, 1, 1}
	}
	return t.Mul4(r).Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl64.Mat4) (*scene.Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	if len(positions) > math.MaxUint16 {
		return nil, fmt.Errorf("primitive has %d vertices, limit is %d", len(positions), math.MaxUint16)
	}

	var uvs [][2]float32
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
	}

	m := &scene.Mesh{
		Vertices:    make([]scene.Vertex, len(positions)),
		Color:       color.NRGBA{200, 170, 90, 255},
		DoubleSided: true,
	}
	for i, p := range positions {
		v := scene.Vertex{Pos: mgl64.TransformCoordinate(mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}, world)}
		if i < len(uvs) {
			v.U, v.V = float64(uvs[i][0]), 1-float64(uvs[i][1])
		}
		m.Vertices[i] = v
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		m.Indices = make([]uint16, len(indices))
		for i, idx := range indices {
			if int(idx) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range", idx)
			}
			m.Indices[i] = uint16(idx)
		}
	} else {
		m.Indices = make([]uint16, len(positions))
		for i := range m.Indices {
			m.Indices[i] = uint16(i)
		}
	}

	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		if pbr := doc.Materials[*prim.Material].PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			f := pbr.BaseColorFactor
			m.Color = color.NRGBA{unit8(f[0]), unit8(f[1]), unit8(f[2]), unit8(f[3])}
		}
	}
	return m, nil
}

func unit8(f float64) uint8 {
	return uint8(mgl64.Clamp(f, 0, 1)*255 + 0.5)
}

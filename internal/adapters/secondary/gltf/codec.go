package gltf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"gonum.org/v1/gonum/mat"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

type glbCodec struct{}

// NewMeshCodec creates a MeshCodec for binary glTF files
func NewMeshCodec() ports.MeshCodec {
	return glbCodec{}
}

// Load flattens the default scene into one mesh in world space. Only
// triangle-list primitives contribute faces.
func (glbCodec) Load(path string) (*domain.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open glb: %w", err)
	}

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

	f := &flattener{doc: doc, mesh: &domain.Mesh{}, visited: make(map[int]bool)}
	for _, n := range roots {
		if err := f.visit(n, identity()); err != nil {
			return nil, err
		}
	}

	if err := f.mesh.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.mesh, nil
}

type flattener struct {
	doc     *gltf.Document
	mesh    *domain.Mesh
	visited map[int]bool
}

func (f *flattener) visit(idx int, parent *mat.Dense) error {
	if idx < 0 || idx >= len(f.doc.Nodes) {
		return fmt.Errorf("%w: node %d out of range", domain.ErrInvalidMesh, idx)
	}
	if f.visited[idx] {
		return fmt.Errorf("%w: node %d visited twice", domain.ErrInvalidMesh, idx)
	}
	f.visited[idx] = true

	node := f.doc.Nodes[idx]
	world := mat.NewDense(4, 4, nil)
	world.Mul(parent, localTransform(node))

	if node.Mesh != nil {
		if err := f.appendMesh(*node.Mesh, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := f.visit(child, world); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) appendMesh(meshIdx int, world *mat.Dense) error {
	if meshIdx < 0 || meshIdx >= len(f.doc.Meshes) {
		return fmt.Errorf("%w: mesh %d out of range", domain.ErrInvalidMesh, meshIdx)
	}

	for _, prim := range f.doc.Meshes[meshIdx].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		posAcc, err := f.accessor(posIdx)
		if err != nil {
			return err
		}
		positions, err := modeler.ReadPosition(f.doc, posAcc, nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var indices []uint32
		if prim.Indices != nil {
			idxAcc, err := f.accessor(*prim.Indices)
			if err != nil {
				return err
			}
			indices, err = modeler.ReadIndices(f.doc, idxAcc, nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		if len(indices)%3 != 0 {
			return fmt.Errorf("%w: index count %d is not a multiple of 3", domain.ErrInvalidMesh, len(indices))
		}

		base := uint32(len(f.mesh.Positions))
		for _, p := range positions {
			f.mesh.Positions = append(f.mesh.Positions, transformPoint(world, p))
		}
		for i := 0; i < len(indices); i += 3 {
			f.mesh.Faces = append(f.mesh.Faces, [3]uint32{
				base + indices[i], base + indices[i+1], base + indices[i+2],
			})
		}
	}
	return nil
}

func (f *flattener) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(f.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", domain.ErrInvalidMesh, idx)
	}
	return f.doc.Accessors[idx], nil
}

// Save writes mesh as a single-node GLB. Face colors cannot be expressed in
// glTF directly, so a colored mesh is unmerged: each face gets its own three
// vertices carrying the face color in COLOR_0.
func (glbCodec) Save(path string, mesh *domain.Mesh) error {
	if err := mesh.Validate(); err != nil {
		return err
	}

	doc := gltf.NewDocument()
	prim := &gltf.Primitive{Mode: gltf.PrimitiveTriangles}

	if mesh.FaceColors != nil {
		positions := make([][3]float32, 0, len(mesh.Faces)*3)
		colors := make([][4]uint8, 0, len(mesh.Faces)*3)
		for i, face := range mesh.Faces {
			for _, v := range face {
				positions = append(positions, mesh.Positions[v])
				colors = append(colors, mesh.FaceColors[i])
			}
		}
		prim.Attributes = map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.COLOR_0:  modeler.WriteColor(doc, colors),
		}
	} else {
		indices := make([]uint32, 0, len(mesh.Faces)*3)
		for _, face := range mesh.Faces {
			indices = append(indices, face[0], face[1], face[2])
		}
		prim.Attributes = map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, mesh.Positions),
		}
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
	}

	doc.Meshes = []*gltf.Mesh{{Name: "geometry", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "geometry", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := gltf.SaveBinary(doc, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save glb: %w", err)
	}
	return os.Rename(tmp, path)
}

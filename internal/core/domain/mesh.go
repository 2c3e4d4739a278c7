package domain

// Mesh is a flattened triangle mesh. FaceColors, when set, has one entry per face.
type Mesh struct {
	Positions  [][3]float32
	Faces      [][3]uint32
	FaceColors [][4]uint8
}

// Validate checks that every face references an existing vertex.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Positions))
	for _, f := range m.Faces {
		if f[0] >= n || f[1] >= n || f[2] >= n {
			return ErrInvalidMesh
		}
	}
	if m.FaceColors != nil && len(m.FaceColors) != len(m.Faces) {
		return ErrInvalidMesh
	}
	return nil
}

// SemanticLabels holds one part label per mesh face.
type SemanticLabels []int64

// PartCount is the number of distinct labels present.
func (l SemanticLabels) PartCount() int {
	seen := make(map[int64]struct{})
	for _, v := range l {
		seen[v] = struct{}{}
	}
	return len(seen)
}

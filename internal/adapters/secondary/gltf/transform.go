package gltf

import (
	"github.com/qmuntal/gltf"
	"gonum.org/v1/gonum/mat"
)

func identity() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// localTransform returns the node's matrix, or T*R*S when the node is
// described by translation, rotation and scale.
func localTransform(n *gltf.Node) *mat.Dense {
	m := n.MatrixOrDefault()
	if m != identityArray {
		// glTF matrices are column-major.
		out := mat.NewDense(4, 4, nil)
		for col := 0; col < 4; col++ {
			for row := 0; row < 4; row++ {
				out.Set(row, col, m[col*4+row])
			}
		}
		return out
	}

	t := n.TranslationOrDefault()
	q := n.RotationOrDefault()
	s := n.ScaleOrDefault()

	x, y, z, w := q[0], q[1], q[2], q[3]
	r := mat.NewDense(4, 4, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), 0,
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), 0,
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	})
	scale := mat.NewDense(4, 4, []float64{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		0, 0, 0, 1,
	})
	translate := mat.NewDense(4, 4, []float64{
		1, 0, 0, t[0],
		0, 1, 0, t[1],
		0, 0, 1, t[2],
		0, 0, 0, 1,
	})

	var tr mat.Dense
	tr.Mul(translate, r)
	out := mat.NewDense(4, 4, nil)
	out.Mul(&tr, scale)
	return out
}

var identityArray = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func transformPoint(m *mat.Dense, p [3]float32) [3]float32 {
	v := mat.NewVecDense(4, []float64{float64(p[0]), float64(p[1]), float64(p[2]), 1})
	var out mat.VecDense
	out.MulVec(m, v)
	w := out.AtVec(3)
	if w == 0 {
		w = 1
	}
	return [3]float32{
		float32(out.AtVec(0) / w),
		float32(out.AtVec(1) / w),
		float32(out.AtVec(2) / w),
	}
}

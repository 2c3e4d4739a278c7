package testutil

import (
	"partobjaverse-viewer/internal/core/domain"
)

// LabelSet builds a small two-category label set; Vehicles spans two pages.
func LabelSet() *domain.LabelSet {
	ls, err := domain.NewLabelSet([]domain.Category{
		{Name: "Vehicles", Samples: []domain.Sample{
			{UID: "v1", PartLabels: []string{"wheel", "body", "window"}},
			{UID: "v2", PartLabels: []string{"wheel"}},
			{UID: "v3", PartLabels: []string{"door", "body"}},
			{UID: "v4", PartLabels: []string{"body"}},
			{UID: "v5", PartLabels: []string{"wheel", "seat"}},
		}},
		{Name: "Animals", Samples: []domain.Sample{
			{UID: "a1", PartLabels: []string{"head", "leg"}},
		}},
	})
	if err != nil {
		panic(err)
	}
	return ls
}

// Triangle is a one-face mesh.
func Triangle() *domain.Mesh {
	return &domain.Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:     [][3]uint32{{0, 1, 2}},
	}
}

// Quad is a two-face mesh.
func Quad() *domain.Mesh {
	return &domain.Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Faces:     [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	}
}

package dto

import (
	"partobjaverse-viewer/internal/core/domain"
	"partobjaverse-viewer/internal/core/services"
)

// ============================================================================
// Response DTOs
// ============================================================================

type SummaryResponse struct {
	SampleCount   int `json:"sample_count"`
	CategoryCount int `json:"category_count"`
}

type CategoryResponse struct {
	Name        string `json:"name"`
	SampleCount int    `json:"sample_count"`
	PageCount   int    `json:"page_count"`
	// Label is how the dashboard shows the category in its select box
	Label string `json:"label"`
}

type ListCategoriesResponse struct {
	Items []CategoryResponse `json:"items"`
	Total int                `json:"total"`
}

type LegendEntryResponse struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Color string `json:"color"`
}

type SampleResponse struct {
	UID            string                  `json:"uid"`
	Category       string                  `json:"category"`
	MeshURL        string                  `json:"mesh_url"`
	ColoredMeshURL string                  `json:"colored_mesh_url"`
	Legend         []LegendEntryResponse   `json:"legend"`
	Colorize       *ColorizeRecordResponse `json:"colorize,omitempty"`
}

type PageResponse struct {
	Category  CategoryResponse `json:"category"`
	Page      int              `json:"page"`
	PageCount int              `json:"page_count"`
	PageLabel string           `json:"page_label"`
	Samples   []SampleResponse `json:"samples"`
}

type CategoryStatsResponse struct {
	Name            string  `json:"name"`
	SampleCount     int     `json:"sample_count"`
	MeanPartCount   float64 `json:"mean_part_count"`
	StdDevPartCount float64 `json:"stddev_part_count"`
	MaxPartCount    int     `json:"max_part_count"`
}

// ============================================================================
// Converters
// ============================================================================

func ToSummaryResponse(s domain.DatasetSummary) SummaryResponse {
	return SummaryResponse{SampleCount: s.SampleCount, CategoryCount: s.CategoryCount}
}

func ToCategoryResponse(c services.CategoryInfo) CategoryResponse {
	return CategoryResponse{
		Name:        c.Name,
		SampleCount: c.SampleCount,
		PageCount:   c.PageCount,
		Label:       domain.CategoryLabel(c.Name, c.SampleCount),
	}
}

func ToSampleResponse(sv *services.SampleView) SampleResponse {
	legend := make([]LegendEntryResponse, 0, len(sv.Legend))
	for _, e := range sv.Legend {
		legend = append(legend, LegendEntryResponse{Index: e.Index, Label: e.Label, Color: e.Color})
	}

	resp := SampleResponse{
		UID:            sv.UID,
		Category:       sv.Category,
		MeshURL:        sv.MeshURL,
		ColoredMeshURL: sv.ColoredMeshURL,
		Legend:         legend,
	}
	if sv.Record != nil {
		rec := ToColorizeRecordResponse(sv.Record)
		resp.Colorize = &rec
	}
	return resp
}

func ToPageResponse(p *services.PageView) PageResponse {
	samples := make([]SampleResponse, 0, len(p.Samples))
	for i := range p.Samples {
		samples = append(samples, ToSampleResponse(&p.Samples[i]))
	}
	return PageResponse{
		Category:  ToCategoryResponse(p.Category),
		Page:      p.Page,
		PageCount: p.PageCount,
		PageLabel: domain.PageLabel(p.Page, p.PageCount),
		Samples:   samples,
	}
}

func ToCategoryStatsResponse(s services.CategoryStats) CategoryStatsResponse {
	return CategoryStatsResponse{
		Name:            s.Name,
		SampleCount:     s.SampleCount,
		MeanPartCount:   s.MeanPartCount,
		StdDevPartCount: s.StdDevPartCount,
		MaxPartCount:    s.MaxPartCount,
	}
}

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"partobjaverse-viewer/internal/core/domain"
	"partobjaverse-viewer/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	log "github.com/sirupsen/logrus"
)

const (
	dashboardTitle = "PartObjaverse-Tiny"

	sessionCategory = "category"
	sessionPage     = "page"
)

type option struct {
	Name     string
	Index    int
	Label    string
	Selected bool
}

type dashboardData struct {
	Title      string
	Summary    domain.DatasetSummary
	Categories []option
	Pages      []option
	Samples    []services.SampleView
}

// Dashboard renders one page of one category. The selection comes from the
// query string, falling back to the last one stored in the session.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.catalogSvc.Summary(ctx)
	if err != nil {
		log.WithError(err).Error("dashboard summary failed")
		mapDomainError(c, err)
		return
	}
	cats, err := h.catalogSvc.ListCategories(ctx)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	data := dashboardData{Title: dashboardTitle, Summary: summary}
	if len(cats) == 0 {
		c.Render(http.StatusOK, render.HTML{Template: h.pages, Name: "dashboard.html", Data: data})
		return
	}

	session, _ := h.sessions.Get(c.Request, h.sessionName)
	category, page := h.selection(c, session.Values, cats)

	view, err := h.catalogSvc.GetPage(ctx, category.Name, page)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	session.Values[sessionCategory] = category.Name
	session.Values[sessionPage] = page
	if err := session.Save(c.Request, c.Writer); err != nil {
		log.WithError(err).Warn("save dashboard session failed")
	}

	for _, cat := range cats {
		data.Categories = append(data.Categories, option{
			Name:     cat.Name,
			Label:    domain.CategoryLabel(cat.Name, cat.SampleCount),
			Selected: cat.Name == category.Name,
		})
	}
	for i := 0; i < view.PageCount; i++ {
		data.Pages = append(data.Pages, option{
			Index:    i,
			Label:    domain.PageLabel(i, view.PageCount),
			Selected: i == page,
		})
	}
	data.Samples = view.Samples

	c.Render(http.StatusOK, render.HTML{Template: h.pages, Name: "dashboard.html", Data: data})
}

// selection resolves the category and 0-based page to show. Unknown
// categories fall back to the first one; out-of-range pages to page 0.
func (h *Handler) selection(c *gin.Context, values map[interface{}]interface{}, cats []services.CategoryInfo) (services.CategoryInfo, int) {
	name := c.Query("category")
	if name == "" {
		name, _ = values[sessionCategory].(string)
	}

	category := cats[0]
	for _, cat := range cats {
		if cat.Name == name {
			category = cat
			break
		}
	}

	page := 0
	if raw, ok := c.GetQuery("page"); ok {
		page, _ = strconv.Atoi(raw)
	} else if stored, _ := values[sessionCategory].(string); stored == category.Name {
		page, _ = values[sessionPage].(int)
	}
	if page < 0 || page >= category.PageCount {
		page = 0
	}
	return category, page
}

// StatsChart renders samples and mean part count per category.
func (h *Handler) StatsChart(c *gin.Context) {
	stats, err := h.catalogSvc.Stats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("get stats failed")
		mapDomainError(c, err)
		return
	}

	names := make([]string, 0, len(stats))
	samples := make([]opts.BarData, 0, len(stats))
	parts := make([]opts.BarData, 0, len(stats))
	total := 0
	for _, s := range stats {
		names = append(names, s.Name)
		samples = append(samples, opts.BarData{Value: s.SampleCount})
		parts = append(parts, opts.BarData{Value: fmt.Sprintf("%.2f", s.MeanPartCount)})
		total += s.SampleCount
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: dashboardTitle + " stats", Width: "100%", Height: "640px"}),
		charts.WithTitleOpts(opts.Title{Title: dashboardTitle, Subtitle: fmt.Sprintf("%d samples across %d categories", total, len(stats))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("samples", samples).
		AddSeries("mean parts", parts)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		log.WithError(err).Error("render stats chart failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render chart"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

package handlers

import (
	"embed"
	"html/template"

	"partobjaverse-viewer/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	catalogSvc  *services.CatalogService
	colorizeSvc *services.ColorizeService
	sessions    sessions.Store
	sessionName string
	pages       *template.Template
}

func New(
	catalogSvc *services.CatalogService,
	colorizeSvc *services.ColorizeService,
	sessionStore sessions.Store,
	sessionName string,
) *Handler {
	return &Handler{
		catalogSvc:  catalogSvc,
		colorizeSvc: colorizeSvc,
		sessions:    sessionStore,
		sessionName: sessionName,
		pages:       template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// RegisterRoutes mounts the JSON API.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Catalog
	r.GET("/summary", h.GetSummary)
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:name/pages/:page", h.GetCategoryPage)
	r.GET("/samples/:uid", h.GetSample)
	r.GET("/stats", h.GetStats)

	// Colorize
	r.GET("/colorize/records", h.ListColorizeRecords)
	r.POST("/colorize/:uid", h.ColorizeSample)
}

// RegisterPages mounts the browser-facing pages.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/", h.Dashboard)
	r.GET("/stats", h.StatsChart)
	r.GET("/healthz", h.Healthz)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"partobjaverse-viewer/internal/adapters/primary/http/handlers"
	"partobjaverse-viewer/internal/adapters/primary/http/middleware"
	"partobjaverse-viewer/internal/app"
	"partobjaverse-viewer/internal/config"
	"partobjaverse-viewer/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app.InitLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	// Dataset preparation
	source := domain.ColoredSource(cfg.Colorize.Source)
	ls, err := a.DatasetSvc.Prepare(ctx, source)
	if err != nil {
		log.Fatalf("prepare dataset: %v", err)
	}
	if source == domain.ColoredSourceLocal {
		summary, err := a.ColorizeSvc.ColorizeAll(ctx, ls.Samples(), cfg.Colorize.Force)
		if err != nil {
			log.Fatalf("colorize meshes: %v", err)
		}
		if summary.Failed > 0 {
			log.Warnf("%d of %d meshes failed to colorize", summary.Failed, summary.Total)
		}
	}
	if _, err := a.CatalogSvc.Reload(ctx); err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	// Primary Adapter (HTTP Handlers)
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{Path: "/", MaxAge: cfg.Session.MaxAge, HttpOnly: true}
	h := handlers.New(a.CatalogSvc, a.ColorizeSvc, sessionStore, cfg.Session.Name)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Metrics(a.Metrics), gin.Recovery())

	router.Static("/"+app.StaticRoute, cfg.Dataset.StaticDir)
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	h.RegisterPages(router)

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

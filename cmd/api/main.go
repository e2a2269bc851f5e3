package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/leads-enricher/internal/auth"
	"github.com/octobees/leads-enricher/internal/config"
	"github.com/octobees/leads-enricher/internal/crawl"
	"github.com/octobees/leads-enricher/internal/database"
	"github.com/octobees/leads-enricher/internal/export"
	"github.com/octobees/leads-enricher/internal/handler"
	"github.com/octobees/leads-enricher/internal/lookup"
	middlewarepkg "github.com/octobees/leads-enricher/internal/middleware"
	"github.com/octobees/leads-enricher/internal/pipeline"
	"github.com/octobees/leads-enricher/internal/repository"
	"github.com/octobees/leads-enricher/internal/router"
	"github.com/octobees/leads-enricher/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	repo := repository.NewPGXBusinessesRepository(pool)

	authService := service.NewAuthService(cfg.OperatorEmail, cfg.OperatorHash, jwtManager)

	scraperClient := lookup.NewClient(nil, cfg.ScraperBaseURL)
	planner := service.NewQueryPlanner("New York", "USA")
	lookupService := service.NewLookupService(scraperClient, repo, planner)

	crawler := crawl.New(cfg.Crawl.FetchTimeout, cfg.Crawl.MaxRedirects, crawl.WithMaxBodyBytes(cfg.Crawl.MaxBodyBytes))
	runner := pipeline.NewRunner(crawler, pipeline.WithConcurrency(cfg.Crawl.Concurrency))
	cleaner := service.NewContactCleaner(cfg.PhoneRegion)
	enrichService := service.NewEnrichService(repo, runner, cleaner)

	var sheetAppender handler.SheetAppender
	if cfg.SheetID != "" {
		exporter, err := export.NewSheetsExporter(ctx, cfg.SheetID)
		if err != nil {
			log.Printf("sheets export disabled: %v", err)
		} else {
			sheetAppender = exporter
		}
	}

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Businesses: handler.NewBusinessesHandler(repo),
		Lookup:     handler.NewLookupHandler(lookupService),
		Enrich:     handler.NewEnrichHandler(enrichService),
		AdminData:  handler.NewAdminDataHandler(repo, sheetAppender),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-enricher/internal/auth"
	"github.com/octobees/leads-enricher/internal/config"
	"github.com/octobees/leads-enricher/internal/handler"
	middlewarepkg "github.com/octobees/leads-enricher/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Businesses *handler.BusinessesHandler
	Lookup     *handler.LookupHandler
	Enrich     *handler.EnrichHandler
	AdminData  *handler.AdminDataHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)
	e.GET("/businesses", handlers.Businesses.List)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	limiter := middlewarepkg.LookupRateLimiter(cfg.RateLimitLookup)
	secured.POST("/lookup", handlers.Lookup.Run, limiter)
	secured.POST("/enrich", handlers.Enrich.Run, limiter)
	secured.GET("/enrich/:business_id", handlers.Enrich.GetResult)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.POST("/import-jsonl", handlers.AdminData.ImportJSONL)
	admin.GET("/export/jsonl", handlers.AdminData.ExportJSONL)
	admin.GET("/export/csv", handlers.AdminData.ExportCSV)
	admin.POST("/export/sheets", handlers.AdminData.ExportSheets)
}

// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//
// The reconciliation services are constructed by the application and passed
// in, because the scheduler shares the same instances: the single-flight gate
// only works when every trigger source goes through one ScanService.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/freshkeeper/go-inventory-backend/internal/config"
	"github.com/freshkeeper/go-inventory-backend/internal/domain"
	"github.com/freshkeeper/go-inventory-backend/internal/http/handlers"
	"github.com/freshkeeper/go-inventory-backend/internal/http/middleware"
	"github.com/freshkeeper/go-inventory-backend/internal/repo"
	"github.com/freshkeeper/go-inventory-backend/internal/services"
)

// AlertRepo adapts the repository free functions to the interfaces the
// services expect. This keeps services decoupled from the concrete repo
// package while reusing the existing functions. The zero value is usable.
type AlertRepo struct{}

// UpsertAlert proxies repo.UpsertAlert.
func (AlertRepo) UpsertAlert(ctx context.Context, db *gorm.DB, productID uint, kind domain.AlertKind, dueDate time.Time, message string) (bool, error) {
	return repo.UpsertAlert(ctx, db, productID, kind, dueDate, message)
}

// DeactivateSiblings proxies repo.DeactivateSiblings.
func (AlertRepo) DeactivateSiblings(ctx context.Context, db *gorm.DB, productID uint, kind domain.AlertKind, keepDue time.Time) (int64, error) {
	return repo.DeactivateSiblings(ctx, db, productID, kind, keepDue)
}

// SoftDeleteOldAlerts proxies repo.SoftDeleteOldAlerts.
func (AlertRepo) SoftDeleteOldAlerts(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	return repo.SoftDeleteOldAlerts(ctx, db, cutoff)
}

// HardPurgeInactive proxies repo.HardPurgeInactive.
func (AlertRepo) HardPurgeInactive(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	return repo.HardPurgeInactive(ctx, db, cutoff)
}

// CountAlerts proxies repo.CountAlerts.
func (AlertRepo) CountAlerts(ctx context.Context, db *gorm.DB, f repo.AlertFilter) (int64, error) {
	return repo.CountAlerts(ctx, db, f)
}

// ListAlertsPage proxies repo.ListAlertsPage.
func (AlertRepo) ListAlertsPage(ctx context.Context, db *gorm.DB, f repo.AlertFilter, offset, limit int) ([]domain.Alert, error) {
	return repo.ListAlertsPage(ctx, db, f, offset, limit)
}

// GetAlert proxies repo.GetAlert.
func (AlertRepo) GetAlert(ctx context.Context, db *gorm.DB, id uint) (*domain.Alert, error) {
	return repo.GetAlert(ctx, db, id)
}

// PatchAlert proxies repo.PatchAlert.
func (AlertRepo) PatchAlert(ctx context.Context, db *gorm.DB, id uint, isActive *bool, message *string) (*domain.Alert, error) {
	return repo.PatchAlert(ctx, db, id, isActive, message)
}

// AckAlerts proxies repo.AckAlerts.
func (AlertRepo) AckAlerts(ctx context.Context, db *gorm.DB, ids []uint) (int64, error) {
	return repo.AckAlerts(ctx, db, ids)
}

// AckProductAlerts proxies repo.AckProductAlerts.
func (AlertRepo) AckProductAlerts(ctx context.Context, db *gorm.DB, productID uint) (int64, error) {
	return repo.AckProductAlerts(ctx, db, productID)
}

// SnapshotRepo adapts the product snapshot feed.
type SnapshotRepo struct{}

// ListItemSnapshots proxies repo.ListItemSnapshots.
func (SnapshotRepo) ListItemSnapshots(ctx context.Context, db *gorm.DB) ([]domain.ItemSnapshot, error) {
	return repo.ListItemSnapshots(ctx, db)
}

// productRepoShim adapts product/category persistence for ProductService.
type productRepoShim struct{}

func (productRepoShim) CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error) {
	return repo.CreateProduct(ctx, db, p)
}

func (productRepoShim) ListProducts(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	return repo.ListProducts(ctx, db)
}

func (productRepoShim) GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	return repo.GetProduct(ctx, db, id)
}

func (productRepoShim) SaveProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return repo.SaveProduct(ctx, db, p)
}

func (productRepoShim) DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteProduct(ctx, db, id)
}

func (productRepoShim) GetCategory(ctx context.Context, db *gorm.DB, id uint) (*domain.Category, error) {
	return repo.GetCategory(ctx, db, id)
}

// categoryRepoShim adapts category persistence for CategoryService.
type categoryRepoShim struct{}

func (categoryRepoShim) CreateCategory(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error) {
	return repo.CreateCategory(ctx, db, name)
}

func (categoryRepoShim) ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	return repo.ListCategories(ctx, db)
}

func (categoryRepoShim) DeleteCategory(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteCategory(ctx, db, id)
}

// Deps carries everything RegisterRoutes needs.
type Deps struct {
	DB        *gorm.DB
	Cfg       config.Config
	Scan      *services.ScanService
	Retention *services.RetentionService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. CORS and security headers
//  9. gzip compression
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.HandleMethodNotAllowed = true
	cfg := d.Cfg

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 9) Compress JSON payloads
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db
	alertSvc := services.NewAlertService(d.DB, AlertRepo{})
	productSvc := services.NewProductService(d.DB, productRepoShim{})
	categorySvc := services.NewCategoryService(d.DB, categoryRepoShim{})
	h := handlers.New(alertSvc, productSvc, categorySvc, d.Scan, d.Retention)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Alerts
		api.GET("/alerts", h.ListAlerts)
		api.PATCH("/alerts/:id", h.PatchAlert)
		api.POST("/alerts/ack", h.AckAlerts)

		// Products
		api.POST("/products", h.CreateProduct)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)
		api.POST("/products/:id/ack", h.AckProductAlerts)

		// Categories
		api.POST("/categories", h.CreateCategory)
		api.GET("/categories", h.ListCategories)
		api.DELETE("/categories/:id", h.DeleteCategory)

		// Engine triggers
		api.POST("/admin/scan", h.RunScan)
		api.POST("/admin/retention", h.RunRetention)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// Handler wiring and shared DTO helpers.
//
// Handlers are transport-thin: they validate input, call application services
// through the interfaces below, and translate results into HTTP responses.
package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
	"github.com/freshkeeper/go-inventory-backend/internal/repo"
	"github.com/freshkeeper/go-inventory-backend/internal/services"
	"github.com/freshkeeper/go-inventory-backend/internal/utils"
)

// AlertService defines the alert read/ack surface consumed by HTTP handlers.
type AlertService interface {
	ListPage(ctx context.Context, f repo.AlertFilter, page, pageSize int) ([]domain.Alert, int64, error)
	Patch(ctx context.Context, id uint, isActive *bool, message *string) (*domain.Alert, error)
	Ack(ctx context.Context, ids []uint) (int64, error)
	AckProduct(ctx context.Context, productID uint) (int64, error)
}

// ProductService defines product CRUD operations consumed by HTTP handlers.
type ProductService interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id uint) (*domain.Product, error)
	Update(ctx context.Context, id uint, upd domain.Product, setQuantity, setExpiry bool) (*domain.Product, error)
	Delete(ctx context.Context, id uint) error
}

// CategoryService defines category CRUD operations consumed by HTTP handlers.
type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id uint) error
}

// ScanService triggers reconciliation runs.
type ScanService interface {
	RunScan(ctx context.Context) (services.ScanResult, error)
}

// RetentionService triggers retention runs.
type RetentionService interface {
	RunRetention(ctx context.Context, retentionDays *int) (services.RetentionResult, error)
}

// Handlers groups the HTTP endpoints of the API. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	alertSvc     AlertService
	productSvc   ProductService
	categorySvc  CategoryService
	scanSvc      ScanService
	retentionSvc RetentionService
}

// New constructs a Handlers instance bound to the given services.
func New(alertSvc AlertService, productSvc ProductService, categorySvc CategoryService, scanSvc ScanService, retentionSvc RetentionService) *Handlers {
	return &Handlers{
		alertSvc:     alertSvc,
		productSvc:   productSvc,
		categorySvc:  categorySvc,
		scanSvc:      scanSvc,
		retentionSvc: retentionSvc,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paramID parses the :id path parameter as an unsigned integer.
func paramID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

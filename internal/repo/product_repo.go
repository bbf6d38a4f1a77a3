// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model plus the snapshot query the reconciliation engine scans.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a product is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateProduct inserts a new Product row. On success the row (with its
// assigned ID and timestamps) is returned.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error) {
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns all products ordered by ID ascending. It returns an
// empty slice when the table is empty.
func ListProducts(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// GetProduct fetches a single product by ID, or ErrNotFound if missing.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProduct persists all fields of an existing product row.
func SaveProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Save(p).Error
}

// DeleteProduct removes a product by ID. Returns ErrNotFound when no row was
// deleted. Alerts referencing the product are cascade-deleted by the schema.
func DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListItemSnapshots reads the minimal (id, quantity, expiry_date) tuple for
// every product, ordered by ID. This is the read-only feed the scan consumes;
// it deliberately skips the rest of the product columns.
func ListItemSnapshots(ctx context.Context, db *gorm.DB) ([]domain.ItemSnapshot, error) {
	var out []domain.ItemSnapshot
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("id", "quantity", "expiry_date").
		Order("id asc").
		Find(&out).Error
	return out, err
}

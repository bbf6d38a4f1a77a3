// Package services – ProductService and CategoryService
//
// Thin CRUD orchestration over the inventory tables. These services validate
// input and referential integrity; they contain no alert logic. The engine
// picks up inventory changes on its next scan rather than reacting inline.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
	"github.com/freshkeeper/go-inventory-backend/internal/repo"
)

// ProductRepo defines the repository contract required by ProductService.
type ProductRepo interface {
	CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error)
	ListProducts(ctx context.Context, db *gorm.DB) ([]domain.Product, error)
	GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error)
	SaveProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error
	DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error
	GetCategory(ctx context.Context, db *gorm.DB, id uint) (*domain.Category, error)
}

// ProductService provides product CRUD with category validation.
type ProductService struct {
	DB   *gorm.DB
	Repo ProductRepo
}

// NewProductService constructs a ProductService.
func NewProductService(db *gorm.DB, r ProductRepo) *ProductService {
	return &ProductService{DB: db, Repo: r}
}

// Create inserts a new product after validating the name and, when given,
// the category reference.
func (s *ProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}
	return s.Repo.CreateProduct(ctx, s.DB, p)
}

// List returns all products.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.Repo.ListProducts(ctx, s.DB)
}

// Get fetches one product by ID.
func (s *ProductService) Get(ctx context.Context, id uint) (*domain.Product, error) {
	p, err := s.Repo.GetProduct(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Update applies the non-nil fields of upd to an existing product.
func (s *ProductService) Update(ctx context.Context, id uint, upd domain.Product, setQuantity, setExpiry bool) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(upd.Name); name != "" {
		p.Name = name
	}
	if upd.CategoryID != nil {
		if err := s.checkCategory(ctx, upd.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = upd.CategoryID
	}
	if setQuantity {
		p.Quantity = upd.Quantity
	}
	if setExpiry {
		p.ExpiryDate = upd.ExpiryDate
	}
	if err := s.Repo.SaveProduct(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product; its alerts are cascade-deleted by the schema.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.Repo.DeleteProduct(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return err
}

func (s *ProductService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetCategory(ctx, s.DB, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCategory
		}
		return err
	}
	return nil
}

// CategoryRepo defines the repository contract required by CategoryService.
type CategoryRepo interface {
	CreateCategory(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, db *gorm.DB, id uint) error
}

// CategoryService provides category CRUD.
type CategoryService struct {
	DB   *gorm.DB
	Repo CategoryRepo
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB, r CategoryRepo) *CategoryService {
	return &CategoryService{DB: db, Repo: r}
}

// Create inserts a new category with a trimmed, non-empty, unique name.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	c, err := s.Repo.CreateCategory(ctx, s.DB, name)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateCategory
	}
	return c, err
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.Repo.ListCategories(ctx, s.DB)
}

// Delete removes a category; products keep existing without one.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	err := s.Repo.DeleteCategory(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

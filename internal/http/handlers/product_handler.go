// Product and category HTTP handlers.
//
// Endpoints:
//   - POST   /products      GET /products      GET /products/{id}
//   - PUT    /products/{id} DELETE /products/{id}
//   - POST   /categories    GET /categories    DELETE /categories/{id}
//
// Thin CRUD over the inventory tables; the reconciliation engine picks up
// changes made here on its next scan.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
	"github.com/freshkeeper/go-inventory-backend/internal/services"
)

// ProductRequest is the JSON payload for creating or updating a product.
// For updates, absent fields are left unchanged; quantity and expiry_date may
// also be explicitly nulled.
type ProductRequest struct {
	Name       string  `json:"name"`
	CategoryID *uint   `json:"category_id"`
	Quantity   *int    `json:"quantity"`
	ExpiryDate *string `json:"expiry_date"` // YYYY-MM-DD
}

// CreateCategoryRequest is the JSON payload for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

func (r ProductRequest) expiry() (*time.Time, error) {
	if r.ExpiryDate == nil || *r.ExpiryDate == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", *r.ExpiryDate, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateProduct inserts a new product.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	exp, err := req.expiry()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "expiry_date must be YYYY-MM-DD")
		return
	}

	p, err := h.productSvc.Create(c.Request.Context(), &domain.Product{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Quantity:   req.Quantity,
		ExpiryDate: exp,
	})
	switch {
	case errors.Is(err, services.ErrEmptyName):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
	case errors.Is(err, services.ErrInvalidCategory):
		fail(c, http.StatusUnprocessableEntity, ErrCodeBadRequest, "category_id does not exist")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	default:
		ok(c, http.StatusCreated, p)
	}
}

// ListProducts returns all products.
func (h *Handlers) ListProducts(c *gin.Context) {
	items, err := h.productSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetProduct returns one product by ID.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, okID := paramID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid product id")
		return
	}
	p, err := h.productSvc.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, p)
	}
}

// UpdateProduct applies a partial update to a product. Quantity and expiry
// are only changed when their keys are present in the payload.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, okID := paramID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid product id")
		return
	}

	// Decode into a raw map first to distinguish "absent" from "null".
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	upd, setQuantity, setExpiry, err := productUpdateFromMap(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	p, err := h.productSvc.Update(c.Request.Context(), id, upd, setQuantity, setExpiry)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
	case errors.Is(err, services.ErrInvalidCategory):
		fail(c, http.StatusUnprocessableEntity, ErrCodeBadRequest, "category_id does not exist")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, p)
	}
}

// DeleteProduct removes a product and (via the schema) its alerts.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, okID := paramID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid product id")
		return
	}
	err := h.productSvc.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		noContent(c)
	}
}

// CreateCategory inserts a new category.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
		return
	}
	cat, err := h.categorySvc.Create(c.Request.Context(), req.Name)
	switch {
	case errors.Is(err, services.ErrEmptyName):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
	case errors.Is(err, services.ErrDuplicateCategory):
		fail(c, http.StatusConflict, ErrCodeConflict, "category already exists")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	default:
		ok(c, http.StatusCreated, cat)
	}
}

// ListCategories returns all categories.
func (h *Handlers) ListCategories(c *gin.Context) {
	items, err := h.categorySvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// DeleteCategory removes a category; its products keep existing without one.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, okID := paramID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid category id")
		return
	}
	err := h.categorySvc.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "category not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		noContent(c)
	}
}

// productUpdateFromMap converts a decoded JSON object into the partial-update
// arguments of ProductService.Update, reporting which nullable fields were
// present in the payload.
func productUpdateFromMap(raw map[string]any) (upd domain.Product, setQuantity, setExpiry bool, err error) {
	if v, present := raw["name"]; present {
		s, okStr := v.(string)
		if !okStr {
			return upd, false, false, errors.New("name must be a string")
		}
		upd.Name = s
	}
	if v, present := raw["category_id"]; present && v != nil {
		f, okNum := v.(float64)
		if !okNum || f < 0 {
			return upd, false, false, errors.New("category_id must be a positive integer")
		}
		id := uint(f)
		upd.CategoryID = &id
	}
	if v, present := raw["quantity"]; present {
		setQuantity = true
		if v != nil {
			f, okNum := v.(float64)
			if !okNum {
				return upd, false, false, errors.New("quantity must be an integer")
			}
			q := int(f)
			upd.Quantity = &q
		}
	}
	if v, present := raw["expiry_date"]; present {
		setExpiry = true
		if v != nil {
			s, okStr := v.(string)
			if !okStr {
				return upd, setQuantity, false, errors.New("expiry_date must be a string")
			}
			if s != "" {
				t, perr := time.ParseInLocation("2006-01-02", s, time.UTC)
				if perr != nil {
					return upd, setQuantity, false, errors.New("expiry_date must be YYYY-MM-DD")
				}
				upd.ExpiryDate = &t
			}
		}
	}
	return upd, setQuantity, setExpiry, nil
}

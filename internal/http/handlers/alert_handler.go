// Alert HTTP handlers.
//
// Endpoints:
//   - GET   /alerts              (list, filtered + paginated)
//   - PATCH /alerts/{id}         (operator override of is_active/message)
//   - POST  /alerts/ack          (acknowledge a batch of alerts)
//   - POST  /products/{id}/ack   (acknowledge all alerts of a product)
//
// The API layer is a read-only consumer of what the reconciler wrote; the
// mutations here never create alert rows.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
	"github.com/freshkeeper/go-inventory-backend/internal/repo"
	"github.com/freshkeeper/go-inventory-backend/internal/services"
)

// ListAlertsResponse wraps a page of alerts and pagination information.
type ListAlertsResponse struct {
	Alerts     []domain.Alert `json:"alerts"`
	Pagination Pagination     `json:"pagination"`
}

// PatchAlertRequest is the JSON payload for PATCH /alerts/{id}.
// Absent fields are left unchanged.
type PatchAlertRequest struct {
	IsActive *bool   `json:"is_active"`
	Message  *string `json:"message"`
}

// AckAlertsRequest is the JSON payload for POST /alerts/ack.
type AckAlertsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// AckResponse reports how many rows an acknowledgment touched.
type AckResponse struct {
	Acked int64 `json:"acked"`
}

// ListAlerts returns alerts filtered by kind, is_active, and due-date range.
// An unknown kind value is a 400, never silently ignored.
func (h *Handlers) ListAlerts(c *gin.Context) {
	var f repo.AlertFilter

	kind, err := services.ParseKindFilter(c.Query("kind"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid kind")
		return
	}
	f.Kind = kind

	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		switch strings.ToLower(raw) {
		case "true", "1":
			v := true
			f.IsActive = &v
		case "false", "0":
			v := false
			f.IsActive = &v
		default:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "is_active must be a boolean")
			return
		}
	}

	for q, dst := range map[string]**time.Time{"due_from": &f.DueFrom, "due_to": &f.DueTo} {
		if raw := c.Query(q); raw != "" {
			t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
			if err != nil {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, q+" must be YYYY-MM-DD")
				return
			}
			*dst = &t
		}
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.alertSvc.ListPage(c.Request.Context(), f, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListAlertsResponse{
		Alerts: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// PatchAlert updates is_active and/or message on a single alert.
func (h *Handlers) PatchAlert(c *gin.Context) {
	id, okID := paramID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid alert id")
		return
	}
	var req PatchAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	a, err := h.alertSvc.Patch(c.Request.Context(), id, req.IsActive, req.Message)
	switch {
	case err == services.ErrAlertNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "alert not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, a)
	}
}

// AckAlerts acknowledges a batch of alerts by ID.
func (h *Handlers) AckAlerts(c *gin.Context) {
	var req AckAlertsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids must be a non-empty array")
		return
	}
	n, err := h.alertSvc.Ack(c.Request.Context(), req.IDs)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, AckResponse{Acked: n})
}

// AckProductAlerts acknowledges every alert of one product.
func (h *Handlers) AckProductAlerts(c *gin.Context) {
	id, okID := paramID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid product id")
		return
	}
	n, err := h.alertSvc.AckProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, AckResponse{Acked: n})
}

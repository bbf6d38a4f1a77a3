// Admin HTTP handlers: manual triggers for the reconciliation engine.
//
// Endpoints:
//   - POST /admin/scan       (run one reconciliation pass now)
//   - POST /admin/retention  (run retention now, optional ?retention_days=N)
//
// A manual scan shares the reconciler's single-flight gate with the
// scheduler: triggering while a pass is running yields 409, not a second
// concurrent pass.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freshkeeper/go-inventory-backend/internal/services"
)

// RunScan triggers one reconciliation pass and returns its counters. The
// counters are returned even when the run failed as a whole (status "error"),
// matching what the scheduler records.
func (h *Handlers) RunScan(c *gin.Context) {
	res, err := h.scanSvc.RunScan(c.Request.Context())
	if errors.Is(err, services.ErrScanInProgress) {
		fail(c, http.StatusConflict, ErrCodeScanRunning, "a scan is already running")
		return
	}
	ok(c, http.StatusOK, res)
}

// RunRetention triggers one retention pass. The soft-delete window can be
// overridden per run with ?retention_days=N.
func (h *Handlers) RunRetention(c *gin.Context) {
	var override *int
	if raw := c.Query("retention_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "retention_days must be a positive integer")
			return
		}
		override = &n
	}

	res, err := h.retentionSvc.RunRetention(c.Request.Context(), override)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

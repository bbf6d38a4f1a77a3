package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/freshkeeper/go-inventory-backend/internal/services"
)

// fakeScanSvc implements ScanService.
type fakeScanSvc struct {
	res services.ScanResult
	err error
}

func (f *fakeScanSvc) RunScan(context.Context) (services.ScanResult, error) {
	return f.res, f.err
}

// fakeRetentionSvc implements RetentionService and records the override.
type fakeRetentionSvc struct {
	res         services.RetentionResult
	err         error
	gotOverride *int
}

func (f *fakeRetentionSvc) RunRetention(_ context.Context, days *int) (services.RetentionResult, error) {
	f.gotOverride = days
	return f.res, f.err
}

func newAdminRouter(scan ScanService, retention RetentionService) *gin.Engine {
	h := New(nil, nil, nil, scan, retention)
	r := gin.New()
	r.POST("/admin/scan", h.RunScan)
	r.POST("/admin/retention", h.RunRetention)
	return r
}

func TestRunScan_ReturnsCounters(t *testing.T) {
	scan := &fakeScanSvc{res: services.ScanResult{Status: services.ScanOK, Created: 2, Updated: 1, Checked: 5}}
	r := newAdminRouter(scan, &fakeRetentionSvc{})

	w := doJSON(t, r, http.MethodPost, "/admin/scan", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res services.ScanResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Status != services.ScanOK || res.Created != 2 || res.Checked != 5 {
		t.Fatalf("unexpected counters: %+v", res)
	}
}

func TestRunScan_ConflictWhileRunning(t *testing.T) {
	scan := &fakeScanSvc{err: services.ErrScanInProgress}
	r := newAdminRouter(scan, &fakeRetentionSvc{})

	w := doJSON(t, r, http.MethodPost, "/admin/scan", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeScanRunning {
		t.Fatalf("unexpected error code: %q", resp.Code)
	}
}

func TestRunScan_FailedRunStillReportsCounters(t *testing.T) {
	// A commit failure is reported through the counters, not an error envelope.
	scan := &fakeScanSvc{
		res: services.ScanResult{Status: services.ScanError, Errors: 1},
		err: errors.New("commit failed"),
	}
	r := newAdminRouter(scan, &fakeRetentionSvc{})

	w := doJSON(t, r, http.MethodPost, "/admin/scan", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res services.ScanResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Status != services.ScanError || res.Errors != 1 {
		t.Fatalf("unexpected counters: %+v", res)
	}
}

func TestRunRetention_DefaultAndOverride(t *testing.T) {
	ret := &fakeRetentionSvc{res: services.RetentionResult{SoftDeleted: 3, Purged: 1}}
	r := newAdminRouter(&fakeScanSvc{}, ret)

	w := doJSON(t, r, http.MethodPost, "/admin/retention", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ret.gotOverride != nil {
		t.Fatalf("no override expected, got %v", *ret.gotOverride)
	}
	var res services.RetentionResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil || res.SoftDeleted != 3 || res.Purged != 1 {
		t.Fatalf("unexpected body: %s (err=%v)", w.Body.String(), err)
	}

	w = doJSON(t, r, http.MethodPost, "/admin/retention?retention_days=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("override status = %d", w.Code)
	}
	if ret.gotOverride == nil || *ret.gotOverride != 10 {
		t.Fatalf("override not forwarded: %v", ret.gotOverride)
	}
}

func TestRunRetention_BadOverride(t *testing.T) {
	r := newAdminRouter(&fakeScanSvc{}, &fakeRetentionSvc{})
	for _, q := range []string{"abc", "0", "-5"} {
		w := doJSON(t, r, http.MethodPost, "/admin/retention?retention_days="+q, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("retention_days=%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestRunRetention_ServiceError(t *testing.T) {
	r := newAdminRouter(&fakeScanSvc{}, &fakeRetentionSvc{err: errors.New("db down")})
	w := doJSON(t, r, http.MethodPost, "/admin/retention", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

// Package services – AlertService
//
// The read/acknowledge surface over persisted alerts. Everything here is a
// consumer of what the reconciler wrote; the only mutations are the manual
// PATCH (operator override) and acknowledgment flags.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
	"github.com/freshkeeper/go-inventory-backend/internal/repo"
)

// AlertReadRepo is the repository contract required by AlertService.
type AlertReadRepo interface {
	CountAlerts(ctx context.Context, db *gorm.DB, f repo.AlertFilter) (int64, error)
	ListAlertsPage(ctx context.Context, db *gorm.DB, f repo.AlertFilter, offset, limit int) ([]domain.Alert, error)
	GetAlert(ctx context.Context, db *gorm.DB, id uint) (*domain.Alert, error)
	PatchAlert(ctx context.Context, db *gorm.DB, id uint, isActive *bool, message *string) (*domain.Alert, error)
	AckAlerts(ctx context.Context, db *gorm.DB, ids []uint) (int64, error)
	AckProductAlerts(ctx context.Context, db *gorm.DB, productID uint) (int64, error)
}

// AlertService exposes alert listing, patching, and acknowledgment.
type AlertService struct {
	DB   *gorm.DB
	Repo AlertReadRepo
}

// NewAlertService constructs an AlertService.
func NewAlertService(db *gorm.DB, r AlertReadRepo) *AlertService {
	return &AlertService{DB: db, Repo: r}
}

// ListPage returns one page of alerts matching the filter plus the total
// count. An invalid kind string fails with ErrInvalidKind before any query.
func (s *AlertService) ListPage(ctx context.Context, f repo.AlertFilter, page, pageSize int) ([]domain.Alert, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountAlerts(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Alert{}, 0, nil
	}

	items, err := s.Repo.ListAlertsPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// ParseKindFilter turns a raw query value into an optional kind filter.
// Empty means "no filter"; anything else must be a member of the closed set.
func ParseKindFilter(raw string) (*domain.AlertKind, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	k, err := domain.ParseAlertKind(raw)
	if err != nil {
		return nil, ErrInvalidKind
	}
	return &k, nil
}

// Patch updates is_active and/or message on one alert.
func (s *AlertService) Patch(ctx context.Context, id uint, isActive *bool, message *string) (*domain.Alert, error) {
	a, err := s.Repo.PatchAlert(ctx, s.DB, id, isActive, message)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	return a, err
}

// Ack acknowledges the given alert IDs and returns how many rows changed.
func (s *AlertService) Ack(ctx context.Context, ids []uint) (int64, error) {
	return s.Repo.AckAlerts(ctx, s.DB, ids)
}

// AckProduct acknowledges every alert belonging to one product.
func (s *AlertService) AckProduct(ctx context.Context, productID uint) (int64, error) {
	return s.Repo.AckProductAlerts(ctx, s.DB, productID)
}

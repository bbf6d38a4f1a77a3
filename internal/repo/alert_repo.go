// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Alert model:
// the conflict-safe upsert the reconciler converges through, the date-shift
// deactivation, acknowledgment, the retention queries, and filtered listing
// for the read-only API surface.
//
// Error semantics follow the rest of the package: missing rows surface as
// gorm.ErrRecordNotFound (ErrNotFound), uniqueness races as ErrDuplicate,
// anything else as the raw gorm error.
//
// Functions:
//
//   - UpsertAlert(ctx, db, productID, kind, dueDate, message) -> (created, error)
//     Atomic insert keyed by (product_id, kind, due_date); refreshes the row
//     when the key already exists.
//
//   - DeactivateSiblings(ctx, db, productID, kind, keepDue) -> (int64, error)
//     Deactivates active rows of the same (product_id, kind) whose due date
//     differs from keepDue (the "condition shifted date" transition).
//
//   - SoftDeleteOldAlerts / HardPurgeInactive implement the two retention
//     phases; HardPurgeInactive never touches active rows.
//
//   - ListAlertsPage / CountAlerts serve the filtered, paginated API listing;
//     GetAlert / PatchAlert / AckAlerts / AckProductAlerts the rest of it.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
)

// ErrUpsertLost is returned when neither the insert nor the follow-up refresh
// touched a row. That only happens if another writer deleted the row between
// the two statements.
var ErrUpsertLost = errors.New("alert upsert matched no row")

// UpsertAlert converges one (product_id, kind, due_date) determination into
// the store. The insert is attempted first with ON CONFLICT DO NOTHING so two
// overlapping writers cannot race an exists-check; when the key already
// exists the row is refreshed instead (message, is_active=true, updated_at).
//
// The returned flag reports whether a new row was created (true) or an
// existing one refreshed (false).
func UpsertAlert(ctx context.Context, db *gorm.DB, productID uint, kind domain.AlertKind, dueDate time.Time, message string) (bool, error) {
	a := &domain.Alert{
		ProductID: productID,
		Kind:      kind,
		DueDate:   &dueDate,
		Message:   message,
		IsActive:  true,
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "product_id"}, {Name: "kind"}, {Name: "due_date"},
		},
		DoNothing: true,
	}).Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	// Key exists: refresh the surviving row.
	upd := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("product_id = ? AND kind = ? AND due_date = ?", productID, kind, dueDate).
		Updates(map[string]any{
			"message":   message,
			"is_active": true,
		})
	if upd.Error != nil {
		return false, upd.Error
	}
	if upd.RowsAffected == 0 {
		return false, ErrUpsertLost
	}
	return false, nil
}

// DeactivateSiblings sets is_active=false on every active alert of the same
// (product_id, kind) whose due date differs from keepDue. It returns the
// number of rows deactivated. Deactivated rows are kept as history.
func DeactivateSiblings(ctx context.Context, db *gorm.DB, productID uint, kind domain.AlertKind, keepDue time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("product_id = ? AND kind = ? AND due_date <> ? AND is_active = ?", productID, kind, keepDue, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// SoftDeleteOldAlerts deactivates every active alert whose due date precedes
// cutoff. This is retention phase one; rows stay queryable as history.
func SoftDeleteOldAlerts(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("due_date < ? AND is_active = ?", cutoff, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// HardPurgeInactive permanently deletes alerts that are already inactive and
// were created before cutoff. Active rows are never touched.
func HardPurgeInactive(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("is_active = ? AND created_at < ?", false, cutoff).
		Delete(&domain.Alert{})
	return res.RowsAffected, res.Error
}

// AlertFilter narrows alert listings. Nil fields are ignored.
type AlertFilter struct {
	Kind     *domain.AlertKind
	IsActive *bool
	DueFrom  *time.Time
	DueTo    *time.Time
}

func (f AlertFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.DueFrom != nil {
		q = q.Where("due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("due_date <= ?", *f.DueTo)
	}
	return q
}

// CountAlerts returns the number of alerts matching the filter.
func CountAlerts(ctx context.Context, db *gorm.DB, f AlertFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Alert{})).Count(&total).Error
	return total, err
}

// ListAlertsPage returns a page of alerts matching the filter, ordered by due
// date then ID so the output is stable across runs.
func ListAlertsPage(ctx context.Context, db *gorm.DB, f AlertFilter, offset, limit int) ([]domain.Alert, error) {
	var out []domain.Alert
	err := f.apply(db.WithContext(ctx)).
		Order("due_date asc").
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetAlert fetches a single alert by ID, or ErrNotFound.
func GetAlert(ctx context.Context, db *gorm.DB, id uint) (*domain.Alert, error) {
	var a domain.Alert
	if err := db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// PatchAlert updates is_active and/or message on one alert. Nil fields are
// left unchanged. Returns ErrNotFound when the alert does not exist.
func PatchAlert(ctx context.Context, db *gorm.DB, id uint, isActive *bool, message *string) (*domain.Alert, error) {
	updates := map[string]any{}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if message != nil {
		updates["message"] = *message
	}
	if len(updates) > 0 {
		res := db.WithContext(ctx).Model(&domain.Alert{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return GetAlert(ctx, db, id)
}

// AckAlerts marks the given alerts as acknowledged and returns how many rows
// changed. Acknowledgment is independent of is_active.
func AckAlerts(ctx context.Context, db *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("id IN ?", ids).
		Update("is_ack", true)
	return res.RowsAffected, res.Error
}

// AckProductAlerts acknowledges every alert of one product.
func AckProductAlerts(ctx context.Context, db *gorm.DB, productID uint) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("product_id = ?", productID).
		Update("is_ack", true)
	return res.RowsAffected, res.Error
}

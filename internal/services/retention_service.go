// Package services – RetentionService
//
// Retention runs in two independent phases: alerts that are already inactive
// and old enough are permanently removed (hard purge), then aged active
// alerts are deactivated (soft delete). The purge runs first so a row
// deactivated by this pass is never deleted by it; every row gets at least
// one full pass of recovery window.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RetentionResult aggregates the row counts of one retention run.
type RetentionResult struct {
	SoftDeleted int64 `json:"soft_deleted"`
	Purged      int64 `json:"purged"`
}

// RetentionRepo is the age-based write surface retention operates through.
type RetentionRepo interface {
	SoftDeleteOldAlerts(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
	HardPurgeInactive(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}

// RetentionService ages out alert rows. Besides the reconciler's date-shift
// logic it is the only code that deactivates alerts, and the only code that
// deletes them.
type RetentionService struct {
	DB   *gorm.DB
	Repo RetentionRepo
	// RetentionDays is the default soft-delete window; callers may override
	// it per run.
	RetentionDays int
	// PurgeAfterDays is the grace period an inactive row survives.
	PurgeAfterDays int
	// Now supplies the reference time; defaults to time.Now. Tests pin it.
	Now func() time.Time
}

// NewRetentionService constructs a RetentionService.
func NewRetentionService(db *gorm.DB, repo RetentionRepo, retentionDays, purgeAfterDays int) *RetentionService {
	return &RetentionService{
		DB:             db,
		Repo:           repo,
		RetentionDays:  retentionDays,
		PurgeAfterDays: purgeAfterDays,
	}
}

// RunRetention executes both phases. retentionDays overrides the configured
// soft-delete window when non-nil; the purge grace period is fixed by config.
func (s *RetentionService) RunRetention(ctx context.Context, retentionDays *int) (RetentionResult, error) {
	days := s.RetentionDays
	if retentionDays != nil {
		days = *retentionDays
	}
	now := s.now()

	var res RetentionResult

	// Purge first: rows the soft-delete phase deactivates below are then
	// invisible to the purge until the next pass.
	purged, err := s.Repo.HardPurgeInactive(ctx, s.DB, now.AddDate(0, 0, -s.PurgeAfterDays))
	if err != nil {
		return res, err
	}
	res.Purged = purged

	soft, err := s.Repo.SoftDeleteOldAlerts(ctx, s.DB, now.AddDate(0, 0, -days))
	if err != nil {
		return res, err
	}
	res.SoftDeleted = soft

	retentionRows.WithLabelValues("soft_deleted").Add(float64(res.SoftDeleted))
	retentionRows.WithLabelValues("purged").Add(float64(res.Purged))
	log.Info().
		Int("retention_days", days).
		Int("purge_after_days", s.PurgeAfterDays).
		Int64("soft_deleted", res.SoftDeleted).
		Int64("purged", res.Purged).
		Msg("alert retention finished")
	return res, nil
}

func (s *RetentionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Package services – ScanService
//
// This file implements the reconciliation run: read every item snapshot,
// classify each item, and converge the alert table to the computed set via
// the conflict-safe upsert plus date-shift deactivation. One run is one DB
// transaction; per-item failures are counted and the run continues, while a
// failed commit rolls the whole run back.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
)

// ScanStatus is the aggregate outcome of one reconciliation run.
type ScanStatus string

const (
	// ScanOK means every item reconciled cleanly.
	ScanOK ScanStatus = "ok"
	// ScanPartial means the run committed but some items failed and were skipped.
	ScanPartial ScanStatus = "partial"
	// ScanError means the run failed as a whole and left no state behind.
	ScanError ScanStatus = "error"
)

// ScanResult aggregates the counters of one reconciliation run. It is the
// only error detail the engine surfaces to API consumers.
type ScanResult struct {
	Status  ScanStatus `json:"status"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  int        `json:"errors"`
	Checked int        `json:"checked"`
}

// SnapshotRepo is the read-only feed of trackable items the scan consumes.
type SnapshotRepo interface {
	ListItemSnapshots(ctx context.Context, db *gorm.DB) ([]domain.ItemSnapshot, error)
}

// AlertWriteRepo is the write surface the reconciler converges through.
// All scan writes funnel through UpsertAlert, whose atomicity is what makes
// item ordering and repetition immaterial.
type AlertWriteRepo interface {
	UpsertAlert(ctx context.Context, db *gorm.DB, productID uint, kind domain.AlertKind, dueDate time.Time, message string) (bool, error)
	DeactivateSiblings(ctx context.Context, db *gorm.DB, productID uint, kind domain.AlertKind, keepDue time.Time) (int64, error)
}

// ScanService runs alert reconciliation passes. It owns all write traffic to
// the alert table during a scan and guarantees single-flight execution across
// every trigger source.
type ScanService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Snapshots feeds the minimal item tuples.
	Snapshots SnapshotRepo
	// Alerts is the alert write repository.
	Alerts AlertWriteRepo

	// SoonWindowDays is the inclusive upper bound for EXPIRING_SOON.
	SoonWindowDays int
	// Now supplies the reference time; defaults to time.Now. Tests pin it.
	Now func() time.Time

	mu sync.Mutex
}

// NewScanService constructs a ScanService with the default soon-window.
func NewScanService(db *gorm.DB, snapshots SnapshotRepo, alerts AlertWriteRepo, soonWindowDays int) *ScanService {
	return &ScanService{
		DB:             db,
		Snapshots:      snapshots,
		Alerts:         alerts,
		SoonWindowDays: soonWindowDays,
	}
}

// RunScan executes one reconciliation pass.
//
// If another pass is still running (any trigger source), it returns
// ErrScanInProgress without touching the store: overlapping invocations are
// rejected, not queued.
//
// For every snapshot item the current alert set is computed and upserted;
// for each written (kind, due_date) any other active row of the same kind is
// deactivated. Item-level failures increment Errors and the pass moves on.
// The pass commits as a single transaction; a commit failure rolls everything
// back and is reported as Status "error" alongside the underlying error.
func (s *ScanService) RunScan(ctx context.Context) (ScanResult, error) {
	if !s.mu.TryLock() {
		return ScanResult{}, ErrScanInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	today := DateOnly(s.now())
	var res ScanResult

	log.Info().
		Time("today", today).
		Int("soon_window_days", s.SoonWindowDays).
		Msg("alert scan started")

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		items, err := s.Snapshots.ListItemSnapshots(ctx, tx)
		if err != nil {
			return err
		}

		for _, item := range items {
			res.Checked++
			for _, d := range Classify(item, today, s.SoonWindowDays) {
				created, err := s.Alerts.UpsertAlert(ctx, tx, item.ID, d.Kind, d.DueDate, d.Message)
				if err != nil {
					res.Errors++
					log.Error().Err(err).
						Uint("product_id", item.ID).
						Str("kind", d.Kind.String()).
						Time("due_date", d.DueDate).
						Msg("alert upsert failed")
					continue
				}
				if created {
					res.Created++
				} else {
					res.Updated++
				}

				// A shifted due date retires the previous row of this kind.
				if _, err := s.Alerts.DeactivateSiblings(ctx, tx, item.ID, d.Kind, d.DueDate); err != nil {
					res.Errors++
					log.Error().Err(err).
						Uint("product_id", item.ID).
						Str("kind", d.Kind.String()).
						Msg("sibling deactivation failed")
				}
			}
		}
		return nil
	})
	if err != nil {
		res.Status = ScanError
		res.Errors++
		scanRuns.WithLabelValues(string(ScanError)).Inc()
		log.Error().Err(err).Msg("alert scan aborted, transaction rolled back")
		return res, err
	}

	res.Status = ScanOK
	if res.Errors > 0 {
		res.Status = ScanPartial
	}
	scanRuns.WithLabelValues(string(res.Status)).Inc()
	scanDuration.Observe(time.Since(start).Seconds())
	alertWrites.WithLabelValues("created").Add(float64(res.Created))
	alertWrites.WithLabelValues("updated").Add(float64(res.Updated))

	log.Info().
		Str("status", string(res.Status)).
		Int("checked", res.Checked).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("errors", res.Errors).
		Dur("took", time.Since(start)).
		Msg("alert scan finished")
	return res, nil
}

func (s *ScanService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

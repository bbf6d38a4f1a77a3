// Package services defines the business logic of the inventory backend: the
// alert reconciliation engine (classifier + scan + retention) and the thin
// orchestration over products, categories, and the alert read surface.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrScanInProgress is returned when a reconciliation run is requested
	// while a previous run has not finished. The single-flight guarantee
	// covers every trigger source, scheduled or manual.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrCategoryNotFound indicates that the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrAlertNotFound indicates that the requested alert does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrInvalidCategory is returned when a product references a category
	// that does not exist.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrDuplicateCategory is returned when a category name already exists.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrEmptyName is returned when a product or category name is blank.
	ErrEmptyName = errors.New("name is empty")

	// ErrInvalidKind is returned when an alert kind value is outside the
	// closed set. Kind strings are parsed strictly, never coerced.
	ErrInvalidKind = errors.New("invalid alert kind")
)

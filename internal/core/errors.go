package core

import "errors"

// Common errors returned by the core package.
var (
	// ErrSettingsCorrupt is returned when persisted view settings cannot be
	// parsed or do not match the catalog.
	ErrSettingsCorrupt = errors.New("settings corrupt")

	// ErrInvariantViolation marks a rejected mutation (hiding below the
	// minimum, non-permutation order). Mutators never return it; it is used
	// for logging and error mapping only.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrUnknownTable is returned when a table key is not registered.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned when a column key is not in the catalog.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrExportFailed is returned when an export operation fails.
	ErrExportFailed = errors.New("export failed")

	// ErrNoColumns is returned when an export request names no columns.
	ErrNoColumns = errors.New("no columns to export")

	// ErrExportNotFound is returned when an async export ID is unknown.
	ErrExportNotFound = errors.New("export not found")

	// ErrExportTooLarge is returned when a snapshot exceeds the row limit.
	ErrExportTooLarge = errors.New("export too large")

	// ErrSessionRequired is returned when an operation has no session ID.
	ErrSessionRequired = errors.New("session required")
)

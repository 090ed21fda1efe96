package services

import "errors"

// Dashboard service errors
var (
	// Dataset errors
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// Lookup errors
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrSearchDisabled = errors.New("company search disabled")

	// Export errors
	ErrUnknownView = errors.New("unknown view")
	ErrNoTable     = errors.New("view has no exportable table")
)

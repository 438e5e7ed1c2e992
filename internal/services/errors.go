package services

import "errors"

var (
	// ErrDatasetNotLoaded is returned before the first successful load
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrRunLedgerUnavailable is returned when no run ledger is configured
	ErrRunLedgerUnavailable = errors.New("run ledger unavailable")
)

package dataprocessing

import (
	"taxicli/internal/config"
	"taxicli/pkg/contracts/domain"
)

// Processor defines the interface for record transformations
type Processor interface {
	// Process takes cleaned trip records and returns transformed records
	Process(records []domain.TripRecord) ([]domain.TripRecord, error)
}

// ProcessingOptions configures a curation run
type ProcessingOptions struct {
	// TimestampPolicy decides whether unparseable timestamps drop the row
	// or fail the run
	TimestampPolicy string

	// Summary controls the statistics computed after curation
	Summary SummaryOptions
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		TimestampPolicy: config.TimestampPolicyDrop,
		Summary:         DefaultSummaryOptions(),
	}
}

// OptionsFromConfig builds processing options from loaded configuration
func OptionsFromConfig(cfg *config.Config) ProcessingOptions {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if cfg.Cleaning.TimestampPolicy != "" {
		opts.TimestampPolicy = cfg.Cleaning.TimestampPolicy
	}
	opts.Summary = SummaryOptions{
		SpeedBins:     cfg.Plots.SpeedBins,
		TipBins:       cfg.Plots.TipBins,
		ScatterSample: cfg.Plots.ScatterSample,
	}
	return opts
}

// Process implements Processor.
func (d *FeatureDeriver) Process(records []domain.TripRecord) ([]domain.TripRecord, error) {
	return d.Derive(records), nil
}

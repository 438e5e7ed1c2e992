// Package exporter writes curated trip data and its plots to disk.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and an optional UTF-8 BOM for Excel compatibility. The enriched dataset is
// persisted through a StreamWriter.
//
// WorkbookExporter: Builds an .xlsx workbook with one native chart per sheet
// (speed and tip histograms, trip types, peak share, speed vs distance, tip by
// trip type, speed by peak hour) plus a colour-scaled correlation matrix.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	stream, err := writer.CreateStreamWriter("data/nyc_taxi_enriched.csv", header, false)
//
//	summary := dataprocessing.NewSummarizer(logger, opts).Summarize(records)
//	err = exporter.NewWorkbookExporter(logger, author).Export("plots/nyc_taxi_features.xlsx", summary)
package exporter

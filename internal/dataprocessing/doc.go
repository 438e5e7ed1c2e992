// Package dataprocessing turns raw NYC taxi trip files into enriched,
// analysis-ready records.
//
// # Components
//
//  1. Parser: reads the raw CSV and checks the required header columns
//  2. Cleaner: drops incomplete or non-positive rows and parses timestamps
//  3. FeatureDeriver: adds speed, tip percentage, peak flag and trip type
//  4. Summarizer: computes the statistics behind plots, reports and the API
//
// # Usage
//
//	table, err := dataprocessing.ReadRawFile("data/nyc_taxi_raw.csv")
//	if err != nil {
//	    return err
//	}
//	cleaned, stats, err := dataprocessing.NewCleaner(config.TimestampPolicyDrop, logger).Clean(table)
//	if err != nil {
//	    return err
//	}
//	enriched := dataprocessing.NewFeatureDeriver(logger).Derive(cleaned)
//	rows := dataprocessing.EnrichedRows(table.Header, enriched)
//
// # Data Flow
//
//	raw CSV → RawTable → Cleaner → TripRecords → FeatureDeriver → enriched CSV → Summarizer
//
// # Error Handling
//
// Errors are *errors.AppError values: a missing input file is NOT_FOUND,
// a malformed file or absent required column is PARSING, and I/O failures
// are STORAGE. Rows that fail cleaning are counted per drop reason rather
// than reported as errors, unless the timestamp policy is "fail".
package dataprocessing

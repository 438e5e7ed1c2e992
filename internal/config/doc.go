// Package config provides centralized configuration for the taxi pipeline
// commands. It loads settings from built-in defaults, an optional YAML file
// and environment variables, validates them, and resolves file paths.
//
// # Configuration Sources
//
// Sources are applied in order, later ones winning:
//
//	1. Default() values
//	2. YAML file (TAXI_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables use the TAXI_ prefix followed by the section
// and field name:
//
//	TAXI_LOGGING_LEVEL=debug
//	TAXI_PATHS_BASE_DIR=/srv/taxi
//	TAXI_CLEANING_TIMESTAMP_POLICY=fail
//	TAXI_SERVER_PORT=9090
//	TAXI_TELEMETRY_TRACES_EXPORTER=stdout
//
// # Paths
//
// PathsConfig.Resolve joins every relative path to the base directory:
//
//	paths, err := cfg.Paths.Resolve()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(paths.EnrichedFile) // <base>/data/nyc_taxi_enriched.csv
//
// # Domain Constants
//
// constants.go holds the values the feature deriver and the validator
// agree on: the peak hours, the trip type bin edges and the speed and tip
// percentage ceilings.
package config

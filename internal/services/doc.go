// Package services implements the read side of the web viewer. Handlers
// talk to services; services talk to the enriched file and the run ledger.
//
// # Available Services
//
//	- DatasetService: caches the summary and validation of the enriched
//	  file and reloads them when the file changes
//	- RunService: lists recorded curate and validate runs
//	- HealthService: liveness, readiness and version information
//
// # Error Handling
//
// Services return internal/errors AppErrors; handlers map them to RFC 7807
// problem responses.
package services

// Package http implements the read-only HTTP handlers of the taxi web viewer.
// Handlers are a thin layer over internal/services: they parse the request,
// call a service and render the result.
//
// # Routes
//
//	GET /api/health              liveness plus dependency states
//	GET /api/health/ready        ready once the enriched dataset is loaded
//	GET /api/dataset/summary     statistics of the enriched file
//	GET /api/dataset/validation  validator outcome for the enriched file
//	GET /api/runs                recorded curate/validate runs (?limit, ?command)
//	GET /api/runs/{id}           one recorded run
//	GET /report                  HTML report of the enriched file
//	GET /metrics                 Prometheus metrics
//
// # Error Handling
//
// Errors are rendered as RFC 7807 Problem Details by internal/errors:
//
//	{
//	    "type": "/errors/service-unavailable",
//	    "title": "Service Unavailable",
//	    "status": 503,
//	    "detail": "Enriched dataset is not available",
//	    "instance": "/api/dataset/summary"
//	}
//
// # Testing
//
// Handlers are tested with httptest against services backed by temporary
// files, or stubs of the small provider interfaces declared here.
package http

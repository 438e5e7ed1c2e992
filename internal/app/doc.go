// Package app wires the read-only web viewer: dataset, run and health
// services, the HTTP router with its middleware chain, and the server
// lifecycle.
//
// # Initialization Flow
//
//	1. The caller loads configuration, resolves paths and builds the logger
//	2. OpenTelemetry providers are created by the caller (optional)
//	3. NewApplication opens the run ledger and creates the services
//	4. The router and http.Server are configured from cfg.Server
//	5. Run serves HTTP and watches the enriched file under one errgroup
//
// # Graceful Shutdown
//
// Cancelling the context passed to Run stops the watcher, shuts the server
// down within cfg.Server.ShutdownTimeout and closes the run ledger. The
// package never calls os.Exit.
package app

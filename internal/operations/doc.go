// Package operations runs the curation pipeline as a sequence of steps.
//
// Core Components:
//
// Manager: executes the registered steps in order for one request, tracks a
// StepState per step and stops at the first failure, marking the remaining
// steps as skipped.
//
// Step: a single unit of work. The curation steps are load, clean, derive,
// persist and validate; each reads its inputs from and writes its outputs to
// the shared OperationState.
//
// Registry: keeps the steps in registration order.
//
// Config: optional per-step deadlines; none by default.
//
// Example usage:
//
//	registry, err := operations.NewCurationRegistry(operations.StepDependencies{
//		Writer:    exporter.NewCSVWriter(paths, logger),
//		Validator: validation.NewCuratedValidator(logger),
//		Logger:    logger,
//	})
//	manager := operations.NewManager(registry, operations.NewConfig(), tracer, logger)
//
//	resp, err := manager.Execute(ctx, operations.OperationRequest{
//		Input:  paths.RawFile,
//		Output: paths.EnrichedFile,
//	})
package operations

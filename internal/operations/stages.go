package operations

import (
	"context"
	"fmt"
	"log/slog"

	"taxicli/internal/config"
	"taxicli/internal/dataprocessing"
	"taxicli/internal/exporter"
	"taxicli/internal/validation"
)

// StepDependencies are the collaborators of the curation steps
type StepDependencies struct {
	Writer          *exporter.CSVWriter
	Files           *validation.FileValidator
	Validator       *validation.CuratedValidator
	Processor       dataprocessing.Processor
	TimestampPolicy string
	Logger          *slog.Logger
}

func (d *StepDependencies) withDefaults() {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Writer == nil {
		d.Writer = exporter.NewCSVWriter(nil, d.Logger)
	}
	if d.Files == nil {
		d.Files = validation.NewFileValidator(d.Logger)
	}
	if d.Validator == nil {
		d.Validator = validation.NewCuratedValidator(d.Logger)
	}
	if d.Processor == nil {
		d.Processor = dataprocessing.NewFeatureDeriver(d.Logger)
	}
	if d.TimestampPolicy == "" {
		d.TimestampPolicy = config.TimestampPolicyDrop
	}
}

// NewCurationRegistry registers load, clean, derive, persist and validate
// in pipeline order.
func NewCurationRegistry(deps StepDependencies) (*Registry, error) {
	deps.withDefaults()

	registry := NewRegistry()
	steps := []Step{
		NewLoadStage(deps.Files, deps.Logger),
		NewCleanStage(deps.TimestampPolicy, deps.Logger),
		NewDeriveStage(deps.Processor, deps.Logger),
		NewPersistStage(deps.Writer, deps.Files, deps.Logger),
		NewValidateStage(deps.Validator, deps.Logger),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// LoadStage parses the raw trip file named by the request
type LoadStage struct {
	BaseStage
	files  *validation.FileValidator
	logger *slog.Logger
}

// NewLoadStage creates a new load Step
func NewLoadStage(files *validation.FileValidator, logger *slog.Logger) *LoadStage {
	return &LoadStage{
		BaseStage: NewBaseStage(StageIDLoad, StageNameLoad),
		files:     files,
		logger:    stageLogger(logger, StageIDLoad),
	}
}

// Validate requires an input path
func (s *LoadStage) Validate(state *OperationState) error {
	if state.Request.Input == "" {
		return fmt.Errorf("no input file given")
	}
	return nil
}

// Execute reads the raw table into the state
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	if err := s.files.ValidateFile(state.Request.Input); err != nil {
		return err
	}

	table, err := dataprocessing.ReadRawFile(state.Request.Input)
	if err != nil {
		return err
	}
	state.SetTable(table)

	s.logger.DebugContext(ctx, "raw table loaded",
		slog.String("path", state.Request.Input),
		slog.Int("columns", len(table.Header)),
		slog.Int("rows", len(table.Trips)),
		slog.Bool("has_trip_duration", table.HasTripDuration()))

	state.GetStage(s.ID()).Complete(len(table.Trips), fmt.Sprintf("%d rows read", len(table.Trips)))
	return nil
}

// CleanStage drops invalid rows and derives durations and pickup hours
type CleanStage struct {
	BaseStage
	policy string
	logger *slog.Logger
}

// NewCleanStage creates a new clean Step. policy is used when the request
// does not name one.
func NewCleanStage(policy string, logger *slog.Logger) *CleanStage {
	return &CleanStage{
		BaseStage: NewBaseStage(StageIDClean, StageNameClean),
		policy:    policy,
		logger:    stageLogger(logger, StageIDClean),
	}
}

// Validate requires a loaded table
func (s *CleanStage) Validate(state *OperationState) error {
	if state.Table() == nil {
		return fmt.Errorf("raw table not loaded")
	}
	return nil
}

// Execute cleans the loaded table
func (s *CleanStage) Execute(ctx context.Context, state *OperationState) error {
	policy := state.Request.TimestampPolicy
	if policy == "" {
		policy = s.policy
	}

	records, stats, err := dataprocessing.NewCleaner(policy, s.logger).Clean(state.Table())
	state.SetStats(stats)
	if err != nil {
		return err
	}
	state.SetRecords(records)

	state.GetStage(s.ID()).Complete(stats.RowsKept, fmt.Sprintf("%d rows kept, %d dropped", stats.RowsKept, stats.RowsDropped()))
	return nil
}

// DeriveStage adds the feature columns
type DeriveStage struct {
	BaseStage
	processor dataprocessing.Processor
	logger    *slog.Logger
}

// NewDeriveStage creates a new derive Step
func NewDeriveStage(processor dataprocessing.Processor, logger *slog.Logger) *DeriveStage {
	return &DeriveStage{
		BaseStage: NewBaseStage(StageIDDerive, StageNameDerive),
		processor: processor,
		logger:    stageLogger(logger, StageIDDerive),
	}
}

// Execute derives features for the cleaned records
func (s *DeriveStage) Execute(ctx context.Context, state *OperationState) error {
	records, err := s.processor.Process(state.Records())
	if err != nil {
		return err
	}
	state.SetRecords(records)
	return nil
}

// PersistStage writes the enriched table
type PersistStage struct {
	BaseStage
	writer *exporter.CSVWriter
	files  *validation.FileValidator
	logger *slog.Logger
}

// NewPersistStage creates a new persist Step
func NewPersistStage(writer *exporter.CSVWriter, files *validation.FileValidator, logger *slog.Logger) *PersistStage {
	return &PersistStage{
		BaseStage: NewBaseStage(StageIDPersist, StageNamePersist),
		writer:    writer,
		files:     files,
		logger:    stageLogger(logger, StageIDPersist),
	}
}

// Validate requires an output path and a loaded table
func (s *PersistStage) Validate(state *OperationState) error {
	if state.Request.Output == "" {
		return fmt.Errorf("no output file given")
	}
	if state.Table() == nil {
		return fmt.Errorf("raw table not loaded")
	}
	return nil
}

// Execute streams the enriched rows to the output file. A cancelled or
// failed write leaves any previous output in place.
func (s *PersistStage) Execute(ctx context.Context, state *OperationState) error {
	if err := s.files.ValidateOutputFile(state.Request.Output); err != nil {
		return err
	}

	header := state.Table().Header
	stream, err := s.writer.CreateStreamWriter(state.Request.Output, dataprocessing.EnrichedHeader(header), false)
	if err != nil {
		return err
	}

	for _, row := range dataprocessing.EnrichedRows(header, state.Records()) {
		if err := ctx.Err(); err != nil {
			stream.Abort()
			return err
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Abort()
			return err
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}

	state.SetOutput(stream.Path())
	s.logger.InfoContext(ctx, "enriched data written",
		slog.String("path", stream.Path()),
		slog.Int("rows", stream.Rows()))

	state.GetStage(s.ID()).Complete(stream.Rows(), stream.Path())
	return nil
}

// ValidateStage re-reads the persisted file and checks the derived columns
type ValidateStage struct {
	BaseStage
	validator *validation.CuratedValidator
	logger    *slog.Logger
}

// NewValidateStage creates a new validate Step
func NewValidateStage(validator *validation.CuratedValidator, logger *slog.Logger) *ValidateStage {
	return &ValidateStage{
		BaseStage: NewBaseStage(StageIDValidate, StageNameValidate),
		validator: validator,
		logger:    stageLogger(logger, StageIDValidate),
	}
}

// Validate requires a persisted file
func (s *ValidateStage) Validate(state *OperationState) error {
	if state.Output() == "" {
		return fmt.Errorf("enriched data not persisted")
	}
	return nil
}

// Execute validates the persisted file. Violations are reported, not
// returned as errors.
func (s *ValidateStage) Execute(ctx context.Context, state *OperationState) error {
	checks, err := s.validator.CheckFile(state.Output())
	if err != nil {
		return err
	}
	messages := validation.Messages(checks)
	state.SetValidation(checks, messages)

	for _, m := range messages {
		s.logger.WarnContext(ctx, "validation violation", slog.String("message", m))
	}

	status := "no violations"
	if len(messages) > 0 {
		status = fmt.Sprintf("%d violated columns", len(messages))
	}
	state.GetStage(s.ID()).Complete(len(state.Records()), status)
	return nil
}

func stageLogger(logger *slog.Logger, stageID string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", stageID))
}

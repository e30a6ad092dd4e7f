// Package pipeline sequences the ETL stages and centralizes error logging.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopstack/shopper-etl/internal/extract"
	"github.com/shopstack/shopper-etl/internal/fault"
	"github.com/shopstack/shopper-etl/internal/model"
	"github.com/shopstack/shopper-etl/internal/store"
	"github.com/shopstack/shopper-etl/internal/transform"
)

// State names the orchestrator states. A run moves strictly forward through
// them; any component failure transitions directly to FAILED.
type State string

const (
	StateInit         State = "INIT"
	StateConfigLoaded State = "CONFIG_LOADED"
	StateConnected    State = "CONNECTED"
	StateExtracted    State = "EXTRACTED"
	StateStaged       State = "STAGED"
	StateTransformed  State = "TRANSFORMED"
	StateLoaded       State = "LOADED"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

// Pipeline runs one batch end-to-end against an already-open store. The
// caller owns the store's lifetime; Run never closes it.
type Pipeline struct {
	store   store.Store
	csvPath string
	log     *zap.Logger
}

// New creates a pipeline for one CSV file.
func New(st store.Store, csvPath string) *Pipeline {
	return &Pipeline{
		store:   st,
		csvPath: csvPath,
		log:     zap.L().With(zap.String("component", "pipeline")),
	}
}

// Run executes extract → stage → transform → load. There are no retries: the
// first failure is logged with the state it occurred in and ends the run.
func (p *Pipeline) Run(ctx context.Context) error {
	state := StateConnected
	p.enter(state)

	if err := p.store.EnsureSchema(ctx); err != nil {
		return p.fail(ctx, nil, state, 0, err)
	}

	run, err := p.store.CreateRun(ctx, p.csvPath)
	if err != nil {
		return p.fail(ctx, nil, state, 0, err)
	}

	records, err := extract.ReadFile(p.csvPath)
	if err != nil {
		return p.fail(ctx, run, state, 0, err)
	}
	state = StateExtracted
	p.enter(state, zap.Int("rows", len(records)))

	staged, err := p.store.ReplaceStaging(ctx, records)
	if err != nil {
		return p.fail(ctx, run, state, 0, err)
	}
	state = StateStaged
	p.enter(state, zap.Int64("rows", staged))

	derived, err := transform.Derive(records)
	if err != nil {
		return p.fail(ctx, run, state, staged, err)
	}
	state = StateTransformed
	p.enter(state,
		zap.Int("customers", len(derived.Customers)),
		zap.Int("products", len(derived.Products)),
		zap.Int("purchases", len(derived.Purchases)),
	)

	// Dimensions before facts: purchases reference customers and products.
	if _, err := p.store.UpsertCustomers(ctx, derived.Customers); err != nil {
		return p.fail(ctx, run, state, staged, err)
	}
	if _, err := p.store.UpsertProducts(ctx, derived.Products); err != nil {
		return p.fail(ctx, run, state, staged, err)
	}
	if _, err := p.store.UpsertPurchases(ctx, derived.Purchases); err != nil {
		return p.fail(ctx, run, state, staged, err)
	}
	state = StateLoaded
	p.enter(state)

	if err := p.store.FinishRun(ctx, run.ID, model.RunDone, staged, nil); err != nil {
		return p.fail(ctx, nil, state, staged, err)
	}
	p.enter(StateDone)
	return nil
}

func (p *Pipeline) enter(state State, fields ...zap.Field) {
	p.log.Info("stage", append([]zap.Field{zap.String("state", string(state))}, fields...)...)
}

// fail logs the error with the state it occurred in and its fault kind,
// finalizes the run-log row when one exists, and returns the error.
func (p *Pipeline) fail(ctx context.Context, run *model.Run, state State, staged int64, err error) error {
	fields := []zap.Field{
		zap.String("state", string(state)),
		zap.Error(err),
	}
	if kind, ok := fault.KindOf(err); ok {
		fields = append(fields, zap.String("kind", string(kind)))
	}
	p.log.Error("pipeline failed", fields...)

	if run != nil {
		if ferr := p.store.FinishRun(ctx, run.ID, model.RunFailed, staged, err); ferr != nil {
			p.log.Warn("could not finalize run record", zap.String("run_id", run.ID), zap.Error(ferr))
		}
	}
	return err
}

package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/logging"
	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

// Caller invokes adapters. *client.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, adapterID string, input *string, actx types.Context) (types.AdapterResponse, error)
	BatchCall(ctx context.Context, adapterIDs []string, input *string, actx types.Context) []types.AdapterResponse
}

// Result is the outcome of a before-LLM pipeline
type Result struct {
	Prompt  string        `json:"prompt"`
	Context types.Context `json:"context"`
}

// Orchestrator runs sequential pipelines and parallel fan-outs
type Orchestrator struct {
	caller  Caller
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithMetrics records pipeline steps
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an orchestrator over caller
func New(caller Caller, opts ...Option) *Orchestrator {
	o := &Orchestrator{caller: caller}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.OrNop(o.logger).Component("pipeline")
	return o
}

// RunBeforeLLM runs adapters in order. Each adapter gets the previous
// adapter's output as input (the original input for the first) and the
// context as merged so far. The prompt is the last output seen, or input
// when no adapter produced one. actx is never modified.
func (o *Orchestrator) RunBeforeLLM(ctx context.Context, input string, adapterIDs []string, actx types.Context) (Result, error) {
	prompt, merged, err := o.runSequence(ctx, StageBeforeLLM, adapterIDs, &input, actx)
	if err != nil {
		return Result{}, err
	}
	return Result{Prompt: *prompt, Context: merged}, nil
}

// RunAfterLLM runs adapters in order for their side effects. Outputs are
// not chained but later adapters see data merged by earlier ones.
func (o *Orchestrator) RunAfterLLM(ctx context.Context, actx types.Context, adapterIDs []string) error {
	_, _, err := o.runSequence(ctx, StageAfterLLM, adapterIDs, nil, actx)
	return err
}

// RunParallel calls every adapter concurrently with the same input and an
// empty context.
func (o *Orchestrator) RunParallel(ctx context.Context, input string, adapterIDs []string) []types.AdapterResponse {
	return o.RunParallelContext(ctx, input, adapterIDs, types.Context{})
}

// RunParallelContext is RunParallel with a shared context. The result at
// index i belongs to adapterIDs[i]. Failures do not affect other adapters
// and nothing is merged.
func (o *Orchestrator) RunParallelContext(ctx context.Context, input string, adapterIDs []string, actx types.Context) []types.AdapterResponse {
	o.logger.Debug("running parallel adapters", zap.Strings("adapters", adapterIDs))

	results := o.caller.BatchCall(ctx, adapterIDs, &input, actx)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		o.logger.Info("parallel adapters finished with failures",
			zap.Int("failed", failed),
			zap.Int("total", len(results)))
	}

	return results
}

// runSequence calls adapters one at a time, merging data into the context
// after each. With a non-nil input, each output replaces the input of the
// next step; a nil input is sent as null to every step.
func (o *Orchestrator) runSequence(ctx context.Context, stage Stage, adapterIDs []string, input *string, actx types.Context) (*string, types.Context, error) {
	current := actx

	for i, id := range adapterIDs {
		log := o.logger.With(
			zap.String("stage", string(stage)),
			zap.Int("step", i),
			zap.String("adapter", id))
		log.Debug("pipeline step started")

		resp, err := o.caller.Call(ctx, id, copyInput(input), current)
		if err != nil {
			o.metrics.RecordPipelineStep(string(stage), "refused")
			log.Warn("pipeline aborted", zap.Error(err))
			return input, current, &StepError{Stage: stage, Index: i, AdapterID: id, Message: err.Error(), Err: err}
		}
		if !resp.OK() {
			o.metrics.RecordPipelineStep(string(stage), string(types.StatusError))
			log.Warn("pipeline aborted", zap.String("error", resp.Error))
			return input, current, &StepError{Stage: stage, Index: i, AdapterID: id, Message: resp.Error}
		}
		o.metrics.RecordPipelineStep(string(stage), string(types.StatusOK))

		if data, ok := resp.DataMap(); ok {
			current = current.Merge(data)
		}
		if out, ok := resp.OutputString(); ok && input != nil {
			input = &out
		}

		log.Debug("pipeline step finished")
	}

	return input, current, nil
}

func copyInput(in *string) *string {
	if in == nil {
		return nil
	}
	s := *in
	return &s
}

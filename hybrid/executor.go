package hybrid

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/inkbridge/inkbridge/script"
)

// Executor drives a hybrid script through the local and remote runners.
//
// Contract:
// - Concurrency: safe for concurrent use, but pipelines sharing one remote
//   endpoint serialize on the transport's single-flight protocol.
// - Context: Execute honors cancellation between blocks and passes the
//   context into each runner; a dispatched block runs to completion, error,
//   or transport timeout.
// - Errors: failures are reported through the Report's Failure field, never
//   as a returned error or panic.
type Executor struct {
	cfg    Config
	local  *localRunner
	remote *remoteRunner
}

// New creates an executor with the given configuration.
// Returns ErrConfiguration if any required field is missing.
func New(cfg Config) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &Executor{
		cfg:    cfg,
		local:  newLocalRunner(&cfg),
		remote: newRemoteRunner(&cfg),
	}, nil
}

// Execute splits the source into blocks and runs them in order, threading
// the shared context forward. Blocks with blank bodies are skipped without a
// runner invocation or result entry. The first failing block halts the
// pipeline; output captured from earlier blocks is preserved in the report.
func (e *Executor) Execute(ctx context.Context, source string) Report {
	report := Report{RunID: uuid.NewString()}

	segments := e.cfg.Splitter.Split(source)

	shared := make(map[string]any)
	var outputs []string

	for _, seg := range segments {
		if strings.TrimSpace(seg.Source) == "" {
			continue
		}
		blockIndex := seg.Order + 1

		if err := ctx.Err(); err != nil {
			report.fail(blockIndex, seg.Kind, err.Error())
			report.CombinedOutput = joinOutputs(outputs)
			return report
		}

		e.logf("[block %d] running %s segment", blockIndex, seg.Kind)

		var (
			next   map[string]any
			output string
			err    error
		)
		switch seg.Kind {
		case script.KindRemote:
			next, output, err = e.remote.run(ctx, blockIndex, seg, shared)
		default:
			next, output, err = e.local.run(ctx, blockIndex, seg, shared)
		}

		report.BlocksExecuted++
		result := BlockResult{
			BlockIndex: blockIndex,
			Kind:       seg.Kind,
			Output:     output,
			Succeeded:  err == nil,
		}
		if output != "" {
			outputs = append(outputs, strings.TrimRight(output, "\n"))
		}

		if err != nil {
			result.ErrorDetail = errorDetail(err)
			report.Blocks = append(report.Blocks, result)
			report.fail(blockIndex, seg.Kind, errorDetail(err))
			report.CombinedOutput = joinOutputs(outputs)
			e.logf("[block %d] failed: %s", blockIndex, result.ErrorDetail)
			return report
		}

		report.Blocks = append(report.Blocks, result)
		shared = next
	}

	report.CombinedOutput = joinOutputs(outputs)

	if report.BlocksExecuted == 0 {
		report.Failure = &Failure{Message: "no code blocks found"}
		return report
	}

	report.Succeeded = true
	return report
}

// Available checks the remote endpoint before first use when the configured
// caller supports probing.
func (e *Executor) Available(ctx context.Context) error {
	type availability interface {
		Available(ctx context.Context) error
	}
	if probe, ok := e.cfg.Remote.(availability); ok {
		return probe.Available(ctx)
	}
	return nil
}

func (e *Executor) logf(format string, args ...any) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Logf(format, args...)
	}
}

// fail marks the report failed at the given block. Succeeded stays false.
func (r *Report) fail(blockIndex int, kind script.Kind, message string) {
	r.Failure = &Failure{BlockIndex: blockIndex, Kind: kind, Message: message}
}

// errorDetail renders a block error without the positional prefix, which the
// report already carries structurally.
func errorDetail(err error) string {
	var berr *BlockError
	if errors.As(err, &berr) {
		if berr.Trace != "" {
			return berr.Message + "\n" + berr.Trace
		}
		return berr.Message
	}
	return err.Error()
}

// joinOutputs separates block outputs with blank lines.
func joinOutputs(outputs []string) string {
	return strings.Join(outputs, "\n\n")
}

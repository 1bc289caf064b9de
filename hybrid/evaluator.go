package hybrid

import "context"

// EvalResult is the outcome of evaluating one local segment.
type EvalResult struct {
	// Namespace is the post-execution namespace: the seeded globals plus
	// every binding the segment created or rebound.
	Namespace map[string]any

	// Stdout is the output captured during the evaluation. It is
	// populated on failure too, up to the point the segment raised.
	Stdout string

	// Stderr is the error output captured during the evaluation. It is
	// surfaced only as part of a failure's detail.
	Stderr string
}

// Evaluator is the injected scripting-engine boundary that runs local segment
// source against a mutable name-to-value namespace. The executor is
// interpreter-agnostic; package engine/ecma provides the default
// implementation.
//
// Contract:
// - Context: Eval must honor cancellation/deadlines and abort the running
//   segment where the engine supports interruption.
// - Errors: a non-nil error means the segment's own code failed; the partial
//   EvalResult (captured output) must still be returned.
// - Ownership: globals is read-only for the caller after the call; the
//   returned namespace is caller-owned.
// - Capture: output redirection is scoped to the call and must be released
//   even when the segment raises.
type Evaluator interface {
	Eval(ctx context.Context, source string, globals map[string]any) (EvalResult, error)
}

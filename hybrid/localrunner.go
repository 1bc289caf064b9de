package hybrid

import (
	"context"

	"github.com/inkbridge/inkbridge/script"
	"github.com/inkbridge/inkbridge/vars"
)

// localRunner executes local segments through the injected evaluator and
// reduces the resulting namespace into the next shared context.
type localRunner struct {
	evaluator   Evaluator
	hostHandles map[string]any
	handleNames map[string]bool
	reducer     vars.Reducer
}

func newLocalRunner(cfg *Config) *localRunner {
	handleNames := make(map[string]bool, len(cfg.HostHandles))
	for name := range cfg.HostHandles {
		handleNames[name] = true
	}
	return &localRunner{
		evaluator:   cfg.Evaluator,
		hostHandles: cfg.HostHandles,
		handleNames: handleNames,
		reducer:     vars.Reducer{Mode: cfg.SerializationMode, Logger: cfg.Logger},
	}
}

// run executes one local segment. The execution namespace is the host handles
// merged with the shared context; the shared context is applied second so it
// wins on a name collision. On success the post-execution namespace is
// reduced (excluding handle names) into the new shared context. On failure no
// partial context propagates, but captured output is still returned.
func (r *localRunner) run(ctx context.Context, blockIndex int, seg script.Segment, shared map[string]any) (map[string]any, string, error) {
	globals := make(map[string]any, len(r.hostHandles)+len(shared))
	for name, handle := range r.hostHandles {
		globals[name] = handle
	}
	for name, value := range shared {
		globals[name] = value
	}

	result, err := r.evaluator.Eval(ctx, seg.Source, globals)
	if err != nil {
		return nil, result.Stdout, &BlockError{
			BlockIndex: blockIndex,
			Kind:       script.KindLocal,
			Message:    err.Error(),
			Trace:      result.Stderr,
			Err:        err,
		}
	}

	reduced, _, err := r.reducer.Reduce(result.Namespace, r.handleNames)
	if err != nil {
		// Strict-mode serialization failures halt the pipeline the
		// same way the block's own code failing would.
		return nil, result.Stdout, &BlockError{
			BlockIndex: blockIndex,
			Kind:       script.KindLocal,
			Message:    err.Error(),
			Err:        err,
		}
	}

	return reduced, result.Stdout, nil
}

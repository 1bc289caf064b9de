package hybrid

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/inkbridge/inkbridge/remote"
	"github.com/inkbridge/inkbridge/script"
)

// RemoteCaller executes source text against the live remote document.
// *remote.Transport is the production implementation.
//
// Contract:
// - Context: Call must honor cancellation and apply the transport timeout.
// - Errors: transport-level failures return an error; code-level failures
//   return a result with Succeeded=false and a nil error.
type RemoteCaller interface {
	Call(ctx context.Context, code string) (remote.ExecResult, error)
}

// remoteRunner ships remote segments through the transport with the shared
// context injected as literal assignments.
type remoteRunner struct {
	caller        RemoteCaller
	resultBinding string
	logger        Logger
}

func newRemoteRunner(cfg *Config) *remoteRunner {
	return &remoteRunner{
		caller:        cfg.Remote,
		resultBinding: cfg.ResultBinding,
		logger:        cfg.Logger,
	}
}

// run executes one remote segment. Each shared-context binding is prepended
// as one "name = <json>" line; JSON literals are valid source on both sides,
// so the remote execution sees the same data regardless of host-language
// literal syntax. The response's structured payload is threaded back into the
// shared context under the single reserved result binding; any __out line in
// the captured output takes precedence as the staged value.
func (r *remoteRunner) run(ctx context.Context, blockIndex int, seg script.Segment, shared map[string]any) (map[string]any, string, error) {
	if r.caller == nil {
		return nil, "", &BlockError{
			BlockIndex: blockIndex,
			Kind:       script.KindRemote,
			Message:    "no remote transport configured",
		}
	}

	code, err := injectVariables(seg.Source, shared)
	if err != nil {
		return nil, "", &BlockError{
			BlockIndex: blockIndex,
			Kind:       script.KindRemote,
			Message:    err.Error(),
			Err:        err,
		}
	}

	result, err := r.caller.Call(ctx, code)
	if err != nil {
		return nil, "", &BlockError{
			BlockIndex: blockIndex,
			Kind:       script.KindRemote,
			Message:    err.Error(),
			Err:        err,
		}
	}
	if !result.Succeeded {
		detail := result.Errors
		if detail == "" {
			detail = "remote code execution failed"
		}
		return nil, result.Output, &BlockError{
			BlockIndex: blockIndex,
			Kind:       script.KindRemote,
			Message:    detail,
			Err:        ErrRemoteExecution,
		}
	}

	staged, visibleOutput := remote.ExtractOutValue(result.Output)
	if staged == nil {
		staged = map[string]any{
			"output":       visibleOutput,
			"return_value": result.ReturnValue,
		}
	}

	next := make(map[string]any, len(shared)+1)
	for name, value := range shared {
		next[name] = value
	}
	next[r.resultBinding] = staged

	return next, visibleOutput, nil
}

// injectVariables renders the shared context as assignment statements ahead
// of the segment source, one binding per line, sorted by name so the wire
// text is deterministic.
func injectVariables(source string, shared map[string]any) (string, error) {
	if len(shared) == 0 {
		return source, nil
	}

	names := make([]string, 0, len(shared))
	for name := range shared {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		literal, err := json.Marshal(shared[name])
		if err != nil {
			return "", fmt.Errorf("encode variable %q: %w", name, err)
		}
		fmt.Fprintf(&b, "%s = %s\n", name, literal)
	}
	b.WriteString(source)
	return b.String(), nil
}

// Package ecma provides the default hybrid.Evaluator: an embedded ECMAScript
// interpreter (goja) that runs local segments against an injected namespace.
//
// The engine seeds the interpreter's global scope with the provided globals,
// captures print output for the duration of the run, and harvests the global
// namespace back after execution. Host handles round-trip unchanged; the
// reduction to shared-context data happens in the caller, not here.
package ecma

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/inkbridge/inkbridge/hybrid"
)

// Engine evaluates ECMAScript source. Each Eval runs in a fresh interpreter;
// nothing leaks between segments except what travels through the namespace.
type Engine struct{}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

// Eval runs source with the given globals seeded into the interpreter's
// global scope. Output written via print is captured and returned; on
// failure the captured output up to the raise is still returned, with the
// exception's stack in Stderr.
func (e *Engine) Eval(ctx context.Context, source string, globals map[string]any) (hybrid.EvalResult, error) {
	vm := goja.New()

	var stdout strings.Builder
	printFn := func(args ...any) {
		for i, arg := range args {
			if i > 0 {
				stdout.WriteString(" ")
			}
			fmt.Fprintf(&stdout, "%v", arg)
		}
		stdout.WriteString("\n")
	}

	// Engine-injected builtins are not part of the user's namespace and
	// are filtered out of the harvest.
	builtins := map[string]bool{"print": true, "console": true}

	if err := vm.Set("print", printFn); err != nil {
		return hybrid.EvalResult{}, fmt.Errorf("seed print: %w", err)
	}
	console := vm.NewObject()
	if err := console.Set("log", printFn); err != nil {
		return hybrid.EvalResult{}, fmt.Errorf("seed console.log: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return hybrid.EvalResult{}, fmt.Errorf("seed console: %w", err)
	}

	for name, value := range globals {
		if err := vm.Set(name, value); err != nil {
			return hybrid.EvalResult{}, fmt.Errorf("seed global %q: %w", name, err)
		}
	}

	// Propagate cancellation into the interpreter; a running segment is
	// aborted at the next VM checkpoint.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err := vm.RunString(source)

	result := hybrid.EvalResult{Stdout: stdout.String()}
	if err != nil {
		var exc *goja.Exception
		if errors.As(err, &exc) {
			result.Stderr = exc.String()
		}
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return result, fmt.Errorf("execution interrupted: %w", ctx.Err())
		}
		return result, err
	}

	result.Namespace = harvest(vm, builtins)
	return result, nil
}

// harvest exports the interpreter's enumerable global bindings back into a
// plain namespace. Standard library globals are non-enumerable and never
// appear; engine builtins are filtered explicitly.
func harvest(vm *goja.Runtime, builtins map[string]bool) map[string]any {
	global := vm.GlobalObject()
	keys := global.Keys()

	namespace := make(map[string]any, len(keys))
	for _, key := range keys {
		if builtins[key] {
			continue
		}
		value := global.Get(key)
		if value == nil {
			namespace[key] = nil
			continue
		}
		namespace[key] = value.Export()
	}
	return namespace
}

var _ hybrid.Evaluator = (*Engine)(nil)

package hybrid

import (
	"context"
	"fmt"

	"github.com/inkbridge/inkbridge/remote"
)

// fakeEvaluator is a scripted Evaluator for executor tests.
type fakeEvaluator struct {
	evalFn func(source string, globals map[string]any) (EvalResult, error)
	calls  []evalCall
}

type evalCall struct {
	source  string
	globals map[string]any
}

func (f *fakeEvaluator) Eval(_ context.Context, source string, globals map[string]any) (EvalResult, error) {
	f.calls = append(f.calls, evalCall{source: source, globals: globals})
	if f.evalFn != nil {
		return f.evalFn(source, globals)
	}
	// Default: pass the namespace through unchanged with no output.
	return EvalResult{Namespace: globals}, nil
}

// fakeCaller is a scripted RemoteCaller for executor tests.
type fakeCaller struct {
	callFn func(code string) (remote.ExecResult, error)
	codes  []string
}

func (f *fakeCaller) Call(_ context.Context, code string) (remote.ExecResult, error) {
	f.codes = append(f.codes, code)
	if f.callFn != nil {
		return f.callFn(code)
	}
	return remote.ExecResult{Succeeded: true}, nil
}

// echoResult builds a successful remote result with the given output.
func echoResult(output string) func(string) (remote.ExecResult, error) {
	return func(string) (remote.ExecResult, error) {
		return remote.ExecResult{Succeeded: true, Output: output}, nil
	}
}

// testLogger collects log lines.
type testLogger struct {
	lines []string
}

func (l *testLogger) Logf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

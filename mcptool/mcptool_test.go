package mcptool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inkbridge/inkbridge/hybrid"
	"github.com/inkbridge/inkbridge/remote"
)

type fakeRunner struct {
	report hybrid.Report
	avail  error
}

func (f *fakeRunner) Execute(context.Context, string) hybrid.Report { return f.report }
func (f *fakeRunner) Available(context.Context) error               { return f.avail }

type fakeCaller struct {
	callFn   func(code string) (remote.ExecResult, error)
	invokeFn func(params map[string]any) (remote.Envelope, error)
	invoked  []map[string]any
}

func (f *fakeCaller) Call(_ context.Context, code string) (remote.ExecResult, error) {
	if f.callFn != nil {
		return f.callFn(code)
	}
	return remote.ExecResult{Succeeded: true, Output: "ran: " + code}, nil
}

func (f *fakeCaller) Invoke(_ context.Context, params map[string]any) (remote.Envelope, error) {
	f.invoked = append(f.invoked, params)
	if f.invokeFn != nil {
		return f.invokeFn(params)
	}
	return remote.Envelope{Status: "success", Data: map[string]any{"id": "el1"}}, nil
}

func newTestServer(t *testing.T, caller *fakeCaller, runner *fakeRunner) *server {
	t.Helper()
	if caller == nil {
		caller = &fakeCaller{}
	}
	if runner == nil {
		runner = &fakeRunner{}
	}
	return &server{cfg: Config{Runner: runner, Caller: caller}}
}

func TestNewServer_MissingConfig(t *testing.T) {
	_, err := NewServer(Config{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("NewServer() error = %v, want %v", err, ErrConfiguration)
	}
	for _, field := range []string{"Runner", "Caller"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name missing field %s", err, field)
		}
	}
}

func TestNewServer_RegistersTools(t *testing.T) {
	srv, err := NewServer(Config{Runner: &fakeRunner{}, Caller: &fakeCaller{}})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv == nil {
		t.Fatal("NewServer() returned nil server")
	}
}

func TestExecuteCode_Success(t *testing.T) {
	s := newTestServer(t, nil, nil)

	_, out, err := s.executeCode(t.Context(), nil, executeCodeInput{Code: "draw()"})
	if err != nil {
		t.Fatalf("executeCode() error = %v", err)
	}
	if !out.Succeeded || out.Output != "ran: draw()" {
		t.Errorf("executeCode() output = %+v", out)
	}
}

func TestExecuteCode_EmptyRejected(t *testing.T) {
	s := newTestServer(t, nil, nil)

	if _, _, err := s.executeCode(t.Context(), nil, executeCodeInput{Code: "  "}); err == nil {
		t.Error("executeCode(blank) error = nil, want error")
	}
}

func TestExecuteCode_RemoteFailureReported(t *testing.T) {
	caller := &fakeCaller{callFn: func(string) (remote.ExecResult, error) {
		return remote.ExecResult{Succeeded: false, Errors: "NameError: svg"}, nil
	}}
	s := newTestServer(t, caller, nil)

	_, out, err := s.executeCode(t.Context(), nil, executeCodeInput{Code: "svg.x"})
	if err != nil {
		t.Fatalf("executeCode() error = %v, want failure in output", err)
	}
	if out.Succeeded || !strings.Contains(out.Errors, "NameError") {
		t.Errorf("executeCode() output = %+v, want remote failure detail", out)
	}
}

func TestRunHybrid_ReturnsReport(t *testing.T) {
	runner := &fakeRunner{report: hybrid.Report{Succeeded: true, BlocksExecuted: 2, CombinedOutput: "done"}}
	s := newTestServer(t, nil, runner)

	_, report, err := s.runHybrid(t.Context(), nil, runHybridInput{Script: "print(1)"})
	if err != nil {
		t.Fatalf("runHybrid() error = %v", err)
	}
	if !report.Succeeded || report.BlocksExecuted != 2 {
		t.Errorf("runHybrid() report = %+v", report)
	}
}

func TestCreateElement_BuildsWireParams(t *testing.T) {
	caller := &fakeCaller{}
	s := newTestServer(t, caller, nil)

	_, data, err := s.createElement(t.Context(), nil, createElementInput{
		Description: "circle cx=100 cy=100 r=50 fill=red",
	})
	if err != nil {
		t.Fatalf("createElement() error = %v", err)
	}
	if data["id"] != "el1" {
		t.Errorf("createElement() data = %#v", data)
	}

	if len(caller.invoked) != 1 {
		t.Fatalf("Invoke calls = %d, want 1", len(caller.invoked))
	}
	params := caller.invoked[0]
	if params["tag"] != "circle" {
		t.Errorf("params tag = %v, want circle", params["tag"])
	}
	attrs, _ := params["attributes"].(map[string]any)
	if attrs["fill"] != "red" {
		t.Errorf("params attributes = %#v", params["attributes"])
	}
}

func TestCreateElement_ParseErrorSurfaces(t *testing.T) {
	s := newTestServer(t, nil, nil)
	if _, _, err := s.createElement(t.Context(), nil, createElementInput{Description: ""}); err == nil {
		t.Error("createElement(empty) error = nil, want error")
	}
}

func TestDrawShape(t *testing.T) {
	caller := &fakeCaller{}
	s := newTestServer(t, caller, nil)

	_, _, err := s.drawShape(t.Context(), nil, drawShapeInput{
		ShapeType:  "circle",
		Attributes: map[string]any{"cx": 10, "r": 5},
	})
	if err != nil {
		t.Fatalf("drawShape() error = %v", err)
	}
	params := caller.invoked[0]
	if params["action"] != "draw-shape" || params["shape_type"] != "circle" || params["cx"] != 10 {
		t.Errorf("params = %#v", params)
	}
}

func TestGetInfo_DefaultsAction(t *testing.T) {
	caller := &fakeCaller{}
	s := newTestServer(t, caller, nil)

	if _, _, err := s.getInfo(t.Context(), nil, getInfoInput{}); err != nil {
		t.Fatalf("getInfo() error = %v", err)
	}
	if caller.invoked[0]["action"] != "get-info" {
		t.Errorf("action = %v, want get-info default", caller.invoked[0]["action"])
	}
}

func TestGetInfo_ErrorEnvelopeBecomesError(t *testing.T) {
	caller := &fakeCaller{invokeFn: func(map[string]any) (remote.Envelope, error) {
		return remote.Envelope{Status: "error", Data: map[string]any{"error": "no selection"}}, nil
	}}
	s := newTestServer(t, caller, nil)

	_, _, err := s.getInfo(t.Context(), nil, getInfoInput{Action: "get-selection"})
	if err == nil || !strings.Contains(err.Error(), "no selection") {
		t.Errorf("getInfo() error = %v, want envelope error text", err)
	}
}

func TestBatchDraw_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	caller := &fakeCaller{invokeFn: func(map[string]any) (remote.Envelope, error) {
		calls++
		if calls == 2 {
			return remote.Envelope{Status: "error", Data: map[string]any{"error": "bad shape"}}, nil
		}
		return remote.Envelope{Status: "success", Data: map[string]any{}}, nil
	}}
	s := newTestServer(t, caller, nil)

	_, out, err := s.batchDraw(t.Context(), nil, batchDrawInput{Commands: []string{
		"circle cx=1 cy=1 r=1",
		"rect x=0",
		"line x1=0",
	}})
	if err != nil {
		t.Fatalf("batchDraw() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("Invoke calls = %d, want stop after failure", calls)
	}
	if len(out.Results) != 2 || out.Results[1]["status"] != "error" {
		t.Errorf("Results = %#v, want two entries ending in error", out.Results)
	}
}

func TestBatchDraw_EmptyRejected(t *testing.T) {
	s := newTestServer(t, nil, nil)
	if _, _, err := s.batchDraw(t.Context(), nil, batchDrawInput{}); err == nil {
		t.Error("batchDraw(no commands) error = nil, want error")
	}
}

// Package mcptool exposes the bridge as MCP tools: raw code execution,
// hybrid script runs, declarative element creation, and document queries,
// all backed by one transport to the drawing application.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkbridge/inkbridge/element"
	"github.com/inkbridge/inkbridge/hybrid"
	"github.com/inkbridge/inkbridge/remote"
)

// ErrConfiguration indicates the server configuration is incomplete.
var ErrConfiguration = errors.New("mcptool: invalid configuration")

// Version reported in the server implementation info.
const Version = "0.3.0"

// Runner executes hybrid scripts.
//
// Contract:
// - Errors: failed runs are reported through the Report, not an error.
type Runner interface {
	Execute(ctx context.Context, source string) hybrid.Report
	Available(ctx context.Context) error
}

// Caller issues remote operations.
type Caller interface {
	Call(ctx context.Context, code string) (remote.ExecResult, error)
	Invoke(ctx context.Context, params map[string]any) (remote.Envelope, error)
}

var (
	_ Runner = (*hybrid.Executor)(nil)
	_ Caller = (*remote.Transport)(nil)
)

// Logger matches the minimal logging surface used across the module.
type Logger interface {
	Logf(format string, args ...any)
}

// Config wires the tool handlers.
type Config struct {
	// Runner executes hybrid scripts for the run_hybrid tool. Required.
	Runner Runner
	// Caller reaches the drawing application for the remaining tools. Required.
	Caller Caller
	// Logger receives tool-call diagnostics. Optional.
	Logger Logger
}

// Validate checks required fields.
func (c *Config) Validate() error {
	var missing []string
	if c.Runner == nil {
		missing = append(missing, "Runner")
	}
	if c.Caller == nil {
		missing = append(missing, "Caller")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

type server struct {
	cfg Config
}

// NewServer builds the MCP server with all bridge tools registered.
func NewServer(cfg Config) (*mcp.Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &server{cfg: cfg}

	srv := mcp.NewServer(&mcp.Implementation{Name: "inkbridge", Version: Version}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "execute_code",
		Description: "Run extension code inside the drawing application and return its output.",
		InputSchema: objectSchema(map[string]any{
			"code": map[string]any{"type": "string", "description": "extension code to execute"},
		}, "code"),
	}, s.executeCode)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "run_hybrid",
		Description: "Run a hybrid script whose marked blocks execute locally or in the drawing application, sharing variables between them.",
		InputSchema: objectSchema(map[string]any{
			"script": map[string]any{"type": "string", "description": "hybrid script with marked local and remote blocks"},
		}, "script"),
	}, s.runHybrid)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_element",
		Description: "Create a vector element from a declarative description like: circle cx=100 cy=100 r=50 fill=red.",
		InputSchema: objectSchema(map[string]any{
			"description": map[string]any{"type": "string", "description": "tag followed by key=value attributes, children as [{tag 'k=v'}]"},
		}, "description"),
	}, s.createElement)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "draw_shape",
		Description: "Draw a basic shape (circle, rect, line, polygon, text, ...) with attribute parameters.",
		InputSchema: objectSchema(map[string]any{
			"shape_type": map[string]any{"type": "string", "description": "shape name, e.g. circle or rect"},
			"attributes": map[string]any{"type": "object", "description": "shape attributes"},
		}, "shape_type"),
	}, s.drawShape)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_info",
		Description: "Query document, selection, or object state from the drawing application.",
		InputSchema: objectSchema(map[string]any{
			"action":    map[string]any{"type": "string", "description": "one of get-info, get-selection, get-object-info, get-object-property"},
			"object_id": map[string]any{"type": "string", "description": "object id for object queries"},
			"property":  map[string]any{"type": "string", "description": "property name for get-object-property"},
		}),
	}, s.getInfo)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "batch_draw",
		Description: "Run several drawing commands in order, stopping at the first failure.",
		InputSchema: objectSchema(map[string]any{
			"commands": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "drawing commands, one per entry",
			},
		}, "commands"),
	}, s.batchDraw)

	return srv, nil
}

// Serve runs the server over stdio until the context ends.
func Serve(ctx context.Context, cfg Config) error {
	srv, err := NewServer(cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx, &mcp.StdioTransport{})
}

type executeCodeInput struct {
	Code string `json:"code" jsonschema:"extension code to execute"`
}

type executeCodeOutput struct {
	Succeeded   bool   `json:"succeeded"`
	Output      string `json:"output,omitempty"`
	Errors      string `json:"errors,omitempty"`
	ReturnValue any    `json:"returnValue,omitempty"`
}

func (s *server) executeCode(ctx context.Context, _ *mcp.CallToolRequest, in executeCodeInput) (*mcp.CallToolResult, executeCodeOutput, error) {
	if strings.TrimSpace(in.Code) == "" {
		return nil, executeCodeOutput{}, fmt.Errorf("code must not be empty")
	}
	s.logf("execute_code: %d bytes", len(in.Code))

	result, err := s.cfg.Caller.Call(ctx, in.Code)
	if err != nil {
		return nil, executeCodeOutput{}, err
	}

	out := executeCodeOutput{
		Succeeded:   result.Succeeded,
		Output:      result.Output,
		Errors:      result.Errors,
		ReturnValue: result.ReturnValue,
	}
	text := result.Output
	if !result.Succeeded {
		text = "code execution failed: " + result.Errors
	}
	return textResult(text), out, nil
}

type runHybridInput struct {
	Script string `json:"script" jsonschema:"hybrid script with marked local and remote blocks"`
}

func (s *server) runHybrid(ctx context.Context, _ *mcp.CallToolRequest, in runHybridInput) (*mcp.CallToolResult, hybrid.Report, error) {
	if strings.TrimSpace(in.Script) == "" {
		return nil, hybrid.Report{}, fmt.Errorf("script must not be empty")
	}
	s.logf("run_hybrid: %d bytes", len(in.Script))

	report := s.cfg.Runner.Execute(ctx, in.Script)

	text := report.CombinedOutput
	if !report.Succeeded && report.Failure != nil {
		text = fmt.Sprintf("run failed at block %d: %s", report.Failure.BlockIndex, report.Failure.Message)
	}
	return textResult(text), report, nil
}

type createElementInput struct {
	Description string `json:"description" jsonschema:"element description: tag followed by key=value attributes, children as [{tag 'k=v'}]"`
}

func (s *server) createElement(ctx context.Context, _ *mcp.CallToolRequest, in createElementInput) (*mcp.CallToolResult, map[string]any, error) {
	spec, err := element.Parse(in.Description)
	if err != nil {
		return nil, nil, err
	}
	s.logf("create_element: %s", spec.Tag)

	return s.invoke(ctx, spec.Params())
}

type drawShapeInput struct {
	ShapeType  string         `json:"shape_type" jsonschema:"shape name, e.g. circle or rect"`
	Attributes map[string]any `json:"attributes,omitempty" jsonschema:"shape attributes"`
}

func (s *server) drawShape(ctx context.Context, _ *mcp.CallToolRequest, in drawShapeInput) (*mcp.CallToolResult, map[string]any, error) {
	if in.ShapeType == "" {
		return nil, nil, fmt.Errorf("shape_type must not be empty")
	}
	params := map[string]any{
		"action":     element.ActionDrawShape,
		"shape_type": in.ShapeType,
	}
	for key, value := range in.Attributes {
		params[key] = value
	}
	s.logf("draw_shape: %s", in.ShapeType)

	return s.invoke(ctx, params)
}

type getInfoInput struct {
	Action   string `json:"action,omitempty" jsonschema:"one of get-info, get-selection, get-object-info, get-object-property; defaults to get-info"`
	ObjectID string `json:"object_id,omitempty" jsonschema:"object id for object queries"`
	Property string `json:"property,omitempty" jsonschema:"property name for get-object-property"`
}

func (s *server) getInfo(ctx context.Context, _ *mcp.CallToolRequest, in getInfoInput) (*mcp.CallToolResult, map[string]any, error) {
	action := in.Action
	if action == "" {
		action = "get-info"
	}
	params := map[string]any{"action": action}
	if in.ObjectID != "" {
		params["object_id"] = in.ObjectID
	}
	if in.Property != "" {
		params["property"] = in.Property
	}
	s.logf("get_info: %s", action)

	return s.invoke(ctx, params)
}

type batchDrawInput struct {
	Commands []string `json:"commands" jsonschema:"drawing commands, one per entry"`
}

type batchDrawOutput struct {
	Total   int              `json:"total"`
	Results []map[string]any `json:"results"`
}

func (s *server) batchDraw(ctx context.Context, _ *mcp.CallToolRequest, in batchDrawInput) (*mcp.CallToolResult, batchDrawOutput, error) {
	if len(in.Commands) == 0 {
		return nil, batchDrawOutput{}, fmt.Errorf("commands must not be empty")
	}

	out := batchDrawOutput{Total: len(in.Commands)}
	for i, command := range in.Commands {
		params, err := element.ParseCommand(command)
		if err != nil {
			return nil, batchDrawOutput{}, fmt.Errorf("command %d: %w", i+1, err)
		}
		envelope, err := s.cfg.Caller.Invoke(ctx, params)
		if err != nil {
			return nil, batchDrawOutput{}, fmt.Errorf("command %d: %w", i+1, err)
		}
		out.Results = append(out.Results, map[string]any{
			"command": command,
			"status":  envelope.Status,
			"data":    envelope.Data,
		})
		if !envelope.OK() {
			return textResult(fmt.Sprintf("stopped at command %d: %s", i+1, envelope.ErrorText())), out, nil
		}
	}
	return textResult(fmt.Sprintf("executed %d commands", len(in.Commands))), out, nil
}

// invoke runs one wire operation and folds the envelope into the tool reply.
func (s *server) invoke(ctx context.Context, params map[string]any) (*mcp.CallToolResult, map[string]any, error) {
	envelope, err := s.cfg.Caller.Invoke(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	if !envelope.OK() {
		return nil, nil, fmt.Errorf("operation failed: %s", envelope.ErrorText())
	}

	text, err := json.Marshal(envelope.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("encode reply: %w", err)
	}
	return textResult(string(text)), envelope.Data, nil
}

func (s *server) logf(format string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Logf(format, args...)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// objectSchema builds an object input schema with the given properties.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

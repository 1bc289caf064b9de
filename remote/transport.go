package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default configuration values.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
	DefaultParamsName   = "mcp_params.json"
)

// Invoker fires the payload-free activation at the extension. The activation
// only confirms receipt; all payload travels via the parameter file.
//
// Contract:
// - Context: Activate must honor cancellation and deadlines.
// - Errors: a non-nil error means the extension did not receive the
//   activation; the transport reports ErrUnreachable without waiting.
type Invoker interface {
	Activate(ctx context.Context) error
}

// AvailabilityChecker is an optional Invoker extension that probes the bus
// target before first use.
type AvailabilityChecker interface {
	Available(ctx context.Context) error
}

// Logger is an optional interface for observability during transport calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort; Logf should not panic.
type Logger interface {
	Logf(format string, args ...any)
}

// Config configures a Transport.
type Config struct {
	// Invoker fires the bus activation.
	// Required.
	Invoker Invoker

	// ParamsPath is the well-known parameter file the extension reads.
	// Default: <os.TempDir()>/mcp_params.json
	ParamsPath string

	// SlotDir is the directory for response-slot files.
	// Default: os.TempDir()
	SlotDir string

	// Timeout bounds the wait for the response slot to appear.
	// Default: 30s
	Timeout time.Duration

	// PollInterval is the response-slot polling period.
	// Default: 50ms
	PollInterval time.Duration

	// Logger is an optional logger for transport events.
	Logger Logger
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.Invoker == nil {
		return fmt.Errorf("%w: missing required field Invoker", ErrConfiguration)
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.ParamsPath == "" {
		c.ParamsPath = filepath.Join(os.TempDir(), DefaultParamsName)
	}
	if c.SlotDir == "" {
		c.SlotDir = os.TempDir()
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
}

// Transport performs single-flight request/response exchanges with the
// extension.
//
// Contract:
// - Concurrency: safe for concurrent use; calls serialize on an internal
//   mutex because the parameter file path is fixed.
// - Errors: failures are *TransportError values matching ErrUnreachable,
//   ErrTimeout, or ErrMalformedResponse via errors.Is.
type Transport struct {
	cfg Config
	mu  sync.Mutex
}

// NewTransport creates a transport with the given configuration.
// Returns ErrConfiguration if required fields are missing.
func NewTransport(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &Transport{cfg: cfg}, nil
}

// Available probes the bus target before first use. It delegates to the
// invoker when it implements AvailabilityChecker and reports ErrUnreachable
// on failure; invokers without a probe are assumed reachable.
func (t *Transport) Available(ctx context.Context) error {
	checker, ok := t.cfg.Invoker.(AvailabilityChecker)
	if !ok {
		return nil
	}
	if err := checker.Available(ctx); err != nil {
		return &TransportError{Kind: ErrUnreachable, Detail: err.Error()}
	}
	return nil
}

// Call submits source text for execution against the live document and
// decodes the structured result. Code always travels via the parameter file,
// never a command line, so quotes, newlines, and non-ASCII content survive
// intact.
func (t *Transport) Call(ctx context.Context, code string) (ExecResult, error) {
	envelope, err := t.Invoke(ctx, map[string]any{
		"action":        ActionExecuteCode,
		"code":          code,
		"return_output": true,
	})
	if err != nil {
		return ExecResult{}, err
	}

	result, ok := envelope.execResult()
	if !ok {
		return ExecResult{}, &TransportError{
			Kind:   ErrMalformedResponse,
			Detail: "response lacks execution_successful flag",
		}
	}
	if !envelope.OK() && result.Errors == "" {
		result.Errors = envelope.ErrorText()
	}
	return result, nil
}

// Invoke performs one raw request/response exchange. The params map is the
// request body (action or element description); the transport adds the
// response-slot path, writes the parameter file, fires the activation, and
// waits for the slot.
func (t *Transport) Invoke(ctx context.Context, params map[string]any) (Envelope, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	slotPath := filepath.Join(t.cfg.SlotDir, "inkmcp_response_"+uuid.NewString()+".json")

	doc, err := encodeRequest(params, slotPath)
	if err != nil {
		return Envelope{}, &TransportError{Kind: ErrMalformedResponse, Detail: fmt.Sprintf("encode request: %v", err)}
	}
	if err := os.WriteFile(t.cfg.ParamsPath, doc, 0o644); err != nil {
		return Envelope{}, &TransportError{Kind: ErrUnreachable, Detail: fmt.Sprintf("write parameter file: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if err := t.cfg.Invoker.Activate(ctx); err != nil {
		return Envelope{}, &TransportError{Kind: ErrUnreachable, Detail: err.Error()}
	}
	if t.cfg.Logger != nil {
		t.cfg.Logger.Logf("activation sent, waiting for %s", filepath.Base(slotPath))
	}

	raw, err := t.waitForSlot(ctx, slotPath)
	if err != nil {
		return Envelope{}, err
	}
	defer os.Remove(slotPath)

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Envelope{}, &TransportError{
			Kind:   ErrMalformedResponse,
			Detail: fmt.Sprintf("decode response: %v", err),
			Raw:    preview(raw),
		}
	}
	if envelope.Status == "" {
		return Envelope{}, &TransportError{
			Kind:   ErrMalformedResponse,
			Detail: "response lacks status field",
			Raw:    preview(raw),
		}
	}
	return envelope, nil
}

// waitForSlot polls until the response slot appears or the deadline passes.
func (t *Transport) waitForSlot(ctx context.Context, slotPath string) ([]byte, error) {
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		raw, err := os.ReadFile(slotPath)
		if err == nil {
			return raw, nil
		}
		if !os.IsNotExist(err) {
			return nil, &TransportError{Kind: ErrMalformedResponse, Detail: fmt.Sprintf("read response slot: %v", err)}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, &TransportError{
					Kind:   ErrTimeout,
					Detail: fmt.Sprintf("no response within %v", t.cfg.Timeout),
				}
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ParamsPath returns the parameter file path in use, for diagnostics.
func (t *Transport) ParamsPath() string {
	return t.cfg.ParamsPath
}

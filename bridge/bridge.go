// Package bridge is the unified facade over the module: it assembles the
// local engine, the bus transport, and the hybrid dispatcher from one
// options struct and exposes the bridge operations as a single API.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/inkbridge/inkbridge/config"
	"github.com/inkbridge/inkbridge/element"
	"github.com/inkbridge/inkbridge/engine/ecma"
	"github.com/inkbridge/inkbridge/hybrid"
	"github.com/inkbridge/inkbridge/remote"
	"github.com/inkbridge/inkbridge/remote/gdbus"
	"github.com/inkbridge/inkbridge/script"
	"github.com/inkbridge/inkbridge/vars"
)

// ErrOffline indicates an operation needs the drawing application but the
// bridge was built without a bus connection.
var ErrOffline = errors.New("bridge: no bus connection")

// Logger matches the minimal logging surface used across the module.
type Logger interface {
	Logf(format string, args ...any)
}

// Options configures a Bridge.
type Options struct {
	// Settings holds the file configuration; zero values use the package
	// defaults throughout the stack.
	Settings config.Settings

	// Invoker overrides the bus invoker. Default: dial the session bus.
	Invoker remote.Invoker

	// RequireBus fails construction when no bus connection can be made.
	// When false, the bridge comes up offline: local blocks still run and
	// remote operations report errors.
	RequireBus bool

	// Logger receives diagnostics from the transport and the dispatcher.
	Logger Logger
}

// Bridge bundles the assembled stack.
//
// Contract:
// - Concurrency: safe for concurrent use; remote operations serialize on
//   the transport's single-flight protocol.
// - Ownership: Close releases the bus connection the bridge dialed itself;
//   injected invokers stay with their owner.
type Bridge struct {
	transport *remote.Transport
	executor  *hybrid.Executor
	closer    io.Closer
}

// New assembles a bridge from the options.
func New(opts Options) (*Bridge, error) {
	b := &Bridge{}

	invoker := opts.Invoker
	if invoker == nil {
		inv, conn, err := gdbus.Connect(gdbus.Config{
			Dest:       opts.Settings.Bus.Dest,
			ObjectPath: opts.Settings.Bus.ObjectPath,
			Action:     opts.Settings.Bus.Action,
		})
		if err != nil {
			if opts.RequireBus {
				return nil, err
			}
			if opts.Logger != nil {
				opts.Logger.Logf("bus unavailable, running offline: %v", err)
			}
		} else {
			invoker = inv
			b.closer = conn
		}
	}

	if invoker != nil {
		transport, err := remote.NewTransport(remote.Config{
			Invoker:      invoker,
			ParamsPath:   opts.Settings.Files.ParamsPath,
			SlotDir:      opts.Settings.Files.SlotDir,
			Timeout:      opts.Settings.TimeoutDuration(),
			PollInterval: opts.Settings.PollIntervalDuration(),
			Logger:       opts.Logger,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.transport = transport
	}

	executor, err := newExecutor(opts, b.transport)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.executor = executor

	return b, nil
}

// newExecutor assembles the hybrid dispatcher. A nil transport leaves remote
// blocks unconfigured; local-only scripts still run.
func newExecutor(opts Options, transport *remote.Transport) (*hybrid.Executor, error) {
	mode := vars.Lenient
	if opts.Settings.Strict() {
		mode = vars.Strict
	}
	cfg := hybrid.Config{
		Evaluator:         ecma.New(),
		Splitter:          script.NewSplitter(opts.Settings.Markers.Local, opts.Settings.Markers.Remote),
		SerializationMode: mode,
		Logger:            opts.Logger,
	}
	if transport != nil {
		cfg.Remote = transport
	}
	return hybrid.New(cfg)
}

// Online reports whether the bridge has a bus connection.
func (b *Bridge) Online() bool {
	return b.transport != nil
}

// Run executes a hybrid script through the block dispatcher.
func (b *Bridge) Run(ctx context.Context, source string) hybrid.Report {
	return b.executor.Execute(ctx, source)
}

// RunCode executes source inside the drawing application.
func (b *Bridge) RunCode(ctx context.Context, code string) (remote.ExecResult, error) {
	if b.transport == nil {
		return remote.ExecResult{}, ErrOffline
	}
	return b.transport.Call(ctx, code)
}

// Invoke performs one raw wire operation.
func (b *Bridge) Invoke(ctx context.Context, params map[string]any) (remote.Envelope, error) {
	if b.transport == nil {
		return remote.Envelope{}, ErrOffline
	}
	return b.transport.Invoke(ctx, params)
}

// CreateElement parses a declarative element description and creates it in
// the live document, returning the extension's response data.
func (b *Bridge) CreateElement(ctx context.Context, description string) (map[string]any, error) {
	spec, err := element.Parse(description)
	if err != nil {
		return nil, err
	}
	envelope, err := b.Invoke(ctx, spec.Params())
	if err != nil {
		return nil, err
	}
	if !envelope.OK() {
		return nil, fmt.Errorf("create %s: %s", spec.Tag, envelope.ErrorText())
	}
	return envelope.Data, nil
}

// Available probes the bus target.
func (b *Bridge) Available(ctx context.Context) error {
	if b.transport == nil {
		return ErrOffline
	}
	return b.transport.Available(ctx)
}

// Executor exposes the assembled dispatcher, e.g. for serving MCP tools.
func (b *Bridge) Executor() *hybrid.Executor {
	return b.executor
}

// Transport exposes the assembled transport, or nil when offline.
func (b *Bridge) Transport() *remote.Transport {
	return b.transport
}

// Close releases the bus connection owned by the bridge.
func (b *Bridge) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

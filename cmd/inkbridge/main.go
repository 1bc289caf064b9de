// Command inkbridge is the command-line client for the drawing bridge.
//
// Usage:
//
//	inkbridge [flags] "circle cx=100 cy=200 r=50 fill=#ff0000"
//	inkbridge [flags] "rect x=0 y=0 width=50 height=50; circle cx=100 cy=100 r=30"
//	inkbridge [flags] -f commands.txt
//	echo "circle cx=200 cy=200 r=75" | inkbridge
//	inkbridge -f script.txt hybrid
//	inkbridge [flags] serve
//
// The default mode parses drawing commands and sends them over the bus.
// hybrid runs a marked script through the block dispatcher; serve exposes
// the bridge as MCP tools over stdio.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/inkbridge/inkbridge/bridge"
	"github.com/inkbridge/inkbridge/config"
	"github.com/inkbridge/inkbridge/element"
	"github.com/inkbridge/inkbridge/mcptool"
	"github.com/inkbridge/inkbridge/remote"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "inkbridge:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	inputFile  string
	parseOut   bool
	pretty     bool
	verbose    bool
}

func run(args []string) error {
	var opts options
	fs := flag.NewFlagSet("inkbridge", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to YAML settings file")
	fs.StringVar(&opts.inputFile, "f", "", "read commands or script from file")
	fs.BoolVar(&opts.parseOut, "parse-out", false, "emit full structured results")
	fs.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	fs.BoolVar(&opts.verbose, "v", false, "log transport and block activity to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := fs.Args()
	mode := "commands"
	if len(rest) > 0 && (rest[0] == "hybrid" || rest[0] == "serve") {
		mode = rest[0]
		rest = rest[1:]
	}

	switch mode {
	case "serve":
		return runServe(ctx, settings, opts)
	case "hybrid":
		return runHybrid(ctx, settings, opts, rest)
	default:
		return runCommands(ctx, settings, opts, rest)
	}
}

func newBridge(settings config.Settings, opts options, requireBus bool) (*bridge.Bridge, error) {
	bopts := bridge.Options{Settings: settings, RequireBus: requireBus}
	if opts.verbose {
		bopts.Logger = stderrLogger{}
	}
	return bridge.New(bopts)
}

func runServe(ctx context.Context, settings config.Settings, opts options) error {
	b, err := newBridge(settings, opts, true)
	if err != nil {
		return err
	}
	defer b.Close()

	cfg := mcptool.Config{Runner: b.Executor(), Caller: b.Transport()}
	if opts.verbose {
		cfg.Logger = stderrLogger{}
	}
	return mcptool.Serve(ctx, cfg)
}

func runHybrid(ctx context.Context, settings config.Settings, opts options, rest []string) error {
	source, err := readInput(opts, rest)
	if err != nil {
		return err
	}

	// Local-only scripts still run when the bus is down; remote blocks then
	// fail with a transport error in the report.
	b, err := newBridge(settings, opts, false)
	if err != nil {
		return err
	}
	defer b.Close()
	if !b.Online() {
		fmt.Fprintln(os.Stderr, "inkbridge: bus unavailable, remote blocks will fail")
	}

	report := b.Run(ctx, source)
	if err := emit(report, opts.pretty); err != nil {
		return err
	}
	if !report.Succeeded {
		if report.Failure != nil {
			return fmt.Errorf("run failed at block %d", report.Failure.BlockIndex)
		}
		return errors.New("run failed")
	}
	return nil
}

// commandResult is one processed command in the CLI output.
type commandResult struct {
	Command string          `json:"command"`
	Params  map[string]any  `json:"params,omitempty"`
	Result  remote.Envelope `json:"result"`
}

func runCommands(ctx context.Context, settings config.Settings, opts options, rest []string) error {
	content, err := readInput(opts, rest)
	if err != nil {
		return err
	}
	commands := element.SplitCommands(content)
	if len(commands) == 0 {
		return errors.New("no commands to execute")
	}

	b, err := newBridge(settings, opts, true)
	if err != nil {
		return err
	}
	defer b.Close()

	var results []commandResult
	failures := 0
	for _, command := range commands {
		params, err := element.ParseCommand(command)
		if err != nil {
			return err
		}
		envelope, err := b.Invoke(ctx, params)
		if err != nil {
			envelope = remote.Envelope{
				Status: "error",
				Data:   map[string]any{"error": err.Error()},
			}
		}
		if !envelope.OK() {
			failures++
		}
		results = append(results, commandResult{Command: command, Params: params, Result: envelope})
	}

	if err := emitCommandResults(results, opts); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d commands failed", failures, len(commands))
	}
	return nil
}

func emitCommandResults(results []commandResult, opts options) error {
	if opts.parseOut {
		return emit(map[string]any{
			"total_commands": len(results),
			"results":        results,
		}, opts.pretty)
	}

	// Compact view: one status line per command. A code execution that ran
	// but failed inside the application counts as an error.
	type line struct {
		Command string `json:"command"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	lines := make([]line, 0, len(results))
	for _, r := range results {
		status := r.Result.Status
		message, _ := r.Result.Data["message"].(string)
		if r.Params["action"] == element.ActionExecuteCode {
			if ok, present := r.Result.Data["execution_successful"].(bool); present && !ok {
				status = "error"
				if errs, _ := r.Result.Data["errors"].(string); errs != "" {
					message = errs
				}
			}
		}
		if status == "error" && message == "" {
			message, _ = r.Result.Data["error"].(string)
		}
		lines = append(lines, line{Command: r.Command, Status: status, Message: message})
	}
	return emit(lines, opts.pretty)
}

// readInput resolves the input source: -f file, positional arguments, then
// piped stdin.
func readInput(opts options, rest []string) (string, error) {
	if opts.inputFile != "" {
		raw, err := os.ReadFile(opts.inputFile)
		if err != nil {
			return "", fmt.Errorf("read input %s: %w", opts.inputFile, err)
		}
		return string(raw), nil
	}
	if len(rest) > 0 {
		return strings.Join(rest, " "), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}
	return "", errors.New("no input: pass a command, -f file, or pipe stdin")
}

func emit(v any, pretty bool) error {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// stderrLogger adapts the stdlib logger to the module's Logf surface.
type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...any) {
	log.Printf(format, args...)
}

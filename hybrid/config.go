package hybrid

import (
	"fmt"
	"strings"

	"github.com/inkbridge/inkbridge/script"
	"github.com/inkbridge/inkbridge/vars"
)

// DefaultResultBinding is the reserved shared-context name that receives the
// structured payload of the most recent remote block.
const DefaultResultBinding = "inkscape_result"

// Logger is an optional interface for observability during pipeline runs.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort; Logf should not panic.
type Logger interface {
	// Logf logs a formatted message.
	Logf(format string, args ...any)
}

// Config holds the configuration for a hybrid executor.
type Config struct {
	// Evaluator runs local segments.
	// Required.
	Evaluator Evaluator

	// Remote executes remote segments against the drawing application.
	// Optional; if nil, remote blocks fail with ErrRemoteExecution.
	Remote RemoteCaller

	// HostHandles is the fixed set of names bound to host-provided objects
	// in every local segment's namespace. Handle names are excluded from
	// shared-context reduction and shared-context entries shadow them on
	// collision.
	HostHandles map[string]any

	// Splitter parses the script into segments. Defaults to the standard
	// marker tokens.
	Splitter *script.Splitter

	// SerializationMode is the rejection policy applied when reducing a
	// local block's namespace. Default: vars.Lenient.
	SerializationMode vars.Mode

	// ResultBinding is the reserved name for the previous remote result.
	// Default: DefaultResultBinding.
	ResultBinding string

	// Logger is an optional logger for pipeline events.
	Logger Logger
}

// Validate checks that all required fields are set.
// Returns ErrConfiguration if any required field is missing.
func (c *Config) Validate() error {
	var missing []string

	if c.Evaluator == nil {
		missing = append(missing, "Evaluator")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.Splitter == nil {
		c.Splitter = script.NewSplitter("", "")
	}
	if c.ResultBinding == "" {
		c.ResultBinding = DefaultResultBinding
	}
}

// Package vars reduces an execution namespace to the data-only variable set
// that can be threaded between hybrid blocks.
//
// The shared-context data model is exactly the JSON data model: null, bool,
// number, string, arrays of those, and string-keyed maps of those. Rather than
// enumerating host type names, membership is decided by a total fallible
// encode: a value belongs to the shared context iff it JSON-encodes cleanly.
// Runtime kinds that can never be data (functions, channels, unsafe pointers)
// are rejected up front without attempting an encode.
package vars

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Mode selects the rejection policy applied by Reduce.
type Mode int

const (
	// Lenient collects rejects, logs a capped summary, and continues.
	// The propagated set is narrowed; Reduce never fails.
	Lenient Mode = iota

	// Strict fails on the first rejected variable with a
	// *SerializationError naming it.
	Strict
)

// rejectLogCap bounds how many rejects the lenient summary names.
const rejectLogCap = 5

// Logger is an optional interface for observability during namespace
// reduction.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort; Logf should not panic.
type Logger interface {
	// Logf logs a formatted message.
	Logf(format string, args ...any)
}

// Reject records one variable dropped during reduction and why.
type Reject struct {
	// Name is the variable name.
	Name string

	// Reason is a short human-readable explanation.
	Reason string
}

// SerializationError reports a strict-mode rejection. It names the offending
// variable and its concrete type so the script author can convert it to plain
// data explicitly.
type SerializationError struct {
	// Name is the rejected variable name.
	Name string

	// TypeName is the concrete Go type of the rejected value.
	TypeName string

	// Reason classifies the rejection.
	Reason string
}

// Error returns the message including a remediation hint.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("variable %q of type %s is %s; convert it to plain data (numbers, strings, lists, maps) before the block ends",
		e.Name, e.TypeName, e.Reason)
}

// Reducer reduces namespaces with a fixed mode and optional logger.
type Reducer struct {
	// Mode is the rejection policy. Default: Lenient.
	Mode Mode

	// Logger receives the lenient-mode reject summary. Optional.
	Logger Logger
}

// Reduce filters a namespace down to its data-only subset.
//
// Entries whose name starts with "_" or appears in excluded are skipped
// silently; they are implementation-reserved or host handles, not rejects.
// Remaining entries are classified: values of a kind that can never be data
// are rejected as "non-serializable type"; everything else is kept iff it
// survives a full JSON encode, and rejected as "not JSON-serializable"
// otherwise.
//
// In Strict mode the first rejection returns a *SerializationError and a nil
// map. In Lenient mode the rejects are returned alongside the reduced map and
// summarized through the logger.
func (r *Reducer) Reduce(namespace map[string]any, excluded map[string]bool) (map[string]any, []Reject, error) {
	reduced := make(map[string]any, len(namespace))
	var rejects []Reject

	for name, value := range namespace {
		if strings.HasPrefix(name, "_") || excluded[name] {
			continue
		}

		if reason, ok := classify(value); !ok {
			if r.Mode == Strict {
				return nil, nil, &SerializationError{
					Name:     name,
					TypeName: fmt.Sprintf("%T", value),
					Reason:   reason,
				}
			}
			rejects = append(rejects, Reject{Name: name, Reason: fmt.Sprintf("%s (%T)", reason, value)})
			continue
		}

		reduced[name] = value
	}

	if len(rejects) > 0 && r.Logger != nil {
		r.Logger.Logf("%d variable(s) excluded from shared context:", len(rejects))
		for i, rej := range rejects {
			if i == rejectLogCap {
				r.Logger.Logf("  ... and %d more", len(rejects)-rejectLogCap)
				break
			}
			r.Logger.Logf("  - %s: %s", rej.Name, rej.Reason)
		}
	}

	return reduced, rejects, nil
}

// Reduce is a convenience for a one-off lenient reduction without logging.
func Reduce(namespace map[string]any, excluded map[string]bool) (map[string]any, []Reject) {
	r := Reducer{Mode: Lenient}
	reduced, rejects, _ := r.Reduce(namespace, excluded)
	return reduced, rejects
}

// classify decides whether a value is shared-context data. It returns a
// rejection reason and false for non-data values.
func classify(value any) (reason string, ok bool) {
	if value == nil {
		return "", true
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return "non-serializable type", false
	}

	if _, err := json.Marshal(value); err != nil {
		return "not JSON-serializable", false
	}
	return "", true
}

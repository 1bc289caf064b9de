package hybrid

import (
	"errors"
	"fmt"

	"github.com/inkbridge/inkbridge/script"
)

// Sentinel errors for error classification.
var (
	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("hybrid configuration error")

	// ErrLocalExecution indicates a failure while running a local block:
	// the block's own code raised, or its namespace could not be reduced
	// to shared-context data.
	ErrLocalExecution = errors.New("local block execution failed")

	// ErrRemoteExecution indicates a remote block failure, either at the
	// transport level or inside the remotely executed code.
	ErrRemoteExecution = errors.New("remote block execution failed")
)

// BlockError reports the failure of one block, with its 1-based position and
// kind. It is the single failure the pipeline surfaces; blocks after it never
// run.
type BlockError struct {
	// BlockIndex is the 1-based position of the failed block.
	BlockIndex int

	// Kind is the failed block's execution kind.
	Kind script.Kind

	// Message describes the failure.
	Message string

	// Trace carries the captured stderr or stack trace, when available.
	Trace string

	// Err is the underlying error, if any.
	Err error
}

// Error returns the message prefixed with the block position and kind.
func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d (%s): %s", e.BlockIndex, e.Kind, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *BlockError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target. A BlockError matches
// ErrLocalExecution or ErrRemoteExecution according to its kind, allowing
// sentinel-style error checking.
func (e *BlockError) Is(target error) bool {
	switch target {
	case ErrLocalExecution:
		return e.Kind == script.KindLocal
	case ErrRemoteExecution:
		return e.Kind == script.KindRemote
	}
	return false
}

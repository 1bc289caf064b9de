package hybrid

import "github.com/inkbridge/inkbridge/script"

// BlockResult records the outcome of one executed block. It is created by a
// runner and never mutated afterwards.
type BlockResult struct {
	// BlockIndex is the block's 1-based position in the segment sequence.
	BlockIndex int `json:"blockIndex"`

	// Kind is the block's execution kind.
	Kind script.Kind `json:"kind"`

	// Output is the block's captured output, attached on success and
	// failure alike.
	Output string `json:"output,omitempty"`

	// Succeeded reports whether the block completed without error.
	Succeeded bool `json:"succeeded"`

	// ErrorDetail carries the failure description for a failed block.
	ErrorDetail string `json:"errorDetail,omitempty"`
}

// Failure identifies the single block that halted the pipeline.
type Failure struct {
	// BlockIndex is the failed block's 1-based position. Zero when the
	// pipeline never ran a block (no code blocks found).
	BlockIndex int `json:"blockIndex"`

	// Kind is the failed block's kind, empty when no block ran.
	Kind script.Kind `json:"kind,omitempty"`

	// Message describes what went wrong.
	Message string `json:"message"`
}

// Report is the terminal artifact of one pipeline run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string `json:"runId"`

	// BlocksExecuted counts the blocks dispatched to a runner, including
	// a final failed one. Skipped blank segments are not counted.
	BlocksExecuted int `json:"blocksExecuted"`

	// Blocks holds the per-block results in execution order.
	Blocks []BlockResult `json:"blocks,omitempty"`

	// CombinedOutput joins the blocks' outputs, separated by blank lines.
	// Output captured before a failure is preserved.
	CombinedOutput string `json:"combinedOutput,omitempty"`

	// Succeeded reports whether every block completed. Partial success is
	// never reported as success.
	Succeeded bool `json:"succeeded"`

	// Failure is the single source of truth for what went wrong and
	// where. Nil on success.
	Failure *Failure `json:"failure,omitempty"`
}

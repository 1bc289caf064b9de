package remote

import "encoding/json"

// Action identifiers understood by the extension.
const (
	// ActionExecuteCode asks the extension to run arbitrary source against
	// the live document.
	ActionExecuteCode = "execute-inkex-code"
)

// Envelope is the wire response written by the extension to the response
// slot: {"status": "success"|"error", "data": {...}}.
type Envelope struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

// OK reports whether the extension processed the request successfully at the
// protocol level. Code-level failures are reported inside Data.
func (e Envelope) OK() bool {
	return e.Status == "success"
}

// ErrorText returns the error description carried in the envelope, or an
// empty string.
func (e Envelope) ErrorText() string {
	if s, ok := e.Data["error"].(string); ok {
		return s
	}
	return ""
}

// ExecResult is the decoded outcome of a code-execution request.
type ExecResult struct {
	// Succeeded reports whether the submitted code ran without raising.
	// A false value is a code-level failure, not a transport failure.
	Succeeded bool

	// Output is the stdout captured during execution.
	Output string

	// Errors carries the remote-side error text (exception message and
	// trace, or captured stderr).
	Errors string

	// ReturnValue is the stringified reserved result binding, when the
	// code set one.
	ReturnValue string
}

// execResult extracts the code-execution fields from a decoded envelope.
// The execution_successful flag is required; its absence means the response
// does not describe a code execution and the caller must treat the envelope
// as malformed.
func (e Envelope) execResult() (ExecResult, bool) {
	succeeded, ok := e.Data["execution_successful"].(bool)
	if !ok {
		return ExecResult{}, false
	}
	result := ExecResult{Succeeded: succeeded}
	if s, ok := e.Data["output"].(string); ok {
		result.Output = s
	}
	if s, ok := e.Data["errors"].(string); ok {
		result.Errors = s
	}
	if s, ok := e.Data["return_value"].(string); ok {
		result.ReturnValue = s
	}
	return result, true
}

// encodeRequest renders the parameter-file document. The response-slot path
// rides inside the request so the extension knows where to write its answer.
func encodeRequest(params map[string]any, slotPath string) ([]byte, error) {
	doc := make(map[string]any, len(params)+1)
	for k, v := range params {
		doc[k] = v
	}
	doc["response_file"] = slotPath
	return json.Marshal(doc)
}

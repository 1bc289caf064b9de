package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors for transport failure classification.
var (
	// ErrUnreachable indicates the bus activation itself failed; the
	// extension never received the request.
	ErrUnreachable = errors.New("remote host unreachable")

	// ErrTimeout indicates the response slot never appeared within the
	// configured timeout.
	ErrTimeout = errors.New("remote call timed out")

	// ErrMalformedResponse indicates the response slot existed but did not
	// decode as a valid response envelope.
	ErrMalformedResponse = errors.New("malformed remote response")

	// ErrConfiguration indicates an invalid or incomplete transport
	// configuration.
	ErrConfiguration = errors.New("transport configuration error")
)

// rawPreviewLimit bounds how much raw response content a malformed-response
// error carries for diagnosis.
const rawPreviewLimit = 200

// TransportError wraps a transport failure with its classification. Callers
// use errors.Is against the sentinel errors above.
type TransportError struct {
	// Kind is one of ErrUnreachable, ErrTimeout, ErrMalformedResponse.
	Kind error

	// Detail describes the specific failure.
	Detail string

	// Raw holds up to rawPreviewLimit bytes of raw response content when
	// the response could not be decoded.
	Raw string
}

// Error returns the message including the raw preview when present.
func (e *TransportError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%v: %s (raw: %q)", e.Kind, e.Detail, e.Raw)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return e.Kind.Error()
}

// Unwrap returns the classification sentinel for errors.Is.
func (e *TransportError) Unwrap() error {
	return e.Kind
}

// preview truncates raw content for inclusion in a TransportError.
func preview(raw []byte) string {
	if len(raw) > rawPreviewLimit {
		return string(raw[:rawPreviewLimit])
	}
	return string(raw)
}

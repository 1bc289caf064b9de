// Package remote implements the file-and-bus transport to the drawing
// application's extension.
//
// The exchange is single-flight: the request is written as one JSON document
// to a well-known parameter file, a payload-free activation is fired at the
// extension through the message bus, and the extension writes its structured
// answer to a fresh response-slot file whose path travels inside the request.
// The transport owns the slot file for the whole exchange and deletes it after
// decoding. Exactly one request may be outstanding at a time; a second call
// blocks until the first completes.
package remote

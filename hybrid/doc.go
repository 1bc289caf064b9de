// Package hybrid executes scripts that alternate between local and remote
// code blocks.
//
// A hybrid script is split into ordered segments by marker lines (package
// script). Local segments run in an injected scripting engine against a
// namespace seeded with host handles and the shared context; remote segments
// are shipped to the drawing application through the transport (package
// remote) with the shared context injected as literal assignments. The
// executor threads the data-only shared context forward block by block,
// collects per-block output, and short-circuits on the first failure.
package hybrid

// Package script splits hybrid source text into ordered local and remote
// segments using magic marker lines.
//
// A hybrid script alternates between code that runs in the local host
// application and code that runs in the remote drawing application. A line
// whose trimmed content is exactly the local marker switches subsequent lines
// to the local segment; the remote marker switches to the remote segment.
// Lines before any marker belong to an implicit local segment.
package script

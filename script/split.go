package script

import "strings"

// Kind identifies where a segment executes.
type Kind string

// Segment kinds.
const (
	// KindLocal marks a segment that runs in the local host application.
	KindLocal Kind = "local"

	// KindRemote marks a segment that runs in the remote drawing
	// application via the transport.
	KindRemote Kind = "remote"
)

// Default marker tokens. A marker only triggers when it is the entire
// trimmed content of a line; inline or indented occurrences are code.
const (
	DefaultLocalMarker  = "# @local"
	DefaultRemoteMarker = "# @inkscape"
)

// Segment is a contiguous run of source lines with a single execution kind.
// Segments are immutable once produced; Order is the positional index in the
// scan (0-based).
type Segment struct {
	Kind   Kind
	Source string
	Order  int
}

// Splitter scans hybrid source text for marker lines. The zero value is not
// usable; use NewSplitter.
type Splitter struct {
	localMarker  string
	remoteMarker string
}

// NewSplitter creates a splitter with the given marker tokens.
// Empty tokens fall back to the defaults.
func NewSplitter(localMarker, remoteMarker string) *Splitter {
	if localMarker == "" {
		localMarker = DefaultLocalMarker
	}
	if remoteMarker == "" {
		remoteMarker = DefaultRemoteMarker
	}
	return &Splitter{localMarker: localMarker, remoteMarker: remoteMarker}
}

// Split groups source lines into ordered segments. A script with no markers
// yields exactly one local segment containing the whole script. Consecutive
// markers with no code between them produce no segment for the empty span;
// empty segments are always dropped. Split is pure and total over any input.
func (s *Splitter) Split(source string) []Segment {
	lines := strings.Split(source, "\n")

	var segments []Segment
	var acc []string
	current := KindLocal

	flush := func() {
		if len(acc) == 0 {
			return
		}
		segments = append(segments, Segment{
			Kind:   current,
			Source: strings.Join(acc, "\n"),
			Order:  len(segments),
		})
		acc = nil
	}

	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case s.localMarker:
			flush()
			current = KindLocal
		case s.remoteMarker:
			flush()
			current = KindRemote
		default:
			acc = append(acc, line)
		}
	}
	flush()

	return segments
}

// Split parses source using the default marker tokens.
func Split(source string) []Segment {
	return NewSplitter("", "").Split(source)
}

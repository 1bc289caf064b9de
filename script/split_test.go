package script

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplit_NoMarkers(t *testing.T) {
	segments := Split("print(1)\nprint(2)")

	want := []Segment{{Kind: KindLocal, Source: "print(1)\nprint(2)", Order: 0}}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("Split() = %#v, want %#v", segments, want)
	}
}

func TestSplit_Alternating(t *testing.T) {
	source := strings.Join([]string{
		"# @local",
		"a = 1",
		"# @inkscape",
		"draw(a)",
		"# @local",
		"print(a)",
	}, "\n")

	segments := Split(source)

	want := []Segment{
		{Kind: KindLocal, Source: "a = 1", Order: 0},
		{Kind: KindRemote, Source: "draw(a)", Order: 1},
		{Kind: KindLocal, Source: "print(a)", Order: 2},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("Split() = %#v, want %#v", segments, want)
	}
}

func TestSplit_LeadingCodeIsLocal(t *testing.T) {
	segments := Split("x = 5\n# @inkscape\ndraw(x)")

	if len(segments) != 2 {
		t.Fatalf("Split() returned %d segments, want 2", len(segments))
	}
	if segments[0].Kind != KindLocal || segments[0].Source != "x = 5" {
		t.Errorf("segments[0] = %#v, want local %q", segments[0], "x = 5")
	}
	if segments[1].Kind != KindRemote || segments[1].Source != "draw(x)" {
		t.Errorf("segments[1] = %#v, want remote %q", segments[1], "draw(x)")
	}
}

func TestSplit_ConsecutiveMarkersProduceNoEmptySegments(t *testing.T) {
	segments := Split("# @local\n# @inkscape\n# @local\nX")

	want := []Segment{{Kind: KindLocal, Source: "X", Order: 0}}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("Split() = %#v, want %#v", segments, want)
	}
}

func TestSplit_InlineAndIndentedMarkersAreCode(t *testing.T) {
	source := "x = '# @inkscape'\n  # @local extra\ndraw(x)"

	segments := Split(source)

	if len(segments) != 1 {
		t.Fatalf("Split() returned %d segments, want 1", len(segments))
	}
	if segments[0].Kind != KindLocal {
		t.Errorf("segments[0].Kind = %q, want %q", segments[0].Kind, KindLocal)
	}
	if segments[0].Source != source {
		t.Errorf("segments[0].Source = %q, want original text", segments[0].Source)
	}
}

func TestSplit_IndentedMarkerLineTriggers(t *testing.T) {
	// Markers compare against the trimmed line, so leading whitespace
	// around an otherwise exact marker still switches modes.
	segments := Split("a = 1\n   # @inkscape\ndraw(a)")

	if len(segments) != 2 {
		t.Fatalf("Split() returned %d segments, want 2", len(segments))
	}
	if segments[1].Kind != KindRemote {
		t.Errorf("segments[1].Kind = %q, want %q", segments[1].Kind, KindRemote)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	// A single empty line accumulates as one empty-bodied local segment,
	// matching line-preserving reassembly; the orchestrator skips it.
	segments := Split("")

	if len(segments) != 1 {
		t.Fatalf("Split() returned %d segments, want 1", len(segments))
	}
	if segments[0].Source != "" || segments[0].Kind != KindLocal {
		t.Errorf("segments[0] = %#v, want empty local segment", segments[0])
	}
}

func TestSplit_CustomMarkers(t *testing.T) {
	sp := NewSplitter("-- host", "-- canvas")

	segments := sp.Split("a = 1\n-- canvas\ndraw(a)\n-- host\nprint(a)")

	want := []Segment{
		{Kind: KindLocal, Source: "a = 1", Order: 0},
		{Kind: KindRemote, Source: "draw(a)", Order: 1},
		{Kind: KindLocal, Source: "print(a)", Order: 2},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Errorf("Split() = %#v, want %#v", segments, want)
	}
}

// TestSplit_RejoinRoundTrip reinserts marker lines at segment boundaries and
// re-splits, expecting the identical segment sequence.
func TestSplit_RejoinRoundTrip(t *testing.T) {
	sources := []string{
		"print(1)\nprint(2)",
		"# @local\na = 1\n# @inkscape\ndraw(a)",
		"x = 5\n# @inkscape\ndraw(x)\n# @local\nprint(x)",
		"# @inkscape\ncircle()\n# @inkscape\nrect()",
	}

	for _, source := range sources {
		first := Split(source)

		var rejoined []string
		for _, seg := range first {
			switch seg.Kind {
			case KindLocal:
				rejoined = append(rejoined, DefaultLocalMarker)
			case KindRemote:
				rejoined = append(rejoined, DefaultRemoteMarker)
			}
			rejoined = append(rejoined, seg.Source)
		}

		second := Split(strings.Join(rejoined, "\n"))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("re-split of %q = %#v, want %#v", source, second, first)
		}
	}
}

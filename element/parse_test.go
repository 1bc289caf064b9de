package element

import (
	"reflect"
	"testing"
)

func TestParse_SimpleShape(t *testing.T) {
	spec, err := Parse("circle cx=100 cy=100 r=50 fill=red")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if spec.Tag != "circle" {
		t.Errorf("Tag = %q, want circle", spec.Tag)
	}
	want := map[string]any{"cx": "100", "cy": "100", "r": "50", "fill": "red"}
	if !reflect.DeepEqual(spec.Attributes, want) {
		t.Errorf("Attributes = %#v, want %#v", spec.Attributes, want)
	}
}

func TestParse_QuotedValues(t *testing.T) {
	spec, err := Parse(`text x=50 y=50 content="Hello World" font-family='Arial Black'`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if spec.Attributes["content"] != "Hello World" {
		t.Errorf("content = %q, want double-quoted value", spec.Attributes["content"])
	}
	if spec.Attributes["font-family"] != "Arial Black" {
		t.Errorf("font-family = %q, want single-quoted value", spec.Attributes["font-family"])
	}
}

func TestParse_GradientWithChildren(t *testing.T) {
	input := `linearGradient x1=0 y1=0 x2=300 y2=0 gradientUnits=userSpaceOnUse ` +
		`children=[{stop 'offset="0%" stop-color="purple"'}, {stop 'offset="100%" stop-color="orange"'}]`

	spec, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if spec.Tag != "linearGradient" {
		t.Errorf("Tag = %q, want linearGradient", spec.Tag)
	}
	if spec.Attributes["gradientUnits"] != "userSpaceOnUse" {
		t.Errorf("gradientUnits = %v", spec.Attributes["gradientUnits"])
	}
	if _, ok := spec.Attributes["children"]; ok {
		t.Error("children leaked into Attributes")
	}
	if len(spec.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(spec.Children))
	}
	first := spec.Children[0]
	if first.Tag != "stop" || first.Attributes["offset"] != "0%" || first.Attributes["stop-color"] != "purple" {
		t.Errorf("Children[0] = %#v, want parsed stop", first)
	}
	if spec.Children[1].Attributes["stop-color"] != "orange" {
		t.Errorf("Children[1] stop-color = %v, want orange", spec.Children[1].Attributes["stop-color"])
	}
}

func TestParse_NestedChildren(t *testing.T) {
	input := `g id="outer" children=[{g 'id="inner" children=[{circle cx=1 cy=2 r=3}]'}]`

	spec, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(spec.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(spec.Children))
	}
	inner := spec.Children[0]
	if inner.Tag != "g" || len(inner.Children) != 1 {
		t.Fatalf("inner = %#v, want group with one child", inner)
	}
	if inner.Children[0].Tag != "circle" {
		t.Errorf("grandchild tag = %q, want circle", inner.Children[0].Tag)
	}
}

func TestParse_BooleanAndNullLiterals(t *testing.T) {
	spec, err := Parse("path visible=true hidden=false marker=none")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if spec.Attributes["visible"] != true {
		t.Errorf("visible = %v, want true", spec.Attributes["visible"])
	}
	if spec.Attributes["hidden"] != false {
		t.Errorf("hidden = %v, want false", spec.Attributes["hidden"])
	}
	if value, ok := spec.Attributes["marker"]; !ok || value != nil {
		t.Errorf("marker = %v, want nil", value)
	}
}

func TestParse_URLReferenceValue(t *testing.T) {
	spec, err := Parse("circle cx=100 cy=100 r=50 fill=url(#radialGradient456)")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if spec.Attributes["fill"] != "url(#radialGradient456)" {
		t.Errorf("fill = %v, want url reference preserved", spec.Attributes["fill"])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "   "},
		{"unterminated quote", `circle fill="red`},
		{"unbalanced children", `g children=[{circle cx=1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); err == nil {
				t.Errorf("Parse(%q) error = nil, want error", tt.input)
			}
		})
	}
}

func TestParseChildren_Empty(t *testing.T) {
	children, err := ParseChildren("[]")
	if err != nil {
		t.Fatalf("ParseChildren() error = %v", err)
	}
	if len(children) != 0 {
		t.Errorf("ParseChildren([]) = %#v, want none", children)
	}
}

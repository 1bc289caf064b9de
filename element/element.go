// Package element models declarative vector-element specs and the command
// mini-language used by the CLI and MCP tools to describe them.
//
// A Spec is a tag plus attributes plus nested children, the shape the drawing
// extension consumes. The package also classifies free-form command strings
// (shape names, gradient names, info actions, raw code) into the wire action
// vocabulary.
package element

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Spec describes one element to create.
type Spec struct {
	Tag        string         `json:"tag"`
	Attributes map[string]any `json:"attributes"`
	Children   []Spec         `json:"children,omitempty"`
}

// Params renders the spec as wire parameters for the generic create action.
func (s Spec) Params() map[string]any {
	params := map[string]any{
		"tag":        s.Tag,
		"attributes": s.Attributes,
	}
	if len(s.Children) > 0 {
		children := make([]map[string]any, len(s.Children))
		for i, child := range s.Children {
			children[i] = child.Params()
		}
		params["children"] = children
	}
	return params
}

// classAliases covers tags whose builder-class name does not follow the
// capitalization convention.
var classAliases = map[string]string{
	"rect": "Rectangle",
	"text": "TextElement",
	"path": "PathElement",
	"g":    "Group",
}

// firstUpper capitalizes the leading rune only; camelCase tails survive
// (linearGradient becomes LinearGradient).
var firstUpper = cases.Title(language.English, cases.NoLower)

// ClassName maps a tag to its builder-class name: explicit aliases first,
// then the capitalization convention.
func ClassName(tag string) string {
	if alias, ok := classAliases[tag]; ok {
		return alias
	}
	return firstUpper.String(tag)
}

// defsTags are placed in the document's defs section rather than the canvas.
var defsTags = map[string]bool{
	"linearGradient": true,
	"radialGradient": true,
	"meshGradient":   true,
	"pattern":        true,
	"filter":         true,
	"marker":         true,
}

// PlaceInDefs reports whether elements of the given tag belong in defs.
func PlaceInDefs(tag string) bool {
	return defsTags[tag]
}

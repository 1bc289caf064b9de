package element

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Wire actions the drawing extension understands.
const (
	ActionDrawShape   = "draw-shape"
	ActionAddGradient = "add-gradient"
	ActionExecuteCode = "execute-inkex-code"
)

// infoActions return document or selection state and always need a response.
var infoActions = map[string]bool{
	"get-selection":         true,
	"get-info":              true,
	"get-object-info":       true,
	"get-object-property":   true,
	"export-document":       true,
	"export-document-image": true,
}

// shapeNames map to the draw-shape action with a shape_type parameter.
var shapeNames = map[string]bool{
	"rectangle": true,
	"rect":      true,
	"circle":    true,
	"ellipse":   true,
	"line":      true,
	"polygon":   true,
	"polyline":  true,
	"text":      true,
	"path":      true,
}

// gradientNames map to the add-gradient action with a gradient_type parameter.
var gradientNames = map[string]bool{
	"linear-gradient": true,
	"radial-gradient": true,
}

// ParseCommand classifies a command string and parses its parameters into
// wire params. The leading word selects the action: known shapes become
// draw-shape, gradient names become add-gradient, info actions and
// execute-inkex-code pass through, anything else is treated as a custom
// action name.
func ParseCommand(command string) (map[string]any, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, fmt.Errorf("empty command")
	}

	head, rest, _ := strings.Cut(command, " ")

	params := map[string]any{}
	switch {
	case infoActions[head] || head == ActionExecuteCode:
		params["action"] = head
	case shapeNames[head]:
		params["action"] = ActionDrawShape
		params["shape_type"] = head
	case gradientNames[head]:
		params["action"] = ActionAddGradient
		params["gradient_type"] = head
	default:
		params["action"] = head
	}

	attrs, err := scanAttributes(rest)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", head, err)
	}
	for _, attr := range attrs {
		params[attr.key] = coerceParam(attr.value)
	}

	// Code shipped base64-encoded survives shell quoting; decode it back to
	// the plain code parameter.
	if encoded, ok := params["code_base64"].(string); ok {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("command %s: decode code_base64: %w", head, err)
		}
		params["code"] = string(decoded)
		delete(params, "code_base64")
	}

	return params, nil
}

// SplitCommands breaks batch input on semicolons and newlines. A script that
// starts with execute-inkex-code is one command; its body may contain both.
func SplitCommands(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if strings.HasPrefix(content, ActionExecuteCode) {
		return []string{content}
	}

	var commands []string
	for _, raw := range strings.FieldsFunc(content, func(r rune) bool { return r == ';' || r == '\n' }) {
		cmd := strings.TrimSpace(raw)
		if cmd == "" || strings.HasPrefix(cmd, "#") {
			continue
		}
		commands = append(commands, cmd)
	}
	return commands
}

// NeedsResponse reports whether the action's reply carries data the caller
// must read back rather than a bare acknowledgement.
func NeedsResponse(params map[string]any) bool {
	action, _ := params["action"].(string)
	return infoActions[action] || action == ActionExecuteCode
}

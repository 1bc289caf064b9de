package element

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// rawAttr is one scanned key=value pair before coercion.
type rawAttr struct {
	key    string
	value  string
	quoted bool
}

// Parse reads a spec from the "tag key=value ..." mini-language. A children
// attribute written as [{tag 'k=v'}, ...] is parsed recursively into nested
// specs; every other value stays an attribute.
func Parse(content string) (Spec, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Spec{}, fmt.Errorf("empty element description")
	}

	tag, attrStr, _ := strings.Cut(content, " ")
	spec := Spec{Tag: tag, Attributes: map[string]any{}}

	attrs, err := scanAttributes(attrStr)
	if err != nil {
		return Spec{}, fmt.Errorf("element %s: %w", tag, err)
	}

	for _, attr := range attrs {
		if attr.key == "children" && strings.HasPrefix(attr.value, "[") && strings.Contains(attr.value, "{") {
			children, err := ParseChildren(attr.value)
			if err != nil {
				return Spec{}, fmt.Errorf("element %s: %w", tag, err)
			}
			spec.Children = children
			continue
		}
		spec.Attributes[attr.key] = coerceAttribute(attr.value)
	}
	return spec, nil
}

// ParseChildren reads a children array like [{stop 'offset="0%"'}, {circle 'cx=10'}].
// Each braced entry is parsed as its own tag-and-attributes description.
func ParseChildren(s string) ([]Spec, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("children list must be bracketed, got %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}

	var children []Spec
	depth := 0
	start := -1
	for i, r := range inner {
		switch r {
		case '{':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced braces in children list")
			}
			if depth == 0 {
				child, err := Parse(inner[start:i])
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced braces in children list")
	}
	return children, nil
}

// scanAttributes tokenizes key=value pairs. Values may be double- or
// single-quoted, bracketed arrays with nested brackets and braces, or bare
// tokens. Characters that cannot start a key are skipped, so wrapper quotes
// around a whole attribute string are tolerated.
func scanAttributes(s string) ([]rawAttr, error) {
	var attrs []rawAttr
	i := 0
	for i < len(s) {
		if !isKeyChar(s[i]) {
			i++
			continue
		}

		start := i
		for i < len(s) && isKeyChar(s[i]) {
			i++
		}
		key := s[start:i]
		if i >= len(s) || s[i] != '=' {
			continue
		}
		i++ // consume '='

		value, quoted, next, err := scanValue(s, i)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", key, err)
		}
		i = next
		attrs = append(attrs, rawAttr{key: key, value: value, quoted: quoted})
	}
	return attrs, nil
}

func scanValue(s string, i int) (value string, quoted bool, next int, err error) {
	if i >= len(s) {
		return "", false, i, nil
	}
	switch s[i] {
	case '"', '\'':
		quote := s[i]
		end := strings.IndexByte(s[i+1:], quote)
		if end < 0 {
			return "", false, i, fmt.Errorf("unterminated %c-quoted value", quote)
		}
		return s[i+1 : i+1+end], true, i + end + 2, nil
	case '[':
		depth := 0
		for j := i; j < len(s); j++ {
			switch s[j] {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
				if depth == 0 {
					return s[i : j+1], false, j + 1, nil
				}
			case '"', '\'':
				// Skip over quoted runs so brackets inside them don't count.
				quote := s[j]
				end := strings.IndexByte(s[j+1:], quote)
				if end < 0 {
					return "", false, i, fmt.Errorf("unterminated %c-quoted value", quote)
				}
				j += end + 1
			}
		}
		return "", false, i, fmt.Errorf("unbalanced brackets in value")
	default:
		start := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != ',' {
			i++
		}
		return s[start:i], false, i, nil
	}
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// coerceAttribute converts the literal booleans and nulls; everything else
// stays a string, since attribute values are strings on the wire.
func coerceAttribute(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	case "none", "null":
		return nil
	}
	return value
}

// coerceParam converts command parameter literals into typed values:
// booleans, nulls, JSON arrays, and numbers. Anything else is a string with
// shell escapes removed.
func coerceParam(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	case "none", "null":
		return nil
	}

	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			return decoded
		}
		return value
	}

	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return unescape(value)
}

// unescape removes the shell escapes callers need for bang and dollar.
func unescape(value string) string {
	replacer := strings.NewReplacer(`\!`, "!", `\$`, "$", `\\`, `\`)
	return replacer.Replace(value)
}

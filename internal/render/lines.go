// Package render flattens the interpreter's JSON rendering into the flat,
// indented line sequence the appliance's display and scroll model consume.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Line is one row of the review screen: a parent line has an empty Value
// and a present Key; a leaf line carries a Value and an optional Key.
type Line struct {
	Indent uint32
	Key    *string
	Value  string
}

// FromJSON flattens a decoded JSON value (as produced by
// a json.Decoder with UseNumber) into a depth-first sequence of Lines.
func FromJSON(v any) []Line {
	var out []Line
	flatten(v, 0, nil, &out)
	return out
}

func flatten(v any, indent uint32, key *string, out *[]Line) {
	switch val := v.(type) {
	case map[string]any:
		childIndent := indent
		if key != nil {
			*out = append(*out, Line{Indent: indent, Key: key, Value: ""})
			childIndent = indent + 1
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			k := k
			flatten(val[k], childIndent, &k, out)
		}

	case []any:
		if key != nil {
			label := fmt.Sprintf("[%d items]", len(val))
			*out = append(*out, Line{Indent: indent, Key: key, Value: label})
		}
		for i, elem := range val {
			childKey := fmt.Sprintf("[%d]", i)
			flatten(elem, indent+1, &childKey, out)
		}

	default:
		*out = append(*out, Line{Indent: indent, Key: key, Value: scalarText(val)})
	}
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case fmt.Stringer: // json.Number satisfies this, giving canonical decimal
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Text renders lines to plain text: two spaces per indent level, then
// "key: value", "key:", or just "value".
func Text(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.Repeat("  ", int(l.Indent)))
		switch {
		case l.Key != nil && l.Value == "":
			b.WriteString(*l.Key)
			b.WriteString(":\n")
		case l.Key != nil:
			b.WriteString(*l.Key)
			b.WriteString(": ")
			b.WriteString(l.Value)
			b.WriteString("\n")
		default:
			b.WriteString(l.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}

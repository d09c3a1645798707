// File: internal/action/parser.go
package action

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed action string. Raw always carries the
// offending input; Token is set when the leading verb is unrecognized, Field
// when a required argument is missing or malformed.
type ParseError struct {
	Raw   string
	Token string
	Field string
}

func (e *ParseError) Error() string {
	switch {
	case e.Token != "":
		return fmt.Sprintf("action: unrecognized token %q in %q", e.Token, e.Raw)
	case e.Field != "":
		return fmt.Sprintf("action: bad or missing field %q in %q", e.Field, e.Raw)
	default:
		return fmt.Sprintf("action: malformed input %q", e.Raw)
	}
}

// pointRule extracts one coordinate pair, trying each marker in order.
type pointRule struct {
	xKey, yKey string
	markers    []string
}

// stringRule extracts one quoted string argument.
type stringRule struct {
	key      string
	marker   string
	unescape bool
	oneOf    []string // allowed values; empty means unconstrained
}

// rule describes the required arguments of one action kind.
type rule struct {
	points  []pointRule
	strings []stringRule
}

// coordMarkers are the two accepted spellings for a single coordinate pair.
var coordMarkers = []string{"point", "start_box"}

// grammar maps each kind to its extraction rules. This table is the single
// source of truth for the action language.
var grammar = map[Kind]rule{
	KindClick:       {points: []pointRule{{"x", "y", coordMarkers}}},
	KindLeftDouble:  {points: []pointRule{{"x", "y", coordMarkers}}},
	KindRightSingle: {points: []pointRule{{"x", "y", coordMarkers}}},
	KindDrag: {points: []pointRule{
		{"start_x", "start_y", []string{"start_box"}},
		{"end_x", "end_y", []string{"end_box"}},
	}},
	KindHotkey: {strings: []stringRule{{key: "key", marker: "key"}}},
	KindType:   {strings: []stringRule{{key: "content", marker: "content", unescape: true}}},
	KindScroll: {
		points: []pointRule{{"x", "y", coordMarkers}},
		strings: []stringRule{{
			key: "direction", marker: "direction",
			oneOf: []string{"up", "down", "left", "right"},
		}},
	},
	KindWait:     {},
	KindFinished: {strings: []stringRule{{key: "content", marker: "content", unescape: true}}},
	KindGotoURL:  {strings: []stringRule{{key: "url", marker: "url"}}},
}

// Parse decodes one line of model output into an Action. reasoning is attached
// verbatim. On failure it returns a *ParseError carrying the raw input and
// never a partially filled Action.
func Parse(raw, reasoning string) (Action, error) {
	trimmed := strings.TrimSpace(raw)

	kind, ok := matchKind(trimmed)
	if !ok {
		return Action{}, &ParseError{Raw: raw, Token: leadingToken(trimmed)}
	}

	r := grammar[kind]
	args := make(map[string]string, len(r.points)*2+len(r.strings))

	for _, pr := range r.points {
		x, y, err := extractPoint(trimmed, pr.markers)
		if err != nil {
			return Action{}, &ParseError{Raw: raw, Field: pr.markers[0]}
		}
		args[pr.xKey] = strconv.Itoa(x)
		args[pr.yKey] = strconv.Itoa(y)
	}

	for _, sr := range r.strings {
		val, err := extractQuoted(trimmed, sr.marker)
		if err != nil {
			return Action{}, &ParseError{Raw: raw, Field: sr.marker}
		}
		if sr.unescape {
			val = unescape(val)
		}
		if len(sr.oneOf) > 0 && !contains(sr.oneOf, val) {
			return Action{}, &ParseError{Raw: raw, Field: sr.marker}
		}
		args[sr.key] = val
	}

	return Action{Kind: kind, Args: args, Reasoning: reasoning}, nil
}

// matchKind anchors on the exact verb followed by "(", longest names first.
func matchKind(s string) (Kind, bool) {
	for _, k := range kindsByLength {
		if strings.HasPrefix(s, string(k)+"(") {
			return k, true
		}
	}
	return "", false
}

// leadingToken returns the text up to the first "(" for error reporting.
func leadingToken(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		return s[:i]
	}
	if len(s) > 32 {
		return s[:32]
	}
	return s
}

// extractQuoted locates `marker='` and reads up to the next unescaped single
// quote.
func extractQuoted(s, marker string) (string, error) {
	needle := marker + "='"
	i := strings.Index(s, needle)
	if i < 0 {
		return "", fmt.Errorf("marker %q not found", marker)
	}
	rest := s[i+len(needle):]

	var b strings.Builder
	escaped := false
	for _, c := range rest {
		if escaped {
			b.WriteByte('\\')
			b.WriteRune(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '\'':
			return b.String(), nil
		default:
			b.WriteRune(c)
		}
	}
	return "", fmt.Errorf("unterminated value for marker %q", marker)
}

// extractPoint tries each marker in order and decodes a `(x,y)` pair of
// signed base-10 integers.
func extractPoint(s string, markers []string) (int, int, error) {
	var val string
	var err error
	for _, m := range markers {
		if val, err = extractQuoted(s, m); err == nil {
			break
		}
	}
	if err != nil {
		return 0, 0, err
	}

	val = strings.TrimSpace(val)
	val = strings.TrimPrefix(val, "(")
	val = strings.TrimSuffix(val, ")")

	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two comma-separated coordinates, got %q", val)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad x coordinate: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad y coordinate: %w", err)
	}
	return x, y, nil
}

// unescape resolves the escape sequences the model is instructed to use
// inside content values: \' \" \n and \\.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, c := range s {
		if !escaped {
			if c == '\\' {
				escaped = true
			} else {
				b.WriteRune(c)
			}
			continue
		}
		escaped = false
		switch c {
		case 'n':
			b.WriteByte('\n')
		case '\'', '"', '\\':
			b.WriteRune(c)
		default:
			// Unknown escape, keep it verbatim.
			b.WriteByte('\\')
			b.WriteRune(c)
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

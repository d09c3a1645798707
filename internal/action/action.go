// File: internal/action/action.go

// Package action decodes the constrained micro-language a vision model uses to
// describe browser actions, e.g. `click(point='(120,340)')`, into structured
// values. Parsing is pure: no side effects, and a malformed string never
// yields a partially populated Action.
package action

import (
	"fmt"
	"sort"
	"strings"
)

// Kind enumerates the supported action verbs.
type Kind string

const (
	KindClick       Kind = "click"
	KindLeftDouble  Kind = "left_double"
	KindRightSingle Kind = "right_single"
	KindDrag        Kind = "drag"
	KindHotkey      Kind = "hotkey"
	KindType        Kind = "type"
	KindScroll      Kind = "scroll"
	KindWait        Kind = "wait"
	KindFinished    Kind = "finished"
	KindGotoURL     Kind = "goto_url"
)

// Action is the structured result of parsing one model instruction. Args holds
// exactly the keys required by Kind; coordinate values are decimal integers in
// string form. Reasoning carries the model's free-text justification and may
// be empty.
type Action struct {
	Kind      Kind              `json:"kind"`
	Args      map[string]string `json:"args"`
	Reasoning string            `json:"reasoning,omitempty"`
}

// Text re-encodes the action in the canonical marker syntax. Parsing the
// result yields an equal (Kind, Args) pair. Used for transcripts and for
// replaying history to the model.
func (a Action) Text() string {
	switch a.Kind {
	case KindClick, KindLeftDouble, KindRightSingle:
		return fmt.Sprintf("%s(point='(%s,%s)')", a.Kind, a.Args["x"], a.Args["y"])
	case KindDrag:
		return fmt.Sprintf("drag(start_box='(%s,%s)', end_box='(%s,%s)')",
			a.Args["start_x"], a.Args["start_y"], a.Args["end_x"], a.Args["end_y"])
	case KindHotkey:
		return fmt.Sprintf("hotkey(key='%s')", a.Args["key"])
	case KindType:
		return fmt.Sprintf("type(content='%s')", escape(a.Args["content"]))
	case KindScroll:
		return fmt.Sprintf("scroll(point='(%s,%s)', direction='%s')",
			a.Args["x"], a.Args["y"], a.Args["direction"])
	case KindWait:
		return "wait()"
	case KindFinished:
		return fmt.Sprintf("finished(content='%s')", escape(a.Args["content"]))
	case KindGotoURL:
		return fmt.Sprintf("goto_url(url='%s')", a.Args["url"])
	}
	return string(a.Kind) + "()"
}

// escape re-applies the escape sequences the grammar uses inside quoted
// string values.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`, "\n", `\n`)
	return r.Replace(s)
}

// kindsByLength lists all kinds longest-name-first, so prefix matching cannot
// pick a shorter verb embedded in a longer one.
var kindsByLength = func() []Kind {
	kinds := make([]Kind, 0, len(grammar))
	for k := range grammar {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if len(kinds[i]) != len(kinds[j]) {
			return len(kinds[i]) > len(kinds[j])
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}()

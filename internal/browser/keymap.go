// File: internal/browser/keymap.go
package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/input"
)

// The hotkey grammar is space-separated lowercase tokens, e.g. "ctrl c" or
// "ctrl shift t": zero or more modifiers followed by exactly one key.

var modifierTokens = map[string]input.Modifier{
	"alt":   input.ModifierAlt,
	"ctrl":  input.ModifierCtrl,
	"cmd":   input.ModifierMeta,
	"meta":  input.ModifierMeta,
	"win":   input.ModifierMeta,
	"shift": input.ModifierShift,
}

// namedKeys maps grammar tokens to DOM key values for keys whose token is not
// already the key value itself.
var namedKeys = map[string]string{
	"enter":      "Enter",
	"return":     "Enter",
	"esc":        "Escape",
	"escape":     "Escape",
	"tab":        "Tab",
	"space":      " ",
	"backspace":  "Backspace",
	"delete":     "Delete",
	"home":       "Home",
	"end":        "End",
	"pageup":     "PageUp",
	"pagedown":   "PageDown",
	"arrowup":    "ArrowUp",
	"arrowdown":  "ArrowDown",
	"arrowleft":  "ArrowLeft",
	"arrowright": "ArrowRight",
	"up":         "ArrowUp",
	"down":       "ArrowDown",
	"left":       "ArrowLeft",
	"right":      "ArrowRight",
}

// parseCombo turns a hotkey combo into a CDP modifier bitmask and the final
// key's DOM value.
func parseCombo(combo string) (input.Modifier, string, error) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(combo)))
	if len(tokens) == 0 {
		return 0, "", fmt.Errorf("empty hotkey combo")
	}
	if len(tokens) > 3 {
		return 0, "", fmt.Errorf("hotkey combo %q has more than 3 keys", combo)
	}

	var modifiers input.Modifier
	var key string
	for i, tok := range tokens {
		if mod, ok := modifierTokens[tok]; ok && i < len(tokens)-1 {
			modifiers |= mod
			continue
		}
		if key != "" {
			return 0, "", fmt.Errorf("hotkey combo %q has multiple non-modifier keys", combo)
		}
		key = keyValue(tok)
	}
	if key == "" {
		return 0, "", fmt.Errorf("hotkey combo %q has no key", combo)
	}
	return modifiers, key, nil
}

func keyValue(token string) string {
	if v, ok := namedKeys[token]; ok {
		return v
	}
	return token
}

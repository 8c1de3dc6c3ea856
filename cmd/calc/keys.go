package main

import (
	"strings"

	"github.com/TeapotSmashers/keypad-calculator/internal/calculator"
)

var aliases = map[string]string{
	"-":   string(calculator.Subtract),
	"*":   string(calculator.Multiply),
	"x":   string(calculator.Multiply),
	"/":   string(calculator.Divide),
	"neg": "±",
	"bs":  "back",
	"c":   "C",
}

// expandArgs maps command-line words to keypad keys. Words made of digits
// and dots are split into one key per character.
func expandArgs(args []string) []string {
	keys := make([]string, 0, len(args))
	for _, arg := range args {
		if key, ok := aliases[arg]; ok {
			keys = append(keys, key)
			continue
		}
		if len(arg) > 1 && isNumeric(arg) {
			for _, r := range arg {
				keys = append(keys, string(r))
			}
			continue
		}
		keys = append(keys, arg)
	}
	return keys
}

func isNumeric(s string) bool {
	return strings.Trim(s, "0123456789.") == ""
}
